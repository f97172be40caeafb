package editor

import (
	"testing"

	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

// validData returns a payload for typ that passes dialog validation
func validData(typ workflow.NodeType) workflow.NodeData {
	switch typ {
	case workflow.TypeTrigger:
		return workflow.TriggerData{Title: "nightly"}
	case workflow.TypeEvent:
		return workflow.EventData{Event: "ev_backup"}
	case workflow.TypeJob:
		return workflow.JobData{Title: "Build", Plugin: "shellplug", Targets: []string{"main"}}
	case workflow.TypeAction:
		return workflow.ActionData{Type: "email", Enabled: true}
	case workflow.TypeLimit:
		return workflow.LimitData{Type: "time", Amount: 3600, Enabled: true}
	case workflow.TypeController:
		return workflow.ControllerData{Controller: workflow.ControllerMultiplex}
	}
	return nil
}

// testGraph creates an empty graph with deterministic ids
func testGraph() *workflow.Graph {
	return workflow.NewGraph(workflow.SequenceSource())
}

// testNode adds a node of the given type at (x, y) and returns its id
func testNode(t *testing.T, g *workflow.Graph, typ workflow.NodeType, x, y float64) string {
	t.Helper()
	id := g.NewNodeID()
	if err := g.AddNode(workflow.Node{ID: id, Type: typ, Data: validData(typ), X: x, Y: y}, nil); err != nil {
		t.Fatalf("Failed to add %s node: %v", typ, err)
	}
	return id
}

// testConnect connects source to dest with the default condition
func testConnect(t *testing.T, g *workflow.Graph, source, dest string) workflow.Connection {
	t.Helper()
	sourcePole, _ := workflow.ConnectionPoles(g.NodeType(source), g.NodeType(dest))
	c := workflow.Connection{
		Source:    source,
		Dest:      dest,
		Condition: workflow.DefaultCondition(g.NodeType(source), sourcePole),
	}
	added, err := g.AddConnection(c)
	if err != nil || !added {
		t.Fatalf("Failed to connect %s -> %s: added=%v err=%v", source, dest, added, err)
	}
	conns := g.Connections()
	return conns[len(conns)-1]
}

// testSession opens a session on g with default options
func testSession(t *testing.T, g *workflow.Graph) *Session {
	t.Helper()
	s, err := New(g, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// graphState is the comparable content of a graph
type graphState struct {
	Workflow workflow.Workflow
	Triggers []workflow.Trigger
}

func stateOf(s *Session) graphState {
	g := s.Graph()
	return graphState{Workflow: g.Workflow(), Triggers: g.Triggers()}
}

// findConnection returns the connection from source to dest
func findConnection(s *Session, source, dest string) (workflow.Connection, bool) {
	for _, c := range s.Graph().Connections() {
		if c.Source == source && c.Dest == dest {
			return c, true
		}
	}
	return workflow.Connection{}, false
}

func assertConsistent(t *testing.T, s *Session) {
	t.Helper()
	if err := s.Graph().Check(); err != nil {
		t.Fatalf("graph inconsistent: %v", err)
	}
}
