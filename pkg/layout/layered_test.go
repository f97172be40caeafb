package layout

import (
	"testing"

	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

func addNode(t *testing.T, g *workflow.Graph, typ workflow.NodeType, x, y float64) string {
	t.Helper()
	id := g.NewNodeID()
	if err := g.AddNode(workflow.Node{ID: id, Type: typ, X: x, Y: y}, nil); err != nil {
		t.Fatalf("Failed to add %s node: %v", typ, err)
	}
	return id
}

func connect(t *testing.T, g *workflow.Graph, source, dest string) {
	t.Helper()
	sourcePole, _ := workflow.ConnectionPoles(g.NodeType(source), g.NodeType(dest))
	c := workflow.Connection{Source: source, Dest: dest, Condition: workflow.DefaultCondition(g.NodeType(source), sourcePole)}
	if added, err := g.AddConnection(c); err != nil || !added {
		t.Fatalf("Failed to connect %s -> %s: added=%v err=%v", source, dest, added, err)
	}
}

var testConfig = Config{NodeWidth: 200, NodeHeight: 60, ColumnGap: 80, RowGap: 40}

// TestLayeredLayout tests left-to-right levels with a limit hung below its job
func TestLayeredLayout(t *testing.T) {
	g := workflow.NewGraph(workflow.SequenceSource())
	trig := addNode(t, g, workflow.TypeTrigger, 100, 50)
	job := addNode(t, g, workflow.TypeJob, 300, 300)
	action := addNode(t, g, workflow.TypeAction, 500, 100)
	limit := addNode(t, g, workflow.TypeLimit, 120, 400)
	connect(t, g, trig, job)
	connect(t, g, job, action)
	connect(t, g, job, limit)

	positions, err := NewLayeredLayout(testConfig).ComputeLayout(g, g.NodeIDs())
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}

	want := map[string]Position{
		trig:   {X: 100, Y: 50},
		job:    {X: 380, Y: 50},
		limit:  {X: 380, Y: 150},
		action: {X: 660, Y: 50},
	}
	if len(positions) != len(want) {
		t.Fatalf("Expected %d positions, got %d", len(want), len(positions))
	}
	for id, w := range want {
		if positions[id] != w {
			t.Errorf("position of %s (%s) = %+v, want %+v", id, g.NodeType(id), positions[id], w)
		}
	}
}

// TestLayeredLayoutCycle tests that a cycle with no root is still fully placed
func TestLayeredLayoutCycle(t *testing.T) {
	g := workflow.NewGraph(workflow.SequenceSource())
	a := addNode(t, g, workflow.TypeEvent, 0, 0)
	b := addNode(t, g, workflow.TypeEvent, 0, 0)
	connect(t, g, a, b)
	connect(t, g, b, a)

	positions, err := NewLayeredLayout(testConfig).ComputeLayout(g, g.NodeIDs())
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}
	if positions[a].X != 0 || positions[b].X != 280 {
		t.Errorf("positions = %+v", positions)
	}
}

// TestLayeredLayoutSubset tests that connections leaving the subset are ignored
func TestLayeredLayoutSubset(t *testing.T) {
	g := workflow.NewGraph(workflow.SequenceSource())
	a := addNode(t, g, workflow.TypeEvent, 0, 0)
	b := addNode(t, g, workflow.TypeEvent, 500, 500)
	c := addNode(t, g, workflow.TypeEvent, 900, 900)
	connect(t, g, a, b)
	connect(t, g, b, c)

	positions, err := NewLayeredLayout(testConfig).ComputeLayout(g, []string{b, c})
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}
	if _, ok := positions[a]; ok {
		t.Error("node outside the subset was positioned")
	}
	if positions[b] != (Position{X: 500, Y: 500}) || positions[c] != (Position{X: 780, Y: 500}) {
		t.Errorf("positions = %+v", positions)
	}
}

func TestLayeredLayoutErrors(t *testing.T) {
	g := workflow.NewGraph(workflow.SequenceSource())

	positions, err := NewLayeredLayout(Config{}).ComputeLayout(g, nil)
	if err != nil || len(positions) != 0 {
		t.Errorf("empty layout = %v, %v", positions, err)
	}

	if _, err := NewLayeredLayout(Config{}).ComputeLayout(g, []string{"nmissing"}); !workflow.IsNotFound(err) {
		t.Errorf("missing node err = %v, want not found", err)
	}
}

func TestApply(t *testing.T) {
	g := workflow.NewGraph(workflow.SequenceSource())
	a := addNode(t, g, workflow.TypeEvent, 10, 10)
	b := addNode(t, g, workflow.TypeEvent, 20, 20)

	moved, err := Apply(g, map[string]Position{a: {X: 10, Y: 10}, b: {X: 99, Y: 1}})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(moved) != 1 || moved[0] != b {
		t.Errorf("moved = %v, want [%s]", moved, b)
	}
	if n, _ := g.Node(b); n.X != 99 || n.Y != 1 {
		t.Errorf("node b at (%v,%v)", n.X, n.Y)
	}
}
