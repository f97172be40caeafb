package workflow

import (
	"testing"
)

// testGraph creates an empty graph with deterministic ids
func testGraph(t *testing.T) *Graph {
	t.Helper()
	return NewGraph(SequenceSource())
}

// testNode adds a node of the given type with default data and returns its id
func testNode(t *testing.T, g *Graph, typ NodeType) string {
	t.Helper()

	data, err := EmptyData(typ)
	if err != nil {
		t.Fatalf("EmptyData(%s): %v", typ, err)
	}
	id := g.NewNodeID()
	if err := g.AddNode(Node{ID: id, Type: typ, Data: data}, nil); err != nil {
		t.Fatalf("Failed to add %s node: %v", typ, err)
	}
	return id
}

// testConnect connects source to dest and fails the test if it was not added
func testConnect(t *testing.T, g *Graph, source, dest string) Connection {
	t.Helper()

	sourcePole, _ := ConnectionPoles(g.NodeType(source), g.NodeType(dest))
	c := Connection{
		Source:    source,
		Dest:      dest,
		Condition: DefaultCondition(g.NodeType(source), sourcePole),
	}
	added, err := g.AddConnection(c)
	if err != nil {
		t.Fatalf("Failed to connect %s -> %s: %v", source, dest, err)
	}
	if !added {
		t.Fatalf("Connection %s -> %s was not added", source, dest)
	}
	conns := g.Connections()
	return conns[len(conns)-1]
}

// assertConsistent fails the test if any invariant is violated
func assertConsistent(t *testing.T, g *Graph) {
	t.Helper()
	if err := g.Check(); err != nil {
		t.Fatalf("graph inconsistent: %v", err)
	}
}
