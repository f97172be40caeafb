package workflow

import (
	"encoding/json"
	"fmt"
)

// Workflow is the serialized graph as it appears inside an event record
type Workflow struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

type nodeJSON struct {
	ID   string          `json:"id"`
	Type NodeType        `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	X    float64         `json:"x"`
	Y    float64         `json:"y"`
}

// MarshalJSON encodes a node with its payload under "data"
func (n Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{ID: n.ID, Type: n.Type, X: n.X, Y: n.Y}
	if n.Data != nil {
		raw, err := json.Marshal(n.Data)
		if err != nil {
			return nil, fmt.Errorf("marshal data of node %s: %w", n.ID, err)
		}
		out.Data = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes "data" into the variant selected by "type"
func (n *Node) UnmarshalJSON(b []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return NewError("decode").Node(in.ID).Context("type %q", in.Type).Cause(ErrUnknownType).Err()
	}
	data, err := decodeData(in.Type, in.Data)
	if err != nil {
		return NewError("decode").Node(in.ID).Cause(err).Err()
	}
	*n = Node{ID: in.ID, Type: in.Type, Data: data, X: in.X, Y: in.Y}
	return nil
}

// Workflow returns a deep copy of the graph in serialized form
func (g *Graph) Workflow() Workflow {
	return Workflow{Nodes: g.Nodes(), Connections: g.Connections()}
}

// Assemble builds a graph from serialized parts without enforcing any
// invariant, so that Violations can report everything wrong with a file.
func Assemble(wf Workflow, triggers []Trigger, source IDSource) *Graph {
	g := NewGraph(source)
	for _, n := range wf.Nodes {
		g.nodes = append(g.nodes, n.Clone())
		g.gen.Reserve(n.ID)
	}
	g.connections = append(g.connections, wf.Connections...)
	for _, c := range wf.Connections {
		g.gen.Reserve(c.ID)
	}
	for _, t := range triggers {
		g.triggers = append(g.triggers, t.Clone())
	}
	return g
}

// FromWorkflow builds a graph from serialized parts and rejects it if any
// invariant is violated.
func FromWorkflow(wf Workflow, triggers []Trigger, source IDSource) (*Graph, error) {
	g := Assemble(wf, triggers, source)
	if err := g.Check(); err != nil {
		return nil, err
	}
	return g, nil
}
