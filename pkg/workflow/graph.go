package workflow

import (
	"fmt"
	"slices"
)

// Graph is the in-memory workflow: nodes, connections and the trigger records
// paired with trigger nodes. It is owned by a single editor and is not safe
// for concurrent use.
type Graph struct {
	nodes       []Node
	connections []Connection
	triggers    []Trigger

	gen *IDGenerator
}

// NewGraph creates an empty graph. A nil source means UUIDSource.
func NewGraph(source IDSource) *Graph {
	return &Graph{gen: NewIDGenerator(source)}
}

// Clone returns a deep copy of the graph. The clone shares the id generator
// so ids issued through either copy are never reissued.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:       make([]Node, len(g.nodes)),
		connections: make([]Connection, len(g.connections)),
		triggers:    make([]Trigger, len(g.triggers)),
		gen:         g.gen,
	}
	for i, n := range g.nodes {
		c.nodes[i] = n.Clone()
	}
	copy(c.connections, g.connections)
	for i, t := range g.triggers {
		c.triggers[i] = t.Clone()
	}
	return c
}

// Len returns the number of nodes and connections
func (g *Graph) Len() (nodes, connections int) {
	return len(g.nodes), len(g.connections)
}

func (g *Graph) nodeIndex(id string) int {
	return slices.IndexFunc(g.nodes, func(n Node) bool { return n.ID == id })
}

func (g *Graph) connectionIndex(id string) int {
	return slices.IndexFunc(g.connections, func(c Connection) bool { return c.ID == id })
}

func (g *Graph) triggerIndex(id string) int {
	return slices.IndexFunc(g.triggers, func(t Trigger) bool { return t.ID == id })
}

// HasNode reports whether a node with the id exists
func (g *Graph) HasNode(id string) bool {
	return g.nodeIndex(id) >= 0
}

// Node returns a copy of the node with the given id
func (g *Graph) Node(id string) (Node, bool) {
	i := g.nodeIndex(id)
	if i < 0 {
		return Node{}, false
	}
	return g.nodes[i].Clone(), true
}

// NodeType returns the type of a node, or "" if it does not exist
func (g *Graph) NodeType(id string) NodeType {
	i := g.nodeIndex(id)
	if i < 0 {
		return ""
	}
	return g.nodes[i].Type
}

// Nodes returns copies of all nodes in insertion order
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.Clone()
	}
	return out
}

// NodeIDs returns all node ids in insertion order
func (g *Graph) NodeIDs() []string {
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.ID
	}
	return out
}

// Connections returns a copy of all connections in insertion order
func (g *Graph) Connections() []Connection {
	return slices.Clone(g.connections)
}

// Connection returns the connection with the given id
func (g *Graph) Connection(id string) (Connection, bool) {
	i := g.connectionIndex(id)
	if i < 0 {
		return Connection{}, false
	}
	return g.connections[i], true
}

// ConnectionsOf returns every connection with id as source or dest
func (g *Graph) ConnectionsOf(id string) []Connection {
	var out []Connection
	for _, c := range g.connections {
		if c.Source == id || c.Dest == id {
			out = append(out, c)
		}
	}
	return out
}

// HasConnection reports whether a source→dest connection exists
func (g *Graph) HasConnection(source, dest string) bool {
	return slices.ContainsFunc(g.connections, func(c Connection) bool {
		return c.Source == source && c.Dest == dest
	})
}

// Triggers returns copies of all trigger records
func (g *Graph) Triggers() []Trigger {
	out := make([]Trigger, len(g.triggers))
	for i, t := range g.triggers {
		out[i] = t.Clone()
	}
	return out
}

// Trigger returns the trigger record paired with a trigger node
func (g *Graph) Trigger(id string) (Trigger, bool) {
	i := g.triggerIndex(id)
	if i < 0 {
		return Trigger{}, false
	}
	return g.triggers[i].Clone(), true
}

// AddNode inserts a node. Trigger nodes are created together with their
// Trigger record; a nil trig yields an enabled manual trigger. Other node
// types must not carry a trigger record.
func (g *Graph) AddNode(n Node, trig *Trigger) error {
	const op = "AddNode"
	if !IsNodeID(n.ID) {
		return NewError(op).Node(n.ID).Context("expected %q prefix", NodeIDPrefix).Cause(ErrInvalidID).Err()
	}
	if !n.Type.Valid() {
		return NewError(op).Node(n.ID).Context("type %q", n.Type).Cause(ErrUnknownType).Err()
	}
	if g.nodeIndex(n.ID) >= 0 || g.connectionIndex(n.ID) >= 0 {
		return NewError(op).Node(n.ID).Cause(ErrDuplicateNode).Err()
	}
	if n.Data == nil {
		n.Data, _ = EmptyData(n.Type)
	}
	if n.Data.Kind() != n.Type {
		return NewError(op).Node(n.ID).Context("data is %s", n.Data.Kind()).Cause(ErrDataMismatch).Err()
	}

	var record Trigger
	if n.Type == TypeTrigger {
		if trig == nil {
			record = NewManualTrigger(n.ID)
		} else {
			record = trig.Clone()
			if record.ID == "" {
				record.ID = n.ID
			}
		}
		if record.ID != n.ID || g.triggerIndex(record.ID) >= 0 {
			return NewError(op).Trigger(record.ID).Context("node %s", n.ID).Cause(ErrTriggerMismatch).Err()
		}
	} else if trig != nil {
		return NewError(op).Node(n.ID).Context("%s nodes have no trigger record", n.Type).Cause(ErrTriggerMismatch).Err()
	}

	g.gen.Reserve(n.ID)
	g.nodes = append(g.nodes, n.Clone())
	if n.Type == TypeTrigger {
		g.triggers = append(g.triggers, record)
	}
	return nil
}

// RemoveNode deletes a node together with every connection touching it and,
// for trigger nodes, the paired trigger record. It returns the number of
// connections removed.
func (g *Graph) RemoveNode(id string) (int, error) {
	i := g.nodeIndex(id)
	if i < 0 {
		return 0, NodeNotFoundError("RemoveNode", id)
	}
	ti := -1
	if g.nodes[i].Type == TypeTrigger {
		ti = g.triggerIndex(id)
		mustHold(ti >= 0, "RemoveNode", "trigger node %s has no trigger record", id)
	}

	removed := g.RemoveConnectionsTouching([]string{id})
	g.nodes = slices.Delete(g.nodes, i, i+1)
	if ti >= 0 {
		g.triggers = slices.Delete(g.triggers, ti, ti+1)
	}
	return removed, nil
}

// AddConnection inserts a connection. A connection duplicating an existing
// (source, dest) pair is ignored and reported as not added. An empty ID is
// filled from the id generator.
func (g *Graph) AddConnection(c Connection) (bool, error) {
	const op = "AddConnection"
	if c.ID == "" {
		c.ID = g.NewConnectionID()
	}
	if !IsConnectionID(c.ID) {
		return false, NewError(op).Connection(c.ID).Context("expected %q prefix", ConnectionIDPrefix).Cause(ErrInvalidID).Err()
	}
	if g.connectionIndex(c.ID) >= 0 || g.nodeIndex(c.ID) >= 0 {
		return false, NewError(op).Connection(c.ID).Cause(ErrDuplicateID).Err()
	}
	srcType, dstType := g.NodeType(c.Source), g.NodeType(c.Dest)
	if srcType == "" {
		return false, NewError(op).Connection(c.ID).Context("source %s", c.Source).Cause(ErrNodeNotFound).Err()
	}
	if dstType == "" {
		return false, NewError(op).Connection(c.ID).Context("dest %s", c.Dest).Cause(ErrNodeNotFound).Err()
	}
	if c.Source == c.Dest {
		return false, NewError(op).Connection(c.ID).Context("node %s", c.Source).Cause(ErrSelfLoop).Err()
	}
	if g.HasConnection(c.Source, c.Dest) {
		return false, nil
	}
	if !ConnectionLegal(srcType, dstType) {
		return false, NewError(op).Connection(c.ID).Context("%s -> %s", srcType, dstType).Cause(ErrIllegalConnection).Err()
	}
	if err := checkCondition(srcType, dstType, c.Condition); err != nil {
		return false, NewError(op).Connection(c.ID).Context("condition %q", c.Condition).Cause(err).Err()
	}

	g.gen.Reserve(c.ID)
	g.connections = append(g.connections, c)
	return true, nil
}

func checkCondition(source, dest NodeType, cond string) error {
	if cond == "" {
		return nil
	}
	sourcePole, _ := ConnectionPoles(source, dest)
	if DefaultCondition(source, sourcePole) == "" || !ValidCondition(cond) {
		return ErrInvalidCondition
	}
	return nil
}

// RemoveConnection deletes a single connection by id
func (g *Graph) RemoveConnection(id string) error {
	i := g.connectionIndex(id)
	if i < 0 {
		return ConnectionNotFoundError("RemoveConnection", id)
	}
	g.connections = slices.Delete(g.connections, i, i+1)
	return nil
}

// RemoveConnectionsTouching deletes every connection with at least one
// endpoint in ids and returns how many were removed.
func (g *Graph) RemoveConnectionsTouching(ids []string) int {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	before := len(g.connections)
	g.connections = slices.DeleteFunc(g.connections, func(c Connection) bool {
		_, src := set[c.Source]
		_, dst := set[c.Dest]
		return src || dst
	})
	return before - len(g.connections)
}

// RemoveConnectionsAtPole deletes exactly the connections incident on one
// pole of a node. Event and job nodes have three poles whose connections are
// told apart by the type of the node on the other end.
func (g *Graph) RemoveConnectionsAtPole(id string, pole Pole) (int, error) {
	t := g.NodeType(id)
	if t == "" {
		return 0, NodeNotFoundError("RemoveConnectionsAtPole", id)
	}
	if !HasPole(t, pole) {
		return 0, nil
	}
	before := len(g.connections)
	g.connections = slices.DeleteFunc(g.connections, func(c Connection) bool {
		return g.connectionUsesPole(c, id, pole)
	})
	return before - len(g.connections), nil
}

// PoleConnections returns the connections incident on one pole of a node
func (g *Graph) PoleConnections(id string, pole Pole) []Connection {
	var out []Connection
	for _, c := range g.connections {
		if g.connectionUsesPole(c, id, pole) {
			out = append(out, c)
		}
	}
	return out
}

func (g *Graph) connectionUsesPole(c Connection, id string, pole Pole) bool {
	if c.Source != id && c.Dest != id {
		return false
	}
	srcType, dstType := g.NodeType(c.Source), g.NodeType(c.Dest)
	mustHold(srcType != "" && dstType != "", "PoleConnections", "connection %s has a dangling endpoint", c.ID)
	srcPole, dstPole := ConnectionPoles(srcType, dstType)
	if c.Source == id {
		return srcPole == pole
	}
	return dstPole == pole
}

// SetNodeData replaces a node's payload in place. The payload must be of the
// node's existing type.
func (g *Graph) SetNodeData(id string, data NodeData) error {
	i := g.nodeIndex(id)
	if i < 0 {
		return NodeNotFoundError("SetNodeData", id)
	}
	if data == nil || data.Kind() != g.nodes[i].Type {
		return NewError("SetNodeData").Node(id).Cause(ErrTypeImmutable).Err()
	}
	g.nodes[i].Data = data.CloneData()
	return nil
}

// MoveNode sets a node's canvas position
func (g *Graph) MoveNode(id string, x, y float64) error {
	i := g.nodeIndex(id)
	if i < 0 {
		return NodeNotFoundError("MoveNode", id)
	}
	g.nodes[i].X, g.nodes[i].Y = x, y
	return nil
}

// SetCondition changes the condition of an event/job output connection
func (g *Graph) SetCondition(connID, cond string) error {
	i := g.connectionIndex(connID)
	if i < 0 {
		return ConnectionNotFoundError("SetCondition", connID)
	}
	c := g.connections[i]
	if cond == "" {
		return NewError("SetCondition").Connection(connID).Context("empty").Cause(ErrInvalidCondition).Err()
	}
	if err := checkCondition(g.NodeType(c.Source), g.NodeType(c.Dest), cond); err != nil {
		return NewError("SetCondition").Connection(connID).Context("condition %q", cond).Cause(err).Err()
	}
	g.connections[i].Condition = cond
	return nil
}

// SetTrigger replaces the trigger record of an existing trigger node
func (g *Graph) SetTrigger(t Trigger) error {
	i := g.triggerIndex(t.ID)
	if i < 0 {
		return NewError("SetTrigger").Trigger(t.ID).Cause(ErrTriggerNotFound).Err()
	}
	g.triggers[i] = t.Clone()
	return nil
}

// String returns a short summary for logs
func (g *Graph) String() string {
	return fmt.Sprintf("workflow(nodes=%d connections=%d triggers=%d)", len(g.nodes), len(g.connections), len(g.triggers))
}
