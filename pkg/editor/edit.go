package editor

import (
	"time"

	"github.com/dd0wney/cluso-flow/pkg/layout"
	"github.com/dd0wney/cluso-flow/pkg/logging"
	"github.com/dd0wney/cluso-flow/pkg/selection"
	"github.com/dd0wney/cluso-flow/pkg/validation"
	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

// AddNode creates a node from dialog data at (x, y) and selects it
func (s *Session) AddNode(data workflow.NodeData, trig *workflow.Trigger, x, y float64) (string, error) {
	const op = "add_node"
	start := time.Now()
	if s.solder.state != SolderIdle {
		return "", ErrSolderActive
	}
	if data == nil {
		return "", workflow.NewError(op).Cause(workflow.ErrDataMismatch).Context("no data").Err()
	}

	next := s.graph.Clone()
	id := next.NewNodeID()
	data, trig, err := validatePayload(id, data.Kind(), data, trig)
	if err != nil {
		return "", err
	}
	if err := next.AddNode(workflow.Node{ID: id, Type: data.Kind(), Data: data, X: x, Y: y}, trig); err != nil {
		return "", err
	}

	s.selection.ReplaceWith([]string{id}, selection.Fresh)
	s.commit(op, start, next, logging.NodeID(id), logging.NodeType(string(data.Kind())))
	return id, nil
}

// EditNode replaces the payload of the solo-selected node
func (s *Session) EditNode(id string, data workflow.NodeData) error {
	const op = "edit_node"
	start := time.Now()
	if s.solder.state != SolderIdle {
		return ErrSolderActive
	}
	if solo, ok := s.selection.Solo(); !ok || solo != id {
		return ErrNotSolo
	}
	t := s.graph.NodeType(id)
	if t == "" {
		return workflow.NodeNotFoundError(op, id)
	}
	if data == nil || data.Kind() != t {
		return workflow.NewError(op).Node(id).Cause(workflow.ErrTypeImmutable).Err()
	}
	if err := validation.ValidateNodeData(data); err != nil {
		return err
	}

	next := s.graph.Clone()
	if err := next.SetNodeData(id, data); err != nil {
		return err
	}
	s.commit(op, start, next, logging.NodeID(id))
	return nil
}

// SetTrigger replaces the firing configuration of trigger node id
func (s *Session) SetTrigger(id string, trig workflow.Trigger) error {
	const op = "set_trigger"
	start := time.Now()
	if s.solder.state != SolderIdle {
		return ErrSolderActive
	}
	if trig.ID == "" {
		trig.ID = id
	}
	if trig.ID != id {
		return workflow.NewError(op).Trigger(trig.ID).Context("node %s", id).Cause(workflow.ErrTriggerMismatch).Err()
	}
	if err := validation.ValidateTrigger(&trig); err != nil {
		return err
	}

	next := s.graph.Clone()
	if err := next.SetTrigger(trig); err != nil {
		return err
	}
	s.commit(op, start, next, logging.NodeID(id), logging.String("trigger_type", string(trig.Type)))
	return nil
}

// MoveSelection offsets every selected node, typically at the end of a drag
func (s *Session) MoveSelection(dx, dy float64) bool {
	const op = "move"
	start := time.Now()
	if s.solder.state != SolderIdle {
		return s.reject(op, "solder in progress")
	}
	if dx == 0 && dy == 0 {
		return false
	}
	ids := s.selectedNodes()
	if len(ids) == 0 {
		return s.reject(op, "nothing selected")
	}

	next := s.graph.Clone()
	for _, id := range ids {
		n, _ := next.Node(id)
		if err := next.MoveNode(id, n.X+dx, n.Y+dy); err != nil {
			panic(err)
		}
	}
	s.commit(op, start, next, logging.Count(len(ids)))
	return true
}

// SetCondition changes the job outcome a connection is gated on
func (s *Session) SetCondition(connID, cond string) error {
	const op = "set_condition"
	start := time.Now()
	if s.solder.state != SolderIdle {
		return ErrSolderActive
	}
	c, ok := s.graph.Connection(connID)
	if !ok {
		return workflow.ConnectionNotFoundError(op, connID)
	}
	if c.Condition == cond {
		return nil
	}

	next := s.graph.Clone()
	if err := next.SetCondition(connID, cond); err != nil {
		return err
	}
	s.commit(op, start, next, logging.ConnectionID(connID), logging.String("condition", cond))
	return nil
}

// DeleteConnection removes a single connection
func (s *Session) DeleteConnection(connID string) bool {
	const op = "delete_connection"
	start := time.Now()
	if s.solder.state != SolderIdle {
		return s.reject(op, "solder in progress")
	}
	next := s.graph.Clone()
	if err := next.RemoveConnection(connID); err != nil {
		return s.reject(op, "no such connection", logging.ConnectionID(connID))
	}
	s.commit(op, start, next, logging.ConnectionID(connID))
	return true
}

// Arrange lays the whole workflow out left to right. Nothing is recorded
// when every node is already in place.
func (s *Session) Arrange() bool {
	const op = "arrange"
	start := time.Now()
	if s.solder.state != SolderIdle {
		return s.reject(op, "solder in progress")
	}

	ll := layout.NewLayeredLayout(layout.Config{
		NodeWidth:  s.cfg.Footprint.Width,
		NodeHeight: s.cfg.Footprint.Height,
		ColumnGap:  s.cfg.Arrange.ColumnGap,
		RowGap:     s.cfg.Arrange.RowGap,
	})
	positions, err := ll.ComputeLayout(s.graph, s.graph.NodeIDs())
	if err != nil {
		return s.reject(op, err.Error())
	}

	next := s.graph.Clone()
	moved, err := layout.Apply(next, positions)
	if err != nil {
		panic(err)
	}
	if len(moved) == 0 {
		return s.reject(op, "already arranged")
	}
	s.commit(op, start, next, logging.Count(len(moved)))
	return true
}

// Click selects id alone, keeping the group when id is already part of it
func (s *Session) Click(id string) bool {
	if !s.graph.HasNode(id) {
		return s.reject("click", "no such node", logging.NodeID(id))
	}
	s.selection.Click(id)
	s.selectionChanged("click")
	return true
}

// ToggleSelect adds or removes id from the selection
func (s *Session) ToggleSelect(id string) bool {
	if !s.graph.HasNode(id) {
		return s.reject("toggle_select", "no such node", logging.NodeID(id))
	}
	s.selection.Toggle(id)
	s.selectionChanged("toggle_select")
	return true
}

// SelectAll selects every node
func (s *Session) SelectAll() {
	s.selection.ReplaceWith(s.graph.NodeIDs(), selection.Selected)
	s.selectionChanged("select_all")
}

// ClearSelection deselects everything
func (s *Session) ClearSelection() bool {
	if s.selection.Len() == 0 {
		return false
	}
	s.selection.Clear()
	s.selectionChanged("clear_selection")
	return true
}

// Settle decays the highlight of freshly created nodes after a render
func (s *Session) Settle() {
	s.selection.Settle()
	s.history.UpdateState(s.selection.Map(), s.view)
}
