package editor

import (
	"errors"
	"slices"
	"time"

	"github.com/dd0wney/cluso-flow/pkg/logging"
	"github.com/dd0wney/cluso-flow/pkg/notify"
	"github.com/dd0wney/cluso-flow/pkg/selection"
	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

// SolderPhase is the state of the connection-drawing protocol
type SolderPhase uint8

const (
	// SolderIdle means no connection is being drawn
	SolderIdle SolderPhase = iota
	// SolderActive means a pole was grabbed and the cursor drags a pending connection
	SolderActive
	// SolderPaused means the drag was released over empty canvas and a new
	// node is about to be created to finish the connection
	SolderPaused
)

func (p SolderPhase) String() string {
	switch p {
	case SolderActive:
		return "soldering"
	case SolderPaused:
		return "paused"
	default:
		return "idle"
	}
}

// Solder is a read-only view of the solder protocol state
type Solder struct {
	Phase     SolderPhase
	StartNode string
	StartPole workflow.Pole
	// EndPole is the pole kind the far end must offer
	EndPole workflow.Pole
	// Allowed lists the node types that may terminate the connection
	Allowed []workflow.NodeType
	// CursorX and CursorY are kept from the canvas release while paused
	CursorX, CursorY float64
	// Picked is the node type chosen from the paused menu
	Picked workflow.NodeType
}

type solderState struct {
	state     SolderPhase
	startNode string
	startPole workflow.Pole
	startType workflow.NodeType
	allowed   []workflow.NodeType
	cursorX   float64
	cursorY   float64
	picked    workflow.NodeType
}

// Solder returns the current solder protocol state
func (s *Session) Solder() Solder {
	return Solder{
		Phase:     s.solder.state,
		StartNode: s.solder.startNode,
		StartPole: s.solder.startPole,
		EndPole:   workflow.Opposite(s.solder.startPole),
		Allowed:   slices.Clone(s.solder.allowed),
		CursorX:   s.solder.cursorX,
		CursorY:   s.solder.cursorY,
		Picked:    s.solder.picked,
	}
}

// Soldering reports whether a solder is in progress, paused or not
func (s *Session) Soldering() bool {
	return s.solder.state != SolderIdle
}

func (s *Session) setSolder(next solderState) {
	prev := s.solder.state
	s.solder = next
	if prev == next.state {
		return
	}
	s.metrics.SetSolderState(next.state.String())
	s.publish(notify.KindSolder, "solder")
	s.logger.Debug("solder state changed", logging.State(next.state.String()), logging.String("from", prev.String()))
}

// StartSolder grabs a pole of the solo-selected node
func (s *Session) StartSolder(nodeID string, pole workflow.Pole) bool {
	const gesture = "start_solder"
	if s.solder.state != SolderIdle {
		return s.reject(gesture, "solder in progress", logging.NodeID(nodeID))
	}
	if solo, ok := s.selection.Solo(); !ok || solo != nodeID {
		return s.reject(gesture, "poles are only offered on a single selected node", logging.NodeID(nodeID))
	}
	t := s.graph.NodeType(nodeID)
	if !workflow.HasPole(t, pole) {
		return s.reject(gesture, "node has no such pole", logging.NodeID(nodeID), logging.Pole(string(pole)))
	}

	s.setSolder(solderState{
		state:     SolderActive,
		startNode: nodeID,
		startPole: pole,
		startType: t,
		allowed:   workflow.AllowedEndTypes(t, pole),
	})
	return true
}

// CompleteSolder ends the drag on a pole of another node. Clicking the origin
// or an incompatible pole cancels the solder. A connection that already
// exists ends the solder without an edit.
func (s *Session) CompleteSolder(nodeID string, pole workflow.Pole) bool {
	const gesture = "complete_solder"
	start := time.Now()
	if s.solder.state != SolderActive {
		return s.reject(gesture, "not soldering", logging.NodeID(nodeID))
	}
	if nodeID == s.solder.startNode {
		s.cancel("origin clicked")
		return false
	}
	endType := s.graph.NodeType(nodeID)
	if pole != workflow.Opposite(s.solder.startPole) || !workflow.CanConnect(s.solder.startType, s.solder.startPole, endType) {
		s.cancel("incompatible target")
		return false
	}

	source, dest, sourcePole, _ := workflow.Orient(s.solder.startNode, s.solder.startPole, nodeID)
	if s.graph.HasConnection(source, dest) {
		s.setSolder(solderState{})
		return s.reject(gesture, "connection exists", logging.NodeID(source), logging.String("dest", dest))
	}

	next := s.graph.Clone()
	conn := workflow.Connection{
		Source:    source,
		Dest:      dest,
		Condition: workflow.DefaultCondition(next.NodeType(source), sourcePole),
	}
	if _, err := next.AddConnection(conn); err != nil {
		s.setSolder(solderState{})
		return s.reject(gesture, err.Error())
	}

	s.setSolder(solderState{})
	s.commit("connect", start, next, logging.NodeID(source), logging.String("dest", dest))
	return true
}

// ReleaseOnCanvas pauses the solder over empty canvas and returns the node
// types offered for the far end.
func (s *Session) ReleaseOnCanvas(x, y float64) []workflow.NodeType {
	if s.solder.state != SolderActive {
		s.reject("release_solder", "not soldering")
		return nil
	}
	next := s.solder
	next.state = SolderPaused
	next.cursorX, next.cursorY = x, y
	s.setSolder(next)
	return slices.Clone(next.allowed)
}

// PickNodeType chooses the type of the node that will finish a paused solder
func (s *Session) PickNodeType(t workflow.NodeType) error {
	if s.solder.state != SolderPaused {
		return ErrNotPaused
	}
	if !slices.Contains(s.solder.allowed, t) {
		s.reject("pick_node_type", "type not offered", logging.NodeType(string(t)))
		return ErrTypeNotOffered
	}
	s.solder.picked = t
	return nil
}

// ResumeWithNode creates the picked node next to the release point and
// connects it. Node and connection land in a single undo step. Invalid data
// leaves the solder paused so the dialog can be retried.
func (s *Session) ResumeWithNode(data workflow.NodeData, trig *workflow.Trigger) (string, error) {
	start := time.Now()
	if s.solder.state != SolderPaused || s.solder.picked == "" {
		return "", ErrNotPaused
	}
	t := s.solder.picked
	next := s.graph.Clone()
	id := next.NewNodeID()
	data, trig, err := validatePayload(id, t, data, trig)
	if err != nil {
		return "", err
	}

	x, y := s.placement(workflow.Opposite(s.solder.startPole))
	if err := next.AddNode(workflow.Node{ID: id, Type: t, Data: data, X: x, Y: y}, trig); err != nil {
		return "", err
	}

	source, dest, sourcePole, _ := workflow.Orient(s.solder.startNode, s.solder.startPole, id)
	conn := workflow.Connection{
		Source:    source,
		Dest:      dest,
		Condition: workflow.DefaultCondition(next.NodeType(source), sourcePole),
	}
	if _, err := next.AddConnection(conn); err != nil {
		return "", err
	}

	s.setSolder(solderState{})
	s.selection.ReplaceWith([]string{id}, selection.Fresh)
	s.commit("solder_node", start, next, logging.NodeID(id), logging.NodeType(string(t)))
	return id, nil
}

// CreateNodeFromSolder runs the pick, dialog and resume steps of a paused
// solder in one call. Any failure cancels the solder.
func (s *Session) CreateNodeFromSolder(t workflow.NodeType, dlg NodeDialog) (string, error) {
	if err := s.PickNodeType(t); err != nil {
		if !errors.Is(err, ErrNotPaused) {
			s.cancel("type not offered")
		}
		return "", err
	}
	data, trig, err := dlg.Create(t)
	if err != nil {
		s.cancel("dialog failed")
		return "", err
	}
	id, err := s.ResumeWithNode(data, trig)
	if err != nil {
		s.cancel("invalid node")
		return "", err
	}
	return id, nil
}

// CancelSolder abandons any solder in progress
func (s *Session) CancelSolder() bool {
	if s.solder.state == SolderIdle {
		return false
	}
	s.cancel("cancelled")
	return true
}

func (s *Session) cancel(reason string) {
	s.logger.Debug("solder cancelled", logging.NodeID(s.solder.startNode), logging.Reason(reason))
	s.setSolder(solderState{})
}

// placement positions a node created at the release point so that the pole
// it fulfils sits under the cursor.
func (s *Session) placement(fulfils workflow.Pole) (x, y float64) {
	cx, cy := s.solder.cursorX, s.solder.cursorY
	w, h := s.cfg.Footprint.Width, s.cfg.Footprint.Height
	switch fulfils {
	case workflow.PoleInput:
		return cx, cy - h/2
	case workflow.PoleOutput:
		return cx - w, cy - h/2
	case workflow.PoleUp:
		return cx - w/2, cy
	case workflow.PoleDown:
		return cx - w/2, cy - h
	}
	return cx, cy
}

// DetachPole removes every connection on one pole of a node
func (s *Session) DetachPole(nodeID string, pole workflow.Pole) bool {
	const gesture = "detach_pole"
	start := time.Now()
	if s.solder.state != SolderIdle {
		return s.reject(gesture, "solder in progress", logging.NodeID(nodeID))
	}
	next := s.graph.Clone()
	n, err := next.RemoveConnectionsAtPole(nodeID, pole)
	if err != nil {
		return s.reject(gesture, err.Error(), logging.NodeID(nodeID))
	}
	if n == 0 {
		return s.reject(gesture, "no connections on pole", logging.NodeID(nodeID), logging.Pole(string(pole)))
	}
	s.commit(gesture, start, next, logging.NodeID(nodeID), logging.Pole(string(pole)), logging.Count(n))
	return true
}
