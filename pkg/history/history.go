// Package history keeps the undo/redo snapshot stack of a workflow editor.
package history

import (
	"github.com/dd0wney/cluso-flow/pkg/selection"
	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

// DefaultLimit is the number of snapshots kept before the oldest is evicted
const DefaultLimit = 100

// View is the viewport state saved alongside each snapshot
type View struct {
	ScrollX float64 `json:"scroll_x" yaml:"scroll_x"`
	ScrollY float64 `json:"scroll_y" yaml:"scroll_y"`
	Zoom    float64 `json:"zoom" yaml:"zoom"`
}

// Snapshot is one undo step: the full graph (nodes, connections, triggers),
// the selection and the view. Snapshots are never mutated after being stored
// except through UpdateState.
type Snapshot struct {
	Graph     *workflow.Graph
	Selection map[string]selection.Flag
	View      View
}

func (s Snapshot) clone() Snapshot {
	c := Snapshot{View: s.View, Selection: make(map[string]selection.Flag, len(s.Selection))}
	if s.Graph != nil {
		c.Graph = s.Graph.Clone()
	}
	for id, f := range s.Selection {
		c.Selection[id] = f
	}
	return c
}

// History is a bounded list of snapshots with a cursor at the current state
type History struct {
	states []Snapshot
	cursor int
	limit  int
}

// New creates an empty history. A limit below 1 means DefaultLimit.
func New(limit int) *History {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &History{cursor: -1, limit: limit}
}

// AddState records a new snapshot after the cursor. Any redo states beyond
// the cursor are discarded first, and the oldest state is evicted when the
// limit is exceeded.
func (h *History) AddState(s Snapshot) {
	if h.cursor < len(h.states)-1 {
		h.states = h.states[:h.cursor+1]
	}
	h.states = append(h.states, s.clone())
	if len(h.states) > h.limit {
		drop := len(h.states) - h.limit
		h.states = append(h.states[:0:0], h.states[drop:]...)
	}
	h.cursor = len(h.states) - 1
}

// UpdateState patches the selection and view of the current snapshot in
// place without creating an undo step.
func (h *History) UpdateState(sel map[string]selection.Flag, view View) {
	if h.cursor < 0 {
		return
	}
	cur := &h.states[h.cursor]
	cur.View = view
	cur.Selection = make(map[string]selection.Flag, len(sel))
	for id, f := range sel {
		cur.Selection[id] = f
	}
}

// Undo moves the cursor back and returns a copy of the snapshot there
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	h.cursor--
	return h.states[h.cursor].clone(), true
}

// Redo moves the cursor forward and returns a copy of the snapshot there
func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	h.cursor++
	return h.states[h.cursor].clone(), true
}

// Current returns a copy of the snapshot at the cursor
func (h *History) Current() (Snapshot, bool) {
	if h.cursor < 0 {
		return Snapshot{}, false
	}
	return h.states[h.cursor].clone(), true
}

// CanUndo reports whether an earlier state exists
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether a later state exists
func (h *History) CanRedo() bool {
	return h.cursor >= 0 && h.cursor < len(h.states)-1
}

// Len returns the number of stored snapshots
func (h *History) Len() int {
	return len(h.states)
}

// Position returns the cursor index
func (h *History) Position() int {
	return h.cursor
}

// Limit returns the maximum number of snapshots kept
func (h *History) Limit() int {
	return h.limit
}

// Reset drops every snapshot
func (h *History) Reset() {
	h.states = nil
	h.cursor = -1
}
