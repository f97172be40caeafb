package editor

import (
	"time"

	"github.com/dd0wney/cluso-flow/pkg/logging"
	"github.com/dd0wney/cluso-flow/pkg/selection"
	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

// selectedNodes returns the selected ids that still exist, in graph order
func (s *Session) selectedNodes() []string {
	var ids []string
	for _, id := range s.graph.NodeIDs() {
		if s.selection.Has(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Duplicate copies the selected nodes and the connections among them. The
// copies are offset, get fresh ids and become the new selection. Trigger
// copies get their own trigger record.
func (s *Session) Duplicate() bool {
	const op = "duplicate"
	start := time.Now()
	if s.solder.state != SolderIdle {
		return s.reject(op, "solder in progress")
	}
	ids := s.selectedNodes()
	if len(ids) == 0 {
		return s.reject(op, "nothing selected")
	}

	next := s.graph.Clone()
	dx, dy := s.cfg.Duplicate.OffsetX, s.cfg.Duplicate.OffsetY
	remap := make(map[string]string, len(ids))
	copies := make([]string, 0, len(ids))
	for _, id := range ids {
		n, _ := next.Node(id)
		copyID := next.NewNodeID()
		remap[id] = copyID

		var trig *workflow.Trigger
		if n.Type == workflow.TypeTrigger {
			rec, ok := next.Trigger(id)
			if !ok {
				panic(workflow.NewError(op).Node(id).Context("trigger node without record").Cause(workflow.ErrInvariant).Err())
			}
			rec.ID = copyID
			trig = &rec
		}

		n.ID, n.X, n.Y = copyID, n.X+dx, n.Y+dy
		if err := next.AddNode(n, trig); err != nil {
			panic(err)
		}
		copies = append(copies, copyID)
	}

	// Only connections with both ends in the selection are copied.
	for _, c := range s.graph.Connections() {
		src, okSrc := remap[c.Source]
		dst, okDst := remap[c.Dest]
		if !okSrc || !okDst {
			continue
		}
		if _, err := next.AddConnection(workflow.Connection{Source: src, Dest: dst, Condition: c.Condition}); err != nil {
			panic(err)
		}
	}

	s.selection.ReplaceWith(copies, selection.Fresh)
	s.commit(op, start, next, logging.Count(len(copies)))
	return true
}

// Detach removes every connection touching a selected node. The nodes stay.
func (s *Session) Detach() bool {
	const op = "detach"
	start := time.Now()
	if s.solder.state != SolderIdle {
		return s.reject(op, "solder in progress")
	}
	ids := s.selectedNodes()
	if len(ids) == 0 {
		return s.reject(op, "nothing selected")
	}

	next := s.graph.Clone()
	removed := next.RemoveConnectionsTouching(ids)
	if removed == 0 {
		return s.reject(op, "no connections to remove")
	}
	s.commit(op, start, next, logging.Count(removed))
	return true
}

// Delete removes the selected nodes with their connections and trigger
// records, then clears the selection.
func (s *Session) Delete() bool {
	const op = "delete"
	start := time.Now()
	if s.solder.state != SolderIdle {
		return s.reject(op, "solder in progress")
	}
	ids := s.selectedNodes()
	if len(ids) == 0 {
		return s.reject(op, "nothing selected")
	}

	next := s.graph.Clone()
	removed := 0
	for _, id := range ids {
		n, err := next.RemoveNode(id)
		if err != nil {
			panic(err)
		}
		removed += n
	}

	s.selection.Clear()
	s.commit(op, start, next, logging.Count(len(ids)), logging.Int("connections", removed))
	return true
}
