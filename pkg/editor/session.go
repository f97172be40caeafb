// Package editor implements an interactive workflow editing session: the
// solder protocol for drawing connections, selection-scoped bulk edits and
// undo/redo over whole-graph snapshots.
//
// A Session is owned by a single goroutine. Renderers on other goroutines
// observe it through the notify bus.
package editor

import (
	"time"

	"github.com/dd0wney/cluso-flow/pkg/config"
	"github.com/dd0wney/cluso-flow/pkg/history"
	"github.com/dd0wney/cluso-flow/pkg/logging"
	"github.com/dd0wney/cluso-flow/pkg/notify"
	"github.com/dd0wney/cluso-flow/pkg/record"
	"github.com/dd0wney/cluso-flow/pkg/selection"
	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

// Recorder receives editor instrumentation; *metrics.Registry implements it
type Recorder interface {
	RecordEdit(operation string, duration time.Duration)
	RecordRejectedGesture(gesture string)
	RecordHistoryNavigation(direction string)
	UpdateHistory(depth, position int)
	UpdateWorkflow(nodes, connections, triggers, selected int)
	SetSolderState(state string)
}

type nopRecorder struct{}

func (nopRecorder) RecordEdit(string, time.Duration)    {}
func (nopRecorder) RecordRejectedGesture(string)        {}
func (nopRecorder) RecordHistoryNavigation(string)      {}
func (nopRecorder) UpdateHistory(int, int)              {}
func (nopRecorder) UpdateWorkflow(int, int, int, int)   {}
func (nopRecorder) SetSolderState(string)               {}

// Options configures a session. Zero fields fall back to defaults.
type Options struct {
	Config   *config.Config
	Logger   logging.Logger
	Metrics  Recorder
	Notifier notify.Publisher
	// IDSource feeds id generation for a session created from a record
	IDSource workflow.IDSource
}

// Session is an open workflow editor
type Session struct {
	graph     *workflow.Graph
	selection *selection.Set
	solder    solderState
	history   *history.History
	view      history.View

	id    string
	title string

	cfg      config.Config
	logger   logging.Logger
	metrics  Recorder
	notifier notify.Publisher
}

// New opens a session on g, which must satisfy every graph invariant. A nil
// g starts an empty workflow. The session takes ownership of g.
func New(g *workflow.Graph, opts Options) (*Session, error) {
	if g == nil {
		g = workflow.NewGraph(opts.IDSource)
	}
	if err := g.Check(); err != nil {
		return nil, err
	}

	cfg := config.Default()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	var rec Recorder = nopRecorder{}
	if opts.Metrics != nil {
		rec = opts.Metrics
	}
	var pub notify.Publisher = notify.Discard{}
	if opts.Notifier != nil {
		pub = opts.Notifier
	}

	s := &Session{
		graph:     g,
		selection: selection.New(),
		history:   history.New(cfg.History.Limit),
		view:      history.View{Zoom: 1},
		cfg:       cfg,
		logger:    logger.With(logging.Component("editor")),
		metrics:   rec,
		notifier:  pub,
	}
	s.history.AddState(s.snapshot())
	s.metrics.SetSolderState(SolderIdle.String())
	s.refreshGauges()

	nodes, conns := g.Len()
	s.logger.Info("session opened", logging.Int("nodes", nodes), logging.Int("connections", conns))
	return s, nil
}

// Open starts a session on a saved event record
func Open(r record.Record, opts Options) (*Session, error) {
	g, err := r.Graph(opts.IDSource)
	if err != nil {
		return nil, err
	}
	s, err := New(g, opts)
	if err != nil {
		return nil, err
	}
	s.id, s.title = r.ID, r.Title
	return s, nil
}

// Graph returns a copy of the current workflow graph
func (s *Session) Graph() *workflow.Graph {
	return s.graph.Clone()
}

// Record returns the current state as an event record
func (s *Session) Record() record.Record {
	return record.New(s.id, s.title, s.graph)
}

// Selection returns the selected node ids, sorted
func (s *Session) Selection() []string {
	return s.selection.IDs()
}

// SelectionFlags returns the selection with its per-node flags
func (s *Session) SelectionFlags() map[string]selection.Flag {
	return s.selection.Map()
}

// Solo returns the selected node id when exactly one node is selected
func (s *Session) Solo() (string, bool) {
	return s.selection.Solo()
}

// Poles returns the poles offered for soldering, which are only exposed on a
// solo-selected node.
func (s *Session) Poles() []workflow.Pole {
	id, ok := s.selection.Solo()
	if !ok {
		return nil
	}
	return workflow.Poles(s.graph.NodeType(id))
}

// View returns the current scroll and zoom
func (s *Session) View() history.View {
	return s.view
}

// CanUndo reports whether Undo would do anything
func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would do anything
func (s *Session) CanRedo() bool {
	return s.history.CanRedo()
}

// Undo restores the previous snapshot verbatim
func (s *Session) Undo() bool {
	if s.solder.state != SolderIdle {
		return s.reject("undo", "solder in progress")
	}
	snap, ok := s.history.Undo()
	if !ok {
		return s.reject("undo", "nothing to undo")
	}
	s.restore(snap, "undo")
	return true
}

// Redo re-applies the snapshot undone last
func (s *Session) Redo() bool {
	if s.solder.state != SolderIdle {
		return s.reject("redo", "solder in progress")
	}
	snap, ok := s.history.Redo()
	if !ok {
		return s.reject("redo", "nothing to redo")
	}
	s.restore(snap, "redo")
	return true
}

func (s *Session) restore(snap history.Snapshot, direction string) {
	s.graph = snap.Graph
	s.selection = selection.FromMap(snap.Selection)
	s.view = snap.View

	s.metrics.RecordHistoryNavigation(direction)
	s.refreshGauges()
	s.publish(notify.KindGraph, direction)
	s.logger.Debug("history restored", logging.Operation(direction), logging.Int("position", s.history.Position()))
}

// SetView records a new scroll/zoom without creating an undo step
func (s *Session) SetView(v history.View) {
	s.view = v
	s.history.UpdateState(s.selection.Map(), s.view)
	s.publish(notify.KindView, "view")
}

func (s *Session) snapshot() history.Snapshot {
	return history.Snapshot{Graph: s.graph, Selection: s.selection.Map(), View: s.view}
}

// commit installs next as the current graph and records one undo step.
// next must already carry every change of the edit; a graph that breaks an
// invariant here is a programming error.
func (s *Session) commit(op string, start time.Time, next *workflow.Graph, fields ...logging.Field) {
	if err := next.Check(); err != nil {
		s.logger.Error("edit broke workflow invariants", logging.Operation(op), logging.Error(err))
		panic(err)
	}

	s.graph = next
	s.history.AddState(s.snapshot())

	s.metrics.RecordEdit(op, time.Since(start))
	s.refreshGauges()
	s.publish(notify.KindGraph, op)
	s.logger.Debug("edit committed", append(fields, logging.Operation(op))...)
}

// selectionChanged soft-updates history with the new selection
func (s *Session) selectionChanged(op string) {
	s.history.UpdateState(s.selection.Map(), s.view)
	s.refreshGauges()
	s.publish(notify.KindSelection, op)
}

// reject logs and counts a gesture that was ignored. It always returns false.
func (s *Session) reject(gesture, reason string, fields ...logging.Field) bool {
	s.metrics.RecordRejectedGesture(gesture)
	s.logger.Debug("gesture ignored", append(fields, logging.Operation(gesture), logging.Reason(reason))...)
	return false
}

func (s *Session) refreshGauges() {
	nodes, conns := s.graph.Len()
	s.metrics.UpdateWorkflow(nodes, conns, len(s.graph.Triggers()), s.selection.Len())
	s.metrics.UpdateHistory(s.history.Len(), s.history.Position())
}

func (s *Session) publish(kind notify.Kind, op string) {
	nodes, conns := s.graph.Len()
	s.notifier.Publish(notify.Change{
		Kind:        kind,
		Operation:   op,
		Nodes:       nodes,
		Connections: conns,
		Selected:    s.selection.IDs(),
		Solder:      s.solder.state.String(),
	})
}
