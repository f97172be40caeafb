package editor

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-flow/pkg/config"
	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

var allPoles = []workflow.Pole{workflow.PoleInput, workflow.PoleOutput, workflow.PoleDown, workflow.PoleUp}

var keys = []string{"ctrl+z", "ctrl+y", "delete", "ctrl+d", "ctrl+e", "ctrl+a", "escape"}

type countingRecorder struct {
	nopRecorder
	edits       int
	navigations int
}

func (r *countingRecorder) RecordEdit(string, time.Duration) { r.edits++ }
func (r *countingRecorder) RecordHistoryNavigation(string)   { r.navigations++ }

// drive interprets a stream of integers as user gestures and editor calls
func drive(s *Session, ops []int) {
	for i := 0; i+2 < len(ops); i += 3 {
		op, a, b := ops[i]%9, ops[i+1], ops[i+2]
		ids := s.graph.NodeIDs()
		pick := func(n int) string {
			if len(ids) == 0 {
				return "n0"
			}
			return ids[n%len(ids)]
		}

		switch op {
		case 0:
			typ := workflow.NodeTypes[a%len(workflow.NodeTypes)]
			_, _ = s.AddNode(validData(typ), nil, float64(a), float64(b))
		case 1:
			s.Handle(NodeClick{Node: pick(a), Shift: b%2 == 0})
		case 2:
			s.Handle(PoleDown{Node: pick(a), Pole: allPoles[b%len(allPoles)]})
		case 3:
			s.Handle(CanvasRelease{X: float64(a), Y: float64(b)})
		case 4:
			if s.solder.state == SolderPaused {
				allowed := s.solder.allowed
				typ := allowed[a%len(allowed)]
				_, _ = s.CreateNodeFromSolder(typ, DialogFunc(func(t workflow.NodeType) (workflow.NodeData, *workflow.Trigger, error) {
					return validData(t), nil, nil
				}))
			}
		case 5:
			s.Handle(KeyPress{Key: keys[a%len(keys)]})
		case 6:
			s.Handle(DragEnd{DX: float64(a % 50), DY: float64(b % 50)})
		case 7:
			s.DetachPole(pick(a), allPoles[b%len(allPoles)])
		case 8:
			s.Handle(CanvasClick{})
		}
	}
}

// TestSessionInvariants checks that no gesture sequence can corrupt the
// graph or the history, and that undo/redo walk back and forth exactly.
func TestSessionInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	newSession := func() *Session {
		cfg := config.Default()
		cfg.History.Limit = 1000
		s, err := New(workflow.NewGraph(workflow.SequenceSource()), Options{Config: &cfg})
		if err != nil {
			panic(err)
		}
		return s
	}

	properties.Property("graph stays consistent after every gesture", prop.ForAll(
		func(ops []int) bool {
			s := newSession()
			for i := 0; i+2 < len(ops); i += 3 {
				drive(s, ops[i:i+3])
				if s.graph.Check() != nil {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("every committed edit adds exactly one history entry", prop.ForAll(
		func(ops []int) bool {
			rec := &countingRecorder{}
			s := newSession()
			s.metrics = rec
			for i := 0; i+2 < len(ops); i += 3 {
				edits, navs := rec.edits, rec.navigations
				depth, pos := s.history.Len(), s.history.Position()
				drive(s, ops[i:i+3])

				switch {
				case rec.edits == edits+1:
					if s.history.Position() != pos+1 || s.history.Len() != pos+2 {
						return false
					}
				case rec.edits == edits && rec.navigations <= navs+1:
					if s.history.Len() != depth {
						return false
					}
				default:
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("undo all then redo all walks the whole history", prop.ForAll(
		func(ops []int) bool {
			s := newSession()
			initial := stateOf(s)
			drive(s, ops)
			s.CancelSolder()
			for s.Redo() {
			}
			final := stateOf(s)

			for s.Undo() {
			}
			if !cmp.Equal(initial, stateOf(s), cmpopts.EquateEmpty()) {
				return false
			}
			for s.Redo() {
			}
			return cmp.Equal(final, stateOf(s), cmpopts.EquateEmpty())
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}
