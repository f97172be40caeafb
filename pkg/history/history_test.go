package history

import (
	"testing"

	"github.com/dd0wney/cluso-flow/pkg/selection"
	"github.com/dd0wney/cluso-flow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotWithNodes builds a snapshot holding n event nodes
func snapshotWithNodes(t *testing.T, n int) Snapshot {
	t.Helper()
	g := workflow.NewGraph(workflow.SequenceSource())
	for i := 0; i < n; i++ {
		require.NoError(t, g.AddNode(workflow.Node{ID: g.NewNodeID(), Type: workflow.TypeEvent}, nil))
	}
	return Snapshot{Graph: g, Selection: map[string]selection.Flag{}}
}

func nodeCount(s Snapshot) int {
	n, _ := s.Graph.Len()
	return n
}

func TestUndoRedo(t *testing.T) {
	h := New(0)
	assert.Equal(t, DefaultLimit, h.Limit())

	for i := 0; i < 3; i++ {
		h.AddState(snapshotWithNodes(t, i))
	}
	require.Equal(t, 3, h.Len())
	assert.False(t, h.CanRedo())

	s, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, 1, nodeCount(s))

	s, ok = h.Undo()
	require.True(t, ok)
	assert.Equal(t, 0, nodeCount(s))

	_, ok = h.Undo()
	assert.False(t, ok, "undo past the first state")

	s, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, 1, nodeCount(s))
}

func TestAddStateForksHistory(t *testing.T) {
	h := New(10)
	h.AddState(snapshotWithNodes(t, 0))
	h.AddState(snapshotWithNodes(t, 1))
	h.AddState(snapshotWithNodes(t, 2))

	h.Undo()
	h.Undo()
	h.AddState(snapshotWithNodes(t, 5))

	assert.Equal(t, 2, h.Len())
	assert.False(t, h.CanRedo(), "redo must be unreachable after a fork")
	_, ok := h.Redo()
	assert.False(t, ok)

	s, _ := h.Current()
	assert.Equal(t, 5, nodeCount(s))
}

func TestLimitEvictsOldest(t *testing.T) {
	h := New(3)
	for i := 0; i < 5; i++ {
		h.AddState(snapshotWithNodes(t, i))
	}
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Position())

	h.Undo()
	s, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, 2, nodeCount(s), "oldest surviving state")
	assert.False(t, h.CanUndo())
}

func TestUpdateStateIsSoft(t *testing.T) {
	h := New(10)
	h.AddState(snapshotWithNodes(t, 0))
	h.AddState(snapshotWithNodes(t, 1))

	h.UpdateState(map[string]selection.Flag{"n1": selection.Selected}, View{ScrollX: 40, Zoom: 2})
	assert.Equal(t, 2, h.Len(), "UpdateState must not add a step")

	h.Undo()
	s, _ := h.Redo()
	assert.Equal(t, View{ScrollX: 40, Zoom: 2}, s.View)
	assert.Equal(t, selection.Selected, s.Selection["n1"])
}

func TestSnapshotsAreIsolated(t *testing.T) {
	h := New(10)
	snap := snapshotWithNodes(t, 1)
	h.AddState(snap)

	// Mutating the caller's graph must not leak into the stored snapshot.
	require.NoError(t, snap.Graph.AddNode(workflow.Node{ID: snap.Graph.NewNodeID(), Type: workflow.TypeJob}, nil))
	cur, _ := h.Current()
	assert.Equal(t, 1, nodeCount(cur))

	// Nor may mutating a returned copy.
	require.NoError(t, cur.Graph.AddNode(workflow.Node{ID: cur.Graph.NewNodeID(), Type: workflow.TypeJob}, nil))
	again, _ := h.Current()
	assert.Equal(t, 1, nodeCount(again))
}

func TestEmptyHistory(t *testing.T) {
	h := New(5)
	_, ok := h.Current()
	assert.False(t, ok)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	h.UpdateState(nil, View{})

	h.AddState(snapshotWithNodes(t, 0))
	h.Reset()
	assert.Equal(t, 0, h.Len())
}
