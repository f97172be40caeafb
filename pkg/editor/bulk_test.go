package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-flow/pkg/selection"
	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

// chain builds trigger -> event -> action with the trigger on a schedule
func chain(t *testing.T) (g *workflow.Graph, trig, ev, action string) {
	t.Helper()
	g = testGraph()
	trig = g.NewNodeID()
	schedule := workflow.Trigger{ID: trig, Type: workflow.TriggerSchedule, Enabled: true, Hours: []int{3}, Minutes: []int{30}}
	require.NoError(t, g.AddNode(workflow.Node{ID: trig, Type: workflow.TypeTrigger, Data: validData(workflow.TypeTrigger), X: 100, Y: 100}, &schedule))
	ev = testNode(t, g, workflow.TypeEvent, 400, 100)
	action = testNode(t, g, workflow.TypeAction, 700, 100)
	testConnect(t, g, trig, ev)
	testConnect(t, g, ev, action)
	return g, trig, ev, action
}

func TestDuplicateTriggerAndEvent(t *testing.T) {
	g, trig, ev, action := chain(t)
	s := testSession(t, g)

	s.Click(trig)
	s.ToggleSelect(ev)
	require.True(t, s.Duplicate())

	copies := s.Selection()
	require.Len(t, copies, 2)
	for _, id := range copies {
		assert.Equal(t, selection.Fresh, s.SelectionFlags()[id])
		assert.NotContains(t, []string{trig, ev, action}, id)
	}

	out := s.Graph()
	nodes, conns := out.Len()
	assert.Equal(t, 5, nodes)
	assert.Equal(t, 3, conns, "only the trigger -> event edge is internal to the selection")

	var trigCopy, evCopy workflow.Node
	for _, id := range copies {
		n, _ := out.Node(id)
		switch n.Type {
		case workflow.TypeTrigger:
			trigCopy = n
		case workflow.TypeEvent:
			evCopy = n
		}
	}
	assert.Equal(t, 140.0, trigCopy.X)
	assert.Equal(t, 140.0, trigCopy.Y)
	assert.Equal(t, 440.0, evCopy.X)
	assert.Equal(t, validData(workflow.TypeEvent), evCopy.Data)

	assert.True(t, out.HasConnection(trigCopy.ID, evCopy.ID))
	assert.False(t, out.HasConnection(evCopy.ID, action), "edges leaving the selection are not copied")

	orig, _ := out.Trigger(trig)
	dup, ok := out.Trigger(trigCopy.ID)
	require.True(t, ok, "the copy owns its own trigger record")
	orig.ID = trigCopy.ID
	assert.Equal(t, orig, dup)

	assert.Equal(t, 2, s.history.Len())
	assertConsistent(t, s)
}

func TestDuplicateKeepsConditions(t *testing.T) {
	g := testGraph()
	j1 := testNode(t, g, workflow.TypeJob, 0, 0)
	j2 := testNode(t, g, workflow.TypeJob, 300, 0)
	c := testConnect(t, g, j1, j2)
	s := testSession(t, g)
	require.NoError(t, s.SetCondition(c.ID, workflow.ConditionError))

	s.SelectAll()
	require.True(t, s.Duplicate())

	copies := s.Selection()
	var found bool
	for _, conn := range s.Graph().Connections() {
		if conn.ID == c.ID {
			continue
		}
		found = true
		assert.Contains(t, copies, conn.Source)
		assert.Contains(t, copies, conn.Dest)
		assert.Equal(t, workflow.ConditionError, conn.Condition)
	}
	assert.True(t, found)
}

func TestDetach(t *testing.T) {
	g, trig, ev, action := chain(t)
	s := testSession(t, g)

	s.Click(ev)
	require.True(t, s.Detach())

	out := s.Graph()
	nodes, conns := out.Len()
	assert.Equal(t, 3, nodes, "detach keeps nodes")
	assert.Zero(t, conns)
	assert.True(t, out.HasNode(trig))
	assert.True(t, out.HasNode(action))
	assert.Equal(t, []string{ev}, s.Selection())

	assert.False(t, s.Detach(), "nothing left to detach")
	assert.Equal(t, 2, s.history.Len(), "a no-op detach records nothing")
}

func TestDeleteCascades(t *testing.T) {
	g, trig, ev, action := chain(t)
	s := testSession(t, g)

	s.Click(ev)
	require.True(t, s.Delete())

	out := s.Graph()
	assert.False(t, out.HasNode(ev))
	assert.Empty(t, out.ConnectionsOf(trig))
	assert.Empty(t, out.ConnectionsOf(action))
	assert.Empty(t, s.Selection())

	s.Click(trig)
	require.True(t, s.Delete())
	_, ok := s.Graph().Trigger(trig)
	assert.False(t, ok, "trigger record goes with its node")
	assert.Empty(t, s.Graph().Triggers())
	assertConsistent(t, s)

	require.True(t, s.Undo())
	_, ok = s.Graph().Trigger(trig)
	assert.True(t, ok)
}

func TestBulkOpsNeedSelection(t *testing.T) {
	g, _, _, _ := chain(t)
	s := testSession(t, g)

	assert.False(t, s.Duplicate())
	assert.False(t, s.Detach())
	assert.False(t, s.Delete())
	assert.Equal(t, 1, s.history.Len())
}
