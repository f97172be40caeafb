package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-flow/pkg/editor"
	"github.com/dd0wney/cluso-flow/pkg/selection"
	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testModel(t *testing.T) (model, *editor.Session) {
	t.Helper()
	a, err := newApp(nil)
	require.NoError(t, err)
	s, err := editor.New(sampleGraph(t), editor.Options{Config: &a.cfg})
	require.NoError(t, err)
	return newModel(a, s, "wf.json", nil), s
}

func press(m model, msgs ...tea.KeyMsg) model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func TestTUIRowsFollowGraph(t *testing.T) {
	m, _ := testModel(t)
	require.Equal(t, []string{"n1", "n2"}, m.rows)
	assert.Equal(t, "n1", m.cursorNode())

	m = press(m, runes("j"))
	assert.Equal(t, "n2", m.cursorNode())
	m = press(m, runes("j"))
	assert.Equal(t, "n2", m.cursorNode(), "cursor stops at the last row")
}

func TestTUISolderBetweenRows(t *testing.T) {
	m, s := testModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("o"))
	require.Equal(t, editor.SolderActive, s.Solder().Phase)
	assert.Contains(t, m.View(), "soldering from n1:output")

	m = press(m, runes("j"), runes("i"))
	assert.Equal(t, editor.SolderIdle, s.Solder().Phase)
	assert.True(t, s.Graph().HasConnection("n1", "n2"))
	assert.Contains(t, m.View(), "Connections of n2")

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	assert.False(t, s.Graph().HasConnection("n1", "n2"))
	assert.True(t, s.CanRedo())
}

func TestTUIPausedSolderDialog(t *testing.T) {
	m, s := testModel(t)

	m = press(m, runes("j"), tea.KeyMsg{Type: tea.KeyEnter}, runes("d"), runes("r"))
	require.Equal(t, menuMode, m.mode)
	require.Equal(t, editor.SolderPaused, s.Solder().Phase)
	assert.Contains(t, m.View(), "limit")

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, dialogMode, m.mode)
	assert.Equal(t, workflow.TypeLimit, m.pending)

	m.dialog.SetValue(`{"type":"nope"}`)
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, dialogMode, m.mode, "an invalid payload keeps the dialog open")
	assert.True(t, m.messageErr)
	assert.Equal(t, editor.SolderPaused, s.Solder().Phase)

	m.dialog.SetValue(`{"type":"time","amount":60,"enabled":true}`)
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, browseMode, m.mode)
	assert.False(t, m.messageErr)
	nodes, conns := s.Graph().Len()
	assert.Equal(t, 3, nodes)
	assert.Equal(t, 1, conns)
	assert.Len(t, m.rows, 3)
}

func TestTUIMenuEscapeCancels(t *testing.T) {
	m, s := testModel(t)

	m = press(m, runes("j"), tea.KeyMsg{Type: tea.KeyEnter}, runes("d"), runes("r"))
	require.Equal(t, menuMode, m.mode)

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, browseMode, m.mode)
	assert.Equal(t, editor.SolderIdle, s.Solder().Phase)
	assert.Equal(t, []string{"n2"}, s.Selection())
}

func TestTUIRejectedGestureShowsMessage(t *testing.T) {
	m, _ := testModel(t)

	m = press(m, runes("o"))
	assert.True(t, m.messageErr)
	assert.Contains(t, m.message, "ignored")
}

func TestTUIMoveAndDelete(t *testing.T) {
	m, s := testModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("L"), runes("J"))
	n, _ := s.Graph().Node("n1")
	assert.Equal(t, 600.0+moveStep, n.X)
	assert.Equal(t, float64(moveStep), n.Y)

	m = press(m, tea.KeyMsg{Type: tea.KeyDelete})
	assert.False(t, s.Graph().HasNode("n1"))
	assert.Equal(t, []string{"n2"}, m.rows)
}

func TestTUIFreshMarkShownOnce(t *testing.T) {
	m, s := testModel(t)
	id, err := s.AddNode(workflow.EventData{Event: "ev_restore"}, nil, 0, 0)
	require.NoError(t, err)

	mark := func() string {
		for _, row := range m.nodeTable.Rows() {
			if row[1] == id {
				return row[0]
			}
		}
		t.Fatalf("no row for %s", id)
		return ""
	}

	m.refresh()
	assert.Equal(t, "+", mark(), "first render highlights the new node")
	assert.Equal(t, selection.Selected, s.SelectionFlags()[id])

	m.refresh()
	assert.Equal(t, "*", mark())
}
