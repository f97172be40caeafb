package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-flow/pkg/editor"
	"github.com/dd0wney/cluso-flow/pkg/notify"
	"github.com/dd0wney/cluso-flow/pkg/selection"
	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(2)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1).
			MarginLeft(2)

	menuStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(0, 2).
			MarginLeft(2)

	activeItemStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true).
			MarginLeft(2)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

const moveStep = 20

type mode int

const (
	browseMode mode = iota
	// menuMode lists the node types a paused solder may end on
	menuMode
	// dialogMode collects the new node's payload
	dialogMode
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Toggle  key.Binding
	Input   key.Binding
	Output  key.Binding
	PoleUp  key.Binding
	PoleDn  key.Binding
	Release key.Binding
	Canvas  key.Binding
	Left    key.Binding
	Right   key.Binding
	Raise   key.Binding
	Lower   key.Binding
	Arrange key.Binding
	Edit    key.Binding
	Save    key.Binding
	Help    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
	Input: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "input pole"),
	),
	Output: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "output pole"),
	),
	PoleUp: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "up pole"),
	),
	PoleDn: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "down pole"),
	),
	Release: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "release on canvas"),
	),
	Canvas: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "click canvas"),
	),
	Left: key.NewBinding(
		key.WithKeys("H"),
		key.WithHelp("H", "move left"),
	),
	Right: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "move right"),
	),
	Raise: key.NewBinding(
		key.WithKeys("K"),
		key.WithHelp("K", "move up"),
	),
	Lower: key.NewBinding(
		key.WithKeys("J"),
		key.WithHelp("J", "move down"),
	),
	Arrange: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "arrange"),
	),
	Edit: key.NewBinding(
		key.WithKeys("ctrl+z", "ctrl+y", "delete", "backspace", "ctrl+d", "ctrl+e", "ctrl+a", "esc"),
		key.WithHelp("ctrl+z/y d/e/a del esc", "edit"),
	),
	Save: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "save"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Output, k.Release, k.Edit, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Toggle, k.Canvas},
		{k.Input, k.Output, k.PoleUp, k.PoleDn, k.Release},
		{k.Left, k.Right, k.Raise, k.Lower, k.Arrange},
		{k.Edit, k.Save, k.Help, k.Quit},
	}
}

// changeMsg carries a session change from the notify bus
type changeMsg notify.Change

func waitForChange(sub *notify.Subscription) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-sub.Channel()
		if !ok {
			return nil
		}
		return changeMsg(c)
	}
}

type model struct {
	app     *app
	session *editor.Session
	path    string
	changes *notify.Subscription

	nodeTable table.Model
	dialog    textinput.Model
	help      help.Model
	keys      keyMap

	mode    mode
	menu    int
	pending workflow.NodeType
	rows    []string

	width      int
	height     int
	message    string
	messageErr bool
	dirty      bool
}

func newModel(a *app, s *editor.Session, path string, changes *notify.Subscription) model {
	ti := textinput.New()
	ti.Placeholder = `{"event":"ev_backup"}`
	ti.CharLimit = 500
	ti.Width = 60

	columns := []table.Column{
		{Title: "", Width: 1},
		{Title: "ID", Width: 14},
		{Title: "Type", Width: 10},
		{Title: "Position", Width: 14},
		{Title: "Links", Width: 5},
		{Title: "Data", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(st)

	m := model{
		app:       a,
		session:   s,
		path:      path,
		changes:   changes,
		nodeTable: t,
		dialog:    ti,
		help:      help.New(),
		keys:      keys,
	}
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	return waitForChange(m.changes)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case changeMsg:
		if msg.Kind == notify.KindGraph {
			m.dirty = true
		}
		m.refresh()
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case menuMode:
			return m.updateMenu(msg)
		case dialogMode:
			return m.updateDialog(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	cur := m.cursorNode()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.nodeTable.MoveUp(1)
	case key.Matches(msg, m.keys.Down):
		m.nodeTable.MoveDown(1)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Select):
		m.handle(editor.NodeClick{Node: cur})
	case key.Matches(msg, m.keys.Toggle):
		m.handle(editor.NodeClick{Node: cur, Shift: true})
	case key.Matches(msg, m.keys.Input):
		m.handle(editor.PoleDown{Node: cur, Pole: workflow.PoleInput})
	case key.Matches(msg, m.keys.Output):
		m.handle(editor.PoleDown{Node: cur, Pole: workflow.PoleOutput})
	case key.Matches(msg, m.keys.PoleUp):
		m.handle(editor.PoleDown{Node: cur, Pole: workflow.PoleUp})
	case key.Matches(msg, m.keys.PoleDn):
		m.handle(editor.PoleDown{Node: cur, Pole: workflow.PoleDown})
	case key.Matches(msg, m.keys.Release):
		x, y := m.releasePoint()
		if m.handle(editor.CanvasRelease{X: x, Y: y}) {
			m.mode = menuMode
			m.menu = 0
		}
	case key.Matches(msg, m.keys.Canvas):
		m.handle(editor.CanvasClick{})
	case key.Matches(msg, m.keys.Left):
		m.handle(editor.DragEnd{DX: -moveStep})
	case key.Matches(msg, m.keys.Right):
		m.handle(editor.DragEnd{DX: moveStep})
	case key.Matches(msg, m.keys.Raise):
		m.handle(editor.DragEnd{DY: -moveStep})
	case key.Matches(msg, m.keys.Lower):
		m.handle(editor.DragEnd{DY: moveStep})
	case key.Matches(msg, m.keys.Arrange):
		m.report(s.Arrange(), "arranged", "nothing to arrange")
	case key.Matches(msg, m.keys.Edit):
		m.handle(editor.KeyPress{Key: msg.String()})
	case key.Matches(msg, m.keys.Save):
		m.save()
	}
	return m, nil
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	allowed := m.session.Solder().Allowed
	switch {
	case key.Matches(msg, m.keys.Back):
		m.session.CancelSolder()
		m.mode = browseMode
		m.setMessage("solder cancelled", false)
	case key.Matches(msg, m.keys.Up):
		if m.menu > 0 {
			m.menu--
		}
	case key.Matches(msg, m.keys.Down):
		if m.menu < len(allowed)-1 {
			m.menu++
		}
	case key.Matches(msg, m.keys.Select):
		if len(allowed) == 0 {
			return m, nil
		}
		t := allowed[m.menu]
		if err := m.session.PickNodeType(t); err != nil {
			m.setMessage(err.Error(), true)
			return m, nil
		}
		m.pending = t
		m.mode = dialogMode
		m.dialog.SetValue("")
		m.dialog.Placeholder = placeholderFor(t)
		return m, m.dialog.Focus()
	}
	return m, nil
}

func (m model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.dialog.Blur()
		m.session.CancelSolder()
		m.mode = browseMode
		m.setMessage("solder cancelled", false)
		return m, nil
	case key.Matches(msg, m.keys.Select):
		// Bad input keeps the solder paused so the payload can be corrected.
		data, err := parsePayload(m.pending, strings.TrimSpace(m.dialog.Value()))
		if err != nil {
			m.setMessage(err.Error(), true)
			return m, nil
		}
		id, err := m.session.ResumeWithNode(data, nil)
		if err != nil {
			m.setMessage(err.Error(), true)
			return m, nil
		}
		m.dialog.Blur()
		m.mode = browseMode
		m.setMessage(fmt.Sprintf("created %s %s", m.pending, id), false)
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.dialog, cmd = m.dialog.Update(msg)
	return m, cmd
}

// handle forwards a gesture to the session and refreshes the table. Changes
// also arrive through the bus; refreshing here keeps the view right without one.
func (m *model) handle(g editor.Gesture) bool {
	applied := m.session.Handle(g)
	if !applied {
		m.setMessage("ignored while "+m.session.Solder().Phase.String(), true)
	} else {
		m.message = ""
	}
	m.refresh()
	return applied
}

func (m *model) report(applied bool, done, reason string) {
	if applied {
		m.setMessage(done, false)
	} else {
		m.setMessage(reason, true)
	}
	m.refresh()
}

func (m *model) save() {
	if err := m.app.store.Save(m.path, m.session.Record()); err != nil {
		m.setMessage(err.Error(), true)
		return
	}
	m.dirty = false
	m.setMessage("saved "+m.path, false)
}

func (m *model) setMessage(msg string, isErr bool) {
	m.message = msg
	m.messageErr = isErr
}

func (m model) cursorNode() string {
	i := m.nodeTable.Cursor()
	if i < 0 || i >= len(m.rows) {
		return ""
	}
	return m.rows[i]
}

// releasePoint is where the pending connection is dropped: one node footprint
// to the side of the solder's start node, the side its start pole faces.
func (m model) releasePoint() (float64, float64) {
	sol := m.session.Solder()
	n, ok := m.session.Graph().Node(sol.StartNode)
	if !ok {
		return 0, 0
	}
	fp := m.app.cfg.Footprint
	switch sol.StartPole {
	case workflow.PoleOutput:
		return n.X + 2*fp.Width, n.Y + fp.Height/2
	case workflow.PoleInput:
		return n.X - fp.Width, n.Y + fp.Height/2
	case workflow.PoleDown:
		return n.X + fp.Width/2, n.Y + 2*fp.Height
	default:
		return n.X + fp.Width/2, n.Y - fp.Height
	}
}

func (m *model) refresh() {
	g := m.session.Graph()
	flags := m.session.SelectionFlags()

	nodes := g.Nodes()
	m.rows = make([]string, 0, len(nodes))
	rows := make([]table.Row, 0, len(nodes))
	for _, n := range nodes {
		mark := ""
		switch flags[n.ID] {
		case selection.Fresh:
			mark = "+"
		case selection.Selected:
			mark = "*"
		}
		data, _ := json.Marshal(n.Data)
		rows = append(rows, table.Row{
			mark,
			n.ID,
			string(n.Type),
			fmt.Sprintf("%g,%g", n.X, n.Y),
			fmt.Sprintf("%d", len(g.ConnectionsOf(n.ID))),
			string(data),
		})
		m.rows = append(m.rows, n.ID)
	}
	m.nodeTable.SetRows(rows)
	if c := m.nodeTable.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.nodeTable.SetCursor(len(rows) - 1)
	}
	m.session.Settle()
}

func (m model) View() string {
	var s strings.Builder

	title := "⚡ cluso-flow  " + m.path
	if m.dirty {
		title += " *"
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n")
	s.WriteString(statusStyle.Render(m.status()))
	s.WriteString("\n\n")

	s.WriteString(boxStyle.Render(m.nodeTable.View()))
	s.WriteString("\n")
	if links := m.renderConnections(); links != "" {
		s.WriteString(boxStyle.Render(links))
		s.WriteString("\n")
	}

	switch m.mode {
	case menuMode:
		s.WriteString(menuStyle.Render(m.renderMenu()))
		s.WriteString("\n")
	case dialogMode:
		s.WriteString(menuStyle.Render(fmt.Sprintf("New %s node\n\n%s\n\nenter: create   esc: cancel", m.pending, m.dialog.View())))
		s.WriteString("\n")
	}

	if m.message != "" {
		s.WriteString("\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return s.String()
}

func (m model) status() string {
	g := m.session.Graph()
	nodes, conns := g.Len()
	sol := m.session.Solder()

	parts := []string{
		fmt.Sprintf("nodes %d", nodes),
		fmt.Sprintf("connections %d", conns),
		fmt.Sprintf("triggers %d", len(g.Triggers())),
		fmt.Sprintf("selected %d", len(m.session.Selection())),
	}
	if sol.Phase == editor.SolderIdle {
		parts = append(parts, "solder idle")
	} else {
		parts = append(parts, fmt.Sprintf("%s from %s:%s", sol.Phase, sol.StartNode, sol.StartPole))
	}
	if poles := m.session.Poles(); poles != nil {
		parts = append(parts, "poles "+joinPoles(poles))
	}
	undo, redo := "-", "-"
	if m.session.CanUndo() {
		undo = "undo"
	}
	if m.session.CanRedo() {
		redo = "redo"
	}
	parts = append(parts, undo+"/"+redo)
	return strings.Join(parts, " │ ")
}

// renderConnections lists the connections of the node under the cursor
func (m model) renderConnections() string {
	id := m.cursorNode()
	if id == "" {
		return ""
	}
	g := m.session.Graph()
	conns := g.ConnectionsOf(id)
	if len(conns) == 0 {
		return ""
	}

	lines := []string{"Connections of " + id}
	for _, c := range conns {
		sp, dp := workflow.ConnectionPoles(g.NodeType(c.Source), g.NodeType(c.Dest))
		line := fmt.Sprintf("%s  %s:%s → %s:%s", c.ID, c.Source, sp, c.Dest, dp)
		if c.Condition != "" {
			line += "  [" + c.Condition + "]"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m model) renderMenu() string {
	sol := m.session.Solder()
	lines := []string{fmt.Sprintf("Connect %s:%s to a new node", sol.StartNode, sol.StartPole), ""}
	for i, t := range sol.Allowed {
		item := "  " + string(t)
		if i == m.menu {
			item = activeItemStyle.Render("▸ " + string(t))
		}
		lines = append(lines, item)
	}
	lines = append(lines, "", "enter: choose   esc: cancel")
	return strings.Join(lines, "\n")
}

func placeholderFor(t workflow.NodeType) string {
	switch t {
	case workflow.TypeTrigger:
		return `{"title":"nightly"}`
	case workflow.TypeEvent:
		return `{"event":"ev_backup"}`
	case workflow.TypeJob:
		return `{"title":"Build","plugin":"shellplug","targets":["main"]}`
	case workflow.TypeAction:
		return `{"type":"email","enabled":true}`
	case workflow.TypeLimit:
		return `{"type":"time","amount":3600,"enabled":true}`
	default:
		return `{"controller":"multiplex"}`
	}
}
