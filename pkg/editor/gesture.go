package editor

import (
	"strings"

	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

// Gesture is a pointer or keyboard event from a front end
type Gesture interface {
	gestureName() string
}

// PoleDown is a mouse-down on a node's pole button
type PoleDown struct {
	Node string
	Pole workflow.Pole
}

// NodeClick is a click on a node body
type NodeClick struct {
	Node  string
	Shift bool
}

// CanvasRelease is a mouse-up over empty canvas
type CanvasRelease struct {
	X, Y float64
}

// CanvasClick is a click on empty canvas
type CanvasClick struct{}

// DragEnd finishes dragging the selection by (DX, DY)
type DragEnd struct {
	DX, DY float64
}

// KeyPress is a key chord such as "ctrl+z" or "delete"
type KeyPress struct {
	Key string
}

func (PoleDown) gestureName() string      { return "pole_down" }
func (NodeClick) gestureName() string     { return "node_click" }
func (CanvasRelease) gestureName() string { return "canvas_release" }
func (CanvasClick) gestureName() string   { return "canvas_click" }
func (DragEnd) gestureName() string       { return "drag_end" }
func (KeyPress) gestureName() string      { return "key_press" }

// keyBindings maps normalized key chords to session commands
var keyBindings = map[string]func(*Session) bool{
	"ctrl+z":       (*Session).Undo,
	"ctrl+y":       (*Session).Redo,
	"ctrl+shift+z": (*Session).Redo,
	"delete":       (*Session).Delete,
	"backspace":    (*Session).Delete,
	"ctrl+d":       (*Session).Duplicate,
	"ctrl+e":       (*Session).Detach,
	"ctrl+a": func(s *Session) bool {
		s.SelectAll()
		return true
	},
	"escape": func(s *Session) bool {
		if s.CancelSolder() {
			return true
		}
		return s.ClearSelection()
	},
}

// normalizeKey lower-cases a chord and orders its modifiers as ctrl, alt, shift
func normalizeKey(key string) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(key)), "+")
	var mods [3]bool
	base := ""
	for _, p := range parts {
		switch p {
		case "ctrl", "control", "cmd", "meta":
			mods[0] = true
		case "alt", "option":
			mods[1] = true
		case "shift":
			mods[2] = true
		case "esc":
			base = "escape"
		case "del":
			base = "delete"
		default:
			base = p
		}
	}
	var b strings.Builder
	for i, name := range []string{"ctrl", "alt", "shift"} {
		if mods[i] {
			b.WriteString(name)
			b.WriteByte('+')
		}
	}
	b.WriteString(base)
	return b.String()
}

// Handle routes a gesture through the solder state machine and the key
// bindings. It reports whether the gesture changed anything.
func (s *Session) Handle(g Gesture) bool {
	switch g := g.(type) {
	case nil:
		return false
	case PoleDown:
		switch s.solder.state {
		case SolderIdle:
			return s.StartSolder(g.Node, g.Pole)
		case SolderActive:
			return s.CompleteSolder(g.Node, g.Pole)
		}
	case NodeClick:
		switch s.solder.state {
		case SolderActive:
			// A node body is never a valid solder target.
			s.cancel("node clicked")
			return true
		case SolderIdle:
			if g.Shift {
				return s.ToggleSelect(g.Node)
			}
			return s.Click(g.Node)
		}
	case CanvasRelease:
		if s.solder.state != SolderActive {
			return false
		}
		s.ReleaseOnCanvas(g.X, g.Y)
		return true
	case CanvasClick:
		if s.solder.state != SolderIdle {
			return s.CancelSolder()
		}
		return s.ClearSelection()
	case DragEnd:
		return s.MoveSelection(g.DX, g.DY)
	case KeyPress:
		if cmd, ok := keyBindings[normalizeKey(g.Key)]; ok {
			return cmd(s)
		}
		return false
	}
	return s.reject(g.gestureName(), "not accepted while "+s.solder.state.String())
}
