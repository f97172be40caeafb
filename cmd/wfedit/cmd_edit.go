package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-flow/pkg/editor"
	"github.com/dd0wney/cluso-flow/pkg/health"
	"github.com/dd0wney/cluso-flow/pkg/history"
	"github.com/dd0wney/cluso-flow/pkg/logging"
	"github.com/dd0wney/cluso-flow/pkg/notify"
	"github.com/dd0wney/cluso-flow/pkg/selection"
	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

var editFlags struct {
	metricsAddr string
	quiet       bool
}

var editCmd = &cobra.Command{
	Use:   "edit FILE",
	Short: "Edit a workflow at an interactive prompt",
	Long: `Edit a workflow at an interactive prompt.

FILE is created empty if it does not exist. Type 'help' at the prompt for
the list of commands.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	f := editCmd.Flags()
	f.StringVar(&editFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	f.BoolVarP(&editFlags.quiet, "quiet", "q", false, "do not print change notifications")
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	bus := notify.NewBus(notify.DefaultBuffer)
	defer bus.Shutdown()
	sub, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	if editFlags.metricsAddr != "" {
		checker := health.NewChecker()
		checker.RegisterCheck("record_dir", health.WritableDirCheck(filepath.Dir(args[0])))
		checker.RegisterCheck("notify", health.DroppedCheck(bus.Dropped))
		checker.RegisterCheck("memory", health.MemoryCheck(health.RuntimeMemory))

		addr, stop, err := serveMetrics(ctx, editFlags.metricsAddr, a.metrics, checker, a.logger)
		if err != nil {
			return err
		}
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "📈 metrics on http://%s/metrics, health on /healthz\n", addr)
	}

	s, err := openOrCreate(a, args[0], bus)
	if err != nil {
		return err
	}

	r := &repl{
		app:     a,
		session: s,
		path:    args[0],
		in:      bufio.NewScanner(cmd.InOrStdin()),
		out:     cmd.OutOrStdout(),
		changes: sub,
		quiet:   editFlags.quiet,
	}
	nodes, conns := s.Graph().Len()
	fmt.Fprintf(r.out, "✅ %s: %d nodes, %d connections\n", args[0], nodes, conns)
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'exit' to quit")
	return r.run()
}

// openOrCreate opens path, or starts an empty workflow when it does not exist
func openOrCreate(a *app, path string, pub notify.Publisher) (*editor.Session, error) {
	s, err := a.open(path, pub)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return s, err
	}
	a.logger.Info("starting new workflow", logging.Path(path))
	return editor.New(nil, editor.Options{
		Config:   &a.cfg,
		Logger:   a.logger,
		Metrics:  a.metrics,
		Notifier: pub,
	})
}

// repl reads one command per line and applies it to the session
type repl struct {
	app     *app
	session *editor.Session
	path    string
	in      *bufio.Scanner
	out     io.Writer
	changes *notify.Subscription
	quiet   bool
	dirty   bool
}

func (r *repl) run() error {
	for {
		fmt.Fprint(r.out, "wfedit> ")
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			break
		}

		input := strings.TrimSpace(r.in.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if input == "exit" || input == "quit" {
			if r.dirty {
				fmt.Fprintln(r.out, "⚠️  unsaved changes discarded")
			}
			fmt.Fprintln(r.out, "👋 Goodbye!")
			break
		}

		if err := r.execute(input); err != nil {
			fmt.Fprintf(r.out, "❌ %v\n", err)
		}
		r.drain()
	}
	return r.in.Err()
}

// drain prints the changes published while the last command ran
func (r *repl) drain() {
	for {
		select {
		case c, ok := <-r.changes.Channel():
			if !ok {
				return
			}
			if c.Kind == notify.KindGraph {
				r.dirty = true
			}
			if !r.quiet {
				fmt.Fprintf(r.out, "   · %s\n", describeChange(c))
			}
		default:
			return
		}
	}
}

func describeChange(c notify.Change) string {
	switch c.Kind {
	case notify.KindGraph:
		return fmt.Sprintf("%s: %d nodes, %d connections", c.Operation, c.Nodes, c.Connections)
	case notify.KindSelection:
		return fmt.Sprintf("selection: [%s]", strings.Join(c.Selected, " "))
	case notify.KindSolder:
		return "solder: " + c.Solder
	default:
		return string(c.Kind)
	}
}

// errUsage is returned for a command with the wrong arguments
type errUsage string

func (e errUsage) Error() string { return "usage: " + string(e) }

func (r *repl) execute(input string) error {
	parts := strings.Fields(input)
	command, args := strings.ToLower(parts[0]), parts[1:]
	s := r.session

	switch command {
	case "help", "?":
		r.showHelp()

	case "show", "ls":
		r.show()

	case "add":
		if len(args) < 3 {
			return errUsage("add <type> <x> <y> [json]")
		}
		t, err := workflow.ParseNodeType(args[0])
		if err != nil {
			return err
		}
		x, y, err := parsePoint(args[1], args[2])
		if err != nil {
			return err
		}
		data, err := parsePayload(t, rest(input, 4))
		if err != nil {
			return err
		}
		id, err := s.AddNode(data, nil, x, y)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "✅ added %s %s\n", t, id)

	case "edit":
		if len(args) < 2 {
			return errUsage("edit <node> <json>")
		}
		n, ok := s.Graph().Node(args[0])
		if !ok {
			return workflow.NodeNotFoundError("edit", args[0])
		}
		data, err := workflow.ParseData(n.Type, []byte(rest(input, 2)))
		if err != nil {
			return err
		}
		return s.EditNode(args[0], data)

	case "trigger":
		if len(args) < 2 {
			return errUsage("trigger <node> <json>")
		}
		var trig workflow.Trigger
		if err := json.Unmarshal([]byte(rest(input, 2)), &trig); err != nil {
			return fmt.Errorf("trigger record: %w", err)
		}
		return s.SetTrigger(args[0], trig)

	case "click", "shift":
		if len(args) != 1 {
			return errUsage(command + " <node>")
		}
		r.gesture(editor.NodeClick{Node: args[0], Shift: command == "shift"})

	case "all":
		s.SelectAll()

	case "pole":
		if len(args) != 2 {
			return errUsage("pole <node> <input|output|up|down>")
		}
		r.gesture(editor.PoleDown{Node: args[0], Pole: workflow.Pole(args[1])})
		if sol := s.Solder(); sol.Phase == editor.SolderActive {
			fmt.Fprintf(r.out, "🔌 soldering from %s:%s, drop on a %s pole of: %s\n",
				sol.StartNode, sol.StartPole, sol.EndPole, joinTypes(sol.Allowed))
		}

	case "release":
		if len(args) != 2 {
			return errUsage("release <x> <y>")
		}
		x, y, err := parsePoint(args[0], args[1])
		if err != nil {
			return err
		}
		if r.gesture(editor.CanvasRelease{X: x, Y: y}) {
			fmt.Fprintf(r.out, "📋 create one of: %s (create <type> [json])\n", joinTypes(s.Solder().Allowed))
		}

	case "create":
		if len(args) < 1 {
			return errUsage("create <type> [json]")
		}
		t, err := workflow.ParseNodeType(args[0])
		if err != nil {
			return err
		}
		raw := rest(input, 2)
		id, err := s.CreateNodeFromSolder(t, editor.DialogFunc(func(t workflow.NodeType) (workflow.NodeData, *workflow.Trigger, error) {
			data, err := parsePayload(t, raw)
			return data, nil, err
		}))
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "✅ created %s %s\n", t, id)

	case "cancel":
		if !s.CancelSolder() {
			fmt.Fprintln(r.out, "nothing to cancel")
		}

	case "canvas":
		r.gesture(editor.CanvasClick{})

	case "move":
		if len(args) != 2 {
			return errUsage("move <dx> <dy>")
		}
		dx, dy, err := parsePoint(args[0], args[1])
		if err != nil {
			return err
		}
		r.gesture(editor.DragEnd{DX: dx, DY: dy})

	case "key":
		if len(args) != 1 {
			return errUsage("key <chord>")
		}
		r.gesture(editor.KeyPress{Key: args[0]})

	case "dup", "duplicate":
		r.ok(s.Duplicate(), "nothing selected")
	case "detach":
		r.ok(s.Detach(), "no connections to detach")
	case "delete", "del", "rm":
		r.ok(s.Delete(), "nothing selected")
	case "undo":
		r.ok(s.Undo(), "nothing to undo")
	case "redo":
		r.ok(s.Redo(), "nothing to redo")
	case "arrange":
		r.ok(s.Arrange(), "nothing to arrange")

	case "unpole":
		if len(args) != 2 {
			return errUsage("unpole <node> <pole>")
		}
		r.ok(s.DetachPole(args[0], workflow.Pole(args[1])), "no connections at that pole")

	case "cond":
		if len(args) != 2 {
			return errUsage("cond <connection> <condition>")
		}
		return s.SetCondition(args[0], args[1])

	case "unlink":
		if len(args) != 1 {
			return errUsage("unlink <connection>")
		}
		r.ok(s.DeleteConnection(args[0]), "no such connection")

	case "view":
		if len(args) != 3 {
			return errUsage("view <scroll-x> <scroll-y> <zoom>")
		}
		x, y, err := parsePoint(args[0], args[1])
		if err != nil {
			return err
		}
		zoom, err := strconv.ParseFloat(args[2], 64)
		if err != nil || zoom <= 0 {
			return fmt.Errorf("invalid zoom %q", args[2])
		}
		s.SetView(history.View{ScrollX: x, ScrollY: y, Zoom: zoom})

	case "check":
		if err := s.Record().ValidatePayloads(); err != nil {
			return err
		}
		fmt.Fprintln(r.out, "✅ all payloads valid")

	case "save":
		path := r.path
		if len(args) == 1 {
			path = args[0]
		}
		if err := r.app.store.Save(path, s.Record()); err != nil {
			return err
		}
		r.dirty = false
		fmt.Fprintf(r.out, "💾 saved %s\n", path)

	default:
		return fmt.Errorf("unknown command %q, type 'help'", command)
	}
	return nil
}

func (r *repl) gesture(g editor.Gesture) bool {
	return r.ok(r.session.Handle(g), "ignored")
}

func (r *repl) ok(applied bool, reason string) bool {
	if !applied {
		fmt.Fprintf(r.out, "· %s\n", reason)
	}
	return applied
}

func (r *repl) show() {
	s := r.session
	g := s.Graph()
	flags := s.SelectionFlags()

	rec := s.Record()
	if rec.Title != "" || rec.ID != "" {
		fmt.Fprintf(r.out, "Workflow %q %s\n", rec.Title, rec.ID)
	}

	fmt.Fprintln(r.out, "Nodes:")
	for _, n := range g.Nodes() {
		mark := " "
		switch flags[n.ID] {
		case selection.Fresh:
			mark = "+"
		case selection.Selected:
			mark = "*"
		}
		data, _ := json.Marshal(n.Data)
		fmt.Fprintf(r.out, "  %s %-8s %-10s (%g, %g) %s\n", mark, n.ID, n.Type, n.X, n.Y, data)
	}

	fmt.Fprintln(r.out, "Connections:")
	for _, c := range g.Connections() {
		sp, dp := workflow.ConnectionPoles(g.NodeType(c.Source), g.NodeType(c.Dest))
		line := fmt.Sprintf("  %-8s %s:%s -> %s:%s", c.ID, c.Source, sp, c.Dest, dp)
		if c.Condition != "" {
			line += " [" + c.Condition + "]"
		}
		fmt.Fprintln(r.out, line)
	}

	if triggers := g.Triggers(); len(triggers) > 0 {
		fmt.Fprintln(r.out, "Triggers:")
		for _, t := range triggers {
			fmt.Fprintf(r.out, "  %-8s %s enabled=%t\n", t.ID, t.Type, t.Enabled)
		}
	}

	if poles := s.Poles(); poles != nil {
		solo, _ := s.Solo()
		fmt.Fprintf(r.out, "Poles of %s: %s\n", solo, joinPoles(poles))
	}
	sol := s.Solder()
	fmt.Fprintf(r.out, "Solder: %s", sol.Phase)
	if sol.Phase != editor.SolderIdle {
		fmt.Fprintf(r.out, " from %s:%s", sol.StartNode, sol.StartPole)
	}
	fmt.Fprintf(r.out, "\nUndo: %t  Redo: %t\n", s.CanUndo(), s.CanRedo())
	s.Settle()
}

func (r *repl) showHelp() {
	help := `
Inspect:
  show                          List nodes, connections and triggers
  check                         Validate every node payload and trigger record

Nodes:
  add <type> <x> <y> [json]     Add a node (types: trigger event job action limit controller)
  edit <node> <json>            Replace the data of the selected node
  trigger <node> <json>         Replace the trigger record of a trigger node
  arrange                       Lay the workflow out left to right

Selection:
  click <node>                  Select a node
  shift <node>                  Toggle a node in the selection
  all                           Select every node
  canvas                        Click empty canvas (clears selection, cancels solder)
  move <dx> <dy>                Drag the selection

Connections:
  pole <node> <pole>            Grab or drop on a pole (input output up down)
  release <x> <y>               Release a solder over empty canvas
  create <type> [json]          Finish a paused solder with a new node
  cancel                        Cancel the solder
  unpole <node> <pole>          Remove every connection at a pole
  cond <connection> <cond>      Set a connection condition
  unlink <connection>           Delete a connection

Bulk:
  dup | detach | delete         Duplicate, detach or delete the selection
  key <chord>                   Press a key (ctrl+z, ctrl+y, ctrl+d, ctrl+e, delete, escape ...)

History:
  undo | redo
  view <x> <y> <zoom>           Change scroll and zoom (kept by undo, not recorded)

  save [path]                   Write the record (format from the extension)
  exit                          Leave without saving`
	fmt.Fprintln(r.out, help)
}

// rest returns the text after the first n fields of input
func rest(input string, n int) string {
	s := strings.TrimSpace(input)
	for i := 0; i < n && s != ""; i++ {
		end := strings.IndexFunc(s, func(r rune) bool { return r == ' ' || r == '\t' })
		if end < 0 {
			return ""
		}
		s = strings.TrimSpace(s[end:])
	}
	return s
}

// parsePayload decodes raw as the data of a t node; empty input leaves the
// data to the node type's defaults.
func parsePayload(t workflow.NodeType, raw string) (workflow.NodeData, error) {
	if raw == "" {
		return nil, nil
	}
	return workflow.ParseData(t, []byte(raw))
}

func parsePoint(xs, ys string) (float64, float64, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", ys)
	}
	return x, y, nil
}

func joinTypes(types []workflow.NodeType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func joinPoles(poles []workflow.Pole) string {
	names := make([]string, len(poles))
	for i, p := range poles {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
