package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-flow/pkg/notify"
)

var tuiFlags struct {
	logFile string
}

var tuiCmd = &cobra.Command{
	Use:   "tui FILE",
	Short: "Edit a workflow in a full-screen terminal UI",
	Args:  cobra.ExactArgs(1),
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiFlags.logFile, "log-file", "", "append JSON logs to this file (logs are discarded otherwise)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	var logs io.Writer
	if tuiFlags.logFile != "" {
		f, err := os.OpenFile(tuiFlags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logs = f
	}

	a, err := newApp(logs)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	bus := notify.NewBus(notify.DefaultBuffer)
	defer bus.Shutdown()
	sub, err := bus.Subscribe(ctx, notify.KindGraph, notify.KindSelection, notify.KindSolder)
	if err != nil {
		return err
	}

	s, err := openOrCreate(a, args[0], bus)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newModel(a, s, args[0], sub),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
