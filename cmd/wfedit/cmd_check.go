package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Report graph invariant violations and invalid payloads",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		r, err := a.store.Load(path)
		if err != nil {
			fmt.Fprintf(out, "❌ %s: %v\n", path, err)
			failed++
			continue
		}

		var problems []string
		for _, v := range r.Violations() {
			problems = append(problems, v.Error())
		}
		if err := r.ValidatePayloads(); err != nil {
			problems = append(problems, strings.Split(err.Error(), "\n")...)
		}

		if len(problems) == 0 {
			fmt.Fprintf(out, "✅ %s: %d nodes, %d connections, %d triggers\n",
				path, len(r.Workflow.Nodes), len(r.Workflow.Connections), len(r.Triggers))
			continue
		}
		failed++
		fmt.Fprintf(out, "❌ %s: %d problems\n", path, len(problems))
		for _, p := range problems {
			fmt.Fprintf(out, "   - %s\n", p)
		}
	}

	if failed > 0 {
		return errors.New(plural(failed, "record") + " failed the check")
	}
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
