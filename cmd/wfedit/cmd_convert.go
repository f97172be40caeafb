package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

var convertFlags struct {
	force bool
}

var convertCmd = &cobra.Command{
	Use:   "convert IN OUT",
	Short: "Re-encode a record in the format named by OUT's extension",
	Args:  cobra.ExactArgs(2),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().BoolVar(&convertFlags.force, "force", false, "convert records that break graph invariants")
}

func runConvert(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	r, err := a.store.Load(args[0])
	if err != nil {
		return err
	}
	if !convertFlags.force {
		if _, err := r.Graph(workflow.SequenceSource()); err != nil {
			return fmt.Errorf("%w (use --force to convert anyway)", err)
		}
	}
	if err := a.store.Save(args[1], r); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s -> %s\n", args[0], args[1])
	return nil
}
