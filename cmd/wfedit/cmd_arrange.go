package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var arrangeFlags struct {
	output string
}

var arrangeCmd = &cobra.Command{
	Use:   "arrange FILE",
	Short: "Lay the workflow out left to right in execution order",
	Args:  cobra.ExactArgs(1),
	RunE:  runArrange,
}

func init() {
	arrangeCmd.Flags().StringVarP(&arrangeFlags.output, "output", "o", "", "write the result here instead of over FILE")
}

func runArrange(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	s, err := a.open(args[0], nil)
	if err != nil {
		return err
	}
	if !s.Arrange() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: nothing to arrange\n", args[0])
		return nil
	}

	dest := arrangeFlags.output
	if dest == "" {
		dest = args[0]
	}
	if err := a.store.Save(dest, s.Record()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ arranged %s -> %s\n", args[0], dest)
	return nil
}
