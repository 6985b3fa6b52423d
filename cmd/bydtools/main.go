// Command bydtools is the thin CLI adapter over the core VFS/PCK
// extraction packages (spec.md §1: CLI, help formatting, and process
// logging are explicitly external collaborators). It never implements
// domain logic itself; it only parses flags, constructs a core dispatcher
// or extractor, and reports the exit codes spec.md §6 requires.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "bydtools",
		Short:         "Extract and decode VFS block containers and Wwise PCK archives",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newVFSCommand())
	root.AddCommand(newPCKCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bydtools:", err)
		os.Exit(1)
	}
}

// invalid reports a flag-validation failure: print help and succeed with
// exit code 0, per spec.md §6 ("validation errors return 0 after printing
// help").
func invalid(cmd *cobra.Command, msg string) error {
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	fmt.Fprintln(cmd.OutOrStdout())
	_ = cmd.Help()
	return nil
}
