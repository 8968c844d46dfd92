// Command groundwork runs the example workspace-scan application on top of
// the lifecycle engine. It demonstrates the full wiring: settings file,
// tracing, plugin systems, the optional terminal progress view, and the
// diagnostics reporter.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "groundwork",
		Short:         "Phase-driven application runner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
