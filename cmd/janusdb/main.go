// Command janusdb is a small driver over the ASTDB engine: it builds a
// toy snapshot, runs a handful of queries against it, prints engine
// stats, and can diff two snapshots. It exists to exercise the storage,
// query, depgraph, and differ packages end to end behind a cobra CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	// setupTelemetry reads --telemetry, so it runs after cobra has parsed
	// the flags, just before the selected subcommand.
	var shutdown func(context.Context) error
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		shutdown, err = setupTelemetry()
		return err
	}

	err := rootCmd.Execute()
	if shutdown != nil {
		shutdown(context.Background())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
