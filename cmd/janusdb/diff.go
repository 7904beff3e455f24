package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/janus-lang/astdb/internal/differ"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Build two related fixture snapshots and print their semantic diff",
	RunE:  runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	slog.Info("diffing two fixture snapshots")
	oldOpts := defaultFixtureOpts()
	newOpts := oldOpts
	newOpts.secondParam = true // force add(x,y) — a SignatureChange

	oldSnap, err := buildFixture(oldOpts)
	if err != nil {
		return fmt.Errorf("diff: building old fixture: %w", err)
	}
	newSnap, err := buildFixture(newOpts)
	if err != nil {
		return fmt.Errorf("diff: building new fixture: %w", err)
	}

	changes, delta, allItems, err := differ.Diff(oldSnap, 0, newSnap, 0)
	if err != nil {
		return fmt.Errorf("diff: %w", err)
	}
	slog.Info("diff complete", "changes", len(changes), "delta_cids", len(delta))

	// No query.Engine is wired into this fixture comparison, so there is
	// nothing to invalidate.
	report := differ.BuildReport(changes, allItems, 0)

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		b, err := report.JSON()
		if err != nil {
			return fmt.Errorf("diff: rendering json: %w", err)
		}
		fmt.Fprintln(out, string(b))
		return nil
	case yamlOutput:
		b, err := report.YAML()
		if err != nil {
			return fmt.Errorf("diff: rendering yaml: %w", err)
		}
		fmt.Fprint(out, string(b))
		return nil
	}
	fmt.Fprint(out, report.Table())
	for _, h := range differ.DeltaHex(delta) {
		fmt.Fprintf(out, "changed cid: %s\n", h)
	}
	return nil
}
