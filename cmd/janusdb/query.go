package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/janus-lang/astdb/internal/accessor"
	"github.com/janus-lang/astdb/internal/cid"
	"github.com/janus-lang/astdb/internal/depgraph"
	"github.com/janus-lang/astdb/internal/perfmon"
	"github.com/janus-lang/astdb/internal/query"
	"github.com/janus-lang/astdb/internal/snapshot"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run TypeOf and Dispatch queries against the fixture snapshot, through the memoized engine",
	RunE:  runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	slog.Info("running queries against fixture snapshot")
	snap, err := buildFixture(defaultFixtureOpts())
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	u := snap.Unit(0)

	engine := query.NewEngine()
	graph := depgraph.New()
	engine.OnCompute(graph.Observe)
	mon := perfmon.NewMonitor()
	cache := cid.NewCache()
	opts, err := resolveToolchainOpts()
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	ctx := context.Background()

	out := cmd.OutOrStdout()

	var fnDecl snapshot.Decl
	for _, d := range u.Decls() {
		if d.Kind == snapshot.DeclFunction {
			fnDecl = d
			break
		}
	}

	typeOfKey := query.NewTypeOf(0, fnDecl.Node)
	typeOfCompute := mon.Instrument(ctx, query.TypeOf, func(qc *query.Context) (any, error) {
		retType, ok := accessor.FuncReturnType(u, fnDecl.Node)
		if !ok {
			return "void", nil
		}
		c, err := cache.Of(snap, 0, retType, opts)
		if err != nil {
			return nil, err
		}
		qc.TouchCID(c)
		return "i32", nil
	})

	result, err := engine.Query(typeOfKey, typeOfCompute)
	if err != nil {
		return fmt.Errorf("query: type_of: %w", err)
	}
	fmt.Fprintf(out, "type_of(%s) = %v (memo entries: %d)\n", declName(snap, fnDecl), result.Value, engine.Len())

	dispatchKey := query.Key{Kind: query.Dispatch, Unit: 0, Name: "add", ArgSig: "i32"}
	dispatchCompute := mon.Instrument(ctx, query.Dispatch, func(qc *query.Context) (any, error) {
		v, err := qc.Query(typeOfKey, typeOfCompute)
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("add/%v", v), nil
	})
	dispatchResult, err := engine.Query(dispatchKey, dispatchCompute)
	if err != nil {
		return fmt.Errorf("query: dispatch: %w", err)
	}
	fmt.Fprintf(out, "dispatch(add, i32) = %v\n", dispatchResult.Value)

	hitResult, err := engine.Query(typeOfKey, typeOfCompute)
	if err != nil {
		return fmt.Errorf("query: type_of (memo hit): %w", err)
	}
	fmt.Fprintf(out, "type_of memo hit = %v\n", hitResult.Value)

	p := mon.Percentiles(query.TypeOf)
	fmt.Fprintf(out, "type_of latency: p50=%s p95=%s p99=%s within_budget=%t\n", p.P50, p.P95, p.P99, p.WithinBudget())

	rootCID, err := cache.Of(snap, 0, fnDecl.Node, opts)
	if err != nil {
		return fmt.Errorf("query: root cid: %w", err)
	}
	preLen := engine.Len()
	stats, invalidated := graph.Invalidate(engine, []cid.CID{rootCID})
	fmt.Fprintf(out, "invalidating root cid dropped %d queries (efficiency=%.2f)\n", len(invalidated), stats.EfficiencyRatio(preLen))
	slog.Info("query run complete", "memo_entries", engine.Len(), "invalidated", len(invalidated))

	return nil
}

func declName(snap *snapshot.Snapshot, d snapshot.Decl) string {
	name, _ := snap.Interner().LookupString(d.Name)
	return name
}
