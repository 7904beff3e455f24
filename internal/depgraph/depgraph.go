// Package depgraph maintains the reverse indices from a changed CID or a
// changed query result to every query that must be recomputed, and drives
// precise invalidation of the query engine's memo cache after a new
// snapshot is published.
//
// The indexing discipline is mutex-guarded maps updated as queries
// complete, with a read path that never blocks a writer longer than it
// has to.
package depgraph

import (
	"log/slog"
	"sync"

	"github.com/janus-lang/astdb/internal/cid"
	"github.com/janus-lang/astdb/internal/query"
)

// Graph holds the reverse indices cid_to_queries and query_to_queries,
// plus the query_to_cids forward index needed to remove entries again
// when a query itself is invalidated.
type Graph struct {
	mu sync.RWMutex

	cidToQueries   map[cid.CID]map[query.Key]struct{}
	queryToQueries map[query.Key]map[query.Key]struct{} // dependency -> dependents
	queryToCIDs    map[query.Key]map[cid.CID]struct{}
	queryToDeps    map[query.Key]map[query.Key]struct{} // dependent -> its dependencies

	log *slog.Logger
}

// New creates an empty dependency graph.
func New() *Graph {
	return &Graph{
		cidToQueries:   make(map[cid.CID]map[query.Key]struct{}),
		queryToQueries: make(map[query.Key]map[query.Key]struct{}),
		queryToCIDs:    make(map[query.Key]map[cid.CID]struct{}),
		queryToDeps:    make(map[query.Key]map[query.Key]struct{}),
		log:            slog.Default().With("component", "depgraph"),
	}
}

// Observe registers the dependencies captured in result against key. It is
// meant to be passed directly as a query.Hook via Engine.OnCompute:
//
//	g := depgraph.New()
//	engine.OnCompute(g.Observe)
func (g *Graph) Observe(key query.Key, result query.Result) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.forgetLocked(key)

	cids := make(map[cid.CID]struct{}, len(result.Deps.CIDs))
	for c := range result.Deps.CIDs {
		cids[c] = struct{}{}
		if g.cidToQueries[c] == nil {
			g.cidToQueries[c] = make(map[query.Key]struct{})
		}
		g.cidToQueries[c][key] = struct{}{}
	}
	g.queryToCIDs[key] = cids

	deps := make(map[query.Key]struct{}, len(result.Deps.Queries))
	for dep := range result.Deps.Queries {
		deps[dep] = struct{}{}
		if g.queryToQueries[dep] == nil {
			g.queryToQueries[dep] = make(map[query.Key]struct{})
		}
		g.queryToQueries[dep][key] = struct{}{}
	}
	g.queryToDeps[key] = deps
}

// forgetLocked removes key's own forward-edges bookkeeping, called before
// Observe re-registers fresh ones (keeps stale edges from a previous
// computation of key from lingering after a recompute changes its
// dependency set). Callers must hold g.mu.
func (g *Graph) forgetLocked(key query.Key) {
	for c := range g.queryToCIDs[key] {
		delete(g.cidToQueries[c], key)
		if len(g.cidToQueries[c]) == 0 {
			delete(g.cidToQueries, c)
		}
	}
	delete(g.queryToCIDs, key)

	for dep := range g.queryToDeps[key] {
		delete(g.queryToQueries[dep], key)
		if len(g.queryToQueries[dep]) == 0 {
			delete(g.queryToQueries, dep)
		}
	}
	delete(g.queryToDeps, key)
}

// Forget removes all bookkeeping for key without invalidating anything
// downstream, for a query that is being dropped from the engine directly
// rather than through Invalidate.
func (g *Graph) Forget(key query.Key) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.forgetLocked(key)
}

// InvalidationStats reports the outcome of one Invalidate call.
type InvalidationStats struct {
	ChangedCIDs      int
	QueriesInvalidated int
	CacheEntriesRemoved int
}

// EfficiencyRatio is QueriesInvalidated divided by the engine's total memo
// size at the time of invalidation, as a rough signal of how precise the
// invalidation was (lower is better — the goal is to never
// over-invalidate). Callers pass the engine's pre-invalidation Len().
func (s InvalidationStats) EfficiencyRatio(totalMemoEntries int) float64 {
	if totalMemoEntries == 0 {
		return 0
	}
	return float64(s.QueriesInvalidated) / float64(totalMemoEntries)
}

// Invalidate computes the transitive closure of every query that directly
// or indirectly read one of changedCIDs, drops their engine memo entries,
// and removes them from the graph's own bookkeeping. It returns exactly
// the set of queries it invalidated.
func (g *Graph) Invalidate(engine Engine, changedCIDs []cid.CID) (InvalidationStats, []query.Key) {
	g.mu.Lock()
	defer g.mu.Unlock()

	seed := make(map[query.Key]struct{})
	for _, c := range changedCIDs {
		for k := range g.cidToQueries[c] {
			seed[k] = struct{}{}
		}
	}

	closure := make(map[query.Key]struct{})
	queue := make([]query.Key, 0, len(seed))
	for k := range seed {
		queue = append(queue, k)
	}
	for len(queue) > 0 {
		k := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if _, seen := closure[k]; seen {
			continue
		}
		closure[k] = struct{}{}
		for dependent := range g.queryToQueries[k] {
			if _, seen := closure[dependent]; !seen {
				queue = append(queue, dependent)
			}
		}
	}

	invalidated := make([]query.Key, 0, len(closure))
	for k := range closure {
		invalidated = append(invalidated, k)
		g.forgetLocked(k)
	}

	if engine != nil {
		engine.InvalidateAll(invalidated)
	}

	g.log.Debug("invalidated queries", "changed_cids", len(changedCIDs), "queries_invalidated", len(invalidated))

	return InvalidationStats{
		ChangedCIDs:         len(changedCIDs),
		QueriesInvalidated:  len(invalidated),
		CacheEntriesRemoved: len(invalidated),
	}, invalidated
}

// Engine is the subset of query.Engine's API the graph needs, so tests can
// supply a fake without constructing a full query.Engine.
type Engine interface {
	InvalidateAll(keys []query.Key)
}
