package query

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/janus-lang/astdb/internal/cid"
)

// Compute runs one query's logic against a fresh Context that accumulates
// the dependencies the computation reads.
type Compute func(qc *Context) (any, error)

// Hook observes every computation the engine actually runs (memo hits never
// fire a Hook). internal/depgraph registers one of these to build its
// reverse indices as queries complete.
type Hook func(key Key, result Result)

// Context is handed to a Compute callback so it can read CIDs and call
// nested queries while the engine silently records what it touched.
type Context struct {
	engine *Engine
	deps   DependencySet
}

// TouchCID records a direct read of a node's content identity.
func (qc *Context) TouchCID(c cid.CID) {
	qc.deps.AddCID(c)
}

// Engine owns the memo cache and in-flight request coalescing. A Snapshot's
// Engine is meant to live exactly as long as the snapshot it queries:
// snapshots are immutable once sealed, so memoized results never go stale
// except through explicit Invalidate calls driven by internal/depgraph
// after a new snapshot is published.
//
// Engine is safe for concurrent use. At most one computation per Key runs
// at a time; concurrent callers requesting the same Key join the in-flight
// computation instead of duplicating work.
type Engine struct {
	mu    sync.RWMutex
	memo  map[Key]Result
	group singleflight.Group
	hooks []Hook
	log   *slog.Logger
}

// NewEngine creates an empty query engine.
func NewEngine() *Engine {
	return &Engine{
		memo: make(map[Key]Result),
		log:  slog.Default().With("component", "query.engine"),
	}
}

// OnCompute registers h to run after every computation the engine actually
// performs. Hooks are called synchronously, in registration order, while
// still holding no engine lock — a Hook must not call back into the engine
// for the same key or it will deadlock in singleflight.
func (e *Engine) OnCompute(h Hook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, h)
}

// Query runs compute for key, returning its memoized result if one already
// exists. It is the entry point nested Compute callbacks use via
// Context.Query so that the calling query's DependencySet captures this
// call.
func (e *Engine) Query(key Key, compute Compute) (Result, error) {
	return e.execute(key, compute)
}

// Len reports the number of memoized entries, for perfmon/stats reporting.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.memo)
}

// Invalidate drops a single memoized entry. Safe to call whether or not
// the key is present.
func (e *Engine) Invalidate(key Key) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.memo, key)
}

// InvalidateAll drops every memoized entry named in keys.
func (e *Engine) InvalidateAll(keys []Key) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, k := range keys {
		delete(e.memo, k)
	}
}

// Peek returns the memoized result for key without computing it, and
// whether it was present.
func (e *Engine) Peek(key Key) (Result, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.memo[key]
	return r, ok
}

func (e *Engine) execute(key Key, compute Compute) (Result, error) {
	e.mu.RLock()
	if r, ok := e.memo[key]; ok {
		e.mu.RUnlock()
		return r, nil
	}
	e.mu.RUnlock()

	v, err, _ := e.group.Do(key.groupKey(), func() (any, error) {
		e.mu.RLock()
		if r, ok := e.memo[key]; ok {
			e.mu.RUnlock()
			return r, nil
		}
		e.mu.RUnlock()

		qc := &Context{engine: e, deps: NewDependencySet()}
		val, cerr := compute(qc)
		if cerr != nil {
			return Result{}, cerr
		}

		result := Result{Value: val, Deps: qc.deps}

		e.mu.Lock()
		e.memo[key] = result
		hooks := append([]Hook(nil), e.hooks...)
		e.mu.Unlock()

		e.log.Debug("computed query", "kind", key.Kind.String(), "name", key.Name)
		for _, h := range hooks {
			h(key, result)
		}
		return result, nil
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

// Query runs a nested query from within a Compute callback, recording the
// dependency into the parent's DependencySet regardless of whether the
// nested call was a cache hit or a fresh computation.
func (qc *Context) Query(key Key, compute Compute) (any, error) {
	r, err := qc.engine.execute(key, compute)
	if err != nil {
		return nil, err
	}
	qc.deps.AddQuery(key)
	return r.Value, nil
}
