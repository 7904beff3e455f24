package query

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/janus-lang/astdb/internal/cid"
	"github.com/janus-lang/astdb/internal/ids"
)

func TestQueryMemoizesAcrossCalls(t *testing.T) {
	e := NewEngine()
	var calls int32
	key := NewTypeOf(0, 1)
	compute := func(qc *Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "i32", nil
	}

	r1, err := e.Query(key, compute)
	require.NoError(t, err)
	r2, err := e.Query(key, compute)
	require.NoError(t, err)

	require.Equal(t, "i32", r1.Value)
	require.Equal(t, "i32", r2.Value)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestInvalidateForcesRecompute(t *testing.T) {
	e := NewEngine()
	var calls int32
	key := NewTypeOf(0, 1)
	compute := func(qc *Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "i32", nil
	}

	_, err := e.Query(key, compute)
	require.NoError(t, err)
	e.Invalidate(key)
	_, err = e.Query(key, compute)
	require.NoError(t, err)

	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestConcurrentDuplicateRequestsJoinInFlight(t *testing.T) {
	e := NewEngine()
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	key := NewTypeOf(0, 1)

	compute := func(qc *Context) (any, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			close(started)
			<-release
		}
		return "i32", nil
	}

	var wg sync.WaitGroup
	results := make([]Result, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.Query(key, compute)
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNestedQueryRecordsDependency(t *testing.T) {
	e := NewEngine()
	inner := NewNodeAt(0, 1)
	outer := NewTypeOf(0, 1)

	innerCompute := func(qc *Context) (any, error) { return "leaf", nil }
	outerCompute := func(qc *Context) (any, error) {
		v, err := qc.Query(inner, innerCompute)
		if err != nil {
			return nil, err
		}
		return v.(string) + "!", nil
	}

	r, err := e.Query(outer, outerCompute)
	require.NoError(t, err)
	require.Equal(t, "leaf!", r.Value)
	_, ok := r.Deps.Queries[inner]
	require.True(t, ok)
}

func TestTouchCIDRecordsIntoDependencySet(t *testing.T) {
	e := NewEngine()
	key := NewTypeOf(0, 1)
	c := cid.CID{1, 2, 3}

	compute := func(qc *Context) (any, error) {
		qc.TouchCID(c)
		return "i32", nil
	}

	r, err := e.Query(key, compute)
	require.NoError(t, err)
	_, ok := r.Deps.CIDs[c]
	require.True(t, ok)
}

func TestOnComputeHookDoesNotFireOnMemoHit(t *testing.T) {
	e := NewEngine()
	var fired int32
	e.OnCompute(func(key Key, result Result) {
		atomic.AddInt32(&fired, 1)
	})

	key := NewTypeOf(0, 1)
	compute := func(qc *Context) (any, error) { return "i32", nil }

	_, err := e.Query(key, compute)
	require.NoError(t, err)
	_, err = e.Query(key, compute)
	require.NoError(t, err)

	require.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestQueryPropagatesComputeError(t *testing.T) {
	e := NewEngine()
	key := NewDefinitionOf(0, 1)
	wantErr := errors.New("boom")
	compute := func(qc *Context) (any, error) { return nil, wantErr }

	_, err := e.Query(key, compute)
	require.ErrorIs(t, err, wantErr)

	_, ok := e.Peek(key)
	require.False(t, ok, "a failed computation must not be memoized")
}

func TestDistinctKeysDoNotCollide(t *testing.T) {
	e := NewEngine()
	a := NewTypeOf(0, ids.NodeId(1))
	b := NewTypeOf(0, ids.NodeId(2))

	ra, err := e.Query(a, func(qc *Context) (any, error) { return "a", nil })
	require.NoError(t, err)
	rb, err := e.Query(b, func(qc *Context) (any, error) { return "b", nil })
	require.NoError(t, err)

	require.Equal(t, "a", ra.Value)
	require.Equal(t, "b", rb.Value)
}
