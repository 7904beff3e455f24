package query

import (
	"github.com/janus-lang/astdb/internal/cid"
)

// DependencySet records everything a query's computation read: the raw
// node CIDs it touched directly, and the other queries it called into. The
// depgraph package indexes these to know what to invalidate when a CID
// changes: only the precise set of queries that actually read a changed
// CID, directly or transitively, gets dropped.
type DependencySet struct {
	CIDs    map[cid.CID]struct{}
	Queries map[Key]struct{}
}

// NewDependencySet returns an empty DependencySet ready for accumulation.
func NewDependencySet() DependencySet {
	return DependencySet{
		CIDs:    make(map[cid.CID]struct{}),
		Queries: make(map[Key]struct{}),
	}
}

// AddCID records a direct CID read.
func (d DependencySet) AddCID(c cid.CID) { d.CIDs[c] = struct{}{} }

// AddQuery records a direct dependency on another query's result.
func (d DependencySet) AddQuery(k Key) { d.Queries[k] = struct{}{} }

// CIDList returns the recorded CIDs as a slice, in no particular order.
func (d DependencySet) CIDList() []cid.CID {
	out := make([]cid.CID, 0, len(d.CIDs))
	for c := range d.CIDs {
		out = append(out, c)
	}
	return out
}

// QueryList returns the recorded query keys as a slice, in no particular
// order.
func (d DependencySet) QueryList() []Key {
	out := make([]Key, 0, len(d.Queries))
	for k := range d.Queries {
		out = append(out, k)
	}
	return out
}

// Result is a memoized query's value plus the dependencies its computation
// captured.
type Result struct {
	Value any
	Deps  DependencySet
}
