package cid

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/janus-lang/astdb/internal/ids"
	"github.com/janus-lang/astdb/internal/intern"
	"github.com/janus-lang/astdb/internal/snapshot"
)

// Cache memoizes cid(node) results per snapshot unit. Entries are created
// lazily on first lookup and are never invalidated — a snapshot is
// immutable once sealed, so a node's CID can never change underneath the
// cache. Entries are keyed by the unit itself (not just its UnitId), so
// one Cache may be shared across several snapshots.
//
// Cache is safe for concurrent use: a shared lock guards reads.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]CID

	declIdx   map[*snapshot.Unit]map[ids.NodeId]snapshot.Decl
	declIdxMu sync.Mutex

	hits   int64
	misses int64

	log *slog.Logger
}

type cacheKey struct {
	unit *snapshot.Unit
	node ids.NodeId
	opts ToolchainOpts
}

// NewCache creates an empty CID cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[cacheKey]CID),
		declIdx: make(map[*snapshot.Unit]map[ids.NodeId]snapshot.Decl),
		log:     slog.Default().With("component", "cid.cache"),
	}
}

// Of computes (or returns the memoized) CID of node within unit unitID of
// snap, under the given toolchain options. It recurses bottom-up over
// node's children.
func (c *Cache) Of(snap *snapshot.Snapshot, unitID ids.UnitId, node ids.NodeId, opts ToolchainOpts) (CID, error) {
	u := snap.Unit(unitID)
	if u == nil {
		return Zero, fmt.Errorf("cid: unit %d not found", unitID)
	}
	return c.of(snap.Interner(), u, unitID, node, opts)
}

func (c *Cache) of(in *intern.Interner, u *snapshot.Unit, unitID ids.UnitId, node ids.NodeId, opts ToolchainOpts) (CID, error) {
	key := cacheKey{unit: u, node: node, opts: opts}

	c.mu.RLock()
	if v, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		c.bumpHit()
		return v, nil
	}
	c.mu.RUnlock()

	n, ok := u.Node(node)
	if !ok {
		c.log.Warn("node not found during cid computation", "unit", unitID, "node", node)
		return Zero, fmt.Errorf("cid: node %d not found", node)
	}

	children := u.Children(node)
	childCIDs := make([]CID, len(children))
	for i, ch := range children {
		v, err := c.of(in, u, unitID, ch, opts)
		if err != nil {
			return Zero, err
		}
		childCIDs[i] = v
	}

	payload, err := canonicalPayload(n.Kind, node, u, in, c.declIndex(u))
	if err != nil {
		return Zero, err
	}

	buf := make([]byte, 0, len(domainTag)+16+2+len(payload)+4+len(childCIDs)*Size)
	buf = append(buf, domainTag...)
	optBytes := opts.bytes()
	buf = append(buf, optBytes[:]...)

	var kindBuf [2]byte
	binary.BigEndian.PutUint16(kindBuf[:], uint16(n.Kind))
	buf = append(buf, kindBuf[:]...)

	buf = append(buf, payload...)

	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(children)))
	buf = append(buf, countBuf[:]...)

	for _, cc := range childCIDs {
		buf = append(buf, cc[:]...)
	}

	result := hashBytes(buf)

	c.mu.Lock()
	c.entries[key] = result
	c.mu.Unlock()
	c.bumpMiss()

	return result, nil
}

// declIndex returns (building and caching it on first use) a map from
// NodeId to Decl for unit u, so canonicalPayload can look up a
// declaration's name/visibility/kind without each recursive call
// rescanning the whole decl table.
func (c *Cache) declIndex(u *snapshot.Unit) map[ids.NodeId]snapshot.Decl {
	c.declIdxMu.Lock()
	defer c.declIdxMu.Unlock()

	if idx, ok := c.declIdx[u]; ok {
		return idx
	}
	idx := make(map[ids.NodeId]snapshot.Decl, u.DeclCount())
	for _, d := range u.Decls() {
		idx[d.Node] = d
	}
	c.declIdx[u] = idx
	c.log.Debug("built decl index", "decls", len(idx))
	return idx
}

func (c *Cache) bumpHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *Cache) bumpMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

// Stats reports cache hit/miss counters since creation.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}
