// Package intern implements the string interner: it deduplicates source
// byte strings and assigns each distinct string a stable, dense StringId.
//
// Interned content is copied once into the interner's own arena so that
// callers can discard their original buffers. Insertion order determines
// the numeric value of a StringId but insertion order is never semantic —
// nothing downstream (in particular internal/cid) may depend on it.
package intern

import (
	"sync"

	"github.com/janus-lang/astdb/internal/ids"
)

// Interner deduplicates byte strings and hands out dense StringIds.
//
// It is safe for concurrent use: readers (Lookup) take a read lock and
// writers (Intern) serialize through a write lock. The arena is
// append-only — entries are never removed or renumbered.
type Interner struct {
	mu      sync.RWMutex
	byBytes map[string]ids.StringId
	arena   [][]byte
}

// New creates an empty interner.
func New() *Interner {
	return &Interner{
		byBytes: make(map[string]ids.StringId),
	}
}

// Intern returns the StringId for b, copying b into the interner's arena
// the first time this content is seen. Intern(x) == Intern(y) iff x and y
// are byte-equal, regardless of how many times or in what order they were
// interned.
func (in *Interner) Intern(b []byte) ids.StringId {
	// Fast path: a read lock is enough if the string already exists.
	in.mu.RLock()
	if id, ok := in.byBytes[string(b)]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()

	// Re-check under the write lock: another goroutine may have interned
	// the same content between the RUnlock above and this Lock.
	if id, ok := in.byBytes[string(b)]; ok {
		return id
	}

	owned := make([]byte, len(b))
	copy(owned, b)

	id := ids.StringId(len(in.arena))
	in.arena = append(in.arena, owned)
	in.byBytes[string(owned)] = id
	return id
}

// InternString is a convenience wrapper around Intern for Go strings.
func (in *Interner) InternString(s string) ids.StringId {
	return in.Intern([]byte(s))
}

// Lookup returns the bytes previously interned under id. The returned
// slice must not be mutated by the caller; its lifetime is tied to the
// interner.
func (in *Interner) Lookup(id ids.StringId) ([]byte, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id < 0 || int(id) >= len(in.arena) {
		return nil, false
	}
	return in.arena[id], true
}

// LookupString is a convenience wrapper around Lookup returning a string.
func (in *Interner) LookupString(id ids.StringId) (string, bool) {
	b, ok := in.Lookup(id)
	if !ok {
		return "", false
	}
	return string(b), true
}

// Len returns the number of distinct strings currently interned.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.arena)
}
