// Package ids defines the dense integer identifier types shared across the
// ASTDB. Every table in the storage engine is indexed by one of these types
// instead of a pointer, and every id is newtyped so that, say, a TokenId can
// never be passed where a NodeId is expected without a compile error.
//
// None of these types carry any behavior of their own; they are index
// values into arenas owned by a snapshot. Builders start numbering at zero,
// so the zero value is a valid id; the Invalid sentinels below are -1.
// Callers should treat ids as opaque and only compare them for equality or
// pass them back into accessors.
package ids

// StringId indexes into the string interner.
type StringId int32

// TokenId indexes into a unit's token array.
type TokenId int32

// NodeId indexes into a unit's node array.
type NodeId int32

// EdgeIndex indexes into a unit's flat edges array.
type EdgeIndex int32

// ScopeId indexes into a unit's scope array.
type ScopeId int32

// DeclId indexes into a unit's decl array.
type DeclId int32

// RefId indexes into a unit's ref array.
type RefId int32

// UnitId indexes into a snapshot's unit array.
type UnitId int32

// InvalidString is returned by lookups that fail to find a StringId.
const InvalidString StringId = -1

// Invalid sentinels for the remaining id types. Storage accessors return
// these (wrapped in an ok bool or an explicit "found" return) rather than
// indexing with a negative value.
const (
	InvalidToken TokenId   = -1
	InvalidNode  NodeId    = -1
	InvalidEdge  EdgeIndex = -1
	InvalidScope ScopeId   = -1
	InvalidDecl  DeclId    = -1
	InvalidRef   RefId     = -1
	InvalidUnit  UnitId    = -1
)

// Valid reports whether an id is non-negative, i.e. could index a live
// table entry. It does not check bounds against a particular snapshot.
func (i StringId) Valid() bool { return i >= 0 }

// Valid reports whether the TokenId could index a live table entry.
func (i TokenId) Valid() bool { return i >= 0 }

// Valid reports whether the NodeId could index a live table entry.
func (i NodeId) Valid() bool { return i >= 0 }

// Valid reports whether the EdgeIndex could index a live table entry.
func (i EdgeIndex) Valid() bool { return i >= 0 }

// Valid reports whether the ScopeId could index a live table entry.
func (i ScopeId) Valid() bool { return i >= 0 }

// Valid reports whether the DeclId could index a live table entry.
func (i DeclId) Valid() bool { return i >= 0 }

// Valid reports whether the RefId could index a live table entry.
func (i RefId) Valid() bool { return i >= 0 }

// Valid reports whether the UnitId could index a live table entry.
func (i UnitId) Valid() bool { return i >= 0 }
