package snapshot

import "errors"

// ErrSealed is returned by any mutation attempted after Seal has been
// called. Construction is the only mutation path; once sealed, a Builder
// refuses further writes rather than silently permitting them.
var ErrSealed = errors.New("snapshot: builder already sealed")

// ErrDuplicateDeclaration is returned by AddDecl when a name/kind pair
// already exists in the target scope. The storage engine rejects the
// second declaration and records a DiagDuplicateDeclaration diagnostic
// for it itself; the first declaration remains authoritative.
var ErrDuplicateDeclaration = errors.New("snapshot: duplicate declaration in scope")

// ErrInternerMismatch is returned by Merge when the snapshots being
// combined were not built against the same interner. Merge requires a
// shared interner because units are independent in storage but must agree
// on StringId meaning.
var ErrInternerMismatch = errors.New("snapshot: units do not share an interner")

// ErrMalformedAst is returned by AddNode when a child id does not
// reference a node that was already appended to the unit. Children must be
// built bottom-up; a forward or out-of-range reference would violate the
// edges-array invariant every other accessor relies on.
var ErrMalformedAst = errors.New("snapshot: malformed ast: child references a node that does not exist yet")

// ErrOutOfMemory is returned by Reserve when a requested table size exceeds
// what a dense int32-indexed table can ever hold.
var ErrOutOfMemory = errors.New("snapshot: requested capacity exceeds table limits")
