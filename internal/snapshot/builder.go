package snapshot

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/janus-lang/astdb/internal/ids"
	"github.com/janus-lang/astdb/internal/intern"
)

// Unit holds the columnar tables for one compilation unit. All ids into a
// Unit's tables are dense and start at zero.
type Unit struct {
	Path ids.StringId

	tokens []Token
	nodes  []AstNode
	edges  []ids.NodeId
	scopes []Scope
	decls  []Decl
	refs   []Ref
	diags  []Diagnostic

	// declIndex guards the "unique name per (scope, kind bucket)"
	// invariant.
	declIndex map[declKey]ids.DeclId
}

type declKey struct {
	scope ids.ScopeId
	kind  DeclKind
	name  ids.StringId
}

// Builder constructs one Unit. It is the only mutation path onto the data
// it produces; once Seal is called every method returns ErrSealed.
//
// Builder is not safe for concurrent use — construction is expected to run
// single-threaded per unit.
type Builder struct {
	interner *intern.Interner
	unit     *Unit
	sealed   bool
	log      *slog.Logger
}

// NewSnapshot begins construction of a new single-unit snapshot, creating
// a fresh interner for it.
func NewSnapshot(unitPath string) *Builder {
	return NewSnapshotWithInterner(intern.New(), unitPath)
}

// NewSnapshotWithInterner begins construction of a new unit sharing an
// existing interner, so that multiple units (and the snapshots built from
// them) can later be combined with Merge while agreeing on StringId
// meaning.
func NewSnapshotWithInterner(in *intern.Interner, unitPath string) *Builder {
	return &Builder{
		interner: in,
		unit: &Unit{
			Path:      in.InternString(unitPath),
			declIndex: make(map[declKey]ids.DeclId),
		},
		log: slog.Default().With("component", "snapshot.builder", "unit", unitPath),
	}
}

// Interner returns the interner this builder writes strings into, so
// callers can intern identifiers/literals before passing their StringId
// to AddToken et al.
func (b *Builder) Interner() *intern.Interner { return b.interner }

// AddToken appends a token and returns its dense TokenId.
func (b *Builder) AddToken(kind TokenKind, text ids.StringId, span Span) (ids.TokenId, error) {
	if b.sealed {
		return ids.InvalidToken, ErrSealed
	}
	id := ids.TokenId(len(b.unit.tokens))
	b.unit.tokens = append(b.unit.tokens, Token{Kind: kind, Text: text, SpanData: span})
	return id, nil
}

// AddNode appends a node with the given ordered children and returns its
// dense NodeId. Children are copied into the unit's shared edges array as
// a contiguous slice.
func (b *Builder) AddNode(kind NodeKind, firstToken, lastToken ids.TokenId, children []ids.NodeId) (ids.NodeId, error) {
	if b.sealed {
		return ids.InvalidNode, ErrSealed
	}
	nodeCount := ids.NodeId(len(b.unit.nodes))
	for _, c := range children {
		if c < 0 || c >= nodeCount {
			return ids.InvalidNode, fmt.Errorf("%w: child %d, node count %d", ErrMalformedAst, c, nodeCount)
		}
	}

	lo := ids.EdgeIndex(len(b.unit.edges))
	b.unit.edges = append(b.unit.edges, children...)
	hi := ids.EdgeIndex(len(b.unit.edges))

	id := ids.NodeId(len(b.unit.nodes))
	b.unit.nodes = append(b.unit.nodes, AstNode{
		Kind:       kind,
		FirstToken: firstToken,
		LastToken:  lastToken,
		ChildLo:    lo,
		ChildHi:    hi,
	})
	return id, nil
}

// AddScope appends a scope and returns its dense ScopeId. parent is
// ids.InvalidScope for a root scope (the global scope).
func (b *Builder) AddScope(parent ids.ScopeId, kind ScopeKind) (ids.ScopeId, error) {
	if b.sealed {
		return ids.InvalidScope, ErrSealed
	}
	id := ids.ScopeId(len(b.unit.scopes))
	b.unit.scopes = append(b.unit.scopes, Scope{Parent: parent, Kind: kind})
	return id, nil
}

// AddDecl appends a declaration, rejecting it with ErrDuplicateDeclaration
// if a decl of the same kind and name already exists in scope. The second
// Decl is dropped, a DiagDuplicateDeclaration diagnostic is recorded
// against the unit, and construction continues: a duplicate name must not
// abort the whole build. The existing Decl remains authoritative and
// scope state is unchanged.
func (b *Builder) AddDecl(node ids.NodeId, name ids.StringId, scope ids.ScopeId, kind DeclKind, vis Visibility, declaredType ids.StringId) (ids.DeclId, error) {
	if b.sealed {
		return ids.InvalidDecl, ErrSealed
	}
	key := declKey{scope: scope, kind: kind, name: name}
	if _, exists := b.unit.declIndex[key]; exists {
		b.log.Warn("rejecting duplicate declaration", "scope", scope, "kind", kind)
		nameStr, _ := b.interner.LookupString(name)
		msg := b.interner.InternString(fmt.Sprintf("duplicate declaration %q in scope", nameStr))
		if _, err := b.AddDiagnostic(SeverityError, DiagDuplicateDeclaration, msg, Span{}); err != nil {
			return ids.InvalidDecl, err
		}
		return ids.InvalidDecl, ErrDuplicateDeclaration
	}

	id := ids.DeclId(len(b.unit.decls))
	b.unit.decls = append(b.unit.decls, Decl{
		Node:         node,
		Name:         name,
		Scope:        scope,
		Kind:         kind,
		DeclaredType: declaredType,
		Visibility:   vis,
	})
	b.unit.declIndex[key] = id
	return id, nil
}

// AddRef appends a resolved reference edge.
func (b *Builder) AddRef(from ids.NodeId, name ids.StringId, to ids.DeclId) (ids.RefId, error) {
	if b.sealed {
		return ids.InvalidRef, ErrSealed
	}
	id := ids.RefId(len(b.unit.refs))
	b.unit.refs = append(b.unit.refs, Ref{From: from, Name: name, To: to})
	return id, nil
}

// AddDiagnostic appends a diagnostic record.
func (b *Builder) AddDiagnostic(severity Severity, code DiagnosticCode, message ids.StringId, span Span) (int, error) {
	if b.sealed {
		return -1, ErrSealed
	}
	idx := len(b.unit.diags)
	b.unit.diags = append(b.unit.diags, Diagnostic{Severity: severity, Code: code, Message: message, SpanData: span})
	return idx, nil
}

// reserveCapacity grows a table's backing array ahead of a large batch of
// adds, retrying grow with a short exponential backoff (at most 50ms in
// total) while it returns an error, and then returning grow's last error
// unchanged.
func reserveCapacity(grow func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 50 * time.Millisecond
	return backoff.Retry(grow, bo)
}

// Reserve hints expected table sizes so a parser can avoid repeated
// reallocation while streaming in a large unit. It is best-effort: failure
// to grow is reported but construction may still proceed into smaller
// incremental allocations.
func (b *Builder) Reserve(tokens, nodes, edges, scopes, decls, refs int) error {
	if b.sealed {
		return ErrSealed
	}
	const maxTableLen = math.MaxInt32
	for _, n := range []int{tokens, nodes, edges, scopes, decls, refs} {
		if n < 0 || n > maxTableLen {
			return ErrOutOfMemory
		}
	}
	return reserveCapacity(func() error {
		if cap(b.unit.tokens) < tokens {
			grown := make([]Token, len(b.unit.tokens), tokens)
			copy(grown, b.unit.tokens)
			b.unit.tokens = grown
		}
		if cap(b.unit.nodes) < nodes {
			grown := make([]AstNode, len(b.unit.nodes), nodes)
			copy(grown, b.unit.nodes)
			b.unit.nodes = grown
		}
		if cap(b.unit.edges) < edges {
			grown := make([]ids.NodeId, len(b.unit.edges), edges)
			copy(grown, b.unit.edges)
			b.unit.edges = grown
		}
		if cap(b.unit.scopes) < scopes {
			grown := make([]Scope, len(b.unit.scopes), scopes)
			copy(grown, b.unit.scopes)
			b.unit.scopes = grown
		}
		if cap(b.unit.decls) < decls {
			grown := make([]Decl, len(b.unit.decls), decls)
			copy(grown, b.unit.decls)
			b.unit.decls = grown
		}
		if cap(b.unit.refs) < refs {
			grown := make([]Ref, len(b.unit.refs), refs)
			copy(grown, b.unit.refs)
			b.unit.refs = grown
		}
		return nil
	})
}

// Seal finalizes construction and returns an immutable, single-unit
// Snapshot. After Seal, every method on b returns ErrSealed.
func (b *Builder) Seal() (*Snapshot, error) {
	if b.sealed {
		return nil, ErrSealed
	}
	b.sealed = true
	return &Snapshot{
		interner: b.interner,
		units:    []*Unit{b.unit},
	}, nil
}

// Merge combines already-sealed snapshots that share an interner into one
// multi-unit Snapshot: units are independent in storage but share the
// interner.
func Merge(snapshots ...*Snapshot) (*Snapshot, error) {
	if len(snapshots) == 0 {
		return &Snapshot{interner: intern.New()}, nil
	}
	shared := snapshots[0].interner
	var units []*Unit
	for _, s := range snapshots {
		if s.interner != shared {
			return nil, fmt.Errorf("%w", ErrInternerMismatch)
		}
		units = append(units, s.units...)
	}
	return &Snapshot{interner: shared, units: units}, nil
}
