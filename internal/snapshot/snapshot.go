package snapshot

import (
	"github.com/janus-lang/astdb/internal/ids"
	"github.com/janus-lang/astdb/internal/intern"
)

// Snapshot is an immutable, sealed ASTDB instance. It is safe to share
// across goroutines: every method is read-only and no internal state is
// mutated after Seal produces it.
//
// All accessors return a sentinel "not found" (a zero value plus false, or
// a nil slice) on an out-of-range id rather than panicking — a malformed
// lookup is a bug in the caller, never in storage itself.
type Snapshot struct {
	interner *intern.Interner
	units    []*Unit
}

// Interner returns the interner shared by every unit in this snapshot.
func (s *Snapshot) Interner() *intern.Interner { return s.interner }

// UnitCount returns the number of compilation units in the snapshot.
func (s *Snapshot) UnitCount() int { return len(s.units) }

// Unit returns the unit at id, or nil if id is out of range.
func (s *Snapshot) Unit(id ids.UnitId) *Unit {
	if id < 0 || int(id) >= len(s.units) {
		return nil
	}
	return s.units[id]
}

// Units returns all units in the snapshot in construction order. The
// returned slice must not be mutated.
func (s *Snapshot) Units() []*Unit { return s.units }

// NodeCount returns the number of nodes in unit u, or 0 if u is nil.
func (u *Unit) NodeCount() int {
	if u == nil {
		return 0
	}
	return len(u.nodes)
}

// Node returns the AstNode at id and whether id was in range.
func (u *Unit) Node(id ids.NodeId) (AstNode, bool) {
	if u == nil || id < 0 || int(id) >= len(u.nodes) {
		return AstNode{}, false
	}
	return u.nodes[id], true
}

// Children returns the ordered child NodeIds of id. The returned slice is
// empty (never nil) when the node has no children, and is borrowed from
// the unit's shared edges array — its lifetime is tied to the snapshot.
func (u *Unit) Children(id ids.NodeId) []ids.NodeId {
	n, ok := u.Node(id)
	if !ok {
		return []ids.NodeId{}
	}
	if n.ChildLo == n.ChildHi {
		return []ids.NodeId{}
	}
	return u.edges[n.ChildLo:n.ChildHi]
}

// Token returns the Token at id and whether id was in range.
func (u *Unit) Token(id ids.TokenId) (Token, bool) {
	if u == nil || id < 0 || int(id) >= len(u.tokens) {
		return Token{}, false
	}
	return u.tokens[id], true
}

// TokensOf returns the inclusive range of tokens spanned by node id, in
// order, or nil if id is out of range.
func (u *Unit) TokensOf(id ids.NodeId) []Token {
	n, ok := u.Node(id)
	if !ok {
		return nil
	}
	if n.FirstToken < 0 || n.LastToken < 0 || int(n.LastToken) >= len(u.tokens) || n.FirstToken > n.LastToken {
		return nil
	}
	return u.tokens[n.FirstToken : n.LastToken+1]
}

// Span computes the source span of node id from its first and last
// token, or the zero Span if id or its tokens are out of range.
func (u *Unit) Span(id ids.NodeId) Span {
	n, ok := u.Node(id)
	if !ok {
		return Span{}
	}
	first, ok1 := u.Token(n.FirstToken)
	last, ok2 := u.Token(n.LastToken)
	if !ok1 || !ok2 {
		return Span{}
	}
	return Span{
		ByteStart: first.SpanData.ByteStart,
		ByteEnd:   last.SpanData.ByteEnd,
		Line:      first.SpanData.Line,
		Column:    first.SpanData.Column,
	}
}

// TextOf returns the interned text carried by node id's first token (the
// identifier/literal content), or "", false if the node or its first
// token carries no text.
func (u *Unit) TextOf(id ids.NodeId, in *intern.Interner) (string, bool) {
	n, ok := u.Node(id)
	if !ok {
		return "", false
	}
	tok, ok := u.Token(n.FirstToken)
	if !ok || !tok.Text.Valid() {
		return "", false
	}
	return in.LookupString(tok.Text)
}

// Decl returns the Decl at id and whether id was in range.
func (u *Unit) Decl(id ids.DeclId) (Decl, bool) {
	if u == nil || id < 0 || int(id) >= len(u.decls) {
		return Decl{}, false
	}
	return u.decls[id], true
}

// DeclCount returns the number of declarations in the unit.
func (u *Unit) DeclCount() int { return len(u.decls) }

// Decls returns all declarations in the unit in construction order. The
// returned slice must not be mutated.
func (u *Unit) Decls() []Decl { return u.decls }

// Scope returns the Scope at id and whether id was in range.
func (u *Unit) Scope(id ids.ScopeId) (Scope, bool) {
	if u == nil || id < 0 || int(id) >= len(u.scopes) {
		return Scope{}, false
	}
	return u.scopes[id], true
}

// Ref returns the Ref at id and whether id was in range.
func (u *Unit) Ref(id ids.RefId) (Ref, bool) {
	if u == nil || id < 0 || int(id) >= len(u.refs) {
		return Ref{}, false
	}
	return u.refs[id], true
}

// Refs returns all reference edges in the unit.
func (u *Unit) Refs() []Ref { return u.refs }

// Diagnostics returns all diagnostics attached to the unit.
func (u *Unit) Diagnostics() []Diagnostic { return u.diags }

// DeclsInScope returns the DeclIds declared directly in scope (not
// transitively in child scopes), in construction order.
func (u *Unit) DeclsInScope(scope ids.ScopeId) []ids.DeclId {
	var out []ids.DeclId
	for i, d := range u.decls {
		if d.Scope == scope {
			out = append(out, ids.DeclId(i))
		}
	}
	return out
}
