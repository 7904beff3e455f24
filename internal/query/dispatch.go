package query

import (
	"fmt"
	"sort"

	"github.com/janus-lang/astdb/internal/accessor"
	"github.com/janus-lang/astdb/internal/ids"
	"github.com/janus-lang/astdb/internal/intern"
	"github.com/janus-lang/astdb/internal/snapshot"
)

// conversionEdges is the implicit-widening lattice: i8⊆i16⊆i32⊆i64,
// i32⊆f32, i32⊆f64, i64⊆f64, f32⊆f64. Each entry lists the types directly
// (one lattice edge) reachable from the key. This is deliberately NOT a
// total order over i8..f64 — i64 has no edge to f32, so i64 never
// converts to f32 even though both sit "past" i32 in the lattice. Types
// absent from this table (bool, string, user types) only ever match
// exactly.
var conversionEdges = map[string][]string{
	"i8":  {"i16"},
	"i16": {"i32"},
	"i32": {"i64", "f32", "f64"},
	"i64": {"f64"},
	"f32": {"f64"},
}

// distance returns the length of the shortest chain of direct lattice
// edges from "from" to "to" (0 if they are equal), or ok=false if "to" is
// not reachable from "from" at all. BFS over conversionEdges, not a
// linear rank subtraction, so two targets reachable via unrelated edges
// (e.g. i32's direct edges to both f32 and f64) come back with equal
// distance instead of one looking "cheaper" than the other.
func distance(from, to string) (dist int, ok bool) {
	if from == to {
		return 0, true
	}
	type frontierEntry struct {
		typ  string
		dist int
	}
	visited := map[string]bool{from: true}
	queue := []frontierEntry{{from, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range conversionEdges[cur.typ] {
			if next == to {
				return cur.dist + 1, true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, frontierEntry{next, cur.dist + 1})
			}
		}
	}
	return 0, false
}

// convert reports whether an argument of type from may be passed where to
// is expected, and the shortest-path distance between them if so (0 for
// an exact match). Narrowing conversions are never implicit.
func convert(from, to string) (cost int, ok bool) {
	return distance(from, to)
}

// dominates reports whether narrower is a strictly more specific implicit
// conversion target than wider for an argument of type from — that is,
// whether every shortest path from "from" to "wider" runs through
// "narrower" first. Two targets that are both reachable from "from" but
// only via different, unrelated lattice edges (neither lies on a
// shortest path to the other) are incomparable: dominates returns false
// both ways, and Resolve then treats the two candidates as tied rather
// than preferring whichever happened to have the smaller total distance.
func dominates(from, narrower, wider string) bool {
	if narrower == wider {
		return false
	}
	dFromNarrower, ok := distance(from, narrower)
	if !ok {
		return false
	}
	dNarrowerWider, ok := distance(narrower, wider)
	if !ok {
		return false
	}
	dFromWider, ok := distance(from, wider)
	if !ok {
		return false
	}
	return dFromNarrower+dNarrowerWider == dFromWider
}

// overloadSet walks scope outward from scope, returning the first scope
// level that declares at least one function named name, along with its
// matching declarations. Overload resolution never spans scope levels: a
// name found in an inner scope shadows same-named functions further out
// rather than joining their candidate sets.
func overloadSet(u *snapshot.Unit, in *intern.Interner, scope ids.ScopeId, name string) ([]snapshot.Decl, bool) {
	for s := scope; s.Valid(); {
		var candidates []snapshot.Decl
		for _, declID := range u.DeclsInScope(s) {
			d, ok := u.Decl(declID)
			if !ok || d.Kind != snapshot.DeclFunction {
				continue
			}
			declName, ok := in.LookupString(d.Name)
			if !ok || declName != name {
				continue
			}
			candidates = append(candidates, d)
		}
		if len(candidates) > 0 {
			return candidates, true
		}
		sc, ok := u.Scope(s)
		if !ok {
			return nil, false
		}
		s = sc.Parent
	}
	return nil, false
}

type scoredCandidate struct {
	decl       snapshot.Decl
	exact      int
	paramTypes []string
}

// moreSpecific reports whether a is a strictly more specific match than b
// for a call with the given argTypes: a's parameter types dominate b's at
// every position (never worse, strictly better somewhere), using
// dominates rather than a summed conversion cost. A single position
// where a and b are incomparable (reachable from the argument only via
// different lattice edges), or where b dominates a, makes a not
// strictly more specific than b.
func moreSpecific(argTypes []string, a, b scoredCandidate) bool {
	strictlyBetter := false
	for i, at := range argTypes {
		pa, pb := a.paramTypes[i], b.paramTypes[i]
		if pa == pb {
			continue
		}
		switch {
		case dominates(at, pa, pb):
			strictlyBetter = true
		default:
			return false
		}
	}
	return strictlyBetter
}

// Resolve runs overload dispatch: gather candidates by
// scope walk, narrow to those with the right arity and argument
// compatibility, prefer the most exact-type-match count, and within that
// group pick the candidate whose parameter types dominate every other
// candidate's (see moreSpecific). If no candidate dominates all the
// others — including when two are only reachable from an argument via
// different, unrelated lattice edges — dispatch is genuinely ambiguous
// rather than resolved by an arbitrary cost comparison.
func Resolve(u *snapshot.Unit, in *intern.Interner, scope ids.ScopeId, name string, argTypes []string) (snapshot.Decl, error) {
	set, ok := overloadSet(u, in, scope, name)
	if !ok {
		return snapshot.Decl{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
	}

	var scored []scoredCandidate
	for _, d := range set {
		params := accessor.FuncParams(u, d.Node)
		if len(params) != len(argTypes) {
			continue
		}

		exact := 0
		paramTypes := make([]string, len(params))
		compatible := true
		for i, p := range params {
			paramType, ok := accessor.ParamType(u, p)
			if !ok {
				compatible = false
				break
			}
			paramTypeText, ok := u.TextOf(paramType, in)
			if !ok {
				compatible = false
				break
			}
			cost, ok := convert(argTypes[i], paramTypeText)
			if !ok {
				compatible = false
				break
			}
			if cost == 0 {
				exact++
			}
			paramTypes[i] = paramTypeText
		}
		if !compatible {
			continue
		}
		scored = append(scored, scoredCandidate{decl: d, exact: exact, paramTypes: paramTypes})
	}

	if len(scored) == 0 {
		return snapshot.Decl{}, fmt.Errorf("%w: %s", ErrNoCompatibleFunction, name)
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].exact > scored[j].exact
	})

	maxExact := scored[0].exact
	top := scored[:1]
	for _, c := range scored[1:] {
		if c.exact != maxExact {
			break
		}
		top = append(top, c)
	}

	if len(top) == 1 {
		return top[0].decl, nil
	}

	winner := -1
	for i := range top {
		dominatesAllOthers := true
		for j := range top {
			if i == j {
				continue
			}
			if !moreSpecific(argTypes, top[i], top[j]) {
				dominatesAllOthers = false
				break
			}
		}
		if dominatesAllOthers {
			winner = i
			break
		}
	}
	if winner == -1 {
		return snapshot.Decl{}, fmt.Errorf("%w: %s", ErrAmbiguousDispatch, name)
	}
	return top[winner].decl, nil
}
