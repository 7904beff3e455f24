// Package differ computes a semantic diff between two sealed snapshots:
// given the same declaration in an old and a new snapshot, it emits a
// minimal ordered list of Change records and the delta set of CIDs that
// changed between them, descending one level into each changed top-level
// declaration to classify what kind of change occurred instead of
// reporting a bare "CID differs".
package differ

import (
	"log/slog"
	"sort"

	"github.com/janus-lang/astdb/internal/accessor"
	"github.com/janus-lang/astdb/internal/cid"
	"github.com/janus-lang/astdb/internal/ids"
	"github.com/janus-lang/astdb/internal/intern"
	"github.com/janus-lang/astdb/internal/snapshot"
)

// Kind enumerates the closed set of semantic change classifications.
type Kind string

const (
	AddDecl               Kind = "AddDecl"
	RemoveDecl            Kind = "RemoveDecl"
	SignatureChange       Kind = "SignatureChange"
	ImplementationChange  Kind = "ImplementationChange"
	LiteralChange         Kind = "LiteralChange"
	TypeChange            Kind = "TypeChange"
	EffectChange          Kind = "EffectChange"
	DeclarationKindChange Kind = "DeclarationKindChange"
	AttributeChange       Kind = "AttributeChange"
	// StructuralChange is a fallback for a changed subtree that does not
	// cleanly match one of the named categories above (e.g. a struct
	// gaining a field of the same name but a different type).
	StructuralChange Kind = "StructuralChange"
)

// Change is one entry in a differ run's output. Detail is kind-specific:
// callers should switch on Kind before reading fields out of it.
type Change struct {
	Item   string
	Kind   Kind
	Detail map[string]any
	OldCID *cid.CID
	NewCID *cid.CID
}

// declKey identifies one diffable top-level declaration across two
// snapshots that may not share node or scope numbering.
type declKey struct {
	path string
	name string
	kind snapshot.DeclKind
}

var diffableKinds = map[snapshot.DeclKind]bool{
	snapshot.DeclFunction:  true,
	snapshot.DeclTypeAlias: true,
	snapshot.DeclStruct:    true,
	snapshot.DeclEnum:      true,
}

// scopePath renders the chain of ScopeKinds from the root down to scope,
// used as the positionally-stable half of a declKey since this model has
// no named module scopes to anchor a qualified path to.
func scopePath(u *snapshot.Unit, scope ids.ScopeId) string {
	var kinds []snapshot.ScopeKind
	for s := scope; s.Valid(); {
		sc, ok := u.Scope(s)
		if !ok {
			break
		}
		kinds = append(kinds, sc.Kind)
		s = sc.Parent
	}
	// reverse into root-to-leaf order
	path := ""
	for i := len(kinds) - 1; i >= 0; i-- {
		if path != "" {
			path += "/"
		}
		path += scopeKindName(kinds[i])
	}
	return path
}

func scopeKindName(k snapshot.ScopeKind) string {
	switch k {
	case snapshot.ScopeGlobal:
		return "global"
	case snapshot.ScopeModule:
		return "module"
	case snapshot.ScopeFunction:
		return "function"
	case snapshot.ScopeBlock:
		return "block"
	case snapshot.ScopeStructBody:
		return "struct_body"
	case snapshot.ScopeEnumBody:
		return "enum_body"
	default:
		return "unknown"
	}
}

func collectTopLevel(u *snapshot.Unit, in *intern.Interner) map[declKey]snapshot.Decl {
	out := make(map[declKey]snapshot.Decl)
	for _, d := range u.Decls() {
		if !diffableKinds[d.Kind] {
			continue
		}
		name, ok := in.LookupString(d.Name)
		if !ok {
			continue
		}
		key := declKey{path: scopePath(u, d.Scope), name: name, kind: d.Kind}
		out[key] = d
	}
	return out
}

// Diff compares unitA of snapA against unitB of snapB and returns an
// ordered list of changes, the set of CIDs that differ between them, and
// every top-level item name considered (changed or not), for Report
// callers that want to list unchanged declarations too.
func Diff(snapA *snapshot.Snapshot, unitA ids.UnitId, snapB *snapshot.Snapshot, unitB ids.UnitId) ([]Change, map[cid.CID]struct{}, []string, error) {
	uA := snapA.Unit(unitA)
	uB := snapB.Unit(unitB)
	inA := snapA.Interner()
	inB := snapB.Interner()

	cacheA := cid.NewCache()
	cacheB := cid.NewCache()
	opts := cid.ToolchainOpts{ToolchainVersion: 1, Deterministic: true}

	declsA := collectTopLevel(uA, inA)
	declsB := collectTopLevel(uB, inB)

	keys := make(map[declKey]struct{})
	for k := range declsA {
		keys[k] = struct{}{}
	}
	for k := range declsB {
		keys[k] = struct{}{}
	}

	delta := make(map[cid.CID]struct{})
	var changes []Change

	for k := range keys {
		dA, okA := declsA[k]
		dB, okB := declsB[k]

		switch {
		case okA && !okB:
			c, err := cacheA.Of(snapA, unitA, dA.Node, opts)
			if err != nil {
				return nil, nil, nil, err
			}
			delta[c] = struct{}{}
			cc := c
			changes = append(changes, Change{Item: k.name, Kind: RemoveDecl, Detail: map[string]any{"scope": k.path}, OldCID: &cc})

		case !okA && okB:
			c, err := cacheB.Of(snapB, unitB, dB.Node, opts)
			if err != nil {
				return nil, nil, nil, err
			}
			delta[c] = struct{}{}
			cc := c
			changes = append(changes, Change{Item: k.name, Kind: AddDecl, Detail: map[string]any{"scope": k.path}, NewCID: &cc})

		default:
			oldCID, err := cacheA.Of(snapA, unitA, dA.Node, opts)
			if err != nil {
				return nil, nil, nil, err
			}
			newCID, err := cacheB.Of(snapB, unitB, dB.Node, opts)
			if err != nil {
				return nil, nil, nil, err
			}
			if oldCID.Equal(newCID) {
				continue
			}
			delta[oldCID] = struct{}{}
			delta[newCID] = struct{}{}
			oc, nc := oldCID, newCID
			change, err := classify(uA, inA, cacheA, snapA, unitA, dA, uB, inB, cacheB, snapB, unitB, dB, opts)
			if err != nil {
				return nil, nil, nil, err
			}
			change.Item = k.name
			change.OldCID = &oc
			change.NewCID = &nc
			changes = append(changes, change)
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Item != changes[j].Item {
			return changes[i].Item < changes[j].Item
		}
		return changes[i].Kind < changes[j].Kind
	})

	allItems := make([]string, 0, len(keys))
	for k := range keys {
		allItems = append(allItems, k.name)
	}
	sort.Strings(allItems)

	slog.Default().With("component", "differ").Debug("diff complete",
		"items", len(allItems), "changes", len(changes), "delta_cids", len(delta))

	return changes, delta, allItems, nil
}

func classify(
	uA *snapshot.Unit, inA *intern.Interner, cacheA *cid.Cache, snapA *snapshot.Snapshot, unitA ids.UnitId, dA snapshot.Decl,
	uB *snapshot.Unit, inB *intern.Interner, cacheB *cid.Cache, snapB *snapshot.Snapshot, unitB ids.UnitId, dB snapshot.Decl,
	opts cid.ToolchainOpts,
) (Change, error) {
	switch dA.Kind {
	case snapshot.DeclFunction:
		return classifyFunc(uA, cacheA, snapA, unitA, dA, uB, cacheB, snapB, unitB, dB, opts)
	case snapshot.DeclTypeAlias:
		return classifyTypeAlias(uA, inA, uB, inB, dA, dB)
	case snapshot.DeclStruct:
		return classifyStruct(uA, inA, uB, inB, dA, dB)
	case snapshot.DeclEnum:
		return classifyEnum(uA, inA, uB, inB, dA, dB)
	default:
		return Change{Kind: StructuralChange, Detail: map[string]any{}}, nil
	}
}

func classifyFunc(
	uA *snapshot.Unit, cacheA *cid.Cache, snapA *snapshot.Snapshot, unitA ids.UnitId, dA snapshot.Decl,
	uB *snapshot.Unit, cacheB *cid.Cache, snapB *snapshot.Snapshot, unitB ids.UnitId, dB snapshot.Decl,
	opts cid.ToolchainOpts,
) (Change, error) {
	paramsA := accessor.FuncParams(uA, dA.Node)
	paramsB := accessor.FuncParams(uB, dB.Node)

	sigSame := len(paramsA) == len(paramsB)
	if sigSame {
		for i := range paramsA {
			ca, err := cacheA.Of(snapA, unitA, paramsA[i], opts)
			if err != nil {
				return Change{}, err
			}
			cb, err := cacheB.Of(snapB, unitB, paramsB[i], opts)
			if err != nil {
				return Change{}, err
			}
			if !ca.Equal(cb) {
				sigSame = false
				break
			}
		}
	}

	if sigSame {
		retA, okA := accessor.FuncReturnType(uA, dA.Node)
		retB, okB := accessor.FuncReturnType(uB, dB.Node)
		if okA != okB {
			sigSame = false
		} else if okA && okB {
			ca, err := cacheA.Of(snapA, unitA, retA, opts)
			if err != nil {
				return Change{}, err
			}
			cb, err := cacheB.Of(snapB, unitB, retB, opts)
			if err != nil {
				return Change{}, err
			}
			sigSame = ca.Equal(cb)
		}
	}

	if !sigSame {
		return Change{Kind: SignatureChange, Detail: map[string]any{
			"old_param_count": len(paramsA),
			"new_param_count": len(paramsB),
		}}, nil
	}

	bodyA, okA := accessor.FuncBody(uA, dA.Node)
	bodyB, okB := accessor.FuncBody(uB, dB.Node)
	if okA != okB {
		return Change{Kind: ImplementationChange, Detail: map[string]any{"old_has_body": okA, "new_has_body": okB}}, nil
	}
	if okA && okB {
		ca, err := cacheA.Of(snapA, unitA, bodyA, opts)
		if err != nil {
			return Change{}, err
		}
		cb, err := cacheB.Of(snapB, unitB, bodyB, opts)
		if err != nil {
			return Change{}, err
		}
		if !ca.Equal(cb) {
			if from, to, ok := literalLeafDiff(uA, snapA.Interner(), cacheA, snapA, unitA, bodyA, uB, snapB.Interner(), cacheB, snapB, unitB, bodyB, opts); ok {
				return Change{Kind: LiteralChange, Detail: map[string]any{"from": from, "to": to}}, nil
			}
			return Change{Kind: ImplementationChange, Detail: map[string]any{}}, nil
		}
	}
	return Change{Kind: StructuralChange, Detail: map[string]any{}}, nil
}

// isLiteralKind reports whether k is one of the leaf literal node kinds:
// the only kinds literalLeafDiff is willing to call a "literal-only" edit.
func isLiteralKind(k snapshot.NodeKind) bool {
	switch k {
	case snapshot.NodeIntLiteral, snapshot.NodeFloatLiteral, snapshot.NodeBoolLiteral, snapshot.NodeStringLiteral:
		return true
	default:
		return false
	}
}

// literalLeafDiff walks nodeA and nodeB in lockstep, following the single
// child position whose CID differs at each level, to find the one leaf
// where the two bodies actually diverge. It reports ok=true only if that
// leaf is a literal node of the same kind on both sides and every sibling
// subtree along the way matched exactly. Anything else (a kind mismatch,
// more than one differing child at some level, or a non-literal leaf)
// means the body changed in some way other than a single literal edit.
func literalLeafDiff(
	uA *snapshot.Unit, inA *intern.Interner, cacheA *cid.Cache, snapA *snapshot.Snapshot, unitA ids.UnitId, nodeA ids.NodeId,
	uB *snapshot.Unit, inB *intern.Interner, cacheB *cid.Cache, snapB *snapshot.Snapshot, unitB ids.UnitId, nodeB ids.NodeId,
	opts cid.ToolchainOpts,
) (from, to string, ok bool) {
	nA, okA := uA.Node(nodeA)
	nB, okB := uB.Node(nodeB)
	if !okA || !okB || nA.Kind != nB.Kind {
		return "", "", false
	}

	if isLiteralKind(nA.Kind) {
		textA, okA := uA.TextOf(nodeA, inA)
		textB, okB := uB.TextOf(nodeB, inB)
		if !okA || !okB || textA == textB {
			return "", "", false
		}
		return textA, textB, true
	}

	childrenA := uA.Children(nodeA)
	childrenB := uB.Children(nodeB)
	if len(childrenA) != len(childrenB) {
		return "", "", false
	}

	diffIdx := -1
	for i := range childrenA {
		ca, err := cacheA.Of(snapA, unitA, childrenA[i], opts)
		if err != nil {
			return "", "", false
		}
		cb, err := cacheB.Of(snapB, unitB, childrenB[i], opts)
		if err != nil {
			return "", "", false
		}
		if !ca.Equal(cb) {
			if diffIdx != -1 {
				return "", "", false
			}
			diffIdx = i
		}
	}
	if diffIdx == -1 {
		return "", "", false
	}
	return literalLeafDiff(
		uA, inA, cacheA, snapA, unitA, childrenA[diffIdx],
		uB, inB, cacheB, snapB, unitB, childrenB[diffIdx],
		opts,
	)
}

func classifyTypeAlias(uA *snapshot.Unit, inA *intern.Interner, uB *snapshot.Unit, inB *intern.Interner, dA, dB snapshot.Decl) (Change, error) {
	targetA, okA := accessor.TypeAliasTarget(uA, dA.Node)
	targetB, okB := accessor.TypeAliasTarget(uB, dB.Node)
	if !okA || !okB {
		return Change{Kind: StructuralChange, Detail: map[string]any{}}, nil
	}
	textA, _ := uA.TextOf(targetA, inA)
	textB, _ := uB.TextOf(targetB, inB)
	if textA != textB {
		return Change{Kind: TypeChange, Detail: map[string]any{"old": textA, "new": textB}}, nil
	}
	return Change{Kind: StructuralChange, Detail: map[string]any{}}, nil
}

func fieldNameSet(u *snapshot.Unit, in *intern.Interner, fields []ids.NodeId) map[string]ids.NodeId {
	out := make(map[string]ids.NodeId, len(fields))
	for _, f := range fields {
		nameNode, ok := accessor.FieldName(u, f)
		if !ok {
			continue
		}
		name, ok := u.TextOf(nameNode, in)
		if !ok {
			continue
		}
		out[name] = f
	}
	return out
}

func classifyStruct(uA *snapshot.Unit, inA *intern.Interner, uB *snapshot.Unit, inB *intern.Interner, dA, dB snapshot.Decl) (Change, error) {
	fieldsA := fieldNameSet(uA, inA, accessor.StructFields(uA, dA.Node))
	fieldsB := fieldNameSet(uB, inB, accessor.StructFields(uB, dB.Node))

	var added, removed []string
	for name := range fieldsB {
		if _, ok := fieldsA[name]; !ok {
			added = append(added, name)
		}
	}
	for name := range fieldsA {
		if _, ok := fieldsB[name]; !ok {
			removed = append(removed, name)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)

	if len(added) > 0 || len(removed) > 0 {
		return Change{Kind: AttributeChange, Detail: map[string]any{"added_fields": added, "removed_fields": removed}}, nil
	}
	return Change{Kind: StructuralChange, Detail: map[string]any{}}, nil
}

func variantNameSet(u *snapshot.Unit, in *intern.Interner, variants []ids.NodeId) map[string]struct{} {
	out := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		nameNode, ok := accessor.VariantName(u, v)
		if !ok {
			continue
		}
		name, ok := u.TextOf(nameNode, in)
		if !ok {
			continue
		}
		out[name] = struct{}{}
	}
	return out
}

func classifyEnum(uA *snapshot.Unit, inA *intern.Interner, uB *snapshot.Unit, inB *intern.Interner, dA, dB snapshot.Decl) (Change, error) {
	variantsA := variantNameSet(uA, inA, accessor.EnumVariants(uA, dA.Node))
	variantsB := variantNameSet(uB, inB, accessor.EnumVariants(uB, dB.Node))

	var added, removed []string
	for name := range variantsB {
		if _, ok := variantsA[name]; !ok {
			added = append(added, name)
		}
	}
	for name := range variantsA {
		if _, ok := variantsB[name]; !ok {
			removed = append(removed, name)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)

	if len(added) > 0 || len(removed) > 0 {
		return Change{Kind: AttributeChange, Detail: map[string]any{"added_variants": added, "removed_variants": removed}}, nil
	}
	return Change{Kind: StructuralChange, Detail: map[string]any{}}, nil
}
