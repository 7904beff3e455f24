// Package query implements the memoized, dependency-tracking query engine:
// the layer every semantic question (types, definitions, references,
// overload dispatch) flows through instead of walking the AST directly.
package query

import (
	"fmt"

	"github.com/janus-lang/astdb/internal/ids"
)

// Kind discriminates the closed set of query shapes the engine runs.
type Kind uint8

const (
	NodeAt Kind = iota
	TypeOf
	DefinitionOf
	ReferencesTo
	Dispatch
	ResolveName
	IROf
	EffectsOf
	Hover
)

// String renders a Kind for logs and diagnostics.
func (k Kind) String() string {
	switch k {
	case NodeAt:
		return "node_at"
	case TypeOf:
		return "type_of"
	case DefinitionOf:
		return "definition_of"
	case ReferencesTo:
		return "references_to"
	case Dispatch:
		return "dispatch"
	case ResolveName:
		return "resolve_name"
	case IROf:
		return "ir_of"
	case EffectsOf:
		return "effects_of"
	case Hover:
		return "hover"
	default:
		return "unknown"
	}
}

// Key is the tagged-union identity of one memoizable query. It is a plain
// comparable struct so it can be used directly as a map key — the fields
// that do not apply to a given Kind are left at their zero value, which is
// fine because two keys of different Kind are never equal regardless of
// their other fields.
type Key struct {
	Kind   Kind
	Unit   ids.UnitId
	Node   ids.NodeId
	Scope  ids.ScopeId
	Name   string
	ArgSig string // comma-joined canonical argument type names, Dispatch only
}

// groupKey renders a Key as a string suitable for singleflight.Group.Do,
// which only accepts string keys.
func (k Key) groupKey() string {
	return fmt.Sprintf("%d|%d|%d|%d|%s|%s", k.Kind, k.Unit, k.Node, k.Scope, k.Name, k.ArgSig)
}

// NewNodeAt builds the key for "what node is at this position" queries.
func NewNodeAt(unit ids.UnitId, node ids.NodeId) Key {
	return Key{Kind: NodeAt, Unit: unit, Node: node}
}

// NewTypeOf builds the key for "what is the type of this node" queries.
func NewTypeOf(unit ids.UnitId, node ids.NodeId) Key {
	return Key{Kind: TypeOf, Unit: unit, Node: node}
}

// NewDefinitionOf builds the key for "where is this reference defined"
// queries.
func NewDefinitionOf(unit ids.UnitId, node ids.NodeId) Key {
	return Key{Kind: DefinitionOf, Unit: unit, Node: node}
}

// NewReferencesTo builds the key for "what references this declaration"
// queries.
func NewReferencesTo(unit ids.UnitId, node ids.NodeId) Key {
	return Key{Kind: ReferencesTo, Unit: unit, Node: node}
}

// NewDispatch builds the key for an overload-resolution query.
func NewDispatch(unit ids.UnitId, scope ids.ScopeId, name, argSig string) Key {
	return Key{Kind: Dispatch, Unit: unit, Scope: scope, Name: name, ArgSig: argSig}
}

// NewResolveName builds the key for a plain name-lookup query.
func NewResolveName(unit ids.UnitId, scope ids.ScopeId, name string) Key {
	return Key{Kind: ResolveName, Unit: unit, Scope: scope, Name: name}
}

// NewIROf builds the key for "lower this node to IR" queries.
func NewIROf(unit ids.UnitId, node ids.NodeId) Key {
	return Key{Kind: IROf, Unit: unit, Node: node}
}

// NewEffectsOf builds the key for "what effects does this node have"
// queries.
func NewEffectsOf(unit ids.UnitId, node ids.NodeId) Key {
	return Key{Kind: EffectsOf, Unit: unit, Node: node}
}

// NewHover builds the key for an editor hover-info query.
func NewHover(unit ids.UnitId, node ids.NodeId) Key {
	return Key{Kind: Hover, Unit: unit, Node: node}
}
