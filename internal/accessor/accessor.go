// Package accessor is the schema firewall between storage and semantics.
// It is the ONLY place in the system that dereferences a node's raw
// child positions; every other consumer (queries, resolution, inference,
// codegen) must go through these functions instead of indexing
// u.Children(node)[i] directly.
//
// Every accessor validates the node's kind before touching its children
// and returns (ids.InvalidNode, false) — never a panic — on a kind
// mismatch or malformed shape. A malformed AST is treated as a bug in a
// preceding stage (the parser), not a recoverable accessor error.
package accessor

import (
	"github.com/janus-lang/astdb/internal/ids"
	"github.com/janus-lang/astdb/internal/intern"
	"github.com/janus-lang/astdb/internal/snapshot"
)

// childAt returns the idx'th child of node, or (InvalidNode, false) if
// node is out of range, has fewer than idx+1 children, or the slot holds
// an explicit snapshot.NodeAbsent placeholder.
func childAt(u *snapshot.Unit, node ids.NodeId, idx int) (ids.NodeId, bool) {
	kids := u.Children(node)
	if idx < 0 || idx >= len(kids) {
		return ids.InvalidNode, false
	}
	child := kids[idx]
	if n, ok := u.Node(child); ok && n.Kind == snapshot.NodeAbsent {
		return ids.InvalidNode, false
	}
	return child, true
}

func kindIs(u *snapshot.Unit, node ids.NodeId, want snapshot.NodeKind) bool {
	n, ok := u.Node(node)
	return ok && n.Kind == want
}

// --- function declarations ---
// Schema: children = [name, param_list, return_type|absent, body|absent]

// FuncName returns the identifier node naming a func_decl.
func FuncName(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeFuncDecl) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 0)
}

// FuncParams returns the ordered param nodes of a func_decl.
func FuncParams(u *snapshot.Unit, node ids.NodeId) []ids.NodeId {
	if !kindIs(u, node, snapshot.NodeFuncDecl) {
		return nil
	}
	paramList, ok := childAt(u, node, 1)
	if !ok {
		return nil
	}
	return u.Children(paramList)
}

// FuncReturnType returns the func_decl's return type node, or false if it
// declares no return type.
func FuncReturnType(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeFuncDecl) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 2)
}

// FuncBody returns the func_decl's body block, or false if it has none
// (an external/forward declaration).
func FuncBody(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeFuncDecl) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 3)
}

// ParamName returns the identifier node naming a param.
func ParamName(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeParam) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 0)
}

// ParamType returns a param's declared type node.
func ParamType(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeParam) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 1)
}

// --- variable / let declarations ---
// Schema: children = [name, type_annotation|absent, initializer|absent]

// VarName returns the identifier node naming a var_decl or let_stmt.
func VarName(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	n, ok := u.Node(node)
	if !ok || (n.Kind != snapshot.NodeVarDecl && n.Kind != snapshot.NodeLetStmt) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 0)
}

// VarTypeAnnotation returns the declared type node, or false if the
// declaration has no explicit annotation.
func VarTypeAnnotation(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	n, ok := u.Node(node)
	if !ok || (n.Kind != snapshot.NodeVarDecl && n.Kind != snapshot.NodeLetStmt) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 1)
}

// VarInitializer returns the initializer expression node, or false if
// the declaration has none.
func VarInitializer(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	n, ok := u.Node(node)
	if !ok || (n.Kind != snapshot.NodeVarDecl && n.Kind != snapshot.NodeLetStmt) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 2)
}

// VarIsMutable reports whether node is a mutable binding (var_decl) as
// opposed to an immutable one (let_stmt). The second return value is
// false if node is neither.
func VarIsMutable(u *snapshot.Unit, node ids.NodeId) (bool, bool) {
	n, ok := u.Node(node)
	if !ok {
		return false, false
	}
	switch n.Kind {
	case snapshot.NodeVarDecl:
		return true, true
	case snapshot.NodeLetStmt:
		return false, true
	default:
		return false, false
	}
}

// --- binary expressions ---
// Schema: children = [left, right]; operator text lives on the node's
// own first token.

// BinaryOpLeft returns the left operand of a binary_expr.
func BinaryOpLeft(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeBinaryExpr) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 0)
}

// BinaryOpRight returns the right operand of a binary_expr.
func BinaryOpRight(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeBinaryExpr) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 1)
}

// BinaryOpKind returns the operator token text (e.g. "+", "==") of a
// binary_expr.
func BinaryOpKind(u *snapshot.Unit, in *intern.Interner, node ids.NodeId) (string, bool) {
	if !kindIs(u, node, snapshot.NodeBinaryExpr) {
		return "", false
	}
	return u.TextOf(node, in)
}

// --- calls ---
// Schema: children = [callee, arg_list]

// CallCallee returns the callee expression of a call_expr.
func CallCallee(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeCallExpr) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 0)
}

// CallArgs returns the ordered argument expressions of a call_expr.
func CallArgs(u *snapshot.Unit, node ids.NodeId) []ids.NodeId {
	if !kindIs(u, node, snapshot.NodeCallExpr) {
		return nil
	}
	argList, ok := childAt(u, node, 1)
	if !ok {
		return nil
	}
	return u.Children(argList)
}

// --- field access ---
// Schema: children = [object, name]

// FieldExprObject returns the object expression of a field_expr.
func FieldExprObject(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeFieldExpr) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 0)
}

// FieldExprName returns the field-name identifier node of a field_expr.
func FieldExprName(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeFieldExpr) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 1)
}

// --- struct / enum / type alias declarations ---
// Schema: children = [name, member...]

// StructName returns the identifier node naming a struct_decl.
func StructName(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeStructDecl) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 0)
}

// StructFields returns the ordered struct_field nodes of a struct_decl.
func StructFields(u *snapshot.Unit, node ids.NodeId) []ids.NodeId {
	if !kindIs(u, node, snapshot.NodeStructDecl) {
		return nil
	}
	kids := u.Children(node)
	if len(kids) <= 1 {
		return nil
	}
	return kids[1:]
}

// FieldName returns the identifier node naming a struct_field.
// Schema: children = [name, type]
func FieldName(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeStructField) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 0)
}

// FieldType returns the declared type node of a struct_field.
func FieldType(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeStructField) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 1)
}

// VariantName returns the identifier node naming an enum_variant.
// Schema: children = [name]
func VariantName(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeEnumVariant) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 0)
}

// EnumName returns the identifier node naming an enum_decl.
func EnumName(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeEnumDecl) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 0)
}

// EnumVariants returns the ordered enum_variant nodes of an enum_decl.
func EnumVariants(u *snapshot.Unit, node ids.NodeId) []ids.NodeId {
	if !kindIs(u, node, snapshot.NodeEnumDecl) {
		return nil
	}
	kids := u.Children(node)
	if len(kids) <= 1 {
		return nil
	}
	return kids[1:]
}

// TypeAliasName returns the identifier node naming a type_alias_decl.
func TypeAliasName(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeTypeAliasDecl) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 0)
}

// TypeAliasTarget returns the aliased type node of a type_alias_decl.
func TypeAliasTarget(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeTypeAliasDecl) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 1)
}

// --- imports ---
// Schema: children = [module_path]

// ImportModulePath returns the module-path node of an import_decl.
func ImportModulePath(u *snapshot.Unit, node ids.NodeId) (ids.NodeId, bool) {
	if !kindIs(u, node, snapshot.NodeImportDecl) {
		return ids.InvalidNode, false
	}
	return childAt(u, node, 0)
}
