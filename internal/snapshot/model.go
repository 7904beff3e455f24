// Package snapshot implements the ASTDB storage engine: columnar,
// append-only tables of tokens, nodes, edges, scopes, declarations,
// references and diagnostics, addressed by the dense ids in internal/ids.
//
// A Snapshot is built by a Builder (the construction phase) and then
// sealed; after sealing it is logically immutable and safe to share
// across goroutines without synchronization.
package snapshot

import "github.com/janus-lang/astdb/internal/ids"

// TokenKind enumerates the closed set of lexical categories a Token can
// carry. Numbering is fixed and versioned: it is never reordered across
// engine revisions, because internal/cid folds raw token content (not
// kind numbering) into the canonical stream, but NodeKind numbering
// (below) IS part of the canonical stream and must stay stable.
type TokenKind uint8

const (
	TokenUnknown TokenKind = iota
	TokenKeyword
	TokenPunctuation
	TokenIdentifier
	TokenIntLiteral
	TokenFloatLiteral
	TokenStringLiteral
	TokenBoolLiteral
	TokenTrivia // whitespace and comments; never contributes to a CID
)

// NodeKind enumerates the closed set of syntactic categories an AstNode
// can be. Values are assigned explicitly (not via iota) and never
// renumbered — internal/cid mixes this numeric tag into every node's
// canonical byte stream, so a silent renumbering would silently change
// every CID in existence. Bumping NodeKindVersion is the correct way to
// signal a breaking change to consumers that persist CIDs.
type NodeKind uint16

// NodeKindVersion is mixed into cid.ToolchainOpts-derived streams is NOT
// required (kind numbers are already part of the per-node payload), but is
// exposed so external tooling can detect a stale cache keyed against an
// older kind table.
const NodeKindVersion = 1

// NodeAbsent marks an optional child slot as "not present" (e.g. a
// var_decl with no initializer still has a fixed-arity children slice;
// the initializer slot holds a NodeAbsent placeholder instead of being
// omitted, preserving the invariant that every entry in edges indexes a
// real node). It is its own kind rather than a nil/sentinel NodeId so
// that the `edges` array invariant ("every NodeId referenced from edges
// is < node count") always holds.
const NodeAbsent NodeKind = 0

const (
	NodeSourceFile NodeKind = iota + 1
	NodeFuncDecl
	NodeParam
	NodeParamList
	NodeArgList
	NodeVarDecl
	NodeLetStmt
	NodeBlock
	NodeReturnStmt
	NodeIfStmt
	NodeWhileStmt
	NodeExprStmt
	NodeIdentifier
	NodeCallExpr
	NodeFieldExpr
	NodeBinaryExpr
	NodeUnaryExpr
	NodeIntLiteral
	NodeFloatLiteral
	NodeBoolLiteral
	NodeStringLiteral
	NodeTypeName
	NodeStructDecl
	NodeStructField
	NodeEnumDecl
	NodeEnumVariant
	NodeTypeAliasDecl
	NodeImportDecl
)

// String renders a NodeKind for diagnostics and test failure messages.
func (k NodeKind) String() string {
	switch k {
	case NodeAbsent:
		return "absent"
	case NodeSourceFile:
		return "source_file"
	case NodeFuncDecl:
		return "func_decl"
	case NodeParam:
		return "param"
	case NodeParamList:
		return "param_list"
	case NodeArgList:
		return "arg_list"
	case NodeVarDecl:
		return "var_decl"
	case NodeLetStmt:
		return "let_stmt"
	case NodeBlock:
		return "block"
	case NodeReturnStmt:
		return "return_stmt"
	case NodeIfStmt:
		return "if_stmt"
	case NodeWhileStmt:
		return "while_stmt"
	case NodeExprStmt:
		return "expr_stmt"
	case NodeIdentifier:
		return "identifier"
	case NodeCallExpr:
		return "call_expr"
	case NodeFieldExpr:
		return "field_expr"
	case NodeBinaryExpr:
		return "binary_expr"
	case NodeUnaryExpr:
		return "unary_expr"
	case NodeIntLiteral:
		return "int_literal"
	case NodeFloatLiteral:
		return "float_literal"
	case NodeBoolLiteral:
		return "bool_literal"
	case NodeStringLiteral:
		return "string_literal"
	case NodeTypeName:
		return "type_name"
	case NodeStructDecl:
		return "struct_decl"
	case NodeStructField:
		return "struct_field"
	case NodeEnumDecl:
		return "enum_decl"
	case NodeEnumVariant:
		return "enum_variant"
	case NodeTypeAliasDecl:
		return "type_alias_decl"
	case NodeImportDecl:
		return "import_decl"
	default:
		return "unknown"
	}
}

// ScopeKind enumerates the closed set of lexical scope shapes.
type ScopeKind uint8

const (
	ScopeGlobal ScopeKind = iota
	ScopeModule
	ScopeFunction
	ScopeBlock
	ScopeStructBody
	ScopeEnumBody
)

// DeclKind enumerates the closed set of declaration kinds.
type DeclKind uint8

const (
	DeclVariable DeclKind = iota
	DeclFunction
	DeclParameter
	DeclTypeAlias
	DeclStruct
	DeclEnum
)

// Visibility enumerates the closed set of declaration visibilities.
type Visibility uint8

const (
	VisibilityPrivate Visibility = iota
	VisibilityModuleLocal
	VisibilityPublic
)

// Severity enumerates diagnostic severities.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// DiagnosticCode enumerates the closed set of diagnostic codes the
// storage engine itself can attach (resolvers/inference attach their own
// codes through the same Diagnostic shape but are out of this spec's
// scope).
type DiagnosticCode uint16

const (
	DiagUnknown DiagnosticCode = iota
	DiagDuplicateDeclaration
)

// Span is a byte-and-line/column source range. Spans are carried on
// tokens and derived for nodes from their first/last token; they never
// participate in a CID.
type Span struct {
	ByteStart int
	ByteEnd   int
	Line      int
	Column    int
}

// Token is one lexical unit. Ident/literal tokens carry a StringId for
// their text; all other tokens carry ids.InvalidString.
type Token struct {
	Kind     TokenKind
	Text     ids.StringId
	SpanData Span
}

// AstNode is one syntax-tree node. Children are a contiguous slice of the
// unit's shared edges array: edges[ChildLo:ChildHi].
//
// Invariant: ChildLo <= ChildHi, and every id in that slice is < the
// unit's node count.
type AstNode struct {
	Kind       NodeKind
	FirstToken ids.TokenId
	LastToken  ids.TokenId
	ChildLo    ids.EdgeIndex
	ChildHi    ids.EdgeIndex
}

// Scope is one lexical scope. Parent pointers form a forest rooted at the
// global scope; ids.InvalidScope marks "no parent" (i.e. this is a root).
type Scope struct {
	Parent ids.ScopeId
	Kind   ScopeKind
}

// Decl is one named declaration.
type Decl struct {
	Node         ids.NodeId
	Name         ids.StringId
	Scope        ids.ScopeId
	Kind         DeclKind
	DeclaredType ids.StringId // canonical type designator text, or ids.InvalidString
	Visibility   Visibility
}

// Ref is one name-use edge produced by a resolution pass and attached to
// the snapshot after construction (resolution is out of this spec's
// scope; the shape it writes into is not).
type Ref struct {
	From ids.NodeId
	Name ids.StringId
	To   ids.DeclId
}

// Diagnostic is one attached diagnostic record.
type Diagnostic struct {
	Severity Severity
	Code     DiagnosticCode
	Message  ids.StringId
	SpanData Span
}
