package differ

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/janus-lang/astdb/internal/ids"
	"github.com/janus-lang/astdb/internal/snapshot"
)

func ident(t *testing.T, b *snapshot.Builder, text string) ids.NodeId {
	t.Helper()
	strID := b.Interner().InternString(text)
	tok, err := b.AddToken(snapshot.TokenIdentifier, strID, snapshot.Span{})
	require.NoError(t, err)
	node, err := b.AddNode(snapshot.NodeIdentifier, tok, tok, nil)
	require.NoError(t, err)
	return node
}

func typeName(t *testing.T, b *snapshot.Builder, text string) ids.NodeId {
	t.Helper()
	strID := b.Interner().InternString(text)
	tok, err := b.AddToken(snapshot.TokenIdentifier, strID, snapshot.Span{})
	require.NoError(t, err)
	node, err := b.AddNode(snapshot.NodeTypeName, tok, tok, nil)
	require.NoError(t, err)
	return node
}

func absent(t *testing.T, b *snapshot.Builder) ids.NodeId {
	t.Helper()
	node, err := b.AddNode(snapshot.NodeAbsent, ids.InvalidToken, ids.InvalidToken, nil)
	require.NoError(t, err)
	return node
}

// buildFunc constructs `func <name>(x: i32) <body literal>` at global scope
// and registers it as a DeclFunction, returning the sealed snapshot.
func buildFunc(t *testing.T, name string) *snapshot.Snapshot {
	t.Helper()
	b := snapshot.NewSnapshot("f.janus")

	global, err := b.AddScope(ids.InvalidScope, snapshot.ScopeGlobal)
	require.NoError(t, err)

	paramName := ident(t, b, "x")
	paramType := typeName(t, b, "i32")
	paramTok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	param, err := b.AddNode(snapshot.NodeParam, paramTok, paramTok, []ids.NodeId{paramName, paramType})
	require.NoError(t, err)

	paramListTok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	paramList, err := b.AddNode(snapshot.NodeParamList, paramListTok, paramListTok, []ids.NodeId{param})
	require.NoError(t, err)

	retAbsent := absent(t, b)

	litStr := b.Interner().InternString("0")
	litTok, err := b.AddToken(snapshot.TokenIntLiteral, litStr, snapshot.Span{})
	require.NoError(t, err)
	lit, err := b.AddNode(snapshot.NodeIntLiteral, litTok, litTok, nil)
	require.NoError(t, err)

	retTok, _ := b.AddToken(snapshot.TokenKeyword, ids.InvalidString, snapshot.Span{})
	retStmt, err := b.AddNode(snapshot.NodeReturnStmt, retTok, retTok, []ids.NodeId{lit})
	require.NoError(t, err)

	blockTok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	body, err := b.AddNode(snapshot.NodeBlock, blockTok, blockTok, []ids.NodeId{retStmt})
	require.NoError(t, err)

	fnName := ident(t, b, name)
	fnTok, _ := b.AddToken(snapshot.TokenKeyword, ids.InvalidString, snapshot.Span{})
	fn, err := b.AddNode(snapshot.NodeFuncDecl, fnTok, fnTok, []ids.NodeId{fnName, paramList, retAbsent, body})
	require.NoError(t, err)

	fnNameStr := b.Interner().InternString(name)
	_, err = b.AddDecl(fn, fnNameStr, global, snapshot.DeclFunction, snapshot.VisibilityPublic, ids.InvalidString)
	require.NoError(t, err)

	snap, err := b.Seal()
	require.NoError(t, err)
	return snap
}

// buildFuncDistinctBody rebuilds the same function but with a different
// literal body, forcing the return_stmt/block/int_literal CIDs to differ
// while the param_list and absent-return-type stay byte-identical.
func buildFuncDistinctBody(t *testing.T, name string, literalText string) *snapshot.Snapshot {
	t.Helper()
	b := snapshot.NewSnapshot("f.janus")

	global, err := b.AddScope(ids.InvalidScope, snapshot.ScopeGlobal)
	require.NoError(t, err)

	paramName := ident(t, b, "x")
	paramType := typeName(t, b, "i32")
	paramTok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	param, err := b.AddNode(snapshot.NodeParam, paramTok, paramTok, []ids.NodeId{paramName, paramType})
	require.NoError(t, err)

	paramListTok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	paramList, err := b.AddNode(snapshot.NodeParamList, paramListTok, paramListTok, []ids.NodeId{param})
	require.NoError(t, err)

	retAbsent := absent(t, b)

	litStr := b.Interner().InternString(literalText)
	litTok, err := b.AddToken(snapshot.TokenIntLiteral, litStr, snapshot.Span{})
	require.NoError(t, err)
	lit, err := b.AddNode(snapshot.NodeIntLiteral, litTok, litTok, nil)
	require.NoError(t, err)

	retTok, _ := b.AddToken(snapshot.TokenKeyword, ids.InvalidString, snapshot.Span{})
	retStmt, err := b.AddNode(snapshot.NodeReturnStmt, retTok, retTok, []ids.NodeId{lit})
	require.NoError(t, err)

	blockTok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	body, err := b.AddNode(snapshot.NodeBlock, blockTok, blockTok, []ids.NodeId{retStmt})
	require.NoError(t, err)

	fnName := ident(t, b, name)
	fnTok, _ := b.AddToken(snapshot.TokenKeyword, ids.InvalidString, snapshot.Span{})
	fn, err := b.AddNode(snapshot.NodeFuncDecl, fnTok, fnTok, []ids.NodeId{fnName, paramList, retAbsent, body})
	require.NoError(t, err)

	fnNameStr := b.Interner().InternString(name)
	_, err = b.AddDecl(fn, fnNameStr, global, snapshot.DeclFunction, snapshot.VisibilityPublic, ids.InvalidString)
	require.NoError(t, err)

	snap, err := b.Seal()
	require.NoError(t, err)
	return snap
}

// buildFuncExtraStmtBody rebuilds the function with an extra statement
// appended to the body block, forcing a body-shape change that is not a
// single literal edit.
func buildFuncExtraStmtBody(t *testing.T, name string) *snapshot.Snapshot {
	t.Helper()
	b := snapshot.NewSnapshot("f.janus")

	global, err := b.AddScope(ids.InvalidScope, snapshot.ScopeGlobal)
	require.NoError(t, err)

	paramName := ident(t, b, "x")
	paramType := typeName(t, b, "i32")
	paramTok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	param, err := b.AddNode(snapshot.NodeParam, paramTok, paramTok, []ids.NodeId{paramName, paramType})
	require.NoError(t, err)

	paramListTok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	paramList, err := b.AddNode(snapshot.NodeParamList, paramListTok, paramListTok, []ids.NodeId{param})
	require.NoError(t, err)

	retAbsent := absent(t, b)

	exprStmtTok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	extraStmt, err := b.AddNode(snapshot.NodeExprStmt, exprStmtTok, exprStmtTok, []ids.NodeId{ident(t, b, "x")})
	require.NoError(t, err)

	litStr := b.Interner().InternString("0")
	litTok, err := b.AddToken(snapshot.TokenIntLiteral, litStr, snapshot.Span{})
	require.NoError(t, err)
	lit, err := b.AddNode(snapshot.NodeIntLiteral, litTok, litTok, nil)
	require.NoError(t, err)

	retTok, _ := b.AddToken(snapshot.TokenKeyword, ids.InvalidString, snapshot.Span{})
	retStmt, err := b.AddNode(snapshot.NodeReturnStmt, retTok, retTok, []ids.NodeId{lit})
	require.NoError(t, err)

	blockTok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	body, err := b.AddNode(snapshot.NodeBlock, blockTok, blockTok, []ids.NodeId{extraStmt, retStmt})
	require.NoError(t, err)

	fnName := ident(t, b, name)
	fnTok, _ := b.AddToken(snapshot.TokenKeyword, ids.InvalidString, snapshot.Span{})
	fn, err := b.AddNode(snapshot.NodeFuncDecl, fnTok, fnTok, []ids.NodeId{fnName, paramList, retAbsent, body})
	require.NoError(t, err)

	fnNameStr := b.Interner().InternString(name)
	_, err = b.AddDecl(fn, fnNameStr, global, snapshot.DeclFunction, snapshot.VisibilityPublic, ids.InvalidString)
	require.NoError(t, err)

	snap, err := b.Seal()
	require.NoError(t, err)
	return snap
}

// buildFuncExtraParam rebuilds the function with a second parameter,
// forcing a SignatureChange.
func buildFuncExtraParam(t *testing.T, name string) *snapshot.Snapshot {
	t.Helper()
	b := snapshot.NewSnapshot("f.janus")

	global, err := b.AddScope(ids.InvalidScope, snapshot.ScopeGlobal)
	require.NoError(t, err)

	p1Name := ident(t, b, "x")
	p1Type := typeName(t, b, "i32")
	p1Tok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	p1, err := b.AddNode(snapshot.NodeParam, p1Tok, p1Tok, []ids.NodeId{p1Name, p1Type})
	require.NoError(t, err)

	p2Name := ident(t, b, "y")
	p2Type := typeName(t, b, "i32")
	p2Tok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	p2, err := b.AddNode(snapshot.NodeParam, p2Tok, p2Tok, []ids.NodeId{p2Name, p2Type})
	require.NoError(t, err)

	paramListTok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	paramList, err := b.AddNode(snapshot.NodeParamList, paramListTok, paramListTok, []ids.NodeId{p1, p2})
	require.NoError(t, err)

	retAbsent := absent(t, b)

	litStr := b.Interner().InternString("0")
	litTok, err := b.AddToken(snapshot.TokenIntLiteral, litStr, snapshot.Span{})
	require.NoError(t, err)
	lit, err := b.AddNode(snapshot.NodeIntLiteral, litTok, litTok, nil)
	require.NoError(t, err)

	retTok, _ := b.AddToken(snapshot.TokenKeyword, ids.InvalidString, snapshot.Span{})
	retStmt, err := b.AddNode(snapshot.NodeReturnStmt, retTok, retTok, []ids.NodeId{lit})
	require.NoError(t, err)

	blockTok, _ := b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	body, err := b.AddNode(snapshot.NodeBlock, blockTok, blockTok, []ids.NodeId{retStmt})
	require.NoError(t, err)

	fnName := ident(t, b, name)
	fnTok, _ := b.AddToken(snapshot.TokenKeyword, ids.InvalidString, snapshot.Span{})
	fn, err := b.AddNode(snapshot.NodeFuncDecl, fnTok, fnTok, []ids.NodeId{fnName, paramList, retAbsent, body})
	require.NoError(t, err)

	fnNameStr := b.Interner().InternString(name)
	_, err = b.AddDecl(fn, fnNameStr, global, snapshot.DeclFunction, snapshot.VisibilityPublic, ids.InvalidString)
	require.NoError(t, err)

	snap, err := b.Seal()
	require.NoError(t, err)
	return snap
}

func TestDiffIdenticalSnapshotsIsEmpty(t *testing.T) {
	a := buildFunc(t, "add")
	b := buildFunc(t, "add")

	changes, delta, allItems, err := Diff(a, 0, b, 0)
	require.NoError(t, err)
	require.Empty(t, changes)
	require.Empty(t, delta)
	require.Equal(t, []string{"add"}, allItems)
}

func TestDiffLiteralChangeOnLiteralBody(t *testing.T) {
	a := buildFuncDistinctBody(t, "add", "1")
	b := buildFuncDistinctBody(t, "add", "2")

	changes, delta, _, err := Diff(a, 0, b, 0)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, LiteralChange, changes[0].Kind)
	require.Equal(t, "1", changes[0].Detail["from"])
	require.Equal(t, "2", changes[0].Detail["to"])
	require.NotEmpty(t, delta)
	require.NotNil(t, changes[0].OldCID)
	require.NotNil(t, changes[0].NewCID)
	require.False(t, changes[0].OldCID.Equal(*changes[0].NewCID))
}

func TestDiffImplementationChangeOnReshapedBody(t *testing.T) {
	a := buildFunc(t, "add")
	b := buildFuncExtraStmtBody(t, "add")

	changes, delta, _, err := Diff(a, 0, b, 0)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, ImplementationChange, changes[0].Kind)
	require.NotEmpty(t, delta)
}

func TestDiffSignatureChangeOnExtraParam(t *testing.T) {
	a := buildFunc(t, "add")
	b := buildFuncExtraParam(t, "add")

	changes, _, _, err := Diff(a, 0, b, 0)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, SignatureChange, changes[0].Kind)
}

func TestDiffAddAndRemoveDecl(t *testing.T) {
	a := buildFunc(t, "add")
	b := buildFunc(t, "sub")

	changes, _, allItems, err := Diff(a, 0, b, 0)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	var kinds []Kind
	for _, c := range changes {
		kinds = append(kinds, c.Kind)
	}
	require.Contains(t, kinds, AddDecl)
	require.Contains(t, kinds, RemoveDecl)
	require.ElementsMatch(t, []string{"add", "sub"}, allItems)
}

func TestBuildReportListsUnchangedAndChanged(t *testing.T) {
	a := buildFunc(t, "add")
	b := buildFuncExtraParam(t, "add")

	changes, _, allItems, err := Diff(a, 0, b, 0)
	require.NoError(t, err)

	report := BuildReport(changes, allItems, 3)
	require.Len(t, report.Changed, 1)
	require.Equal(t, SignatureChange, report.Changed[0].Kind)
	require.Empty(t, report.Unchanged)
	require.Equal(t, 3, report.InvalidatedQueries)

	j, err := report.JSON()
	require.NoError(t, err)
	require.Contains(t, string(j), "SignatureChange")

	table := report.Table()
	require.Contains(t, table, "add")
	require.Contains(t, table, "1 changed, 0 unchanged, 3 queries invalidated")

	y, err := report.YAML()
	require.NoError(t, err)
	require.Contains(t, string(y), "SignatureChange")
	require.Contains(t, string(y), "invalidated_queries: 3")
}
