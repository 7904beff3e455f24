package cid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/janus-lang/astdb/internal/ids"
	"github.com/janus-lang/astdb/internal/snapshot"
)

var testOpts = ToolchainOpts{ToolchainVersion: 1, Deterministic: true}

// buildIntLiteral builds a one-unit snapshot containing a single integer
// literal node whose text is text, at the given source column (so callers
// can vary position without varying meaning).
func buildIntLiteral(t *testing.T, text string, column int) (*snapshot.Snapshot, ids.NodeId) {
	t.Helper()
	b := snapshot.NewSnapshot("lit.janus")
	strID := b.Interner().InternString(text)
	tok, err := b.AddToken(snapshot.TokenIntLiteral, strID, snapshot.Span{Column: column})
	require.NoError(t, err)
	node, err := b.AddNode(snapshot.NodeIntLiteral, tok, tok, nil)
	require.NoError(t, err)
	snap, err := b.Seal()
	require.NoError(t, err)
	return snap, node
}

func TestHexRoundTrip(t *testing.T) {
	snap, node := buildIntLiteral(t, "42", 0)
	c := NewCache()
	got, err := c.Of(snap, 0, node, testOpts)
	require.NoError(t, err)

	hex := got.Hex()
	require.Len(t, hex, 64)

	back, err := ParseHex(hex)
	require.NoError(t, err)
	require.Equal(t, got, back)
}

func TestCIDInvariantUnderPositionChange(t *testing.T) {
	snapA, nodeA := buildIntLiteral(t, "42", 0)
	snapB, nodeB := buildIntLiteral(t, "42", 17)

	c := NewCache()
	cidA, err := c.Of(snapA, 0, nodeA, testOpts)
	require.NoError(t, err)
	cidB, err := c.Of(snapB, 0, nodeB, testOpts)
	require.NoError(t, err)

	require.Equal(t, cidA, cidB)
}

func TestCIDChangesWithLiteralValue(t *testing.T) {
	snapA, nodeA := buildIntLiteral(t, "41", 0)
	snapB, nodeB := buildIntLiteral(t, "42", 0)

	c := NewCache()
	cidA, _ := c.Of(snapA, 0, nodeA, testOpts)
	cidB, _ := c.Of(snapB, 0, nodeB, testOpts)

	require.NotEqual(t, cidA, cidB)
}

func TestIntLiteralNormalization(t *testing.T) {
	snapA, nodeA := buildIntLiteral(t, "007", 0)
	snapB, nodeB := buildIntLiteral(t, "7", 0)

	c := NewCache()
	cidA, err := c.Of(snapA, 0, nodeA, testOpts)
	require.NoError(t, err)
	cidB, err := c.Of(snapB, 0, nodeB, testOpts)
	require.NoError(t, err)

	require.Equal(t, cidA, cidB)
}

func TestToolchainOptsAreMixedIn(t *testing.T) {
	snap, node := buildIntLiteral(t, "42", 0)
	c := NewCache()

	a, err := c.Of(snap, 0, node, ToolchainOpts{ToolchainVersion: 1})
	require.NoError(t, err)
	b, err := c.Of(snap, 0, node, ToolchainOpts{ToolchainVersion: 2})
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestSameKeyIsCacheHitOnSecondRun(t *testing.T) {
	snap, node := buildIntLiteral(t, "42", 0)
	c := NewCache()

	first, err := c.Of(snap, 0, node, testOpts)
	require.NoError(t, err)
	second, err := c.Of(snap, 0, node, testOpts)
	require.NoError(t, err)

	require.Equal(t, first, second)
	stats := c.Stats()
	require.Equal(t, int64(1), stats.Misses)
	require.Equal(t, int64(1), stats.Hits)
}

func TestAncestorCIDChangesWhenChildChanges(t *testing.T) {
	build := func(rhs string) (*snapshot.Snapshot, ids.NodeId, ids.NodeId) {
		b := snapshot.NewSnapshot("binop.janus")
		in := b.Interner()

		lhsStr := in.InternString("1")
		lhsTok, _ := b.AddToken(snapshot.TokenIntLiteral, lhsStr, snapshot.Span{})
		lhsNode, _ := b.AddNode(snapshot.NodeIntLiteral, lhsTok, lhsTok, nil)

		rhsStr := in.InternString(rhs)
		rhsTok, _ := b.AddToken(snapshot.TokenIntLiteral, rhsStr, snapshot.Span{})
		rhsNode, _ := b.AddNode(snapshot.NodeIntLiteral, rhsTok, rhsTok, nil)

		opStr := in.InternString("+")
		opTok, _ := b.AddToken(snapshot.TokenPunctuation, opStr, snapshot.Span{})
		opNode, err := b.AddNode(snapshot.NodeBinaryExpr, opTok, opTok, []ids.NodeId{lhsNode, rhsNode})
		require.NoError(t, err)

		snap, err := b.Seal()
		require.NoError(t, err)
		return snap, opNode, rhsNode
	}

	snapA, opA, _ := build("41")
	snapB, opB, _ := build("42")

	c := NewCache()
	cidOpA, err := c.Of(snapA, 0, opA, testOpts)
	require.NoError(t, err)
	cidOpB, err := c.Of(snapB, 0, opB, testOpts)
	require.NoError(t, err)

	require.NotEqual(t, cidOpA, cidOpB, "ancestor CID must change when a child literal changes")
}
