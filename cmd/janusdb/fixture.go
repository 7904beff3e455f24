package main

import (
	"github.com/janus-lang/astdb/internal/ids"
	"github.com/janus-lang/astdb/internal/snapshot"
)

// fixtureOpts controls the small variations buildFixture can introduce,
// so the diff command can build two related-but-different snapshots
// without a second, diverging code path.
type fixtureOpts struct {
	secondParam  bool
	literalText  string
	functionName string
}

func defaultFixtureOpts() fixtureOpts {
	return fixtureOpts{literalText: "0", functionName: "add"}
}

// buildFixture constructs a single compilation unit with:
//
//	func add(x: i32) { return 0 }
//	let pi = 0
//
// just enough AST shape to exercise accessor, cid, query, and differ.
func buildFixture(opts fixtureOpts) (*snapshot.Snapshot, error) {
	b := snapshot.NewSnapshot("fixture.janus")
	in := b.Interner()

	global, err := b.AddScope(ids.InvalidScope, snapshot.ScopeGlobal)
	if err != nil {
		return nil, err
	}

	identNode := func(text string) (ids.NodeId, error) {
		tok, err := b.AddToken(snapshot.TokenIdentifier, in.InternString(text), snapshot.Span{})
		if err != nil {
			return ids.InvalidNode, err
		}
		return b.AddNode(snapshot.NodeIdentifier, tok, tok, nil)
	}
	typeNode := func(text string) (ids.NodeId, error) {
		tok, err := b.AddToken(snapshot.TokenIdentifier, in.InternString(text), snapshot.Span{})
		if err != nil {
			return ids.InvalidNode, err
		}
		return b.AddNode(snapshot.NodeTypeName, tok, tok, nil)
	}
	punct := func() (ids.TokenId, error) {
		return b.AddToken(snapshot.TokenPunctuation, ids.InvalidString, snapshot.Span{})
	}

	paramName, err := identNode("x")
	if err != nil {
		return nil, err
	}
	paramType, err := typeNode("i32")
	if err != nil {
		return nil, err
	}
	paramTok, err := punct()
	if err != nil {
		return nil, err
	}
	param, err := b.AddNode(snapshot.NodeParam, paramTok, paramTok, []ids.NodeId{paramName, paramType})
	if err != nil {
		return nil, err
	}

	params := []ids.NodeId{param}
	if opts.secondParam {
		p2Name, err := identNode("y")
		if err != nil {
			return nil, err
		}
		p2Type, err := typeNode("i32")
		if err != nil {
			return nil, err
		}
		p2Tok, err := punct()
		if err != nil {
			return nil, err
		}
		p2, err := b.AddNode(snapshot.NodeParam, p2Tok, p2Tok, []ids.NodeId{p2Name, p2Type})
		if err != nil {
			return nil, err
		}
		params = append(params, p2)
	}

	paramListTok, err := punct()
	if err != nil {
		return nil, err
	}
	paramList, err := b.AddNode(snapshot.NodeParamList, paramListTok, paramListTok, params)
	if err != nil {
		return nil, err
	}

	retAbsent, err := b.AddNode(snapshot.NodeAbsent, ids.InvalidToken, ids.InvalidToken, nil)
	if err != nil {
		return nil, err
	}

	litTok, err := b.AddToken(snapshot.TokenIntLiteral, in.InternString(opts.literalText), snapshot.Span{})
	if err != nil {
		return nil, err
	}
	lit, err := b.AddNode(snapshot.NodeIntLiteral, litTok, litTok, nil)
	if err != nil {
		return nil, err
	}

	retTok, err := punct()
	if err != nil {
		return nil, err
	}
	retStmt, err := b.AddNode(snapshot.NodeReturnStmt, retTok, retTok, []ids.NodeId{lit})
	if err != nil {
		return nil, err
	}

	blockTok, err := punct()
	if err != nil {
		return nil, err
	}
	body, err := b.AddNode(snapshot.NodeBlock, blockTok, blockTok, []ids.NodeId{retStmt})
	if err != nil {
		return nil, err
	}

	fnName, err := identNode(opts.functionName)
	if err != nil {
		return nil, err
	}
	fnTok, err := b.AddToken(snapshot.TokenKeyword, ids.InvalidString, snapshot.Span{})
	if err != nil {
		return nil, err
	}
	fn, err := b.AddNode(snapshot.NodeFuncDecl, fnTok, fnTok, []ids.NodeId{fnName, paramList, retAbsent, body})
	if err != nil {
		return nil, err
	}
	if _, err := b.AddDecl(fn, in.InternString(opts.functionName), global, snapshot.DeclFunction, snapshot.VisibilityPublic, ids.InvalidString); err != nil {
		return nil, err
	}

	piName, err := identNode("pi")
	if err != nil {
		return nil, err
	}
	piTypeAbsent, err := b.AddNode(snapshot.NodeAbsent, ids.InvalidToken, ids.InvalidToken, nil)
	if err != nil {
		return nil, err
	}
	piInitTok, err := b.AddToken(snapshot.TokenIntLiteral, in.InternString("0"), snapshot.Span{})
	if err != nil {
		return nil, err
	}
	piInit, err := b.AddNode(snapshot.NodeIntLiteral, piInitTok, piInitTok, nil)
	if err != nil {
		return nil, err
	}
	letTok, err := b.AddToken(snapshot.TokenKeyword, ids.InvalidString, snapshot.Span{})
	if err != nil {
		return nil, err
	}
	letStmt, err := b.AddNode(snapshot.NodeLetStmt, letTok, letTok, []ids.NodeId{piName, piTypeAbsent, piInit})
	if err != nil {
		return nil, err
	}
	if _, err := b.AddDecl(letStmt, in.InternString("pi"), global, snapshot.DeclVariable, snapshot.VisibilityModuleLocal, in.InternString("i32")); err != nil {
		return nil, err
	}

	return b.Seal()
}
