package cid

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/janus-lang/astdb/internal/ids"
	"github.com/janus-lang/astdb/internal/intern"
	"github.com/janus-lang/astdb/internal/snapshot"
)

// domainTag separates CID hashing from any other BLAKE3 usage that might
// one day share the hash function in this process.
var domainTag = []byte("janus-ast-cid-v1\x00")

// ToolchainOpts are mixed into every CID so that the same AST under
// different compilation options yields distinct identities.
type ToolchainOpts struct {
	ToolchainVersion uint32
	ProfileMask      uint32
	EffectMask       uint32
	Deterministic    bool
}

// bytes renders opts as a fixed 16-byte record: version, profile mask,
// effect mask, then a flag byte (only bit 0, "deterministic", is
// defined) followed by 3 bytes of padding.
func (o ToolchainOpts) bytes() [16]byte {
	var buf [16]byte
	binary.BigEndian.PutUint32(buf[0:4], o.ToolchainVersion)
	binary.BigEndian.PutUint32(buf[4:8], o.ProfileMask)
	binary.BigEndian.PutUint32(buf[8:12], o.EffectMask)
	if o.Deterministic {
		buf[12] = 1
	}
	return buf
}

// opCode is the fixed, versioned numbering for operator tokens mixed into
// a binary/unary expression's canonical payload. Never reorder these —
// doing so would change every existing CID for an operator expression.
var opCode = map[string]uint16{
	"+": 1, "-": 2, "*": 3, "/": 4, "%": 5,
	"==": 6, "!=": 7, "<": 8, "<=": 9, ">": 10, ">=": 11,
	"&&": 12, "||": 13, "!": 14,
	"&": 15, "|": 16, "^": 17, "<<": 18, ">>": 19,
	"=": 20,
}

// canonicalPayload computes the kind-specific payload bytes for node.
// It never reads source positions, token ids, or node ids.
func canonicalPayload(kind snapshot.NodeKind, nodeID ids.NodeId, u *snapshot.Unit, in *intern.Interner, declByNode map[ids.NodeId]snapshot.Decl) ([]byte, error) {
	switch kind {
	case snapshot.NodeIdentifier, snapshot.NodeStringLiteral:
		text, ok := u.TextOf(nodeID, in)
		if !ok {
			return nil, nil
		}
		return []byte(text), nil

	case snapshot.NodeIntLiteral:
		text, ok := u.TextOf(nodeID, in)
		if !ok {
			return nil, nil
		}
		return []byte(normalizeIntLiteral(text)), nil

	case snapshot.NodeFloatLiteral:
		text, ok := u.TextOf(nodeID, in)
		if !ok {
			return nil, nil
		}
		return []byte(normalizeFloatLiteral(text)), nil

	case snapshot.NodeBoolLiteral:
		text, ok := u.TextOf(nodeID, in)
		if !ok {
			return nil, nil
		}
		return []byte(strings.ToLower(text)), nil

	case snapshot.NodeBinaryExpr, snapshot.NodeUnaryExpr:
		text, ok := u.TextOf(nodeID, in)
		if !ok {
			return nil, fmt.Errorf("cid: operator node %d carries no operator text", nodeID)
		}
		code, ok := opCode[text]
		if !ok {
			return nil, fmt.Errorf("cid: unknown operator %q", text)
		}
		var buf [2]byte
		binary.BigEndian.PutUint16(buf[:], code)
		return buf[:], nil

	case snapshot.NodeTypeName:
		text, ok := u.TextOf(nodeID, in)
		if !ok {
			return nil, nil
		}
		return []byte(text), nil

	case snapshot.NodeFuncDecl, snapshot.NodeVarDecl, snapshot.NodeParam,
		snapshot.NodeStructDecl, snapshot.NodeStructField,
		snapshot.NodeEnumDecl, snapshot.NodeEnumVariant, snapshot.NodeTypeAliasDecl:
		decl, ok := declByNode[nodeID]
		if !ok {
			return nil, nil
		}
		name, _ := in.LookupString(decl.Name)
		flags := modifierFlags(decl)
		buf := make([]byte, len(name)+4)
		copy(buf, name)
		binary.BigEndian.PutUint32(buf[len(name):], flags)
		return buf, nil

	default:
		return nil, nil
	}
}

// modifierFlags packs a decl's visibility and kind into a stable u32.
// The Decl model here only carries visibility and kind, so only those
// bits are set; a richer model (mutability, inline, virtual, generic)
// would widen this without disturbing the bits already assigned.
func modifierFlags(d snapshot.Decl) uint32 {
	return uint32(d.Visibility) | uint32(d.Kind)<<8
}

// normalizeIntLiteral strips leading zeros (keeping a single "0" for the
// literal zero) so that "007" and "7" canonicalize identically.
func normalizeIntLiteral(text string) string {
	neg := strings.HasPrefix(text, "-")
	s := strings.TrimPrefix(text, "-")
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	if neg && s != "0" {
		return "-" + s
	}
	return s
}

// normalizeFloatLiteral unifies exponent case to lowercase 'e' and strips
// superfluous leading zeros from the integer part, leaving the mantissa
// and exponent digits otherwise untouched.
func normalizeFloatLiteral(text string) string {
	s := strings.ToLower(text)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, rest, hasDot := strings.Cut(s, ".")
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	var out string
	if hasDot {
		out = intPart + "." + rest
	} else {
		out = intPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
