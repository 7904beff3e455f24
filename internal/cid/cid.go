// Package cid computes the content-address ("CID") of ASTDB nodes: a
// 32-byte BLAKE3-256 digest that is sensitive to every byte of a node's
// semantic content and the toolchain options that would alter downstream
// semantics, but invariant under whitespace, comments, and source
// position changes.
//
// It trades a short base36 id scheme for a full 32-byte content hash,
// and uses BLAKE3-256 rather than SHA-256 for speed at this data volume.
package cid

import (
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// Size is the length in bytes of a CID.
const Size = 32

// CID is a 32-byte BLAKE3-256 content identifier. The zero value
// represents "no identity computed" and is never returned for a real
// node.
type CID [Size]byte

// Zero is the zero CID, used as a sentinel for "not computed".
var Zero CID

// IsZero reports whether c is the zero CID.
func (c CID) IsZero() bool { return c == Zero }

// Equal reports whether two CIDs are byte-identical.
func (c CID) Equal(other CID) bool { return c == other }

// Hex renders c as 64 lowercase hex characters.
func (c CID) Hex() string { return hex.EncodeToString(c[:]) }

// String implements fmt.Stringer via Hex, so CIDs print readably in logs
// and test failures.
func (c CID) String() string { return c.Hex() }

// ParseHex decodes a 64-character lowercase hex string into a CID.
func ParseHex(s string) (CID, error) {
	if len(s) != Size*2 {
		return Zero, fmt.Errorf("cid: hex string must be %d characters, got %d", Size*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Zero, fmt.Errorf("cid: invalid hex: %w", err)
	}
	var out CID
	copy(out[:], b)
	return out, nil
}

// hashBytes computes the BLAKE3-256 digest of buf.
func hashBytes(buf []byte) CID {
	return CID(blake3.Sum256(buf))
}
