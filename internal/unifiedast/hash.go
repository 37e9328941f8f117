package unifiedast

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// SubtreeHash is the 128-bit content-address used for cross-file subtree
// deduplication: a fast xxhash64 half for cheap comparison and shard
// routing, and a sha256-derived half for collision resistance once two
// subtrees' fast halves happen to collide.
type SubtreeHash struct {
	Fast uint64
	Slow uint64
}

// HashBytes computes the 128-bit content hash of a normalized token stream
// (produced by a language adapter for one subtree).
func HashBytes(b []byte) SubtreeHash {
	fast := xxhash.Sum64(b)
	full := sha256.Sum256(b)
	slow := binary.LittleEndian.Uint64(full[8:16])
	return SubtreeHash{Fast: fast, Slow: slow}
}

// Combine folds a child subtree's hash into a running parent hash, so a
// parent's hash reflects its children without rehashing their full byte
// ranges. Order-sensitive: swapping two children's positions changes the
// parent's hash, which is required for structural (not just set-based)
// equality.
func Combine(parent SubtreeHash, child SubtreeHash) SubtreeHash {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:8], parent.Fast)
	binary.LittleEndian.PutUint64(buf[8:16], parent.Slow)
	binary.LittleEndian.PutUint64(buf[16:24], child.Fast)
	binary.LittleEndian.PutUint64(buf[24:32], child.Slow)
	return HashBytes(buf[:])
}
