package unifiedast

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrFinalized is returned by any mutating call made after Finalize.
var ErrFinalized = errors.New("unifiedast: node store is finalized")

// NodeStore is a single file's (or, after Merge, a whole project's) unified
// AST: a dense columnar array of Node, one entry per tree position. Every
// position gets its own Node — parent/child/sibling links are positional
// pointers into this same slice, so they have to stay stable once
// published, which rules out collapsing identical subtrees into a shared
// slot. Content identity instead lives in a side index, hashIndex, that
// groups every occurrence of an identical subtree by its 128-bit hash;
// that grouping is exactly the input the duplicate-code analyzer needs.
// One writer builds a store via InsertBatch calls, then calls Finalize;
// after that every further mutation is rejected so concurrent analyzer
// reads never race a writer.
type NodeStore struct {
	nodes      []Node
	generation atomic.Uint64
	finalized  atomic.Bool

	// hashIndex maps a subtree's 128-bit hash to every node index that
	// hashed to it. A hash with more than one index is a verbatim
	// duplicate subtree — see DuplicateGroups.
	hashIndex map[SubtreeHash][]int32
}

// NewNodeStore creates an empty, writable store. Slot 0 is reserved and
// permanently empty so NoIndex (0) never aliases a real node.
func NewNodeStore() *NodeStore {
	return &NodeStore{
		nodes:     make([]Node, 1, 256), // nodes[0] is the reserved null slot
		hashIndex: make(map[SubtreeHash][]int32, 256),
	}
}

// Len returns the number of nodes held, excluding the reserved null slot.
func (s *NodeStore) Len() int { return len(s.nodes) - 1 }

// GetNode returns the node at idx. idx must be in 1..Len(); callers that walk
// via FirstChildIdx/NextSiblingIdx never see an out-of-range index because
// Insert only ever returns indices into this same slice.
func (s *NodeStore) GetNode(idx uint32) (Node, bool) {
	if idx == NoIndex || int(idx) >= len(s.nodes) {
		return Node{}, false
	}
	return s.nodes[idx], true
}

// Children returns the index of every direct child of idx, walking the
// sibling chain from FirstChildIdx.
func (s *NodeStore) Children(idx uint32) []uint32 {
	n, ok := s.GetNode(idx)
	if !ok || n.FirstChildIdx == NoIndex {
		return nil
	}

	var out []uint32
	cur := n.FirstChildIdx
	for cur != NoIndex {
		out = append(out, cur)
		child, ok := s.GetNode(cur)
		if !ok {
			break
		}
		cur = child.NextSiblingIdx
	}
	return out
}

// SubtreeHashAt returns the 128-bit content hash recorded for idx.
func (s *NodeStore) SubtreeHashAt(idx uint32) (SubtreeHash, bool) {
	n, ok := s.GetNode(idx)
	if !ok {
		return SubtreeHash{}, false
	}
	return SubtreeHash{Fast: n.HashFast, Slow: n.HashSlow}, true
}

// Insert appends a node and records it under hash in the duplicate index,
// returning its index. Every call appends a new Node, even if an
// identical subtree was already inserted — positions carry their own
// parent/child/sibling links, which a reused slot couldn't represent for
// more than one occurrence at a time. Callers that want dedup semantics
// use DuplicateGroups, not Insert's return value.
func (s *NodeStore) Insert(n Node, hash SubtreeHash) (uint32, error) {
	if s.finalized.Load() {
		return 0, ErrFinalized
	}

	n.HashFast = hash.Fast
	n.HashSlow = hash.Slow
	n.Generation = s.generation.Load()
	// Zero-value ParentIdx/FirstChildIdx/NextSiblingIdx already equal
	// NoIndex (0) by construction — no defaulting needed, since slot 0
	// is reserved and never a real node's index.

	idx := int32(len(s.nodes))
	s.nodes = append(s.nodes, n)
	s.hashIndex[hash] = append(s.hashIndex[hash], idx)
	return uint32(idx), nil
}

// Reserve appends a placeholder node and returns its index. A language
// adapter building a tree top-down knows a node's own index before it
// knows that node's children (their FirstChildIdx) or, for a child before
// its later siblings are visited, their NextSiblingIdx — Reserve hands out
// the stable index up front so those links can point at it, and Fill
// supplies the real content once every link is known.
func (s *NodeStore) Reserve() (uint32, error) {
	if s.finalized.Load() {
		return 0, ErrFinalized
	}
	idx := int32(len(s.nodes))
	s.nodes = append(s.nodes, Node{})
	return uint32(idx), nil
}

// Fill writes n into a slot previously returned by Reserve and records it
// under hash in the duplicate index. It is the only operation that
// changes an already-published index's contents, and it is safe only
// because nothing can have read a Reserve'd-but-not-yet-Filled slot from
// outside the same single-writer build pass.
func (s *NodeStore) Fill(idx uint32, n Node, hash SubtreeHash) error {
	if s.finalized.Load() {
		return ErrFinalized
	}
	if idx == NoIndex || int(idx) >= len(s.nodes) {
		return fmt.Errorf("unifiedast: Fill: index %d out of range", idx)
	}

	n.HashFast = hash.Fast
	n.HashSlow = hash.Slow
	n.Generation = s.generation.Load()
	s.nodes[idx] = n
	s.hashIndex[hash] = append(s.hashIndex[hash], int32(idx))
	return nil
}

// DuplicateGroups returns, for every subtree hash seen more than once,
// every node index that hashed to it — the raw candidate set for exact
// duplicate-code detection (distinct from the duplicate analyzer's
// near-duplicate pass, which compares stemmed token text by Jaro-Winkler
// similarity; no MinHash/LSH index is built).
func (s *NodeStore) DuplicateGroups() map[SubtreeHash][]uint32 {
	out := make(map[SubtreeHash][]uint32, len(s.hashIndex))
	for hash, idxs := range s.hashIndex {
		if len(idxs) < 2 {
			continue
		}
		conv := make([]uint32, len(idxs))
		for i, v := range idxs {
			conv[i] = uint32(v)
		}
		out[hash] = conv
	}
	return out
}

// InsertBatch inserts nodes in bulk, bumping the generation counter once
// for the whole batch — readers mid-walk see either the old generation's
// nodes or the new one's, never a half-written mix, because appends never
// mutate already-published slice elements (Go slice growth copies, it
// never edits in place once a caller holds an earlier Node value by copy).
func (s *NodeStore) InsertBatch(batch []struct {
	Node Node
	Hash SubtreeHash
}) ([]uint32, error) {
	if s.finalized.Load() {
		return nil, ErrFinalized
	}

	s.generation.Add(1)
	indices := make([]uint32, len(batch))
	for i, item := range batch {
		idx, err := s.Insert(item.Node, item.Hash)
		if err != nil {
			return nil, err
		}
		indices[i] = idx
	}
	return indices, nil
}

// Finalize locks the store against further mutation. Idempotent.
func (s *NodeStore) Finalize() {
	s.finalized.Store(true)
}

// IsFinalized reports whether Finalize has been called.
func (s *NodeStore) IsFinalized() bool {
	return s.finalized.Load()
}

// Generation returns the current write generation, incremented by each
// InsertBatch call. Used to detect "this cached result predates a later
// edit" without re-hashing the whole tree.
func (s *NodeStore) Generation() uint64 {
	return s.generation.Load()
}

// MemoryBytes estimates the store's in-memory footprint: 64 bytes per
// node plus the hash index's bookkeeping.
func (s *NodeStore) MemoryBytes() int64 {
	const nodeSize = 64
	const hashEntryOverhead = 48 // map bucket + SubtreeHash key + int32 slice header, approximate
	return int64(len(s.nodes))*nodeSize + int64(len(s.hashIndex))*hashEntryOverhead
}
