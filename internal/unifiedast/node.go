// Package unifiedast is the engine's single AST representation: every
// supported language parses down into the same columnar node store, so
// every analyzer above it (complexity, duplicate detection, dead code,
// dependency graph) walks one data structure regardless of source
// language. Node identity is positional (an index into NodeStore's
// columns), never a pointer — every tree position gets its own 64-byte
// record, and a side hash index groups byte-identical subtrees across
// positions for the duplicate-code analyzer without disturbing the
// per-position parent/child/sibling links.
package unifiedast

// NodeKind is a language-neutral classification of what a node represents.
// Analyzers branch on Kind, never on a language's raw grammar node name —
// that translation happens once, in the language adapter.
type NodeKind uint8

const (
	KindUnknown NodeKind = iota
	KindFile
	KindFunctionDecl
	KindMethodDecl
	KindClassDecl
	KindStructDecl
	KindInterfaceDecl
	KindIfStmt
	KindForStmt
	KindWhileStmt
	KindDoWhileStmt
	KindSwitchStmt
	KindCaseClause
	KindElseClause
	KindTernary
	KindBinaryExpr
	KindCallExpr
	KindBreakStmt
	KindContinueStmt
	KindCatchClause
	KindReturnStmt
	KindIdentifier
	KindLiteral
	KindComment
	KindImportDecl
	KindVarDecl
	KindBlock
	KindOther
)

// Flag bits packed into Node.Flags.
const (
	FlagNamed uint8 = 1 << iota
	FlagHasError
	FlagIsMissing
	FlagLogicalAndOr // binary_expression whose operator is &&/||/and/or
)

// Node is the fixed-size, cache-line-aligned record at the heart of the
// node store. Layout (3 uint64 + 6 uint32 + 2 uint8 + 14-byte pad) is
// exactly 64 bytes — verified by TestNodeSize in node_test.go, since the
// store relies on a dense, page-friendly columnar array rather than a
// pointer-chasing tree.
type Node struct {
	HashFast   uint64 // xxhash64 of the subtree's normalized token stream
	HashSlow   uint64 // sha256-derived half, combined with HashFast for a 128-bit subtree hash
	Generation uint64 // NodeStore generation this node was inserted under

	ParentIdx      uint32
	FirstChildIdx  uint32
	NextSiblingIdx uint32
	StartByte      uint32
	EndByte        uint32
	KindID         uint32 // NodeKind, widened to uint32 for alignment

	Lang  uint8
	Flags uint8

	_pad [14]byte
}

// NoIndex marks an absent parent/child/sibling link. NodeStore reserves
// index 0 as a permanently empty slot so that 0 can double as this
// sentinel — every real node lives at index >= 1.
const NoIndex uint32 = 0

// Kind returns the node's language-neutral classification.
func (n *Node) Kind() NodeKind { return NodeKind(n.KindID) }

// SetKind stores k, widened to the node's uint32 KindID column.
func (n *Node) SetKind(k NodeKind) { n.KindID = uint32(k) }

// HasFlag reports whether f is set on the node.
func (n *Node) HasFlag(f uint8) bool { return n.Flags&f != 0 }
