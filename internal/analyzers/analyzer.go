// Package analyzers implements the engine's defect-producing analysis
// passes — complexity, dead code, duplication, SATD comments, defect
// probability, dependency graph, Big-O — each a self-contained
// implementation of the Analyzer contract. The orchestrator registers
// every analyzer explicitly; nothing here is discovered by reflection.
package analyzers

import (
	"context"

	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// ParsedFile bundles everything an analyzer needs about one source file:
// its raw content (for comment/token scanning) and its parsed unified AST.
type ParsedFile struct {
	FileID   types.FileID
	Path     string
	Language types.Language
	Content  []byte
	Store    *unifiedast.NodeStore
}

// Project is the corpus one analysis run sees: every parsed file plus the
// project root, passed to every analyzer unchanged.
type Project struct {
	Root  string
	Files []*ParsedFile
}

// Analyzer is the contract every analysis pass implements. Analyze is
// deterministic given identical input and safe to run concurrently with
// any other Analyzer (analyzers never share mutable state).
type Analyzer interface {
	// Category identifies the analyzer for report metadata and
	// per-analyzer configuration/timeouts.
	Category() types.Category
	// SupportsIncremental reports whether this analyzer can limit its
	// work to a changed-file subset rather than the whole Project.
	SupportsIncremental() bool
	// Analyze runs the pass over proj and returns every defect found.
	// A non-nil error means the analyzer produced no usable output; a
	// partial result should be returned as defects, not hidden behind
	// an error, whenever the analyzer can tell how far it got.
	Analyze(ctx context.Context, proj *Project) ([]types.Defect, error)
}
