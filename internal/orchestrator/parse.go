package orchestrator

import (
	"context"
	"os"

	"github.com/standardbeagle/lci-analyzer/internal/analyzers"
	lcierrors "github.com/standardbeagle/lci-analyzer/internal/errors"
	"github.com/standardbeagle/lci-analyzer/internal/langparse"
	"github.com/standardbeagle/lci-analyzer/internal/types"
)

// ParseResult is the outcome of parsing one discovered file: either it
// joins the project as a ParsedFile, or it is recorded as a skip with a
// reason (unsupported extension, oversized, or a recovered parse error) —
// never a fatal condition for the run as a whole.
type ParseResult struct {
	File   *analyzers.ParsedFile
	Path   string
	Reason string // empty when File is non-nil
}

// ParseProject parses every path in paths through registry, applying
// budget per file via langparse.SupervisedParse (the panic/timeout
// boundary already built for that purpose). Files with no matching
// adapter, or that exceed maxFileSizeBytes, are skipped with a reason
// rather than aborting the run; per-file parse failures become a skip
// too, since the rest of the project can still be analyzed.
func ParseProject(ctx context.Context, root string, paths []string, registry *langparse.Registry, budget langparse.Budget, maxFileSizeBytes int64) (*analyzers.Project, []ParseResult) {
	proj := &analyzers.Project{Root: root}
	var results []ParseResult

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			results = append(results, ParseResult{Path: path, Reason: err.Error()})
			continue
		}

		adapter, ok := registry.ForPath(path)
		if !ok {
			results = append(results, ParseResult{Path: path, Reason: "unsupported file extension"})
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			results = append(results, ParseResult{Path: path, Reason: err.Error()})
			continue
		}
		if maxFileSizeBytes > 0 && info.Size() > maxFileSizeBytes {
			results = append(results, ParseResult{Path: path, Reason: "exceeds max file size"})
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			results = append(results, ParseResult{Path: path, Reason: err.Error()})
			continue
		}

		fileID := types.FileID(i + 1)
		store, err := langparse.SupervisedParse(ctx, adapter, fileID, path, content, budget)
		if err != nil {
			reason := err.Error()
			if pf, ok := err.(*lcierrors.ParseFailure); ok {
				reason = pf.Error()
			}
			results = append(results, ParseResult{Path: path, Reason: reason})
			continue
		}

		pf := &analyzers.ParsedFile{
			FileID:   fileID,
			Path:     path,
			Language: adapter.Language(),
			Content:  content,
			Store:    store,
		}
		proj.Files = append(proj.Files, pf)
		results = append(results, ParseResult{File: pf, Path: path})
	}

	return proj, results
}
