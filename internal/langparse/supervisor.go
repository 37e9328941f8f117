// Package langparse adapts tree-sitter grammars for ten languages into
// the engine's single unifiedast.NodeStore representation. Every adapter
// is wrapped by SupervisedParse, the total-function boundary: a grammar
// panic, an oversized line, or a slow parse never crashes or hangs the
// caller — a slow parse becomes a *lcierrors.TimeoutError and the others
// a *lcierrors.ParseFailure instead.
package langparse

import (
	"context"
	"fmt"
	"time"

	lcierrors "github.com/standardbeagle/lci-analyzer/internal/errors"
	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// Budget bounds one SupervisedParse call.
type Budget struct {
	MaxLineLengthBytes int
	WallClock          time.Duration
}

// DefaultBudget matches spec.md §4.2's defaults.
func DefaultBudget() Budget {
	return Budget{MaxLineLengthBytes: 10_000, WallClock: 5 * time.Second}
}

// Adapter is what each language package in this directory implements.
type Adapter interface {
	Language() types.Language
	// Parse converts raw file content into a populated NodeStore. It may
	// panic on malformed CGO input from a grammar binding — SupervisedParse
	// is the only sanctioned caller, since it recovers from exactly that.
	Parse(content []byte) (*unifiedast.NodeStore, error)
}

// parseResult carries either a store or an error across the goroutine
// boundary SupervisedParse runs the adapter on.
type parseResult struct {
	store *unifiedast.NodeStore
	err   error
}

// SupervisedParse runs adapter.Parse(content) under a wall-clock budget and
// panic recovery. It never panics and never blocks past budget.WallClock.
func SupervisedParse(ctx context.Context, adapter Adapter, fileID types.FileID, path string, content []byte, budget Budget) (*unifiedast.NodeStore, error) {
	if budget.MaxLineLengthBytes <= 0 {
		budget = DefaultBudget()
	}

	if longest := longestLine(content); longest > budget.MaxLineLengthBytes {
		return nil, lcierrors.NewParseFailure(fileID, path, adapter.Language(), 0,
			fmt.Sprintf("line length %d exceeds max %d bytes", longest, budget.MaxLineLengthBytes))
	}

	ctx, cancel := context.WithTimeout(ctx, budget.WallClock)
	defer cancel()

	resultCh := make(chan parseResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- parseResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		store, err := adapter.Parse(content)
		resultCh <- parseResult{store: store, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return nil, lcierrors.NewParseFailure(fileID, path, adapter.Language(), 0, res.err.Error())
		}
		return res.store, nil
	case <-ctx.Done():
		return nil, lcierrors.NewTimeoutError("file", path, budget.WallClock)
	}
}

func longestLine(content []byte) int {
	longest := 0
	start := 0
	for i, b := range content {
		if b == '\n' {
			if l := i - start; l > longest {
				longest = l
			}
			start = i + 1
		}
	}
	if l := len(content) - start; l > longest {
		longest = l
	}
	return longest
}
