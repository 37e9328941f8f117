// Package orchestrator drives one end-to-end analysis run: discover files
// under a project root, parse each into a unified AST, fan the parsed
// project out to every registered analyzer concurrently, and merge the
// results into one types.DefectReport. It generalizes teacher's
// internal/indexing pipeline — a single-pass file scanner feeding one
// content index — into a two-stage pipeline (parse, then N independently
// deadlined analyzer passes) feeding a defect report instead.
package orchestrator

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover walks root and returns every regular file path that survives
// the include/exclude glob filters, matching teacher's FileScanner.CountFiles
// walk: symlinked directories are resolved and visited at most once to
// avoid cycles, and patterns are matched against the root-relative,
// slash-normalized path exactly like doublestar.Match expects.
func Discover(ctx context.Context, root string, include, exclude []string) ([]string, error) {
	var paths []string
	visitedDirs := make(map[string]bool)

	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return nil
		}

		if info.IsDir() {
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil
			}
			if visitedDirs[realPath] {
				return filepath.SkipDir
			}
			visitedDirs[realPath] = true

			if path == root {
				return nil
			}
			rel, relErr := relSlash(root, path)
			if relErr == nil && matchesAny(exclude, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := relSlash(root, path)
		if relErr != nil {
			rel = filepath.ToSlash(path)
		}
		if matchesAny(exclude, rel) {
			return nil
		}
		if len(include) > 0 && !matchesAny(include, rel) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func relSlash(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if matched, err := doublestar.Match(p, path); err == nil && matched {
			return true
		}
	}
	return false
}
