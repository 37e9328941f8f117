package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover_FindsFilesRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a")
	writeFile(t, filepath.Join(root, "sub", "b.go"), "package sub")

	paths, err := Discover(context.Background(), root, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(paths), paths)
	}
}

func TestDiscover_ExcludePatternSkipsDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a")
	writeFile(t, filepath.Join(root, "vendor", "b.go"), "package vendor")

	paths, err := Discover(context.Background(), root, nil, []string{"**/vendor/**"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "a.go" {
		t.Fatalf("expected only a.go to survive the vendor exclusion, got %v", paths)
	}
}

func TestDiscover_IncludePatternRestrictsToMatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a")
	writeFile(t, filepath.Join(root, "README.md"), "# readme")

	paths, err := Discover(context.Background(), root, []string{"**/*.go"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || filepath.Ext(paths[0]) != ".go" {
		t.Fatalf("expected include filter to keep only .go files, got %v", paths)
	}
}

func TestDiscover_ContextCancellationStopsWalk(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Discover(ctx, root, nil, nil)
	if err == nil {
		t.Fatal("expected an error from a pre-cancelled context")
	}
}

func TestDiscover_DeterministicAcrossRuns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a")
	writeFile(t, filepath.Join(root, "b.go"), "package b")
	writeFile(t, filepath.Join(root, "c.go"), "package c")

	first, err := Discover(context.Background(), root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Discover(context.Background(), root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(first)
	sort.Strings(second)
	if len(first) != len(second) {
		t.Fatalf("expected repeated walks of an unchanged tree to agree, got %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("expected identical ordering, got %v vs %v", first, second)
		}
	}
}
