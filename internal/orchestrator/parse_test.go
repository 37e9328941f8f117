package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/standardbeagle/lci-analyzer/internal/langparse"
)

func TestParseProject_ParsesSupportedFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	if err := os.WriteFile(path, []byte("package a\n\nfunc A() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	registry, err := langparse.NewRegistry()
	if err != nil {
		t.Fatalf("unexpected registry error: %v", err)
	}

	proj, results := ParseProject(context.Background(), root, []string{path}, registry, langparse.DefaultBudget(), 0)
	if len(proj.Files) != 1 {
		t.Fatalf("expected 1 parsed file, got %d", len(proj.Files))
	}
	if len(results) != 1 || results[0].Reason != "" {
		t.Fatalf("expected a clean parse result, got %+v", results)
	}
	if proj.Files[0].Store == nil {
		t.Fatal("expected a populated node store")
	}
}

func TestParseProject_SkipsUnsupportedExtension(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "notes.txt")
	if err := os.WriteFile(path, []byte("just text"), 0o644); err != nil {
		t.Fatal(err)
	}

	registry, err := langparse.NewRegistry()
	if err != nil {
		t.Fatalf("unexpected registry error: %v", err)
	}

	proj, results := ParseProject(context.Background(), root, []string{path}, registry, langparse.DefaultBudget(), 0)
	if len(proj.Files) != 0 {
		t.Fatalf("expected 0 parsed files for an unsupported extension, got %d", len(proj.Files))
	}
	if len(results) != 1 || results[0].Reason == "" {
		t.Fatalf("expected a skip reason recorded, got %+v", results)
	}
}

func TestParseProject_SkipsOversizedFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "big.go")
	if err := os.WriteFile(path, []byte("package a\nfunc A() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	registry, err := langparse.NewRegistry()
	if err != nil {
		t.Fatalf("unexpected registry error: %v", err)
	}

	proj, results := ParseProject(context.Background(), root, []string{path}, registry, langparse.DefaultBudget(), 1)
	if len(proj.Files) != 0 {
		t.Fatalf("expected the oversized file to be skipped, got %d parsed files", len(proj.Files))
	}
	if len(results) != 1 || results[0].Reason != "exceeds max file size" {
		t.Fatalf("expected an 'exceeds max file size' reason, got %+v", results)
	}
}

func TestParseProject_MissingFileIsSkippedNotFatal(t *testing.T) {
	root := t.TempDir()
	registry, err := langparse.NewRegistry()
	if err != nil {
		t.Fatalf("unexpected registry error: %v", err)
	}

	proj, results := ParseProject(context.Background(), root, []string{filepath.Join(root, "missing.go")}, registry, langparse.DefaultBudget(), 0)
	if len(proj.Files) != 0 {
		t.Fatalf("expected no parsed files for a missing path, got %d", len(proj.Files))
	}
	if len(results) != 1 || results[0].Reason == "" {
		t.Fatalf("expected a recorded skip reason for the missing file, got %+v", results)
	}
}
