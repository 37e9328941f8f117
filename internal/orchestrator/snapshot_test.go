package orchestrator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/lci-analyzer/internal/analyzers"
	"github.com/standardbeagle/lci-analyzer/internal/types"
)

func TestBuildSnapshot_RecordsEveryFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	if err := os.WriteFile(path, []byte("package a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	proj := &analyzers.Project{
		Root: root,
		Files: []*analyzers.ParsedFile{
			{Path: path, Language: types.LangGo, Content: []byte("package a\n")},
		},
	}

	snap := BuildSnapshot(proj, time.Now())
	if len(snap.Files) != 1 {
		t.Fatalf("expected 1 file recorded, got %d", len(snap.Files))
	}
	if snap.Files[0].ContentHash == 0 {
		t.Error("expected a non-zero content hash")
	}
}

func TestSnapshot_SaveThenLoadRoundTrips(t *testing.T) {
	root := t.TempDir()
	snap := &Snapshot{
		SchemaVersion: SnapshotSchemaVersion,
		ProjectRoot:   root,
		CreatedAt:     time.Now().Truncate(time.Second),
		Files: []FileSnapshot{
			{Path: filepath.Join(root, "a.go"), Size: 42, ContentHash: 12345},
		},
	}

	path := filepath.Join(root, ".lci-snapshot")
	if err := Save(path, snap); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if loaded.ProjectRoot != snap.ProjectRoot {
		t.Errorf("expected project root %q, got %q", snap.ProjectRoot, loaded.ProjectRoot)
	}
	if len(loaded.Files) != 1 || loaded.Files[0].ContentHash != 12345 {
		t.Fatalf("expected the file record to survive the round trip, got %+v", loaded.Files)
	}
}

func TestSnapshot_LoadRejectsWrongSchemaVersion(t *testing.T) {
	root := t.TempDir()
	header := "snapshot {\n    format_version 99\n    tool \"lci-analyzer\"\n}\n"
	path := filepath.Join(root, ".lci-snapshot")
	if err := os.WriteFile(path, []byte(header+snapshotSentinel+"garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unsupported format_version")
	}
}

func TestSnapshot_LoadRejectsMissingSentinel(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".lci-snapshot")
	if err := os.WriteFile(path, []byte("not a snapshot file"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a file with no header sentinel")
	}
}

func TestSnapshot_Unchanged_DetectsModifiedContent(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	original := []byte("package a\n")
	if err := os.WriteFile(path, original, 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	snap := &Snapshot{Files: []FileSnapshot{
		{Path: path, Size: info.Size(), ModTime: info.ModTime(), ContentHash: xxhash.Sum64(original)},
	}}

	if !snap.Unchanged(path, original) {
		t.Error("expected unchanged content to be reported as unchanged")
	}

	modified := []byte("package a\n\nfunc B() {}\n")
	if err := os.WriteFile(path, modified, 0o644); err != nil {
		t.Fatal(err)
	}
	if snap.Unchanged(path, modified) {
		t.Error("expected modified content to be reported as changed")
	}
}
