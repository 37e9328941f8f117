package orchestrator

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/lci-analyzer/internal/analyzers"
)

// SnapshotSchemaVersion guards forward-compat: Load refuses to gob-decode a
// snapshot written by a newer schema rather than risk a silently corrupt
// decode, the same "log, invalidate, recompute" posture the engine's cache
// layer takes on corruption (spec.md's CacheCorruption taxonomy member).
const SnapshotSchemaVersion = 1

// snapshotSentinel separates the KDL header from the gob-encoded body in
// the sidecar file. It is never valid KDL node content, so a reader can
// split on it unambiguously.
const snapshotSentinel = "---snapshot-body---\n"

// FileSnapshot is one file's identity at the time a session snapshot was
// taken: enough to tell a caller whether that file's parse/analysis
// results can still be trusted without re-reading its content, reusing
// the same fast content hash internal/cache keys its entries by.
type FileSnapshot struct {
	Path        string
	Size        int64
	ModTime     time.Time
	ContentHash uint64
}

// Snapshot is the full session snapshot body: the project root and every
// file's identity as of the run that produced it. It deliberately excludes
// the unified AST itself — NodeStore's positional, unexported-field layout
// is an in-memory structure, not a serialization format, so a snapshot
// records what to re-parse rather than a frozen copy of the parse.
type Snapshot struct {
	SchemaVersion int
	ProjectRoot   string
	CreatedAt     time.Time
	Files         []FileSnapshot
}

// BuildSnapshot derives a Snapshot from a parsed Project.
func BuildSnapshot(proj *analyzers.Project, createdAt time.Time) *Snapshot {
	snap := &Snapshot{
		SchemaVersion: SnapshotSchemaVersion,
		ProjectRoot:   proj.Root,
		CreatedAt:     createdAt,
		Files:         make([]FileSnapshot, 0, len(proj.Files)),
	}
	for _, f := range proj.Files {
		info, err := os.Stat(f.Path)
		var size int64
		var modTime time.Time
		if err == nil {
			size = info.Size()
			modTime = info.ModTime()
		}
		snap.Files = append(snap.Files, FileSnapshot{
			Path:        f.Path,
			Size:        size,
			ModTime:     modTime,
			ContentHash: xxhash.Sum64(f.Content),
		})
	}
	return snap
}

// Unchanged reports whether path still matches the identity this snapshot
// recorded for it (same size, mtime, and content hash), so an incremental
// run can skip re-parsing it.
func (s *Snapshot) Unchanged(path string, content []byte) bool {
	for _, f := range s.Files {
		if f.Path != path {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		return info.Size() == f.Size && info.ModTime().Equal(f.ModTime) && f.ContentHash == xxhash.Sum64(content)
	}
	return false
}

// renderHeader builds the KDL preamble written ahead of the gob body. Kept
// as a hand-built string template, the same way teacher's
// generateKDLConfig builds its .lci.kdl output, rather than driving
// kdl-go's document writer for five fields.
func renderHeader(s *Snapshot) string {
	var b strings.Builder
	b.WriteString("snapshot {\n")
	fmt.Fprintf(&b, "    format_version %d\n", s.SchemaVersion)
	fmt.Fprintf(&b, "    tool %q\n", ToolName)
	fmt.Fprintf(&b, "    tool_version %q\n", ToolVersion)
	fmt.Fprintf(&b, "    created_at %q\n", s.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "    file_count %d\n", len(s.Files))
	b.WriteString("}\n")
	return b.String()
}

// parsedHeader is what Load checks before trusting the gob body that
// follows it.
type parsedHeader struct {
	FormatVersion int
	Tool          string
}

func parseHeader(text string) (*parsedHeader, error) {
	doc, err := kdl.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("snapshot header: %w", err)
	}

	h := &parsedHeader{}
	for _, n := range doc.Nodes {
		if nodeName(n) != "snapshot" {
			continue
		}
		for _, cn := range n.Children {
			switch nodeName(cn) {
			case "format_version":
				if v, ok := firstIntArg(cn); ok {
					h.FormatVersion = v
				}
			case "tool":
				if v, ok := firstStringArg(cn); ok {
					h.Tool = v
				}
			}
		}
	}
	return h, nil
}

// nodeName/firstIntArg/firstStringArg unwrap a kdl-go document.Node: Name
// may be nil for a malformed node, and Arguments[0].Value is the untyped scalar kdl-go
// decoded the literal into.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

// Save writes snap to path as a KDL header followed by a gob-encoded body,
// via a temp-file-then-rename so a reader never observes a partially
// written snapshot.
func Save(path string, snap *Snapshot) error {
	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	w := bufio.NewWriter(tmp)
	if _, err := w.WriteString(renderHeader(snap)); err != nil {
		tmp.Close()
		return err
	}
	if _, err := w.WriteString(snapshotSentinel); err != nil {
		tmp.Close()
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// Load reads a snapshot written by Save. A format_version from a future
// schema, or a tool field from a different binary, is treated as
// unreadable rather than risking a gob decode against a layout this
// version doesn't understand — the caller falls back to a full re-parse.
func Load(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sep := bytes.Index(raw, []byte(snapshotSentinel))
	if sep < 0 {
		return nil, fmt.Errorf("snapshot %s: missing header sentinel", path)
	}

	header, err := parseHeader(string(raw[:sep]))
	if err != nil {
		return nil, err
	}
	if header.FormatVersion != SnapshotSchemaVersion {
		return nil, fmt.Errorf("snapshot %s: format_version %d unsupported (want %d)", path, header.FormatVersion, SnapshotSchemaVersion)
	}
	if header.Tool != ToolName {
		return nil, fmt.Errorf("snapshot %s: written by %q, not %q", path, header.Tool, ToolName)
	}

	body := raw[sep+len(snapshotSentinel):]
	var snap Snapshot
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot body: %w", err)
	}
	return &snap, nil
}

