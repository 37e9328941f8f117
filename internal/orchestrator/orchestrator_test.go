package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/standardbeagle/lci-analyzer/internal/analyzers"
	"github.com/standardbeagle/lci-analyzer/internal/config"
	"github.com/standardbeagle/lci-analyzer/internal/langparse"
	"github.com/standardbeagle/lci-analyzer/internal/tools"
)

func buildTestProject(t *testing.T) (*config.Config, string) {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	src := "package a\n\nfunc A(n int) int {\n\tif n > 0 {\n\t\treturn A(n - 1)\n\t}\n\treturn 0\n}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Project.Root = root
	return cfg, root
}

func TestOrchestrator_RunProducesCompleteReport(t *testing.T) {
	cfg, root := buildTestProject(t)

	registry, err := langparse.NewRegistry()
	if err != nil {
		t.Fatalf("unexpected registry error: %v", err)
	}
	paths, err := Discover(context.Background(), root, cfg.Include, cfg.Exclude)
	if err != nil {
		t.Fatalf("unexpected discover error: %v", err)
	}
	proj, parseResults := ParseProject(context.Background(), root, paths, registry, langparse.DefaultBudget(), cfg.Parse.MaxFileSizeBytes)
	for _, r := range parseResults {
		if r.Reason != "" {
			t.Fatalf("unexpected parse failure for %s: %s", r.Path, r.Reason)
		}
	}

	ids := tools.NewDefectIDGenerator(root)
	orch := New(cfg, ids, nil)

	report, err := orch.Run(context.Background(), proj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Metadata.Tool != ToolName {
		t.Errorf("expected tool name %q, got %q", ToolName, report.Metadata.Tool)
	}
	if report.Metadata.TotalFilesAnalyzed != 1 {
		t.Errorf("expected 1 file analyzed, got %d", report.Metadata.TotalFilesAnalyzed)
	}
	if report.Metadata.Cancelled {
		t.Error("expected a non-cancelled run")
	}
	if len(report.Metadata.AnalyzerDiagnostics) != 7 {
		t.Fatalf("expected 7 analyzer diagnostics (one per registered analyzer), got %d", len(report.Metadata.AnalyzerDiagnostics))
	}
	for _, d := range report.Metadata.AnalyzerDiagnostics {
		if d.Outcome != "ok" {
			t.Errorf("expected analyzer %v to complete ok, got %q (%s)", d.Category, d.Outcome, d.Detail)
		}
	}
	if report.Summary.TotalDefects != len(report.Defects) {
		t.Errorf("expected summary total to match the defect slice length: %d vs %d", report.Summary.TotalDefects, len(report.Defects))
	}
	for _, def := range report.Defects {
		if _, ok := report.FileIndex[def.FilePath]; !ok {
			t.Errorf("expected file_index to list %s", def.FilePath)
		}
	}
}

func TestOrchestrator_DiagnosticsAreSortedByCategory(t *testing.T) {
	cfg, root := buildTestProject(t)
	registry, err := langparse.NewRegistry()
	if err != nil {
		t.Fatalf("unexpected registry error: %v", err)
	}
	paths, err := Discover(context.Background(), root, cfg.Include, cfg.Exclude)
	if err != nil {
		t.Fatalf("unexpected discover error: %v", err)
	}
	proj, _ := ParseProject(context.Background(), root, paths, registry, langparse.DefaultBudget(), cfg.Parse.MaxFileSizeBytes)

	orch := New(cfg, tools.NewDefectIDGenerator(root), nil)
	report, err := orch.Run(context.Background(), proj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(report.Metadata.AnalyzerDiagnostics); i++ {
		prev := report.Metadata.AnalyzerDiagnostics[i-1].Category
		cur := report.Metadata.AnalyzerDiagnostics[i].Category
		if prev >= cur {
			t.Errorf("expected diagnostics sorted by category, got %v before %v", prev, cur)
		}
	}
}

func TestOrchestrator_EmptyProjectYieldsEmptyReport(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Project.Root = root

	orch := New(cfg, tools.NewDefectIDGenerator(root), nil)
	report, err := orch.Run(context.Background(), &analyzers.Project{Root: root})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Summary.TotalDefects != 0 {
		t.Errorf("expected zero defects for an empty project, got %d", report.Summary.TotalDefects)
	}
	if len(report.Defects) != 0 {
		t.Errorf("expected an empty defects slice, got %+v", report.Defects)
	}
}

func TestOrchestrator_NilGitProviderDoesNotWireChurn(t *testing.T) {
	cfg, root := buildTestProject(t)
	orch := New(cfg, tools.NewDefectIDGenerator(root), nil)
	if orch.defectRisk.Churn != nil {
		t.Error("expected no churn signal without a git provider")
	}
	orch.wireChurn(context.Background(), root)
	if orch.defectRisk.Churn != nil {
		t.Error("expected wireChurn to be a no-op with a nil git provider")
	}
}
