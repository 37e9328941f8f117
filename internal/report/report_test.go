package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/standardbeagle/lci-analyzer/internal/types"
)

func sampleReport() *types.DefectReport {
	col := 4
	return &types.DefectReport{
		Metadata: types.ReportMetadata{
			Tool:               "lci-analyzer",
			Version:            "0.1.0",
			GeneratedAt:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			ProjectRoot:        "/tmp/proj",
			TotalFilesAnalyzed: 2,
			AnalysisDurationMS: 42,
			AnalyzerDiagnostics: []types.AnalyzerDiagnostic{
				{Category: types.CategoryComplexity, Outcome: "ok"},
				{Category: types.CategorySATD, Outcome: "timeout", Detail: "deadline exceeded"},
			},
		},
		Summary: types.ReportSummary{
			TotalDefects: 2,
			BySeverity: map[types.Severity]int{
				types.SeverityCritical: 1,
				types.SeverityLow:      1,
			},
			ByCategory: map[types.Category]int{
				types.CategoryComplexity: 1,
				types.CategorySATD:       1,
			},
			HotspotFiles: []types.HotspotFile{
				{Path: "a.go", DefectCount: 2, SeverityScore: 7.5},
			},
		},
		Defects: []types.Defect{
			{
				ID: "defect:complexity_cyclomatic:a.go:10:4", Severity: types.SeverityCritical,
				Category: types.CategoryComplexity, FilePath: "a.go", LineStart: 10, LineEnd: 20,
				ColumnStart: &col, Message: "cyclomatic complexity 42 exceeds limit", RuleID: "cyclomatic",
			},
			{
				ID: "defect:satd_todo:b.go:3:0", Severity: types.SeverityLow,
				Category: types.CategorySATD, FilePath: "b.go", LineStart: 3, LineEnd: 3,
				Message: "TODO: fix this | and that", RuleID: "todo",
			},
		},
		FileIndex: map[string][]string{
			"a.go": {"defect:complexity_cyclomatic:a.go:10:4"},
			"b.go": {"defect:satd_todo:b.go:3:0"},
		},
	}
}

func TestJSON_RoundTripsCanonicalFields(t *testing.T) {
	rpt := sampleReport()
	out, err := JSON(rpt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded types.DefectReport
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if len(decoded.Defects) != len(rpt.Defects) {
		t.Fatalf("expected %d defects, got %d", len(rpt.Defects), len(decoded.Defects))
	}
	if decoded.Defects[0].FilePath != "a.go" || decoded.Defects[0].RuleID != "cyclomatic" {
		t.Errorf("expected file path and rule id to survive the round trip, got %+v", decoded.Defects[0])
	}
}

func TestSARIF_ProducesOneResultPerDefect(t *testing.T) {
	rpt := sampleReport()
	out, err := SARIF(rpt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(out, &log); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if len(log.Runs) != 1 {
		t.Fatalf("expected exactly one run, got %d", len(log.Runs))
	}
	if len(log.Runs[0].Results) != len(rpt.Defects) {
		t.Fatalf("expected %d results, got %d", len(rpt.Defects), len(log.Runs[0].Results))
	}
	first := log.Runs[0].Results[0]
	if first.Level != "error" {
		t.Errorf("expected critical severity to map to level error, got %q", first.Level)
	}
	if first.Locations[0].PhysicalLocation.ArtifactLocation.URI != "a.go" {
		t.Errorf("expected the file path to survive the projection, got %+v", first.Locations[0])
	}
}

func TestSARIF_SeverityLevelMapping(t *testing.T) {
	cases := map[types.Severity]string{
		types.SeverityCritical: "error",
		types.SeverityHigh:     "error",
		types.SeverityMedium:   "warning",
		types.SeverityLow:      "note",
	}
	for sev, want := range cases {
		if got := sarifLevel(sev); got != want {
			t.Errorf("sarifLevel(%s) = %q, want %q", sev, got, want)
		}
	}
}

func TestMarkdown_ContainsEveryDefectField(t *testing.T) {
	rpt := sampleReport()
	out, err := Markdown(rpt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)
	for _, want := range []string{"a.go", "10-20", "cyclomatic", "critical", "Hotspot files"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected markdown output to contain %q, got:\n%s", want, s)
		}
	}
}

func TestMarkdown_EscapesPipesInMessages(t *testing.T) {
	out, err := Markdown(sampleReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(out), "fix this | and that") {
		t.Error("found the defect message's pipe unescaped, which would corrupt the table")
	}
	if !strings.Contains(string(out), `fix this \| and that`) {
		t.Error("expected the pipe to be escaped")
	}
}

func TestCSV_HasOneRowPerDefectPlusHeader(t *testing.T) {
	rpt := sampleReport()
	out, err := CSV(rpt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := csv.NewReader(bytes.NewReader(out))
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("unexpected csv parse error: %v", err)
	}
	if len(rows) != len(rpt.Defects)+1 {
		t.Fatalf("expected %d rows (header + defects), got %d", len(rpt.Defects)+1, len(rows))
	}
	if rows[0][0] != "id" {
		t.Errorf("expected header row to start with id, got %v", rows[0])
	}
	if rows[1][3] != "a.go" {
		t.Errorf("expected first data row's file_path column to be a.go, got %v", rows[1])
	}
	if rows[1][6] != "4" {
		t.Errorf("expected column_start to round-trip as 4, got %q", rows[1][6])
	}
}

func TestText_ContainsSummaryAndDefects(t *testing.T) {
	out, err := Text(sampleReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)
	for _, want := range []string{"ANALYSIS REPORT", "Total Defects:      2", "a.go:10-20", "satd", "timeout"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected text output to contain %q, got:\n%s", want, s)
		}
	}
}

func TestRender_DispatchesOnFormat(t *testing.T) {
	rpt := sampleReport()
	for _, f := range []Format{FormatJSON, FormatSARIF, FormatMarkdown, FormatCSV, FormatText} {
		if _, err := Render(rpt, f); err != nil {
			t.Errorf("Render(%s) returned unexpected error: %v", f, err)
		}
	}
}

func TestRender_RejectsUnknownFormat(t *testing.T) {
	if _, err := Render(sampleReport(), Format("yaml")); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

func TestFormatters_NeverFabricateDefectsBeyondReport(t *testing.T) {
	empty := &types.DefectReport{
		Metadata:  types.ReportMetadata{Tool: "lci-analyzer", Version: "0.1.0"},
		Summary:   types.ReportSummary{},
		Defects:   nil,
		FileIndex: map[string][]string{},
	}
	for _, f := range []Format{FormatJSON, FormatSARIF, FormatMarkdown, FormatCSV, FormatText} {
		out, err := Render(empty, f)
		if err != nil {
			t.Fatalf("Render(%s) on empty report returned unexpected error: %v", f, err)
		}
		if len(out) == 0 {
			t.Errorf("Render(%s) produced empty output for an empty report", f)
		}
	}
}
