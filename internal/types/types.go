// Package types holds the value types shared across the analysis engine:
// file identity, severity/category enums, and the defect-report schema.
// Nothing here owns behavior — it is the vocabulary every other package
// speaks.
package types

import "time"

// FileID is a dense per-session identifier for an indexed source file.
type FileID uint32

// SymbolID identifies a unified AST symbol (function, class, variable, ...).
type SymbolID uint64

// Language is a short language tag, e.g. "go", "javascript", "python".
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangCSharp     Language = "csharp"
	LangCPP        Language = "cpp"
	LangPHP        Language = "php"
	LangZig        Language = "zig"
	LangUnknown    Language = "unknown"
)

// FileDescriptor is the immutable record of one source file as seen by one
// analysis session. Rebuilt (new ContentHash) whenever file content changes.
type FileDescriptor struct {
	Path         string // project-relative, slash-normalized
	Language     Language
	ContentHash  [32]byte // sha256 of content
	Size         int64
	ModifiedAt   time.Time
}

// Severity ranks a defect's urgency, highest first.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank returns a numeric ordering for Severity, higher is more severe.
// Used by the ranking layer's primary sort key.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Category classifies a defect by analyzer origin.
type Category string

const (
	CategoryComplexity   Category = "complexity"
	CategoryDeadCode     Category = "dead_code"
	CategoryDuplicate    Category = "duplicate"
	CategorySATD         Category = "satd"
	CategoryDefectRisk   Category = "defect_probability"
	CategoryDependency   Category = "dependency_graph"
	CategoryBigO         Category = "big_o"
)

// LineRange is an inclusive, 1-indexed line span.
type LineRange struct {
	Start int `json:"line_start"`
	End   int `json:"line_end"`
}

// ColumnRange is an inclusive, 1-indexed column span. Optional on a Defect.
type ColumnRange struct {
	Start int `json:"column_start"`
	End   int `json:"column_end"`
}

// Defect is one finding in a DefectReport. Id is unique within one report.
type Defect struct {
	ID            string             `json:"id"`
	Severity      Severity           `json:"severity"`
	Category      Category           `json:"category"`
	FilePath      string             `json:"file_path"`
	LineStart     int                `json:"line_start"`
	LineEnd       int                `json:"line_end"`
	ColumnStart   *int               `json:"column_start,omitempty"`
	ColumnEnd     *int               `json:"column_end,omitempty"`
	Message       string             `json:"message"`
	RuleID        string             `json:"rule_id"`
	FixSuggestion string             `json:"fix_suggestion,omitempty"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
}

// HotspotFile is a summary entry ranking one file's defect density.
type HotspotFile struct {
	Path          string  `json:"path"`
	DefectCount   int     `json:"defect_count"`
	SeverityScore float64 `json:"severity_score"`
}

// ReportSummary aggregates a DefectReport's defects for quick consumption.
type ReportSummary struct {
	TotalDefects int                `json:"total_defects"`
	BySeverity   map[Severity]int   `json:"by_severity"`
	ByCategory   map[Category]int   `json:"by_category"`
	HotspotFiles []HotspotFile      `json:"hotspot_files"`
}

// ReportMetadata describes the run that produced a DefectReport.
type ReportMetadata struct {
	Tool                string        `json:"tool"`
	Version             string        `json:"version"`
	GeneratedAt         time.Time     `json:"generated_at"`
	ProjectRoot         string        `json:"project_root"`
	TotalFilesAnalyzed  int           `json:"total_files_analyzed"`
	AnalysisDurationMS  int64         `json:"analysis_duration_ms"`
	Cancelled           bool          `json:"cancelled,omitempty"`
	AnalyzerDiagnostics []AnalyzerDiagnostic `json:"analyzer_diagnostics,omitempty"`
}

// AnalyzerDiagnostic records a partial/failed analyzer outcome surfaced in
// report metadata rather than failing the whole request (spec §4.6/§7).
type AnalyzerDiagnostic struct {
	Category Category `json:"category"`
	Outcome  string   `json:"outcome"` // "ok", "timeout", "error", "cancelled"
	Detail   string   `json:"detail,omitempty"`
}

// DefectReport is the canonical (JSON) shape of a full analysis run. Every
// other report format is a projection of this value.
type DefectReport struct {
	Metadata  ReportMetadata         `json:"metadata"`
	Summary   ReportSummary          `json:"summary"`
	Defects   []Defect               `json:"defects"`
	FileIndex map[string][]string    `json:"file_index"`
}
