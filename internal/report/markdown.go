package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/lci-analyzer/internal/types"
)

// Markdown renders rpt as a human-readable report: a summary section, a
// severity breakdown, a hotspot-files table, and one table row per defect.
// Grounded on the teacher's CodebaseStats.FormatAsText section-building
// idiom (strings.Builder plus one WriteString per line), adapted to
// markdown tables since this format's consumers are PRs and issue trackers
// rather than a terminal.
func Markdown(rpt *types.DefectReport) ([]byte, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Analysis report\n\n")
	fmt.Fprintf(&sb, "- Tool: %s %s\n", rpt.Metadata.Tool, rpt.Metadata.Version)
	fmt.Fprintf(&sb, "- Project root: %s\n", rpt.Metadata.ProjectRoot)
	fmt.Fprintf(&sb, "- Files analyzed: %d\n", rpt.Metadata.TotalFilesAnalyzed)
	fmt.Fprintf(&sb, "- Duration: %dms\n", rpt.Metadata.AnalysisDurationMS)
	if rpt.Metadata.Cancelled {
		fmt.Fprintf(&sb, "- **Run was cancelled before completion**\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Severity breakdown\n\n")
	sb.WriteString("| Severity | Count |\n")
	sb.WriteString("|---|---|\n")
	for _, sev := range []types.Severity{types.SeverityCritical, types.SeverityHigh, types.SeverityMedium, types.SeverityLow} {
		fmt.Fprintf(&sb, "| %s | %d |\n", sev, rpt.Summary.BySeverity[sev])
	}
	sb.WriteString("\n")

	if len(rpt.Summary.HotspotFiles) > 0 {
		sb.WriteString("## Hotspot files\n\n")
		sb.WriteString("| File | Defects | Severity score |\n")
		sb.WriteString("|---|---|---|\n")
		for _, h := range rpt.Summary.HotspotFiles {
			fmt.Fprintf(&sb, "| %s | %d | %.1f |\n", h.Path, h.DefectCount, h.SeverityScore)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Defects\n\n")
	if len(rpt.Defects) == 0 {
		sb.WriteString("No defects found.\n")
		return []byte(sb.String()), nil
	}

	defects := make([]types.Defect, len(rpt.Defects))
	copy(defects, rpt.Defects)
	sort.SliceStable(defects, func(i, j int) bool {
		if defects[i].FilePath != defects[j].FilePath {
			return defects[i].FilePath < defects[j].FilePath
		}
		return defects[i].LineStart < defects[j].LineStart
	})

	sb.WriteString("| Severity | File | Lines | Rule | Message |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, d := range defects {
		fmt.Fprintf(&sb, "| %s | %s | %d-%d | %s | %s |\n",
			d.Severity, d.FilePath, d.LineStart, d.LineEnd, d.RuleID, markdownEscape(d.Message))
	}

	return []byte(sb.String()), nil
}

// markdownEscape keeps a defect message from breaking out of its table cell.
func markdownEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
