package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/lci-analyzer/internal/types"
)

// Text renders rpt as a plain-text summary, grounded on the teacher's
// CodebaseStats.FormatAsText section layout (a banner, a rule under each
// heading, one aligned line per stat) but over defect data instead of
// codebase-wide symbol stats.
func Text(rpt *types.DefectReport) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("==================================================================\n")
	sb.WriteString("  ANALYSIS REPORT\n")
	sb.WriteString("==================================================================\n\n")

	sb.WriteString("SUMMARY\n")
	sb.WriteString("------------------------------------------------------------------\n")
	fmt.Fprintf(&sb, "  Tool:               %s %s\n", rpt.Metadata.Tool, rpt.Metadata.Version)
	fmt.Fprintf(&sb, "  Project Root:       %s\n", rpt.Metadata.ProjectRoot)
	fmt.Fprintf(&sb, "  Files Analyzed:     %d\n", rpt.Metadata.TotalFilesAnalyzed)
	fmt.Fprintf(&sb, "  Duration:           %dms\n", rpt.Metadata.AnalysisDurationMS)
	fmt.Fprintf(&sb, "  Total Defects:      %d\n", rpt.Summary.TotalDefects)
	if rpt.Metadata.Cancelled {
		sb.WriteString("  Run was cancelled before completion\n")
	}

	sb.WriteString("\nSEVERITY\n")
	sb.WriteString("------------------------------------------------------------------\n")
	for _, sev := range []types.Severity{types.SeverityCritical, types.SeverityHigh, types.SeverityMedium, types.SeverityLow} {
		fmt.Fprintf(&sb, "  %-10s %5d\n", sev, rpt.Summary.BySeverity[sev])
	}

	if len(rpt.Metadata.AnalyzerDiagnostics) > 0 {
		sb.WriteString("\nANALYZER DIAGNOSTICS\n")
		sb.WriteString("------------------------------------------------------------------\n")
		for _, d := range rpt.Metadata.AnalyzerDiagnostics {
			line := fmt.Sprintf("  %-20s %s", d.Category, d.Outcome)
			if d.Detail != "" {
				line += ": " + d.Detail
			}
			sb.WriteString(line + "\n")
		}
	}

	if len(rpt.Summary.HotspotFiles) > 0 {
		sb.WriteString("\nHOTSPOT FILES\n")
		sb.WriteString("------------------------------------------------------------------\n")
		for _, h := range rpt.Summary.HotspotFiles {
			fmt.Fprintf(&sb, "  %-50s %5d defects  %6.1f\n", h.Path, h.DefectCount, h.SeverityScore)
		}
	}

	sb.WriteString("\nDEFECTS\n")
	sb.WriteString("------------------------------------------------------------------\n")
	if len(rpt.Defects) == 0 {
		sb.WriteString("  none\n")
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

	for _, d := range defects {
		fmt.Fprintf(&sb, "  [%s] %s:%d-%d %s — %s\n",
			d.Severity, d.FilePath, d.LineStart, d.LineEnd, d.RuleID, d.Message)
	}

	return []byte(sb.String()), nil
}
