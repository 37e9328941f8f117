package report

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/standardbeagle/lci-analyzer/internal/types"
)

// csvHeader names every column CSV emits, in order. No example repo in the
// retrieval pack writes CSV, so this uses the standard library's
// encoding/csv directly rather than following a pack precedent.
var csvHeader = []string{
	"id", "severity", "category", "file_path", "line_start", "line_end",
	"column_start", "column_end", "rule_id", "message", "fix_suggestion",
}

// CSV renders rpt as one row per defect, spreadsheet-friendly. Summary and
// metadata are not represented — a CSV has no natural place for them — so
// this projection covers only rpt.Defects, per the format's intended use.
func CSV(rpt *types.DefectReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, d := range rpt.Defects {
		row := []string{
			d.ID,
			string(d.Severity),
			string(d.Category),
			d.FilePath,
			strconv.Itoa(d.LineStart),
			strconv.Itoa(d.LineEnd),
			intPtrString(d.ColumnStart),
			intPtrString(d.ColumnEnd),
			d.RuleID,
			d.Message,
			d.FixSuggestion,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func intPtrString(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
