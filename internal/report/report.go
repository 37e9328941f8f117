// Package report projects a types.DefectReport into one of the engine's
// output formats. JSON is canonical — every other formatter is a read-only
// view over the same data, never a second source of truth, and never
// invents a field the report doesn't already carry.
package report

import (
	"fmt"

	"github.com/standardbeagle/lci-analyzer/internal/types"
)

// Format names one of the supported output projections.
type Format string

const (
	FormatJSON     Format = "json"
	FormatSARIF    Format = "sarif"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatText     Format = "text"
)

// Render dispatches to the formatter matching f, returning the rendered
// bytes or an error if f names an unsupported format.
func Render(rpt *types.DefectReport, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return JSON(rpt)
	case FormatSARIF:
		return SARIF(rpt)
	case FormatMarkdown:
		return Markdown(rpt)
	case FormatCSV:
		return CSV(rpt)
	case FormatText:
		return Text(rpt)
	default:
		return nil, fmt.Errorf("report: unsupported format %q", f)
	}
}
