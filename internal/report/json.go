package report

import (
	"encoding/json"

	"github.com/standardbeagle/lci-analyzer/internal/types"
)

// JSON renders rpt in its canonical, schema-stable form. Every field tag
// on types.DefectReport is already the wire format other formatters project
// subsets of, so this is a direct marshal.
func JSON(rpt *types.DefectReport) ([]byte, error) {
	return json.MarshalIndent(rpt, "", "  ")
}
