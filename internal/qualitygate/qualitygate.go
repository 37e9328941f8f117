// Package qualitygate evaluates a completed types.DefectReport against
// configured pass/fail thresholds, backing the CLI's quality-gate verb.
package qualitygate

import (
	"fmt"
	"math"

	"github.com/standardbeagle/lci-analyzer/internal/config"
	"github.com/standardbeagle/lci-analyzer/internal/types"
)

// Violation names one threshold a report failed.
type Violation struct {
	Rule    string  `json:"rule"`
	Limit   float64 `json:"limit"`
	Actual  float64 `json:"actual"`
	Message string  `json:"message"`
}

// Result is the outcome of evaluating a report against a Gate config.
type Result struct {
	Passed               bool        `json:"passed"`
	MaintainabilityScore float64     `json:"maintainability_score"`
	Violations           []Violation `json:"violations,omitempty"`
}

// Evaluate checks rpt against gate's thresholds. A report with at most
// gate.MaxCritical critical and gate.MaxHigh high defects and a
// maintainability score at or above gate.MinMaintainability passes;
// anything else is a listed Violation.
func Evaluate(rpt *types.DefectReport, gate config.Gate) Result {
	var violations []Violation

	critical := rpt.Summary.BySeverity[types.SeverityCritical]
	if critical > gate.MaxCritical {
		violations = append(violations, Violation{
			Rule:   "max_critical",
			Limit:  float64(gate.MaxCritical),
			Actual: float64(critical),
			Message: fmt.Sprintf("%d critical defect(s) exceed the allowed maximum of %d",
				critical, gate.MaxCritical),
		})
	}

	high := rpt.Summary.BySeverity[types.SeverityHigh]
	if high > gate.MaxHigh {
		violations = append(violations, Violation{
			Rule:   "max_high",
			Limit:  float64(gate.MaxHigh),
			Actual: float64(high),
			Message: fmt.Sprintf("%d high-severity defect(s) exceed the allowed maximum of %d",
				high, gate.MaxHigh),
		})
	}

	score := MaintainabilityScore(rpt)
	if score < gate.MinMaintainability {
		violations = append(violations, Violation{
			Rule:   "min_maintainability",
			Limit:  gate.MinMaintainability,
			Actual: score,
			Message: fmt.Sprintf("maintainability score %.1f is below the required minimum of %.1f",
				score, gate.MinMaintainability),
		})
	}

	return Result{
		Passed:               len(violations) == 0,
		MaintainabilityScore: score,
		Violations:           violations,
	}
}

// MaintainabilityScore derives a 0-100 project-wide maintainability proxy
// from a DefectReport, in the same normalize-and-clamp spirit as the
// teacher's Microsoft-maintainability-index calculation, but built from
// what a DefectReport actually carries (per-file defect counts and
// severity weights) rather than Halstead volume and per-function lines of
// code, which no registered analyzer computes. Starts at 100 and
// subtracts a severity-weighted penalty per file analyzed, so a project
// with many clean files and a few bad ones still scores reasonably.
func MaintainabilityScore(rpt *types.DefectReport) float64 {
	if rpt.Metadata.TotalFilesAnalyzed == 0 {
		return 100
	}

	var weighted float64
	for _, d := range rpt.Defects {
		switch d.Severity {
		case types.SeverityCritical:
			weighted += 4
		case types.SeverityHigh:
			weighted += 3
		case types.SeverityMedium:
			weighted += 2
		case types.SeverityLow:
			weighted += 1
		}
	}

	density := weighted / float64(rpt.Metadata.TotalFilesAnalyzed)
	score := 100 - 10*math.Log1p(density)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
