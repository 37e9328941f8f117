// Package ranking aggregates a flat defect list into per-file scores and
// a report summary. Every function here is pure: no global state, no I/O,
// no dependency on the orchestrator that produced the defects — the same
// "derive, then sort a slice" shape as teacher's
// internal/metrics.CodebaseStats formatting helpers, generalized from
// language/symbol distributions to per-file defect severity.
package ranking

import (
	"sort"

	"github.com/standardbeagle/lci-analyzer/internal/types"
)

// FileScore is one file's aggregated defect standing: how many defects it
// carries and their combined severity weight (types.Severity.Rank summed
// across every defect in that file).
type FileScore struct {
	Path          string
	DefectCount   int
	SeverityScore float64
	Rank          int
}

// ScoreFiles aggregates defects by FilePath into one FileScore per file,
// sorted by (SeverityScore desc, Path asc) via sort.SliceStable so files
// tied on score keep a deterministic, path-ordered position rather than
// whatever order the underlying defect slice happened to list them in.
// Rank is left at zero — callers needing it call TopN, which assigns rank
// after any truncation.
func ScoreFiles(defects []types.Defect) []FileScore {
	byPath := make(map[string]*FileScore)
	var order []string
	for _, d := range defects {
		fs, ok := byPath[d.FilePath]
		if !ok {
			fs = &FileScore{Path: d.FilePath}
			byPath[d.FilePath] = fs
			order = append(order, d.FilePath)
		}
		fs.DefectCount++
		fs.SeverityScore += float64(d.Severity.Rank())
	}

	out := make([]FileScore, 0, len(order))
	for _, path := range order {
		out = append(out, *byPath[path])
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SeverityScore != out[j].SeverityScore {
			return out[i].SeverityScore > out[j].SeverityScore
		}
		return out[i].Path < out[j].Path
	})

	return out
}

// TopN returns at most the first n entries of an already-sorted scores
// slice, with Rank assigned 1..len(result) after truncation — a hotspot
// list's rank always starts at 1 regardless of how many lower-ranked
// files were cut, rather than preserving each file's rank within the
// full untruncated population. n <= 0 means no truncation.
func TopN(scores []FileScore, n int) []FileScore {
	if n > 0 && n < len(scores) {
		scores = scores[:n]
	}
	out := make([]FileScore, len(scores))
	for i, s := range scores {
		s.Rank = i + 1
		out[i] = s
	}
	return out
}

// Hotspots projects the top-N ranked files into the report summary's
// hotspot_files shape (spec.md §6).
func Hotspots(defects []types.Defect, topN int) []types.HotspotFile {
	ranked := TopN(ScoreFiles(defects), topN)
	out := make([]types.HotspotFile, len(ranked))
	for i, r := range ranked {
		out[i] = types.HotspotFile{
			Path:          r.Path,
			DefectCount:   r.DefectCount,
			SeverityScore: r.SeverityScore,
		}
	}
	return out
}

// Summarize builds a full ReportSummary from a flat defect list: total
// count, per-severity and per-category tallies, and the top-N hotspot
// files. hotspotTopN <= 0 means every file with at least one defect is
// included.
func Summarize(defects []types.Defect, hotspotTopN int) types.ReportSummary {
	summary := types.ReportSummary{
		TotalDefects: len(defects),
		BySeverity:   make(map[types.Severity]int),
		ByCategory:   make(map[types.Category]int),
		HotspotFiles: Hotspots(defects, hotspotTopN),
	}
	for _, d := range defects {
		summary.BySeverity[d.Severity]++
		summary.ByCategory[d.Category]++
	}
	return summary
}

// FileIndex builds the report's file_index map: every defect ID grouped
// by the file path it was found in, preserving each file's defects in
// their original relative order.
func FileIndex(defects []types.Defect) map[string][]string {
	index := make(map[string][]string)
	for _, d := range defects {
		index[d.FilePath] = append(index[d.FilePath], d.ID)
	}
	return index
}
