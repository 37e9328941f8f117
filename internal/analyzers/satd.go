package analyzers

import (
	"context"
	"regexp"
	"strings"

	"github.com/standardbeagle/lci-analyzer/internal/tools"
	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// SATDCategory classifies a self-admitted technical debt marker by what
// kind of debt the author flagged.
type SATDCategory string

const (
	SATDCategoryDesign         SATDCategory = "design"
	SATDCategoryDefect         SATDCategory = "defect"
	SATDCategoryRequirement    SATDCategory = "requirement"
	SATDCategoryImplementation SATDCategory = "implementation"
	SATDCategoryTest           SATDCategory = "test"
	SATDCategoryDocumentation  SATDCategory = "documentation"
)

// satdMarker pairs a recognized marker word with its category/severity and
// a compiled pattern matching it at the start of a comment's trimmed text
// (after stripping the comment delimiter itself).
type satdMarker struct {
	pattern  *regexp.Regexp
	category SATDCategory
	severity types.Severity
}

// satdMarkers is matched in order; the first marker whose pattern matches
// wins. Recognizes TODO/FIXME/HACK/XXX/OPTIMIZE per spec.md §4.4, each
// mapped to the category/severity its wording implies.
var satdMarkers = []satdMarker{
	{regexp.MustCompile(`(?i)^\s*FIXME\b`), SATDCategoryDefect, types.SeverityHigh},
	{regexp.MustCompile(`(?i)^\s*HACK\b`), SATDCategoryImplementation, types.SeverityMedium},
	{regexp.MustCompile(`(?i)^\s*XXX\b`), SATDCategoryDefect, types.SeverityMedium},
	{regexp.MustCompile(`(?i)^\s*OPTIMIZE\b`), SATDCategoryDesign, types.SeverityLow},
	{regexp.MustCompile(`(?i)^\s*TODO\b`), SATDCategoryImplementation, types.SeverityLow},
}

// satdTestFileHints downgrades/recategorizes markers found in files whose
// path looks like a test file, matching spec.md's Test category.
var satdTestFileHints = regexp.MustCompile(`(?i)(_test\.go|\.test\.[jt]sx?|test_.*\.py|.*_test\.py|Tests?\.java|Tests?\.cs)$`)

// SATDAnalyzer scans every KindComment node's text for self-admitted
// technical debt markers. It is a total function over comment text: any
// text that doesn't match a marker pattern is simply not SATD, never an
// error.
type SATDAnalyzer struct {
	IDs *tools.DefectIDGenerator
}

func NewSATDAnalyzer(ids *tools.DefectIDGenerator) *SATDAnalyzer {
	return &SATDAnalyzer{IDs: ids}
}

func (a *SATDAnalyzer) Category() types.Category { return types.CategorySATD }
func (a *SATDAnalyzer) SupportsIncremental() bool { return true }

func (a *SATDAnalyzer) Analyze(ctx context.Context, proj *Project) ([]types.Defect, error) {
	var defects []types.Defect

	for _, f := range proj.Files {
		if err := ctx.Err(); err != nil {
			return defects, err
		}
		if f.Store == nil {
			continue
		}

		root, ok := rootIndex(f.Store)
		if !ok {
			continue
		}

		isTestFile := satdTestFileHints.MatchString(f.Path)

		for _, idx := range findByKind(f.Store, root, unifiedast.KindComment) {
			n, _ := f.Store.GetNode(idx)
			if n.EndByte <= n.StartByte || int(n.EndByte) > len(f.Content) {
				continue
			}
			rawComment := string(f.Content[n.StartByte:n.EndByte])
			text := stripCommentDelimiters(rawComment)

			marker, ok := matchSATDMarker(text)
			if !ok {
				continue
			}
			category := marker.category
			if isTestFile {
				category = SATDCategoryTest
			}

			line := lineOf(f.Content, n.StartByte)
			defects = append(defects, types.Defect{
				ID:        a.IDs.GetDefectID(string(types.CategorySATD), string(category), f.Path, line, 0),
				Severity:  marker.severity,
				Category:  types.CategorySATD,
				FilePath:  f.Path,
				LineStart: line,
				LineEnd:   lineOf(f.Content, n.EndByte),
				Message:   strings.TrimSpace(text),
				RuleID:    string(category),
				Metrics:   map[string]float64{"severity_rank": float64(marker.severity.Rank())},
			})
		}
	}

	return defects, nil
}

func matchSATDMarker(commentText string) (satdMarker, bool) {
	for _, m := range satdMarkers {
		if m.pattern.MatchString(commentText) {
			return m, true
		}
	}
	return satdMarker{}, false
}

// stripCommentDelimiters removes the line/block comment syntax every
// supported language uses (//, #, /* */, /// , """ """) so marker
// patterns only ever need to match against the comment's own text.
func stripCommentDelimiters(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "///"):
		s = strings.TrimPrefix(s, "///")
	case strings.HasPrefix(s, "//"):
		s = strings.TrimPrefix(s, "//")
	case strings.HasPrefix(s, "/**"):
		s = strings.TrimPrefix(s, "/**")
		s = strings.TrimSuffix(s, "*/")
	case strings.HasPrefix(s, "/*"):
		s = strings.TrimPrefix(s, "/*")
		s = strings.TrimSuffix(s, "*/")
	case strings.HasPrefix(s, "#"):
		s = strings.TrimPrefix(s, "#")
	case strings.HasPrefix(s, `"""`) || strings.HasPrefix(s, "'''"):
		s = s[3:]
		s = strings.TrimSuffix(strings.TrimSuffix(s, `"""`), "'''")
	}
	return strings.TrimSpace(s)
}
