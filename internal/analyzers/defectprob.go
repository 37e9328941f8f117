package analyzers

import (
	"context"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/standardbeagle/lci-analyzer/internal/tools"
	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// DefectProbabilityWeights holds the per-input weights of the composite
// score, mirroring teacher's semantic.ScoreLayers: one float64 field per
// signal, a package-level Default instance, and a weighted sum rather than
// an average so each input's contribution is independently tunable.
type DefectProbabilityWeights struct {
	ComplexityWeight  float64
	ChurnWeight       float64
	DuplicationWeight float64
	CouplingWeight    float64
	NameQualityWeight float64
	CoverageGapWeight float64
}

// DefaultDefectProbabilityWeights matches spec.md §4.4's input list order;
// complexity and churn are weighted heaviest since they are the strongest
// known defect predictors in the literature this engine follows, coverage
// gap lightest since it is the weakest (approximated) signal available.
var DefaultDefectProbabilityWeights = DefectProbabilityWeights{
	ComplexityWeight:  0.30,
	ChurnWeight:       0.25,
	DuplicationWeight: 0.15,
	CouplingWeight:    0.15,
	NameQualityWeight: 0.10,
	CoverageGapWeight: 0.05,
}

// lowQualityNames anchors the name-quality signal: identifiers that read as
// close to one of these (by stemmed Jaro-Winkler similarity) are penalized
// as low-information names, the same fuzzy-match primitive duplicate.go
// already uses for clone detection.
var lowQualityNames = []string{"data", "temp", "tmp", "val", "obj", "thing", "stuff", "foo", "bar", "item", "info"}

// DefectProbabilityAnalyzer computes a weighted composite defect-risk score
// per file from normalized complexity/churn/duplication/coupling/
// name-quality/coverage-gap inputs, per spec.md §4.4, then bands each
// file's score via empirical CDF interpolation over the project's own
// score distribution (so confidence reflects standing relative to this
// project, not an arbitrary absolute cutoff).
type DefectProbabilityAnalyzer struct {
	IDs     *tools.DefectIDGenerator
	Weights DefectProbabilityWeights
	// Churn is an optional, pre-computed normalized [0,1] churn signal per
	// file path (from internal/git.NormalizedChurn). The analyzer itself
	// never shells out to git — that stays the orchestrator's concern, so
	// this analyzer is a pure function of its inputs and testable without
	// a repository on disk.
	Churn map[string]float64
}

func NewDefectProbabilityAnalyzer(ids *tools.DefectIDGenerator) *DefectProbabilityAnalyzer {
	return &DefectProbabilityAnalyzer{IDs: ids, Weights: DefaultDefectProbabilityWeights}
}

func (a *DefectProbabilityAnalyzer) Category() types.Category { return types.CategoryDefectRisk }
func (a *DefectProbabilityAnalyzer) SupportsIncremental() bool { return false }

type fileSignals struct {
	file        *ParsedFile
	complexity  float64
	duplication float64
	coupling    float64
	nameQuality float64
	coverageGap float64
	churn       float64
}

func (a *DefectProbabilityAnalyzer) Analyze(ctx context.Context, proj *Project) ([]types.Defect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	graph := NewDependencyGraph(proj)
	fanIn, fanOut := graph.FanIn(), graph.FanOut()

	testedFiles := make(map[string]bool)
	for _, f := range proj.Files {
		if satdTestFileHints.MatchString(f.Path) {
			testedFiles[correspondingSourceFile(f.Path)] = true
		}
	}

	signals := make([]fileSignals, 0, len(proj.Files))
	for _, f := range proj.Files {
		if f.Store == nil {
			continue
		}
		sig := fileSignals{file: f}
		sig.complexity = averageCyclomatic(f.Store)
		sig.duplication = exactDuplicateRatio(f.Store)
		sig.coupling = float64(fanIn[f.Path] + fanOut[f.Path])
		sig.nameQuality = nameQualityGap(f)
		if satdTestFileHints.MatchString(f.Path) {
			sig.coverageGap = 0
		} else if testedFiles[f.Path] {
			sig.coverageGap = 0
		} else {
			sig.coverageGap = 1
		}
		sig.churn = a.Churn[f.Path]
		signals = append(signals, sig)
	}

	normalize(signals, func(s *fileSignals) *float64 { return &s.complexity })
	normalize(signals, func(s *fileSignals) *float64 { return &s.coupling })

	scores := make([]float64, len(signals))
	for i, sig := range signals {
		scores[i] = a.Weights.ComplexityWeight*sig.complexity +
			a.Weights.ChurnWeight*sig.churn +
			a.Weights.DuplicationWeight*sig.duplication +
			a.Weights.CouplingWeight*sig.coupling +
			a.Weights.NameQualityWeight*sig.nameQuality +
			a.Weights.CoverageGapWeight*sig.coverageGap
	}

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)

	var defects []types.Defect
	for i, sig := range signals {
		band := empiricalCDFBand(sorted, scores[i])
		if band == "low" {
			continue
		}

		severity := types.SeverityMedium
		if band == "high" {
			severity = types.SeverityHigh
		}

		// A file-level finding has no narrower span, so it is anchored at line 1.
		defects = append(defects, types.Defect{
			ID:        a.IDs.GetDefectID(string(types.CategoryDefectRisk), "defect-probability", sig.file.Path, 1, 0),
			Severity:  severity,
			Category:  types.CategoryDefectRisk,
			FilePath:  sig.file.Path,
			LineStart: 1,
			LineEnd:   1,
			Message:   "elevated defect probability (" + band + " confidence band)",
			RuleID:    "defect-probability",
			Metrics: map[string]float64{
				"composite_score":    scores[i],
				"complexity_input":   sig.complexity,
				"churn_input":        sig.churn,
				"duplication_input":  sig.duplication,
				"coupling_input":     sig.coupling,
				"name_quality_input": sig.nameQuality,
				"coverage_gap_input": sig.coverageGap,
			},
		})
	}

	return defects, nil
}

// averageCyclomatic returns the mean cyclomatic complexity across every
// top-level function in store, 0 for a file with none.
func averageCyclomatic(store *unifiedast.NodeStore) float64 {
	fns := topLevelFunctions(store)
	if len(fns) == 0 {
		return 0
	}
	total := 0
	for _, idx := range fns {
		total += cyclomaticComplexity(store, idx)
	}
	return float64(total) / float64(len(fns))
}

// exactDuplicateRatio is the fraction of function-shaped nodes in store
// that share a subtree hash with another node anywhere in store — a cheap
// proxy for this file's contribution to project-wide duplication, reusing
// the same hashIndex the unified AST already maintains rather than
// re-running the full DuplicateAnalyzer pipeline.
func exactDuplicateRatio(store *unifiedast.NodeStore) float64 {
	fns := topLevelFunctions(store)
	if len(fns) == 0 {
		return 0
	}
	groups := store.DuplicateGroups()
	inGroup := make(map[uint32]bool)
	for _, idxs := range groups {
		for _, idx := range idxs {
			inGroup[idx] = true
		}
	}
	dup := 0
	for _, idx := range fns {
		if inGroup[idx] {
			dup++
		}
	}
	return float64(dup) / float64(len(fns))
}

// nameQualityGap returns the fraction of this file's declared names whose
// stemmed Jaro-Winkler similarity to a known low-information name reaches
// 0.85 — the same clone-similarity threshold duplicate.go uses, repurposed
// here to flag generic identifiers rather than generic code shapes.
func nameQualityGap(f *ParsedFile) float64 {
	root, ok := rootIndex(f.Store)
	if !ok {
		return 0
	}
	var names []string
	for kind := range declKinds {
		for _, idx := range findByKind(f.Store, root, kind) {
			if name := declName(f, idx); name != "" {
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		return 0
	}

	lowQuality := 0
	for _, name := range names {
		stemmed := stemText(strings.ToLower(name))
		for _, bad := range lowQualityNames {
			sim, err := edlib.StringsSimilarity(stemmed, bad, edlib.JaroWinkler)
			if err == nil && float64(sim) >= 0.85 {
				lowQuality++
				break
			}
		}
	}
	return float64(lowQuality) / float64(len(names))
}

// correspondingSourceFile maps a test file path to the source file path it
// is presumed to cover, by stripping the common _test/.test naming
// convention this package's satdTestFileHints already recognizes.
func correspondingSourceFile(testPath string) string {
	replacer := strings.NewReplacer(
		"_test.go", ".go",
		".test.ts", ".ts",
		".test.tsx", ".tsx",
		".test.js", ".js",
		".test.jsx", ".jsx",
	)
	return replacer.Replace(testPath)
}

// normalize scales the field selected by get across signals into [0,1] in
// place by dividing each value by the largest one. Churn/duplication/name-quality/coverage-gap inputs are
// already naturally bounded to [0,1]; only complexity and coupling are raw
// counts that need scaling to participate in the same weighted sum.
func normalize(signals []fileSignals, get func(*fileSignals) *float64) {
	if len(signals) == 0 {
		return
	}
	max := 0.0
	for i := range signals {
		if v := *get(&signals[i]); v > max {
			max = v
		}
	}
	if max == 0 {
		return
	}
	for i := range signals {
		p := get(&signals[i])
		*p = *p / max
	}
}

// empiricalCDFBand places score within the sorted project-wide score
// distribution and bands it by percentile: top decile is high confidence,
// top third is medium, everything else is low — matching spec.md's
// "confidence band via empirical CDF interpolation" rather than a fixed
// absolute threshold that would mean something different on every project.
func empiricalCDFBand(sorted []float64, score float64) string {
	if len(sorted) == 0 {
		return "low"
	}
	rank := sort.SearchFloat64s(sorted, score)
	percentile := float64(rank) / float64(len(sorted))
	switch {
	case percentile >= 0.90:
		return "high"
	case percentile >= 0.67:
		return "medium"
	default:
		return "low"
	}
}
