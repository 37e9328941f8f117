package analyzers

import (
	"context"
	"testing"

	"github.com/standardbeagle/lci-analyzer/internal/tools"
	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

func TestAverageCyclomatic_SingleStraightLineFunctionIsOne(t *testing.T) {
	store := buildFunctionStore("func noop() {}\n")
	got := averageCyclomatic(store)
	if got != 1 {
		t.Errorf("expected average cyclomatic 1 for a single straight-line function, got %v", got)
	}
}

func TestExactDuplicateRatio_NoDuplicatesIsZero(t *testing.T) {
	src := "func add(a int, b int) int {\n  return a + b\n}\n"
	store := buildFunctionStore(src)
	// A lone function with no sibling occurrence of the same hash anywhere
	// in its own store is not part of any duplicate group.
	got := exactDuplicateRatio(store)
	if got != 0 {
		t.Errorf("expected 0 duplication ratio for a single unique function, got %v", got)
	}
}

func TestCorrespondingSourceFile_StripsTestSuffix(t *testing.T) {
	cases := map[string]string{
		"/proj/widget_test.go":  "/proj/widget.go",
		"/proj/widget.test.ts":  "/proj/widget.ts",
		"/proj/widget.test.tsx": "/proj/widget.tsx",
	}
	for in, want := range cases {
		if got := correspondingSourceFile(in); got != want {
			t.Errorf("correspondingSourceFile(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEmpiricalCDFBand_TopScoreIsHighConfidence(t *testing.T) {
	sorted := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	if band := empiricalCDFBand(sorted, 1.0); band != "high" {
		t.Errorf("expected the top score to band as high, got %q", band)
	}
	if band := empiricalCDFBand(sorted, 0.1); band != "low" {
		t.Errorf("expected the bottom score to band as low, got %q", band)
	}
}

func TestDefectProbabilityAnalyzer_HigherComplexityFileScoresHigher(t *testing.T) {
	straightLineStore := func() *unifiedast.NodeStore {
		b := newStoreBuilder()
		fn := b.node(unifiedast.KindFunctionDecl, 0)
		_ = fn
		b.store.Finalize()
		return b.store
	}

	bComplex := newStoreBuilder()
	if1 := bComplex.node(unifiedast.KindIfStmt, 0)
	if2 := bComplex.node(unifiedast.KindIfStmt, 0, if1)
	if3 := bComplex.node(unifiedast.KindIfStmt, 0, if2)
	fnComplex := bComplex.node(unifiedast.KindFunctionDecl, 0, if3)
	_ = fnComplex
	bComplex.store.Finalize()

	// Three flat, branch-free files keep the rest of the distribution's
	// scores low so the one genuinely nested-if file lands above the
	// empirical CDF's "medium" percentile rather than tying with its peers.
	proj := &Project{
		Root: "/proj",
		Files: []*ParsedFile{
			{Path: "/proj/simple1.go", Language: types.LangGo, Content: []byte("func a() {}\n"), Store: straightLineStore()},
			{Path: "/proj/simple2.go", Language: types.LangGo, Content: []byte("func b() {}\n"), Store: straightLineStore()},
			{Path: "/proj/simple3.go", Language: types.LangGo, Content: []byte("func c() {}\n"), Store: straightLineStore()},
			{Path: "/proj/complex.go", Language: types.LangGo, Content: []byte("func branchy() {}\n"), Store: bComplex.store},
		},
	}

	analyzer := NewDefectProbabilityAnalyzer(tools.NewDefectIDGenerator("/proj"))
	defects, err := analyzer.Analyze(context.Background(), proj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(defects) == 0 {
		t.Fatal("expected at least one elevated-risk defect among a skewed complexity distribution")
	}
	for _, d := range defects {
		if d.Category != types.CategoryDefectRisk {
			t.Errorf("unexpected category: %v", d.Category)
		}
		if d.FilePath != "/proj/complex.go" {
			t.Errorf("expected only the higher-complexity file to be flagged, got %q", d.FilePath)
		}
	}
}
