package analyzers

import (
	"context"
	"testing"

	"github.com/standardbeagle/lci-analyzer/internal/tools"
	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// assertDefectInvariants checks the universal properties every Defect must
// carry regardless of analyzer: a non-empty file_path that names an actual
// project file rather than the project root, and a line_start > 0. A cycle
// or project-scope defect still has to point somewhere concrete in the
// tree, never at "/proj" itself.
func assertDefectInvariants(t *testing.T, label string, root string, defects []types.Defect) {
	t.Helper()
	if len(defects) == 0 {
		t.Fatalf("%s: expected at least one defect to check invariants against", label)
	}
	for _, d := range defects {
		if d.FilePath == "" {
			t.Errorf("%s: defect %s has an empty file_path", label, d.RuleID)
		}
		if d.FilePath == root {
			t.Errorf("%s: defect %s has file_path equal to the project root %q, want a project-relative file", label, d.RuleID, root)
		}
		if d.LineStart <= 0 {
			t.Errorf("%s: defect %s has line_start %d, want > 0", label, d.RuleID, d.LineStart)
		}
	}
}

func TestAllAnalyzers_DefectsCarryFilePathAndLineInvariants(t *testing.T) {
	root := "/proj"
	ids := tools.NewDefectIDGenerator(root)

	t.Run("complexity", func(t *testing.T) {
		b := newStoreBuilder()
		var cases []uint32
		for i := 0; i < 5; i++ {
			cases = append(cases, b.node(unifiedast.KindCaseClause, 0))
		}
		switchStmt := b.node(unifiedast.KindSwitchStmt, 0, cases...)
		b.node(unifiedast.KindFunctionDecl, 0, switchStmt)
		b.store.Finalize()

		proj := &Project{
			Root: root,
			Files: []*ParsedFile{
				{Path: "/proj/big.go", Language: types.LangGo, Content: []byte("func tooComplex() {}\n"), Store: b.store},
			},
		}
		defects, err := NewComplexityAnalyzer(3, ids).Analyze(context.Background(), proj)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertDefectInvariants(t, "complexity", root, defects)
	})

	t.Run("duplicate", func(t *testing.T) {
		src := "func add(a int, b int) int {\n  sum := a + b\n  return sum\n}\n"
		proj := &Project{
			Root: root,
			Files: []*ParsedFile{
				{Path: "/proj/a.go", Language: types.LangGo, Content: []byte(src), Store: buildFunctionStore(src)},
				{Path: "/proj/b.go", Language: types.LangGo, Content: []byte(src), Store: buildFunctionStore(src)},
			},
		}
		defects, err := NewDuplicateAnalyzer(1, 3, 0.85, ids).Analyze(context.Background(), proj)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertDefectInvariants(t, "duplicate", root, defects)
	})

	t.Run("satd", func(t *testing.T) {
		content := "// TODO fix\n/* FIXME later */\n"
		store := buildCommentStore(content, []string{"// TODO fix", "/* FIXME later */"})
		proj := &Project{
			Root: root,
			Files: []*ParsedFile{
				{Path: "/proj/a.go", Language: types.LangGo, Content: []byte(content), Store: store},
			},
		}
		defects, err := NewSATDAnalyzer(ids).Analyze(context.Background(), proj)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertDefectInvariants(t, "satd", root, defects)
	})

	t.Run("deadcode", func(t *testing.T) {
		content := "package p\nfunc used() {}\nfunc definitelyDead() {}\nfunc main() { used() }\n"
		store := buildDeadCodeStore(content, []funcSpec{
			{name: "used"},
			{name: "definitelyDead"},
			{name: "main", calls: []string{"used"}},
		})
		proj := &Project{
			Root: root,
			Files: []*ParsedFile{
				{Path: "/proj/a.go", Language: types.LangGo, Content: []byte(content), Store: store},
			},
		}
		defects, err := NewDeadCodeAnalyzer(ids).Analyze(context.Background(), proj)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertDefectInvariants(t, "deadcode", root, defects)
	})

	t.Run("dependency", func(t *testing.T) {
		contentA := `import "proj/modb/b"` + "\n"
		contentB := `import "proj/moda/a"` + "\n"
		proj := &Project{
			Root: root,
			Files: []*ParsedFile{
				{Path: "/proj/moda/a.go", Language: types.LangGo, Content: []byte(contentA), Store: buildImportStore(contentA, []string{"proj/modb/b"})},
				{Path: "/proj/modb/b.go", Language: types.LangGo, Content: []byte(contentB), Store: buildImportStore(contentB, []string{"proj/moda/a"})},
			},
		}
		defects, err := NewDependencyAnalyzer(ids).Analyze(context.Background(), proj)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertDefectInvariants(t, "dependency", root, defects)
	})

	t.Run("defectprob", func(t *testing.T) {
		straightLineStore := func() *unifiedast.NodeStore {
			b := newStoreBuilder()
			b.node(unifiedast.KindFunctionDecl, 0)
			b.store.Finalize()
			return b.store
		}
		bComplex := newStoreBuilder()
		if1 := bComplex.node(unifiedast.KindIfStmt, 0)
		if2 := bComplex.node(unifiedast.KindIfStmt, 0, if1)
		if3 := bComplex.node(unifiedast.KindIfStmt, 0, if2)
		bComplex.node(unifiedast.KindFunctionDecl, 0, if3)
		bComplex.store.Finalize()

		proj := &Project{
			Root: root,
			Files: []*ParsedFile{
				{Path: "/proj/simple1.go", Language: types.LangGo, Content: []byte("func a() {}\n"), Store: straightLineStore()},
				{Path: "/proj/simple2.go", Language: types.LangGo, Content: []byte("func b() {}\n"), Store: straightLineStore()},
				{Path: "/proj/simple3.go", Language: types.LangGo, Content: []byte("func c() {}\n"), Store: straightLineStore()},
				{Path: "/proj/complex.go", Language: types.LangGo, Content: []byte("func branchy() {}\n"), Store: bComplex.store},
			},
		}
		defects, err := NewDefectProbabilityAnalyzer(ids).Analyze(context.Background(), proj)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertDefectInvariants(t, "defectprob", root, defects)
	})

	t.Run("bigoh", func(t *testing.T) {
		f := buildBigOFile("/proj/a.go", "bubbleSort", 2, []string{"swap"})
		proj := &Project{Root: root, Files: []*ParsedFile{f}}
		defects, err := NewBigOAnalyzer(ids).Analyze(context.Background(), proj)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertDefectInvariants(t, "bigoh", root, defects)
	})
}
