package analyzers

import (
	"context"
	"testing"

	"github.com/standardbeagle/lci-analyzer/internal/tools"
	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// buildImportStore builds a single-file store whose root has one
// KindImportDecl child per entry in imports, each spanning the bytes of
// its quoted literal within content.
func buildImportStore(content string, imports []string) *unifiedast.NodeStore {
	s := unifiedast.NewNodeStore()

	rootIdx, err := s.Reserve()
	if err != nil {
		panic(err)
	}

	var childIdx []uint32
	offset := 0
	for _, imp := range imports {
		start := indexOfFrom(content, imp, offset)
		n := unifiedast.Node{ParentIdx: rootIdx, StartByte: uint32(start), EndByte: uint32(start + len(imp))}
		n.SetKind(unifiedast.KindImportDecl)
		idx, err := s.Insert(n, unifiedast.HashBytes([]byte(imp)))
		if err != nil {
			panic(err)
		}
		childIdx = append(childIdx, idx)
		offset = start + len(imp)
	}

	for i, idx := range childIdx {
		n, _ := s.GetNode(idx)
		if i+1 < len(childIdx) {
			n.NextSiblingIdx = childIdx[i+1]
		}
		if err := s.Fill(idx, n, unifiedast.HashBytes([]byte{byte(idx)})); err != nil {
			panic(err)
		}
	}

	root := unifiedast.Node{ParentIdx: unifiedast.NoIndex, StartByte: 0, EndByte: uint32(len(content))}
	if len(childIdx) > 0 {
		root.FirstChildIdx = childIdx[0]
	}
	root.SetKind(unifiedast.KindFile)
	if err := s.Fill(rootIdx, root, unifiedast.HashBytes([]byte(content))); err != nil {
		panic(err)
	}

	s.Finalize()
	return s
}

func TestNewDependencyGraph_ResolvesImportToProjectFile(t *testing.T) {
	contentA := `import "proj/b"` + "\n"
	contentB := "package b\n"

	proj := &Project{
		Root: "/proj",
		Files: []*ParsedFile{
			{Path: "/proj/a.go", Language: types.LangGo, Content: []byte(contentA), Store: buildImportStore(contentA, []string{"proj/b"})},
			{Path: "/proj/b.go", Language: types.LangGo, Content: []byte(contentB), Store: buildImportStore(contentB, nil)},
		},
	}

	g := NewDependencyGraph(proj)
	if len(g.Edges) != 1 {
		t.Fatalf("expected exactly 1 edge, got %d: %+v", len(g.Edges), g.Edges)
	}
	if g.Edges[0].From != "/proj/a.go" || g.Edges[0].To != "/proj/b.go" {
		t.Errorf("unexpected edge: %+v", g.Edges[0])
	}
	if g.Edges[0].Type != EdgeImports {
		t.Errorf("expected EdgeImports, got %v", g.Edges[0].Type)
	}
}

func TestNewDependencyGraph_UnresolvedImportDropped(t *testing.T) {
	content := `import "github.com/external/pkg"` + "\n"

	proj := &Project{
		Root: "/proj",
		Files: []*ParsedFile{
			{Path: "/proj/a.go", Language: types.LangGo, Content: []byte(content), Store: buildImportStore(content, []string{"github.com/external/pkg"})},
		},
	}

	g := NewDependencyGraph(proj)
	if len(g.Edges) != 0 {
		t.Errorf("expected no edges for an unresolvable external import, got %+v", g.Edges)
	}
}

func TestFindModuleCycles_DetectsTwoModuleCycle(t *testing.T) {
	g := &DependencyGraph{
		Nodes: []string{"/proj/mod1/a.go", "/proj/mod2/b.go"},
		Edges: []Edge{
			{From: "/proj/mod1/a.go", To: "/proj/mod2/b.go", Type: EdgeImports},
			{From: "/proj/mod2/b.go", To: "/proj/mod1/a.go", Type: EdgeImports},
		},
	}

	cycles := g.FindModuleCycles("/proj")
	if len(cycles) != 1 {
		t.Fatalf("expected exactly 1 module cycle, got %d: %+v", len(cycles), cycles)
	}
	if len(cycles[0].Modules) != 2 {
		t.Errorf("expected a 2-module cycle, got %+v", cycles[0].Modules)
	}
}

func TestFindModuleCycles_NoCycleForAcyclicImports(t *testing.T) {
	g := &DependencyGraph{
		Nodes: []string{"/proj/mod1/a.go", "/proj/mod2/b.go"},
		Edges: []Edge{
			{From: "/proj/mod1/a.go", To: "/proj/mod2/b.go", Type: EdgeImports},
		},
	}

	cycles := g.FindModuleCycles("/proj")
	if len(cycles) != 0 {
		t.Errorf("expected no cycles, got %+v", cycles)
	}
}

func TestDependencyAnalyzer_FlagsImportCycleAsDefect(t *testing.T) {
	contentA := `import "proj/modb/b"` + "\n"
	contentB := `import "proj/moda/a"` + "\n"

	proj := &Project{
		Root: "/proj",
		Files: []*ParsedFile{
			{Path: "/proj/moda/a.go", Language: types.LangGo, Content: []byte(contentA), Store: buildImportStore(contentA, []string{"proj/modb/b"})},
			{Path: "/proj/modb/b.go", Language: types.LangGo, Content: []byte(contentB), Store: buildImportStore(contentB, []string{"proj/moda/a"})},
		},
	}

	analyzer := NewDependencyAnalyzer(tools.NewDefectIDGenerator("/proj"))
	defects, err := analyzer.Analyze(context.Background(), proj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defects) != 1 {
		t.Fatalf("expected exactly 1 import-cycle defect, got %d: %+v", len(defects), defects)
	}
	if defects[0].Category != types.CategoryDependency {
		t.Errorf("expected category %q, got %q", types.CategoryDependency, defects[0].Category)
	}
	if defects[0].Severity != types.SeverityHigh {
		t.Errorf("expected high severity, got %v", defects[0].Severity)
	}
}

func TestDependencyAnalyzer_NoDefectForAcyclicProject(t *testing.T) {
	contentA := `import "proj/modb/b"` + "\n"
	contentB := "package b\n"

	proj := &Project{
		Root: "/proj",
		Files: []*ParsedFile{
			{Path: "/proj/moda/a.go", Language: types.LangGo, Content: []byte(contentA), Store: buildImportStore(contentA, []string{"proj/modb/b"})},
			{Path: "/proj/modb/b.go", Language: types.LangGo, Content: []byte(contentB), Store: buildImportStore(contentB, nil)},
		},
	}

	analyzer := NewDependencyAnalyzer(tools.NewDefectIDGenerator("/proj"))
	defects, err := analyzer.Analyze(context.Background(), proj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defects) != 0 {
		t.Errorf("expected no defects for an acyclic project, got %+v", defects)
	}
}

func TestPageRank_SumsToApproximatelyOne(t *testing.T) {
	g := &DependencyGraph{
		Nodes: []string{"a", "b", "c"},
		Edges: []Edge{
			{From: "a", To: "b", Type: EdgeImports},
			{From: "b", To: "c", Type: EdgeImports},
			{From: "c", To: "a", Type: EdgeImports},
		},
	}

	ranks := g.PageRank(0.85, 50)
	sum := 0.0
	for _, r := range ranks {
		sum += r
	}
	if sum < 0.99 || sum > 1.01 {
		t.Errorf("expected page rank mass to sum to ~1, got %v", sum)
	}
}

func TestFanInFanOut_CountsEdgesPerNode(t *testing.T) {
	g := &DependencyGraph{
		Nodes: []string{"a", "b", "c"},
		Edges: []Edge{
			{From: "a", To: "b", Type: EdgeImports},
			{From: "c", To: "b", Type: EdgeImports},
		},
	}

	fanIn := g.FanIn()
	if fanIn["b"] != 2 {
		t.Errorf("expected b to have fan-in 2, got %d", fanIn["b"])
	}
	fanOut := g.FanOut()
	if fanOut["a"] != 1 {
		t.Errorf("expected a to have fan-out 1, got %d", fanOut["a"])
	}
}
