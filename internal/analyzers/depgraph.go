package analyzers

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/standardbeagle/lci-analyzer/internal/symbollinker"
	"github.com/standardbeagle/lci-analyzer/internal/tools"
	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// EdgeType classifies a dependency-graph edge per spec.md §4.1's typed
// edge set.
type EdgeType string

const (
	EdgeImports    EdgeType = "imports"
	EdgeCalls      EdgeType = "calls"
	EdgeInherits   EdgeType = "inherits"
	EdgeImplements EdgeType = "implements"
	EdgeUses       EdgeType = "uses"
)

// Edge is one directed dependency between two files. Line is the
// 1-based line of the declaration that produced the edge (the import
// statement, for EdgeImports); it is 0 when no declaration site applies.
type Edge struct {
	From   string
	To     string
	Type   EdgeType
	Weight float64
	Line   int
}

// DependencyGraph is one project's file-level dependency graph: nodes are
// file paths, edges are typed and weighted. No self-loops are ever added.
type DependencyGraph struct {
	Nodes []string
	Edges []Edge
}

// importPathPattern extracts a quoted path from an import-like
// declaration's raw text, covering Go (`"x/y"`), JS/TS/Python
// (`'x/y'`/`"x/y"`), and Rust/Java/C#/C++/PHP path-or-module strings —
// every supported language's import statement carries its target in a
// quoted literal somewhere in the declaration.
var importPathPattern = regexp.MustCompile(`["']([^"']+)["']`)

// NewDependencyGraph builds the project's import graph: one node per
// file, one edge per resolved import. Unresolved imports (external
// packages, stdlib) are dropped rather than guessed at — spec.md's graph
// only models edges between nodes that are actually in the project.
func NewDependencyGraph(proj *Project) *DependencyGraph {
	g := &DependencyGraph{}
	for _, f := range proj.Files {
		g.Nodes = append(g.Nodes, f.Path)
	}
	sort.Strings(g.Nodes)

	for _, f := range proj.Files {
		if f.Store == nil {
			continue
		}
		root, ok := rootIndex(f.Store)
		if !ok {
			continue
		}
		for _, idx := range findByKind(f.Store, root, unifiedast.KindImportDecl) {
			n, _ := f.Store.GetNode(idx)
			if n.EndByte <= n.StartByte || int(n.EndByte) > len(f.Content) {
				continue
			}
			raw := string(f.Content[n.StartByte:n.EndByte])
			m := importPathPattern.FindStringSubmatch(raw)
			if m == nil {
				continue
			}
			target := resolveImport(m[1], f.Path, proj.Files)
			if target == "" || target == f.Path {
				continue
			}
			g.Edges = append(g.Edges, Edge{From: f.Path, To: target, Type: EdgeImports, Weight: 1, Line: lineOf(f.Content, n.StartByte)})
		}
	}

	g.Edges = append(g.Edges, symbolEdges(proj)...)
	return g
}

// symbolEdges resolves every call site and type reference against a
// project-wide symbol table, populating the Calls/Inherits/Implements/Uses
// edge types the import-only pass above never touches. See
// internal/symbollinker for the resolution engine.
func symbolEdges(proj *Project) []Edge {
	var files []symbollinker.FileInput
	for _, f := range proj.Files {
		files = append(files, symbollinker.FileInput{Path: f.Path, Content: f.Content, Store: f.Store})
	}
	table := symbollinker.BuildTable(files)
	links := symbollinker.Link(files, table)

	edges := make([]Edge, 0, len(links))
	for _, l := range links {
		edges = append(edges, Edge{From: l.From, To: l.To, Type: EdgeType(l.Type), Weight: 1})
	}
	return edges
}

// resolveImport matches an import literal against every project file path
// using the teacher's own suffix-overlap heuristic (dependency_tracker.go's
// importsMatch): a real module resolver needs per-language path rules this
// engine doesn't implement, so this stays a best-effort match rather than
// a false claim of precision.
func resolveImport(importPath, fromFile string, files []*ParsedFile) string {
	importPath = strings.Trim(importPath, "./")
	if importPath == "" {
		return ""
	}
	var best string
	bestScore := 0
	for _, f := range files {
		candidate := strings.TrimSuffix(f.Path, filepath.Ext(f.Path))
		if !importsMatch(importPath, candidate) && !importsMatch(importPath, f.Path) {
			continue
		}
		score := len(candidate)
		if score > bestScore {
			bestScore = score
			best = f.Path
		}
	}
	return best
}

func importsMatch(importPath, filePath string) bool {
	if importPath == filePath {
		return true
	}
	if len(filePath) >= len(importPath) && strings.HasSuffix(filePath, importPath) {
		return true
	}
	if len(importPath) >= len(filePath) && strings.HasSuffix(importPath, filePath) {
		return true
	}
	return false
}

// moduleOf collapses a file path to its containing top-level-under-root
// directory, the unit module-level cycle detection operates on.
func moduleOf(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) <= 1 {
		return "."
	}
	return parts[0]
}

// ModuleCycle is one detected import cycle among collapsed modules.
type ModuleCycle struct {
	Modules []string
}

// FindModuleCycles collapses the file graph to modules and DFS-detects
// cycles in the imports edge type, mirroring the teacher's
// visited/stack/path DFS in dependency_tracker.go's findCycles, re-targeted
// from symbol IDs onto module names.
func (g *DependencyGraph) FindModuleCycles(root string) []ModuleCycle {
	moduleEdges := make(map[string]map[string]bool)
	for _, e := range g.Edges {
		if e.Type != EdgeImports {
			continue
		}
		from, to := moduleOf(root, e.From), moduleOf(root, e.To)
		if from == to {
			continue
		}
		if moduleEdges[from] == nil {
			moduleEdges[from] = make(map[string]bool)
		}
		moduleEdges[from][to] = true
	}

	var modules []string
	for m := range moduleEdges {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	visited := make(map[string]bool)
	var cycles []ModuleCycle

	var find func(node string, stack map[string]bool, path []string)
	find = func(node string, stack map[string]bool, path []string) {
		visited[node] = true
		stack[node] = true
		path = append(path, node)

		targets := make([]string, 0, len(moduleEdges[node]))
		for t := range moduleEdges[node] {
			targets = append(targets, t)
		}
		sort.Strings(targets)

		for _, target := range targets {
			if stack[target] {
				for i, m := range path {
					if m == target {
						cycle := append([]string(nil), path[i:]...)
						cycles = append(cycles, ModuleCycle{Modules: cycle})
						break
					}
				}
				continue
			}
			if !visited[target] {
				find(target, stack, path)
			}
		}
		stack[node] = false
	}

	for _, m := range modules {
		if !visited[m] {
			find(m, make(map[string]bool), nil)
		}
	}
	return cycles
}

// cycleSite locates a concrete defect anchor for a module cycle: the
// first project file, in a cycle member module, whose import statement
// crosses into the next module in the cycle. Every Defect carries a
// non-empty, project-relative file_path and a line_start > 0, so a cycle
// defect is anchored at the import that actually closes the loop rather
// than at the project root.
type cycleSite struct {
	FilePath string
	Line     int
}

func (g *DependencyGraph) cycleSite(root string, cycle ModuleCycle) cycleSite {
	for i, from := range cycle.Modules {
		to := cycle.Modules[(i+1)%len(cycle.Modules)]
		var candidates []Edge
		for _, e := range g.Edges {
			if e.Type == EdgeImports && moduleOf(root, e.From) == from && moduleOf(root, e.To) == to {
				candidates = append(candidates, e)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].From < candidates[j].From })
		best := candidates[0]
		line := best.Line
		if line <= 0 {
			line = 1
		}
		return cycleSite{FilePath: best.From, Line: line}
	}
	// Unreachable in practice: every cycle is derived from these same
	// EdgeImports edges, so some candidate always exists. Fall back to
	// the first project file rather than the project root, so the
	// file_path invariant holds even if that ever changes.
	if len(g.Nodes) > 0 {
		return cycleSite{FilePath: g.Nodes[0], Line: 1}
	}
	return cycleSite{FilePath: ".", Line: 1}
}

// FanIn/FanOut give each node's in- and out-degree across every edge type.
func (g *DependencyGraph) FanIn() map[string]int {
	out := make(map[string]int)
	for _, e := range g.Edges {
		out[e.To]++
	}
	return out
}

func (g *DependencyGraph) FanOut() map[string]int {
	out := make(map[string]int)
	for _, e := range g.Edges {
		out[e.From]++
	}
	return out
}

// PageRank computes a standard power-iteration PageRank over the graph's
// edges, treating every node with no outgoing edges as linking uniformly
// to all nodes (the usual dangling-node fix) so rank mass is conserved.
func (g *DependencyGraph) PageRank(damping float64, iterations int) map[string]float64 {
	n := len(g.Nodes)
	if n == 0 {
		return nil
	}

	out := make(map[string][]string)
	for _, e := range g.Edges {
		out[e.From] = append(out[e.From], e.To)
	}

	rank := make(map[string]float64, n)
	for _, node := range g.Nodes {
		rank[node] = 1.0 / float64(n)
	}

	for iter := 0; iter < iterations; iter++ {
		next := make(map[string]float64, n)
		danglingMass := 0.0
		for _, node := range g.Nodes {
			if len(out[node]) == 0 {
				danglingMass += rank[node]
			}
		}

		base := (1 - damping) / float64(n)
		for _, node := range g.Nodes {
			next[node] = base + damping*danglingMass/float64(n)
		}

		for _, node := range g.Nodes {
			targets := out[node]
			if len(targets) == 0 {
				continue
			}
			share := damping * rank[node] / float64(len(targets))
			for _, t := range targets {
				next[t] += share
			}
		}
		rank = next
	}
	return rank
}

// DependencyAnalyzer builds the project's import graph and reports every
// detected module-level import cycle as a defect, per spec.md §4.4's
// "acyclic for imports after module collapse" guarantee.
type DependencyAnalyzer struct {
	IDs *tools.DefectIDGenerator
}

func NewDependencyAnalyzer(ids *tools.DefectIDGenerator) *DependencyAnalyzer {
	return &DependencyAnalyzer{IDs: ids}
}

func (a *DependencyAnalyzer) Category() types.Category { return types.CategoryDependency }
func (a *DependencyAnalyzer) SupportsIncremental() bool { return false }

func (a *DependencyAnalyzer) Analyze(ctx context.Context, proj *Project) ([]types.Defect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	graph := NewDependencyGraph(proj)
	cycles := graph.FindModuleCycles(proj.Root)

	var defects []types.Defect
	for _, cycle := range cycles {
		chain := strings.Join(cycle.Modules, " -> ") + " -> " + cycle.Modules[0]
		site := graph.cycleSite(proj.Root, cycle)
		defects = append(defects, types.Defect{
			ID:        a.IDs.GetDefectID(string(types.CategoryDependency), "import-cycle", site.FilePath, site.Line, 0),
			Severity:  types.SeverityHigh,
			Category:  types.CategoryDependency,
			FilePath:  site.FilePath,
			LineStart: site.Line,
			LineEnd:   site.Line,
			Message:   fmt.Sprintf("import cycle among modules: %s", chain),
			RuleID:    "import-cycle",
			Metrics:   map[string]float64{"cycle_length": float64(len(cycle.Modules))},
		})
	}

	return defects, nil
}
