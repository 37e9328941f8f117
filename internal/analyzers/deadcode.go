package analyzers

import (
	"bytes"
	"context"
	"regexp"
	"unicode"

	"github.com/standardbeagle/lci-analyzer/internal/symbollinker"
	"github.com/standardbeagle/lci-analyzer/internal/tools"
	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// DeadCodeKind mirrors spec.md §6's dead-code finding kind enum.
type DeadCodeKind string

const (
	DeadCodeFunction        DeadCodeKind = "function"
	DeadCodeClass           DeadCodeKind = "class"
	DeadCodeVariable        DeadCodeKind = "variable"
	DeadCodeUnreachableStmt DeadCodeKind = "unreachable_block"
)

// entryPointHints matches export/test-harness/FFI annotations that make a
// declaration a reachability root regardless of whether anything in this
// project calls it by name — spec.md's "executable mains, exported
// symbols, test and benchmark harnesses, FFI/WASM/export-annotated items".
// The pub/public alternatives cover languages where capitalization carries
// no export meaning: Rust's pub/pub(crate)/pub(super) visibility keyword,
// and C++/PHP's public member-visibility keyword.
var entryPointHints = regexp.MustCompile(`(?s)(#\[\s*test\s*\]|#\[\s*cfg\(\s*test\s*\)\s*\]|#\[\s*no_mangle\s*\]|#\[\s*wasm_bindgen[^\]]*\]|extern\s+"C"|//export\b|@Test\b|@WasmExport\b|\bpub(?:\s*\(\s*(?:crate|super|self|in\s+[\w:]+)\s*\))?\s+(?:fn|struct|enum|trait|mod|const|static|type)\b|\bpublic\b)`)

var testNamePattern = regexp.MustCompile(`^(Test|Benchmark|Example|test_|test[A-Z])`)

// declKinds are the node kinds the declaration pass considers. Variable
// declarations are not among them, so no variable is reported as dead.
var declKinds = map[unifiedast.NodeKind]DeadCodeKind{
	unifiedast.KindFunctionDecl:  DeadCodeFunction,
	unifiedast.KindMethodDecl:    DeadCodeFunction,
	unifiedast.KindClassDecl:     DeadCodeClass,
	unifiedast.KindStructDecl:    DeadCodeClass,
	unifiedast.KindInterfaceDecl: DeadCodeClass,
}

// DeadCodeAnalyzer reports a function/method/class/struct/interface
// declaration as dead when it is not an entry point (mains, test/benchmark
// harnesses, pub/public or export-annotated items), its name appears as no
// non-declaration identifier in its own file, and no symbollinker cross-file
// link targets it. Liveness is not propagated from entry points: a reference
// made from a declaration that is itself dead still keeps its target alive.
// It separately flags statements unreachable within their own block (dead
// code after an unconditional return/break/continue).
type DeadCodeAnalyzer struct {
	IDs *tools.DefectIDGenerator
}

func NewDeadCodeAnalyzer(ids *tools.DefectIDGenerator) *DeadCodeAnalyzer {
	return &DeadCodeAnalyzer{IDs: ids}
}

func (a *DeadCodeAnalyzer) Category() types.Category { return types.CategoryDeadCode }
func (a *DeadCodeAnalyzer) SupportsIncremental() bool { return false }

type declaredSymbol struct {
	file     *ParsedFile
	idx      uint32
	name     string
	kind     DeadCodeKind
	exported bool
	entry    bool
}

func (a *DeadCodeAnalyzer) Analyze(ctx context.Context, proj *Project) ([]types.Defect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var declared []declaredSymbol
	// referenced counts identifier occurrences per file, scoped by file
	// rather than project-wide: a same-named declaration in a different
	// file must not keep this one alive just because the name appears
	// somewhere else in the project.
	referenced := make(map[string]map[string]int)
	refCount := func(file, name string) int { return referenced[file][name] }

	for _, f := range proj.Files {
		if f.Store == nil {
			continue
		}
		root, ok := rootIndex(f.Store)
		if !ok {
			continue
		}

		// A fixed kind order (not map order) keeps defect output deterministic.
		for _, kind := range []unifiedast.NodeKind{
			unifiedast.KindFunctionDecl, unifiedast.KindMethodDecl,
			unifiedast.KindClassDecl, unifiedast.KindStructDecl, unifiedast.KindInterfaceDecl,
		} {
			dcKind := declKinds[kind]
			for _, idx := range findByKind(f.Store, root, kind) {
				n, _ := f.Store.GetNode(idx)
				name := declName(f, idx)
				if name == "" {
					continue
				}
				declText := declTextOf(f, n)
				sym := declaredSymbol{
					file:     f,
					idx:      idx,
					name:     name,
					kind:     dcKind,
					exported: isExportedName(name) || entryPointHints.MatchString(declText),
					entry:    isEntryPoint(name, declText),
				}
				declared = append(declared, sym)
			}
		}

		for _, idx := range findByKind(f.Store, root, unifiedast.KindIdentifier) {
			n, _ := f.Store.GetNode(idx)
			if n.ParentIdx == unifiedast.NoIndex {
				continue
			}
			parent, ok := f.Store.GetNode(n.ParentIdx)
			if ok && isDeclKind(parent.Kind()) {
				continue
			}
			if referenced[f.Path] == nil {
				referenced[f.Path] = make(map[string]int)
			}
			referenced[f.Path][textOf(f, n)]++
		}
	}

	// crossFileReferenced adds back the references the file-scoped count
	// above can't see: a call, base-class clause, or type use resolved by
	// the project's symbol table to a specific declaring file, rather
	// than "this name appears somewhere in this file".
	crossFileReferenced := make(map[string]map[string]bool)
	linkerFiles := make([]symbollinker.FileInput, 0, len(proj.Files))
	for _, f := range proj.Files {
		linkerFiles = append(linkerFiles, symbollinker.FileInput{Path: f.Path, Content: f.Content, Store: f.Store})
	}
	table := symbollinker.BuildTable(linkerFiles)
	for _, link := range symbollinker.Link(linkerFiles, table) {
		if crossFileReferenced[link.To] == nil {
			crossFileReferenced[link.To] = make(map[string]bool)
		}
		crossFileReferenced[link.To][link.Name] = true
	}

	var defects []types.Defect
	for _, sym := range declared {
		if sym.entry || refCount(sym.file.Path, sym.name) > 0 || crossFileReferenced[sym.file.Path][sym.name] {
			continue
		}

		line := lineOf(sym.file.Content, nodeStart(sym.file, sym.idx))
		confidence := "high"
		severity := types.SeverityMedium
		if sym.exported {
			confidence = "medium"
			severity = types.SeverityLow
		}

		defects = append(defects, types.Defect{
			ID:        a.IDs.GetDefectID(string(types.CategoryDeadCode), string(sym.kind), sym.file.Path, line, 0),
			Severity:  severity,
			Category:  types.CategoryDeadCode,
			FilePath:  sym.file.Path,
			LineStart: line,
			LineEnd:   line,
			Message:   "unreachable " + string(sym.kind) + " " + sym.name,
			RuleID:    "dead-" + string(sym.kind),
			Metrics:   map[string]float64{"confidence": confidenceRank(confidence)},
		})
	}

	for _, f := range proj.Files {
		if f.Store == nil {
			continue
		}
		root, ok := rootIndex(f.Store)
		if !ok {
			continue
		}
		defects = append(defects, a.unreachableBlocks(f, root)...)
	}

	return defects, nil
}

// unreachableBlocks flags statements that follow an unconditional
// return/break/continue within the same block — locally dead code, as
// opposed to the project-wide declaration reachability pass above.
func (a *DeadCodeAnalyzer) unreachableBlocks(f *ParsedFile, root uint32) []types.Defect {
	var defects []types.Defect
	for _, blockIdx := range findByKind(f.Store, root, unifiedast.KindBlock) {
		children := f.Store.Children(blockIdx)
		terminatedAt := -1
		for i, childIdx := range children {
			n, _ := f.Store.GetNode(childIdx)
			if n.Kind() == unifiedast.KindReturnStmt || n.Kind() == unifiedast.KindBreakStmt || n.Kind() == unifiedast.KindContinueStmt {
				terminatedAt = i
				break
			}
		}
		if terminatedAt < 0 || terminatedAt == len(children)-1 {
			continue
		}

		first := children[terminatedAt+1]
		n, _ := f.Store.GetNode(first)
		line := lineOf(f.Content, n.StartByte)
		last := children[len(children)-1]
		lastNode, _ := f.Store.GetNode(last)

		defects = append(defects, types.Defect{
			ID:        a.IDs.GetDefectID(string(types.CategoryDeadCode), string(DeadCodeUnreachableStmt), f.Path, line, 0),
			Severity:  types.SeverityMedium,
			Category:  types.CategoryDeadCode,
			FilePath:  f.Path,
			LineStart: line,
			LineEnd:   lineOf(f.Content, lastNode.EndByte),
			Message:   "unreachable code after return/break/continue",
			RuleID:    "dead-" + string(DeadCodeUnreachableStmt),
			Metrics:   map[string]float64{"confidence": confidenceRank("high")},
		})
	}
	return defects
}

func confidenceRank(confidence string) float64 {
	switch confidence {
	case "high":
		return 3
	case "medium":
		return 2
	default:
		return 1
	}
}

func isDeclKind(k unifiedast.NodeKind) bool {
	_, ok := declKinds[k]
	return ok
}

// declName reads a declaration node's first KindIdentifier child's text as
// its name. The unified AST has no dedicated name field, so the name is
// always the first identifier a decl introduces — true for every supported
// language's function/class/method grammar shape.
func declName(f *ParsedFile, idx uint32) string {
	for _, childIdx := range f.Store.Children(idx) {
		c, _ := f.Store.GetNode(childIdx)
		if c.Kind() == unifiedast.KindIdentifier {
			return textOf(f, c)
		}
	}
	return ""
}

func textOf(f *ParsedFile, n unifiedast.Node) string {
	if n.EndByte <= n.StartByte || int(n.EndByte) > len(f.Content) {
		return ""
	}
	return string(f.Content[n.StartByte:n.EndByte])
}

// declTextOf returns a declaration's own text plus a lookback window of up
// to 200 preceding bytes, so annotations and visibility keywords that sit
// just before it (#[cfg(test)], pub, public, ...) are visible to
// entryPointHints. The lookback is trimmed at the nearest preceding '}' or
// ';', so a tightly packed prior declaration's own annotation never bleeds
// into this one's scan window.
func declTextOf(f *ParsedFile, n unifiedast.Node) string {
	start := n.StartByte
	if start > 200 {
		start -= 200
	} else {
		start = 0
	}
	if int(n.EndByte) > len(f.Content) {
		return ""
	}
	window := f.Content[start:n.EndByte]
	lookback := n.StartByte - start
	if boundary := bytes.LastIndexAny(window[:lookback], "};"); boundary >= 0 {
		window = window[boundary+1:]
	}
	return string(window)
}

func nodeStart(f *ParsedFile, idx uint32) uint32 {
	n, _ := f.Store.GetNode(idx)
	return n.StartByte
}

func isExportedName(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsUpper(r)
}

func isEntryPoint(name, declText string) bool {
	if name == "main" || name == "Main" {
		return true
	}
	if testNamePattern.MatchString(name) {
		return true
	}
	return entryPointHints.MatchString(declText)
}
