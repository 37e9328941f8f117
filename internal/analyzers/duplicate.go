package analyzers

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"

	"github.com/standardbeagle/lci-analyzer/internal/tools"
	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// duplicateBlockKinds are the node kinds considered for duplicate-code
// comparison. Matches the teacher's own block-worthy node set, generalized
// from tree-sitter kind strings onto unifiedast.NodeKind.
var duplicateBlockKinds = map[unifiedast.NodeKind]bool{
	unifiedast.KindFunctionDecl: true,
	unifiedast.KindMethodDecl:   true,
	unifiedast.KindClassDecl:    true,
	unifiedast.KindIfStmt:       true,
	unifiedast.KindForStmt:      true,
	unifiedast.KindWhileStmt:    true,
	unifiedast.KindSwitchStmt:   true,
	unifiedast.KindBlock:        true,
}

// codeBlock is one candidate fragment for duplicate comparison.
type codeBlock struct {
	file       *ParsedFile
	nodeIdx    uint32
	startLine  int
	endLine    int
	content    string
	normalized string
	tokens     []string
	hash       unifiedast.SubtreeHash
}

// DuplicateAnalyzer finds exact, structural (renamed), and semantic
// (near-duplicate) code clones. Exact matches reuse the structural hash
// every node already carries from parsing (unifiedast.NodeStore); renamed
// clones hash a token stream with identifiers collapsed to a placeholder;
// semantic clones compare stemmed token streams with Jaro-Winkler
// similarity above a configurable threshold. A block that already landed
// in an exact or structural group is excluded from the (expensive)
// semantic pass.
type DuplicateAnalyzer struct {
	MinLines            int
	MinTokens           int
	SemanticThreshold   float64
	IDs                 *tools.DefectIDGenerator
	// MaxSemanticBlocks bounds the O(n^2) semantic comparison pass: beyond
	// this many eligible blocks, semantic clustering is skipped for the
	// run rather than left to degrade quadratically.
	MaxSemanticBlocks int
}

func NewDuplicateAnalyzer(minLines, minTokens int, semanticThreshold float64, ids *tools.DefectIDGenerator) *DuplicateAnalyzer {
	return &DuplicateAnalyzer{
		MinLines:          minLines,
		MinTokens:         minTokens,
		SemanticThreshold: semanticThreshold,
		IDs:               ids,
		MaxSemanticBlocks: 400,
	}
}

func (a *DuplicateAnalyzer) Category() types.Category { return types.CategoryDuplicate }
func (a *DuplicateAnalyzer) SupportsIncremental() bool { return false }

func (a *DuplicateAnalyzer) Analyze(ctx context.Context, proj *Project) ([]types.Defect, error) {
	var blocks []codeBlock

	for _, f := range proj.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.Store == nil {
			continue
		}
		blocks = append(blocks, a.collectBlocks(f)...)
	}

	var defects []types.Defect

	exactGroups, consumed := a.groupExact(blocks)
	defects = append(defects, a.defectsFromGroups(exactGroups, "exact-duplicate", types.SeverityHigh)...)

	structuralGroups, structConsumed := a.groupStructural(blocks, consumed)
	defects = append(defects, a.defectsFromGroups(structuralGroups, "structural-duplicate", types.SeverityMedium)...)
	for k := range structConsumed {
		consumed[k] = true
	}

	semanticGroups := a.groupSemantic(ctx, blocks, consumed)
	defects = append(defects, a.defectsFromGroups(semanticGroups, "semantic-duplicate", types.SeverityLow)...)

	return defects, nil
}

func (a *DuplicateAnalyzer) collectBlocks(f *ParsedFile) []codeBlock {
	var out []codeBlock
	walkPreOrder(f.Store, mustRoot(f.Store), func(idx uint32, n unifiedast.Node, _ int) {
		if !duplicateBlockKinds[n.Kind()] {
			return
		}
		if n.EndByte <= n.StartByte {
			return
		}
		raw := string(f.Content[n.StartByte:n.EndByte])
		lines := strings.Count(raw, "\n") + 1
		tokens := tokenize(raw)
		if lines < a.MinLines || len(tokens) < a.MinTokens {
			return
		}
		out = append(out, codeBlock{
			file:       f,
			nodeIdx:    idx,
			startLine:  lineOf(f.Content, n.StartByte),
			endLine:    lineOf(f.Content, n.EndByte),
			content:    raw,
			normalized: normalizeTokens(tokens),
			tokens:     tokens,
			hash:       unifiedast.SubtreeHash{Fast: n.HashFast, Slow: n.HashSlow},
		})
	})
	return out
}

func mustRoot(store *unifiedast.NodeStore) uint32 {
	root, ok := rootIndex(store)
	if !ok {
		return unifiedast.NoIndex
	}
	return root
}

// groupExact buckets blocks by the subtree hash computed at parse time —
// identical byte content anywhere in the project. Returns the groups plus
// a set of block keys already accounted for.
func (a *DuplicateAnalyzer) groupExact(blocks []codeBlock) ([][]codeBlock, map[string]bool) {
	byHash := make(map[unifiedast.SubtreeHash][]codeBlock)
	for _, b := range blocks {
		byHash[b.hash] = append(byHash[b.hash], b)
	}

	consumed := make(map[string]bool)
	var groups [][]codeBlock
	for _, group := range byHash {
		if len(group) < 2 {
			continue
		}
		groups = append(groups, group)
		for _, b := range group {
			consumed[blockKey(b)] = true
		}
	}
	return groups, consumed
}

// groupStructural buckets the remaining blocks by a hash of their
// identifier-normalized token stream — the teacher's "replace likely
// identifiers with a placeholder, then hash" approach for renamed clones.
func (a *DuplicateAnalyzer) groupStructural(blocks []codeBlock, consumed map[string]bool) ([][]codeBlock, map[string]bool) {
	byHash := make(map[string][]codeBlock)
	for _, b := range blocks {
		if consumed[blockKey(b)] {
			continue
		}
		h := md5.Sum([]byte(b.normalized))
		key := hex.EncodeToString(h[:])
		byHash[key] = append(byHash[key], b)
	}

	newlyConsumed := make(map[string]bool)
	var groups [][]codeBlock
	for _, group := range byHash {
		if len(group) < 2 {
			continue
		}
		groups = append(groups, group)
		for _, b := range group {
			newlyConsumed[blockKey(b)] = true
		}
	}
	return groups, newlyConsumed
}

// groupSemantic compares every remaining pair of blocks' stemmed,
// normalized token streams with Jaro-Winkler similarity, clustering any
// above SemanticThreshold via union-find. This is the only pass that can
// catch functionally-similar code with different structure, at quadratic
// cost — bounded by MaxSemanticBlocks.
func (a *DuplicateAnalyzer) groupSemantic(ctx context.Context, blocks []codeBlock, consumed map[string]bool) [][]codeBlock {
	var eligible []codeBlock
	for _, b := range blocks {
		if !consumed[blockKey(b)] {
			eligible = append(eligible, b)
		}
	}
	if len(eligible) < 2 || len(eligible) > a.MaxSemanticBlocks {
		return nil
	}

	stemmed := make([]string, len(eligible))
	for i, b := range eligible {
		stemmed[i] = stemText(b.normalized)
	}

	parent := make([]int, len(eligible))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			parent[ri] = rj
		}
	}

	for i := 0; i < len(eligible); i++ {
		if ctx.Err() != nil {
			return nil
		}
		for j := i + 1; j < len(eligible); j++ {
			score, err := edlib.StringsSimilarity(stemmed[i], stemmed[j], edlib.JaroWinkler)
			if err != nil {
				continue
			}
			if float64(score) >= a.SemanticThreshold {
				union(i, j)
			}
		}
	}

	clusters := make(map[int][]codeBlock)
	for i, b := range eligible {
		root := find(i)
		clusters[root] = append(clusters[root], b)
	}

	var groups [][]codeBlock
	for _, g := range clusters {
		if len(g) >= 2 {
			groups = append(groups, g)
		}
	}
	return groups
}

func (a *DuplicateAnalyzer) defectsFromGroups(groups [][]codeBlock, ruleID string, severity types.Severity) []types.Defect {
	var defects []types.Defect
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			if group[i].file.Path != group[j].file.Path {
				return group[i].file.Path < group[j].file.Path
			}
			return group[i].startLine < group[j].startLine
		})

		locations := make([]string, 0, len(group))
		for _, b := range group {
			locations = append(locations, fmt.Sprintf("%s:%d-%d", b.file.Path, b.startLine, b.endLine))
		}

		first := group[0]
		defects = append(defects, types.Defect{
			ID:        a.IDs.GetDefectID(string(types.CategoryDuplicate), ruleID, first.file.Path, first.startLine, 0),
			Severity:  severity,
			Category:  types.CategoryDuplicate,
			FilePath:  first.file.Path,
			LineStart: first.startLine,
			LineEnd:   first.endLine,
			Message:   fmt.Sprintf("%s duplicated across %d locations: %s", ruleID, len(group), strings.Join(locations, ", ")),
			RuleID:    ruleID,
			Metrics: map[string]float64{
				"duplicate_count": float64(len(group)),
				"lines":           float64(first.endLine - first.startLine + 1),
			},
		})
	}
	return defects
}

func blockKey(b codeBlock) string {
	return fmt.Sprintf("%s:%d", b.file.Path, b.nodeIdx)
}

// tokenize splits raw source into a token stream, matching the teacher's
// delimiter-based tokenizer: whitespace separates tokens, and
// "(){}[];,." are emitted as their own single-character tokens.
func tokenize(src string) []string {
	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range src {
		switch {
		case strings.ContainsRune("(){}[];,.", r):
			flush()
			tokens = append(tokens, string(r))
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// normalizeTokens replaces tokens that look like identifiers with a
// placeholder so two blocks differing only in variable/field names hash
// identically, matching the teacher's normalizeIdentifiers rule.
func normalizeTokens(tokens []string) string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		if isKeywordToken(tok) || isOperatorToken(tok) {
			out[i] = tok
		} else if looksLikeIdentifier(tok) {
			out[i] = "ID"
		} else {
			out[i] = tok
		}
	}
	return strings.Join(out, " ")
}

// stemText applies Porter2 stemming to every alphabetic token in a
// normalized stream, collapsing lexically related identifiers (loadUser /
// loadUsers) the way spec.md's semantic-clone pass requires.
func stemText(normalized string) string {
	words := strings.Fields(normalized)
	stemmed := make([]string, len(words))
	for i, w := range words {
		if looksLikeIdentifier(w) {
			stemmed[i] = porter2.Stem(strings.ToLower(w))
		} else {
			stemmed[i] = w
		}
	}
	return strings.Join(stemmed, " ")
}

var duplicateKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "return": true,
	"func": true, "function": true, "class": true, "var": true, "let": true,
	"const": true, "def": true, "import": true, "from": true, "and": true,
	"or": true, "true": true, "false": true, "null": true, "nil": true,
	"undefined": true, "switch": true, "case": true, "break": true,
	"continue": true, "struct": true, "interface": true, "type": true,
}

func isKeywordToken(tok string) bool {
	return duplicateKeywords[strings.ToLower(tok)]
}

var duplicateOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "=": true, "==": true,
	"!=": true, "<": true, ">": true, "<=": true, ">=": true, "&&": true,
	"||": true, "!": true, "++": true, "--": true, "+=": true, "-=": true,
}

func isOperatorToken(tok string) bool {
	return duplicateOperators[tok]
}

func looksLikeIdentifier(tok string) bool {
	if tok == "" {
		return false
	}
	first := rune(tok[0])
	isLetterStart := (first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z') || first == '_'
	if !isLetterStart {
		return false
	}
	return !isKeywordToken(tok) && !isOperatorToken(tok)
}
