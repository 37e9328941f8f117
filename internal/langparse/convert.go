package langparse

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// grammarKind maps a tree-sitter grammar node kind string (identical
// across the Go/JS/TS/Python/Rust/Java/C#/C++/PHP grammars for the
// constructs that matter to the analyzers above) to the engine's
// language-neutral NodeKind. Unrecognized kinds become KindOther rather
// than an error — an unmapped grammar node is not a parse failure.
var grammarKind = map[string]unifiedast.NodeKind{
	"source_file":              unifiedast.KindFile,
	"program":                  unifiedast.KindFile,
	"function_declaration":     unifiedast.KindFunctionDecl,
	"function_definition":      unifiedast.KindFunctionDecl,
	"function_item":            unifiedast.KindFunctionDecl,
	"method_declaration":       unifiedast.KindMethodDecl,
	"method_definition":        unifiedast.KindMethodDecl,
	"class_declaration":        unifiedast.KindClassDecl,
	"class_definition":         unifiedast.KindClassDecl,
	"struct_item":              unifiedast.KindStructDecl,
	"type_spec":                unifiedast.KindStructDecl,
	"interface_declaration":    unifiedast.KindInterfaceDecl,
	"interface_type":           unifiedast.KindInterfaceDecl,
	"trait_item":               unifiedast.KindInterfaceDecl,
	"if_statement":             unifiedast.KindIfStmt,
	"if_expression":            unifiedast.KindIfStmt,
	"elif_clause":              unifiedast.KindElseClause,
	"else_clause":              unifiedast.KindElseClause,
	"for_statement":            unifiedast.KindForStmt,
	"for_range_statement":      unifiedast.KindForStmt,
	"for_in_statement":         unifiedast.KindForStmt,
	"while_statement":          unifiedast.KindWhileStmt,
	"do_statement":             unifiedast.KindDoWhileStmt,
	"do_while_statement":       unifiedast.KindDoWhileStmt,
	"switch_statement":         unifiedast.KindSwitchStmt,
	"switch_expression":        unifiedast.KindSwitchStmt,
	"match_expression":         unifiedast.KindSwitchStmt,
	"case_clause":              unifiedast.KindCaseClause,
	"case_statement":           unifiedast.KindCaseClause,
	"expression_case":          unifiedast.KindCaseClause,
	"match_arm":                unifiedast.KindCaseClause,
	"conditional_expression":   unifiedast.KindTernary,
	"ternary_expression":       unifiedast.KindTernary,
	"binary_expression":        unifiedast.KindBinaryExpr,
	"call_expression":          unifiedast.KindCallExpr,
	"call":                     unifiedast.KindCallExpr,
	"method_invocation":        unifiedast.KindCallExpr,
	"break_statement":          unifiedast.KindBreakStmt,
	"continue_statement":       unifiedast.KindContinueStmt,
	"catch_clause":             unifiedast.KindCatchClause,
	"except_clause":            unifiedast.KindCatchClause,
	"return_statement":         unifiedast.KindReturnStmt,
	"identifier":               unifiedast.KindIdentifier,
	"field_identifier":         unifiedast.KindIdentifier,
	"comment":                  unifiedast.KindComment,
	"import_declaration":       unifiedast.KindImportDecl,
	"import_statement":         unifiedast.KindImportDecl,
	"use_declaration":          unifiedast.KindImportDecl,
	"variable_declaration":     unifiedast.KindVarDecl,
	"var_declaration":          unifiedast.KindVarDecl,
	"short_var_declaration":    unifiedast.KindVarDecl,
	"block":                    unifiedast.KindBlock,
	"compound_statement":       unifiedast.KindBlock,
	"statement_block":          unifiedast.KindBlock,
}

// logicalOperators identifies binary-expression operators tree-sitter
// grammars tag as a direct operator child, used to set FlagLogicalAndOr
// (the teacher's cyclomatic-complexity calculator treats these as a
// decision point, same as an if/for/case).
var logicalOperators = map[string]bool{
	"&&": true, "||": true, "and": true, "or": true,
}

// convertTree walks a parsed tree-sitter tree and inserts every node into
// a fresh unifiedast.NodeStore, preserving parent/child/sibling links.
//
// A node's FirstChildIdx depends on its children, and a child's
// NextSiblingIdx depends on the sibling after it — both unknown at the
// moment a node would naturally be inserted. Reserve/Fill splits
// "claim a stable index" from "write the node's content": every node's
// index is reserved before its children are visited (so a child can
// record the right ParentIdx, and a node's siblings can all be reserved
// up front so each one already knows the next), and Fill supplies the
// real record, links included, once the whole subtree has been walked.
func convertTree(tree *tree_sitter.Tree, content []byte, lang types.Language) *unifiedast.NodeStore {
	store := unifiedast.NewNodeStore()
	langByte := langToByte(lang)

	var process func(n *tree_sitter.Node, idx, parentIdx, nextSiblingIdx uint32) unifiedast.SubtreeHash
	process = func(n *tree_sitter.Node, idx, parentIdx, nextSiblingIdx uint32) unifiedast.SubtreeHash {
		childCount := int(n.ChildCount())
		children := make([]*tree_sitter.Node, 0, childCount)
		for i := 0; i < childCount; i++ {
			if c := n.Child(uint(i)); c != nil {
				children = append(children, c)
			}
		}

		childIdx := make([]uint32, len(children))
		for i := range children {
			ci, err := store.Reserve()
			if err != nil {
				return unifiedast.SubtreeHash{}
			}
			childIdx[i] = ci
		}

		hash := unifiedast.HashBytes(content[n.StartByte():n.EndByte()])
		for i, child := range children {
			next := unifiedast.NoIndex
			if i+1 < len(childIdx) {
				next = childIdx[i+1]
			}
			childHash := process(child, childIdx[i], idx, next)
			hash = unifiedast.Combine(hash, childHash)
		}

		firstChild := unifiedast.NoIndex
		if len(childIdx) > 0 {
			firstChild = childIdx[0]
		}

		kind := grammarKind[n.Kind()]
		if kind == unifiedast.KindUnknown {
			kind = unifiedast.KindOther
		}

		var flags uint8
		if n.IsNamed() {
			flags |= unifiedast.FlagNamed
		}
		if n.IsError() {
			flags |= unifiedast.FlagHasError
		}
		if n.IsMissing() {
			flags |= unifiedast.FlagIsMissing
		}
		if kind == unifiedast.KindBinaryExpr {
			if opChild := operatorChild(n); opChild != "" && logicalOperators[opChild] {
				flags |= unifiedast.FlagLogicalAndOr
			}
		}

		node := unifiedast.Node{
			ParentIdx:      parentIdx,
			FirstChildIdx:  firstChild,
			NextSiblingIdx: nextSiblingIdx,
			StartByte:      uint32(n.StartByte()),
			EndByte:        uint32(n.EndByte()),
			Lang:           langByte,
			Flags:          flags,
		}
		node.SetKind(kind)

		store.Fill(idx, node, hash)
		return hash
	}

	root := tree.RootNode()
	if root != nil {
		rootIdx, err := store.Reserve()
		if err == nil {
			process(root, rootIdx, unifiedast.NoIndex, unifiedast.NoIndex)
		}
	}

	store.Finalize()
	return store
}

func operatorChild(n *tree_sitter.Node) string {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(uint(i))
		if child != nil && !child.IsNamed() {
			return child.Kind()
		}
	}
	return ""
}

func langToByte(lang types.Language) uint8 {
	switch lang {
	case types.LangGo:
		return 1
	case types.LangJavaScript:
		return 2
	case types.LangTypeScript:
		return 3
	case types.LangPython:
		return 4
	case types.LangRust:
		return 5
	case types.LangJava:
		return 6
	case types.LangCSharp:
		return 7
	case types.LangCPP:
		return 8
	case types.LangPHP:
		return 9
	case types.LangZig:
		return 10
	default:
		return 0
	}
}
