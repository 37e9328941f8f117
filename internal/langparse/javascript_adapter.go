package langparse

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// JavaScriptAdapter parses JS/JSX with the tree-sitter-javascript grammar.
type JavaScriptAdapter struct {
	parser *tree_sitter.Parser
}

func NewJavaScriptAdapter() (*JavaScriptAdapter, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, err
	}
	return &JavaScriptAdapter{parser: parser}, nil
}

func (a *JavaScriptAdapter) Language() types.Language { return types.LangJavaScript }

func (a *JavaScriptAdapter) Parse(content []byte) (*unifiedast.NodeStore, error) {
	tree := a.parser.Parse(content, nil)
	if tree == nil {
		return nil, errNilTree
	}
	defer tree.Close()
	return convertTree(tree, content, types.LangJavaScript), nil
}
