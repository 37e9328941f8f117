package langparse

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// JavaAdapter parses Java with the tree-sitter-java grammar.
type JavaAdapter struct {
	parser *tree_sitter.Parser
}

func NewJavaAdapter() (*JavaAdapter, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_java.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, err
	}
	return &JavaAdapter{parser: parser}, nil
}

func (a *JavaAdapter) Language() types.Language { return types.LangJava }

func (a *JavaAdapter) Parse(content []byte) (*unifiedast.NodeStore, error) {
	tree := a.parser.Parse(content, nil)
	if tree == nil {
		return nil, errNilTree
	}
	defer tree.Close()
	return convertTree(tree, content, types.LangJava), nil
}
