package langparse

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"

	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// CSharpAdapter parses C# with the tree-sitter-c-sharp grammar.
type CSharpAdapter struct {
	parser *tree_sitter.Parser
}

func NewCSharpAdapter() (*CSharpAdapter, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_csharp.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, err
	}
	return &CSharpAdapter{parser: parser}, nil
}

func (a *CSharpAdapter) Language() types.Language { return types.LangCSharp }

func (a *CSharpAdapter) Parse(content []byte) (*unifiedast.NodeStore, error) {
	tree := a.parser.Parse(content, nil)
	if tree == nil {
		return nil, errNilTree
	}
	defer tree.Close()
	return convertTree(tree, content, types.LangCSharp), nil
}
