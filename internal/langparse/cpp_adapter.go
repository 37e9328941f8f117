package langparse

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// CPPAdapter parses C/C++ with the tree-sitter-cpp grammar, which is a
// superset of the C grammar — the same parser handles both extensions.
type CPPAdapter struct {
	parser *tree_sitter.Parser
}

func NewCPPAdapter() (*CPPAdapter, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, err
	}
	return &CPPAdapter{parser: parser}, nil
}

func (a *CPPAdapter) Language() types.Language { return types.LangCPP }

func (a *CPPAdapter) Parse(content []byte) (*unifiedast.NodeStore, error) {
	tree := a.parser.Parse(content, nil)
	if tree == nil {
		return nil, errNilTree
	}
	defer tree.Close()
	return convertTree(tree, content, types.LangCPP), nil
}
