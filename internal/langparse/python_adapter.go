package langparse

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// PythonAdapter parses Python with the tree-sitter-python grammar.
type PythonAdapter struct {
	parser *tree_sitter.Parser
}

func NewPythonAdapter() (*PythonAdapter, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, err
	}
	return &PythonAdapter{parser: parser}, nil
}

func (a *PythonAdapter) Language() types.Language { return types.LangPython }

func (a *PythonAdapter) Parse(content []byte) (*unifiedast.NodeStore, error) {
	tree := a.parser.Parse(content, nil)
	if tree == nil {
		return nil, errNilTree
	}
	defer tree.Close()
	return convertTree(tree, content, types.LangPython), nil
}
