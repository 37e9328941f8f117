package langparse

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// GoAdapter parses Go source with the tree-sitter-go grammar.
type GoAdapter struct {
	parser *tree_sitter.Parser
}

// NewGoAdapter builds a ready-to-use adapter, or returns an error if the
// grammar fails to load (a build-time concern, never expected at runtime).
func NewGoAdapter() (*GoAdapter, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_go.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, err
	}
	return &GoAdapter{parser: parser}, nil
}

func (a *GoAdapter) Language() types.Language { return types.LangGo }

func (a *GoAdapter) Parse(content []byte) (*unifiedast.NodeStore, error) {
	tree := a.parser.Parse(content, nil)
	if tree == nil {
		return nil, errNilTree
	}
	defer tree.Close()
	return convertTree(tree, content, types.LangGo), nil
}
