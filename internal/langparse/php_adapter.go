package langparse

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"

	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// PHPAdapter parses PHP with the tree-sitter-php grammar.
type PHPAdapter struct {
	parser *tree_sitter.Parser
}

func NewPHPAdapter() (*PHPAdapter, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP())
	if err := parser.SetLanguage(language); err != nil {
		return nil, err
	}
	return &PHPAdapter{parser: parser}, nil
}

func (a *PHPAdapter) Language() types.Language { return types.LangPHP }

func (a *PHPAdapter) Parse(content []byte) (*unifiedast.NodeStore, error) {
	tree := a.parser.Parse(content, nil)
	if tree == nil {
		return nil, errNilTree
	}
	defer tree.Close()
	return convertTree(tree, content, types.LangPHP), nil
}
