package langparse

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// TypeScriptAdapter parses both .ts and .tsx with the TypeScript
// grammar — the same single grammar the registry maps both extensions
// to, rather than switching to the separate TSX grammar variant.
type TypeScriptAdapter struct {
	parser *tree_sitter.Parser
}

func NewTypeScriptAdapter() (*TypeScriptAdapter, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	if err := parser.SetLanguage(language); err != nil {
		return nil, err
	}
	return &TypeScriptAdapter{parser: parser}, nil
}

func (a *TypeScriptAdapter) Language() types.Language { return types.LangTypeScript }

func (a *TypeScriptAdapter) Parse(content []byte) (*unifiedast.NodeStore, error) {
	tree := a.parser.Parse(content, nil)
	if tree == nil {
		return nil, errNilTree
	}
	defer tree.Close()
	return convertTree(tree, content, types.LangTypeScript), nil
}
