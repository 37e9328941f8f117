package langparse

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// RustAdapter parses Rust with the tree-sitter-rust grammar.
type RustAdapter struct {
	parser *tree_sitter.Parser
}

func NewRustAdapter() (*RustAdapter, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_rust.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, err
	}
	return &RustAdapter{parser: parser}, nil
}

func (a *RustAdapter) Language() types.Language { return types.LangRust }

func (a *RustAdapter) Parse(content []byte) (*unifiedast.NodeStore, error) {
	tree := a.parser.Parse(content, nil)
	if tree == nil {
		return nil, errNilTree
	}
	defer tree.Close()
	return convertTree(tree, content, types.LangRust), nil
}
