package langparse

import (
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lci-analyzer/internal/types"
	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

// ZigAdapter parses Zig with the community tree-sitter-zig grammar.
type ZigAdapter struct {
	parser *tree_sitter.Parser
}

func NewZigAdapter() (*ZigAdapter, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_zig.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, err
	}
	return &ZigAdapter{parser: parser}, nil
}

func (a *ZigAdapter) Language() types.Language { return types.LangZig }

func (a *ZigAdapter) Parse(content []byte) (*unifiedast.NodeStore, error) {
	tree := a.parser.Parse(content, nil)
	if tree == nil {
		return nil, errNilTree
	}
	defer tree.Close()
	return convertTree(tree, content, types.LangZig), nil
}
