package langparse

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/lci-analyzer/internal/types"
)

// Registry maps file extensions and language tags to a ready Adapter.
// Built once at startup; every Adapter wraps its own *tree_sitter.Parser,
// which isn't safe for concurrent Parse calls, so the orchestrator's
// ParseProject parses files one at a time on a single Registry.
type Registry struct {
	byExt  map[string]Adapter
	byLang map[types.Language]Adapter
}

// NewRegistry constructs every supported language's adapter up front.
// A grammar that fails to load is a build-time defect, so this returns an
// error instead of silently dropping that language the way the teacher's
// lazy per-extension setup does.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		byExt:  make(map[string]Adapter, 16),
		byLang: make(map[types.Language]Adapter, 10),
	}

	goAdapter, err := NewGoAdapter()
	if err != nil {
		return nil, fmt.Errorf("langparse: go grammar: %w", err)
	}
	r.register(goAdapter, ".go")

	jsAdapter, err := NewJavaScriptAdapter()
	if err != nil {
		return nil, fmt.Errorf("langparse: javascript grammar: %w", err)
	}
	r.register(jsAdapter, ".js", ".jsx", ".mjs", ".cjs")

	tsAdapter, err := NewTypeScriptAdapter()
	if err != nil {
		return nil, fmt.Errorf("langparse: typescript grammar: %w", err)
	}
	r.register(tsAdapter, ".ts", ".tsx")

	pyAdapter, err := NewPythonAdapter()
	if err != nil {
		return nil, fmt.Errorf("langparse: python grammar: %w", err)
	}
	r.register(pyAdapter, ".py", ".pyi")

	rustAdapter, err := NewRustAdapter()
	if err != nil {
		return nil, fmt.Errorf("langparse: rust grammar: %w", err)
	}
	r.register(rustAdapter, ".rs")

	javaAdapter, err := NewJavaAdapter()
	if err != nil {
		return nil, fmt.Errorf("langparse: java grammar: %w", err)
	}
	r.register(javaAdapter, ".java")

	csAdapter, err := NewCSharpAdapter()
	if err != nil {
		return nil, fmt.Errorf("langparse: csharp grammar: %w", err)
	}
	r.register(csAdapter, ".cs")

	cppAdapter, err := NewCPPAdapter()
	if err != nil {
		return nil, fmt.Errorf("langparse: cpp grammar: %w", err)
	}
	r.register(cppAdapter, ".cpp", ".cc", ".cxx", ".c", ".h", ".hpp")

	phpAdapter, err := NewPHPAdapter()
	if err != nil {
		return nil, fmt.Errorf("langparse: php grammar: %w", err)
	}
	r.register(phpAdapter, ".php", ".phtml")

	zigAdapter, err := NewZigAdapter()
	if err != nil {
		return nil, fmt.Errorf("langparse: zig grammar: %w", err)
	}
	r.register(zigAdapter, ".zig")

	return r, nil
}

func (r *Registry) register(a Adapter, exts ...string) {
	for _, ext := range exts {
		r.byExt[ext] = a
	}
	if _, ok := r.byLang[a.Language()]; !ok {
		r.byLang[a.Language()] = a
	}
}

// ForPath resolves an adapter from a file path's extension.
func (r *Registry) ForPath(path string) (Adapter, bool) {
	a, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return a, ok
}

// ForLanguage resolves an adapter by language tag.
func (r *Registry) ForLanguage(lang types.Language) (Adapter, bool) {
	a, ok := r.byLang[lang]
	return a, ok
}

// SupportedExtensions returns every file extension the registry can parse.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}
