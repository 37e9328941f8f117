package langparse

import (
	"testing"

	"github.com/standardbeagle/lci-analyzer/internal/types"
)

func TestNewRegistry_ResolvesByExtension(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("unexpected error building registry: %v", err)
	}

	cases := []struct {
		path string
		lang types.Language
	}{
		{"main.go", types.LangGo},
		{"app.jsx", types.LangJavaScript},
		{"index.ts", types.LangTypeScript},
		{"component.tsx", types.LangTypeScript},
		{"script.py", types.LangPython},
		{"lib.rs", types.LangRust},
		{"Main.java", types.LangJava},
		{"Program.cs", types.LangCSharp},
		{"engine.cpp", types.LangCPP},
		{"index.php", types.LangPHP},
		{"build.zig", types.LangZig},
	}

	for _, tc := range cases {
		adapter, ok := r.ForPath(tc.path)
		if !ok {
			t.Errorf("%s: expected an adapter to be found", tc.path)
			continue
		}
		if adapter.Language() != tc.lang {
			t.Errorf("%s: expected language %s, got %s", tc.path, tc.lang, adapter.Language())
		}
	}
}

func TestNewRegistry_UnknownExtension(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("unexpected error building registry: %v", err)
	}

	if _, ok := r.ForPath("README.md"); ok {
		t.Error("expected no adapter for an unsupported extension")
	}
}

func TestNewRegistry_ForLanguage(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("unexpected error building registry: %v", err)
	}

	adapter, ok := r.ForLanguage(types.LangGo)
	if !ok {
		t.Fatal("expected to resolve an adapter for LangGo")
	}
	if adapter.Language() != types.LangGo {
		t.Errorf("expected LangGo, got %s", adapter.Language())
	}
}
