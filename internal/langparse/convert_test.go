package langparse

import (
	"testing"

	"github.com/standardbeagle/lci-analyzer/internal/unifiedast"
)

func TestGoAdapter_ParseSimpleFunction(t *testing.T) {
	adapter, err := NewGoAdapter()
	if err != nil {
		t.Fatalf("failed to build go adapter: %v", err)
	}

	code := []byte(`package main

func add(a, b int) int {
	if a > 0 {
		return a + b
	}
	return b
}
`)

	store, err := adapter.Parse(code)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if store.Len() == 0 {
		t.Fatal("expected a non-empty node store")
	}

	found := false
	for i := 1; i <= store.Len(); i++ {
		n, ok := store.GetNode(uint32(i))
		if !ok {
			continue
		}
		if n.Kind() == unifiedast.KindIfStmt {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected to find an if_statement node classified as KindIfStmt")
	}
}

func TestGoAdapter_ParentChildLinksAreWalkable(t *testing.T) {
	adapter, err := NewGoAdapter()
	if err != nil {
		t.Fatalf("failed to build go adapter: %v", err)
	}

	code := []byte(`package main

func f() {
	for i := 0; i < 10; i++ {
	}
}
`)

	store, err := adapter.Parse(code)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	// Root should have at least one child, reachable through
	// FirstChildIdx/NextSiblingIdx without ever touching index 0.
	root, ok := store.GetNode(1)
	if !ok {
		t.Fatal("expected root node at index 1 (index 0 is reserved)")
	}
	if root.ParentIdx != unifiedast.NoIndex {
		t.Errorf("expected root's ParentIdx to be NoIndex, got %d", root.ParentIdx)
	}

	children := store.Children(1)
	if len(children) == 0 {
		t.Fatal("expected the root to have at least one child")
	}
	for _, c := range children {
		if c == unifiedast.NoIndex {
			t.Error("child index should never be NoIndex")
		}
	}
}

func TestGoAdapter_DetectsLogicalAndOr(t *testing.T) {
	adapter, err := NewGoAdapter()
	if err != nil {
		t.Fatalf("failed to build go adapter: %v", err)
	}

	code := []byte(`package main

func f(a, b bool) bool {
	return a && b
}
`)

	store, err := adapter.Parse(code)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	found := false
	for i := 1; i <= store.Len(); i++ {
		n, ok := store.GetNode(uint32(i))
		if !ok {
			continue
		}
		if n.Kind() == unifiedast.KindBinaryExpr && n.HasFlag(unifiedast.FlagLogicalAndOr) {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected a binary_expression node flagged FlagLogicalAndOr for &&")
	}
}

func TestGoAdapter_DuplicateGroupsFindsRepeatedBlocks(t *testing.T) {
	adapter, err := NewGoAdapter()
	if err != nil {
		t.Fatalf("failed to build go adapter: %v", err)
	}

	code := []byte(`package main

func f() {
	x := 1
}

func g() {
	x := 1
}
`)

	store, err := adapter.Parse(code)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	groups := store.DuplicateGroups()
	if len(groups) == 0 {
		t.Error("expected at least one duplicate group for the repeated `x := 1` statement")
	}
}
