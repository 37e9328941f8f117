package analyzers

import "github.com/standardbeagle/lci-analyzer/internal/unifiedast"

// walkPreOrder visits idx and every descendant, shallowest first.
func walkPreOrder(store *unifiedast.NodeStore, idx uint32, visit func(idx uint32, n unifiedast.Node, depth int)) {
	var rec func(idx uint32, depth int)
	rec = func(idx uint32, depth int) {
		n, ok := store.GetNode(idx)
		if !ok {
			return
		}
		visit(idx, n, depth)
		for _, child := range store.Children(idx) {
			rec(child, depth+1)
		}
	}
	rec(idx, 0)
}

// findByKind returns every node of kind reachable from idx (idx included).
func findByKind(store *unifiedast.NodeStore, idx uint32, kind unifiedast.NodeKind) []uint32 {
	var out []uint32
	walkPreOrder(store, idx, func(i uint32, n unifiedast.Node, _ int) {
		if n.Kind() == kind {
			out = append(out, i)
		}
	})
	return out
}

// rootIndex finds the store's root: the one node with no parent. convertTree
// always reserves the root first (index 1), but that's an implementation
// detail of how a builder happens to number its nodes, not a property every
// caller should have to assume — this scans instead of hardcoding it.
func rootIndex(store *unifiedast.NodeStore) (uint32, bool) {
	for i := 1; i <= store.Len(); i++ {
		n, ok := store.GetNode(uint32(i))
		if ok && n.ParentIdx == unifiedast.NoIndex {
			return uint32(i), true
		}
	}
	return unifiedast.NoIndex, false
}

// topLevelFunctions returns every KindFunctionDecl/KindMethodDecl node
// reachable from the store's root. This includes nested function/method
// declarations: each still gets its own complexity score, and its
// statements also count toward its enclosing function's cognitive score
// (see cognitiveComplexity), matching "closures counted into their
// enclosing function" without excluding the closure itself from being
// scored too.
func topLevelFunctions(store *unifiedast.NodeStore) []uint32 {
	root, ok := rootIndex(store)
	if !ok {
		return nil
	}
	var out []uint32
	walkPreOrder(store, root, func(i uint32, n unifiedast.Node, _ int) {
		if n.Kind() == unifiedast.KindFunctionDecl || n.Kind() == unifiedast.KindMethodDecl {
			out = append(out, i)
		}
	})
	return out
}

// lineOf converts a byte offset into content into a 1-indexed line number.
func lineOf(content []byte, offset uint32) int {
	line := 1
	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}
	for i := 0; i < limit; i++ {
		if content[i] == '\n' {
			line++
		}
	}
	return line
}
