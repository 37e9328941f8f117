package stdio

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/standardbeagle/lci-analyzer/internal/config"
	"github.com/standardbeagle/lci-analyzer/internal/facade"
	"github.com/standardbeagle/lci-analyzer/internal/langparse"
)

func buildTestHandler(t *testing.T) *handler {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\nfunc A() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Project.Root = root
	registry, err := langparse.NewRegistry()
	if err != nil {
		t.Fatalf("unexpected registry error: %v", err)
	}
	return &handler{f: facade.New(cfg, registry, nil)}
}

func rawParams(t *testing.T, v interface{}) *json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	raw := json.RawMessage(b)
	return &raw
}

func TestHandle_AnalyzeMethodReturnsReport(t *testing.T) {
	h := buildTestHandler(t)
	req := &jsonrpc2.Request{Method: "analyze", Params: rawParams(t, rpcParams{})}

	result, err := h.handle(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected a non-nil result")
	}
}

func TestHandle_UnknownMethodIsMethodNotFound(t *testing.T) {
	h := buildTestHandler(t)
	req := &jsonrpc2.Request{Method: "bogus"}

	_, err := h.handle(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error for an unknown method")
	}
	rpcErr, ok := err.(*jsonrpc2.Error)
	if !ok {
		t.Fatalf("expected a *jsonrpc2.Error, got %T", err)
	}
	if rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("expected CodeMethodNotFound, got %v", rpcErr.Code)
	}
}

func TestHandle_InvalidParamsIsInvalidParamsError(t *testing.T) {
	h := buildTestHandler(t)
	bad := json.RawMessage(`not json`)
	req := &jsonrpc2.Request{Method: "analyze", Params: &bad}

	_, err := h.handle(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error for malformed params")
	}
	rpcErr, ok := err.(*jsonrpc2.Error)
	if !ok || rpcErr.Code != jsonrpc2.CodeInvalidParams {
		t.Fatalf("expected CodeInvalidParams, got %+v", err)
	}
}

func TestHandle_ReportGenerateReturnsRenderedBytes(t *testing.T) {
	h := buildTestHandler(t)
	req := &jsonrpc2.Request{Method: "report/generate", Params: rawParams(t, rpcParams{Format: "json"})}

	result, err := h.handle(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, ok := result.(json.RawMessage)
	if !ok {
		t.Fatalf("expected json.RawMessage, got %T", result)
	}
	if len(raw) == 0 || raw[0] != '{' {
		t.Errorf("expected rendered JSON bytes, got %s", raw)
	}
}

func TestHandle_QualityGateReturnsGateResult(t *testing.T) {
	h := buildTestHandler(t)
	req := &jsonrpc2.Request{Method: "quality_gate/evaluate", Params: rawParams(t, rpcParams{})}

	result, err := h.handle(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected a non-nil gate result")
	}
}
