// Package stdio exposes the facade over two stdin/stdout surfaces: a
// plain JSON-RPC 2.0 framing for the engine's own analyze/report/gate
// methods, and an MCP tool surface for editor/agent integrations. Both
// ride the same facade.Facade dispatcher — this package only adapts
// wire framing, it owns no analysis logic of its own.
package stdio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/standardbeagle/lci-analyzer/internal/facade"
	"github.com/standardbeagle/lci-analyzer/internal/report"
)

// rpcParams is the JSON body of every analyze/report/gate request this
// framing accepts. Only the fields a given method needs are populated.
type rpcParams struct {
	ProjectPath string   `json:"project_path"`
	Include     []string `json:"include"`
	Exclude     []string `json:"exclude"`
	Format      string   `json:"format"`
}

// handler adapts jsonrpc2.Request/Conn onto facade.Dispatch. Grounded on
// sourcegraph/jsonrpc2's HandlerWithError idiom: a plain function
// returning (result, error) instead of a Handler implementing Handle
// directly and replying itself.
type handler struct {
	f      *facade.Facade
	logger *log.Logger
}

// methodOperations maps this framing's JSON-RPC method names onto the
// facade's transport-neutral Operation constants.
var methodOperations = map[string]facade.Operation{
	"analyze":               facade.OpAnalyze,
	"report/generate":       facade.OpReportGen,
	"quality_gate/evaluate": facade.OpQualityGate,
}

func (h *handler) handle(ctx context.Context, req *jsonrpc2.Request) (interface{}, error) {
	op, ok := methodOperations[req.Method]
	if !ok {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: fmt.Sprintf("unknown method %q", req.Method)}
	}

	var params rpcParams
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
		}
	}

	resp, err := h.f.Dispatch(ctx, facade.UnifiedRequest{
		Operation:   op,
		ProjectPath: params.ProjectPath,
		Include:     params.Include,
		Exclude:     params.Exclude,
		Format:      report.Format(params.Format),
	})
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	}

	switch op {
	case facade.OpReportGen:
		return json.RawMessage(resp.Rendered), nil
	case facade.OpQualityGate:
		return resp.Gate, nil
	default:
		return resp.Report, nil
	}
}

// ServeJSONRPC runs a JSON-RPC 2.0 connection over rwc until it closes or
// ctx is cancelled, dispatching analyze/report/gate methods through f.
func ServeJSONRPC(ctx context.Context, rwc io.ReadWriteCloser, f *facade.Facade, logger *log.Logger) error {
	h := &handler{f: f, logger: logger}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(h.handle))
	select {
	case <-conn.DisconnectNotify():
		return nil
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	}
}
