package stdio

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/lci-analyzer/internal/facade"
	"github.com/standardbeagle/lci-analyzer/internal/report"
)

// toolParams is the MCP tool argument shape, shared across every
// registered tool since they all forward into the same facade
// operations with the same inputs.
type toolParams struct {
	ProjectPath string   `json:"project_path"`
	Include     []string `json:"include,omitempty"`
	Exclude     []string `json:"exclude,omitempty"`
	Format      string   `json:"format,omitempty"`
}

func projectPathSchema() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"project_path": {Type: "string", Description: "Root directory to analyze"},
		"include":      {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "Glob patterns to include"},
		"exclude":      {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "Glob patterns to exclude"},
	}
}

// MCPServer builds an MCP server exposing the facade's operations as
// tools, following teacher's registerTools idiom: one explicit
// s.server.AddTool(&mcp.Tool{...}, handler) call per capability.
type MCPServer struct {
	server *mcp.Server
	f      *facade.Facade
}

// NewMCPServer registers every facade operation as an MCP tool.
func NewMCPServer(f *facade.Facade, name, version string) *MCPServer {
	s := &MCPServer{
		f:      f,
		server: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
	}

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze",
		Description: "Run the full analyzer suite over a project and return a defect report.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: projectPathSchema()},
	}, s.handleAnalyze)

	reportProps := projectPathSchema()
	reportProps["format"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Output format: json, sarif, markdown, csv, or text",
	}
	s.server.AddTool(&mcp.Tool{
		Name:        "report_generate",
		Description: "Analyze a project and render the result in the requested report format.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: reportProps},
	}, s.handleReportGenerate)

	s.server.AddTool(&mcp.Tool{
		Name:        "quality_gate",
		Description: "Analyze a project and evaluate it against the configured quality gate thresholds.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: projectPathSchema()},
	}, s.handleQualityGate)

	return s
}

// Run serves the MCP tool surface over stdio until ctx is cancelled.
func (s *MCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func parseToolParams(req *mcp.CallToolRequest) (toolParams, error) {
	var p toolParams
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return p, fmt.Errorf("invalid parameters: %w", err)
	}
	return p, nil
}

func textResult(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(content)}}}, nil
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}, nil
}

func (s *MCPServer) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := parseToolParams(req)
	if err != nil {
		return errorResult(err)
	}
	resp, err := s.f.Dispatch(ctx, facade.UnifiedRequest{
		Operation: facade.OpAnalyze, ProjectPath: p.ProjectPath, Include: p.Include, Exclude: p.Exclude,
	})
	if err != nil {
		return errorResult(err)
	}
	return textResult(resp.Report)
}

func (s *MCPServer) handleReportGenerate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := parseToolParams(req)
	if err != nil {
		return errorResult(err)
	}
	resp, err := s.f.Dispatch(ctx, facade.UnifiedRequest{
		Operation: facade.OpReportGen, ProjectPath: p.ProjectPath, Include: p.Include, Exclude: p.Exclude,
		Format: report.Format(p.Format),
	})
	if err != nil {
		return errorResult(err)
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(resp.Rendered)}}}, nil
}

func (s *MCPServer) handleQualityGate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := parseToolParams(req)
	if err != nil {
		return errorResult(err)
	}
	resp, err := s.f.Dispatch(ctx, facade.UnifiedRequest{
		Operation: facade.OpQualityGate, ProjectPath: p.ProjectPath, Include: p.Include, Exclude: p.Exclude,
	})
	if err != nil {
		return errorResult(err)
	}
	return textResult(resp.Gate)
}
