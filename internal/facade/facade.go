// Package facade is the engine's single service boundary: every protocol
// adapter (stdio, HTTP, CLI) dispatches through the same Operation
// registry instead of each re-implementing analyze/report/gate logic.
// Generalized from teacher's internal/mcp.Server.registerTools, which
// wires every MCP tool name to one handler method on a single *mcp.Tool
// registry — here the registry key is a transport-neutral Operation
// string and the handler signature drops the MCP-specific request/result
// types in favor of a plain UnifiedRequest/UnifiedResponse pair any
// transport can marshal into its own wire format.
package facade

import (
	"context"
	"fmt"

	"github.com/standardbeagle/lci-analyzer/internal/config"
	"github.com/standardbeagle/lci-analyzer/internal/git"
	"github.com/standardbeagle/lci-analyzer/internal/langparse"
	"github.com/standardbeagle/lci-analyzer/internal/orchestrator"
	"github.com/standardbeagle/lci-analyzer/internal/qualitygate"
	"github.com/standardbeagle/lci-analyzer/internal/report"
	"github.com/standardbeagle/lci-analyzer/internal/tools"
	"github.com/standardbeagle/lci-analyzer/internal/types"
)

// Operation names one request this facade can serve. Every protocol
// adapter maps its own verbs/methods/routes onto these.
type Operation string

const (
	OpAnalyze      Operation = "analyze"
	OpReportGen    Operation = "report.generate"
	OpQualityGate  Operation = "quality_gate.evaluate"
)

// UnifiedRequest is the transport-neutral input to every Operation.
// Adapters populate only the fields their operation needs.
type UnifiedRequest struct {
	Operation Operation

	// ProjectPath is the root directory to analyze (OpAnalyze, OpReportGen,
	// OpQualityGate all re-run analysis before acting on the result).
	ProjectPath string
	Include     []string
	Exclude     []string

	// Format selects a report.Format for OpReportGen; ignored otherwise.
	Format report.Format
}

// UnifiedResponse is the transport-neutral output of every Operation.
// Report is always populated; Rendered is also set for OpReportGen and Gate
// for OpQualityGate.
type UnifiedResponse struct {
	Report   *types.DefectReport
	Rendered []byte
	Gate     *qualitygate.Result
}

// OperationHandler executes one Operation against a request.
type OperationHandler func(ctx context.Context, req UnifiedRequest) (UnifiedResponse, error)

// Facade owns the operation registry and the dependencies every handler
// closes over (config, parser registry, orchestrator).
type Facade struct {
	cfg      *config.Config
	registry *langparse.Registry
	handlers map[Operation]OperationHandler
}

// New builds a Facade and registers every operation's handler, mirroring
// teacher's registerTools: one explicit registration per capability, no
// reflection-based discovery.
func New(cfg *config.Config, parserRegistry *langparse.Registry, gitProvider *git.Provider) *Facade {
	ids := tools.NewDefectIDGenerator(cfg.Project.Root)
	orch := orchestrator.New(cfg, ids, gitProvider)

	f := &Facade{
		cfg:      cfg,
		registry: parserRegistry,
		handlers: make(map[Operation]OperationHandler),
	}

	f.handlers[OpAnalyze] = f.handleAnalyze(orch)
	f.handlers[OpReportGen] = f.handleReportGenerate(orch)
	f.handlers[OpQualityGate] = f.handleQualityGate(orch)

	return f
}

// Dispatch looks up req.Operation in the registry and runs it. An unknown
// operation is reported as an error rather than a panic — every adapter is
// expected to validate its own verb/route/method against this boundary.
func (f *Facade) Dispatch(ctx context.Context, req UnifiedRequest) (UnifiedResponse, error) {
	h, ok := f.handlers[req.Operation]
	if !ok {
		return UnifiedResponse{}, fmt.Errorf("facade: unknown operation %q", req.Operation)
	}
	return h(ctx, req)
}

// runAnalysis is the shared discover+parse+analyze sequence every
// operation needs before it can act on a DefectReport.
func (f *Facade) runAnalysis(ctx context.Context, orch *orchestrator.Orchestrator, req UnifiedRequest) (*types.DefectReport, error) {
	root := req.ProjectPath
	if root == "" {
		root = f.cfg.Project.Root
	}
	include := req.Include
	if include == nil {
		include = f.cfg.Include
	}
	exclude := req.Exclude
	if exclude == nil {
		exclude = f.cfg.Exclude
	}

	paths, err := orchestrator.Discover(ctx, root, include, exclude)
	if err != nil {
		return nil, fmt.Errorf("facade: discover: %w", err)
	}

	budget := langparse.Budget{MaxLineLengthBytes: f.cfg.Parse.MaxLineLengthBytes, WallClock: f.cfg.Parse.PerFileBudget}
	proj, _ := orchestrator.ParseProject(ctx, root, paths, f.registry, budget, f.cfg.Parse.MaxFileSizeBytes)
	return orch.Run(ctx, proj)
}

func (f *Facade) handleAnalyze(orch *orchestrator.Orchestrator) OperationHandler {
	return func(ctx context.Context, req UnifiedRequest) (UnifiedResponse, error) {
		rpt, err := f.runAnalysis(ctx, orch, req)
		if err != nil {
			return UnifiedResponse{}, err
		}
		return UnifiedResponse{Report: rpt}, nil
	}
}

func (f *Facade) handleReportGenerate(orch *orchestrator.Orchestrator) OperationHandler {
	return func(ctx context.Context, req UnifiedRequest) (UnifiedResponse, error) {
		rpt, err := f.runAnalysis(ctx, orch, req)
		if err != nil {
			return UnifiedResponse{}, err
		}
		format := req.Format
		if format == "" {
			format = report.FormatJSON
		}
		rendered, err := report.Render(rpt, format)
		if err != nil {
			return UnifiedResponse{}, fmt.Errorf("facade: render: %w", err)
		}
		return UnifiedResponse{Report: rpt, Rendered: rendered}, nil
	}
}

func (f *Facade) handleQualityGate(orch *orchestrator.Orchestrator) OperationHandler {
	return func(ctx context.Context, req UnifiedRequest) (UnifiedResponse, error) {
		rpt, err := f.runAnalysis(ctx, orch, req)
		if err != nil {
			return UnifiedResponse{}, err
		}
		result := qualitygate.Evaluate(rpt, f.cfg.Gate)
		return UnifiedResponse{Report: rpt, Gate: &result}, nil
	}
}
