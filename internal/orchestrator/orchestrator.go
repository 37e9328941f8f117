package orchestrator

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/lci-analyzer/internal/analyzers"
	"github.com/standardbeagle/lci-analyzer/internal/config"
	"github.com/standardbeagle/lci-analyzer/internal/git"
	"github.com/standardbeagle/lci-analyzer/internal/ranking"
	"github.com/standardbeagle/lci-analyzer/internal/tools"
	"github.com/standardbeagle/lci-analyzer/internal/types"
)

// ToolName and ToolVersion stamp every report's metadata.
const (
	ToolName    = "lci-analyzer"
	ToolVersion = "0.1.0"

	// churnWindow bounds how far back ChurnSince looks; the composite score
	// cares about recent change frequency, not a repository's entire history.
	churnWindow = 90 * 24 * time.Hour
)

// Orchestrator owns the registered analyzer set and fans a parsed Project
// out to all of them concurrently, matching teacher's indexing pipeline's
// bounded-worker idiom but generalized from one indexing pass over files
// to N independently deadlined analyzer passes merging into one
// types.DefectReport, each analyzer's timeout or failure isolated from the
// others rather than aborting the whole run.
type Orchestrator struct {
	cfg        *config.Config
	analyzers  []analyzers.Analyzer
	defectRisk *analyzers.DefectProbabilityAnalyzer
	git        *git.Provider
}

// New builds an Orchestrator with every analyzer registered explicitly —
// no reflection-based discovery, per the engine's design notes. gitProvider
// may be nil, in which case the defect-probability analyzer runs without a
// churn signal.
func New(cfg *config.Config, ids *tools.DefectIDGenerator, gitProvider *git.Provider) *Orchestrator {
	complexity := analyzers.NewComplexityAnalyzer(cfg.Analyze.MaxCyclomatic, ids)
	duplicate := analyzers.NewDuplicateAnalyzer(cfg.Analyze.DuplicateMinLines, cfg.Analyze.DuplicateMinTokens, cfg.Analyze.SemanticCloneThreshold, ids)
	satd := analyzers.NewSATDAnalyzer(ids)
	dependency := analyzers.NewDependencyAnalyzer(ids)
	deadCode := analyzers.NewDeadCodeAnalyzer(ids)
	defectRisk := analyzers.NewDefectProbabilityAnalyzer(ids)
	bigO := analyzers.NewBigOAnalyzer(ids)

	return &Orchestrator{
		cfg: cfg,
		analyzers: []analyzers.Analyzer{
			complexity, duplicate, satd, dependency, deadCode, defectRisk, bigO,
		},
		defectRisk: defectRisk,
		git:        gitProvider,
	}
}

// analyzerOutcome is one analyzer's result, collected under a mutex since
// every analyzer runs on its own goroutine.
type analyzerOutcome struct {
	category types.Category
	defects  []types.Defect
	outcome  string
	detail   string
}

// Run parses nothing itself — proj must already be built (see
// ParseProject) — and executes every registered analyzer concurrently,
// bounded by cfg.ParallelWorkers(), each under its own
// cfg.Analyze.PerAnalyzerTimeout deadline derived from ctx. The overall
// request is additionally bounded by cfg.Analyze.RequestTimeout; exceeding
// it marks the report Cancelled rather than discarding whatever defects
// were already collected.
func (o *Orchestrator) Run(ctx context.Context, proj *analyzers.Project) (*types.DefectReport, error) {
	start := time.Now()

	reqCtx := ctx
	var cancel context.CancelFunc
	if o.cfg.Analyze.RequestTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, o.cfg.Analyze.RequestTimeout)
		defer cancel()
	}

	o.wireChurn(reqCtx, proj.Root)

	limit := o.cfg.ParallelWorkers()
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(reqCtx)
	g.SetLimit(limit)

	var mu sync.Mutex
	outcomes := make([]analyzerOutcome, 0, len(o.analyzers))

	for _, a := range o.analyzers {
		a := a
		g.Go(func() error {
			analyzerCtx := gctx
			var acancel context.CancelFunc
			if o.cfg.Analyze.PerAnalyzerTimeout > 0 {
				analyzerCtx, acancel = context.WithTimeout(gctx, o.cfg.Analyze.PerAnalyzerTimeout)
				defer acancel()
			}

			defects, err := a.Analyze(analyzerCtx, proj)

			out := analyzerOutcome{category: a.Category(), defects: defects, outcome: "ok"}
			switch {
			case err != nil && analyzerCtx.Err() == context.DeadlineExceeded:
				out.outcome = "timeout"
				out.detail = err.Error()
			case err != nil && gctx.Err() == context.Canceled:
				out.outcome = "cancelled"
				out.detail = err.Error()
			case err != nil:
				out.outcome = "error"
				out.detail = err.Error()
			}

			mu.Lock()
			outcomes = append(outcomes, out)
			mu.Unlock()

			// Never propagate an analyzer's own error to the group — each
			// analyzer's failure is isolated and recorded as a diagnostic,
			// not a reason to cancel the others via errgroup's shared
			// derived context.
			return nil
		})
	}

	// g.Wait's error is always nil (see above), but it still blocks until
	// every analyzer goroutine has returned.
	_ = g.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].category < outcomes[j].category })

	var allDefects []types.Defect
	diagnostics := make([]types.AnalyzerDiagnostic, 0, len(outcomes))
	for _, out := range outcomes {
		allDefects = append(allDefects, out.defects...)
		diagnostics = append(diagnostics, types.AnalyzerDiagnostic{
			Category: out.category,
			Outcome:  out.outcome,
			Detail:   out.detail,
		})
	}

	summary := ranking.Summarize(allDefects, 10)
	report := &types.DefectReport{
		Metadata: types.ReportMetadata{
			Tool:                ToolName,
			Version:             ToolVersion,
			GeneratedAt:         start,
			ProjectRoot:         proj.Root,
			TotalFilesAnalyzed:  len(proj.Files),
			AnalysisDurationMS:  time.Since(start).Milliseconds(),
			Cancelled:           reqCtx.Err() != nil,
			AnalyzerDiagnostics: diagnostics,
		},
		Summary:   summary,
		Defects:   allDefects,
		FileIndex: ranking.FileIndex(allDefects),
	}

	return report, nil
}

// wireChurn computes a normalized churn signal and hands it to the
// defect-probability analyzer. Churn is best-effort: a non-git project, or
// one with no recent history, leaves the analyzer running without it
// rather than failing the whole run.
func (o *Orchestrator) wireChurn(ctx context.Context, root string) {
	if o.git == nil {
		return
	}
	churnCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	raw, err := o.git.ChurnSince(churnCtx, time.Now().Add(-churnWindow))
	if err != nil || len(raw) == 0 {
		return
	}
	o.defectRisk.Churn = git.NormalizedChurn(raw)
}
