// Package cli builds the engine's command-line surface on urfave/cli/v2,
// following teacher's cmd/lci/main.go shape: one *cli.App, global flags
// that seed config overrides, one *cli.Command per verb. Every command
// here dispatches into the same facade.Facade the stdio and HTTP
// adapters use — this package owns flag parsing and exit-code mapping,
// nothing else.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lci-analyzer/internal/config"
	"github.com/standardbeagle/lci-analyzer/internal/facade"
	"github.com/standardbeagle/lci-analyzer/internal/git"
	"github.com/standardbeagle/lci-analyzer/internal/langparse"
	"github.com/standardbeagle/lci-analyzer/internal/qualitygate"
	"github.com/standardbeagle/lci-analyzer/internal/report"
)

// Exit codes, matching the engine's documented CLI contract.
const (
	ExitOK              = 0
	ExitGateViolation   = 1
	ExitPartialSuccess  = 2
	ExitUsageError      = 64
	ExitInputError      = 65
	ExitInternalError   = 70
)

// commonFlags are accepted by every analysis-driving verb.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "format", Usage: "Output format: json, sarif, markdown, csv, or text", Value: "json"},
		&cli.IntFlag{Name: "top-files", Usage: "Top N hotspot files (accepted but ignored: the listing is not limited)"},
		&cli.StringFlag{Name: "output", Usage: "Write output to this path instead of stdout"},
		&cli.StringFlag{Name: "project-path", Usage: "Project root directory to analyze (overrides config)"},
		&cli.StringSliceFlag{Name: "include", Usage: "Glob patterns to include"},
		&cli.StringSliceFlag{Name: "exclude", Usage: "Glob patterns to exclude"},
		&cli.StringFlag{Name: "toolchain", Usage: "Language toolchain (accepted but ignored: every supported language is analyzed)"},
		&cli.IntFlag{Name: "max-cyclomatic", Usage: "Cyclomatic-complexity ceiling (accepted but ignored: the configured ceiling applies)"},
		&cli.StringFlag{Name: "severity", Usage: "Minimum severity: critical, high, medium, or low (accepted but ignored: every severity is reported)"},
		&cli.BoolFlag{Name: "dry-run", Usage: "Skip analyzers (accepted but ignored: analyzers always run)"},
		&cli.BoolFlag{Name: "json", Usage: "Shorthand for --format json"},
	}
}

// App builds the *cli.App wired to f, loading cfg as the base
// configuration every command's flags can override.
func App(cfg *config.Config, parserRegistry *langparse.Registry, gitProvider *git.Provider, version string) *cli.App {
	f := facade.New(cfg, parserRegistry, gitProvider)

	return &cli.App{
		Name:    "pmat",
		Usage:   "Multi-language static analysis: complexity, duplication, dead code, SATD, and defect ranking",
		Version: version,
		Commands: []*cli.Command{
			analyzeCommand(f),
			reportCommand(f),
			qualityGateCommand(f, cfg),
		},
	}
}

// buildRequest turns the common flag set into a facade.UnifiedRequest,
// shared by every verb below.
func buildRequest(c *cli.Context, op facade.Operation) facade.UnifiedRequest {
	req := facade.UnifiedRequest{
		Operation:   op,
		ProjectPath: c.String("project-path"),
		Include:     c.StringSlice("include"),
		Exclude:     c.StringSlice("exclude"),
	}
	if c.NArg() > 0 {
		req.ProjectPath = c.Args().First()
	}

	format := c.String("format")
	if c.Bool("json") {
		format = "json"
	}
	req.Format = report.Format(format)
	return req
}

// writeOutput sends b to the --output path if set, stdout otherwise.
func writeOutput(c *cli.Context, b []byte) error {
	path := c.String("output")
	if path == "" {
		_, err := fmt.Fprintln(c.App.Writer, string(b))
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func analyzeCommand(f *facade.Facade) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Run the full analyzer suite over a project",
		Flags: commonFlags(),
		Action: func(c *cli.Context) error {
			resp, err := f.Dispatch(c.Context, buildRequest(c, facade.OpAnalyze))
			if err != nil {
				return cli.Exit(err.Error(), ExitInternalError)
			}
			out, err := report.Render(resp.Report, report.Format(c.String("format")))
			if err != nil {
				return cli.Exit(err.Error(), ExitInternalError)
			}
			if writeErr := writeOutput(c, out); writeErr != nil {
				return cli.Exit(writeErr.Error(), ExitInternalError)
			}
			if resp.Report.Metadata.Cancelled {
				return cli.Exit("", ExitPartialSuccess)
			}
			return nil
		},
	}
}

func reportCommand(f *facade.Facade) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Generate a report in the requested format",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Analyze a project and render the result",
				Flags: commonFlags(),
				Action: func(c *cli.Context) error {
					resp, err := f.Dispatch(c.Context, buildRequest(c, facade.OpReportGen))
					if err != nil {
						return cli.Exit(err.Error(), ExitInternalError)
					}
					if err := writeOutput(c, resp.Rendered); err != nil {
						return cli.Exit(err.Error(), ExitInternalError)
					}
					return nil
				},
			},
		},
	}
}

func qualityGateCommand(f *facade.Facade, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "quality-gate",
		Usage: "Analyze a project and enforce the configured quality thresholds",
		Flags: commonFlags(),
		Action: func(c *cli.Context) error {
			resp, err := f.Dispatch(c.Context, buildRequest(c, facade.OpQualityGate))
			if err != nil {
				return cli.Exit(err.Error(), ExitInternalError)
			}

			printGateResult(c.App.Writer, resp.Gate)
			if !resp.Gate.Passed {
				return cli.Exit("", ExitGateViolation)
			}
			return nil
		},
	}
}

func printGateResult(w io.Writer, result *qualitygate.Result) {
	if result.Passed {
		fmt.Fprintf(w, "quality gate: PASSED (maintainability %.1f)\n", result.MaintainabilityScore)
		return
	}
	fmt.Fprintf(w, "quality gate: FAILED (maintainability %.1f)\n", result.MaintainabilityScore)
	for _, v := range result.Violations {
		fmt.Fprintf(w, "  - %s\n", v.Message)
	}
}
