// Command pmat is the engine's entrypoint. By default it runs the
// urfave/cli command surface (analyze, report generate, quality-gate);
// with --stdio-jsonrpc or --stdio-mcp it instead serves one of the two
// stdio protocol surfaces, staying up until stdin closes or it's
// signaled. Mirrors teacher's cmd/lci/main.go: a single binary whose
// mode is chosen by flags/environment rather than separate binaries per
// transport.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/standardbeagle/lci-analyzer/internal/adapters/cli"
	"github.com/standardbeagle/lci-analyzer/internal/adapters/stdio"
	"github.com/standardbeagle/lci-analyzer/internal/config"
	"github.com/standardbeagle/lci-analyzer/internal/facade"
	"github.com/standardbeagle/lci-analyzer/internal/git"
	"github.com/standardbeagle/lci-analyzer/internal/langparse"
)

// Version is stamped at build time via -ldflags; left as a fixed
// fallback for a plain `go build`, matching the lack of an external
// version package in this module.
var Version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pmat: %v\n", err)
		os.Exit(cli.ExitUsageError)
	}

	registry, err := langparse.NewRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pmat: %v\n", err)
		os.Exit(cli.ExitInternalError)
	}

	gitProvider, _ := git.NewProvider(cfg.Project.Root)

	switch mode() {
	case modeJSONRPC:
		f := facade.New(cfg, registry, gitProvider)
		if err := stdio.ServeJSONRPC(ctx, stdinStdoutCloser{}, f, nil); err != nil {
			fmt.Fprintf(os.Stderr, "pmat: %v\n", err)
			os.Exit(cli.ExitInternalError)
		}
	case modeMCP:
		f := facade.New(cfg, registry, gitProvider)
		srv := stdio.NewMCPServer(f, "pmat", Version)
		if err := srv.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "pmat: %v\n", err)
			os.Exit(cli.ExitInternalError)
		}
	default:
		app := cli.App(cfg, registry, gitProvider, Version)
		if err := app.RunContext(ctx, os.Args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			if code, ok := exitCode(err); ok {
				os.Exit(code)
			}
			os.Exit(cli.ExitInternalError)
		}
	}
}

type runMode int

const (
	modeCLI runMode = iota
	modeJSONRPC
	modeMCP
)

// mode decides which surface to run, mirroring teacher's isMCPMode
// auto-detection: an explicit flag always wins, falling back to the
// default CLI surface otherwise (no auto-detection on a bare pipe,
// since this engine's stdio surfaces are opt-in, not the common case).
func mode() runMode {
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--stdio-jsonrpc":
			return modeJSONRPC
		case "--stdio-mcp":
			return modeMCP
		}
	}
	if os.Getenv("PMAT_STDIO_MODE") == "jsonrpc" {
		return modeJSONRPC
	}
	if os.Getenv("PMAT_STDIO_MODE") == "mcp" {
		return modeMCP
	}
	return modeCLI
}

func loadConfig() (*config.Config, error) {
	path := os.Getenv("PMAT_CONFIG")
	if path == "" {
		path = "pmat.toml"
	}
	return config.Load(path)
}

type exitCoder interface {
	ExitCode() int
}

func exitCode(err error) (int, bool) {
	if ec, ok := err.(exitCoder); ok {
		return ec.ExitCode(), true
	}
	return 0, false
}

// stdinStdoutCloser adapts the process's stdin/stdout into the
// io.ReadWriteCloser ServeJSONRPC expects; Close is a no-op since the
// process owns these descriptors for its whole lifetime.
type stdinStdoutCloser struct{}

func (stdinStdoutCloser) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdinStdoutCloser) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdinStdoutCloser) Close() error                { return nil }
