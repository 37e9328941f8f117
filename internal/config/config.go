// Package config loads and validates project configuration for the
// analysis engine: budgets, thresholds, cache sizing, include/exclude
// globs. Mirrors the teacher's typed-section + Load/override-by-flag
// shape, serialized as TOML instead of KDL (KDL stays wired for the
// session-snapshot sidecar header, see internal/orchestrator).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the root configuration for one analysis session.
type Config struct {
	Version int       `toml:"version"`
	Project Project   `toml:"project"`
	Parse   Parse     `toml:"parse"`
	Cache   Cache     `toml:"cache"`
	Analyze Analyze   `toml:"analyze"`
	Gate    Gate      `toml:"gate"`
	Include []string  `toml:"include"`
	Exclude []string  `toml:"exclude"`
}

// Project describes what is being analyzed.
type Project struct {
	Root string `toml:"root"`
	Name string `toml:"name"`
}

// Parse holds the per-file parser budgets from spec.md §4.2.
type Parse struct {
	MaxLineLengthBytes int           `toml:"max_line_length_bytes"`
	PerFileBudget      time.Duration `toml:"per_file_budget"`
	MaxFileSizeBytes   int64         `toml:"max_file_size_bytes"`
}

// Cache configures the layered cache (spec.md §4.3).
type Cache struct {
	Dir               string        `toml:"dir"`
	L1MaxEntries      int           `toml:"l1_max_entries"`
	L1Shards          int           `toml:"l1_shards"`
	L2MaxBytes        int64         `toml:"l2_max_bytes"`
	TTL               time.Duration `toml:"ttl"`
}

// Analyze configures analyzer thresholds (spec.md §4.4, §9).
type Analyze struct {
	PerAnalyzerTimeout     time.Duration `toml:"per_analyzer_timeout"`
	RequestTimeout         time.Duration `toml:"request_timeout"`
	DuplicateMinLines      int           `toml:"duplicate_min_lines"`
	DuplicateMinTokens     int           `toml:"duplicate_min_tokens"`
	SemanticCloneThreshold float64       `toml:"semantic_clone_threshold"`
	MaxCyclomatic          int           `toml:"max_cyclomatic"`
}

// Gate configures the quality-gate CLI verb's pass/fail thresholds.
type Gate struct {
	MaxCritical          int     `toml:"max_critical"`
	MaxHigh              int     `toml:"max_high"`
	MinMaintainability   float64 `toml:"min_maintainability"`
}

// Default returns the built-in configuration. Every numeric default here
// traces to a concrete spec.md clause, not an arbitrary guess.
func Default() *Config {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Parse: Parse{
			MaxLineLengthBytes: 10_000, // spec.md §4.2
			PerFileBudget:      5 * time.Second,
			MaxFileSizeBytes:   10 * 1024 * 1024,
		},
		Cache: Cache{
			Dir:          filepath.Join(os.TempDir(), "lci-analyzer-cache"),
			L1MaxEntries: 4000,
			L1Shards:     16, // spec.md §4.3 default
			L2MaxBytes:   512 * 1024 * 1024,
			TTL:          2 * time.Hour,
		},
		Analyze: Analyze{
			PerAnalyzerTimeout:     30 * time.Second, // spec.md §5
			RequestTimeout:         120 * time.Second,
			DuplicateMinLines:      5,
			DuplicateMinTokens:     30,
			SemanticCloneThreshold: 0.85, // spec.md §4.4 default
			MaxCyclomatic:          15,
		},
		Gate: Gate{
			MaxCritical:        0,
			MaxHigh:            5,
			MinMaintainability: 50,
		},
		Include: []string{},
		Exclude: []string{
			"**/node_modules/**", "**/.git/**", "**/vendor/**",
			"**/dist/**", "**/build/**", "**/*.min.js",
		},
	}
}

// Load reads a TOML config file at path, layering it over Default().
// A missing file is not an error — the caller gets the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that downstream code assumes hold.
func (c *Config) Validate() error {
	if c.Parse.MaxLineLengthBytes <= 0 {
		return fmt.Errorf("parse.max_line_length_bytes must be positive")
	}
	if c.Parse.PerFileBudget <= 0 {
		return fmt.Errorf("parse.per_file_budget must be positive")
	}
	if c.Analyze.SemanticCloneThreshold < 0 || c.Analyze.SemanticCloneThreshold > 1 {
		return fmt.Errorf("analyze.semantic_clone_threshold must be in [0,1]")
	}
	if c.Cache.L1Shards <= 0 {
		return fmt.Errorf("cache.l1_shards must be positive")
	}
	return nil
}

// ParallelWorkers returns the analyzer concurrency bound: the host CPU
// count (spec.md §4.6 rule 1); no config field overrides it.
func (c *Config) ParallelWorkers() int {
	return runtime.NumCPU()
}
