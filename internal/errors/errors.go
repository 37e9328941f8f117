package errors

import (
	"fmt"
	"time"

	"github.com/standardbeagle/lci-analyzer/internal/types"
)

// Kind is one of the taxonomy members the engine reports to its adapters.
// Adapters type-switch on Kind(), never on the concrete Go type.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindParseError        Kind = "parse_error"
	KindTimeout           Kind = "timeout"
	KindResourceExhausted Kind = "resource_exhausted"
	KindCacheCorruption   Kind = "cache_corruption"
	KindTransportError    Kind = "transport_error"
	KindInternal          Kind = "internal"
)

// EngineError is the common shape every taxonomy member implements.
type EngineError interface {
	error
	Kind() Kind
	Unwrap() error
}

// InvalidInputError wraps malformed request parameters, bad globs, or an
// unknown operation name. Always surfaced to the caller, never recovered.
type InvalidInputError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewInvalidInputError creates a new invalid-input error with context.
func NewInvalidInputError(field, value string, err error) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value, Underlying: err, Timestamp: time.Now()}
}

func (e *InvalidInputError) Kind() Kind    { return KindInvalidInput }
func (e *InvalidInputError) Unwrap() error { return e.Underlying }

// Error implements the error interface
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for %s=%q: %v", e.Field, e.Value, e.Underlying)
}

// ParseFailure is a per-file parse error, recovered locally: the file is
// recorded as skipped and no partial AST is kept for it. It is never fatal
// to the overall request.
type ParseFailure struct {
	FileID     types.FileID
	FilePath   string
	Language   types.Language
	ByteOffset int
	Reason     string
	Timestamp  time.Time
}

// NewParseFailure creates a new parse failure.
func NewParseFailure(fileID types.FileID, path string, lang types.Language, byteOffset int, reason string) *ParseFailure {
	return &ParseFailure{
		FileID: fileID, FilePath: path, Language: lang,
		ByteOffset: byteOffset, Reason: reason, Timestamp: time.Now(),
	}
}

func (e *ParseFailure) Kind() Kind    { return KindParseError }
func (e *ParseFailure) Unwrap() error { return nil }

// Error implements the error interface
func (e *ParseFailure) Error() string {
	return fmt.Sprintf("parse error in %s (%s) at byte %d: %s", e.FilePath, e.Language, e.ByteOffset, e.Reason)
}

// TimeoutError marks a per-file parse, per-analyzer, or per-request deadline
// breach. Never fatal — callers attach it as a diagnostic next to whatever
// partial result was gathered.
type TimeoutError struct {
	Scope     string // "file", "analyzer", "request"
	Name      string
	Budget    time.Duration
	Timestamp time.Time
}

// NewTimeoutError creates a new timeout error scoped to file, analyzer, or request.
func NewTimeoutError(scope, name string, budget time.Duration) *TimeoutError {
	return &TimeoutError{Scope: scope, Name: name, Budget: budget, Timestamp: time.Now()}
}

func (e *TimeoutError) Kind() Kind    { return KindTimeout }
func (e *TimeoutError) Unwrap() error { return nil }

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %q exceeded budget %s", e.Scope, e.Name, e.Budget)
}

// ResourceExhaustedError fires when a memory cap or open-file limit is hit.
// No further work is scheduled for the triggering unit.
type ResourceExhaustedError struct {
	Resource  string
	Limit     string
	Timestamp time.Time
}

// NewResourceExhaustedError creates a new resource-exhausted error.
func NewResourceExhaustedError(resource, limit string) *ResourceExhaustedError {
	return &ResourceExhaustedError{Resource: resource, Limit: limit, Timestamp: time.Now()}
}

func (e *ResourceExhaustedError) Kind() Kind    { return KindResourceExhausted }
func (e *ResourceExhaustedError) Unwrap() error { return nil }

// Error implements the error interface
func (e *ResourceExhaustedError) Error() string {
	return fmt.Sprintf("resource exhausted: %s (limit %s)", e.Resource, e.Limit)
}

// CacheCorruptionError is logged, the entry is invalidated, and the caller
// recomputes — never propagated as a request failure.
type CacheCorruptionError struct {
	Key        string
	Underlying error
	Timestamp  time.Time
}

// NewCacheCorruptionError creates a new cache-corruption error.
func NewCacheCorruptionError(key string, err error) *CacheCorruptionError {
	return &CacheCorruptionError{Key: key, Underlying: err, Timestamp: time.Now()}
}

func (e *CacheCorruptionError) Kind() Kind    { return KindCacheCorruption }
func (e *CacheCorruptionError) Unwrap() error { return e.Underlying }

// Error implements the error interface
func (e *CacheCorruptionError) Error() string {
	return fmt.Sprintf("cache entry %s corrupted: %v", e.Key, e.Underlying)
}

// TransportError is adapter-specific (bad JSON framing, broken connection)
// and is handled entirely inside the adapter — it never reaches the core.
type TransportError struct {
	Adapter    string
	Underlying error
	Timestamp  time.Time
}

// NewTransportError creates a new transport error tagged with its adapter.
func NewTransportError(adapter string, err error) *TransportError {
	return &TransportError{Adapter: adapter, Underlying: err, Timestamp: time.Now()}
}

func (e *TransportError) Kind() Kind    { return KindTransportError }
func (e *TransportError) Unwrap() error { return e.Underlying }

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport error: %v", e.Adapter, e.Underlying)
}

// InternalError signals an invariant violation. Its Error() string carries a
// stable ID a user can report, never a source-language stack trace.
type InternalError struct {
	ID         string
	Underlying error
	Timestamp  time.Time
}

// NewInternalError creates a new internal error with a stable report ID.
func NewInternalError(id string, err error) *InternalError {
	return &InternalError{ID: id, Underlying: err, Timestamp: time.Now()}
}

func (e *InternalError) Kind() Kind    { return KindInternal }
func (e *InternalError) Unwrap() error { return e.Underlying }

// Error implements the error interface
func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error [%s]", e.ID)
}

// MultiError aggregates independent errors, e.g. per-analyzer outcomes the
// orchestrator wants to report together without picking one as "the" failure.
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, filtering out nils.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
