// Package errors implements the error taxonomy shared by every xmlcu-*
// tool: usage, environment, parse, overflow, signal and internal
// failures, each carrying enough context for errmsg to format a
// "<progname>: <label>: <message>" line.
package errors

import (
	"fmt"
	"time"
)

// Kind classifies a failure the way every tool's error path needs to:
// enough to decide the exit code and whether the offending file should
// merely be skipped or the whole run aborted.
type Kind string

const (
	KindUsage       Kind = "usage"
	KindEnvironment Kind = "environment"
	KindParse       Kind = "parse"
	KindOverflow    Kind = "overflow"
	KindSignal      Kind = "signal"
	KindInternal    Kind = "internal"
)

// ParseError locates a tokenizer or selection failure the way the
// std-parser reports it: file, line, column, byte offset and path
// depth, per spec.md §7.
type ParseError struct {
	File       string
	Line       int
	Column     int
	Byte       int64
	Depth      int
	Underlying error
	Timestamp  time.Time
}

func NewParseError(file string, line, column int, byteOffset int64, depth int, err error) *ParseError {
	return &ParseError{
		File:       file,
		Line:       line,
		Column:     column,
		Byte:       byteOffset,
		Depth:      depth,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: byte %d, depth %d: %v", e.File, e.Line, e.Column, e.Byte, e.Depth, e.Underlying)
}

func (e *ParseError) Unwrap() error { return e.Underlying }

func (e *ParseError) Kind() Kind { return KindParse }

// EnvironmentError wraps a failure to open, fork, mkstemp, or otherwise
// touch the outside world for a given path.
type EnvironmentError struct {
	Op         string
	Path       string
	Underlying error
}

func NewEnvironmentError(op, path string, err error) *EnvironmentError {
	return &EnvironmentError{Op: op, Path: path, Underlying: err}
}

func (e *EnvironmentError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Underlying)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Underlying)
}

func (e *EnvironmentError) Unwrap() error { return e.Underlying }

func (e *EnvironmentError) Kind() Kind { return KindEnvironment }

// UsageError signals a CLI argument mistake: missing required file,
// conflicting options, malformed :xpath token.
type UsageError struct {
	Message string
}

func NewUsageError(format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

func (e *UsageError) Error() string { return e.Message }

func (e *UsageError) Kind() Kind { return KindUsage }

// OverflowError reports a buffer that exceeded MAXSTRINGSIZE (64 MiB).
type OverflowError struct {
	Limit   int64
	Actual  int64
	Context string
}

func NewOverflowError(context string, limit, actual int64) *OverflowError {
	return &OverflowError{Context: context, Limit: limit, Actual: actual}
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s: size %d exceeds limit %d", e.Context, e.Actual, e.Limit)
}

func (e *OverflowError) Kind() Kind { return KindOverflow }

// InternalError is raised for invariant violations: stack underflow,
// registry corruption, an impossible cursor state.
type InternalError struct {
	Message string
}

func NewInternalError(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}

func (e *InternalError) Error() string { return "internal: " + e.Message }

func (e *InternalError) Kind() Kind { return KindInternal }

// Classified is implemented by every error type in this package so
// callers can route on Kind without type-switching on the concrete type.
type Classified interface {
	error
	Kind() Kind
}

// MultiError aggregates independent per-file failures, e.g. when
// xml-cat continues past a file that failed to parse.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
	}
}

func (e *MultiError) Unwrap() []error { return e.Errors }
