// Package errors defines the error types produced while loading, compiling,
// generating and running programs.
package errors

import (
	"errors"
	"fmt"
)

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Filename string
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Source   string // The line of source code
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// FriendlyError is an interface for errors that have a human friendly message
// in addition to a the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// FormattableError is an interface for errors that can be formatted with
// the diagnostic formatter (with colors, source context, etc).
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}

// Stage identifies the step of the pipeline that failed.
type Stage int

const (
	StageLoad Stage = iota
	StageCompile
	StageGenerate
	StageRuntime
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StageCompile:
		return "compile"
	case StageGenerate:
		return "generate"
	case StageRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// VMError is the single failure type returned by the engine. It records the
// stage that failed and wraps the underlying typed error.
type VMError struct {
	Stage Stage
	Err   error
}

func (e *VMError) Error() string {
	return e.Err.Error()
}

func (e *VMError) Unwrap() error {
	return e.Err
}

// Code returns the error code of the wrapped error, if it has one.
func (e *VMError) Code() ErrorCode {
	var coded interface{ Code() ErrorCode }
	if errors.As(e.Err, &coded) {
		return coded.Code()
	}
	if e.Stage == StageLoad {
		return E2001
	}
	return ""
}

// NewVMError wraps err for the given stage. A nil err yields nil.
func NewVMError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var existing *VMError
	if errors.As(err, &existing) {
		return err
	}
	return &VMError{Stage: stage, Err: err}
}

// LoadError describes a failure to read program source.
type LoadError struct {
	Filename string
	Err      error
}

func (e *LoadError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("load error: %s: %v", e.Filename, e.Err)
	}
	return fmt.Sprintf("load error: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Code() ErrorCode {
	return E2001
}

// GenerationError is returned when the code generator is handed a program
// it cannot lower, such as one whose loops are not properly paired.
type GenerationError struct {
	Index   int
	Message string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate error: %s (instruction %d)", e.Message, e.Index)
}

func (e *GenerationError) Code() ErrorCode {
	return E4001
}

// GenerationErrorf creates a GenerationError with a formatted message.
func GenerationErrorf(index int, format string, args ...any) *GenerationError {
	return &GenerationError{Index: index, Message: fmt.Sprintf(format, args...)}
}
