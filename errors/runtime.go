package errors

import (
	"errors"
	"fmt"
	"strings"
)

// RuntimeErrorKind enumerates the ways a running program can fail.
type RuntimeErrorKind int

const (
	IOFailure RuntimeErrorKind = iota + 1
	PointerOverflow
)

// String returns the string representation of the kind.
func (k RuntimeErrorKind) String() string {
	switch k {
	case IOFailure:
		return "i/o failure"
	case PointerOverflow:
		return "pointer overflow"
	default:
		return "unknown runtime error"
	}
}

// RuntimeError is raised while a program runs, either by an I/O callback or
// by the bounds check on a cursor move. Execution stops at the failing
// instruction; output already written is kept.
type RuntimeError struct {
	Kind RuntimeErrorKind

	// Cause is the underlying stream error for IOFailure.
	Cause error

	// Offset is the cursor position relative to the tape start at the time
	// of a PointerOverflow. It may be negative or beyond the tape end.
	Offset int64

	// Location is the source position of the failing instruction when the
	// backend can attribute it.
	Location SourceLocation
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString("runtime error: ")
	b.WriteString(e.Kind.String())
	switch e.Kind {
	case IOFailure:
		if e.Cause != nil {
			fmt.Fprintf(&b, ": %v", e.Cause)
		}
	case PointerOverflow:
		fmt.Fprintf(&b, " (cursor offset %d)", e.Offset)
	}
	if !e.Location.IsZero() {
		fmt.Fprintf(&b, " at %s", e.Location.String())
	}
	return b.String()
}

// Unwrap returns the underlying cause of the error.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// Code returns the error code for the kind of runtime error.
func (e *RuntimeError) Code() ErrorCode {
	switch e.Kind {
	case IOFailure:
		return E3001
	case PointerOverflow:
		return E3002
	default:
		return ""
	}
}

// WithLocation returns a copy of the error attributed to loc.
func (e *RuntimeError) WithLocation(loc SourceLocation) *RuntimeError {
	cp := *e
	cp.Location = loc
	return &cp
}

// ToFormatted converts to the FormattedError type for display.
func (e *RuntimeError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:     e.Code(),
		Kind:     "runtime error",
		Message:  e.Kind.String(),
		Filename: e.Location.Filename,
		Line:     e.Location.Line,
		Column:   e.Location.Column,
	}
	if e.Location.Source != "" {
		fe.SourceLines = []SourceLineEntry{
			{Number: e.Location.Line, Text: e.Location.Source, IsMain: true},
		}
	}
	switch e.Kind {
	case IOFailure:
		if e.Cause != nil {
			fe.Note = e.Cause.Error()
		}
	case PointerOverflow:
		fe.Note = fmt.Sprintf("cursor offset %d is outside the tape", e.Offset)
	}
	return fe
}

// NewIOFailure creates an IOFailure error wrapping cause.
func NewIOFailure(cause error) *RuntimeError {
	return &RuntimeError{Kind: IOFailure, Cause: cause}
}

// NewPointerOverflow creates a PointerOverflow error for the given cursor
// offset.
func NewPointerOverflow(offset int64) *RuntimeError {
	return &RuntimeError{Kind: PointerOverflow, Offset: offset}
}

// IsPointerOverflow reports whether err is or wraps a PointerOverflow.
func IsPointerOverflow(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Kind == PointerOverflow
}

// IsIOFailure reports whether err is or wraps an IOFailure.
func IsIOFailure(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Kind == IOFailure
}
