package errors

import (
	"fmt"
	"strings"
)

// CompileErrorKind enumerates the ways compilation can fail.
type CompileErrorKind int

const (
	UnclosedLeftBracket CompileErrorKind = iota + 1
	UnexpectedRightBracket
)

// String returns the string representation of the kind.
func (k CompileErrorKind) String() string {
	switch k {
	case UnclosedLeftBracket:
		return "unclosed left bracket"
	case UnexpectedRightBracket:
		return "unexpected right bracket"
	default:
		return "unknown compile error"
	}
}

// CompileError represents a compilation error and where it happened.
type CompileError struct {
	Kind     CompileErrorKind
	Location SourceLocation
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString("compile error: ")
	b.WriteString(e.Kind.String())
	if !e.Location.IsZero() {
		fmt.Fprintf(&b, " at %s", e.Location.String())
	}
	return b.String()
}

// Code returns the error code for the kind of compile error.
func (e *CompileError) Code() ErrorCode {
	switch e.Kind {
	case UnclosedLeftBracket:
		return E1001
	case UnexpectedRightBracket:
		return E1002
	default:
		return ""
	}
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *CompileError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *CompileError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:     e.Code(),
		Kind:     "compile error",
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
	case UnclosedLeftBracket:
		fe.Hint = "add a matching `]` to close this loop"
	case UnexpectedRightBracket:
		fe.Hint = "remove this `]` or open the loop with a `[` before it"
	}
	return fe
}
