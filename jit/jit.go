package jit

import (
	"errors"

	"github.com/deepnoodle-ai/bfjit/compiler"
)

var (
	// ErrUnsupported is returned where generated code cannot be executed.
	ErrUnsupported = errors.New("native execution is only supported on linux/amd64")

	// ErrClosed is returned when calling an executable after Close.
	ErrClosed = errors.New("executable is closed")
)

// Compile generates code for p against the process-wide host hooks and maps
// it executable.
func Compile(p *compiler.Program) (*Executable, *Code, error) {
	hooks, err := HostHooks()
	if err != nil {
		return nil, nil, err
	}
	code, err := Generate(p, hooks)
	if err != nil {
		return nil, nil, err
	}
	exe, err := NewExecutable(code)
	if err != nil {
		return nil, nil, err
	}
	return exe, code, nil
}
