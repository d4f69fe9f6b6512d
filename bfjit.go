// Package bfjit compiles Brainfuck programs to native x86-64 code and runs
// them in-process.
//
// The quickest way in is Run:
//
//	err := bfjit.Run(ctx, source,
//		bfjit.WithInput(os.Stdin),
//		bfjit.WithOutput(os.Stdout),
//		bfjit.WithOptimize(true))
//
// For finer control over the pipeline use the compiler, optimizer, jit and
// vm packages directly.
package bfjit

import (
	"context"
	"strings"

	"github.com/deepnoodle-ai/bfjit/compiler"
	"github.com/deepnoodle-ai/bfjit/errors"
	"github.com/deepnoodle-ai/bfjit/optimizer"
	"github.com/deepnoodle-ai/bfjit/vm"
)

// Compile compiles source into a program, folding it when WithOptimize is
// set. Errors are *errors.VMError wrapping *errors.CompileError.
func Compile(source string, opts ...Option) (*compiler.Program, error) {
	o := collectOptions(opts...)
	p, err := compiler.Compile(source, &compiler.Config{Filename: o.filename})
	if err != nil {
		return nil, errors.NewVMError(errors.StageCompile, err)
	}
	if o.optimize {
		optimizer.Optimize(p)
	}
	return p, nil
}

// Run compiles and executes source.
func Run(ctx context.Context, source string, opts ...Option) error {
	o := collectOptions(opts...)
	engine, err := vm.New(strings.NewReader(source), o.vmOpts()...)
	if err != nil {
		return err
	}
	return runAndClose(ctx, engine)
}

// RunFile compiles and executes the program stored at path.
func RunFile(ctx context.Context, path string, opts ...Option) error {
	o := collectOptions(opts...)
	engine, err := vm.NewFromFile(path, o.vmOpts()...)
	if err != nil {
		return err
	}
	return runAndClose(ctx, engine)
}

func runAndClose(ctx context.Context, engine *vm.Engine) (err error) {
	defer func() {
		if closeErr := engine.Close(); err == nil {
			err = closeErr
		}
	}()
	return engine.Run(ctx)
}
