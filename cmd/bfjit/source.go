package main

import (
	"os"

	"github.com/deepnoodle-ai/bfjit/compiler"
	"github.com/deepnoodle-ai/bfjit/errors"
	"github.com/deepnoodle-ai/bfjit/optimizer"
)

// compileFile reads and compiles the program at path, folding it when the
// optimize flag is set.
func (a *app) compileFile(path string) (*compiler.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewVMError(errors.StageLoad, &errors.LoadError{Filename: path, Err: err})
	}
	p, err := compiler.Compile(string(data), &compiler.Config{Filename: path})
	if err != nil {
		return nil, errors.NewVMError(errors.StageCompile, err)
	}
	if a.v.GetBool("optimize") {
		stats := optimizer.Optimize(p)
		a.logger.Debug().Int("before", stats.Before).Int("after", stats.After).Msg("optimized program")
	}
	return p, nil
}
