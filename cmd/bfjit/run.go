package main

import (
	"bufio"
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/deepnoodle-ai/bfjit/vm"
)

func (a *app) engineOptions() ([]vm.Option, error) {
	backend, err := vm.ParseBackend(a.v.GetString("backend"))
	if err != nil {
		return nil, err
	}
	return []vm.Option{
		vm.WithOptimize(a.v.GetBool("optimize")),
		vm.WithTapeSize(a.v.GetInt("tape-size")),
		vm.WithBackend(backend),
		vm.WithLogger(a.logger),
	}, nil
}

// runFile executes the program at path against the app's streams. Output
// is buffered and always flushed, so bytes written before a failure reach
// stdout.
func (a *app) runFile(ctx context.Context, path string) error {
	opts, err := a.engineOptions()
	if err != nil {
		return err
	}
	in := bufio.NewReader(a.stdin)
	out := bufio.NewWriter(a.stdout)
	opts = append(opts, vm.WithInput(in), vm.WithOutput(out))

	engine, err := vm.NewFromFile(path, opts...)
	if err != nil {
		return err
	}
	runErr := engine.Run(ctx)

	var result *multierror.Error
	if err := out.Flush(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := engine.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if runErr != nil {
		return runErr
	}
	return result.ErrorOrNil()
}
