package bfjit

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/bfjit/vm"
)

// Option configures a compilation or execution.
type Option func(*options)

type options struct {
	filename string
	optimize bool
	input    io.Reader
	output   io.Writer
	tapeSize int
	backend  vm.Backend
	logger   *zerolog.Logger
	observer vm.Observer
}

func collectOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) vmOpts() []vm.Option {
	opts := []vm.Option{
		vm.WithOptimize(o.optimize),
		vm.WithBackend(o.backend),
	}
	if o.filename != "" {
		opts = append(opts, vm.WithFilename(o.filename))
	}
	if o.input != nil {
		opts = append(opts, vm.WithInput(o.input))
	}
	if o.output != nil {
		opts = append(opts, vm.WithOutput(o.output))
	}
	if o.tapeSize > 0 {
		opts = append(opts, vm.WithTapeSize(o.tapeSize))
	}
	if o.logger != nil {
		opts = append(opts, vm.WithLogger(*o.logger))
	}
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	return opts
}

// WithFilename sets the filename used in error messages.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithOptimize enables folding of repeated operations before execution.
func WithOptimize(enabled bool) Option {
	return func(o *options) {
		o.optimize = enabled
	}
}

// WithInput sets the stream read by `,`.
func WithInput(r io.Reader) Option {
	return func(o *options) {
		o.input = r
	}
}

// WithOutput sets the stream written by `.`.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithTapeSize sets the number of tape cells. Zero keeps vm.DefaultTapeSize.
func WithTapeSize(size int) Option {
	return func(o *options) {
		o.tapeSize = size
	}
}

// WithBackend selects native code or the interpreter.
func WithBackend(backend vm.Backend) Option {
	return func(o *options) {
		o.backend = backend
	}
}

// WithLogger sets the logger for pipeline diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithObserver attaches an execution observer. Observers run on the
// interpreter backend.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}
