package vm

import (
	"io"

	"github.com/rs/zerolog"
)

// Option is a configuration function for an Engine.
type Option func(*config)

type config struct {
	input                io.Reader
	output               io.Writer
	optimize             bool
	tapeSize             int
	filename             string
	logger               zerolog.Logger
	backend              Backend
	contextCheckInterval int
	observer             Observer
}

func newConfig(opts []Option) *config {
	cfg := &config{
		tapeSize:             DefaultTapeSize,
		logger:               zerolog.Nop(),
		backend:              BackendAuto,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.input == nil {
		cfg.input = eofReader{}
	}
	if cfg.output == nil {
		cfg.output = io.Discard
	}
	return cfg
}

// WithInput sets the stream that `,` reads from. The default input is
// always at end of stream.
func WithInput(r io.Reader) Option {
	return func(cfg *config) {
		cfg.input = r
	}
}

// WithOutput sets the stream that `.` writes to. Output is discarded by
// default.
func WithOutput(w io.Writer) Option {
	return func(cfg *config) {
		cfg.output = w
	}
}

// WithOptimize enables run-length folding of the compiled program.
func WithOptimize(enabled bool) Option {
	return func(cfg *config) {
		cfg.optimize = enabled
	}
}

// WithTapeSize sets the number of cells on the tape. The default is
// DefaultTapeSize.
func WithTapeSize(size int) Option {
	return func(cfg *config) {
		cfg.tapeSize = size
	}
}

// WithFilename sets the filename reported in diagnostics.
func WithFilename(name string) Option {
	return func(cfg *config) {
		cfg.filename = name
	}
}

// WithLogger sets the logger used for stage statistics and backend
// selection. Logging is disabled by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithBackend selects how the program is executed.
func WithBackend(backend Backend) Option {
	return func(cfg *config) {
		cfg.backend = backend
	}
}

// WithContextCheckInterval sets how often the interpreter checks ctx.Done()
// during execution. The interval is specified in number of instructions. A
// value of 0 disables checking. The default is DefaultContextCheckInterval.
//
// Native code cannot be interrupted once entered, so this only affects the
// interpreter backend.
func WithContextCheckInterval(interval int) Option {
	return func(cfg *config) {
		cfg.contextCheckInterval = interval
	}
}

// WithObserver sets an observer for execution events. Observers are only
// supported by the interpreter backend.
func WithObserver(observer Observer) Option {
	return func(cfg *config) {
		cfg.observer = observer
	}
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) {
	return 0, io.EOF
}
