// Package vm provides the execution engine. An Engine owns a compiled
// program, its tape and its I/O streams, and runs the program either as
// generated native code or on a portable interpreter.
package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/bfjit/compiler"
	bferrors "github.com/deepnoodle-ai/bfjit/errors"
	"github.com/deepnoodle-ai/bfjit/jit"
	"github.com/deepnoodle-ai/bfjit/optimizer"
)

const (
	MB = 1024 * 1024

	// DefaultTapeSize is the number of cells on the tape.
	DefaultTapeSize = 4 * MB

	// DefaultContextCheckInterval is the number of instructions between
	// checks of ctx.Done() in the interpreter. Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

var (
	// ErrClosed is returned when running an engine after Close.
	ErrClosed = errors.New("engine is closed")

	// ErrHalted is returned when an observer stops execution.
	ErrHalted = errors.New("execution halted by observer")
)

// Engine runs one compiled program.
type Engine struct {
	program  *compiler.Program
	backend  Backend
	exe      *jit.Executable
	tape     []byte
	host     *streamHost
	logger   zerolog.Logger
	observer Observer

	contextCheckInterval int

	runMutex sync.Mutex
	running  bool
	closed   bool
	dirty    bool
}

// New reads program text from source and prepares it for execution:
// compile, optionally optimize, generate native code when that backend is
// selected, and allocate the zeroed tape. Failures are returned as
// *errors.VMError.
func New(source io.Reader, opts ...Option) (*Engine, error) {
	cfg := newConfig(opts)
	if cfg.tapeSize <= 0 {
		return nil, fmt.Errorf("invalid tape size %d", cfg.tapeSize)
	}
	data, err := io.ReadAll(source)
	if err != nil {
		return nil, bferrors.NewVMError(bferrors.StageLoad,
			&bferrors.LoadError{Filename: cfg.filename, Err: err})
	}
	return newEngine(string(data), cfg)
}

// NewFromFile is New for the program stored at path. The path is used as
// the diagnostic filename unless WithFilename is given.
func NewFromFile(path string, opts ...Option) (*Engine, error) {
	opts = append([]Option{WithFilename(path)}, opts...)
	f, err := os.Open(path)
	if err != nil {
		return nil, bferrors.NewVMError(bferrors.StageLoad,
			&bferrors.LoadError{Filename: path, Err: err})
	}
	defer f.Close()
	return New(f, opts...)
}

func newEngine(source string, cfg *config) (*Engine, error) {
	logger := cfg.logger.With().Str("component", "vm").Logger()

	program, err := compiler.Compile(source, &compiler.Config{Filename: cfg.filename})
	if err != nil {
		return nil, bferrors.NewVMError(bferrors.StageCompile, err)
	}
	logger.Debug().
		Str("filename", cfg.filename).
		Int("instructions", program.Len()).
		Msg("compiled program")

	if cfg.optimize {
		stats := optimizer.Optimize(program)
		logger.Debug().
			Int("before", stats.Before).
			Int("after", stats.After).
			Int("removed", stats.Removed()).
			Msg("optimized program")
	}

	backend, err := resolveBackend(cfg, logger)
	if err != nil {
		return nil, bferrors.NewVMError(bferrors.StageGenerate, err)
	}

	e := &Engine{
		program:              program,
		backend:              backend,
		host:                 &streamHost{in: cfg.input, out: cfg.output},
		logger:               logger,
		observer:             cfg.observer,
		contextCheckInterval: cfg.contextCheckInterval,
	}
	if backend == BackendJIT {
		exe, code, err := jit.Compile(program)
		if err != nil {
			return nil, bferrors.NewVMError(bferrors.StageGenerate, err)
		}
		e.exe = exe
		logger.Debug().Int("bytes", len(code.Bytes)).Msg("generated native code")
	}
	tape, err := jit.AllocTape(cfg.tapeSize)
	if err != nil {
		if closeErr := e.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr)
		}
		return nil, bferrors.NewVMError(bferrors.StageGenerate, err)
	}
	e.tape = tape
	logger.Debug().
		Stringer("backend", backend).
		Int("tape_size", len(tape)).
		Msg("engine ready")
	return e, nil
}

func resolveBackend(cfg *config, logger zerolog.Logger) (Backend, error) {
	switch cfg.backend {
	case BackendAuto:
		if cfg.observer != nil {
			return BackendInterpreter, nil
		}
		if !jit.Supported() {
			logger.Warn().Msg("native code is not supported on this platform; using the interpreter")
			return BackendInterpreter, nil
		}
		return BackendJIT, nil
	case BackendJIT:
		if !jit.Supported() {
			return BackendJIT, jit.ErrUnsupported
		}
		if cfg.observer != nil {
			logger.Warn().Msg("observer is ignored by the jit backend")
		}
		return BackendJIT, nil
	case BackendInterpreter:
		return BackendInterpreter, nil
	default:
		return cfg.backend, fmt.Errorf("unknown backend %s", cfg.backend)
	}
}

// Program returns the compiled (and possibly optimized) program.
func (e *Engine) Program() *compiler.Program {
	return e.program
}

// Backend returns the backend the engine runs on. It is never BackendAuto.
func (e *Engine) Backend() Backend {
	return e.backend
}

// Tape returns the tape. It reflects the state left by the last run and
// must not be modified or used after Close.
func (e *Engine) Tape() []byte {
	return e.tape
}

func (e *Engine) start() error {
	e.runMutex.Lock()
	defer e.runMutex.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.running {
		return fmt.Errorf("engine is already running")
	}
	e.running = true
	return nil
}

func (e *Engine) stop() {
	e.runMutex.Lock()
	defer e.runMutex.Unlock()
	e.running = false
}

// Run executes the program on a zeroed tape, blocking until it finishes.
// A failing program returns *errors.VMError wrapping *errors.RuntimeError;
// output written before the failure is not rolled back.
//
// The context is checked before execution starts. Only the interpreter
// observes cancellation while running.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.start(); err != nil {
		return err
	}
	defer e.stop()
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.dirty {
		clear(e.tape)
	}
	e.dirty = true

	var err error
	switch e.backend {
	case BackendJIT:
		err = e.exe.Call(e.host, e.tape)
	default:
		err = e.interpret(ctx)
	}
	var rerr *bferrors.RuntimeError
	if errors.As(err, &rerr) {
		e.logger.Debug().Err(err).Msg("run failed")
		return bferrors.NewVMError(bferrors.StageRuntime, err)
	}
	return err
}

// Close releases the native code and the tape. It is safe to call more
// than once.
func (e *Engine) Close() error {
	e.runMutex.Lock()
	defer e.runMutex.Unlock()
	if e.running {
		return fmt.Errorf("engine is running")
	}
	if e.closed {
		return nil
	}
	e.closed = true
	var result *multierror.Error
	if e.exe != nil {
		result = multierror.Append(result, e.exe.Close())
		e.exe = nil
	}
	if e.tape != nil {
		result = multierror.Append(result, jit.FreeTape(e.tape))
		e.tape = nil
	}
	return result.ErrorOrNil()
}
