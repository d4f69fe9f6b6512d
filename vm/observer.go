package vm

import (
	"github.com/deepnoodle-ai/bfjit/errors"
	"github.com/deepnoodle-ai/bfjit/op"
)

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every instruction.
	// Use for: detailed tracing, instruction-level debugging.
	StepAll StepMode = iota

	// StepNone never calls OnStep.
	StepNone

	// StepSampled calls OnStep every N instructions.
	// Use for: statistical profiling of hot loops.
	StepSampled

	// StepOnLine calls OnStep when the source line changes.
	// Use for: coverage tools, line-level debugging.
	StepOnLine
)

// ObserverConfig specifies what events an observer wants to receive.
// Use NewObserverConfig() to create configs with safe defaults.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	// Ignored for other modes.
	SampleInterval int
}

// NewObserverConfig creates a config with safe defaults.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
	}
}

// NormalizeConfig validates and clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer receives execution events from the interpreter backend. Generated
// native code has no step hooks, so attaching an observer selects the
// interpreter when the backend is BackendAuto.
//
// Observer methods are called synchronously during execution.
// Implementations should be fast to avoid impacting performance.
type Observer interface {
	// Config returns the observer's configuration.
	// Called once when a run starts.
	Config() ObserverConfig

	// OnStep is called before an instruction executes, based on the
	// StepMode in the observer's config. Returns false to halt execution
	// immediately.
	OnStep(event StepEvent) bool
}

// StepEvent contains information about a single instruction step.
type StepEvent struct {
	// IP is the instruction pointer (index into the instruction array).
	IP int

	// Opcode is the operation about to execute.
	Opcode op.Code

	// OpcodeName is the human-readable name of the opcode.
	OpcodeName string

	// Location is the source location of the instruction.
	Location errors.SourceLocation

	// Cursor is the tape index before the instruction executes.
	Cursor int

	// Cell is the value of the current cell.
	Cell byte
}

// NoOpObserver is an Observer implementation that does nothing.
// Embed this in your observer to provide default implementations
// for methods you don't need.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool { return true }

// Ensure NoOpObserver implements Observer.
var _ Observer = NoOpObserver{}

// stepFilter decides which steps reach the observer.
type stepFilter struct {
	cfg      ObserverConfig
	count    int
	lastLine int
}

func newStepFilter(cfg ObserverConfig) *stepFilter {
	return &stepFilter{cfg: NormalizeConfig(cfg), lastLine: -1}
}

func (f *stepFilter) want(loc errors.SourceLocation) bool {
	switch f.cfg.StepMode {
	case StepAll:
		return true
	case StepSampled:
		f.count++
		if f.count >= f.cfg.SampleInterval {
			f.count = 0
			return true
		}
		return false
	case StepOnLine:
		if loc.Line != f.lastLine {
			f.lastLine = loc.Line
			return true
		}
		return false
	default:
		return false
	}
}
