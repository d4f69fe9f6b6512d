package vm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/bfjit/op"
)

// TestObserver is a test observer that records events.
type TestObserver struct {
	NoOpObserver
	config ObserverConfig
	Steps  []StepEvent
	haltAt int
}

func (o *TestObserver) Config() ObserverConfig {
	return o.config
}

func (o *TestObserver) OnStep(event StepEvent) bool {
	o.Steps = append(o.Steps, event)
	return o.haltAt == 0 || len(o.Steps) < o.haltAt
}

func TestObserverOnStep(t *testing.T) {
	observer := &TestObserver{config: NewObserverConfig(StepAll)}
	e := mustEngine(t, "+>.", WithObserver(observer))
	require.Nil(t, e.Run(context.Background()))

	require.Len(t, observer.Steps, 3)
	first := observer.Steps[0]
	require.Equal(t, 0, first.IP)
	require.Equal(t, op.AddVal, first.Opcode)
	require.Equal(t, "ADD_VAL", first.OpcodeName)
	require.Equal(t, 1, first.Location.Column)
	require.Equal(t, 0, first.Cursor)

	last := observer.Steps[2]
	require.Equal(t, op.PutByte, last.Opcode)
	require.Equal(t, 1, last.Cursor)
	require.Equal(t, byte(0), last.Cell)
}

func TestObserverSampled(t *testing.T) {
	observer := &TestObserver{config: ObserverConfig{StepMode: StepSampled, SampleInterval: 10}}
	e := mustEngine(t, "++++++++++[-]", WithObserver(observer))
	require.Nil(t, e.Run(context.Background()))
	// 10 adds, then 10 iterations of SubVal+JumpIfNonZero plus the JumpIfZero.
	require.Len(t, observer.Steps, 3)
}

func TestObserverOnLine(t *testing.T) {
	observer := &TestObserver{config: NewObserverConfig(StepOnLine)}
	e := mustEngine(t, "++\n>>\n.", WithObserver(observer))
	require.Nil(t, e.Run(context.Background()))
	require.Len(t, observer.Steps, 3)
	for i, step := range observer.Steps {
		require.Equal(t, i+1, step.Location.Line)
	}
}

func TestObserverNone(t *testing.T) {
	observer := &TestObserver{config: NewObserverConfig(StepNone)}
	e := mustEngine(t, "+++", WithObserver(observer))
	require.Nil(t, e.Run(context.Background()))
	require.Empty(t, observer.Steps)
}

func TestObserverHalts(t *testing.T) {
	observer := &TestObserver{config: NewObserverConfig(StepAll), haltAt: 2}
	e := mustEngine(t, "+++", WithObserver(observer))
	require.ErrorIs(t, e.Run(context.Background()), ErrHalted)
	require.Equal(t, byte(1), e.Tape()[0])
}

func TestNormalizeConfig(t *testing.T) {
	cfg := NormalizeConfig(ObserverConfig{StepMode: StepSampled, SampleInterval: -3})
	require.Equal(t, 1, cfg.SampleInterval)
}

// blockingObserver parks the first step until released.
type blockingObserver struct {
	NoOpObserver
	started chan struct{}
	release chan struct{}
}

func (o *blockingObserver) OnStep(StepEvent) bool {
	select {
	case <-o.started:
	default:
		close(o.started)
		<-o.release
	}
	return true
}

func TestConcurrentRunIsRejected(t *testing.T) {
	observer := &blockingObserver{started: make(chan struct{}), release: make(chan struct{})}
	e := mustEngine(t, "+", WithObserver(observer))

	done := make(chan error)
	go func() { done <- e.Run(context.Background()) }()
	<-observer.started

	err := e.Run(context.Background())
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "already running")
	require.NotNil(t, e.Close())

	close(observer.release)
	require.Nil(t, <-done)
}
