package jit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/deepnoodle-ai/bfjit/errors"
)

// Host performs the I/O of a running program. Errors returned by either
// method stop execution with an IOFailure wrapping them.
type Host interface {
	// GetByte stores at most one input byte into cell. Leaving the cell
	// unchanged at end of input is not an error.
	GetByte(cell *byte) error

	// PutByte writes b.
	PutByte(b byte) error
}

// session is the state a host callback resolves from its ctx argument.
type session struct {
	host        Host
	descriptors *Descriptors
	tapeStart   uintptr
}

// sessions maps the ctx handles passed to generated code to their session.
// Native code only ever sees the integer key.
var (
	sessions    sync.Map
	sessionNext atomic.Uintptr
)

func registerSession(s *session) uintptr {
	h := sessionNext.Add(1)
	sessions.Store(h, s)
	return h
}

func unregisterSession(h uintptr) {
	sessions.Delete(h)
}

func lookupSession(h uintptr) (*session, bool) {
	v, ok := sessions.Load(h)
	if !ok {
		return nil, false
	}
	return v.(*session), true
}

// hostInput is the Go side of the Input hook.
func hostInput(ctx, cursor uintptr) uintptr {
	return dispatch(ctx, func(s *session) *errors.RuntimeError {
		if err := s.host.GetByte((*byte)(unsafe.Pointer(cursor))); err != nil {
			return errors.NewIOFailure(err)
		}
		return nil
	})
}

// hostOutput is the Go side of the Output hook.
func hostOutput(ctx, cursor uintptr) uintptr {
	return dispatch(ctx, func(s *session) *errors.RuntimeError {
		if err := s.host.PutByte(*(*byte)(unsafe.Pointer(cursor))); err != nil {
			return errors.NewIOFailure(err)
		}
		return nil
	})
}

// hostOverflow is the Go side of the Overflow hook. It always produces a
// descriptor.
func hostOverflow(ctx, cursor uintptr) uintptr {
	return dispatch(ctx, func(s *session) *errors.RuntimeError {
		return errors.NewPointerOverflow(int64(cursor - s.tapeStart))
	})
}

// dispatch runs fn for the session behind ctx and converts its error into a
// descriptor handle. A panic must not unwind through native frames, so it is
// reported as an IOFailure instead.
func dispatch(ctx uintptr, fn func(s *session) *errors.RuntimeError) (handle uintptr) {
	s, ok := lookupSession(ctx)
	if !ok {
		// Nothing to report the error to; the caller treats any non-zero
		// value it cannot take as a failure.
		return ^uintptr(0)
	}
	defer func() {
		if r := recover(); r != nil {
			handle = s.descriptors.Put(errors.NewIOFailure(fmt.Errorf("panic in host callback: %v", r)))
		}
	}()
	if rerr := fn(s); rerr != nil {
		return s.descriptors.Put(rerr)
	}
	return 0
}
