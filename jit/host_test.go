package jit

import (
	"fmt"
	"io"
	"testing"
	"unsafe"

	"github.com/deepnoodle-ai/bfjit/errors"
	"github.com/stretchr/testify/require"
)

type scriptedHost struct {
	input  []byte
	output []byte
	getErr error
	putErr error
	panics bool
}

func (h *scriptedHost) GetByte(cell *byte) error {
	if h.panics {
		panic("boom")
	}
	if h.getErr != nil {
		return h.getErr
	}
	if len(h.input) > 0 {
		*cell = h.input[0]
		h.input = h.input[1:]
	}
	return nil
}

func (h *scriptedHost) PutByte(b byte) error {
	if h.putErr != nil {
		return h.putErr
	}
	h.output = append(h.output, b)
	return nil
}

func withSession(t *testing.T, host Host, tapeStart uintptr) (uintptr, *Descriptors) {
	t.Helper()
	d := NewDescriptors()
	ctx := registerSession(&session{host: host, descriptors: d, tapeStart: tapeStart})
	t.Cleanup(func() { unregisterSession(ctx) })
	return ctx, d
}

func TestHostInputStoresByte(t *testing.T) {
	host := &scriptedHost{input: []byte("x")}
	ctx, d := withSession(t, host, 0)
	var cell byte = 7
	require.Zero(t, hostInput(ctx, uintptr(unsafe.Pointer(&cell))))
	require.Equal(t, byte('x'), cell)

	// Exhausted input leaves the cell alone.
	require.Zero(t, hostInput(ctx, uintptr(unsafe.Pointer(&cell))))
	require.Equal(t, byte('x'), cell)
	require.Equal(t, 0, d.Len())
}

func TestHostOutputWritesCell(t *testing.T) {
	host := &scriptedHost{}
	ctx, _ := withSession(t, host, 0)
	cell := byte('A')
	require.Zero(t, hostOutput(ctx, uintptr(unsafe.Pointer(&cell))))
	require.Equal(t, []byte("A"), host.output)
}

func TestHostErrorsBecomeDescriptors(t *testing.T) {
	host := &scriptedHost{getErr: io.ErrClosedPipe, putErr: fmt.Errorf("disk full")}
	ctx, d := withSession(t, host, 0)
	var cell byte

	h := hostInput(ctx, uintptr(unsafe.Pointer(&cell)))
	require.NotZero(t, h)
	rerr, err := d.Take(h)
	require.Nil(t, err)
	require.Equal(t, errors.IOFailure, rerr.Kind)
	require.ErrorIs(t, rerr, io.ErrClosedPipe)

	h = hostOutput(ctx, uintptr(unsafe.Pointer(&cell)))
	rerr, err = d.Take(h)
	require.Nil(t, err)
	require.Equal(t, "runtime error: i/o failure: disk full", rerr.Error())
}

func TestHostPanicIsRecovered(t *testing.T) {
	ctx, d := withSession(t, &scriptedHost{panics: true}, 0)
	var cell byte
	h := hostInput(ctx, uintptr(unsafe.Pointer(&cell)))
	rerr, err := d.Take(h)
	require.Nil(t, err)
	require.Equal(t, errors.IOFailure, rerr.Kind)
	require.Contains(t, rerr.Error(), "panic in host callback: boom")
}

func TestHostOverflowOffset(t *testing.T) {
	ctx, d := withSession(t, &scriptedHost{}, 1000)

	rerr, err := d.Take(hostOverflow(ctx, 999))
	require.Nil(t, err)
	require.Equal(t, errors.PointerOverflow, rerr.Kind)
	require.Equal(t, int64(-1), rerr.Offset)

	rerr, err = d.Take(hostOverflow(ctx, 1010))
	require.Nil(t, err)
	require.Equal(t, int64(10), rerr.Offset)
}

func TestHostUnknownSession(t *testing.T) {
	require.Equal(t, ^uintptr(0), hostOverflow(0, 0))
}
