//go:build linux && amd64

package jit

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"
)

var (
	hooksOnce sync.Once
	hostHooks Hooks
)

// Supported reports whether generated code can be executed on this
// platform.
func Supported() bool {
	return true
}

// HostHooks returns the addresses of the process-wide host callbacks,
// creating them on first use. The callbacks are never released.
func HostHooks() (Hooks, error) {
	hooksOnce.Do(func() {
		hostHooks = Hooks{
			Input:    purego.NewCallback(hostInput),
			Output:   purego.NewCallback(hostOutput),
			Overflow: purego.NewCallback(hostOverflow),
		}
	})
	return hostHooks, nil
}

// Executable is generated code mapped into read+execute memory.
type Executable struct {
	mu          sync.Mutex
	mem         []byte
	entry       uintptr
	descriptors *Descriptors
}

// NewExecutable copies code into a fresh anonymous mapping and makes it
// executable.
func NewExecutable(code *Code) (*Executable, error) {
	if len(code.Bytes) == 0 || code.Entry < 0 || code.Entry >= len(code.Bytes) {
		return nil, fmt.Errorf("invalid code: %d bytes, entry %d", len(code.Bytes), code.Entry)
	}
	size := roundToPage(len(code.Bytes))
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap code buffer: %w", err)
	}
	copy(mem, code.Bytes)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		unix.Munmap(mem)
		return nil, fmt.Errorf("mprotect code buffer: %w", err)
	}
	return &Executable{
		mem:         mem,
		entry:       uintptr(unsafe.Pointer(&mem[0])) + uintptr(code.Entry),
		descriptors: NewDescriptors(),
	}, nil
}

// Descriptors returns the table that host callbacks of this executable
// report errors through.
func (e *Executable) Descriptors() *Descriptors {
	return e.descriptors
}

// Call runs the generated function over tape with host serving I/O. It
// returns nil on success or the *errors.RuntimeError raised by a callback.
func (e *Executable) Call(host Host, tape []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mem == nil {
		return ErrClosed
	}
	if len(tape) == 0 {
		return fmt.Errorf("tape is empty")
	}
	start := uintptr(unsafe.Pointer(&tape[0]))
	end := start + uintptr(len(tape))
	ctx := registerSession(&session{host: host, descriptors: e.descriptors, tapeStart: start})
	defer unregisterSession(ctx)

	result, _, _ := purego.SyscallN(e.entry, ctx, start, end)
	runtime.KeepAlive(tape)
	if result == 0 {
		return nil
	}
	rerr, err := e.descriptors.Take(result)
	if err != nil {
		return fmt.Errorf("generated code returned an invalid result: %w", err)
	}
	return rerr
}

// Close unmaps the code. Calling Close more than once is a no-op.
func (e *Executable) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mem == nil {
		return nil
	}
	err := unix.Munmap(e.mem)
	e.mem = nil
	e.entry = 0
	if err != nil {
		return fmt.Errorf("munmap code buffer: %w", err)
	}
	return nil
}

func roundToPage(n int) int {
	page := unix.Getpagesize()
	return (n + page - 1) &^ (page - 1)
}
