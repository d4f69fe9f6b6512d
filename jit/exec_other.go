//go:build !(linux && amd64)

package jit

import "fmt"

// Supported reports whether generated code can be executed on this
// platform.
func Supported() bool {
	return false
}

// HostHooks returns ErrUnsupported on this platform.
func HostHooks() (Hooks, error) {
	return Hooks{}, ErrUnsupported
}

// Executable is unavailable on this platform.
type Executable struct {
	descriptors *Descriptors
}

// NewExecutable returns ErrUnsupported on this platform.
func NewExecutable(code *Code) (*Executable, error) {
	return nil, fmt.Errorf("map %d bytes of code: %w", len(code.Bytes), ErrUnsupported)
}

// Descriptors returns the error table of the executable.
func (e *Executable) Descriptors() *Descriptors {
	return e.descriptors
}

// Call returns ErrUnsupported on this platform.
func (e *Executable) Call(host Host, tape []byte) error {
	return ErrUnsupported
}

// Close is a no-op on this platform.
func (e *Executable) Close() error {
	return nil
}
