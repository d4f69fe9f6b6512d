//go:build !unix

package jit

import "fmt"

// AllocTape returns size zeroed bytes from the Go heap.
func AllocTape(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid tape size %d", size)
	}
	return make([]byte, size), nil
}

// FreeTape is a no-op for heap tapes.
func FreeTape(tape []byte) error {
	return nil
}
