//go:build unix

package jit

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// AllocTape returns size zeroed bytes backed by an anonymous mapping. The
// memory is outside the Go heap and must be released with FreeTape.
func AllocTape(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid tape size %d", size)
	}
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap tape: %w", err)
	}
	return mem, nil
}

// FreeTape releases a tape returned by AllocTape.
func FreeTape(tape []byte) error {
	if tape == nil {
		return nil
	}
	if err := unix.Munmap(tape); err != nil {
		return fmt.Errorf("munmap tape: %w", err)
	}
	return nil
}
