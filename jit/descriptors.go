package jit

import (
	"fmt"
	"sync"

	"github.com/deepnoodle-ai/bfjit/errors"
)

// Descriptors maps non-zero handles to runtime errors created by host
// callbacks while generated code runs. The handle crosses the native
// boundary in place of a pointer; the Go value never leaves the table until
// the caller takes it.
//
// Every Put must be matched by exactly one Take. A handle is invalid after
// it has been taken.
type Descriptors struct {
	mu        sync.Mutex
	next      uintptr
	live      map[uintptr]*errors.RuntimeError
	allocated uint64
	released  uint64
}

// DescriptorStats counts handles over the lifetime of a table.
type DescriptorStats struct {
	Allocated uint64
	Released  uint64
}

// NewDescriptors returns an empty table.
func NewDescriptors() *Descriptors {
	return &Descriptors{live: map[uintptr]*errors.RuntimeError{}}
}

// Put stores err and returns its handle, which is never zero.
func (d *Descriptors) Put(err *errors.RuntimeError) uintptr {
	d.mu.Lock()
	defer d.mu.Unlock()
	for {
		d.next++
		if d.next == 0 {
			continue
		}
		if _, taken := d.live[d.next]; !taken {
			break
		}
	}
	d.live[d.next] = err
	d.allocated++
	return d.next
}

// Take removes and returns the error for handle h.
func (d *Descriptors) Take(h uintptr) (*errors.RuntimeError, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	err, ok := d.live[h]
	if !ok {
		return nil, fmt.Errorf("unknown error descriptor %#x", h)
	}
	delete(d.live, h)
	d.released++
	return err, nil
}

// Len returns the number of handles not yet taken.
func (d *Descriptors) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// Stats returns the lifetime counters.
func (d *Descriptors) Stats() DescriptorStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DescriptorStats{Allocated: d.allocated, Released: d.released}
}
