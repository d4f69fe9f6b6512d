package jit

import (
	"io"
	"sync"
	"testing"

	"github.com/deepnoodle-ai/bfjit/errors"
	"github.com/stretchr/testify/require"
)

func TestDescriptorsPutTake(t *testing.T) {
	d := NewDescriptors()
	orig := errors.NewIOFailure(io.ErrUnexpectedEOF)
	h := d.Put(orig)
	require.NotZero(t, h)
	require.Equal(t, 1, d.Len())

	got, err := d.Take(h)
	require.Nil(t, err)
	require.Same(t, orig, got)
	require.Equal(t, 0, d.Len())
	require.Equal(t, DescriptorStats{Allocated: 1, Released: 1}, d.Stats())
}

func TestDescriptorsTakeTwice(t *testing.T) {
	d := NewDescriptors()
	h := d.Put(errors.NewPointerOverflow(-1))
	_, err := d.Take(h)
	require.Nil(t, err)
	_, err = d.Take(h)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "unknown error descriptor")
	require.Equal(t, DescriptorStats{Allocated: 1, Released: 1}, d.Stats())
}

func TestDescriptorsZeroIsNeverAHandle(t *testing.T) {
	d := NewDescriptors()
	_, err := d.Take(0)
	require.NotNil(t, err)

	d.next = ^uintptr(0) - 1
	a := d.Put(errors.NewPointerOverflow(1))
	b := d.Put(errors.NewPointerOverflow(2))
	require.Equal(t, ^uintptr(0), a)
	require.Equal(t, uintptr(1), b)
}

func TestDescriptorsConcurrentUse(t *testing.T) {
	d := NewDescriptors()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h := d.Put(errors.NewPointerOverflow(int64(j)))
				got, err := d.Take(h)
				if err != nil || got.Offset != int64(j) {
					t.Errorf("take %#x: %v", h, err)
				}
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 0, d.Len())
	require.Equal(t, DescriptorStats{Allocated: 800, Released: 800}, d.Stats())
}
