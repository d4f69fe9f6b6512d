package vm

import (
	"io"
)

// streamHost serves `,` and `.` from the engine's streams.
type streamHost struct {
	in  io.Reader
	out io.Writer
	buf [1]byte
}

// GetByte reads at most one byte into cell. End of stream leaves the cell
// unchanged and is not an error.
func (h *streamHost) GetByte(cell *byte) error {
	_, err := io.ReadFull(h.in, h.buf[:])
	switch err {
	case nil:
		*cell = h.buf[0]
		return nil
	case io.EOF:
		return nil
	default:
		return err
	}
}

// PutByte writes exactly one byte.
func (h *streamHost) PutByte(b byte) error {
	h.buf[0] = b
	n, err := h.out.Write(h.buf[:])
	if err != nil {
		return err
	}
	if n != 1 {
		return io.ErrShortWrite
	}
	return nil
}
