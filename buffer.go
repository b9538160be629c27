package rollingfile

import (
	"io"
)

// fileBuffer buffers writes to a file. Unlike bufio.Writer a failed flush is
// not sticky: the bytes that did not reach the file stay buffered and are
// retried by the next Write or Flush.
type fileBuffer struct {
	w   io.Writer
	buf []byte
}

func newFileBuffer(w io.Writer, size int) *fileBuffer {
	return &fileBuffer{
		w:   w,
		buf: make([]byte, 0, size),
	}
}

// Size returns the capacity of the buffer
func (b *fileBuffer) Size() int {
	return cap(b.buf)
}

// Buffered returns the number of bytes not yet written to the file
func (b *fileBuffer) Buffered() int {
	return len(b.buf)
}

// Write buffers p, flushing first when p does not fit. A p at least as large
// as the buffer is written straight through once the buffer is empty. When
// the flush fails nothing of p is taken and the error is returned.
func (b *fileBuffer) Write(p []byte) (int, error) {
	if len(b.buf)+len(p) > cap(b.buf) {
		if err := b.Flush(); err != nil {
			return 0, err
		}
	}

	if len(p) >= cap(b.buf) {
		return b.w.Write(p)
	}

	b.buf = append(b.buf, p...)
	return len(p), nil
}

// Flush writes the buffered bytes. On error the unwritten tail is kept.
func (b *fileBuffer) Flush() error {
	written := 0
	var err error
	for written < len(b.buf) {
		var n int
		n, err = b.w.Write(b.buf[written:])
		written += n
		if err == nil && n == 0 {
			err = io.ErrShortWrite
		}
		if err != nil {
			break
		}
	}

	remaining := copy(b.buf, b.buf[written:])
	b.buf = b.buf[:remaining]
	return err
}
