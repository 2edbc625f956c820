package storage

import (
	"errors"
	"io"
	"sync"
)

// ErrAlreadyOpened is wrapped in the *Error returned when a one-shot handle
// is opened a second time.
var ErrAlreadyOpened = errors.New("one-shot storage handle already opened")

type readerHandle struct {
	mu       sync.Mutex
	r        io.Reader
	size     int64
	opened   bool
	released bool
}

// NewReaderHandle wraps a stream that can only be read once. Open succeeds a
// single time and Copy always fails with ErrCopyUnsupported. If r is an
// io.Closer, Release closes it. Pass -1 as size when it is not known.
func NewReaderHandle(r io.Reader, size int64) Handle {
	return &readerHandle{r: r, size: size}
}

func (h *readerHandle) Open() (io.ReadCloser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case h.released:
		return nil, &Error{Op: "open", Err: ErrReleased}
	case h.opened:
		return nil, &Error{Op: "open", Err: ErrAlreadyOpened}
	}

	h.opened = true
	return io.NopCloser(h.r), nil
}

func (h *readerHandle) Size() int64 {
	return h.size
}

func (h *readerHandle) Copy() (Handle, error) {
	return nil, ErrCopyUnsupported
}

func (h *readerHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	h.released = true

	if c, isCloser := h.r.(io.Closer); isCloser {
		return wrapErr("close", c.Close())
	}
	return nil
}
