package storage

import (
	"bytes"
	"io"
	"sync"
)

// MemoryProvider keeps every body in memory.
type MemoryProvider struct{}

// Open returns a sink that buffers the body in memory.
func (MemoryProvider) Open(sizeHint int64) (Sink, error) {
	s := &memorySink{}
	if sizeHint > 0 && sizeHint < 1<<24 {
		s.buf.Grow(int(sizeHint))
	}
	return s, nil
}

type memorySink struct {
	buf bytes.Buffer
}

func (s *memorySink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

func (s *memorySink) Finish() (Handle, error) {
	h := NewMemoryHandle(s.buf.Bytes())
	s.buf = bytes.Buffer{}
	return h, nil
}

func (s *memorySink) Abort() error {
	s.buf = bytes.Buffer{}
	return nil
}

type memoryHandle struct {
	mu       sync.Mutex
	data     []byte
	released bool
}

// NewMemoryHandle returns a handle to the given bytes. The handle takes
// ownership of the slice.
func NewMemoryHandle(data []byte) Handle {
	return &memoryHandle{data: data}
}

func (h *memoryHandle) Open() (io.ReadCloser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, &Error{Op: "open", Err: ErrReleased}
	}
	return io.NopCloser(bytes.NewReader(h.data)), nil
}

func (h *memoryHandle) Size() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return int64(len(h.data))
}

func (h *memoryHandle) Copy() (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, &Error{Op: "copy", Err: ErrReleased}
	}

	cp := make([]byte, len(h.data))
	copy(cp, h.data)
	return NewMemoryHandle(cp), nil
}

func (h *memoryHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released = true
	h.data = nil
	return nil
}
