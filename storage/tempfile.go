package storage

import (
	"io"
	"os"
	"path/filepath"
	"sync"
)

// DefaultTempPrefix is the file name prefix used when TempFileProvider has
// none set.
const DefaultTempPrefix = "mimebody-"

// TempFileProvider stores every body in its own temporary file.
type TempFileProvider struct {
	// Dir is where files are created. When empty, os.TempDir() is used.
	Dir string

	// Prefix starts the name of every file.
	Prefix string
}

func (p *TempFileProvider) create() (*os.File, error) {
	if p.Dir != "" {
		if err := os.MkdirAll(p.Dir, 0700); err != nil {
			return nil, err
		}
	}

	prefix := p.Prefix
	if prefix == "" {
		prefix = DefaultTempPrefix
	}

	return os.CreateTemp(p.Dir, prefix+"*")
}

// Open creates a new temporary file for the body.
func (p *TempFileProvider) Open(int64) (Sink, error) {
	f, err := p.create()
	if err != nil {
		return nil, wrapErr("create", err)
	}

	log.Tracef("spooling body to %s", f.Name())
	return &fileSink{p: p, f: f}, nil
}

type fileSink struct {
	p    *TempFileProvider
	f    *os.File
	size int64
	done bool
}

func (s *fileSink) Write(b []byte) (int, error) {
	n, err := s.f.Write(b)
	s.size += int64(n)
	return n, wrapErr("write", err)
}

func (s *fileSink) Finish() (Handle, error) {
	s.done = true
	if err := s.f.Close(); err != nil {
		_ = os.Remove(s.f.Name())
		return nil, wrapErr("close", err)
	}

	return &fileHandle{p: s.p, path: s.f.Name(), size: s.size}, nil
}

func (s *fileSink) Abort() error {
	if s.done {
		return nil
	}
	s.done = true

	_ = s.f.Close()
	return wrapErr("remove", os.Remove(s.f.Name()))
}

type fileHandle struct {
	p    *TempFileProvider
	path string
	size int64

	mu       sync.Mutex
	released bool
}

func (h *fileHandle) Open() (io.ReadCloser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, &Error{Op: "open", Err: ErrReleased}
	}

	f, err := os.Open(h.path)
	if err != nil {
		return nil, wrapErr("open", err)
	}
	return f, nil
}

func (h *fileHandle) Size() int64 {
	return h.size
}

func (h *fileHandle) Copy() (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, &Error{Op: "copy", Err: ErrReleased}
	}

	src, err := os.Open(h.path)
	if err != nil {
		return nil, wrapErr("copy", err)
	}
	defer src.Close()

	cp := &TempFileProvider{Dir: filepath.Dir(h.path), Prefix: h.p.Prefix}
	sink, err := cp.Open(h.size)
	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(sink, src); err != nil {
		_ = sink.Abort()
		return nil, wrapErr("copy", err)
	}

	return sink.Finish()
}

func (h *fileHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	h.released = true

	if err := os.Remove(h.path); err != nil {
		log.Warnf("unable to remove spooled body %s: %v", h.path, err)
		return wrapErr("remove", err)
	}
	return nil
}
