package storage

import (
	"bytes"
)

// DefaultThreshold is the number of bytes a ThresholdProvider keeps in
// memory before promoting a body to its backend.
const DefaultThreshold = 64 * 1024

// ThresholdProvider keeps small bodies in memory and moves any body that
// grows past Threshold bytes to Backend.
type ThresholdProvider struct {
	Threshold int64
	Backend   Provider
}

// NewThresholdProvider returns a provider that promotes bodies larger than
// threshold to backend. A nil backend means a TempFileProvider in the
// default temporary directory.
func NewThresholdProvider(threshold int64, backend Provider) *ThresholdProvider {
	if backend == nil {
		backend = &TempFileProvider{}
	}
	return &ThresholdProvider{Threshold: threshold, Backend: backend}
}

// Open returns a sink that starts in memory. When the size hint already
// exceeds the threshold, the backend is used from the start.
func (p *ThresholdProvider) Open(sizeHint int64) (Sink, error) {
	if sizeHint > p.Threshold {
		return p.Backend.Open(sizeHint)
	}
	return &thresholdSink{p: p, sizeHint: sizeHint}, nil
}

type thresholdSink struct {
	p        *ThresholdProvider
	sizeHint int64
	buf      bytes.Buffer
	backend  Sink
}

func (s *thresholdSink) Write(b []byte) (int, error) {
	if s.backend != nil {
		return s.backend.Write(b)
	}

	if int64(s.buf.Len()+len(b)) <= s.p.Threshold {
		return s.buf.Write(b)
	}

	log.Debugf("promoting body to backend storage after %d bytes", s.buf.Len()+len(b))

	backend, err := s.p.Backend.Open(s.sizeHint)
	if err != nil {
		return 0, err
	}

	if _, err := backend.Write(s.buf.Bytes()); err != nil {
		_ = backend.Abort()
		return 0, err
	}

	s.backend = backend
	s.buf = bytes.Buffer{}
	return backend.Write(b)
}

func (s *thresholdSink) Finish() (Handle, error) {
	if s.backend != nil {
		return s.backend.Finish()
	}

	h := NewMemoryHandle(s.buf.Bytes())
	s.buf = bytes.Buffer{}
	return h, nil
}

func (s *thresholdSink) Abort() error {
	s.buf = bytes.Buffer{}
	if s.backend != nil {
		return s.backend.Abort()
	}
	return nil
}
