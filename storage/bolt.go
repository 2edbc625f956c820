package storage

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/boltdb/bolt"
)

// DefaultBoltChunkSize is the size of the records a BoltProvider splits
// bodies into.
const DefaultBoltChunkSize = 32 * 1024

const boltTimeout = time.Second

// bodiesBucket holds one nested bucket per body, keyed by a sequence number.
// Each nested bucket holds the chunks of the body keyed by chunk index.
var bodiesBucket = []byte("bodies")

var errNoBody = errors.New("body not found in database")

// BoltProvider stores bodies as chunked records in a BoltDB file. It suits
// servers that must keep many large bodies without holding them in memory or
// creating a file for each.
type BoltProvider struct {
	db        *bolt.DB
	chunkSize int
	owned     bool
}

// OpenBoltProvider opens (or creates) the database at path.
func OpenBoltProvider(path string) (*BoltProvider, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: boltTimeout})
	if err != nil {
		return nil, wrapErr("open database", err)
	}

	p, err := NewBoltProvider(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	p.owned = true
	return p, nil
}

// NewBoltProvider stores bodies in an already open database.
func NewBoltProvider(db *bolt.DB) (*BoltProvider, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bodiesBucket)
		return err
	})
	if err != nil {
		return nil, wrapErr("create bucket", err)
	}

	return &BoltProvider{db: db, chunkSize: DefaultBoltChunkSize}, nil
}

// SetChunkSize changes the record size used for new bodies.
func (p *BoltProvider) SetChunkSize(n int) {
	if n > 0 {
		p.chunkSize = n
	}
}

// Close closes the database if it was opened by OpenBoltProvider.
func (p *BoltProvider) Close() error {
	if !p.owned {
		return nil
	}
	return wrapErr("close database", p.db.Close())
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// newBody creates the bucket for a new body and returns its key.
func (p *BoltProvider) newBody(tx *bolt.Tx) ([]byte, *bolt.Bucket, error) {
	bodies := tx.Bucket(bodiesBucket)
	seq, err := bodies.NextSequence()
	if err != nil {
		return nil, nil, err
	}

	id := itob(seq)
	b, err := bodies.CreateBucket(id)
	return id, b, err
}

func (p *BoltProvider) deleteBody(id []byte) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		err := tx.Bucket(bodiesBucket).DeleteBucket(id)
		if err == bolt.ErrBucketNotFound {
			return nil
		}
		return err
	})
}

// Open starts a new body record.
func (p *BoltProvider) Open(int64) (Sink, error) {
	var id []byte
	err := p.db.Update(func(tx *bolt.Tx) error {
		var err error
		id, _, err = p.newBody(tx)
		return err
	})
	if err != nil {
		return nil, wrapErr("create body", err)
	}

	return &boltSink{p: p, id: id, chunkSize: p.chunkSize}, nil
}

type boltSink struct {
	p         *BoltProvider
	id        []byte
	chunkSize int
	buf       []byte
	chunks    uint64
	size      int64
	done      bool
}

// flush writes buffered chunks. Unless all is set, only full chunks are
// written.
func (s *boltSink) flush(all bool) error {
	if len(s.buf) < s.chunkSize && (!all || len(s.buf) == 0) {
		return nil
	}

	err := s.p.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bodiesBucket).Bucket(s.id)
		if b == nil {
			return errNoBody
		}

		for len(s.buf) >= s.chunkSize || (all && len(s.buf) > 0) {
			n := s.chunkSize
			if n > len(s.buf) {
				n = len(s.buf)
			}

			if err := b.Put(itob(s.chunks), s.buf[:n]); err != nil {
				return err
			}

			s.chunks++
			s.buf = s.buf[n:]
		}
		return nil
	})

	if len(s.buf) == 0 {
		s.buf = nil
	}

	return wrapErr("write", err)
}

func (s *boltSink) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	s.size += int64(len(p))
	if err := s.flush(false); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *boltSink) Finish() (Handle, error) {
	s.done = true
	if err := s.flush(true); err != nil {
		_ = s.p.deleteBody(s.id)
		return nil, err
	}

	return &boltHandle{p: s.p, id: s.id, size: s.size}, nil
}

func (s *boltSink) Abort() error {
	if s.done {
		return nil
	}
	s.done = true
	s.buf = nil
	return wrapErr("delete body", s.p.deleteBody(s.id))
}

type boltHandle struct {
	p    *BoltProvider
	id   []byte
	size int64

	mu       sync.Mutex
	released bool
}

func (h *boltHandle) Open() (io.ReadCloser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, &Error{Op: "open", Err: ErrReleased}
	}
	return &boltReader{h: h}, nil
}

func (h *boltHandle) Size() int64 {
	return h.size
}

func (h *boltHandle) Copy() (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, &Error{Op: "copy", Err: ErrReleased}
	}

	var id []byte
	err := h.p.db.Update(func(tx *bolt.Tx) error {
		src := tx.Bucket(bodiesBucket).Bucket(h.id)
		if src == nil {
			return errNoBody
		}

		var (
			dst *bolt.Bucket
			err error
		)
		id, dst, err = h.p.newBody(tx)
		if err != nil {
			return err
		}

		return src.ForEach(func(k, v []byte) error {
			cp := make([]byte, len(v))
			copy(cp, v)
			return dst.Put(k, cp)
		})
	})
	if err != nil {
		return nil, wrapErr("copy", err)
	}

	return &boltHandle{p: h.p, id: id, size: h.size}, nil
}

func (h *boltHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	h.released = true

	if err := h.p.deleteBody(h.id); err != nil {
		log.Warnf("unable to delete stored body %x: %v", h.id, err)
		return wrapErr("release", err)
	}
	return nil
}

// boltReader reads one chunk per transaction.
type boltReader struct {
	h     *boltHandle
	chunk uint64
	cur   []byte
	eof   bool
}

func (r *boltReader) Read(p []byte) (int, error) {
	for len(r.cur) == 0 {
		if r.eof {
			return 0, io.EOF
		}

		err := r.h.p.db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket(bodiesBucket).Bucket(r.h.id)
			if b == nil {
				return errNoBody
			}

			v := b.Get(itob(r.chunk))
			if v == nil {
				r.eof = true
				return nil
			}

			r.cur = append(r.cur[:0], v...)
			return nil
		})
		if err != nil {
			return 0, wrapErr("read", err)
		}

		r.chunk++
	}

	n := copy(p, r.cur)
	r.cur = r.cur[n:]
	return n, nil
}

func (r *boltReader) Close() error {
	r.cur = nil
	r.eof = true
	return nil
}
