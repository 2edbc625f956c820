package entity

import (
	"github.com/zostay/go-mimestream/storage"
)

// Copy returns a deep copy of e. Every stored body is duplicated with
// storage.Handle.Copy, so the copy shares no storage with e. If any body
// cannot be copied, the handles copied so far are released, e is left as it
// was, and the error is returned. A body stored by a one-shot handle fails
// with storage.ErrCopyUnsupported.
func (e *Entity) Copy() (*Entity, error) {
	var copied []storage.Handle
	cp, err := copyEntity(e, &copied)
	if err != nil {
		for _, h := range copied {
			if rerr := h.Release(); rerr != nil {
				log.Warnf("unable to release partial copy: %v", rerr)
			}
		}
		return nil, err
	}
	return cp, nil
}

func copyEntity(e *Entity, copied *[]storage.Handle) (*Entity, error) {
	cp := &Entity{MediaType: e.MediaType, Encoded: e.Encoded}
	if e.Header != nil {
		cp.Header = e.Header.Clone()
	}

	switch b := e.Body.(type) {
	case *SingleBody:
		sb := &SingleBody{}
		if b.Handle != nil {
			h, err := b.Handle.Copy()
			if err != nil {
				return nil, err
			}
			*copied = append(*copied, h)
			sb.Handle = h
		}
		cp.Body = sb

	case *Multipart:
		mp := &Multipart{
			Boundary: b.Boundary,
			Preamble: append([]byte(nil), b.Preamble...),
			Epilogue: append([]byte(nil), b.Epilogue...),
			Parts:    make([]*Entity, 0, len(b.Parts)),
		}
		for _, part := range b.Parts {
			pcp, err := copyEntity(part, copied)
			if err != nil {
				return nil, err
			}
			mp.Parts = append(mp.Parts, pcp)
		}
		cp.Body = mp
	}

	return cp, nil
}
