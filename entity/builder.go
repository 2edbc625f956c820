package entity

import (
	"github.com/zostay/go-mimestream/header/field"
	"github.com/zostay/go-mimestream/storage"
	"github.com/zostay/go-mimestream/stream"
)

// Builder is a stream.Handler that assembles the parsed entities into a
// tree. Bodies are only kept when the parse stores them.
type Builder struct {
	// Skip, when set, is asked whether to skip each body. A skipped body is
	// left without a Handle.
	Skip func(d *stream.BodyDescriptor) bool

	// Encoded marks the built entities as holding bodies that were not
	// transfer decoded. Set it when parsing with
	// stream.WithoutTransferDecoding.
	Encoded bool

	stack []*Entity
	root  *Entity
}

var _ stream.Handler = (*Builder)(nil)

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Entity returns the top-level entity once it has ended, or nil.
func (b *Builder) Entity() *Entity {
	return b.root
}

// Release frees every body built so far, whether or not the parse finished.
func (b *Builder) Release() error {
	if b.root != nil {
		return b.root.Release()
	}
	if len(b.stack) > 0 {
		return b.stack[0].Release()
	}
	return nil
}

func (b *Builder) top() *Entity {
	return b.stack[len(b.stack)-1]
}

func (b *Builder) StartEntity(depth int) error {
	e := &Entity{Encoded: b.Encoded}
	if len(b.stack) > 0 {
		if mp, isMultipart := b.top().Body.(*Multipart); isMultipart {
			mp.Parts = append(mp.Parts, e)
		}
	}
	b.stack = append(b.stack, e)
	return nil
}

// HeaderField does nothing: the complete header arrives with StartBody.
func (b *Builder) HeaderField(*field.Raw) error {
	return nil
}

func (b *Builder) StartBody(d *stream.BodyDescriptor) error {
	e := b.top()
	e.Header = d.Header
	e.MediaType = d.MediaType

	if b.Skip != nil && b.Skip(d) {
		e.Body = &SingleBody{}
		return stream.ErrSkipBody
	}

	if d.Multipart {
		e.Body = &Multipart{Boundary: d.Boundary}
	} else {
		e.Body = &SingleBody{}
	}
	return nil
}

func (b *Builder) BodyData([]byte) error {
	return nil
}

func (b *Builder) EndBody(h storage.Handle) error {
	if sb, isSingle := b.top().Body.(*SingleBody); isSingle {
		sb.Handle = h
	} else if h != nil {
		return h.Release()
	}
	return nil
}

func (b *Builder) PreambleData(chunk []byte) error {
	if mp, isMultipart := b.top().Body.(*Multipart); isMultipart {
		mp.Preamble = append(mp.Preamble, chunk...)
	}
	return nil
}

func (b *Builder) EpilogueData(chunk []byte) error {
	if mp, isMultipart := b.top().Body.(*Multipart); isMultipart {
		mp.Epilogue = append(mp.Epilogue, chunk...)
	}
	return nil
}

func (b *Builder) EndEntity() error {
	e := b.top()
	b.stack = b.stack[:len(b.stack)-1]
	if len(b.stack) == 0 {
		b.root = e
	}
	return nil
}
