package entity

import (
	"errors"
	"io"

	"github.com/zostay/go-mimestream/header"
	"github.com/zostay/go-mimestream/storage"
)

var (
	// ErrMultipart is returned when the content of a multipart entity is
	// requested as a single body.
	ErrMultipart = errors.New("entity is multipart")

	// ErrNotMultipart is returned when the parts of a single body entity are
	// requested.
	ErrNotMultipart = errors.New("entity is not multipart")

	// ErrNoBody is returned when a single body entity has no stored content.
	// This happens when the body was skipped or storage was turned off.
	ErrNoBody = errors.New("entity body was not stored")
)

// Body is the content of an Entity. It is always either a *SingleBody or a
// *Multipart.
type Body interface {
	isBody()
}

// Entity is a MIME entity: a header and a body. A top-level message is an
// Entity, as is each of the parts of a multipart.
type Entity struct {
	Header *header.Header
	Body   Body

	// MediaType is the effective media type of the body, which is the
	// default for the context when the header has none.
	MediaType string

	// Encoded is true when the stored body still has its
	// Content-transfer-encoding applied.
	Encoded bool
}

// SingleBody is the content of an entity that is not multipart. The Handle
// is nil when the body was not stored.
type SingleBody struct {
	storage.Handle
}

// Multipart is the content of a multipart entity. Preamble and Epilogue hold
// the text outside the parts, without the line breaks that belong to the
// delimiters.
type Multipart struct {
	Boundary string
	Preamble []byte
	Parts    []*Entity
	Epilogue []byte
}

func (*SingleBody) isBody() {}
func (*Multipart) isBody()  {}

// IsMultipart returns true if the body of the entity is a *Multipart.
func (e *Entity) IsMultipart() bool {
	_, isMultipart := e.Body.(*Multipart)
	return isMultipart
}

// GetParts returns the parts of a multipart entity.
func (e *Entity) GetParts() ([]*Entity, error) {
	if mp, isMultipart := e.Body.(*Multipart); isMultipart {
		return mp.Parts, nil
	}
	return nil, ErrNotMultipart
}

// Open returns a reader for the stored content of a single body entity.
func (e *Entity) Open() (io.ReadCloser, error) {
	switch b := e.Body.(type) {
	case *SingleBody:
		if b.Handle == nil {
			return nil, ErrNoBody
		}
		return b.Handle.Open()
	case *Multipart:
		return nil, ErrMultipart
	}
	return nil, ErrNoBody
}

// Release frees the storage of every body in the tree. It continues past
// failures and returns the first one.
func (e *Entity) Release() error {
	var first error
	_ = Walker(func(_, _ int, part *Entity) error {
		if sb, isSingle := part.Body.(*SingleBody); isSingle && sb.Handle != nil {
			if err := sb.Handle.Release(); err != nil && first == nil {
				first = err
			}
		}
		return nil
	}).Walk(e)
	return first
}
