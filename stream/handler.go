package stream

import (
	"github.com/zostay/go-mimestream/header"
	"github.com/zostay/go-mimestream/header/field"
	"github.com/zostay/go-mimestream/storage"
)

// Handler receives the events of a parse in document order. All calls happen
// on the goroutine that called Parse. Every chunk passed to a Handler is a
// fresh slice the Handler may keep.
//
// Returning ErrSkipBody from StartBody skips the body of that entity.
// Returning ErrStop from any method ends the parse without error. Any other
// error aborts the parse and is returned from Parse unchanged.
type Handler interface {
	// StartEntity begins an entity. The top-level entity is at depth 0.
	StartEntity(depth int) error

	// HeaderField delivers one complete header field, folding intact.
	HeaderField(f *field.Raw) error

	// StartBody is called once the header is complete.
	StartBody(d *BodyDescriptor) error

	// BodyData delivers the next chunk of a simple body, transfer decoded
	// unless decoding is turned off.
	BodyData(chunk []byte) error

	// EndBody ends the body started by the last StartBody. For simple
	// bodies h holds the stored body, which now belongs to the Handler. It is
	// nil for multipart and skipped bodies and when storage is off.
	EndBody(h storage.Handle) error

	// PreambleData delivers a chunk of multipart preamble.
	PreambleData(chunk []byte) error

	// EpilogueData delivers a chunk of multipart epilogue.
	EpilogueData(chunk []byte) error

	// EndEntity ends the entity started by the matching StartEntity.
	EndEntity() error
}

// WarningHandler may be implemented by a Handler that wants to hear about the
// problems a lenient parse works around.
type WarningHandler interface {
	Warning(w *Warning)
}

// BodyDescriptor describes the body about to be delivered.
type BodyDescriptor struct {
	// Depth is the depth of the entity owning the body.
	Depth int

	// Header is the complete header of the entity.
	Header *header.Header

	// ContentType is the effective content type. When the header has none
	// or it cannot be parsed, this is the default type for the context.
	ContentType *header.ContentTypeValue

	// MediaType is the lower-cased "type/subtype".
	MediaType string

	// Charset is the charset parameter, or "us-ascii" for text types
	// without one.
	Charset string

	// TransferEncoding is the normalized Content-transfer-encoding, "7bit"
	// when absent.
	TransferEncoding string

	// Boundary is set for multipart bodies.
	Boundary string

	// Multipart reports whether the body will be delivered as a preamble,
	// parts and an epilogue.
	Multipart bool
}

// NopHandler implements Handler by ignoring every event. It releases the
// storage handles it receives. Embed it to implement only the events of
// interest.
type NopHandler struct{}

var _ Handler = NopHandler{}

func (NopHandler) StartEntity(int) error           { return nil }
func (NopHandler) HeaderField(*field.Raw) error    { return nil }
func (NopHandler) StartBody(*BodyDescriptor) error { return nil }
func (NopHandler) BodyData([]byte) error           { return nil }
func (NopHandler) PreambleData([]byte) error       { return nil }
func (NopHandler) EpilogueData([]byte) error       { return nil }
func (NopHandler) EndEntity() error                { return nil }

func (NopHandler) EndBody(h storage.Handle) error {
	if h != nil {
		return h.Release()
	}
	return nil
}
