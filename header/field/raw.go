package field

import (
	"bytes"
	"fmt"
)

// Raw is an unparsed header field: the name and the body exactly as they
// appeared in the message, folding and comments included. Objects of this
// type are immutable.
type Raw struct {
	field []byte // complete raw field, minus the final line break
	colon int    // the index of the colon

	name string // unfolded name
	body string // unfolded and trimmed body
}

func newRaw(field []byte, colon int) *Raw {
	off := 1
	if colon == len(field) {
		off = 0
	}

	return &Raw{
		field: field,
		colon: colon,
		name:  string(bytes.TrimSpace(Unfold(field[:colon]))),
		body:  string(bytes.TrimSpace(Unfold(field[colon+off:]))),
	}
}

// New builds a Raw field from a name and an unfolded body. The field is
// rendered as "Name: body" with no folding.
func New(name, body string) *Raw {
	f := []byte(fmt.Sprintf("%s: %s", name, body))
	return newRaw(f, len(name))
}

// Name returns the name of the field with surrounding whitespace removed.
func (f *Raw) Name() string {
	return f.name
}

// Body returns the field body, unfolded and trimmed of surrounding
// whitespace. Comments and encoded words are left as-is.
func (f *Raw) Body() string {
	return f.body
}

// RawBody returns the bytes following the colon exactly as they were read,
// folding included. Do not modify the returned slice.
func (f *Raw) RawBody() []byte {
	if f.colon == len(f.field) {
		return nil
	}
	return f.field[f.colon+1:]
}

// Bytes returns the complete field as it was read, without the final line
// break. Do not modify the returned slice.
func (f *Raw) Bytes() []byte {
	return f.field
}

// String returns the complete field as it was read, without the final line
// break.
func (f *Raw) String() string {
	return string(f.field)
}
