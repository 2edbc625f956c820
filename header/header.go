package header

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/go-mimestream/header/field"
)

// Errors returned by various header methods and functions.
var (
	// ErrNoSuchField is returned by Header methods when the operation
	// being performed failed because the header named does not exist.
	ErrNoSuchField = errors.New("no such header field")

	// ErrNoSuchFieldParameter is returned by Header methods when the
	// operation being performed failed because the header exists, but a
	// sub-field of the header does not exist.
	ErrNoSuchFieldParameter = errors.New("no such header field parameter")

	// ErrManyFields is returned by Header methods when the operation
	// being performed failed because the there are multiple fields with the
	// given name.
	ErrManyFields = errors.New("many header fields found")

	// ErrWrongKind is returned when a field parses into a different variant
	// than the one asked for.
	ErrWrongKind = errors.New("header field has a different kind of value")
)

// Header holds the fields of one entity in the order they were read, along
// with a cache of the structured values parsed from them.
//
// The getter methods of this object will return an error if the field being
// fetched has not been set on the header. The error returned will be
// ErrNoSuchField. When a field appears more than once, the first occurrence
// is used.
type Header struct {
	lbr    Break
	fields []*field.Raw

	// valueCache holds the structured value parsed from the field at the
	// same index. Values are immutable, so a clone may share them.
	valueCache map[int]Value
}

// New returns an empty header that will be written with the given line break.
func New(lb Break) *Header {
	return &Header{lbr: lb}
}

// Break returns the line break used when writing the header.
func (h *Header) Break() Break {
	if h.lbr == "" {
		return CRLF
	}
	return h.lbr
}

// SetBreak changes the line break used when writing the header.
func (h *Header) SetBreak(lb Break) {
	h.lbr = lb
}

// Append adds a field to the end of the header.
func (h *Header) Append(f *field.Raw) {
	h.fields = append(h.fields, f)
}

// Len returns the number of fields.
func (h *Header) Len() int {
	return len(h.fields)
}

// Field returns the field at index n.
func (h *Header) Field(n int) *field.Raw {
	return h.fields[n]
}

// Fields returns all the fields in order. Do not modify the returned slice.
func (h *Header) Fields() []*field.Raw {
	return h.fields
}

// IndexesNamed returns the indexes of every field with the given name,
// compared without regard to case.
func (h *Header) IndexesNamed(name string) []int {
	var ixs []int
	for i, f := range h.fields {
		if strings.EqualFold(f.Name(), name) {
			ixs = append(ixs, i)
		}
	}
	return ixs
}

func (h *Header) first(name string) (int, error) {
	for i, f := range h.fields {
		if strings.EqualFold(f.Name(), name) {
			return i, nil
		}
	}
	return -1, ErrNoSuchField
}

// Get retrieves the unfolded body of the named field.
//
// If the named field is not set in the header, it will return an empty string
// with ErrNoSuchField. If there are multiple headers for the given named field,
// it will return the first value found and return ErrManyFields.
func (h *Header) Get(name string) (string, error) {
	ixs := h.IndexesNamed(name)
	if len(ixs) == 0 {
		return "", ErrNoSuchField
	}

	b := h.fields[ixs[0]].Body()
	if len(ixs) > 1 {
		return b, ErrManyFields
	}

	return b, nil
}

// GetAll returns the bodies of every field with the given name. It returns
// ErrNoSuchField when there are none.
func (h *Header) GetAll(name string) ([]string, error) {
	ixs := h.IndexesNamed(name)
	if len(ixs) == 0 {
		return nil, ErrNoSuchField
	}

	bodies := make([]string, len(ixs))
	for i, ix := range ixs {
		bodies[i] = h.fields[ix].Body()
	}
	return bodies, nil
}

// valueAt returns the cached structured value of the field at index n,
// parsing it leniently if necessary. The parse error, if any, is returned
// only on the call that first parses the field.
func (h *Header) valueAt(n int) (Value, error) {
	if v, found := h.valueCache[n]; found {
		return v, nil
	}

	v, err := ParseValue(h.fields[n])
	if err == nil {
		if h.valueCache == nil {
			h.valueCache = make(map[int]Value, len(h.fields))
		}
		h.valueCache[n] = v
	}

	return v, err
}

// GetValue returns the structured value of the first field with the given
// name. If the field body cannot be parsed, an *Unstructured value is
// returned along with the parse error.
func (h *Header) GetValue(name string) (Value, error) {
	n, err := h.first(name)
	if err != nil {
		return nil, err
	}
	return h.valueAt(n)
}

func (h *Header) getKind(name string, k Kind) (Value, error) {
	v, err := h.GetValue(name)
	if err != nil {
		return nil, err
	}

	if v.Kind() != k {
		return nil, ErrWrongKind
	}

	return v, nil
}

// GetContentType returns the parsed Content-type field.
func (h *Header) GetContentType() (*ContentTypeValue, error) {
	v, err := h.getKind(ContentType, KindContentType)
	if err != nil {
		return nil, err
	}
	return v.(*ContentTypeValue), nil
}

// GetMediaType returns the "type/subtype" of the Content-type field.
func (h *Header) GetMediaType() (string, error) {
	ct, err := h.GetContentType()
	if err != nil {
		return "", err
	}
	return ct.MediaType(), nil
}

// GetCharset returns the charset parameter of the Content-type field.
func (h *Header) GetCharset() (string, error) {
	ct, err := h.GetContentType()
	if err != nil {
		return "", err
	}

	cs, ok := ct.Param("charset")
	if !ok {
		return "", ErrNoSuchFieldParameter
	}
	return cs, nil
}

// GetBoundary returns the boundary parameter of the Content-type field.
func (h *Header) GetBoundary() (string, error) {
	ct, err := h.GetContentType()
	if err != nil {
		return "", err
	}

	b, ok := ct.Param("boundary")
	if !ok {
		return "", ErrNoSuchFieldParameter
	}
	return b, nil
}

// GetContentDisposition returns the parsed Content-disposition field.
func (h *Header) GetContentDisposition() (*ContentDispositionValue, error) {
	v, err := h.getKind(ContentDisposition, KindContentDisposition)
	if err != nil {
		return nil, err
	}
	return v.(*ContentDispositionValue), nil
}

// GetFilename returns the filename parameter of the Content-disposition
// field, falling back on the name parameter of the Content-type field.
func (h *Header) GetFilename() (string, error) {
	if cd, err := h.GetContentDisposition(); err == nil {
		if fn := cd.Filename(); fn != "" {
			return fn, nil
		}
	}

	if ct, err := h.GetContentType(); err == nil {
		if fn, ok := ct.Param("name"); ok {
			return fn, nil
		}
	}

	return "", ErrNoSuchFieldParameter
}

// GetTransferEncoding returns the lower-cased Content-transfer-encoding.
func (h *Header) GetTransferEncoding() (string, error) {
	n, err := h.first(ContentTransferEncoding)
	if err != nil {
		return "", err
	}
	return ParseTransferEncoding(h.fields[n]), nil
}

// GetDate returns the parsed Date field.
func (h *Header) GetDate() (time.Time, error) {
	v, err := h.getKind(Date, KindDateTime)
	if err != nil {
		return time.Time{}, err
	}
	return v.(*DateTime).Time, nil
}

// GetAddressList returns the addresses of the named field. Fields that hold
// a mailbox list, such as From, are returned as an address list too.
func (h *Header) GetAddressList(name string) (addr.AddressList, error) {
	v, err := h.GetValue(name)
	if err != nil {
		return nil, err
	}

	switch al := v.(type) {
	case *AddressList:
		return al.Addresses, nil
	case *MailboxList:
		as := make(addr.AddressList, len(al.Mailboxes))
		for i, mb := range al.Mailboxes {
			as[i] = mb
		}
		return as, nil
	}

	return nil, ErrWrongKind
}

// GetMailboxList returns the mailboxes of a mailbox list field such as From.
func (h *Header) GetMailboxList(name string) ([]*addr.Mailbox, error) {
	v, err := h.GetValue(name)
	if err != nil {
		return nil, err
	}

	ml, ok := v.(*MailboxList)
	if !ok {
		return nil, ErrWrongKind
	}
	return ml.Mailboxes, nil
}

// GetSubject returns the Subject with encoded words decoded.
func (h *Header) GetSubject() (string, error) {
	v, err := h.GetValue(Subject)
	if err != nil {
		return "", err
	}
	return v.(*Unstructured).Text, nil
}

// Clone returns a copy of the header. The field list is copied by value, so
// changes to the copy are never seen by the original.
func (h *Header) Clone() *Header {
	fields := make([]*field.Raw, len(h.fields))
	copy(fields, h.fields)

	// the value cache objects are immutable, so they may be copied as-is
	vc := make(map[int]Value, len(h.valueCache))
	for k, v := range h.valueCache {
		vc[k] = v
	}

	return &Header{
		lbr:        h.lbr,
		fields:     fields,
		valueCache: vc,
	}
}

// WriteTo writes every field exactly as it was read, each followed by the
// line break, then the blank line that ends the header.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	lb := h.Break().Bytes()

	var total int64
	for _, f := range h.fields {
		n, err := w.Write(f.Bytes())
		total += int64(n)
		if err != nil {
			return total, err
		}

		n, err = w.Write(lb)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	n, err := w.Write(lb)
	total += int64(n)
	return total, err
}
