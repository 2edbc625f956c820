package header

import (
	"strconv"
	"strings"
	"time"

	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/go-mimestream/header/field"
	"github.com/zostay/go-mimestream/header/param"
)

// Kind identifies which variant of Value a field body parses into.
type Kind int

// The kinds of structured field values.
const (
	KindUnstructured Kind = iota
	KindContentType
	KindContentDisposition
	KindMailboxList
	KindAddressList
	KindDateTime
)

var kindNames = map[Kind]string{
	KindUnstructured:       "unstructured",
	KindContentType:        "content-type",
	KindContentDisposition: "content-disposition",
	KindMailboxList:        "mailbox-list",
	KindAddressList:        "address-list",
	KindDateTime:           "date-time",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is the structured interpretation of a header field. The concrete type
// is always one of *ContentTypeValue, *ContentDispositionValue, *MailboxList,
// *AddressList, *DateTime or *Unstructured. Values are immutable.
type Value interface {
	// Raw returns the field the value was parsed from.
	Raw() *field.Raw

	// Kind returns which variant this is.
	Kind() Kind
}

// ContentTypeValue is a parsed Content-type field.
type ContentTypeValue struct {
	raw *field.Raw

	// Type is the lower-cased primary type, e.g., "text".
	Type string

	// Subtype is the lower-cased subtype, e.g., "plain".
	Subtype string

	// Params holds the parameters in the order they appeared.
	Params *param.List
}

// NewContentType builds a ContentTypeValue that was not parsed from a message.
// The raw field is rendered from the given values.
func NewContentType(mediaType string, ps *param.List) *ContentTypeValue {
	typ, sub := mediaType, ""
	if ix := strings.IndexByte(mediaType, '/'); ix >= 0 {
		typ, sub = mediaType[:ix], mediaType[ix+1:]
	}

	if ps == nil {
		ps = param.NewList()
	}

	return &ContentTypeValue{
		raw:     field.New(ContentType, strings.ToLower(mediaType)+ps.String()),
		Type:    strings.ToLower(typ),
		Subtype: strings.ToLower(sub),
		Params:  ps,
	}
}

func (ct *ContentTypeValue) Raw() *field.Raw { return ct.raw }
func (ct *ContentTypeValue) Kind() Kind      { return KindContentType }

// MediaType returns "type/subtype".
func (ct *ContentTypeValue) MediaType() string {
	return ct.Type + "/" + ct.Subtype
}

// IsMultipart returns true for any multipart/* type.
func (ct *ContentTypeValue) IsMultipart() bool {
	return ct.Type == "multipart"
}

// Charset returns the value of the charset parameter.
func (ct *ContentTypeValue) Charset() string {
	return ct.Params.Value(param.Charset)
}

// Boundary returns the value of the boundary parameter.
func (ct *ContentTypeValue) Boundary() string {
	return ct.Params.Value(param.Boundary)
}

// Param returns the named parameter.
func (ct *ContentTypeValue) Param(name string) (string, bool) {
	return ct.Params.Get(name)
}

// ContentDispositionValue is a parsed Content-disposition field.
type ContentDispositionValue struct {
	raw *field.Raw

	// Disposition is the lower-cased disposition type, e.g., "attachment".
	Disposition string

	// Params holds the parameters in the order they appeared.
	Params *param.List
}

func (cd *ContentDispositionValue) Raw() *field.Raw { return cd.raw }
func (cd *ContentDispositionValue) Kind() Kind      { return KindContentDisposition }

// IsAttachment returns true when the disposition type is "attachment".
func (cd *ContentDispositionValue) IsAttachment() bool {
	return cd.Disposition == "attachment"
}

// IsInline returns true when the disposition type is "inline".
func (cd *ContentDispositionValue) IsInline() bool {
	return cd.Disposition == "inline"
}

// Filename returns the value of the filename parameter.
func (cd *ContentDispositionValue) Filename() string {
	return cd.Params.Value(param.Filename)
}

// Size returns the value of the size parameter. It returns -1 if the
// parameter is missing or is not a non-negative integer.
func (cd *ContentDispositionValue) Size() int64 {
	v, ok := cd.Params.Get(param.Size)
	if !ok {
		return -1
	}

	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

func (cd *ContentDispositionValue) date(name string) (time.Time, error) {
	v, ok := cd.Params.Get(name)
	if !ok {
		return time.Time{}, ErrNoSuchFieldParameter
	}
	return ParseTime(v)
}

// CreationDate parses the creation-date parameter.
func (cd *ContentDispositionValue) CreationDate() (time.Time, error) {
	return cd.date(param.CreationDate)
}

// ModificationDate parses the modification-date parameter.
func (cd *ContentDispositionValue) ModificationDate() (time.Time, error) {
	return cd.date(param.ModificationDate)
}

// ReadDate parses the read-date parameter.
func (cd *ContentDispositionValue) ReadDate() (time.Time, error) {
	return cd.date(param.ReadDate)
}

// MailboxList is a parsed field holding mailboxes only, such as From or
// Sender.
type MailboxList struct {
	raw *field.Raw

	Mailboxes []*addr.Mailbox
}

func (ml *MailboxList) Raw() *field.Raw { return ml.raw }
func (ml *MailboxList) Kind() Kind      { return KindMailboxList }

// AddressList is a parsed field holding mailboxes and groups, such as To or
// Cc.
type AddressList struct {
	raw *field.Raw

	Addresses addr.AddressList
}

func (al *AddressList) Raw() *field.Raw { return al.raw }
func (al *AddressList) Kind() Kind      { return KindAddressList }

// DateTime is a parsed date field.
type DateTime struct {
	raw *field.Raw

	Time time.Time
}

func (dt *DateTime) Raw() *field.Raw { return dt.raw }
func (dt *DateTime) Kind() Kind      { return KindDateTime }

// Unstructured is any field not given a structure of its own, and also the
// fallback for structured fields whose body could not be parsed.
type Unstructured struct {
	raw *field.Raw

	// Text is the unfolded field body with encoded words decoded.
	Text string
}

func (u *Unstructured) Raw() *field.Raw { return u.raw }
func (u *Unstructured) Kind() Kind      { return KindUnstructured }
