package transfer

import (
	"io"
	"strings"

	"github.com/zostay/go-mimestream/header"
)

const (
	None            = ""                 // bytes will be left as-is
	Bit7            = "7bit"             // bytes will be left as-is
	Bit8            = "8bit"             // bytes will be left as-is
	Binary          = "binary"           // bytes will be left as-is
	QuotedPrintable = "quoted-printable" // bytes will be transformed between quoted-printable and binary data
	Base64          = "base64"           // bytes will be transformed between base64 and binary data
)

type decodeOpts struct {
	strict bool
	warn   func(error)
}

// DecodeOption adjusts the behavior of a decoder.
type DecodeOption func(*decodeOpts)

// Strict causes malformed input to fail the decode with a *DecodeError
// rather than being skipped or passed through.
func Strict() DecodeOption {
	return func(o *decodeOpts) {
		o.strict = true
	}
}

// OnWarning installs a function that receives a *DecodeError for every
// problem skipped over when not strict.
func OnWarning(warn func(error)) DecodeOption {
	return func(o *decodeOpts) {
		o.warn = warn
	}
}

func makeOpts(opts []DecodeOption) decodeOpts {
	var o decodeOpts
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// problem either returns err (strict) or reports it as a warning and returns
// nil.
func (o *decodeOpts) problem(err *DecodeError) error {
	if o.strict {
		return err
	}
	if o.warn != nil {
		o.warn(err)
	}
	return nil
}

// Transcoding is a pair of functions that can be used to transform to and from
// a transfer encoding.
type Transcoding struct {
	// Encoder returns an io.WriteCloser, which will encode binary data and
	// write the encoded form to the given io.Writer. You must call Close() on
	// the returned io.WriteCloser when you are finished.
	Encoder func(io.Writer) io.WriteCloser

	// Decoder returns an io.WriteCloser, which will decode the encoded data
	// written to it and write the binary form to the given io.Writer. You
	// must call Close() on the returned io.WriteCloser when you are finished.
	Decoder func(io.Writer, ...DecodeOption) io.WriteCloser
}

// AsIsTranscoder is just a shortcut to a no-op encoder/decoder.
var AsIsTranscoder = Transcoding{NewAsIsEncoder, NewAsIsDecoder}

// Transcodings defines the supported Content-transfer-encodings and how to
// handle them. It can be modified to change the global handling of transfer
// encodings.
var Transcodings = map[string]Transcoding{
	None:            AsIsTranscoder,
	Bit7:            AsIsTranscoder,
	Bit8:            AsIsTranscoder,
	Binary:          AsIsTranscoder,
	QuotedPrintable: {NewQuotedPrintableEncoder, NewQuotedPrintableDecoder},
	Base64:          {NewBase64Encoder, NewBase64Decoder},
}

// Normalize returns the encoding name lower-cased and trimmed.
func Normalize(encoding string) string {
	return strings.ToLower(strings.TrimSpace(encoding))
}

// IsKnown returns true if the named encoding is in Transcodings.
func IsKnown(encoding string) bool {
	_, known := Transcodings[Normalize(encoding)]
	return known
}

// NewDecoder returns a decoder for the named encoding that writes decoded
// bytes to w. Unknown encodings get the as-is decoder; use IsKnown to tell
// the difference.
func NewDecoder(w io.Writer, encoding string, opts ...DecodeOption) io.WriteCloser {
	if tc, hasCode := Transcodings[Normalize(encoding)]; hasCode {
		return tc.Decoder(w, opts...)
	}
	return NewAsIsDecoder(w, opts...)
}

// NewEncoder returns an encoder for the named encoding that writes encoded
// bytes to w. Unknown encodings get the as-is encoder.
func NewEncoder(w io.Writer, encoding string) io.WriteCloser {
	if tc, hasCode := Transcodings[Normalize(encoding)]; hasCode {
		return tc.Encoder(w)
	}
	return NewAsIsEncoder(w)
}

// EncodingFor returns the transfer encoding that applies to the body of an
// entity with the given header. Multipart entities never have one: their
// Content-transfer-encoding, if any, is ignored.
func EncodingFor(h *header.Header) string {
	// check to see if the content-type is permitted to have
	// content-transfer-encoding, it's allowed if:
	// |-> Content-type is missing or unreadable
	// |-> Content-type is not a "multipart/*" type
	ct, err := h.GetContentType()
	if err == nil && ct.IsMultipart() {
		return None
	}

	cte, err := h.GetTransferEncoding()
	if err != nil {
		return None
	}

	return cte
}
