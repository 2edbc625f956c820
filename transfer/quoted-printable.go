package transfer

import (
	"io"
	"mime/quotedprintable"
)

// NewQuotedPrintableEncoder will transform all bytes written to the returned
// io.WriteCloser into quoted-printable form and write them to the given
// io.Writer.
func NewQuotedPrintableEncoder(w io.Writer) io.WriteCloser {
	return quotedprintable.NewWriter(w)
}

type qpState int

const (
	qpText   qpState = iota // ordinary text
	qpEquals                // after '='
	qpHex                   // after '=' and one hex digit
	qpSoftWS                // after '=' and whitespace
	qpSoftCR                // after '=', optional whitespace and CR
)

// qpDecoder is a state machine over the encoded bytes, so an escape or soft
// line break may be split across writes.
type qpDecoder struct {
	w    io.Writer
	opts decodeOpts

	state   qpState
	literal []byte // the bytes of an escape in progress
	ws      []byte // whitespace that may turn out to be trailing
	offset  int64
	out     []byte
}

// NewQuotedPrintableDecoder returns an io.WriteCloser that decodes the
// quoted-printable data written to it and writes the binary data to w.
// Escapes may use either case of hex digit. Soft line breaks are removed, as
// is whitespace at the end of a line. Invalid escapes are passed through
// literally unless Strict is given.
func NewQuotedPrintableDecoder(w io.Writer, opts ...DecodeOption) io.WriteCloser {
	return &qpDecoder{w: w, opts: makeOpts(opts)}
}

func (d *qpDecoder) problem(reason string) error {
	return d.opts.problem(&DecodeError{
		Encoding: QuotedPrintable,
		Offset:   d.offset,
		Reason:   reason,
	})
}

// invalid handles a malformed escape: the bytes of the escape are passed
// through and c is processed as ordinary text.
func (d *qpDecoder) invalid(c byte, reason string) error {
	if err := d.problem(reason); err != nil {
		return err
	}

	d.out = append(d.out, d.literal...)
	d.literal = d.literal[:0]
	d.state = qpText
	return d.text(c)
}

func (d *qpDecoder) text(c byte) error {
	switch c {
	case ' ', '\t':
		d.ws = append(d.ws, c)
	case '\r', '\n':
		d.ws = d.ws[:0]
		d.out = append(d.out, c)
	case '=':
		d.out = append(d.out, d.ws...)
		d.ws = d.ws[:0]
		d.literal = append(d.literal[:0], c)
		d.state = qpEquals
	default:
		d.out = append(d.out, d.ws...)
		d.ws = d.ws[:0]
		d.out = append(d.out, c)
	}
	return nil
}

func (d *qpDecoder) step(c byte) error {
	switch d.state {
	case qpText:
		return d.text(c)

	case qpEquals:
		switch {
		case isHex(c):
			d.literal = append(d.literal, c)
			d.state = qpHex
		case c == ' ' || c == '\t':
			d.literal = append(d.literal, c)
			d.state = qpSoftWS
		case c == '\r':
			d.literal = append(d.literal, c)
			d.state = qpSoftCR
		case c == '\n':
			d.state = qpText
		default:
			return d.invalid(c, "invalid quoted-printable escape")
		}

	case qpHex:
		if !isHex(c) {
			return d.invalid(c, "invalid quoted-printable escape")
		}
		d.out = append(d.out, unhex(d.literal[1])<<4|unhex(c))
		d.literal = d.literal[:0]
		d.state = qpText

	case qpSoftWS:
		switch c {
		case ' ', '\t':
			d.literal = append(d.literal, c)
		case '\r':
			d.literal = append(d.literal, c)
			d.state = qpSoftCR
		case '\n':
			d.state = qpText
		default:
			return d.invalid(c, "whitespace after '=' not followed by line break")
		}

	case qpSoftCR:
		d.state = qpText
		if c != '\n' {
			if err := d.problem("soft line break without LF"); err != nil {
				return err
			}
			return d.text(c)
		}
	}

	return nil
}

// Write decodes p. The state of an incomplete escape is held until the next
// Write or Close.
func (d *qpDecoder) Write(p []byte) (int, error) {
	d.out = d.out[:0]
	for _, c := range p {
		if err := d.step(c); err != nil {
			return 0, err
		}
		d.offset++
	}

	if len(d.out) > 0 {
		if _, err := d.w.Write(d.out); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}

// Close finishes decoding. Trailing whitespace is dropped. An '=' at the very
// end of the input is treated as a soft line break. It does not close the
// underlying writer.
func (d *qpDecoder) Close() error {
	state := d.state
	d.state = qpText
	d.ws = d.ws[:0]

	switch state {
	case qpEquals:
		return d.problem("'=' at end of input")
	case qpHex:
		if err := d.problem("incomplete quoted-printable escape at end of input"); err != nil {
			return err
		}
		_, err := d.w.Write(d.literal)
		d.literal = d.literal[:0]
		return err
	}

	return nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
