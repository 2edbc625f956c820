package transfer

import (
	"encoding/base64"
	"io"
)

const defaultBase64LineLength = 76

var defaultBase64LineBreak = []byte{'\r', '\n'}

// newlineWriter breaks the bytes written through it into lines of every
// bytes.
type newlineWriter struct {
	every int
	acc   int
	lbr   []byte
	w     io.Writer
}

func (nw *newlineWriter) Write(b []byte) (int, error) {
	ix, n := 0, 0
	for len(b[ix:])+nw.acc > nw.every {
		ln, err := nw.w.Write(b[ix : ix+(nw.every-nw.acc)])
		n += ln
		if err != nil {
			return n, err
		}

		_, err = nw.w.Write(nw.lbr)
		if err != nil {
			return n, err
		}

		ix += nw.every - nw.acc
		nw.acc = 0
	}

	ln, err := nw.w.Write(b[ix:])
	n += ln
	if err != nil {
		return n, err
	}

	nw.acc += len(b[ix:])

	return n, nil
}

// finish ends the final partial line.
func (nw *newlineWriter) finish() error {
	if nw.acc == 0 {
		return nil
	}
	nw.acc = 0
	_, err := nw.w.Write(nw.lbr)
	return err
}

type base64Encoder struct {
	io.WriteCloser
	nw   *newlineWriter
	open bool
}

func (e *base64Encoder) Close() error {
	if err := e.WriteCloser.Close(); err != nil {
		return err
	}
	if e.open {
		return nil
	}
	return e.nw.finish()
}

// NewBase64Encoder will translate all bytes written to the returned
// io.WriteCloser into base64 encoding and write those to the give io.Writer.
// Lines are 76 characters long and end with CRLF.
func NewBase64Encoder(w io.Writer) io.WriteCloser {
	return NewBase64EncoderWithBreak(w, defaultBase64LineBreak)
}

// NewBase64EncoderWithBreak is NewBase64Encoder with a choice of line break.
func NewBase64EncoderWithBreak(w io.Writer, lbr []byte) io.WriteCloser {
	nw := &newlineWriter{
		every: defaultBase64LineLength,
		lbr:   lbr,
		w:     w,
	}
	return &base64Encoder{WriteCloser: base64.NewEncoder(base64.StdEncoding, nw), nw: nw}
}

// NewBase64PartEncoder is NewBase64EncoderWithBreak without the line break
// after the final line. Inside a multipart that break is written with the
// delimiter that follows.
func NewBase64PartEncoder(w io.Writer, lbr []byte) io.WriteCloser {
	e := NewBase64EncoderWithBreak(w, lbr).(*base64Encoder)
	e.open = true
	return e
}

func isBase64Char(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '+', c == '/', c == '=':
		return true
	}
	return false
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// base64Decoder collects the encoded input into 4-character quanta and
// decodes each one as it completes.
type base64Decoder struct {
	w    io.Writer
	opts decodeOpts

	quad   [4]byte
	n      int
	offset int64
	out    []byte
}

// NewBase64Decoder returns an io.WriteCloser that decodes the base64 written
// to it and writes the binary data to w. Whitespace is ignored. Characters
// outside the base64 alphabet are skipped unless Strict is given. A final
// quantum left incomplete is decoded as far as possible unless Strict is
// given.
func NewBase64Decoder(w io.Writer, opts ...DecodeOption) io.WriteCloser {
	return &base64Decoder{w: w, opts: makeOpts(opts)}
}

func (d *base64Decoder) problem(reason string) error {
	return d.opts.problem(&DecodeError{
		Encoding: Base64,
		Offset:   d.offset,
		Reason:   reason,
	})
}

// Write decodes every complete quantum in p. The remainder is held until the
// next Write or Close.
func (d *base64Decoder) Write(p []byte) (int, error) {
	d.out = d.out[:0]
	for _, c := range p {
		switch {
		case isWhitespace(c):
		case isBase64Char(c):
			d.quad[d.n] = c
			d.n++
			if d.n == 4 {
				if err := d.decodeQuantum(); err != nil {
					return 0, err
				}
			}
		default:
			if err := d.problem("invalid base64 character " + quoteByte(c)); err != nil {
				return 0, err
			}
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

func (d *base64Decoder) decodeQuantum() error {
	var buf [3]byte
	n, err := base64.StdEncoding.Decode(buf[:], d.quad[:])
	d.n = 0
	if err == nil {
		d.out = append(d.out, buf[:n]...)
		return nil
	}

	if perr := d.problem("malformed base64 quantum " + string(d.quad[:])); perr != nil {
		return perr
	}

	d.out = append(d.out, d.decodePartial(d.quad[:])...)
	return nil
}

// decodePartial decodes whatever can be salvaged from an incomplete or
// malformed quantum, dropping padding.
func (d *base64Decoder) decodePartial(q []byte) []byte {
	chars := make([]byte, 0, 4)
	for _, c := range q {
		if c != '=' {
			chars = append(chars, c)
		}
	}

	if len(chars) < 2 {
		return nil
	}

	var buf [3]byte
	n, err := base64.RawStdEncoding.Decode(buf[:], chars)
	if err != nil {
		return nil
	}
	return buf[:n]
}

// Close flushes a trailing incomplete quantum. It does not close the
// underlying writer.
func (d *base64Decoder) Close() error {
	if d.n == 0 {
		return nil
	}

	q := d.quad[:d.n]
	d.n = 0
	if err := d.problem("truncated final base64 quantum"); err != nil {
		return err
	}

	if out := d.decodePartial(q); len(out) > 0 {
		if _, err := d.w.Write(out); err != nil {
			return err
		}
	}

	return nil
}

func quoteByte(c byte) string {
	const hex = "0123456789ABCDEF"
	if c >= ' ' && c < 0x7f {
		return "'" + string([]byte{c}) + "'"
	}
	return "0x" + string([]byte{hex[c>>4], hex[c&0xf]})
}
