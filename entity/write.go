package entity

import (
	"fmt"
	"io"

	"github.com/zostay/go-mimestream/header"
	"github.com/zostay/go-mimestream/transfer"
)

// countWriter tallies the bytes written through it.
type countWriter struct {
	w io.Writer
	n int64
}

func (cw *countWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo writes the entity to w: the header fields exactly as they were read
// followed by the body. Decoded bodies are encoded again according to the
// Content-transfer-encoding of the header. The body of a multipart is written
// as its preamble, the delimited parts, the close delimiter and the
// epilogue.
func (e *Entity) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	err := e.writeTo(cw, false)
	return cw.n, err
}

func (e *Entity) writeTo(w io.Writer, nested bool) error {
	h := e.Header
	if h == nil {
		h = header.New(header.CRLF)
	}

	if _, err := h.WriteTo(w); err != nil {
		return err
	}

	switch b := e.Body.(type) {
	case *SingleBody:
		return e.writeSingle(w, h, b, nested)
	case *Multipart:
		return writeMultipart(w, h.Break(), b, nested)
	}
	return nil
}

func (e *Entity) writeSingle(w io.Writer, h *header.Header, b *SingleBody, nested bool) error {
	if b.Handle == nil {
		return nil
	}

	r, err := b.Handle.Open()
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	if e.Encoded {
		_, err := io.Copy(w, r)
		return err
	}

	var tw io.WriteCloser
	switch enc := transfer.EncodingFor(h); {
	case transfer.Normalize(enc) != transfer.Base64:
		tw = transfer.NewEncoder(w, enc)
	case nested:
		tw = transfer.NewBase64PartEncoder(w, h.Break().Bytes())
	default:
		tw = transfer.NewBase64EncoderWithBreak(w, h.Break().Bytes())
	}

	if _, err := io.Copy(tw, r); err != nil {
		_ = tw.Close()
		return err
	}
	return tw.Close()
}

// writeMultipart writes the body of a multipart. The line break after the
// close delimiter of a nested multipart is written by its parent, as part of
// the next delimiter.
func writeMultipart(w io.Writer, br header.Break, mp *Multipart, nested bool) error {
	if _, err := w.Write(mp.Preamble); err != nil {
		return err
	}

	for i, part := range mp.Parts {
		if i > 0 || len(mp.Preamble) > 0 {
			if _, err := fmt.Fprint(w, br); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, "--%s%s", mp.Boundary, br); err != nil {
			return err
		}

		if err := part.writeTo(w, true); err != nil {
			return err
		}
	}

	if len(mp.Parts) > 0 || len(mp.Preamble) > 0 {
		if _, err := fmt.Fprint(w, br); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "--%s--", mp.Boundary); err != nil {
		return err
	}

	if len(mp.Epilogue) == 0 && nested {
		return nil
	}

	if _, err := fmt.Fprint(w, br); err != nil {
		return err
	}

	_, err := w.Write(mp.Epilogue)
	return err
}
