package transfer

import "io"

// asIs passes bytes through. Closing it does not close the writer it wraps.
type asIs struct {
	io.Writer
}

func (asIs) Close() error { return nil }

// NewAsIsEncoder returns an io.WriteCloser that writes bytes as-is.
func NewAsIsEncoder(w io.Writer) io.WriteCloser {
	return asIs{w}
}

// NewAsIsDecoder returns an io.WriteCloser that writes bytes as-is. Options
// are accepted for symmetry with the other decoders and ignored.
func NewAsIsDecoder(w io.Writer, _ ...DecodeOption) io.WriteCloser {
	return asIs{w}
}
