package entity

import (
	"io"

	"github.com/zostay/go-mimestream/stream"
)

// Parse reads a complete message from r into an Entity tree. The options are
// passed on to stream.Parse. Bodies are kept by the storage provider
// configured there, so release the returned Entity when done with it. On
// error every body stored so far is released.
func Parse(r io.Reader, opts ...stream.ParseOption) (*Entity, error) {
	b := NewBuilder()
	if err := stream.Parse(r, b, opts...); err != nil {
		_ = b.Release()
		return nil, err
	}
	return b.Entity(), nil
}
