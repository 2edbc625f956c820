// Package encoding installs a charset decoder backed by
// golang.org/x/text/encoding/ianaindex. Importing it, usually for side effects,
// gives encoded words and text bodies access to pretty much any character set
// that turns up in the wild wild world of email.
package encoding

import (
	"fmt"
	"io"

	_ "golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/zostay/go-mimestream/header/field"
)

func init() {
	field.CharsetDecoder = CharsetDecoder
}

// CharsetDecoder is a field.CharsetDecoderFunc that can decode a wide range of
// rare and unusual character sets.
func CharsetDecoder(charset string, b []byte) (string, error) {
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		return "", err
	}

	if e == nil {
		return "", fmt.Errorf("no encoding found for charset %q", charset)
	}

	eb, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}

	return string(eb), nil
}

// NewReader returns a reader that transcodes r from the named charset into
// UTF-8 as it is read. It is used for text bodies, which may be too large to
// transcode all at once.
func NewReader(charset string, r io.Reader) (io.Reader, error) {
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		return nil, err
	}

	if e == nil {
		return nil, fmt.Errorf("no encoding found for charset %q", charset)
	}

	return transform.NewReader(r, e.NewDecoder()), nil
}
