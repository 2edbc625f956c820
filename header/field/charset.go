package field

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedCharset is returned by DefaultCharsetDecoder for any charset
// other than UTF-8 or US-ASCII.
var ErrUnsupportedCharset = errors.New("unsupported byte encoding")

// CharsetDecoderFunc converts bytes in the named charset into a UTF-8 string.
type CharsetDecoderFunc func(charset string, b []byte) (string, error)

// CharsetDecoder is the decoder used when transcoding encoded words. It is set
// to DefaultCharsetDecoder, which handles only UTF-8 and US-ASCII. Import the
// header/encoding package to replace it with one that knows every charset in
// the IANA index.
var CharsetDecoder CharsetDecoderFunc = DefaultCharsetDecoder

// DefaultCharsetDecoder decodes UTF-8 and US-ASCII (also assumed for an empty
// charset name). Bytes outside of ASCII are replaced with utf8.RuneError when
// decoding ASCII.
func DefaultCharsetDecoder(charset string, b []byte) (string, error) {
	switch strings.ToLower(charset) {
	case "utf-8", "utf8":
		return string(b), nil
	case "", "us-ascii", "ascii":
		var sb strings.Builder
		sb.Grow(len(b))
		for _, c := range b {
			if c >= utf8.RuneSelf {
				sb.WriteRune(utf8.RuneError)
				continue
			}
			sb.WriteByte(c)
		}
		return sb.String(), nil
	}

	return "", ErrUnsupportedCharset
}

// CharsetDecoderToCharsetReader adapts a CharsetDecoderFunc to the
// CharsetReader hook of mime.WordDecoder.
func CharsetDecoderToCharsetReader(decode CharsetDecoderFunc) func(string, io.Reader) (io.Reader, error) {
	return func(charset string, in io.Reader) (io.Reader, error) {
		b, err := io.ReadAll(in)
		if err != nil {
			return nil, err
		}

		s, err := decode(charset, b)
		if err != nil {
			return nil, err
		}

		return strings.NewReader(s), nil
	}
}
