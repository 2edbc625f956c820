package header

import "bytes"

// Break represents the linebreak to use when working with an email.
type Break string

// Constants for use when selecting a line break to use with a new header. If
// you don't know what to pick, choose CRLF.
const (
	CRLF Break = "\x0d\x0a" // \r\n - Network linebreak
	LF   Break = "\x0a"     // \n - Unix/Linux/BSD linebreak
)

// String returns the break as a string.
func (b Break) String() string {
	return string(b)
}

// Bytes returns the break as a slice of bytes.
func (b Break) Bytes() []byte {
	return []byte(b)
}

// DetectBreak returns CRLF when the first line break in m is preceded by a
// carriage return and LF otherwise.
func DetectBreak(m []byte) Break {
	ix := bytes.IndexByte(m, '\n')
	if ix > 0 && m[ix-1] == '\r' {
		return CRLF
	}
	return LF
}
