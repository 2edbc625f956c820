package stream

import "bytes"

var dashes = []byte("--")

func isLWSP(b []byte) bool {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return true
}

// matchDelimiter checks a complete line against the dash-boundary "--" +
// boundary. A delimiter is the dash-boundary followed only by whitespace and
// a close delimiter has "--" before the whitespace.
func matchDelimiter(line, dashBoundary []byte) (match, closing bool) {
	if !bytes.HasPrefix(line, dashBoundary) {
		return false, false
	}

	rest := line[len(dashBoundary):]
	if bytes.HasPrefix(rest, dashes) && isLWSP(rest[2:]) {
		return true, true
	}

	return isLWSP(rest), false
}

// splitEOL separates the line break from the end of a line.
func splitEOL(line []byte) (content, eol []byte) {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
		if n > 0 && line[n-1] == '\r' {
			n--
		}
	}
	return line[:n], line[n:]
}
