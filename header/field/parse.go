package field

import (
	"bytes"
)

// BadStartError is returned when the header begins with junk text that does not
// appear to be a header. This text is preserved in the error object.
type BadStartError struct {
	BadStart []byte // the text skipped at the start of header
}

// Error returns the error message.
func (err *BadStartError) Error() string {
	return "header starts with text that does not appear to be a header"
}

// Line represents the unparsed content for a complete header field line,
// including any folded continuation lines.
type Line []byte

// Lines represents the unparsed content for zero or more header field
// lines.
type Lines []Line

// ParseLines splits the given input into lines according to the rules we use to
// determine how to break header fields up inside a header. The input bytes are
// expected to include only the header. It will parse the whole input as if all
// of it belongs to the header. It returns the input as Lines, which are
// [][]byte, ready to feed into Parse.
//
// This method does not follow RFC 5322 precisely. It will accept input that
// would be rejected by the RFC as part of the effort this library
// makes in attempting to be liberal in what it accepts.
//
// If the first line (or lines) of input start with spaces or contain no colons,
// these lines will be skipped in the Lines returned. However, a BadStartError
// will be returned.
//
// From then on, this will start a new field on any line that does not start
// with a space and contains a colon. Any line starting with a space or tab
// continues the previous field. A line without a colon that does not start
// with a space is also treated as a continuation.
func ParseLines(m, lb []byte) (Lines, error) {
	h := make(Lines, 0, len(m)/80)
	var err *BadStartError
	for _, line := range bytes.SplitAfter(m, lb) {
		if len(line) == 0 {
			break
		}
		if IsContinuation(line) || !bytes.Contains(line, []byte(":")) {
			// Start with a continuation? Weird, uh...
			if len(h) == 0 {
				if err != nil {
					err.BadStart = append(err.BadStart, line...)
				} else {
					err = &BadStartError{line}
				}
				continue
			}

			h[len(h)-1] = append(h[len(h)-1], line...)
		} else {
			h = append(h, line)
		}
	}

	if err != nil {
		return h, err
	}
	return h, nil
}

// IsContinuation returns true if the given physical line begins with a space
// or tab, which marks it as a folded continuation of the previous field.
func IsContinuation(line []byte) bool {
	return len(line) > 0 && (line[0] == ' ' || line[0] == '\t')
}

// ValidName returns true if the bytes preceding the first colon of the line
// make an acceptable field name: at least one printable, non-space character.
// Whitespace between the name and the colon is tolerated, as the obsolete
// syntax of RFC 5322 permits.
func ValidName(line []byte) bool {
	ix := bytes.IndexByte(line, ':')
	if ix <= 0 {
		return false
	}

	name := bytes.TrimRight(line[:ix], " \t")
	if len(name) == 0 {
		return false
	}

	for _, c := range name {
		if c <= ' ' || c >= 0x7f {
			return false
		}
	}
	return true
}

// Parse will take a single header field line, including any folded
// continuation lines, and construct a Raw header field from it. Any trailing
// line break is dropped.
func Parse(f Line) *Raw {
	rawField := bytes.TrimRight(f, "\r\n")

	ix := bytes.IndexByte(rawField, ':')
	if ix < 0 {
		ix = len(rawField)
	}

	cp := make([]byte, len(rawField))
	copy(cp, rawField)

	return newRaw(cp, ix)
}
