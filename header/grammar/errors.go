package grammar

import (
	"errors"
	"fmt"
)

// ErrGrammar is wrapped by every SyntaxError. Grammar errors are never fatal
// to a parse: the field falls back to an unstructured value.
var ErrGrammar = errors.New("header grammar error")

// SyntaxError describes the location and nature of a failure to tokenize or
// parse a structured header field body.
type SyntaxError struct {
	Input  string // the text being parsed
	Offset int    // byte offset of the failure in Input
	Reason string // what went wrong
}

// Error returns the error message.
func (err *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d of %q", err.Reason, err.Offset, err.Input)
}

// Unwrap returns ErrGrammar.
func (err *SyntaxError) Unwrap() error {
	return ErrGrammar
}
