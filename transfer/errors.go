package transfer

import (
	"errors"
	"fmt"
)

// ErrDecode is wrapped by every DecodeError.
var ErrDecode = errors.New("transfer decoding error")

// DecodeError reports malformed encoded data. In strict mode it is returned
// from Write or Close. Otherwise it is only passed to the warning function
// and decoding continues.
type DecodeError struct {
	Encoding string // the transfer encoding being decoded
	Offset   int64  // offset of the offending byte in the encoded input
	Reason   string // what went wrong
}

// Error returns the error message.
func (err *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s at offset %d", err.Encoding, err.Reason, err.Offset)
}

// Unwrap returns ErrDecode.
func (err *DecodeError) Unwrap() error {
	return ErrDecode
}
