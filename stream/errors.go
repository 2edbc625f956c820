package stream

import (
	"errors"
	"fmt"
)

var (
	// ErrSkipBody may be returned by Handler.StartBody to skip the body of
	// the current entity. The body is neither decoded nor stored and a
	// multipart body is skipped whole.
	ErrSkipBody = errors.New("skip body")

	// ErrStop may be returned from any Handler method to end the parse early
	// without error.
	ErrStop = errors.New("stop parsing")

	// ErrMalformedStructure is matched by every *StructureError.
	ErrMalformedStructure = errors.New("malformed MIME structure")
)

// These describe the problems reported through Warning and StructureError.
var (
	// ErrImplicitClose means a delimiter of an outer multipart closed inner
	// entities that were still open.
	ErrImplicitClose = errors.New("entity closed implicitly by an outer boundary")

	// ErrMissingCloseDelimiter means the input ended inside a multipart.
	ErrMissingCloseDelimiter = errors.New("missing multipart close delimiter")

	// ErrNoBoundary means a multipart content type has no boundary
	// parameter. The body is treated as a simple body.
	ErrNoBoundary = errors.New("multipart without boundary")

	// ErrDuplicateBoundary means a nested multipart reuses the boundary of an
	// enclosing one.
	ErrDuplicateBoundary = errors.New("multipart reuses an enclosing boundary")

	// ErrHeaderLineTooLong means a physical header line exceeded the
	// configured maximum.
	ErrHeaderLineTooLong = errors.New("header line too long")

	// ErrTooManyHeaders means a header had more fields than the configured
	// maximum.
	ErrTooManyHeaders = errors.New("too many header fields")

	// ErrBadHeaderLine means a header line was neither a field nor a
	// continuation of one.
	ErrBadHeaderLine = errors.New("invalid header line")

	// ErrMaxDepth means entities nest deeper than the configured maximum.
	ErrMaxDepth = errors.New("maximum entity depth exceeded")

	// ErrBadFieldValue means a field the parser relies on could not be
	// parsed. The default is used instead.
	ErrBadFieldValue = errors.New("invalid field value")

	// ErrUnknownTransferEncoding means the body has a
	// Content-transfer-encoding the parser does not know. The body is
	// delivered as-is.
	ErrUnknownTransferEncoding = errors.New("unknown transfer encoding")
)

// StructureError is returned when the input violates the MIME structure in a
// way the parser will not work around.
type StructureError struct {
	Line  int   // line number of the input, starting at 1
	Depth int   // depth of the entity being parsed
	Err   error // the problem, one of the sentinels above or a wrapped error
}

func (err *StructureError) Error() string {
	return fmt.Sprintf("line %d (depth %d): %v", err.Line, err.Depth, err.Err)
}

func (err *StructureError) Unwrap() error {
	return err.Err
}

// Is matches ErrMalformedStructure.
func (err *StructureError) Is(target error) bool {
	return target == ErrMalformedStructure
}

// IOError wraps an error returned by the input reader.
type IOError struct {
	Err error
}

func (err *IOError) Error() string {
	return "read error: " + err.Err.Error()
}

func (err *IOError) Unwrap() error {
	return err.Err
}

// Warning describes a problem a lenient parse worked around.
type Warning struct {
	Line  int
	Depth int
	Err   error
}

func (w *Warning) Error() string {
	return fmt.Sprintf("line %d (depth %d): %v", w.Line, w.Depth, w.Err)
}

func (w *Warning) Unwrap() error {
	return w.Err
}
