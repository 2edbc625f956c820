// Package storage holds decoded bodies. A Provider opens a Sink, the parser
// writes the body into it and Finish turns it into a Handle that can be read
// any number of times, copied and finally released.
//
// Providers are safe for concurrent use. A Sink has a single writer.
package storage

import (
	"errors"
	"fmt"
	"io"
)

// Errors returned by storage providers and handles.
var (
	// ErrStorage is matched by every *Error, so errors.Is(err, ErrStorage)
	// identifies a failure of the backing store.
	ErrStorage = errors.New("storage error")

	// ErrCopyUnsupported is returned by Handle.Copy when the backing store
	// cannot be duplicated, such as a one-shot stream.
	ErrCopyUnsupported = errors.New("storage handle cannot be copied")

	// ErrReleased is wrapped in the *Error returned when a released handle is
	// opened or copied.
	ErrReleased = errors.New("storage handle already released")
)

// Error describes a failure of the backing store.
type Error struct {
	Op  string // the operation that failed, e.g., "open", "write"
	Err error  // the underlying error
}

// Error returns the error message.
func (err *Error) Error() string {
	return fmt.Sprintf("storage %s: %v", err.Op, err.Err)
}

// Unwrap returns the underlying error.
func (err *Error) Unwrap() error {
	return err.Err
}

// Is reports true for ErrStorage.
func (err *Error) Is(target error) bool {
	return target == ErrStorage
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var serr *Error
	if errors.As(err, &serr) {
		return err
	}
	return &Error{Op: op, Err: err}
}

// Provider creates sinks for new bodies.
type Provider interface {
	// Open starts a new body. The sizeHint is the expected size in bytes, or
	// -1 if it is not known.
	Open(sizeHint int64) (Sink, error)
}

// Sink receives the bytes of one body.
type Sink interface {
	io.Writer

	// Finish completes the body and returns the handle to it. The sink may
	// not be used afterward.
	Finish() (Handle, error)

	// Abort discards the body and any resources held for it. It is safe to
	// call after Finish, in which case it does nothing.
	Abort() error
}

// Handle refers to a stored body.
type Handle interface {
	// Open returns a new reader from the start of the body. It may be called
	// any number of times unless the handle says otherwise.
	Open() (io.ReadCloser, error)

	// Size returns the number of bytes stored.
	Size() int64

	// Copy duplicates the body into an independent handle. Releasing one
	// handle never affects the other. Handles that cannot be copied return
	// ErrCopyUnsupported.
	Copy() (Handle, error)

	// Release frees the backing resource. Calling it more than once does
	// nothing.
	Release() error
}

// ReadAll opens the handle and reads the whole body.
func ReadAll(h Handle) ([]byte, error) {
	r, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapErr("read", err)
	}
	return b, nil
}
