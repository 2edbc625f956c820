// Package stream is a push parser for MIME entities. It reads a message once,
// front to back, and reports its structure to a Handler: entity boundaries,
// header fields, and the decoded bytes of each simple body, which are also
// spooled to a storage.Provider so the handler receives a re-readable
// storage.Handle at the end of every body.
//
// Nested multiparts are tracked on an explicit stack of entity frames, so
// deeply nested input cannot exhaust the goroutine stack. MaxDepth bounds it
// all the same.
//
// The parser is lenient by default. Problems such as malformed header lines,
// missing close delimiters and bad transfer encoding are worked around and
// reported as *Warning values. With the Strict option the same problems fail
// the parse.
package stream
