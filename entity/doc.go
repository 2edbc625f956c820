// Package entity builds a tree of MIME entities from the events of the stream
// parser. Each Entity has a header and either a single body, kept in
// storage, or a multipart body with its parts. Trees can be walked, written
// back out, copied without sharing storage, and released.
package entity
