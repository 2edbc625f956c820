// Package mimestream is a streaming parser for MIME messages (RFC 822, 2045,
// 2046 and 5322). The parser reads a message in a single forward pass and
// reports what it finds to a handler as events: the start of each entity, its
// header fields, the pieces of its body, the preamble and epilogue of each
// multipart and the end of each entity.
//
// The code is split according to part of the message.
//
// The stream package holds the parser itself and its Handler interface. It
// never holds more than a line and a chunk of body in memory. Decoded bodies
// are written to a storage.Provider as they arrive, so a handler may keep
// them or let them go.
//
// The entity package builds a tree of entities from the events for callers
// who want the whole message at once. Trees can be walked, copied and written
// back out. A message that was parsed and not modified is written out byte
// for byte as it was read.
//
// The header package parses header fields, unfolds them and interprets the
// fields MIME gives meaning to: Content-type, Content-transfer-encoding and
// Content-disposition. The transfer package decodes and encodes bodies in the
// transfer encodings.
//
// The storage package holds the bodies. It keeps small bodies in memory and
// spools large ones to temporary files or to a bolt database.
//
// The mimeparse command in cmd/mimeparse puts it all to use on the command
// line.
package mimestream
