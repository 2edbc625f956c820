// Package transfer contains the decoders and encoders for the
// Content-transfer-encoding of a body. Only quoted-printable and base64
// change the bytes. The 7bit, 8bit and binary encodings, and any encoding
// this package does not know, leave the bytes as-is.
//
// Decoders are push-style: each is an io.WriteCloser wrapping the writer that
// receives the decoded bytes. Encoded data may be written in chunks of any
// size, split anywhere, and the decoded output is the same as if it had been
// written all at once. Close flushes whatever state remains at the end.
//
// For the sake of this module, the term "decoded" means that the content has
// been transformed from the named Content-transfer-encoding to the charset
// encoded form. Meanwhile, "encoded" means that the content has been
// transformed from the charset encoding to the named Content-transfer-encoding.
package transfer
