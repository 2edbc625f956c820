// Package grammar holds the low-level tokenizer for structured header field
// bodies: comments, quoted strings, RFC 2045 tokens and the parameter lists
// of parameterized fields, including RFC 2231 continuations.
package grammar
