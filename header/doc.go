// Package header interprets header fields. Each field is kept as a
// field.Raw exactly as it was read, and the fields this module gives meaning
// to can be parsed into one of a closed set of structured values:
// ContentTypeValue, ContentDispositionValue, MailboxList, AddressList, DateTime and
// Unstructured.
//
// Parsing a structured value never fails outright. When a field body does not
// follow its grammar, ParseValue returns an Unstructured value carrying the
// raw text together with the error describing what went wrong.
//
// The Header type collects the fields of an entity and caches the structured
// values parsed from them.
package header
