package header

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/go-mimestream/header/field"
	"github.com/zostay/go-mimestream/header/grammar"
)

type parseOpts struct {
	strict bool
	warn   func(error)
}

// ParseOption adjusts how structured values are parsed.
type ParseOption func(*parseOpts)

// Strict turns every grammar problem into a failure. Without it, malformed
// parameters are skipped and address and date parsing falls back on lenient
// heuristics.
func Strict() ParseOption {
	return func(o *parseOpts) {
		o.strict = true
	}
}

// WithWarnings installs a function that receives the problems skipped over
// while parsing leniently.
func WithWarnings(warn func(error)) ParseOption {
	return func(o *parseOpts) {
		o.warn = warn
	}
}

func makeOpts(opts []ParseOption) *parseOpts {
	o := &parseOpts{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *parseOpts) warning(err error) {
	if o.warn != nil {
		o.warn(err)
	}
}

// KindOf returns the kind of structured value a field with the given name
// parses into. Names are compared without regard to case.
func KindOf(name string) Kind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "content-type":
		return KindContentType
	case "content-disposition":
		return KindContentDisposition
	case "from", "sender", "resent-from", "resent-sender":
		return KindMailboxList
	case "to", "cc", "bcc", "reply-to", "resent-to", "resent-cc", "resent-bcc":
		return KindAddressList
	case "date", "resent-date":
		return KindDateTime
	default:
		return KindUnstructured
	}
}

// ParseValue parses the field into the structured value selected by KindOf.
// It is pure and may be repeated. It always returns a Value: when the body
// cannot be parsed, the result is an *Unstructured holding the raw text and
// the error describes why, wrapping grammar.ErrGrammar.
func ParseValue(raw *field.Raw, opts ...ParseOption) (Value, error) {
	var (
		v   Value
		err error
	)

	switch KindOf(raw.Name()) {
	case KindContentType:
		v, err = ParseContentType(raw, opts...)
	case KindContentDisposition:
		v, err = ParseContentDisposition(raw, opts...)
	case KindMailboxList:
		v, err = ParseMailboxList(raw, opts...)
	case KindAddressList:
		v, err = ParseAddressList(raw, opts...)
	case KindDateTime:
		v, err = ParseDateTime(raw, opts...)
	default:
		return ParseUnstructured(raw, opts...), nil
	}

	if err != nil {
		return &Unstructured{raw: raw, Text: raw.Body()}, err
	}

	return v, nil
}

// ParseUnstructured decodes any RFC 2047 encoded words in the field body. A
// word that cannot be decoded leaves the body as it was, with a warning.
func ParseUnstructured(raw *field.Raw, opts ...ParseOption) *Unstructured {
	o := makeOpts(opts)

	text, err := field.Decode(raw.Body())
	if err != nil {
		o.warning(fmt.Errorf("unable to decode encoded words in %s: %w", raw.Name(), err))
		text = raw.Body()
	}

	return &Unstructured{raw: raw, Text: text}
}

// ParseContentType parses "type/subtype" followed by parameters. Comments may
// appear anywhere whitespace is permitted.
func ParseContentType(raw *field.Raw, opts ...ParseOption) (*ContentTypeValue, error) {
	o := makeOpts(opts)
	lex := grammar.NewLexer(raw.Body())

	typ, sub, err := parseMediaType(lex, o)
	if err != nil {
		return nil, err
	}

	ps, err := grammar.ParseParameters(lex, o.strict, o.warn)
	if err != nil {
		return nil, err
	}

	return &ContentTypeValue{
		raw:     raw,
		Type:    strings.ToLower(typ),
		Subtype: strings.ToLower(sub),
		Params:  ps,
	}, nil
}

func parseMediaType(lex *grammar.Lexer, o *parseOpts) (string, string, error) {
	if err := lex.SkipCFWS(); err != nil {
		return "", "", err
	}

	typ, err := lex.Token()
	if err != nil {
		return "", "", err
	}

	if err := lex.SkipCFWS(); err != nil {
		return "", "", err
	}

	if err := lex.Expect('/'); err != nil {
		return "", "", err
	}

	if err := lex.SkipCFWS(); err != nil {
		return "", "", err
	}

	sub, err := lex.Token()
	if err != nil {
		return "", "", err
	}

	return typ, sub, nil
}

// ParseContentDisposition parses a disposition type followed by parameters.
func ParseContentDisposition(raw *field.Raw, opts ...ParseOption) (*ContentDispositionValue, error) {
	o := makeOpts(opts)
	lex := grammar.NewLexer(raw.Body())

	if err := lex.SkipCFWS(); err != nil {
		return nil, err
	}

	disp, err := lex.Token()
	if err != nil {
		return nil, err
	}

	ps, err := grammar.ParseParameters(lex, o.strict, o.warn)
	if err != nil {
		return nil, err
	}

	return &ContentDispositionValue{
		raw:         raw,
		Disposition: strings.ToLower(disp),
		Params:      ps,
	}, nil
}

func syntaxError(body string, err error) *grammar.SyntaxError {
	return &grammar.SyntaxError{Input: body, Reason: err.Error()}
}

// parseAddresses runs the strict address parser from go-addr and, when that
// fails and the parse is lenient, the forgiving fallback.
func parseAddresses(body string, o *parseOpts) (addr.AddressList, error) {
	if strings.TrimSpace(body) == "" {
		return addr.AddressList{}, nil
	}

	al, err := addr.ParseEmailAddressList(body)
	if err == nil {
		return al, nil
	}

	if o.strict {
		return nil, syntaxError(body, err)
	}

	o.warning(syntaxError(body, err))
	return parseEmailAddressList(body), nil
}

// ParseAddressList parses a list of mailboxes and groups.
func ParseAddressList(raw *field.Raw, opts ...ParseOption) (*AddressList, error) {
	o := makeOpts(opts)
	al, err := parseAddresses(raw.Body(), o)
	if err != nil {
		return nil, err
	}

	return &AddressList{raw: raw, Addresses: al}, nil
}

// ParseMailboxList parses a list of mailboxes. Groups are not permitted in a
// mailbox list: strict parsing rejects them and lenient parsing drops them
// with a warning.
func ParseMailboxList(raw *field.Raw, opts ...ParseOption) (*MailboxList, error) {
	o := makeOpts(opts)
	al, err := parseAddresses(raw.Body(), o)
	if err != nil {
		return nil, err
	}

	mbs := make([]*addr.Mailbox, 0, len(al))
	for _, a := range al {
		switch v := a.(type) {
		case *addr.Mailbox:
			mbs = append(mbs, v)
		case *addr.AddrSpec:
			mb, _ := addr.NewMailboxParsed("", v, "", v.OriginalString())
			mbs = append(mbs, mb)
		default:
			gerr := syntaxError(raw.Body(), errors.New("group found in mailbox list"))
			if o.strict {
				return nil, gerr
			}
			o.warning(gerr)
		}
	}

	return &MailboxList{raw: raw, Mailboxes: mbs}, nil
}

// ParseDateTime parses an RFC 5322 date with comments removed. Lenient parsing
// falls back on ParseTime, which accepts a great many other formats.
func ParseDateTime(raw *field.Raw, opts ...ParseOption) (*DateTime, error) {
	o := makeOpts(opts)
	body := strings.TrimSpace(grammar.StripComments(raw.Body()))

	t, err := mail.ParseDate(body)
	if err != nil {
		if o.strict {
			return nil, syntaxError(body, err)
		}

		t, err = ParseTime(body)
		if err != nil {
			return nil, syntaxError(body, err)
		}
	}

	return &DateTime{raw: raw, Time: t}, nil
}

// ParseTime is a function that provides the time parsing used by GetDate()
// and the Content-disposition date parameters. This will attempt to parse the
// date using the format specified by RFC 5322 first and fallback to parsing it
// in many other formats.
//
// It either returns a parsed time or the parse error.
func ParseTime(body string) (time.Time, error) {
	t, err := mail.ParseDate(body)
	if err == nil {
		return t, nil
	}

	t, err = dateparse.ParseAny(body)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse(UnixDateWithEarlyYear, body)
	if err == nil {
		return t, nil
	}

	return t, fmt.Errorf("time string %q cannot be parsed", body)
}

// ParseTransferEncoding returns the lower-cased encoding name of a
// Content-transfer-encoding field with comments and whitespace removed.
func ParseTransferEncoding(raw *field.Raw) string {
	return strings.ToLower(strings.TrimSpace(grammar.StripComments(raw.Body())))
}

// Parse will parse the given slice of bytes into an email header using the
// given line break string. It will assume the entire string given represents
// the header to be parsed.
//
// Any junk lines found before the first field are dropped and reported with a
// *field.BadStartError, alongside the header parsed from the rest.
func Parse(m []byte, lb Break) (*Header, error) {
	lines, err := field.ParseLines(m, lb.Bytes())

	var badStartErr *field.BadStartError // recoverable
	var finalErr error
	if errors.As(err, &badStartErr) {
		finalErr = badStartErr
	} else if err != nil {
		return nil, err
	}

	h := &Header{lbr: lb, fields: make([]*field.Raw, 0, len(lines))}
	for _, line := range lines {
		h.Append(field.Parse(line))
	}

	return h, finalErr
}

// parseEmailAddressList is a fallback method for email address parsing. The
// parser in github.com/zostay/go-addr is a strict parser, which is useful for
// getting good accurate parsing of email addresses, especially for validating
// data entry. However, when working with the mess that is the Internet, you
// want to get something useful (strict out/liberal in), even if its technically
// wrong, well, this method can be used to clean up the mess.
//
// It works as follows:
//
// 1. Split the string up by commas.
// 2. Each string resulting from the split is trimmed of whitespace.
// 3. The comments are stripped from each string and held.
// 4. All the words at the start are treated as the display name.
// 5. The last word at the end is treated as the email address.
//
// We stuff whatever we get into an addr.Mailbox and call it good. Groups are
// never recognized here.
func parseEmailAddressList(v string) addr.AddressList {
	mbs := strings.Split(v, ",")
	as := make(addr.AddressList, 0, len(mbs))
	for _, orig := range mbs {
		com := extractComments(orig)
		mb := strings.TrimSpace(grammar.StripComments(orig))

		parts := strings.Fields(mb)

		var dn, email string
		switch {
		case len(parts) == 0:
			continue
		case len(parts) > 1:
			dn = strings.Trim(strings.Join(parts[:len(parts)-1], " "), `"`)
			email = parts[len(parts)-1]
		default:
			email = parts[0]
		}

		email = strings.TrimSuffix(strings.TrimPrefix(email, "<"), ">")

		var addrSpec *addr.AddrSpec
		if i := strings.LastIndex(email, "@"); i > -1 {
			addrSpec = addr.NewAddrSpecParsed(email[:i], email[i+1:], email)
		} else {
			addrSpec = addr.NewAddrSpecParsed(email, "", email)
		}

		mailbox, err := addr.NewMailboxParsed(dn, addrSpec, com, orig)
		if err != nil {
			mailbox, _ = addr.NewMailboxParsed(dn, addrSpec, "", orig)
		}

		as = append(as, mailbox)
	}

	return as
}

// extractComments returns the text of every top-level comment in s, joined
// by spaces.
func extractComments(s string) string {
	var coms []string
	lex := grammar.NewLexer(s)
	for !lex.EOF() {
		if c, _ := lex.Peek(); c == '(' {
			com, _ := lex.Comment()
			coms = append(coms, strings.TrimSpace(com))
			continue
		}
		if c, _ := lex.Peek(); c == '"' {
			_, _ = lex.QuotedString()
			continue
		}
		lex.Skip()
	}
	return strings.Join(coms, " ")
}
