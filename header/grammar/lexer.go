package grammar

import (
	"strings"

	"github.com/zostay/go-mimestream/header/param"
)

// Lexer reads the tokens of a structured header field body: RFC 2045 tokens,
// quoted strings, comments and the special characters between them. The
// input is expected to be unfolded already.
type Lexer struct {
	s   string
	pos int
}

// NewLexer returns a lexer positioned at the start of s.
func NewLexer(s string) *Lexer {
	return &Lexer{s: s}
}

func (l *Lexer) errorf(reason string) *SyntaxError {
	return &SyntaxError{Input: l.s, Offset: l.pos, Reason: reason}
}

// Pos returns the current byte offset.
func (l *Lexer) Pos() int { return l.pos }

// EOF returns true once all input has been consumed.
func (l *Lexer) EOF() bool { return l.pos >= len(l.s) }

// Rest returns the unconsumed input.
func (l *Lexer) Rest() string { return l.s[l.pos:] }

// Peek returns the next byte without consuming it. It returns false at the
// end of input.
func (l *Lexer) Peek() (byte, bool) {
	if l.EOF() {
		return 0, false
	}
	return l.s[l.pos], true
}

// SkipCFWS discards whitespace and comments. Comments nest and may contain
// quoted-pairs. An unterminated comment consumes the rest of the input and is
// reported as a SyntaxError.
func (l *Lexer) SkipCFWS() error {
	for !l.EOF() {
		switch l.s[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		case '(':
			if _, err := l.Comment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

// Comment reads a comment starting at the current position, which must be an
// open parenthesis. It returns the comment text without the outermost
// parentheses.
func (l *Lexer) Comment() (string, error) {
	if err := l.Expect('('); err != nil {
		return "", err
	}

	start := l.pos
	var sb strings.Builder
	depth := 1
	for !l.EOF() {
		c := l.s[l.pos]
		l.pos++
		switch c {
		case '\\':
			if !l.EOF() {
				sb.WriteByte(l.s[l.pos])
				l.pos++
			}
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), nil
			}
		}
		sb.WriteByte(c)
	}

	err := l.errorf("unterminated comment")
	err.Offset = start - 1
	return sb.String(), err
}

// Token reads an RFC 2045 token: a run of printable characters other than
// space and the tspecials. Bytes outside of ASCII are accepted as token
// characters.
func (l *Lexer) Token() (string, error) {
	start := l.pos
	for !l.EOF() {
		c := l.s[l.pos]
		if !param.IsTokenChar(c) && c < 0x80 {
			break
		}
		l.pos++
	}

	if l.pos == start {
		if l.EOF() {
			return "", l.errorf("expected token, found end of input")
		}
		return "", l.errorf("expected token, found " + quoteByte(l.s[l.pos]))
	}

	return l.s[start:l.pos], nil
}

// QuotedString reads a quoted string starting at the current position, which
// must be a double quote. Backslash escapes are resolved. A string that is
// never closed is a SyntaxError.
func (l *Lexer) QuotedString() (string, error) {
	start := l.pos
	if err := l.Expect('"'); err != nil {
		return "", err
	}

	var sb strings.Builder
	for !l.EOF() {
		c := l.s[l.pos]
		l.pos++
		switch c {
		case '\\':
			if !l.EOF() {
				sb.WriteByte(l.s[l.pos])
				l.pos++
			}
		case '"':
			return sb.String(), nil
		default:
			sb.WriteByte(c)
		}
	}

	err := l.errorf("unterminated quoted string")
	err.Offset = start
	return sb.String(), err
}

// Word reads either a quoted string or a token.
func (l *Lexer) Word() (string, error) {
	if c, ok := l.Peek(); ok && c == '"' {
		return l.QuotedString()
	}
	return l.Token()
}

// Expect consumes the byte c or returns a SyntaxError if the next byte is
// something else.
func (l *Lexer) Expect(c byte) error {
	if l.EOF() {
		return l.errorf("expected " + quoteByte(c) + ", found end of input")
	}

	if l.s[l.pos] != c {
		return l.errorf("expected " + quoteByte(c) + ", found " + quoteByte(l.s[l.pos]))
	}

	l.pos++
	return nil
}

// Skip consumes a single byte.
func (l *Lexer) Skip() {
	if !l.EOF() {
		l.pos++
	}
}

// SkipPast consumes input up to and including the next c found outside of a
// quoted string or comment. It returns false if no such byte remains, in
// which case all input is consumed.
func (l *Lexer) SkipPast(c byte) bool {
	for !l.EOF() {
		switch l.s[l.pos] {
		case c:
			l.pos++
			return true
		case '"':
			_, _ = l.QuotedString()
		case '(':
			_, _ = l.Comment()
		default:
			l.pos++
		}
	}
	return false
}

// Until returns the input up to, but not including, the next c (or the end of
// input), trimmed of whitespace.
func (l *Lexer) Until(c byte) string {
	start := l.pos
	if ix := strings.IndexByte(l.s[l.pos:], c); ix >= 0 {
		l.pos += ix
	} else {
		l.pos = len(l.s)
	}
	return strings.TrimSpace(l.s[start:l.pos])
}

func quoteByte(c byte) string {
	return "'" + string([]byte{c}) + "'"
}

// StripComments returns s with every comment removed. Comments inside quoted
// strings are left alone and quoted strings are otherwise unchanged.
func StripComments(s string) string {
	if !strings.ContainsRune(s, '(') {
		return s
	}

	l := NewLexer(s)
	var sb strings.Builder
	for !l.EOF() {
		switch l.s[l.pos] {
		case '(':
			_, _ = l.Comment()
		case '"':
			start := l.pos
			_, _ = l.QuotedString()
			sb.WriteString(l.s[start:l.pos])
		default:
			sb.WriteByte(l.s[l.pos])
			l.pos++
		}
	}

	return sb.String()
}
