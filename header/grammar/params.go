package grammar

import (
	"strconv"
	"strings"

	"github.com/zostay/go-mimestream/header/field"
	"github.com/zostay/go-mimestream/header/param"
)

// segment is one piece of an RFC 2231 parameter value.
type segment struct {
	value    string
	extended bool
}

// pendingParam accumulates a parameter while the list is being read, since
// RFC 2231 continuations may arrive in any order.
type pendingParam struct {
	plain    string
	hasPlain bool
	segments map[int]segment
}

// ParseParameters reads a list of "; name = value" parameters from the lexer
// until the end of input. Names are lower-cased. Values are tokens or quoted
// strings. When a name repeats, the first value wins. RFC 2231 continuations
// (name*0, name*1, ...) and extended values (name*=charset'lang'%xx) are
// merged and decoded.
//
// In strict mode, the first malformed parameter fails the whole list. When
// not strict, malformed parameters are skipped up to the next semicolon and
// each problem is passed to warn, which may be nil.
func ParseParameters(lex *Lexer, strict bool, warn func(error)) (*param.List, error) {
	var (
		order  []string
		byName = map[string]*pendingParam{}
	)

	fail := func(err error) error {
		if strict {
			return err
		}
		if warn != nil {
			warn(err)
		}
		return nil
	}

	for {
		if err := lex.SkipCFWS(); err != nil {
			if ferr := fail(err); ferr != nil {
				return nil, ferr
			}
		}

		if lex.EOF() {
			break
		}

		if err := lex.Expect(';'); err != nil {
			if ferr := fail(err); ferr != nil {
				return nil, ferr
			}
			if !lex.SkipPast(';') {
				break
			}
		}

		if err := lex.SkipCFWS(); err != nil {
			if ferr := fail(err); ferr != nil {
				return nil, ferr
			}
		}

		if c, ok := lex.Peek(); !ok || c == ';' {
			continue
		}

		name, value, err := parseParameter(lex, strict)
		if err != nil {
			if ferr := fail(err); ferr != nil {
				return nil, ferr
			}
			if lex.SkipPast(';') {
				lex.pos--
			}
			continue
		}

		base, n, extended := splitSectionName(name)
		pp, exists := byName[base]
		if !exists {
			pp = &pendingParam{segments: map[int]segment{}}
			byName[base] = pp
			order = append(order, base)
		}

		switch {
		case n < 0 && !extended:
			if !exists {
				pp.plain = value
				pp.hasPlain = true
			}
		case pp.hasPlain:
			// a plain value already arrived for this name, first wins
		default:
			if n < 0 {
				n = 0
			}
			if _, dup := pp.segments[n]; !dup {
				pp.segments[n] = segment{value: value, extended: extended}
			}
		}
	}

	ps := param.NewList()
	for _, name := range order {
		pp := byName[name]
		if pp.hasPlain {
			ps.Add(name, pp.plain)
			continue
		}

		ps.Add(name, mergeSegments(pp.segments))
	}

	return ps, nil
}

// parseParameter reads "name = value" at the current position.
func parseParameter(lex *Lexer, strict bool) (string, string, error) {
	name, err := lex.Token()
	if err != nil {
		return "", "", err
	}

	if err := lex.SkipCFWS(); err != nil && strict {
		return "", "", err
	}

	if err := lex.Expect('='); err != nil {
		return "", "", err
	}

	if err := lex.SkipCFWS(); err != nil && strict {
		return "", "", err
	}

	start := lex.pos
	value, err := lex.Word()
	if err == nil && !strict && lex.s[start] != '"' {
		if c, ok := lex.Peek(); ok && strings.IndexByte(" \t\r\n;(", c) < 0 {
			err = lex.errorf("unexpected " + quoteByte(c) + " in parameter value")
		}
	}

	if err != nil {
		if strict {
			return "", "", err
		}

		// Unquoted values containing tspecials are common enough in the wild
		// to take whatever runs up to the next semicolon.
		lex.pos = start
		value = lex.Until(';')
		if value == "" {
			return "", "", err
		}
	}

	return strings.ToLower(name), value, nil
}

// splitSectionName breaks an RFC 2231 parameter name into its base name, its
// section number (-1 when absent) and whether the value is extended.
func splitSectionName(name string) (string, int, bool) {
	ix := strings.IndexByte(name, '*')
	if ix < 0 {
		return name, -1, false
	}

	base, rest := name[:ix], name[ix+1:]
	if rest == "" {
		return base, -1, true
	}

	extended := strings.HasSuffix(rest, "*")
	rest = strings.TrimSuffix(rest, "*")
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return name, -1, false
	}

	return base, n, extended
}

// mergeSegments joins contiguous sections starting at zero, decoding
// extended sections and the charset named by the first one.
func mergeSegments(segs map[int]segment) string {
	var (
		buf     []byte
		charset string
	)

	for n := 0; ; n++ {
		seg, ok := segs[n]
		if !ok {
			break
		}

		if !seg.extended {
			buf = append(buf, seg.value...)
			continue
		}

		v := seg.value
		if n == 0 {
			if parts := strings.SplitN(v, "'", 3); len(parts) == 3 {
				charset = parts[0]
				v = parts[2]
			}
		}
		buf = append(buf, percentDecode(v)...)
	}

	if charset == "" {
		return string(buf)
	}

	s, err := field.CharsetDecoder(charset, buf)
	if err != nil {
		return string(buf)
	}
	return s
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// percentDecode decodes %xx escapes. Malformed escapes are kept literally.
func percentDecode(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if ok1 && ok2 {
				out = append(out, hi<<4|lo)
				i += 2
				continue
			}
		}
		out = append(out, s[i])
	}
	return out
}
