package param

import (
	"strings"
)

const (
	// Charset is the name of the charset parameter that may be present in the
	// Content-type header.
	Charset = "charset"

	// Boundary is the name of the boundary parameter that may be present in
	// the Content-type header.
	Boundary = "boundary"

	// Name is the name of the obsolete name parameter of Content-type, which
	// some mailers still use in place of the filename.
	Name = "name"

	// Filename is the name of the filename parameter that may be present in
	// the Content-disposition header.
	Filename = "filename"

	// Size is the name of the size parameter of Content-disposition.
	Size = "size"

	// CreationDate is the name of the creation-date parameter of
	// Content-disposition.
	CreationDate = "creation-date"

	// ModificationDate is the name of the modification-date parameter of
	// Content-disposition.
	ModificationDate = "modification-date"

	// ReadDate is the name of the read-date parameter of Content-disposition.
	ReadDate = "read-date"
)

// List is an ordered set of parameters. Names are case-insensitive and stored
// lower-cased. Each name appears at most once: the first value added wins.
type List struct {
	names  []string
	values map[string]string
}

// NewList returns an empty parameter list.
func NewList() *List {
	return &List{values: map[string]string{}}
}

// Add appends a parameter to the list. If a parameter with the same name is
// already present, the list is left unchanged and false is returned.
func (l *List) Add(name, value string) bool {
	n := strings.ToLower(name)
	if _, exists := l.values[n]; exists {
		return false
	}

	if l.values == nil {
		l.values = map[string]string{}
	}

	l.names = append(l.names, n)
	l.values[n] = value
	return true
}

// Get returns the value of the named parameter and whether it was found.
func (l *List) Get(name string) (string, bool) {
	if l == nil {
		return "", false
	}
	v, ok := l.values[strings.ToLower(name)]
	return v, ok
}

// Value returns the value of the named parameter or an empty string.
func (l *List) Value(name string) string {
	v, _ := l.Get(name)
	return v
}

// Names returns the parameter names in the order they were added.
func (l *List) Names() []string {
	if l == nil {
		return nil
	}
	ns := make([]string, len(l.names))
	copy(ns, l.names)
	return ns
}

// Len returns the number of parameters.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// Clone returns a deep copy of the list.
func (l *List) Clone() *List {
	c := NewList()
	if l == nil {
		return c
	}
	for _, n := range l.names {
		c.Add(n, l.values[n])
	}
	return c
}

// String renders the list as it would follow a primary value, each parameter
// preceded by "; ". Values are quoted when they are not valid tokens.
func (l *List) String() string {
	var sb strings.Builder
	for _, n := range l.Names() {
		sb.WriteString("; ")
		sb.WriteString(n)
		sb.WriteByte('=')
		sb.WriteString(Quote(l.values[n]))
	}
	return sb.String()
}

func isTSpecial(c byte) bool {
	return strings.IndexByte(`()<>@,;:\"/[]?=`, c) >= 0
}

// IsTokenChar returns true if c may appear in a MIME token.
func IsTokenChar(c byte) bool {
	return c > ' ' && c < 0x7f && !isTSpecial(c)
}

// Quote returns v unchanged when it is a valid token. Otherwise it returns v
// as a quoted string with backslash escapes.
func Quote(v string) string {
	token := len(v) > 0
	for i := 0; i < len(v); i++ {
		if !IsTokenChar(v[i]) {
			token = false
			break
		}
	}

	if token {
		return v
	}

	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(v); i++ {
		if v[i] == '"' || v[i] == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(v[i])
	}
	sb.WriteByte('"')
	return sb.String()
}
