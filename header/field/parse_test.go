package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mimestream/header/field"
)

func TestParseLines(t *testing.T) {
	t.Parallel()

	// basic parse, no folding
	input := []byte("a:\nb:\nc:\nd:\n")
	lb := []byte("\n")
	lines, err := field.ParseLines(input, lb)
	assert.NoError(t, err)
	assert.Equal(t, field.Lines{
		[]byte("a:\n"),
		[]byte("b:\n"),
		[]byte("c:\n"),
		[]byte("d:\n"),
	}, lines)

	// folding parse
	input = []byte("a:b\n b\n b\nb:\nc:\nd:\n\teeee\n")
	lines, err = field.ParseLines(input, lb)
	assert.NoError(t, err)
	assert.Equal(t, field.Lines{
		[]byte("a:b\n b\n b\n"),
		[]byte("b:\n"),
		[]byte("c:\n"),
		[]byte("d:\n\teeee\n"),
	}, lines)

	// folding parse, with start junk
	input = []byte(" start:\njunk\na:b\n b\n b\nb:\nc:\nd:\n\teeee\n")
	lines, err = field.ParseLines(input, lb)
	var badStart *field.BadStartError
	require.ErrorAs(t, err, &badStart)
	assert.Equal(t, []byte(" start:\njunk\n"), badStart.BadStart)
	assert.Equal(t, field.Lines{
		[]byte("a:b\n b\n b\n"),
		[]byte("b:\n"),
		[]byte("c:\n"),
		[]byte("d:\n\teeee\n"),
	}, lines)
}

func TestParse(t *testing.T) {
	t.Parallel()

	f := field.Parse([]byte("Subject: test\n"))
	require.NotNil(t, f)
	assert.Equal(t, "Subject", f.Name())
	assert.Equal(t, "test", f.Body())
	assert.Equal(t, []byte(" test"), f.RawBody())
	assert.Equal(t, "Subject: test", f.String())

	f = field.Parse([]byte("Subject: =?utf-8?b?4pmg4pmj4pml4pmm?=\r\n"))
	require.NotNil(t, f)
	assert.Equal(t, "Subject", f.Name())
	assert.Equal(t, "=?utf-8?b?4pmg4pmj4pml4pmm?=", f.Body())
	assert.Equal(t, "Subject: =?utf-8?b?4pmg4pmj4pml4pmm?=", f.String())

	f = field.Parse([]byte("Subject"))
	require.NotNil(t, f)
	assert.Equal(t, "Subject", f.Name())
	assert.Equal(t, "", f.Body())
	assert.Nil(t, f.RawBody())
	assert.Equal(t, "Subject", f.String())

	f = field.Parse([]byte("To: a@example.com,\r\n\t b@example.com\r\n"))
	assert.Equal(t, "To", f.Name())
	assert.Equal(t, "a@example.com, b@example.com", f.Body())
	assert.Equal(t, []byte("To: a@example.com,\r\n\t b@example.com"), f.Bytes())
}

func TestNew(t *testing.T) {
	t.Parallel()

	f := field.New("X-Test", "value")
	assert.Equal(t, "X-Test", f.Name())
	assert.Equal(t, "value", f.Body())
	assert.Equal(t, "X-Test: value", f.String())
}

func TestValidName(t *testing.T) {
	t.Parallel()

	assert.True(t, field.ValidName([]byte("Subject: x")))
	assert.True(t, field.ValidName([]byte("Subject : x")))
	assert.False(t, field.ValidName([]byte(": x")))
	assert.False(t, field.ValidName([]byte("no colon")))
	assert.False(t, field.ValidName([]byte("bad name: x")))
}

func TestUnfold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, out string
	}{
		{"a", "a"},
		{"a\r\n b", "a b"},
		{"a\n\t\t b", "a b"},
		{"a,\r\n \r\n c", "a, c"},
		{"a,\r\n\t\r\n \t\r\n  c", "a, c"},
		{"a,\n \n", "a, "},
		{"a\r\nb", "ab"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.out, string(field.Unfold([]byte(tc.in))), tc.in)
	}
}
