package entity_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mimestream/entity"
	"github.com/zostay/go-mimestream/header"
	"github.com/zostay/go-mimestream/header/field"
	"github.com/zostay/go-mimestream/storage"
	"github.com/zostay/go-mimestream/stream"
)

const msg = "Subject: test\r\n" +
	"Content-Type: multipart/mixed; boundary=XYZ\r\n" +
	"\r\n" +
	"preamble\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"one\r\n" +
	"--XYZ\r\n" +
	"Content-Type: multipart/alternative; boundary=inner\r\n" +
	"\r\n" +
	"--inner\r\n" +
	"\r\n" +
	"plain\r\n" +
	"--inner\r\n" +
	"Content-Type: text/html\r\n" +
	"\r\n" +
	"<p>html</p>\r\n" +
	"--inner--\r\n" +
	"--XYZ\r\n" +
	"\r\n" +
	"two\r\n" +
	"--XYZ--\r\n" +
	"epilogue\r\n"

func read(t *testing.T, e *entity.Entity) string {
	t.Helper()

	sb, isSingle := e.Body.(*entity.SingleBody)
	require.True(t, isSingle)
	data, err := storage.ReadAll(sb.Handle)
	require.NoError(t, err)
	return string(data)
}

func TestParse(t *testing.T) {
	t.Parallel()

	e, err := entity.Parse(strings.NewReader(msg))
	require.NoError(t, err)
	defer func() { assert.NoError(t, e.Release()) }()

	subject, err := e.Header.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "test", subject)

	require.True(t, e.IsMultipart())
	mp := e.Body.(*entity.Multipart)
	assert.Equal(t, "XYZ", mp.Boundary)
	assert.Equal(t, "preamble", string(mp.Preamble))
	assert.Equal(t, "epilogue\r\n", string(mp.Epilogue))

	parts, err := e.GetParts()
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, "one", read(t, parts[0]))
	assert.Equal(t, "two", read(t, parts[2]))

	inner, err := parts[1].GetParts()
	require.NoError(t, err)
	require.Len(t, inner, 2)
	assert.Equal(t, "plain", read(t, inner[0]))
	assert.Equal(t, "<p>html</p>", read(t, inner[1]))

	assert.Equal(t, "text/plain", inner[0].MediaType)
	assert.Equal(t, "text/html", inner[1].MediaType)

	_, err = parts[0].GetParts()
	assert.ErrorIs(t, err, entity.ErrNotMultipart)

	_, err = e.Open()
	assert.ErrorIs(t, err, entity.ErrMultipart)

	r, err := parts[0].Open()
	require.NoError(t, err)
	require.NoError(t, r.Close())
}

func TestParseError(t *testing.T) {
	t.Parallel()

	e, err := entity.Parse(strings.NewReader("Content-Type: multipart/mixed; boundary=b\r\n\r\n--b\r\n\r\nx\r\n"),
		stream.Strict())
	assert.ErrorIs(t, err, stream.ErrMissingCloseDelimiter)
	assert.Nil(t, e)
}

func TestWalk(t *testing.T) {
	t.Parallel()

	e, err := entity.Parse(strings.NewReader(msg))
	require.NoError(t, err)
	defer func() { assert.NoError(t, e.Release()) }()

	type visit struct {
		depth, i int
		mt       string
	}

	visits := []visit{}
	err = entity.Walker(func(depth, i int, part *entity.Entity) error {
		mt, _ := part.Header.GetMediaType()
		visits = append(visits, visit{depth, i, mt})
		return nil
	}).Walk(e)
	require.NoError(t, err)
	assert.Equal(t, []visit{
		{0, 0, "multipart/mixed"},
		{1, 0, "text/plain"},
		{1, 1, "multipart/alternative"},
		{2, 0, ""},
		{2, 1, "text/html"},
		{1, 2, ""},
	}, visits)

	singles := 0
	require.NoError(t, entity.Walker(func(_, _ int, part *entity.Entity) error {
		assert.False(t, part.IsMultipart())
		singles++
		return nil
	}).WalkSingle(e))
	assert.Equal(t, 4, singles)

	multis := 0
	require.NoError(t, entity.Walker(func(_, _ int, part *entity.Entity) error {
		assert.True(t, part.IsMultipart())
		multis++
		return nil
	}).WalkMultipart(e))
	assert.Equal(t, 2, multis)

	errStop := assert.AnError
	calls := 0
	err = entity.Walker(func(_, _ int, _ *entity.Entity) error {
		calls++
		return errStop
	}).Walk(e)
	assert.Same(t, errStop, err)
	assert.Equal(t, 1, calls)
}

func TestWriteTo(t *testing.T) {
	t.Parallel()

	e, err := entity.Parse(strings.NewReader(msg))
	require.NoError(t, err)
	defer func() { assert.NoError(t, e.Release()) }()

	var buf bytes.Buffer
	n, err := e.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(msg)), n)
	assert.Equal(t, msg, buf.String())
}

func TestWriteToEncodes(t *testing.T) {
	t.Parallel()

	in := "Content-Type: application/octet-stream\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"SGVsbG8gV29ybGQ=\r\n"

	e, err := entity.Parse(strings.NewReader(in))
	require.NoError(t, err)
	defer func() { assert.NoError(t, e.Release()) }()
	assert.Equal(t, "Hello World", read(t, e))

	var buf bytes.Buffer
	_, err = e.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, buf.String())

	// bodies kept encoded are written as they are
	b := entity.NewBuilder()
	b.Encoded = true
	require.NoError(t, stream.Parse(strings.NewReader(in), b, stream.WithoutTransferDecoding()))
	raw := b.Entity()
	defer func() { assert.NoError(t, raw.Release()) }()
	assert.Equal(t, "SGVsbG8gV29ybGQ=\r\n", read(t, raw))

	buf.Reset()
	_, err = raw.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, buf.String())
}

func TestBuilderSkip(t *testing.T) {
	t.Parallel()

	b := entity.NewBuilder()
	b.Skip = func(d *stream.BodyDescriptor) bool {
		return d.MediaType == "multipart/alternative"
	}
	require.NoError(t, stream.Parse(strings.NewReader(msg), b))

	e := b.Entity()
	defer func() { assert.NoError(t, e.Release()) }()

	parts, err := e.GetParts()
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.False(t, parts[1].IsMultipart())

	_, err = parts[1].Open()
	assert.ErrorIs(t, err, entity.ErrNoBody)
}

// trackedHandle counts releases of itself and its copies.
type trackedHandle struct {
	storage.Handle
	released *int
}

func (h *trackedHandle) Copy() (storage.Handle, error) {
	cp, err := h.Handle.Copy()
	if err != nil {
		return nil, err
	}
	return &trackedHandle{Handle: cp, released: h.released}, nil
}

func (h *trackedHandle) Release() error {
	*h.released++
	return h.Handle.Release()
}

func single(h storage.Handle) *entity.Entity {
	return &entity.Entity{
		Header: header.New(header.CRLF),
		Body:   &entity.SingleBody{Handle: h},
	}
}

func TestCopy(t *testing.T) {
	t.Parallel()

	e, err := entity.Parse(strings.NewReader(msg))
	require.NoError(t, err)
	defer func() { assert.NoError(t, e.Release()) }()

	cp, err := e.Copy()
	require.NoError(t, err)

	var buf1, buf2 bytes.Buffer
	_, err = e.WriteTo(&buf1)
	require.NoError(t, err)
	_, err = cp.WriteTo(&buf2)
	require.NoError(t, err)
	assert.Equal(t, buf1.String(), buf2.String())

	// no storage is shared
	require.NoError(t, cp.Release())
	parts, err := e.GetParts()
	require.NoError(t, err)
	assert.Equal(t, "one", read(t, parts[0]))

	// the header list is copied by value
	cp2, err := e.Copy()
	require.NoError(t, err)
	defer func() { assert.NoError(t, cp2.Release()) }()
	cp2.Header.Append(field.New("X-Copy", "yes"))
	assert.Equal(t, 2, e.Header.Len())
}

func TestCopyUnsupported(t *testing.T) {
	t.Parallel()

	released := 0
	first := &trackedHandle{Handle: storage.NewMemoryHandle([]byte("first")), released: &released}
	oneShot := storage.NewReaderHandle(strings.NewReader("second"), 6)

	e := &entity.Entity{
		Header: header.New(header.CRLF),
		Body: &entity.Multipart{
			Boundary: "b",
			Parts:    []*entity.Entity{single(first), single(oneShot)},
		},
	}

	cp, err := e.Copy()
	assert.ErrorIs(t, err, storage.ErrCopyUnsupported)
	assert.Nil(t, cp)
	assert.Equal(t, 1, released, "the copy of the first body is released")

	// the source is untouched
	parts, err := e.GetParts()
	require.NoError(t, err)
	assert.Equal(t, "first", read(t, parts[0]))
	assert.Equal(t, "second", read(t, parts[1]))

	require.NoError(t, e.Release())
	assert.Equal(t, 2, released)
}
