package header_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mimestream/header"
	"github.com/zostay/go-mimestream/header/field"
)

const headerStr = `Delivered-To: one@example.com
Delivered-To: two@example.com, three@example.com
From: "Example" <devsupport@example.com>
To: <sterling@example.com>
Subject: =?utf-8?Q?Emulator=20Behind=20The=20Scenes?=
Date: Sat, 31 Jan 2015 03:23:09 +0000
Content-Type: multipart/alternative;
 boundary="_----------=_MCPart_433295335"
Content-Type: text/plain
Content-Disposition: inline; filename=notes.txt
Content-Transfer-Encoding: Quoted-Printable
`

func parseHeader(t *testing.T) *header.Header {
	h, err := header.Parse([]byte(headerStr), header.LF)
	require.NoError(t, err)
	return h
}

func TestParse(t *testing.T) {
	t.Parallel()

	h := parseHeader(t)
	assert.Equal(t, 10, h.Len())
	assert.Equal(t, "Content-Type", h.Field(6).Name())
	assert.Equal(t, `multipart/alternative; boundary="_----------=_MCPart_433295335"`, h.Field(6).Body())

	h, err := header.Parse([]byte(" junk\nSubject: x\n"), header.LF)
	var badStart *field.BadStartError
	assert.ErrorAs(t, err, &badStart)
	require.NotNil(t, h)
	assert.Equal(t, 1, h.Len())
}

func TestHeader_Get(t *testing.T) {
	t.Parallel()

	h := parseHeader(t)

	b, err := h.Get("delivered-to")
	assert.ErrorIs(t, err, header.ErrManyFields)
	assert.Equal(t, "one@example.com", b)

	_, err = h.Get("X-Missing")
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	bs, err := h.GetAll("Delivered-To")
	require.NoError(t, err)
	assert.Equal(t, []string{"one@example.com", "two@example.com, three@example.com"}, bs)

	assert.Equal(t, []int{0, 1}, h.IndexesNamed("DELIVERED-TO"))
}

func TestHeader_GetContentType(t *testing.T) {
	t.Parallel()

	h := parseHeader(t)

	// first occurrence wins
	ct, err := h.GetContentType()
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", ct.MediaType())

	mt, err := h.GetMediaType()
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mt)

	b, err := h.GetBoundary()
	require.NoError(t, err)
	assert.Equal(t, "_----------=_MCPart_433295335", b)

	_, err = h.GetCharset()
	assert.ErrorIs(t, err, header.ErrNoSuchFieldParameter)

	// cached
	ct2, err := h.GetContentType()
	require.NoError(t, err)
	assert.Same(t, ct, ct2)

	// field names and parsed values are distinct identifiers
	var v header.Value = ct
	assert.Equal(t, header.KindContentType, v.Kind())
	assert.Len(t, h.IndexesNamed(header.ContentType), 2)

	built := header.NewContentType("text/plain", nil)
	assert.IsType(t, &header.ContentTypeValue{}, built)
	assert.Equal(t, header.ContentType, built.Raw().Name())

	cd, err := h.GetContentDisposition()
	require.NoError(t, err)
	assert.IsType(t, &header.ContentDispositionValue{}, cd)
	assert.Len(t, h.IndexesNamed(header.ContentDisposition), 1)
}

func TestHeader_Getters(t *testing.T) {
	t.Parallel()

	h := parseHeader(t)

	s, err := h.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "Emulator Behind The Scenes", s)

	d, err := h.GetDate()
	require.NoError(t, err)
	assert.Equal(t, 2015, d.Year())

	fn, err := h.GetFilename()
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", fn)

	cte, err := h.GetTransferEncoding()
	require.NoError(t, err)
	assert.Equal(t, "quoted-printable", cte)

	from, err := h.GetMailboxList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "devsupport@example.com", from[0].Address())

	to, err := h.GetAddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "sterling@example.com", to[0].Address())

	fromAl, err := h.GetAddressList("From")
	require.NoError(t, err)
	assert.Len(t, fromAl, 1)

	_, err = h.GetMailboxList("Subject")
	assert.ErrorIs(t, err, header.ErrWrongKind)
}

func TestHeader_CloneAndWrite(t *testing.T) {
	t.Parallel()

	h := parseHeader(t)
	c := h.Clone()
	c.Append(field.New("X-Added", "yes"))
	assert.Equal(t, 10, h.Len())
	assert.Equal(t, 11, c.Len())

	buf := &bytes.Buffer{}
	n, err := h.WriteTo(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(headerStr)+1), n)
	assert.Equal(t, headerStr+"\n", buf.String())

	e := header.New(header.CRLF)
	e.Append(field.New("Subject", "hi"))
	buf.Reset()
	_, err = e.WriteTo(buf)
	require.NoError(t, err)
	assert.Equal(t, "Subject: hi\r\n\r\n", buf.String())
}
