package transfer_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mimestream/transfer"
)

const dec = `1 Timothy 6:10 - For the love of money is a root of all kinds of evils. It is through this craving that some have wandered away from the faith and pierced themselves with many pangs.`
const enc = `MSBUaW1vdGh5IDY6MTAgLSBGb3IgdGhlIGxvdmUgb2YgbW9uZXkgaXMgYSByb290IG9mIGFsbCBr
aW5kcyBvZiBldmlscy4gSXQgaXMgdGhyb3VnaCB0aGlzIGNyYXZpbmcgdGhhdCBzb21lIGhhdmUg
d2FuZGVyZWQgYXdheSBmcm9tIHRoZSBmYWl0aCBhbmQgcGllcmNlZCB0aGVtc2VsdmVzIHdpdGgg
bWFueSBwYW5ncy4=`

func TestNewBase64Decoder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte(dec), decodeChunks(t, transfer.Base64, enc))
	assert.Equal(t, []byte("Hello"), decodeChunks(t, transfer.Base64, "SGV", "sb", "\r\n", "G8="))
	assert.Equal(t, []byte("Hello"), decodeChunks(t, transfer.Base64, "SGVsbG8="))

	// every split point gives the same answer
	for i := 0; i <= len(enc); i++ {
		assert.Equal(t, []byte(dec), decodeChunks(t, transfer.Base64, enc[:i], enc[i:]))
	}
}

func TestNewBase64Decoder_Invalid(t *testing.T) {
	t.Parallel()

	var warnings []error
	buf := &bytes.Buffer{}
	d := transfer.NewBase64Decoder(buf, transfer.OnWarning(func(err error) {
		warnings = append(warnings, err)
	}))
	_, err := d.Write([]byte("SGV*sbG8="))
	require.NoError(t, err)
	require.NoError(t, d.Close())
	assert.Equal(t, "Hello", buf.String())
	require.Len(t, warnings, 1)
	var derr *transfer.DecodeError
	require.ErrorAs(t, warnings[0], &derr)
	assert.Equal(t, int64(3), derr.Offset)

	d = transfer.NewBase64Decoder(&bytes.Buffer{}, transfer.Strict())
	_, err = d.Write([]byte("SGV*sbG8="))
	assert.ErrorIs(t, err, transfer.ErrDecode)
}

func TestNewBase64Decoder_Truncated(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte("Hello"), decodeChunks(t, transfer.Base64, "SGVsbG8"))

	d := transfer.NewBase64Decoder(&bytes.Buffer{}, transfer.Strict())
	_, err := d.Write([]byte("SGVsbG8"))
	require.NoError(t, err)
	assert.ErrorIs(t, d.Close(), transfer.ErrDecode)
}

func TestNewBase64Decoder_DownstreamError(t *testing.T) {
	t.Parallel()

	d := transfer.NewBase64Decoder(errWriter{})
	_, err := d.Write([]byte("SGVsbG8="))
	assert.ErrorIs(t, err, errBoom)
}

func TestNewBase64Encoder(t *testing.T) {
	t.Parallel()

	w := &bytes.Buffer{}
	e := transfer.NewBase64EncoderWithBreak(w, []byte("\n"))
	n, err := e.Write([]byte(dec))
	assert.Equal(t, len(dec), n)
	assert.NoError(t, err)
	assert.NoError(t, e.Close())
	assert.Equal(t, enc+"\n", w.String())
}

func TestNewBase64PartEncoder(t *testing.T) {
	t.Parallel()

	w := &bytes.Buffer{}
	e := transfer.NewBase64PartEncoder(w, []byte("\n"))
	_, err := e.Write([]byte(dec))
	assert.NoError(t, err)
	assert.NoError(t, e.Close())
	assert.Equal(t, enc, w.String())
}
