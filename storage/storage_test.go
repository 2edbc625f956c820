package storage_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mimestream/storage"
)

var body = bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog.\r\n"), 100)

// store writes data to a new sink from p in pieces of n bytes.
func store(t *testing.T, p storage.Provider, data []byte, n int) storage.Handle {
	t.Helper()

	sink, err := p.Open(-1)
	require.NoError(t, err)
	for len(data) > 0 {
		m := n
		if m > len(data) {
			m = len(data)
		}
		w, err := sink.Write(data[:m])
		require.NoError(t, err)
		require.Equal(t, m, w)
		data = data[m:]
	}

	h, err := sink.Finish()
	require.NoError(t, err)
	return h
}

// checkHandle verifies the common Handle contract.
func checkHandle(t *testing.T, h storage.Handle, data []byte) {
	t.Helper()

	assert.Equal(t, int64(len(data)), h.Size())

	// re-openable
	for i := 0; i < 2; i++ {
		got, err := storage.ReadAll(h)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}

	cp, err := h.Copy()
	require.NoError(t, err)

	require.NoError(t, h.Release())
	require.NoError(t, h.Release())

	_, err = h.Open()
	assert.ErrorIs(t, err, storage.ErrStorage)
	assert.ErrorIs(t, err, storage.ErrReleased)

	// the copy is independent
	got, err := storage.ReadAll(cp)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	require.NoError(t, cp.Release())
}

func TestMemoryProvider(t *testing.T) {
	t.Parallel()

	h := store(t, storage.MemoryProvider{}, body, 100)
	checkHandle(t, h, body)

	h = store(t, storage.MemoryProvider{}, nil, 1)
	checkHandle(t, h, []byte{})
}

func TestTempFileProvider(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "spool")
	p := &storage.TempFileProvider{Dir: dir, Prefix: "test-"}

	h := store(t, p, body, 333)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "test-"))

	checkHandle(t, h, body)

	// everything released
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// aborted sinks leave nothing behind
	sink, err := p.Open(-1)
	require.NoError(t, err)
	_, err = sink.Write(body)
	require.NoError(t, err)
	require.NoError(t, sink.Abort())
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestThresholdProvider(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := storage.NewThresholdProvider(1024, &storage.TempFileProvider{Dir: dir})

	// small bodies stay in memory
	small := body[:1000]
	h := store(t, p, small, 10)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	checkHandle(t, h, small)

	// large ones are promoted
	h = store(t, p, body, 100)
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	checkHandle(t, h, body)

	// a big enough size hint skips memory
	sink, err := p.Open(int64(len(body)))
	require.NoError(t, err)
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	require.NoError(t, sink.Abort())
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBoltProvider(t *testing.T) {
	t.Parallel()

	p, err := storage.OpenBoltProvider(filepath.Join(t.TempDir(), "bodies.db"))
	require.NoError(t, err)
	defer func() { assert.NoError(t, p.Close()) }()
	p.SetChunkSize(500)

	h := store(t, p, body, 123)
	checkHandle(t, h, body)

	h = store(t, p, body[:500], 500)
	checkHandle(t, h, body[:500])

	h = store(t, p, nil, 1)
	checkHandle(t, h, []byte{})

	sink, err := p.Open(-1)
	require.NoError(t, err)
	_, err = sink.Write(body)
	require.NoError(t, err)
	require.NoError(t, sink.Abort())
}

func TestReaderHandle(t *testing.T) {
	t.Parallel()

	h := storage.NewReaderHandle(bytes.NewReader(body), int64(len(body)))
	assert.Equal(t, int64(len(body)), h.Size())

	_, err := h.Copy()
	assert.ErrorIs(t, err, storage.ErrCopyUnsupported)

	got, err := storage.ReadAll(h)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	_, err = h.Open()
	assert.ErrorIs(t, err, storage.ErrAlreadyOpened)

	assert.NoError(t, h.Release())
	assert.NoError(t, h.Release())
}

func TestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk on fire")
	err := &storage.Error{Op: "write", Err: cause}
	assert.ErrorIs(t, err, storage.ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage write: disk on fire", err.Error())
}
