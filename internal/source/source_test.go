package source

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var payload = []byte("SPIDYANI\x01\x00\x02\x00\x02\x00\x01\x01\x00\x00")

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

type trackedCloser struct {
	io.Reader
	closed bool
	err    error
}

func (c *trackedCloser) Close() error {
	c.closed = true
	return c.err
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Wrapping
	}{
		{"plain", payload, WrappingNone},
		{"gzip", gzipBytes(t, payload), WrappingGzip},
		{"zstd", zstdBytes(t, payload), WrappingZstd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &trackedCloser{Reader: bytes.NewReader(tt.data)}

			rc, wrapping, err := Wrap(inner)
			require.NoError(t, err)
			assert.Equal(t, tt.want, wrapping)

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, payload, got)

			require.NoError(t, rc.Close())
			assert.True(t, inner.closed)
		})
	}
}

func TestWrap_ShortInput(t *testing.T) {
	rc, wrapping, err := Wrap(io.NopCloser(bytes.NewReader([]byte{0x01})))
	require.NoError(t, err)
	assert.Equal(t, WrappingNone, wrapping)

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, got)
}

func TestWrap_BrokenGzip(t *testing.T) {
	_, wrapping, err := Wrap(io.NopCloser(bytes.NewReader([]byte{0x1F, 0x8B, 0x00, 0x00})))
	assert.Error(t, err)
	assert.Equal(t, WrappingGzip, wrapping)
}

func TestStackClose_ReportsFirstError(t *testing.T) {
	boom := errors.New("boom")
	inner := &trackedCloser{Reader: bytes.NewReader(payload), err: boom}

	rc, _, err := Wrap(inner)
	require.NoError(t, err)
	assert.ErrorIs(t, rc.Close(), boom)
}

func TestOpenAndFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "intro.ani.gz")
	require.NoError(t, os.WriteFile(p, gzipBytes(t, payload), 0o600))

	f := File{Path: p}
	assert.Equal(t, "intro.ani.gz", f.StreamName())

	rc, err := f.InputStream()
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	require.NoError(t, rc.Close())

	_, err = Open(filepath.Join(dir, "missing.ani"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWrappingString(t *testing.T) {
	assert.Equal(t, "none", WrappingNone.String())
	assert.Equal(t, "gzip", WrappingGzip.String())
	assert.Equal(t, "zstd", WrappingZstd.String())
}
