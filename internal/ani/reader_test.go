package ani_test

import (
	"bytes"
	"errors"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kulaginds/aniplay/internal/ani"
	"github.com/kulaginds/aniplay/internal/ani/anitest"
	"github.com/kulaginds/aniplay/internal/codec"
	"github.com/kulaginds/aniplay/internal/errs"
)

func validHeader() ani.RawHeader {
	return ani.RawHeader{
		FrameCount: 2,
		Width:      4,
		Height:     2,
		Language:   ani.LanguageHungarian,
		Algorithm:  uint8(codec.AlgorithmRLE1),
		Flags:      ani.FlagLZSS,
	}
}

func open(t *testing.T, b *anitest.Builder) *ani.Reader {
	t.Helper()
	data, err := b.Bytes()
	require.NoError(t, err)

	r, err := ani.Open(bytes.NewReader(data))
	require.NoError(t, err)
	return r
}

func TestOpen_Signature(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("SPIDY")},
		{"wrong", []byte("NOTANANI")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ani.Open(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ani.ErrBadSignature)
			assert.True(t, errs.IsFormat(err))
		})
	}
}

func TestLoad(t *testing.T) {
	r := open(t, anitest.New().Header(validHeader()))

	h, err := r.Load()
	require.NoError(t, err)

	assert.Equal(t, ani.Header{
		Width:      4,
		Height:     2,
		FrameCount: 2,
		Language:   ani.LanguageHungarian,
		Algorithm:  codec.AlgorithmRLE1,
		LZSS:       true,
	}, h)
	assert.Equal(t, h, r.Header())
	assert.Equal(t, 8, h.PixelCount())
	assert.Equal(t, "4x2 frames=2 lang=2 alg=rle1 lzss=true", h.String())
}

func TestLoad_Errors(t *testing.T) {
	zeroWidth := validHeader()
	zeroWidth.Width = 0
	zeroHeight := validHeader()
	zeroHeight.Height = 0
	badAlg := validHeader()
	badAlg.Algorithm = 3

	tests := []struct {
		name    string
		builder *anitest.Builder
		want    error
	}{
		{"truncated", anitest.New().Raw([]byte{0x02, 0x00, 0x04}), ani.ErrTruncatedHeader},
		{"missing", anitest.New(), ani.ErrTruncatedHeader},
		{"zero width", anitest.New().Header(zeroWidth), ani.ErrBadDimensions},
		{"zero height", anitest.New().Header(zeroHeight), ani.ErrBadDimensions},
		{"unknown algorithm", anitest.New().Header(badAlg), ani.ErrBadAlgorithm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := open(t, tt.builder)
			_, err := r.Load()
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, errs.IsFormat(err))
		})
	}
}

func TestNext_BeforeLoad(t *testing.T) {
	r := open(t, anitest.New().Header(validHeader()))
	_, err := r.Next()
	assert.ErrorIs(t, err, ani.ErrNotLoaded)
}

func TestNext_Sequence(t *testing.T) {
	r := open(t, anitest.New().
		Header(validHeader()).
		Palette([3]byte{0x3F, 0, 0}, [3]byte{0, 0x3F, 0}).
		Sound([]byte{0x80, 0x81, 0x82}).
		Image(2, 8, false, []byte{1, 2, 3}).
		Image(1, 0, true, []byte{4}))

	_, err := r.Load()
	require.NoError(t, err)

	b, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, ani.KindPalette, b.Kind)
	assert.Equal(t, []color.RGBA{{R: 0xFF, A: 0xFF}, {G: 0xFF, A: 0xFF}}, []color.RGBA(b.Palette))

	b, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, ani.KindSound, b.Kind)
	assert.Equal(t, []byte{0x80, 0x81, 0x82}, b.Sound)

	b, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, ani.KindImage, b.Kind)
	assert.Equal(t, ani.Image{Data: []byte{1, 2, 3}, BufferSize: 8, Rows: 2}, b.Image)

	b, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, ani.Image{Data: []byte{4}, Rows: 1, Special: true}, b.Image)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 4, r.Blocks())
}

func TestNext_EndOfStreamInsideBlock(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"palette count missing", []byte{'P'}},
		{"palette entries cut", []byte{'P', 2, 0, 0, 0, 1}},
		{"sound header cut", []byte{'S', 4, 0}},
		{"sound payload cut", []byte{'S', 4, 0, 0, 0, 1, 2}},
		{"image header cut", []byte{'I', 1, 0, 0, 0, 1}},
		{"image payload cut", []byte{'I', 4, 0, 0, 0, 4, 0, 0, 0, 1, 0, 0, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := open(t, anitest.New().Header(validHeader()).Raw(tt.raw))
			_, err := r.Load()
			require.NoError(t, err)

			_, err = r.Next()
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestNext_FormatErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{"unknown tag", []byte{'X'}, ani.ErrUnknownBlock},
		{"sound too large", []byte{'S', 0xFF, 0xFF, 0xFF, 0xFF}, ani.ErrPayloadSize},
		{"image buffer too large", []byte{'I', 1, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF, 1, 0, 0}, ani.ErrPayloadSize},
		{"palette component", []byte{'P', 1, 0x40, 0, 0}, errs.ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := open(t, anitest.New().Header(validHeader()).Raw(tt.raw))
			_, err := r.Load()
			require.NoError(t, err)

			_, err = r.Next()
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, errs.IsFormat(err))
		})
	}
}

type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestNext_IOError(t *testing.T) {
	data := anitest.New().Header(validHeader()).Sound([]byte{1}).MustBytes()
	boom := errors.New("device unplugged")

	r, err := ani.Open(&failingReader{data: data, err: boom})
	require.NoError(t, err)
	_, err = r.Load()
	require.NoError(t, err)

	_, err = r.Next()
	require.NoError(t, err)

	_, err = r.Next()
	assert.True(t, errs.IsIO(err))
	assert.ErrorIs(t, err, boom)
}

func TestLoad_IOError(t *testing.T) {
	boom := errors.New("device unplugged")

	r, err := ani.Open(&failingReader{data: []byte(ani.Signature), err: boom})
	require.NoError(t, err)

	_, err = r.Load()
	assert.True(t, errs.IsIO(err))
}
