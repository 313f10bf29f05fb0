package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kulaginds/aniplay/internal/errs"
	"github.com/kulaginds/aniplay/internal/palette"
)

var (
	black = []byte{0x00, 0x00, 0x00, 0xFF}
	red   = []byte{0xFF, 0x00, 0x00, 0xFF}
	green = []byte{0x00, 0xFF, 0x00, 0xFF}
	blue  = []byte{0x00, 0x00, 0xFF, 0xFF}
	blank = []byte{0x00, 0x00, 0x00, 0x00}
)

func testPalette() palette.Palette {
	return palette.Palette{
		{R: 0x00, G: 0x00, B: 0x00, A: 0xFF},
		{R: 0xFF, G: 0x00, B: 0x00, A: 0xFF},
		{R: 0x00, G: 0xFF, B: 0x00, A: 0xFF},
		{R: 0x00, G: 0x00, B: 0xFF, A: 0xFF},
	}
}

func pixels(px ...[]byte) []byte {
	var out []byte
	for _, p := range px {
		out = append(out, p...)
	}
	return out
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		alg     Algorithm
		src     []byte
		size    int
		wantPos int
		want    []byte
	}{
		{
			name: "type 1 literal run skip",
			alg:  AlgorithmRLE1,
			// idx 1, run 3 of idx 2, skip 1, idx 3
			src:     []byte{0x01, 0xC3, 0x02, 0xC0, 0x01, 0x03},
			size:    8,
			wantPos: 6,
			want:    pixels(red, green, green, green, blank, blue, blank, blank),
		},
		{
			name: "type 1 run of index above literal range",
			alg:  AlgorithmRLE1,
			src:  []byte{0xC2, 0x00, 0x00},
			size: 3,
			// 0xC2 0x00: two black pixels; 0x00: one black literal
			wantPos: 3,
			want:    pixels(black, black, black),
		},
		{
			name: "type 2 literal run skip",
			alg:  AlgorithmRLE2,
			// literal 3 (3,0,1), run 2 of idx 2, skip 1, literal 1 (3)
			src:     []byte{0x02, 0x03, 0x00, 0x01, 0x82, 0x02, 0x80, 0x01, 0x00, 0x03},
			size:    8,
			wantPos: 7,
			want:    pixels(blue, black, red, green, green, blank, blue, blank),
		},
		{
			name:    "type 2 single long run",
			alg:     AlgorithmRLE2,
			src:     []byte{0x84, 0x01},
			size:    4,
			wantPos: 4,
			want:    pixels(red, red, red, red),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, tt.size*BytesPerPixel)

			pos, err := Decode(tt.alg, tt.src, dst, 0, testPalette())
			require.NoError(t, err)
			assert.Equal(t, tt.wantPos, pos)
			assert.Equal(t, tt.want, dst)
		})
	}
}

func TestDecode_ResumesAtOffset(t *testing.T) {
	pal := testPalette()
	dst := make([]byte, 4*BytesPerPixel)

	pos, err := Decode(AlgorithmRLE1, []byte{0xC2, 0x01}, dst, 0, pal)
	require.NoError(t, err)
	require.Equal(t, 2, pos)

	pos, err = Decode(AlgorithmRLE2, []byte{0x01, 0x02, 0x03}, dst, pos, pal)
	require.NoError(t, err)
	assert.Equal(t, 4, pos)
	assert.Equal(t, pixels(red, red, green, blue), dst)
}

func TestDecode_PaletteResolvedAtDecodeTime(t *testing.T) {
	pal := testPalette()
	dst := make([]byte, 2*BytesPerPixel)

	pos, err := Decode(AlgorithmRLE1, []byte{0x01}, dst, 0, pal)
	require.NoError(t, err)

	swapped := palette.Palette{pal[0], pal[3]}
	_, err = Decode(AlgorithmRLE1, []byte{0x01}, dst, pos, swapped)
	require.NoError(t, err)

	assert.Equal(t, pixels(red, blue), dst)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		alg    Algorithm
		src    []byte
		size   int
		offset int
		pal    palette.Palette
		want   error
	}{
		{"type 1 run overflow", AlgorithmRLE1, []byte{0xC3, 0x01}, 2, 0, testPalette(), ErrOverflow},
		{"type 1 literal overflow", AlgorithmRLE1, []byte{0x01, 0x01}, 1, 0, testPalette(), ErrOverflow},
		{"type 1 skip overflow", AlgorithmRLE1, []byte{0xC0, 0x05}, 4, 0, testPalette(), ErrOverflow},
		{"type 2 literal overflow", AlgorithmRLE2, []byte{0x03, 0, 0, 0, 0}, 3, 0, testPalette(), ErrOverflow},
		{"type 2 run overflow", AlgorithmRLE2, []byte{0x85, 0x00}, 4, 0, testPalette(), ErrOverflow},
		{"offset beyond buffer", AlgorithmRLE1, []byte{0x01}, 2, 3, testPalette(), ErrOverflow},
		{"type 1 truncated run", AlgorithmRLE1, []byte{0xC3}, 4, 0, testPalette(), ErrTruncated},
		{"type 2 truncated literal", AlgorithmRLE2, []byte{0x03, 0x01}, 8, 0, testPalette(), ErrTruncated},
		{"type 2 truncated skip", AlgorithmRLE2, []byte{0x80}, 8, 0, testPalette(), ErrTruncated},
		{"index out of range", AlgorithmRLE1, []byte{0x05}, 4, 0, testPalette(), palette.ErrIndexRange},
		{"no palette", AlgorithmRLE1, []byte{0x01}, 4, 0, nil, ErrNoPalette},
		{"unknown algorithm", Algorithm(9), []byte{0x01}, 4, 0, testPalette(), ErrUnknownAlgorithm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, tt.size*BytesPerPixel)

			_, err := Decode(tt.alg, tt.src, dst, tt.offset, tt.pal)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, errs.IsFormat(err))
		})
	}
}

func TestAlgorithm(t *testing.T) {
	assert.True(t, AlgorithmRLE1.Valid())
	assert.True(t, AlgorithmRLE2.Valid())
	assert.False(t, Algorithm(0).Valid())
	assert.False(t, Algorithm(3).Valid())

	assert.Equal(t, "rle1", AlgorithmRLE1.String())
	assert.Equal(t, "rle2", AlgorithmRLE2.String())
	assert.Equal(t, "algorithm(7)", Algorithm(7).String())
}
