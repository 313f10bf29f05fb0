// Package palette implements the indexed colour table carried by palette blocks.
package palette

import (
	"fmt"
	"image/color"

	"github.com/kulaginds/aniplay/internal/errs"
)

// MaxEntries is the largest palette a block can carry.
const MaxEntries = 256

const maxComponent = 0x3F // 6-bit VGA DAC value

var (
	ErrEmpty      = fmt.Errorf("%w: palette: empty palette block", errs.ErrFormat)
	ErrTruncated  = fmt.Errorf("%w: palette: truncated entries", errs.ErrFormat)
	ErrComponent  = fmt.Errorf("%w: palette: component out of 6-bit range", errs.ErrFormat)
	ErrIndexRange = fmt.Errorf("%w: palette: index out of range", errs.ErrFormat)
)

// Palette maps small integer indices to opaque RGBA colours.
type Palette []color.RGBA

// EntryCount returns the number of entries announced by the first byte of a
// palette body. Zero stands for a full 256 entry table.
func EntryCount(b byte) int {
	if b == 0 {
		return MaxEntries
	}
	return int(b)
}

// Parse decodes a palette body: a count byte followed by count RGB triplets of
// 6-bit components.
func Parse(data []byte) (Palette, error) {
	if len(data) < 1 {
		return nil, ErrEmpty
	}

	n := EntryCount(data[0])
	entries := data[1:]
	if len(entries) < n*3 {
		return nil, ErrTruncated
	}

	p := make(Palette, n)
	for i := range p {
		r, g, b := entries[i*3], entries[i*3+1], entries[i*3+2]
		if r > maxComponent || g > maxComponent || b > maxComponent {
			return nil, fmt.Errorf("entry %d: %w", i, ErrComponent)
		}
		p[i] = color.RGBA{R: expand6(r), G: expand6(g), B: expand6(b), A: 0xFF}
	}

	return p, nil
}

// At resolves index i.
func (p Palette) At(i byte) (color.RGBA, error) {
	if int(i) >= len(p) {
		return color.RGBA{}, fmt.Errorf("index %d of %d: %w", i, len(p), ErrIndexRange)
	}
	return p[i], nil
}

// expand6 widens a 6-bit DAC component to 8 bits, mapping 0x3F to 0xFF.
func expand6(v byte) byte {
	return v<<2 | v>>4
}
