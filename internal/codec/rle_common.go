// Package codec implements the two image codec layers of Spidy ANI streams:
// an LZSS byte expander and palette driven run-length decoders.
package codec

import (
	"fmt"

	"github.com/kulaginds/aniplay/internal/errs"
)

// Algorithm selects the run-length variant used for a whole stream.
type Algorithm uint8

const (
	AlgorithmRLE1 Algorithm = 1
	AlgorithmRLE2 Algorithm = 2
)

// Valid reports whether a is a known run-length variant.
func (a Algorithm) Valid() bool {
	return a == AlgorithmRLE1 || a == AlgorithmRLE2
}

func (a Algorithm) String() string {
	switch a {
	case AlgorithmRLE1:
		return "rle1"
	case AlgorithmRLE2:
		return "rle2"
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

// RLE type 1 order codes
const (
	rle1Skip    = 0xC0
	rle1RunMask = 0x3F
)

// RLE type 2 order codes
const (
	rle2Skip    = 0x80
	rle2RunMask = 0x7F
)

// BytesPerPixel is the size of one decoded RGBA pixel.
const BytesPerPixel = 4

var (
	ErrLengthMismatch   = fmt.Errorf("%w: lzss: output length differs from declared size", errs.ErrFormat)
	ErrBadReference     = fmt.Errorf("%w: lzss: back-reference before start of output", errs.ErrFormat)
	ErrTruncated        = fmt.Errorf("%w: codec: truncated token", errs.ErrFormat)
	ErrOverflow         = fmt.Errorf("%w: rle: write past pixel buffer", errs.ErrFormat)
	ErrNoPalette        = fmt.Errorf("%w: rle: no active palette", errs.ErrFormat)
	ErrUnknownAlgorithm = fmt.Errorf("%w: rle: unknown algorithm", errs.ErrFormat)
)

// extractCode1 classifies a type 1 header byte as literal, skip or run.
func extractCode1(c byte) (skip, run bool) {
	if c < rle1Skip {
		return false, false
	}
	return c == rle1Skip, c != rle1Skip
}

// extractCode2 classifies a type 2 header byte as literal run, skip or run.
func extractCode2(c byte) (skip, run bool) {
	if c < rle2Skip {
		return false, false
	}
	return c == rle2Skip, c != rle2Skip
}
