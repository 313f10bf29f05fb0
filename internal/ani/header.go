// Package ani reads Spidy ANI animation containers: a fixed signature, a small
// header and a forward-only sequence of palette, sound and image blocks.
package ani

import (
	"fmt"

	"github.com/kulaginds/aniplay/internal/codec"
	"github.com/kulaginds/aniplay/internal/errs"
)

// Signature opens every container.
const Signature = "SPIDYANI"

// Language codes found in the header.
const (
	LanguageEnglish   = 1
	LanguageHungarian = 2
)

// Header flag bits
const (
	FlagLZSS = 0x01
)

var (
	ErrBadSignature    = fmt.Errorf("%w: ani: bad signature", errs.ErrFormat)
	ErrTruncatedHeader = fmt.Errorf("%w: ani: truncated header", errs.ErrFormat)
	ErrBadDimensions   = fmt.Errorf("%w: ani: width and height must be positive", errs.ErrFormat)
	ErrBadAlgorithm    = fmt.Errorf("%w: ani: unknown compression algorithm", errs.ErrFormat)
)

// RawHeader is the on-disk header following the signature.
type RawHeader struct {
	FrameCount uint16
	Width      uint16
	Height     uint16
	Language   uint8
	Algorithm  uint8
	Flags      uint8
	Reserved   uint8
}

// Header describes a loaded container. It does not change after Load.
type Header struct {
	Width      int
	Height     int
	FrameCount int
	Language   int
	Algorithm  codec.Algorithm
	LZSS       bool
}

// PixelCount returns width*height.
func (h Header) PixelCount() int {
	return h.Width * h.Height
}

func (h Header) String() string {
	return fmt.Sprintf("%dx%d frames=%d lang=%d alg=%s lzss=%t",
		h.Width, h.Height, h.FrameCount, h.Language, h.Algorithm, h.LZSS)
}

func (raw RawHeader) validate() (Header, error) {
	if raw.Width == 0 || raw.Height == 0 {
		return Header{}, fmt.Errorf("%dx%d: %w", raw.Width, raw.Height, ErrBadDimensions)
	}

	alg := codec.Algorithm(raw.Algorithm)
	if !alg.Valid() {
		return Header{}, fmt.Errorf("selector %d: %w", raw.Algorithm, ErrBadAlgorithm)
	}

	return Header{
		Width:      int(raw.Width),
		Height:     int(raw.Height),
		FrameCount: int(raw.FrameCount),
		Language:   int(raw.Language),
		Algorithm:  alg,
		LZSS:       raw.Flags&FlagLZSS != 0,
	}, nil
}
