package ani

import (
	"fmt"

	"github.com/kulaginds/aniplay/internal/errs"
	"github.com/kulaginds/aniplay/internal/palette"
)

// BlockKind tags the variant held by a Block.
type BlockKind byte

// Block tags as stored in the stream
const (
	KindPalette BlockKind = 'P'
	KindSound   BlockKind = 'S'
	KindImage   BlockKind = 'I'
)

// Image block flag bits
const (
	ImageFlagSpecial = 0x01
)

// maxPayload bounds a single block body.
const maxPayload = 16 << 20

var (
	ErrUnknownBlock = fmt.Errorf("%w: ani: unknown block tag", errs.ErrFormat)
	ErrPayloadSize  = fmt.Errorf("%w: ani: block payload too large", errs.ErrFormat)
)

func (k BlockKind) String() string {
	switch k {
	case KindPalette:
		return "palette"
	case KindSound:
		return "sound"
	case KindImage:
		return "image"
	}
	return fmt.Sprintf("block(0x%02X)", byte(k))
}

// Block is one unit of the container stream. Only the field matching Kind is
// set.
type Block struct {
	Kind    BlockKind
	Palette palette.Palette
	Sound   []byte
	Image   Image
}

// Image is a sub-image chunk covering Rows full rows of the frame.
type Image struct {
	// Data is LZSS compressed unless Special is set or the container has
	// LZSS disabled.
	Data []byte
	// BufferSize is the declared size of Data after LZSS expansion.
	BufferSize int
	Rows       int
	// Special marks a payload already in expanded form.
	Special bool
}

// RawSoundHeader precedes a sound payload.
type RawSoundHeader struct {
	Size uint32
}

// RawImageHeader precedes an image payload.
type RawImageHeader struct {
	Size       uint32
	BufferSize uint32
	Rows       uint16
	Flags      uint8
}
