package ani

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/lunixbochs/struc"

	"github.com/kulaginds/aniplay/internal/palette"
)

const readBufferSize = 32 * 1024

var ErrNotLoaded = errors.New("ani: header not loaded")

var structOptions = &struc.Options{Order: binary.LittleEndian}

// Reader decodes one container. It only moves forward.
type Reader struct {
	r      *bufio.Reader
	header Header
	loaded bool
	blocks int
}

// Open checks the container signature at the start of r.
func Open(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, readBufferSize)

	sig := make([]byte, len(Signature))
	if _, err := io.ReadFull(br, sig); err != nil {
		if isEOF(err) {
			return nil, fmt.Errorf("short signature: %w", ErrBadSignature)
		}
		return nil, ioError(err)
	}

	if string(sig) != Signature {
		return nil, fmt.Errorf("got %q: %w", sig, ErrBadSignature)
	}

	return &Reader{r: br}, nil
}

// Load reads and validates the header. It must be called once, before Next.
func (r *Reader) Load() (Header, error) {
	if r.loaded {
		return r.header, nil
	}

	var raw RawHeader
	if err := struc.UnpackWithOptions(r.r, &raw, structOptions); err != nil {
		if isEOF(err) {
			return Header{}, ErrTruncatedHeader
		}
		return Header{}, ioError(err)
	}

	h, err := raw.validate()
	if err != nil {
		return Header{}, err
	}

	r.header = h
	r.loaded = true

	return h, nil
}

// Header returns the header read by Load.
func (r *Reader) Header() Header {
	return r.header
}

// Blocks returns the number of blocks returned so far.
func (r *Reader) Blocks() int {
	return r.blocks
}

// Next returns the next block. It returns io.EOF once the stream is exhausted,
// including when it ends in the middle of a block.
func (r *Reader) Next() (Block, error) {
	if !r.loaded {
		return Block{}, ErrNotLoaded
	}

	tag, err := r.r.ReadByte()
	if err != nil {
		return Block{}, endOrIO(err)
	}

	var b Block
	switch BlockKind(tag) {
	case KindPalette:
		b, err = r.readPalette()
	case KindSound:
		b, err = r.readSound()
	case KindImage:
		b, err = r.readImage()
	default:
		return Block{}, fmt.Errorf("tag 0x%02X after %d blocks: %w", tag, r.blocks, ErrUnknownBlock)
	}
	if err != nil {
		return Block{}, err
	}

	r.blocks++

	return b, nil
}

func (r *Reader) readPalette() (Block, error) {
	count, err := r.r.ReadByte()
	if err != nil {
		return Block{}, endOrIO(err)
	}

	body := make([]byte, 1+palette.EntryCount(count)*3)
	body[0] = count
	if err := r.readFull(body[1:]); err != nil {
		return Block{}, err
	}

	p, err := palette.Parse(body)
	if err != nil {
		return Block{}, err
	}

	return Block{Kind: KindPalette, Palette: p}, nil
}

func (r *Reader) readSound() (Block, error) {
	var hdr RawSoundHeader
	if err := struc.UnpackWithOptions(r.r, &hdr, structOptions); err != nil {
		return Block{}, endOrIO(err)
	}

	data, err := r.readPayload(hdr.Size)
	if err != nil {
		return Block{}, err
	}

	return Block{Kind: KindSound, Sound: data}, nil
}

func (r *Reader) readImage() (Block, error) {
	var hdr RawImageHeader
	if err := struc.UnpackWithOptions(r.r, &hdr, structOptions); err != nil {
		return Block{}, endOrIO(err)
	}

	if hdr.BufferSize > maxPayload {
		return Block{}, fmt.Errorf("buffer size %d: %w", hdr.BufferSize, ErrPayloadSize)
	}

	data, err := r.readPayload(hdr.Size)
	if err != nil {
		return Block{}, err
	}

	return Block{
		Kind: KindImage,
		Image: Image{
			Data:       data,
			BufferSize: int(hdr.BufferSize),
			Rows:       int(hdr.Rows),
			Special:    hdr.Flags&ImageFlagSpecial != 0,
		},
	}, nil
}

func (r *Reader) readPayload(size uint32) ([]byte, error) {
	if size > maxPayload {
		return nil, fmt.Errorf("payload size %d: %w", size, ErrPayloadSize)
	}

	data := make([]byte, size)
	if err := r.readFull(data); err != nil {
		return nil, err
	}

	return data, nil
}

func (r *Reader) readFull(buf []byte) error {
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return endOrIO(err)
	}
	return nil
}
