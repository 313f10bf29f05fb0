// Package anitest builds Spidy ANI containers for tests.
package anitest

import (
	"bytes"
	"encoding/binary"

	"github.com/lunixbochs/struc"

	"github.com/kulaginds/aniplay/internal/ani"
)

var options = &struc.Options{Order: binary.LittleEndian}

// Builder assembles a container in memory. Methods chain; the first packing
// error is kept and reported by Bytes.
type Builder struct {
	buf bytes.Buffer
	err error
}

// New starts a container with a valid signature.
func New() *Builder {
	b := &Builder{}
	b.buf.WriteString(ani.Signature)
	return b
}

// Empty starts a container without a signature.
func Empty() *Builder {
	return &Builder{}
}

// Header appends the fixed header.
func (b *Builder) Header(h ani.RawHeader) *Builder {
	return b.pack(&h)
}

// Palette appends a palette block of 6-bit RGB triplets.
func (b *Builder) Palette(entries ...[3]byte) *Builder {
	b.buf.WriteByte(byte(ani.KindPalette))
	b.buf.WriteByte(byte(len(entries))) // 256 entries wrap to 0
	for _, e := range entries {
		b.buf.Write(e[:])
	}
	return b
}

// Sound appends a sound block.
func (b *Builder) Sound(data []byte) *Builder {
	b.buf.WriteByte(byte(ani.KindSound))
	b.pack(&ani.RawSoundHeader{Size: uint32(len(data))})
	b.buf.Write(data)
	return b
}

// Image appends an image block whose payload is stored as given.
func (b *Builder) Image(rows, bufferSize int, special bool, data []byte) *Builder {
	var flags uint8
	if special {
		flags |= ani.ImageFlagSpecial
	}

	b.buf.WriteByte(byte(ani.KindImage))
	b.pack(&ani.RawImageHeader{
		Size:       uint32(len(data)),
		BufferSize: uint32(bufferSize),
		Rows:       uint16(rows),
		Flags:      flags,
	})
	b.buf.Write(data)
	return b
}

// CompressedImage appends an image block holding rle wrapped in literal-only
// LZSS tokens.
func (b *Builder) CompressedImage(rows int, rle []byte) *Builder {
	return b.Image(rows, len(rle), false, LiteralLZSS(rle))
}

// Raw appends arbitrary bytes.
func (b *Builder) Raw(p []byte) *Builder {
	b.buf.Write(p)
	return b
}

// Bytes returns the container built so far.
func (b *Builder) Bytes() ([]byte, error) {
	return b.buf.Bytes(), b.err
}

// MustBytes is Bytes for fixtures that cannot fail.
func (b *Builder) MustBytes() []byte {
	data, err := b.Bytes()
	if err != nil {
		panic(err)
	}
	return data
}

func (b *Builder) pack(v interface{}) *Builder {
	if b.err != nil {
		return b
	}
	b.err = struc.PackWithOptions(&b.buf, v, options)
	return b
}

// LiteralLZSS encodes data as LZSS tokens that are all literals.
func LiteralLZSS(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/8+1)
	for len(data) > 0 {
		n := 8
		if len(data) < n {
			n = len(data)
		}
		out = append(out, byte(1<<n-1))
		out = append(out, data[:n]...)
		data = data[n:]
	}
	return out
}
