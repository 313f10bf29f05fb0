package export

import (
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"

	"github.com/kulaginds/aniplay/internal/player"
)

// DefaultSampleRate is the rate of the unsigned 8-bit mono sound blocks.
const DefaultSampleRate = 22050

// wavHeader is the canonical 44 byte RIFF/WAVE header for PCM data.
type wavHeader struct {
	RIFF          [4]byte
	ChunkSize     uint32
	WAVE          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}

func newWAVHeader(sampleRate, dataSize int) *wavHeader {
	return &wavHeader{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + dataSize),
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		Channels:      1,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate),
		BlockAlign:    1,
		BitsPerSample: 8,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(dataSize),
	}
}

// WAV collects sound blocks and writes them as a PCM WAVE file when the
// session ends.
type WAV struct {
	w          io.Writer
	sampleRate int
	samples    []byte
}

func NewWAV(w io.Writer, sampleRate int) *WAV {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &WAV{w: w, sampleRate: sampleRate}
}

func (a *WAV) Begin(player.Info) error { return nil }

func (a *WAV) Frame([]byte) error { return nil }

func (a *WAV) Audio(data []byte) error {
	a.samples = append(a.samples, data...)
	return nil
}

func (a *WAV) End() error {
	h := newWAVHeader(a.sampleRate, len(a.samples))
	if err := struc.PackWithOptions(a.w, h, &struc.Options{Order: binary.LittleEndian}); err != nil {
		return err
	}
	_, err := a.w.Write(a.samples)
	return err
}
