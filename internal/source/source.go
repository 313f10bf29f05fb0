// Package source opens animation files for playback, transparently
// decompressing gzip and zstd wrapped containers.
package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	gzipMagic = []byte{0x1F, 0x8B}
)

// Wrapping is the outer compression detected on a source.
type Wrapping int

const (
	WrappingNone Wrapping = iota
	WrappingGzip
	WrappingZstd
)

func (w Wrapping) String() string {
	switch w {
	case WrappingGzip:
		return "gzip"
	case WrappingZstd:
		return "zstd"
	}
	return "none"
}

// Open opens the file at path.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	rc, _, err := Wrap(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return rc, nil
}

// Wrap sniffs rc and returns a reader of the decompressed container. Closing
// the result closes rc.
func Wrap(rc io.ReadCloser) (io.ReadCloser, Wrapping, error) {
	br := bufio.NewReader(rc)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, WrappingNone, err
	}

	switch {
	case bytes.HasPrefix(head, zstdMagic):
		dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, WrappingZstd, fmt.Errorf("zstd: %w", err)
		}
		return &stack{Reader: dec, closers: []func() error{nopErr(dec.Close), rc.Close}}, WrappingZstd, nil

	case bytes.HasPrefix(head, gzipMagic):
		dec, err := gzip.NewReader(br)
		if err != nil {
			return nil, WrappingGzip, fmt.Errorf("gzip: %w", err)
		}
		return &stack{Reader: dec, closers: []func() error{dec.Close, rc.Close}}, WrappingGzip, nil
	}

	return &stack{Reader: br, closers: []func() error{rc.Close}}, WrappingNone, nil
}

// stack closes every layer, innermost first, and reports the first failure.
type stack struct {
	io.Reader
	closers []func() error
}

func (s *stack) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func nopErr(f func()) func() error {
	return func() error {
		f()
		return nil
	}
}
