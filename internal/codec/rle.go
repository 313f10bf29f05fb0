package codec

import (
	"fmt"
	"image/color"

	"github.com/kulaginds/aniplay/internal/palette"
)

// pixelWriter resolves palette indices into an RGBA buffer, tracking the write
// position in pixels.
type pixelWriter struct {
	dst []byte
	pos int
	pal palette.Palette
}

func (w *pixelWriter) capacity() int {
	return len(w.dst) / BytesPerPixel
}

func (w *pixelWriter) reserve(n int) error {
	if w.pos+n > w.capacity() {
		return fmt.Errorf("%d pixels at %d of %d: %w", n, w.pos, w.capacity(), ErrOverflow)
	}
	return nil
}

func (w *pixelWriter) put(c color.RGBA) {
	i := w.pos * BytesPerPixel
	w.dst[i] = c.R
	w.dst[i+1] = c.G
	w.dst[i+2] = c.B
	w.dst[i+3] = c.A
	w.pos++
}

func (w *pixelWriter) run(index byte, n int) error {
	if err := w.reserve(n); err != nil {
		return err
	}
	c, err := w.pal.At(index)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		w.put(c)
	}
	return nil
}

func (w *pixelWriter) skip(n int) error {
	if err := w.reserve(n); err != nil {
		return err
	}
	w.pos += n
	return nil
}

// Decode expands run-length tokens from src into the RGBA buffer dst,
// starting at pixel offset. It returns the pixel offset following the last
// pixel written so that consecutive sub-images continue where the previous
// one stopped.
func Decode(alg Algorithm, src []byte, dst []byte, offset int, pal palette.Palette) (int, error) {
	if len(pal) == 0 {
		return offset, ErrNoPalette
	}

	w := &pixelWriter{dst: dst, pos: offset, pal: pal}
	if offset < 0 || offset > w.capacity() {
		return offset, fmt.Errorf("start offset %d of %d: %w", offset, w.capacity(), ErrOverflow)
	}

	var err error
	switch alg {
	case AlgorithmRLE1:
		err = decode1(src, w)
	case AlgorithmRLE2:
		err = decode2(src, w)
	default:
		err = fmt.Errorf("%s: %w", alg, ErrUnknownAlgorithm)
	}

	return w.pos, err
}

func decode1(src []byte, w *pixelWriter) error {
	srcIdx := 0
	for srcIdx < len(src) {
		c := src[srcIdx]
		srcIdx++

		skip, run := extractCode1(c)
		if !skip && !run {
			if err := w.run(c, 1); err != nil {
				return err
			}
			continue
		}

		if srcIdx >= len(src) {
			return fmt.Errorf("order 0x%02X at %d: %w", c, srcIdx-1, ErrTruncated)
		}
		arg := src[srcIdx]
		srcIdx++

		var err error
		if skip {
			err = w.skip(int(arg))
		} else {
			err = w.run(arg, int(c&rle1RunMask))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func decode2(src []byte, w *pixelWriter) error {
	srcIdx := 0
	for srcIdx < len(src) {
		c := src[srcIdx]
		srcIdx++

		skip, run := extractCode2(c)
		if !skip && !run {
			n := int(c) + 1
			if srcIdx+n > len(src) {
				return fmt.Errorf("literal run of %d at %d: %w", n, srcIdx-1, ErrTruncated)
			}
			if err := w.reserve(n); err != nil {
				return err
			}
			for _, index := range src[srcIdx : srcIdx+n] {
				if err := w.run(index, 1); err != nil {
					return err
				}
			}
			srcIdx += n
			continue
		}

		if srcIdx >= len(src) {
			return fmt.Errorf("order 0x%02X at %d: %w", c, srcIdx-1, ErrTruncated)
		}
		arg := src[srcIdx]
		srcIdx++

		var err error
		if skip {
			err = w.skip(int(arg))
		} else {
			err = w.run(arg, int(c&rle2RunMask))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
