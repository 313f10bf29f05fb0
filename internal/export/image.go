package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/ericpauley/go-quantize/quantize"

	"github.com/kulaginds/aniplay/internal/player"
)

// frameImage copies an RGBA frame buffer into a standalone image.
func frameImage(info player.Info, rgba []byte) (*image.RGBA, error) {
	m := image.NewRGBA(image.Rect(0, 0, info.Width, info.Height))
	if len(rgba) != len(m.Pix) {
		return nil, fmt.Errorf("frame is %d bytes, want %d", len(rgba), len(m.Pix))
	}
	copy(m.Pix, rgba)
	return m, nil
}

// PNGSequence writes every frame to dir as frame_00000.png, frame_00001.png
// and so on.
type PNGSequence struct {
	Dir string

	info  player.Info
	index int
}

func NewPNGSequence(dir string) *PNGSequence {
	return &PNGSequence{Dir: dir}
}

func (p *PNGSequence) Begin(info player.Info) error {
	p.info = info
	return os.MkdirAll(p.Dir, 0o755)
}

func (p *PNGSequence) Frame(rgba []byte) error {
	m, err := frameImage(p.info, rgba)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(p.Dir, fmt.Sprintf("frame_%05d.png", p.index)))
	if err != nil {
		return err
	}

	if err := png.Encode(f, m); err != nil {
		f.Close()
		return err
	}
	p.index++

	return f.Close()
}

func (p *PNGSequence) Audio([]byte) error { return nil }

func (p *PNGSequence) End() error { return nil }

// GIF quantizes each frame to at most 256 colours and writes an animated GIF
// when the session ends.
type GIF struct {
	w io.Writer

	info   player.Info
	delay  int
	frames []*image.Paletted
}

func NewGIF(w io.Writer) *GIF {
	return &GIF{w: w}
}

func (g *GIF) Begin(info player.Info) error {
	g.info = info
	g.delay = frameDelay(info.FPS)
	return nil
}

// frameDelay converts a frame rate to GIF delay units of 1/100 s.
func frameDelay(fps float64) int {
	if fps <= 0 {
		return 10
	}
	d := int(math.Round(100 / fps))
	if d < 1 {
		d = 1
	}
	return d
}

func (g *GIF) Frame(rgba []byte) error {
	m, err := frameImage(g.info, rgba)
	if err != nil {
		return err
	}

	b := m.Bounds()
	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, 256), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)

	g.frames = append(g.frames, pm)
	return nil
}

func (g *GIF) Audio([]byte) error { return nil }

func (g *GIF) End() error {
	if len(g.frames) == 0 {
		return nil
	}

	anim := &gif.GIF{
		Image: g.frames,
		Delay: make([]int, len(g.frames)),
	}
	for i := range anim.Delay {
		anim.Delay[i] = g.delay
	}

	return gif.EncodeAll(g.w, anim)
}
