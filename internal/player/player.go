// Package player drives Spidy ANI playback: it decodes a container block by
// block, assembles frames from sub-images and reports everything to a
// Callback.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/kulaginds/aniplay/internal/ani"
	"github.com/kulaginds/aniplay/internal/codec"
	"github.com/kulaginds/aniplay/internal/errs"
	"github.com/kulaginds/aniplay/internal/logging"
	"github.com/kulaginds/aniplay/internal/palette"
	"github.com/kulaginds/aniplay/internal/timing"
)

var (
	ErrNilCallback    = errors.New("player: nil callback")
	ErrNoInputStream  = errors.New("player: callback returned no input stream")
	ErrImageNoPalette = fmt.Errorf("%w: image block before any palette block", errs.ErrFormat)
	ErrFrameOverrun   = fmt.Errorf("%w: sub-images exceed frame height", errs.ErrFormat)
)

// Player runs playback sessions. It holds no per-session state and may run
// several sessions concurrently, each on its own goroutine.
type Player struct {
	timing *timing.Table
	log    *logging.Logger
}

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger used for session diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(p *Player) {
		p.log = l
	}
}

// New creates a player that looks up pacing in table.
func New(table *timing.Table, opts ...Option) *Player {
	p := &Player{
		timing: table,
		log:    logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.timing == nil {
		p.timing = &timing.Table{}
	}
	return p
}

// Play runs one session on the calling goroutine and returns its terminal
// state. Exactly one of Finished, Stopped or Fatal is called on cb. Cancelling
// ctx is equivalent to a stop request and is observed between blocks.
func (p *Player) Play(ctx context.Context, cb Callback) State {
	if cb == nil {
		p.log.Error("play: %v", ErrNilCallback)
		return StateFailed
	}

	s := &session{
		id:    uuid.NewString(),
		cb:    cb,
		state: StateInitializing,
	}
	s.log = p.log.Named("session " + s.id)

	err := s.run(ctx, p.timing)

	switch {
	case err != nil:
		s.state = StateFailed
		s.log.Error("failed after %d blocks: %v", s.blocks, err)
		cb.Fatal(err)
	case s.stopRequested(ctx):
		s.state = StateStopped
		s.log.Info("stopped after %d frames, %d sound blocks", s.frames, s.audioBlocks)
		cb.Stopped()
	default:
		s.state = StateFinished
		s.log.Info("finished: %d frames, %d sound blocks", s.frames, s.audioBlocks)
		cb.Finished()
	}

	return s.state
}

type session struct {
	id  string
	cb  Callback
	log *logging.Logger

	state  State
	header ani.Header

	palette palette.Palette
	// frame accumulator
	rgba   []byte
	offset int // next pixel to write
	rows   int
	// expansion scratch buffer, grown on demand
	scratch []byte

	blocks      int
	frames      int
	audioBlocks int
}

func (s *session) stopRequested(ctx context.Context) bool {
	return s.cb.StopRequested() || ctx.Err() != nil
}

func (s *session) run(ctx context.Context, table *timing.Table) error {
	in, err := s.cb.InputStream()
	if err != nil {
		if in != nil {
			in.Close()
		}
		return fmt.Errorf("input stream: %w", err)
	}
	if in == nil {
		return ErrNoInputStream
	}
	defer func() {
		if err := in.Close(); err != nil {
			s.log.Debug("close input: %v", err)
		}
	}()

	r, err := ani.Open(in)
	if err != nil {
		return err
	}

	s.header, err = r.Load()
	if err != nil {
		return err
	}

	name := s.cb.StreamName()
	rate, err := table.Lookup(name, s.header.Language)
	if err != nil {
		return err
	}

	s.log.Debug("%s: %s fps=%.2f delay=%d", name, s.header, rate.FPS, rate.AudioDelay)

	s.cb.Initialize(Info{
		Width:      s.header.Width,
		Height:     s.header.Height,
		Frames:     s.header.FrameCount,
		Language:   s.header.Language,
		FPS:        rate.FPS,
		AudioDelay: rate.AudioDelay,
	})

	s.rgba = make([]byte, s.header.PixelCount()*codec.BytesPerPixel)
	s.state = StateStreaming

	for !s.stopRequested(ctx) {
		b, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("block %d: %w", s.blocks, err)
		}

		if err := s.handle(b); err != nil {
			return fmt.Errorf("block %d (%s): %w", s.blocks, b.Kind, err)
		}
		s.blocks++
	}

	return nil
}

func (s *session) handle(b ani.Block) error {
	switch b.Kind {
	case ani.KindPalette:
		s.palette = b.Palette
	case ani.KindSound:
		s.cb.AudioData(b.Sound)
		s.audioBlocks++
	case ani.KindImage:
		return s.handleImage(b.Image)
	default:
		return fmt.Errorf("%w: %s", ani.ErrUnknownBlock, b.Kind)
	}
	return nil
}

func (s *session) handleImage(img ani.Image) error {
	if s.palette == nil {
		return ErrImageNoPalette
	}

	if s.rows+img.Rows > s.header.Height {
		return fmt.Errorf("%d+%d rows of %d: %w", s.rows, img.Rows, s.header.Height, ErrFrameOverrun)
	}

	src := img.Data
	if s.header.LZSS && !img.Special {
		expanded, err := s.expand(img)
		if err != nil {
			return err
		}
		src = expanded
	}

	offset, err := codec.Decode(s.header.Algorithm, src, s.rgba, s.offset, s.palette)
	if err != nil {
		return err
	}
	s.offset = offset
	s.rows += img.Rows

	if s.rows == s.header.Height {
		s.emit()
	}

	return nil
}

func (s *session) expand(img ani.Image) ([]byte, error) {
	if cap(s.scratch) < img.BufferSize {
		s.scratch = make([]byte, img.BufferSize)
	}
	dst := s.scratch[:img.BufferSize]

	if err := codec.Expand(dst, img.Data); err != nil {
		return nil, err
	}
	return dst, nil
}

// emit hands the completed frame to the callback and resets the accumulator.
func (s *session) emit() {
	s.cb.ImageReady(s.rgba)
	s.frames++

	clear(s.rgba)
	s.offset = 0
	s.rows = 0
}
