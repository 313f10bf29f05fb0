// Package export turns a playback session into files: PNG frame sequences,
// animated GIFs and WAV soundtracks.
package export

import (
	"errors"
	"fmt"

	"github.com/kulaginds/aniplay/internal/player"
	"github.com/kulaginds/aniplay/internal/source"
)

// ErrStopped is recorded when the session ended on a stop request.
var ErrStopped = errors.New("export: playback stopped")

// Sink consumes decoded session data.
type Sink interface {
	Begin(info player.Info) error
	Frame(rgba []byte) error
	Audio(data []byte) error
	// End flushes the sink. It is called once, whatever the outcome.
	End() error
}

// Recorder is a player.Callback that fans a session out to sinks. The first
// sink error stops playback and becomes the recorded result.
type Recorder struct {
	source.File

	sinks  []Sink
	info   player.Info
	frames int
	err    error
	done   bool
}

// NewRecorder records the animation at path into sinks.
func NewRecorder(path string, sinks ...Sink) *Recorder {
	return &Recorder{File: source.File{Path: path}, sinks: sinks}
}

// Err returns the session outcome once playback has returned.
func (r *Recorder) Err() error { return r.err }

// Info returns what the player reported at initialization.
func (r *Recorder) Info() player.Info { return r.info }

// Frames returns the number of frames delivered to the sinks.
func (r *Recorder) Frames() int { return r.frames }

func (r *Recorder) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Recorder) Initialize(info player.Info) {
	r.info = info
	for _, s := range r.sinks {
		if err := s.Begin(info); err != nil {
			r.fail(fmt.Errorf("begin: %w", err))
		}
	}
}

func (r *Recorder) AudioData(data []byte) {
	if r.err != nil {
		return
	}
	for _, s := range r.sinks {
		if err := s.Audio(data); err != nil {
			r.fail(fmt.Errorf("audio: %w", err))
			return
		}
	}
}

func (r *Recorder) ImageReady(rgba []byte) {
	if r.err != nil {
		return
	}
	for _, s := range r.sinks {
		if err := s.Frame(rgba); err != nil {
			r.fail(fmt.Errorf("frame %d: %w", r.frames, err))
			return
		}
	}
	r.frames++
}

func (r *Recorder) StopRequested() bool { return r.err != nil }

func (r *Recorder) PauseRequested() bool { return false }

func (r *Recorder) Finished() { r.end(nil) }

func (r *Recorder) Stopped() { r.end(ErrStopped) }

func (r *Recorder) Fatal(err error) { r.end(err) }

func (r *Recorder) end(outcome error) {
	if r.done {
		return
	}
	r.done = true

	// A sink failure is what triggered the stop, so it takes precedence.
	if r.err == nil {
		r.err = outcome
	}
	for _, s := range r.sinks {
		if err := s.End(); err != nil {
			r.fail(fmt.Errorf("end: %w", err))
		}
	}
}
