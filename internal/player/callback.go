package player

import (
	"fmt"
	"io"
)

// Info is reported once per session, before any audio or image data.
type Info struct {
	Width      int
	Height     int
	Frames     int
	Language   int
	FPS        float64
	AudioDelay int // in frames
}

// Callback is implemented by the consumer that renders frames and plays audio.
// All methods are called from the goroutine running Play.
type Callback interface {
	// InputStream returns a fresh stream positioned at the start of the
	// container. The player closes it when the session ends.
	InputStream() (io.ReadCloser, error)
	// StreamName identifies the animation for the timing table.
	StreamName() string

	Initialize(info Info)
	// AudioData receives each sound block payload unchanged.
	AudioData(data []byte)
	// ImageReady receives a complete RGBA frame. The buffer is cleared and
	// reused once the call returns.
	ImageReady(rgba []byte)

	StopRequested() bool
	// PauseRequested is part of the contract but the player never polls it;
	// pausing is left to the consumer.
	PauseRequested() bool

	Finished()
	Stopped()
	Fatal(err error)
}

// State is a phase of a playback session.
type State int

const (
	StateInitializing State = iota
	StateStreaming
	StateFinished
	StateStopped
	StateFailed
)

var stateNames = map[State]string{
	StateInitializing: "initializing",
	StateStreaming:    "streaming",
	StateFinished:     "finished",
	StateStopped:      "stopped",
	StateFailed:       "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}
