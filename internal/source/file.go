package source

import (
	"io"
	"path/filepath"
)

// File supplies the stream half of player.Callback for an animation on disk.
// Embed it in a callback type to get InputStream and StreamName.
type File struct {
	Path string
}

// InputStream opens a new stream positioned at the start of the container.
func (f File) InputStream() (io.ReadCloser, error) {
	return Open(f.Path)
}

// StreamName returns the file name, which the timing table normalizes.
func (f File) StreamName() string {
	return filepath.Base(f.Path)
}
