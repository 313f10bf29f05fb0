package ani

import (
	"errors"
	"io"

	"github.com/kulaginds/aniplay/internal/errs"
)

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// endOrIO maps exhaustion of the stream to io.EOF and anything else to an
// ErrIO failure.
func endOrIO(err error) error {
	if isEOF(err) {
		return io.EOF
	}
	return ioError(err)
}

func ioError(err error) error {
	return errs.IO(err)
}
