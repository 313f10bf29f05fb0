// Package errs defines the failure taxonomy shared by the container parser,
// the codecs and the playback driver.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat marks malformed or inconsistent container data.
	ErrFormat = errors.New("format error")
	// ErrIO marks a failure of the underlying reader that is not end of stream.
	ErrIO = errors.New("i/o error")
)

// Format returns a new error wrapping ErrFormat.
func Format(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

// IO wraps err as an ErrIO failure, keeping err in the chain.
func IO(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// IsFormat reports whether err is a format violation.
func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsIO reports whether err is a reader failure.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}
