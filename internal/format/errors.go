package format

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrBadMagic is wrapped by FormatError when a file signature does not match.
	ErrBadMagic = errors.New("bad magic")
	// ErrUnsupportedVersion is wrapped by FormatError when a version lies
	// outside the range a decoder understands.
	ErrUnsupportedVersion = errors.New("unsupported version")
)

// FormatError reports input that does not follow a known file layout.
// Decoding of the current file stops when one is returned.
type FormatError struct {
	Format string // "hog", "ogf", "d3level", ...
	Msg    string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Format, e.Msg, e.Err)
	}
	return e.Format + ": " + e.Msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// Errorf builds a FormatError for the named format.
func Errorf(name, msg string, args ...any) error {
	return &FormatError{Format: name, Msg: fmt.Sprintf(msg, args...)}
}

// Wrap builds a FormatError around a sentinel such as ErrBadMagic.
func Wrap(name string, err error, msg string, args ...any) error {
	return &FormatError{Format: name, Msg: fmt.Sprintf(msg, args...), Err: err}
}

// NotFoundError reports a named archive entry that does not exist.
type NotFoundError struct {
	Archive string
	Name    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s: not found", e.Archive, e.Name)
}

// Unwrap lets callers test with errors.Is(err, fs.ErrNotExist).
func (e *NotFoundError) Unwrap() error { return fs.ErrNotExist }
