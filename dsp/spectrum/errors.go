package spectrum

import "errors"

// Errors returned by transform and estimation functions.
var (
	ErrEmptyInput     = errors.New("spectrum: empty input")
	ErrLengthMismatch = errors.New("spectrum: buffer length mismatch")
	ErrShortInput     = errors.New("spectrum: input shorter than segment")
	ErrInvalidSegment = errors.New("spectrum: invalid segment or overlap length")
	ErrNotIncreasing  = errors.New("spectrum: abscissae not strictly increasing")
)
