package qtransform

import "errors"

var (
	// ErrNonFinite is returned when the input contains NaN or Inf samples.
	ErrNonFinite = errors.New("qtransform: input contains non-finite samples")
	// ErrOutsideSpan is returned when the output segment is not inside the data.
	ErrOutsideSpan = errors.New("qtransform: output segment outside data span")
	// ErrTooShort is returned when the data is too short to tile at the requested Q.
	ErrTooShort = errors.New("qtransform: data too short for the requested Q")
	// ErrInvalidParameter is returned for non-positive Q, mismatch, rate or duration.
	ErrInvalidParameter = errors.New("qtransform: invalid parameter")
)
