package series

import "errors"

var (
	// ErrEmpty is returned by operations that need at least one sample.
	ErrEmpty = errors.New("series: empty series")
	// ErrNotOnGrid is returned when a time does not fall on a sample.
	ErrNotOnGrid = errors.New("series: time is not on the sample grid")
	// ErrOutsideSpan is returned when a time lies outside the series.
	ErrOutsideSpan = errors.New("series: time outside series span")
	// ErrInvalidBand is returned when a pass band is empty.
	ErrInvalidBand = errors.New("series: low frequency must be below high frequency")
	// ErrTooShort is returned when the series is too short for an operation.
	ErrTooShort = errors.New("series: series too short")
	// ErrInvalidParameter is returned for non-positive lengths and strides.
	ErrInvalidParameter = errors.New("series: invalid parameter")
)
