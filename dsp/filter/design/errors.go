package design

import "errors"

var (
	// ErrInvalidFrequency is returned when a corner is not inside (0, fs/2).
	ErrInvalidFrequency = errors.New("design: frequency must lie between 0 and Nyquist")
	// ErrInvalidOrder is returned for non-positive filter orders.
	ErrInvalidOrder = errors.New("design: order must be positive")
	// ErrInvalidBand is returned when the low corner is not below the high one.
	ErrInvalidBand = errors.New("design: low corner must be below high corner")
)
