package window

import (
	"errors"
	"fmt"
)

var (
	errMismatchedLength = errors.New("samples and coefficients must have same length")

	// ErrUnknown is returned by Parse for names it does not recognise.
	ErrUnknown = errors.New("window: unknown window")
)

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}
	return nil
}

func validatePlanck(size, nleft, nright int) error {
	if size <= 0 {
		return validateLength(size)
	}
	if nleft < 0 || nright < 0 || nleft+nright > size {
		return fmt.Errorf("planck tapers %d+%d do not fit size %d", nleft, nright, size)
	}
	return nil
}

func unknownWindow(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknown, name)
}
