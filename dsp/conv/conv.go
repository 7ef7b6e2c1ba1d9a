package conv

import (
	"errors"
	"fmt"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput     = errors.New("conv: empty input")
	ErrEmptyKernel    = errors.New("conv: empty kernel")
	ErrLengthMismatch = errors.New("conv: buffer length mismatch")
	ErrInvalidMode    = errors.New("conv: invalid mode")
)

// Mode selects which part of the full convolution is returned.
type Mode int

const (
	// ModeFull returns all len(a)+len(b)-1 samples.
	ModeFull Mode = iota
	// ModeSame returns len(a) samples centred on the full result.
	ModeSame
	// ModeValid returns the samples where the shorter input overlaps the
	// longer one completely.
	ModeValid
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeSame:
		return "same"
	case ModeValid:
		return "valid"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// directThreshold is the kernel length below which Convolve stays in the
// time domain.
const directThreshold = 32

// Direct returns the full linear convolution of a and b.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}

	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	out := make([]float64, len(a)+len(b)-1)
	DirectTo(out, a, b)

	return out, nil
}

// DirectTo writes the full convolution of a and b into dst, which must hold
// len(a)+len(b)-1 samples.
func DirectTo(dst, a, b []float64) {
	clear(dst)

	for i, x := range a {
		if x == 0 {
			continue
		}

		row := dst[i : i+len(b)]
		for j, k := range b {
			row[j] += x * k
		}
	}
}

// Convolve convolves signal with kernel and crops the result to mode.
// Short kernels use Direct, longer ones OverlapAdd.
func Convolve(signal, kernel []float64, mode Mode) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}

	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	var (
		full []float64
		err  error
	)

	if len(kernel) < directThreshold {
		full, err = Direct(signal, kernel)
	} else {
		full, err = OverlapAddConvolve(signal, kernel)
	}

	if err != nil {
		return nil, err
	}

	return crop(full, len(signal), len(kernel), mode)
}

func crop(full []float64, n, m int, mode Mode) ([]float64, error) {
	switch mode {
	case ModeFull:
		return full, nil
	case ModeSame:
		start := (m - 1) / 2
		return full[start : start+n], nil
	case ModeValid:
		long, short := max(n, m), min(n, m)
		return full[short-1 : long], nil
	default:
		return nil, fmt.Errorf("conv: %v: %w", mode, ErrInvalidMode)
	}
}
