package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrShortInput is returned when there are too few samples.
	ErrShortInput = errors.New("interp: need at least one sample")
	// ErrLengthMismatch is returned when abscissae and ordinates differ in length.
	ErrLengthMismatch = errors.New("interp: abscissae and ordinates differ in length")
	// ErrInvalidStep is returned for a non-positive or non-finite grid step.
	ErrInvalidStep = errors.New("interp: step must be positive and finite")
)

// Method selects the kernel used by [Uniform].
type Method int

const (
	// Linear joins neighbouring samples with straight lines.
	Linear Method = iota
	// Hermite uses the 4-point cubic Hermite kernel.
	Hermite
)

// Linear2 interpolates between x0 (t=0) and x1 (t=1).
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)

	return ((c3*t+c2)*t+c1)*t + c0
}

// Uniform evaluates samples, taken at x0, x0+dx, ..., at each position in
// at. Positions outside the sampled span take the nearest edge value. The
// Hermite method mirrors the missing neighbour at each edge.
func Uniform(samples []float64, x0, dx float64, at []float64, method Method) ([]float64, error) {
	n := len(samples)
	if n == 0 {
		return nil, ErrShortInput
	}

	if dx <= 0 || math.IsNaN(dx) || math.IsInf(dx, 0) {
		return nil, fmt.Errorf("interp: dx %g: %w", dx, ErrInvalidStep)
	}

	out := make([]float64, len(at))
	for k, x := range at {
		pos := (x - x0) / dx

		switch {
		case n == 1 || pos <= 0:
			out[k] = samples[0]
			continue
		case pos >= float64(n-1):
			out[k] = samples[n-1]
			continue
		}

		i := int(pos)
		t := pos - float64(i)

		if method == Linear {
			out[k] = Linear2(t, samples[i], samples[i+1])
			continue
		}

		xm1 := samples[max(i-1, 0)]
		if i == 0 {
			xm1 = 2*samples[0] - samples[1]
		}

		x2 := 2*samples[i+1] - samples[i]
		if i+2 < n {
			x2 = samples[i+2]
		}

		out[k] = Hermite4(t, xm1, samples[i], samples[i+1], x2)
	}

	return out, nil
}

// Piecewise linearly interpolates (xs, ys) at each position in at. xs must
// be ascending. Positions outside [xs[0], xs[len-1]] take the edge values.
func Piecewise(xs, ys, at []float64) ([]float64, error) {
	if len(xs) == 0 {
		return nil, ErrShortInput
	}

	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(xs), len(ys))
	}

	n := len(xs)
	out := make([]float64, len(at))

	for k, x := range at {
		j := sort.SearchFloat64s(xs, x)

		switch {
		case j == 0:
			out[k] = ys[0]
		case j >= n:
			out[k] = ys[n-1]
		case xs[j] == x:
			out[k] = ys[j]
		default:
			t := (x - xs[j-1]) / (xs[j] - xs[j-1])
			out[k] = Linear2(t, ys[j-1], ys[j])
		}
	}

	return out, nil
}
