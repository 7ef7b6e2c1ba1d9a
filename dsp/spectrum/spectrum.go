package spectrum

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// parts is pooled scratch space holding the real and imaginary halves of a
// complex spectrum side by side.
type parts struct{ buf []float64 }

var partsPool = sync.Pool{New: func() any { return new(parts) }}

// reduce splits bins into real and imaginary slices and lets kernel write
// one value per bin into a fresh output slice.
func reduce(bins []complex128, kernel func(dst, re, im []float64)) []float64 {
	n := len(bins)
	if n == 0 {
		return nil
	}
	p := partsPool.Get().(*parts)
	defer partsPool.Put(p)
	if cap(p.buf) < 2*n {
		p.buf = make([]float64, 2*n)
	}
	re, im := p.buf[:n], p.buf[n:2*n]
	for i, c := range bins {
		re[i], im[i] = real(c), imag(c)
	}
	out := make([]float64, n)
	kernel(out, re, im)
	return out
}

// Magnitude returns |X[k]| for every bin.
func Magnitude(bins []complex128) []float64 {
	return reduce(bins, func(dst, re, im []float64) { vecmath.Magnitude(dst, re, im) })
}

// Power returns |X[k]|² for every bin.
func Power(bins []complex128) []float64 {
	return reduce(bins, func(dst, re, im []float64) { vecmath.Power(dst, re, im) })
}

// InterpolateLinear evaluates the piecewise-linear curve through (x, y) at
// every query point. x must be strictly increasing. Queries outside x take
// the nearest end value.
func InterpolateLinear(x, y, query []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d abscissae, %d ordinates", ErrLengthMismatch, len(x), len(y))
	}
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("%w: at index %d", ErrNotIncreasing, i)
		}
	}

	last := len(x) - 1
	out := make([]float64, len(query))
	for i, q := range query {
		switch {
		case q <= x[0]:
			out[i] = y[0]
		case q >= x[last]:
			out[i] = y[last]
		default:
			j := sort.SearchFloat64s(x, q)
			f := (q - x[j-1]) / (x[j] - x[j-1])
			out[i] = y[j-1] + f*(y[j]-y[j-1])
		}
	}
	return out, nil
}
