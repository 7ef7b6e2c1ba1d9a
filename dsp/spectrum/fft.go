package spectrum

import (
	"fmt"
	"math"
	"math/bits"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Plans carry scratch state, so each size keeps a pool of them rather
// than one shared instance.
var planPools sync.Map // int -> *sync.Pool

func acquirePlan(n int) (*algofft.Plan[complex128], error) {
	v, _ := planPools.LoadOrStore(n, &sync.Pool{})
	if p, ok := v.(*sync.Pool).Get().(*algofft.Plan[complex128]); ok && p != nil {
		return p, nil
	}

	p, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("spectrum: failed to create FFT plan of size %d: %w", n, err)
	}

	return p, nil
}

func releasePlan(n int, p *algofft.Plan[complex128]) {
	if v, ok := planPools.Load(n); ok {
		v.(*sync.Pool).Put(p)
	}
}

// FFT computes the unnormalised forward DFT of src into dst. Any length is
// accepted; dst and src may alias.
func FFT(dst, src []complex128) error {
	if len(src) == 0 {
		return ErrEmptyInput
	}
	if len(dst) != len(src) {
		return fmt.Errorf("%w: dst %d, src %d", ErrLengthMismatch, len(dst), len(src))
	}
	if len(src) == 1 {
		dst[0] = src[0]
		return nil
	}

	if isPowerOf2(len(src)) {
		p, err := acquirePlan(len(src))
		if err != nil {
			return err
		}
		defer releasePlan(len(src), p)
		if err := p.Forward(dst, src); err != nil {
			return fmt.Errorf("spectrum: forward FFT failed: %w", err)
		}
		return nil
	}

	return bluestein(dst, src)
}

// IFFT computes the inverse DFT of src into dst, normalised by 1/N.
func IFFT(dst, src []complex128) error {
	if len(src) == 0 {
		return ErrEmptyInput
	}
	if len(dst) != len(src) {
		return fmt.Errorf("%w: dst %d, src %d", ErrLengthMismatch, len(dst), len(src))
	}
	if len(src) == 1 {
		dst[0] = src[0]
		return nil
	}

	if isPowerOf2(len(src)) {
		p, err := acquirePlan(len(src))
		if err != nil {
			return err
		}
		defer releasePlan(len(src), p)
		if err := p.Inverse(dst, src); err != nil {
			return fmt.Errorf("spectrum: inverse FFT failed: %w", err)
		}
		return nil
	}

	// IDFT(x) = conj(DFT(conj(x))) / N
	tmp := make([]complex128, len(src))
	for i, v := range src {
		tmp[i] = complex(real(v), -imag(v))
	}
	if err := bluestein(tmp, tmp); err != nil {
		return err
	}
	scale := 1 / float64(len(src))
	for i, v := range tmp {
		dst[i] = complex(real(v)*scale, -imag(v)*scale)
	}

	return nil
}

// RFFT returns the n/2+1 non-negative frequency bins of the DFT of a real
// signal.
func RFFT(x []float64) ([]complex128, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}

	buf := make([]complex128, len(x))
	for i, v := range x {
		buf[i] = complex(v, 0)
	}
	if err := FFT(buf, buf); err != nil {
		return nil, err
	}

	return buf[:len(x)/2+1], nil
}

// IRFFT reconstructs a real signal of length n from its non-negative
// frequency bins, assuming Hermitian symmetry. len(bins) must be n/2+1.
func IRFFT(bins []complex128, n int) ([]float64, error) {
	if n <= 0 || len(bins) == 0 {
		return nil, ErrEmptyInput
	}
	if len(bins) != n/2+1 {
		return nil, fmt.Errorf("%w: %d bins for length %d", ErrLengthMismatch, len(bins), n)
	}

	full := make([]complex128, n)
	copy(full, bins)
	// DC and (for even n) Nyquist bins of a real signal are real.
	full[0] = complex(real(bins[0]), 0)
	if n%2 == 0 {
		full[n/2] = complex(real(bins[n/2]), 0)
	}
	for k := n/2 + 1; k < n; k++ {
		c := full[n-k]
		full[k] = complex(real(c), -imag(c))
	}

	if err := IFFT(full, full); err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i, v := range full {
		out[i] = real(v)
	}

	return out, nil
}

// RFFTFrequencies returns the frequencies of the RFFT bins for a signal of
// length n sampled at sampleRate.
func RFFTFrequencies(n int, sampleRate float64) []float64 {
	if n <= 0 {
		return nil
	}

	out := make([]float64, n/2+1)
	df := sampleRate / float64(n)
	for i := range out {
		out[i] = float64(i) * df
	}

	return out
}

// bluestein evaluates a DFT of arbitrary length through a power-of-two
// circular convolution with a chirp sequence.
func bluestein(dst, src []complex128) error {
	n := len(src)
	m := nextPowerOf2(2*n - 1)

	p, err := acquirePlan(m)
	if err != nil {
		return err
	}
	defer releasePlan(m, p)

	chirp := make([]complex128, n)
	twoN := uint64(2 * n)
	for k := range chirp {
		// k^2 mod 2n keeps the phase argument small for long inputs.
		kk := (uint64(k) * uint64(k)) % twoN
		angle := math.Pi * float64(kk) / float64(n)
		chirp[k] = complex(math.Cos(angle), -math.Sin(angle))
	}

	a := make([]complex128, m)
	b := make([]complex128, m)
	for k := 0; k < n; k++ {
		a[k] = src[k] * chirp[k]
		c := complex(real(chirp[k]), -imag(chirp[k]))
		b[k] = c
		if k > 0 {
			b[m-k] = c
		}
	}

	if err := p.Forward(a, a); err != nil {
		return fmt.Errorf("spectrum: bluestein forward failed: %w", err)
	}
	if err := p.Forward(b, b); err != nil {
		return fmt.Errorf("spectrum: bluestein kernel failed: %w", err)
	}
	for i := range a {
		a[i] *= b[i]
	}
	if err := p.Inverse(a, a); err != nil {
		return fmt.Errorf("spectrum: bluestein inverse failed: %w", err)
	}

	for k := 0; k < n; k++ {
		dst[k] = a[k] * chirp[k]
	}

	return nil
}

func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
