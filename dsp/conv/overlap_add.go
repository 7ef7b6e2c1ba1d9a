package conv

import (
	"fmt"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// OverlapAdd convolves long signals with a fixed kernel block by block:
// each zero-padded block is multiplied with the kernel spectrum and the
// overlapping tails are summed. An OverlapAdd is not safe for concurrent
// use.
type OverlapAdd struct {
	kernelFFT []complex128

	kernelLen int
	blockSize int
	fftSize   int

	plan *algofft.Plan[complex128]

	scratch []complex128
}

// NewOverlapAdd prepares a convolver for kernel. A blockSize of 0 picks the
// kernel length rounded up to a power of two, at least 256.
func NewOverlapAdd(kernel []float64, blockSize int) (*OverlapAdd, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	if blockSize <= 0 {
		blockSize = max(nextPowerOf2(len(kernel)), 256)
	}

	fftSize := nextPowerOf2(blockSize + len(kernel) - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: FFT plan of size %d: %w", fftSize, err)
	}

	oa := &OverlapAdd{
		kernelFFT: make([]complex128, fftSize),
		kernelLen: len(kernel),
		blockSize: blockSize,
		fftSize:   fftSize,
		plan:      plan,
		scratch:   make([]complex128, fftSize),
	}

	for i, v := range kernel {
		oa.scratch[i] = complex(v, 0)
	}

	if err := plan.Forward(oa.kernelFFT, oa.scratch); err != nil {
		return nil, fmt.Errorf("conv: kernel FFT: %w", err)
	}

	return oa, nil
}

// BlockSize returns the input block size.
func (oa *OverlapAdd) BlockSize() int { return oa.blockSize }

// FFTSize returns the transform length used per block.
func (oa *OverlapAdd) FFTSize() int { return oa.fftSize }

// KernelLen returns the kernel length.
func (oa *OverlapAdd) KernelLen() int { return oa.kernelLen }

// Process returns the full linear convolution of input with the kernel.
func (oa *OverlapAdd) Process(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}

	out := make([]float64, len(input)+oa.kernelLen-1)
	if err := oa.ProcessTo(out, input); err != nil {
		return nil, err
	}

	return out, nil
}

// ProcessTo writes the full convolution into out, which must hold
// len(input)+KernelLen()-1 samples.
func (oa *OverlapAdd) ProcessTo(out, input []float64) error {
	want := len(input) + oa.kernelLen - 1
	if len(out) != want {
		return fmt.Errorf("%w: expected %d, got %d", ErrLengthMismatch, want, len(out))
	}

	clear(out)

	for start := 0; start < len(input); start += oa.blockSize {
		end := min(start+oa.blockSize, len(input))

		clear(oa.scratch)
		for i, v := range input[start:end] {
			oa.scratch[i] = complex(v, 0)
		}

		if err := oa.plan.Forward(oa.scratch, oa.scratch); err != nil {
			return fmt.Errorf("conv: forward FFT: %w", err)
		}

		for i := range oa.scratch {
			oa.scratch[i] *= oa.kernelFFT[i]
		}

		if err := oa.plan.Inverse(oa.scratch, oa.scratch); err != nil {
			return fmt.Errorf("conv: inverse FFT: %w", err)
		}

		n := min(end-start+oa.kernelLen-1, len(out)-start)
		for i := range n {
			out[start+i] += real(oa.scratch[i])
		}
	}

	return nil
}

// OverlapAddConvolve is a one-shot overlap-add convolution.
func OverlapAddConvolve(signal, kernel []float64) ([]float64, error) {
	oa, err := NewOverlapAdd(kernel, 0)
	if err != nil {
		return nil, err
	}

	return oa.Process(signal)
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	return 1 << bits.Len(uint(n-1))
}
