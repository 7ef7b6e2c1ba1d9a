package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine returns length samples of a sine at freqHz, starting at
// phase zero.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	w := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(w*float64(i))
	}
	return out
}

// DeterministicNoise returns uniform white noise in [-amplitude, amplitude]
// drawn from a generator seeded with seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, length)
	for i := range out {
		out[i] = amplitude * (2*rng.Float64() - 1)
	}
	return out
}

// SineGaussian returns a glitch-like burst centred on sample index centre:
// a sine at freqHz under a Gaussian envelope with quality factor q.
func SineGaussian(freqHz, q, sampleRate, amplitude float64, centre, length int) []float64 {
	out := make([]float64, length)
	tau := q / (math.Sqrt2 * math.Pi * freqHz)
	for i := range out {
		t := float64(i-centre) / sampleRate
		out[i] = amplitude * math.Exp(-t*t/(tau*tau)) * math.Sin(2*math.Pi*freqHz*t)
	}
	return out
}

// Add returns the element-wise sum of equally long signals.
func Add(signals ...[]float64) []float64 {
	if len(signals) == 0 {
		return nil
	}
	out := make([]float64, len(signals[0]))
	for _, s := range signals {
		for i := range out {
			out[i] += s[i]
		}
	}
	return out
}

// WithGap returns a copy of x with samples [from, to) set to NaN, the way
// missing strain is represented after stitching.
func WithGap(x []float64, from, to int) []float64 {
	out := append([]float64(nil), x...)
	for i := max(from, 0); i < min(to, len(out)); i++ {
		out[i] = math.NaN()
	}
	return out
}
