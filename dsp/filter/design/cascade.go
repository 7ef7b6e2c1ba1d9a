package design

import (
	"fmt"
	"math"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/filter/biquad"
)

// ButterworthLP designs a lowpass Butterworth cascade. Odd orders end with
// a first-order section (B2=A2=0). Invalid input yields nil.
func ButterworthLP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	return butterworth(freq, order, sampleRate, Lowpass, firstOrderLP)
}

// ButterworthHP designs a highpass Butterworth cascade.
func ButterworthHP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	return butterworth(freq, order, sampleRate, Highpass, firstOrderHP)
}

// Bandpass cascades a Butterworth highpass at lo with a Butterworth lowpass
// at hi, each of the given order.
func Bandpass(lo, hi float64, order int, sampleRate float64) ([]biquad.Coefficients, error) {
	if order <= 0 {
		return nil, fmt.Errorf("design: bandpass order %d: %w", order, ErrInvalidOrder)
	}

	if _, ok := normalizedW0(lo, sampleRate); !ok {
		return nil, fmt.Errorf("design: bandpass low corner %g Hz at %g Hz: %w", lo, sampleRate, ErrInvalidFrequency)
	}

	if _, ok := normalizedW0(hi, sampleRate); !ok {
		return nil, fmt.Errorf("design: bandpass high corner %g Hz at %g Hz: %w", hi, sampleRate, ErrInvalidFrequency)
	}

	if lo >= hi {
		return nil, fmt.Errorf("design: bandpass %g-%g Hz: %w", lo, hi, ErrInvalidBand)
	}

	sections := ButterworthHP(lo, order, sampleRate)
	sections = append(sections, ButterworthLP(hi, order, sampleRate)...)

	return sections, nil
}

func butterworth(
	freq float64, order int, sampleRate float64,
	second func(freq, q, sampleRate float64) biquad.Coefficients,
	first func(freq, sampleRate float64) biquad.Coefficients,
) []biquad.Coefficients {
	if order <= 0 {
		return nil
	}

	if _, ok := normalizedW0(freq, sampleRate); !ok {
		return nil
	}

	sections := make([]biquad.Coefficients, 0, (order+1)/2)
	for i := order/2 - 1; i >= 0; i-- {
		sections = append(sections, second(freq, butterworthQ(order, i), sampleRate))
	}

	if order%2 != 0 {
		sections = append(sections, first(freq, sampleRate))
	}

	return sections
}

func butterworthQ(order, index int) float64 {
	s := math.Sin(math.Pi * float64(2*index+1) / (2 * float64(order)))
	if s == 0 {
		return defaultQ
	}

	return 1 / (2 * s)
}

func firstOrderLP(freq, sampleRate float64) biquad.Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	return biquad.Coefficients{B0: k * norm, B1: k * norm, A1: (k - 1) * norm}
}

func firstOrderHP(freq, sampleRate float64) biquad.Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	return biquad.Coefficients{B0: norm, B1: -norm, A1: (k - 1) * norm}
}
