package frequency

import (
	"math"
	"sort"
)

// RolloffFraction is the share of band power below the rolloff frequency.
const RolloffFraction = 0.85

// Spectrum is a one-sided amplitude spectral density on a regular grid.
type Spectrum struct {
	F0, DF float64
	Data   []float64
}

// Freq returns the frequency of bin i.
func (s Spectrum) Freq(i int) float64 { return s.F0 + float64(i)*s.DF }

// Stats describes a spectrum over a band. Weighted moments use the power
// (the squared amplitude). NaN bins are skipped.
type Stats struct {
	Bins  int // bins inside the band
	Valid int // finite bins inside the band

	Lo, Hi float64 // first and last bin frequency inside the band

	Peak     float64
	PeakFreq float64
	// Floor is the median amplitude.
	Floor float64

	Centroid float64
	Spread   float64
	// Flatness is the ratio of geometric to arithmetic mean power, 0..1.
	Flatness float64
	// Rolloff is the frequency below which RolloffFraction of the power
	// lies.
	Rolloff float64
	// Bandwidth is the width around the peak where the power stays above
	// half the peak power.
	Bandwidth float64
	// BandRMS integrates the power over the band.
	BandRMS float64
}

// Calculate computes the statistics of s over [lo, hi].
func Calculate(s Spectrum, lo, hi float64) Stats {
	first, last := band(s, lo, hi)
	st := Stats{Peak: math.NaN(), PeakFreq: math.NaN(), Floor: math.NaN()}
	if first > last {
		return st
	}
	st.Bins = last - first + 1
	st.Lo, st.Hi = s.Freq(first), s.Freq(last)

	var (
		sumP, sumFP float64
		sumLog      float64
		zero        bool
		finite      []float64
		peakBin     = -1
	)
	for i := first; i <= last; i++ {
		a := s.Data[i]
		if math.IsNaN(a) {
			continue
		}
		finite = append(finite, a)
		if peakBin < 0 || a > s.Data[peakBin] {
			peakBin = i
		}
		p := a * a
		sumP += p
		sumFP += s.Freq(i) * p
		if p > 0 {
			sumLog += math.Log(p)
		} else {
			zero = true
		}
	}
	st.Valid = len(finite)
	if st.Valid == 0 {
		return st
	}

	st.Peak, st.PeakFreq = s.Data[peakBin], s.Freq(peakBin)
	st.Floor = median(finite)
	st.BandRMS = math.Sqrt(sumP * s.DF)
	if sumP == 0 {
		return st
	}

	st.Centroid = sumFP / sumP
	var sumSpread float64
	for i := first; i <= last; i++ {
		if a := s.Data[i]; !math.IsNaN(a) {
			d := s.Freq(i) - st.Centroid
			sumSpread += d * d * a * a
		}
	}
	st.Spread = math.Sqrt(sumSpread / sumP)

	if !zero {
		n := float64(st.Valid)
		st.Flatness = math.Exp(sumLog/n) / (sumP / n)
	}
	st.Rolloff = rolloff(s, first, last, RolloffFraction*sumP)
	st.Bandwidth = bandwidth(s, first, last, peakBin)
	return st
}

// band returns the first and last bin inside [lo, hi].
func band(s Spectrum, lo, hi float64) (int, int) {
	if s.DF <= 0 || len(s.Data) == 0 || hi < lo {
		return 0, -1
	}
	first := max(0, int(math.Ceil((lo-s.F0)/s.DF-1e-9)))
	last := min(len(s.Data)-1, int(math.Floor((hi-s.F0)/s.DF+1e-9)))
	return first, last
}

func rolloff(s Spectrum, first, last int, threshold float64) float64 {
	var cum float64
	for i := first; i <= last; i++ {
		if a := s.Data[i]; !math.IsNaN(a) {
			cum += a * a
			if cum >= threshold {
				return s.Freq(i)
			}
		}
	}
	return s.Freq(last)
}

// bandwidth walks out from the peak to the half-power points on either
// side, interpolating between bins. NaN bins end the walk.
func bandwidth(s Spectrum, first, last, peak int) float64 {
	half := s.Data[peak] * s.Data[peak] / 2
	power := func(i int) float64 { return s.Data[i] * s.Data[i] }

	lower := s.Freq(first)
	for i := peak; i > first; i-- {
		if math.IsNaN(s.Data[i-1]) {
			lower = s.Freq(i)
			break
		}
		if power(i-1) <= half {
			lower = crossing(s.Freq(i-1), s.Freq(i), power(i-1), power(i), half)
			break
		}
	}
	upper := s.Freq(last)
	for i := peak; i < last; i++ {
		if math.IsNaN(s.Data[i+1]) {
			upper = s.Freq(i)
			break
		}
		if power(i+1) <= half {
			upper = crossing(s.Freq(i), s.Freq(i+1), power(i), power(i+1), half)
			break
		}
	}
	return max(upper-lower, 0)
}

func crossing(f0, f1, p0, p1, level float64) float64 {
	if p1 == p0 {
		return (f0 + f1) / 2
	}
	return f0 + (level-p0)/(p1-p0)*(f1-f0)
}

func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
