package time

import "math"

// Stats holds amplitude statistics over the finite samples of a signal.
// Positions index the original signal, gaps included.
type Stats struct {
	Length int // all samples
	Valid  int // finite samples
	Gaps   int // NaN samples
	// GapRuns counts maximal runs of consecutive NaN samples.
	GapRuns int

	Mean        float64
	RMS         float64
	StdDev      float64
	Max         float64
	MaxPos      int
	Min         float64
	MinPos      int
	Peak        float64 // max(|Max|, |Min|)
	CrestFactor float64 // Peak / RMS
	Variance    float64
	Skewness    float64
	Kurtosis    float64 // excess
}

// Coverage returns the fraction of samples that are finite.
func (s Stats) Coverage() float64 {
	if s.Length == 0 {
		return 0
	}

	return float64(s.Valid) / float64(s.Length)
}

// Calculate computes all statistics in one pass. Moments use Welford's
// online update for numerical stability at strain amplitudes near 1e-21.
func Calculate(signal []float64) Stats {
	var a Accumulator
	a.Update(signal)

	return a.Result()
}

// RMS returns the root mean square of the finite samples, NaN if none.
func RMS(signal []float64) float64 {
	var sumSq float64

	n := 0
	for _, x := range signal {
		if math.IsNaN(x) {
			continue
		}

		sumSq += x * x
		n++
	}

	if n == 0 {
		return math.NaN()
	}

	return math.Sqrt(sumSq / float64(n))
}

// Peak returns the largest finite absolute value, NaN if none.
func Peak(signal []float64) float64 {
	peak := math.NaN()
	for _, x := range signal {
		if math.IsNaN(x) {
			continue
		}

		if a := math.Abs(x); math.IsNaN(peak) || a > peak {
			peak = a
		}
	}

	return peak
}

// Accumulator gathers statistics across consecutive blocks of one signal.
// Feeding blocks one by one gives the same result as Calculate on their
// concatenation.
type Accumulator struct {
	length int
	n      int
	mean   float64
	m2     float64
	m3     float64
	m4     float64
	sumSq  float64
	maxVal float64
	maxPos int
	minVal float64
	minPos int
	gaps   int
	runs   int
	inGap  bool
}

// Update adds the next block of samples.
func (a *Accumulator) Update(samples []float64) {
	for _, x := range samples {
		pos := a.length
		a.length++

		if math.IsNaN(x) {
			a.gaps++
			if !a.inGap {
				a.runs++
			}

			a.inGap = true

			continue
		}

		a.inGap = false

		a.n++
		ni := float64(a.n)

		delta := x - a.mean
		deltaN := delta / ni
		deltaN2 := deltaN * deltaN
		term1 := delta * deltaN * float64(a.n-1)

		// M4 before M3 before M2.
		a.m4 += term1*deltaN2*(ni*ni-3*ni+3) + 6*deltaN2*a.m2 - 4*deltaN*a.m3
		a.m3 += term1*deltaN*(float64(a.n-1)-1) - 3*deltaN*a.m2
		a.m2 += term1
		a.mean += deltaN

		a.sumSq += x * x

		if a.n == 1 || x > a.maxVal {
			a.maxVal, a.maxPos = x, pos
		}

		if a.n == 1 || x < a.minVal {
			a.minVal, a.minPos = x, pos
		}
	}
}

// Result returns the statistics so far. With no finite samples the
// amplitude fields are NaN and the positions -1.
func (a *Accumulator) Result() Stats {
	s := Stats{
		Length:  a.length,
		Valid:   a.n,
		Gaps:    a.gaps,
		GapRuns: a.runs,
	}

	if a.n == 0 {
		nan := math.NaN()
		s.Mean, s.RMS, s.StdDev = nan, nan, nan
		s.Max, s.Min, s.Peak = nan, nan, nan
		s.CrestFactor, s.Variance = nan, nan
		s.Skewness, s.Kurtosis = nan, nan
		s.MaxPos, s.MinPos = -1, -1

		return s
	}

	nf := float64(a.n)
	s.Mean = a.mean
	s.RMS = math.Sqrt(a.sumSq / nf)
	s.Max, s.MaxPos = a.maxVal, a.maxPos
	s.Min, s.MinPos = a.minVal, a.minPos
	s.Peak = math.Max(math.Abs(a.maxVal), math.Abs(a.minVal))
	s.Variance = a.m2 / nf
	s.StdDev = math.Sqrt(s.Variance)

	if s.RMS > 0 {
		s.CrestFactor = s.Peak / s.RMS
	}

	if s.Variance > 0 {
		s.Skewness = (a.m3 / nf) / (s.Variance * s.StdDev)
		s.Kurtosis = (a.m4/nf)/(s.Variance*s.Variance) - 3
	}

	return s
}

// Reset clears the accumulator for reuse.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}
