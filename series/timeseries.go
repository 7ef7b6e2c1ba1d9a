package series

import (
	"fmt"
	"math"
)

// gridTolerance is the fraction of a sample interval within which a time
// counts as lying on the sample grid.
const gridTolerance = 1e-6

// TimeSeries is a regularly sampled real signal.
type TimeSeries struct {
	// T0 is the GPS time of Data[0].
	T0 float64
	// SampleRate is in samples per second.
	SampleRate float64
	Data       []float64
}

// New returns a TimeSeries over data. The slice is not copied.
func New(t0, sampleRate float64, data []float64) *TimeSeries {
	return &TimeSeries{T0: t0, SampleRate: sampleRate, Data: data}
}

// Len returns the number of samples.
func (ts *TimeSeries) Len() int { return len(ts.Data) }

// DT returns the sample interval in seconds.
func (ts *TimeSeries) DT() float64 { return 1 / ts.SampleRate }

// Duration returns Len()*DT().
func (ts *TimeSeries) Duration() float64 { return float64(len(ts.Data)) / ts.SampleRate }

// End returns the time just past the last sample.
func (ts *TimeSeries) End() float64 { return ts.T0 + ts.Duration() }

// Span returns [T0, End()).
func (ts *TimeSeries) Span() Segment { return Segment{Start: ts.T0, End: ts.End()} }

// TimeAt returns the time of sample i.
func (ts *TimeSeries) TimeAt(i int) float64 {
	return ts.T0 + float64(i)/ts.SampleRate
}

// Times returns the time of every sample.
func (ts *TimeSeries) Times() []float64 {
	out := make([]float64, len(ts.Data))
	for i := range out {
		out[i] = ts.TimeAt(i)
	}

	return out
}

// Copy returns a deep copy.
func (ts *TimeSeries) Copy() *TimeSeries {
	return New(ts.T0, ts.SampleRate, append([]float64(nil), ts.Data...))
}

// Crop returns the samples with start <= t < end. Bounds outside the
// series are clipped to it, so the result may be empty. The result shares
// storage with ts.
func (ts *TimeSeries) Crop(start, end float64) *TimeSeries {
	i0 := ts.ceilIndex(start)
	i1 := ts.ceilIndex(end)

	i0 = min(max(i0, 0), len(ts.Data))
	i1 = min(max(i1, i0), len(ts.Data))

	return New(ts.TimeAt(i0), ts.SampleRate, ts.Data[i0:i1])
}

// ceilIndex returns the first sample index at or after t, treating times
// within gridTolerance of a sample as on it.
func (ts *TimeSeries) ceilIndex(t float64) int {
	pos := (t - ts.T0) * ts.SampleRate
	if math.IsInf(pos, -1) {
		return 0
	}

	if math.IsInf(pos, 1) {
		return len(ts.Data)
	}

	return int(math.Ceil(pos - gridTolerance))
}

// ValueAt returns the sample at exactly time t.
func (ts *TimeSeries) ValueAt(t float64) (float64, error) {
	pos := (t - ts.T0) * ts.SampleRate
	i := math.Round(pos)

	if math.Abs(pos-i) > gridTolerance {
		return 0, fmt.Errorf("series: value at %.6f: %w", t, ErrNotOnGrid)
	}

	if i < 0 || int(i) >= len(ts.Data) {
		return 0, fmt.Errorf("series: value at %.6f not in [%.6f, %.6f): %w", t, ts.T0, ts.End(), ErrOutsideSpan)
	}

	return ts.Data[int(i)], nil
}

// Max returns the largest sample, NaN if any sample is NaN or the series
// is empty.
func (ts *TimeSeries) Max() float64 {
	if len(ts.Data) == 0 {
		return math.NaN()
	}

	best := math.Inf(-1)
	for _, v := range ts.Data {
		if math.IsNaN(v) {
			return math.NaN()
		}

		best = math.Max(best, v)
	}

	return best
}

// HasGap reports whether any sample is NaN.
func (ts *TimeSeries) HasGap() bool {
	for _, v := range ts.Data {
		if math.IsNaN(v) {
			return true
		}
	}

	return false
}

// Detrend returns a copy with the mean removed.
func (ts *TimeSeries) Detrend() *TimeSeries {
	out := ts.Copy()
	if len(out.Data) == 0 {
		return out
	}

	var mean float64
	for _, v := range out.Data {
		mean += v
	}

	mean /= float64(len(out.Data))
	for i := range out.Data {
		out.Data[i] -= mean
	}

	return out
}
