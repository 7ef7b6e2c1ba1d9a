// Package series holds regularly sampled strain and its spectral products.
//
// A [TimeSeries] carries its start time and sample rate alongside the
// samples, so cropping, value lookup and every transform keep track of
// absolute GPS time. Missing data is NaN; operations that cannot cope
// with gaps either propagate NaN (ASD, filtering, whitening) or report
// qtransform.ErrNonFinite (Q-transform), which lets callers detect
// proximity to a gap by inspecting the result.
//
// [FrequencySeries] and [Spectrogram] are the frequency-domain results,
// and [Segment], [SegmentList] and [Flag] describe data availability.
package series
