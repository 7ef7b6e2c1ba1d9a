// Package time computes amplitude statistics of sampled strain.
//
// Missing data is represented as NaN. Every statistic here skips NaN
// samples and reports how many there were and in how many runs, so a
// stretch with gaps still yields meaningful figures for the parts that
// exist.
package time
