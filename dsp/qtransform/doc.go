// Package qtransform computes constant-Q transforms of real time series.
//
// A [Plane] tiles the time-frequency plane for one Q value: frequencies are
// spaced so that the fractional energy loss between neighbouring rows stays
// below a mismatch bound, and each row is split into a power-of-two number
// of time tiles. [Plane.Transform] windows the one-sided spectrum of the
// data with a bisquare window per row and returns a [Gram] of tile energies
// normalised by their median. [Gram.Interpolate] resamples the irregular
// rows onto a regular time by frequency [Map] for display.
//
// The tiling follows the Omega/GWpy construction so that normalised
// energies are directly comparable with other gravitational-wave tools.
package qtransform
