// Package spectrum provides FFT-adjacent spectrum-domain utilities.
//
// It wraps algo-fft plans for transforms of arbitrary length (power-of-two
// sizes directly, other sizes through Bluestein's chirp-z algorithm),
// estimates one-sided power spectral densities with Welch's method and
// offers the extraction and interpolation helpers built on them.
package spectrum
