// Package interp provides interpolation primitives and resamplers.
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite
//
// [Uniform] evaluates a uniformly sampled row at arbitrary positions with
// either method, and [Piecewise] does linear interpolation over irregular
// abscissae. Together they map Q-plane tiles onto a regular time/frequency
// grid.
package interp
