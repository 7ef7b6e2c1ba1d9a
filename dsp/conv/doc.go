// Package conv provides linear convolution of real signals.
//
// [Direct] is the O(N*M) time-domain form for short kernels. [OverlapAdd]
// splits long inputs into blocks and convolves each through the FFT, which
// is how whitening filters of several thousand taps are applied to strain.
// [Convolve] picks between them and crops the result to a [Mode]:
//
//	out, err := conv.Convolve(signal, kernel, conv.ModeSame)
package conv
