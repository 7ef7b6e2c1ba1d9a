package window

import "math"

// Planck returns a Planck-taper window of the given size. The first and
// last samples are zero; nleft and nright samples rise (fall) smoothly
// from zero to one, everything in between is one.
func Planck(size, nleft, nright int) ([]float64, error) {
	if err := validatePlanck(size, nleft, nright); err != nil {
		return nil, err
	}

	w := make([]float64, size)
	for i := range w {
		w[i] = 1
	}

	if nleft > 0 {
		w[0] = 0
		fl := float64(nleft)
		for k := 1; k < nleft; k++ {
			fk := float64(k)
			z := fl * (1/fk + 1/(fk-fl))
			w[k] *= expit(-z)
		}
	}

	if nright > 0 {
		w[size-1] = 0
		fr := float64(nright)
		for k := 1; k < nright; k++ {
			fk := float64(k)
			z := -fr * (1/(fk-fr) + 1/fk)
			w[size-nright+k-1] *= expit(-z)
		}
	}

	return w, nil
}

// expit is the logistic function 1/(1+e^-x).
func expit(x float64) float64 {
	if x < -700 {
		return 0
	}

	return 1 / (1 + math.Exp(-x))
}
