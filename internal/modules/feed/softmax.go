package feed

import "math"

// Softmax returns exp(x_i/T) / sum_j exp(x_j/T), computed after subtracting
// the max so large inputs cannot overflow. T <= 0 is treated as the zero
// temperature limit: all mass on the argmax, shared between ties.
func Softmax(scores []float64, temperature float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	xs := make([]float64, len(scores))
	maxV := math.Inf(-1)
	for i, s := range scores {
		switch {
		case math.IsNaN(s):
			s = math.Inf(-1)
		case math.IsInf(s, 1):
			s = math.MaxFloat64
		}
		xs[i] = s
		if s > maxV {
			maxV = s
		}
	}
	out := make([]float64, len(xs))
	if math.IsInf(maxV, -1) {
		return uniform(out)
	}
	if temperature <= 0 {
		var ties float64
		for i, x := range xs {
			if x == maxV {
				out[i] = 1
				ties++
			}
		}
		for i := range out {
			out[i] /= ties
		}
		return out
	}

	var sum float64
	for i, x := range xs {
		out[i] = math.Exp((x - maxV) / temperature)
		sum += out[i]
	}
	if !(sum > 0) || math.IsInf(sum, 0) {
		return uniform(out)
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func uniform(out []float64) []float64 {
	w := 1 / float64(len(out))
	for i := range out {
		out[i] = w
	}
	return out
}
