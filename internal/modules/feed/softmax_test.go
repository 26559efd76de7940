package feed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func TestSoftmaxSumsToOne(t *testing.T) {
	vectors := [][]float64{
		{0},
		{1, 2, 3},
		{-5, 0, 5, 5},
		{1e308, -1e308, 5e307},
		{1000, 1001, 999},
		{math.Inf(1), 1, 2},
		{math.NaN(), 3},
	}
	for _, v := range vectors {
		for _, temp := range []float64{1e-6, 0.1, 1, 10, 1e6} {
			p := Softmax(v, temp)
			require.Len(t, p, len(v))
			for _, x := range p {
				require.False(t, math.IsNaN(x), "NaN for %v at T=%v", v, temp)
				require.GreaterOrEqual(t, x, 0.0)
			}
			assert.InDelta(t, 1.0, sum(p), 1e-9, "vector %v T=%v", v, temp)
		}
	}
	assert.Nil(t, Softmax(nil, 1))
}

func TestSoftmaxTemperatureMonotonicity(t *testing.T) {
	scores := []float64{1, 2, 3}

	hot := Softmax(scores, 1e6)
	for _, p := range hot {
		assert.InDelta(t, 1.0/3.0, p, 1e-5)
	}

	cold := Softmax(scores, 1e-3)
	assert.InDelta(t, 1.0, cold[2], 1e-9)

	prev := 0.0
	for _, temp := range []float64{100, 10, 1, 0.1, 0.01} {
		top := Softmax(scores, temp)[2]
		assert.Greater(t, top, prev, "argmax mass should grow as T falls (T=%v)", temp)
		prev = top
	}
}

func TestSoftmaxZeroTemperatureSplitsTies(t *testing.T) {
	p := Softmax([]float64{3, 1, 3}, 0)
	assert.Equal(t, []float64{0.5, 0, 0.5}, p)
}

func TestSoftmaxAllNegativeInfinityIsUniform(t *testing.T) {
	p := Softmax([]float64{math.Inf(-1), math.Inf(-1)}, 1)
	assert.Equal(t, []float64{0.5, 0.5}, p)
}
