package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// symmetricSample returns n values (n even) with mean exactly `mean` and
// sample standard deviation exactly `sd`.
func symmetricSample(n int, mean, sd float64) []float64 {
	d := sd * math.Sqrt(float64(n-1)/float64(n))
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = mean - d
		} else {
			out[i] = mean + d
		}
	}
	return out
}

func TestDescribe_Basic(t *testing.T) {
	s, err := Describe([]float64{3, 1, 2, 4, 3, 2})
	require.NoError(t, err)

	assert.Equal(t, 6, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, 2.5, s.Median, 1e-12)
	assert.Equal(t, 2.0, s.Mode, "ties resolve to the smallest modal value")
	assert.InDelta(t, 1.1, s.Variance, 1e-12)
	assert.InDelta(t, math.Sqrt(1.1), s.StdDev, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.LessOrEqual(t, s.Q1, s.Median)
	assert.GreaterOrEqual(t, s.Q3, s.Median)
}

func TestDescribe_OddMedianAndSingleMode(t *testing.T) {
	s, err := Describe([]float64{5, 7, 7, 9, 1})
	require.NoError(t, err)
	assert.Equal(t, 7.0, s.Median)
	assert.Equal(t, 7.0, s.Mode)
}

func TestDescribe_InsufficientSample(t *testing.T) {
	_, err := Describe([]float64{4.2})
	assert.ErrorIs(t, err, ErrInsufficientSample)

	_, err = Describe(nil)
	assert.ErrorIs(t, err, ErrInsufficientSample)
}

func TestDescribe_RejectsNaN(t *testing.T) {
	_, err := Describe([]float64{1, math.NaN(), 3})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConfidenceInterval_ReferenceTable(t *testing.T) {
	values := symmetricSample(100, 10, 2)
	s, err := Describe(values)
	require.NoError(t, err)
	require.InDelta(t, 10, s.Mean, 1e-9)
	require.InDelta(t, 2, s.StdDev, 1e-9)

	// t(0.975, 99) = 1.984217 from the Student-t table.
	iv, err := ConfidenceInterval(values, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, iv.StdErr, 1e-9)
	assert.InDelta(t, 1.984217*0.2, iv.HalfWidth, 1e-5)
	assert.InDelta(t, 9.603157, iv.Lo, 1e-5)
	assert.InDelta(t, 10.396843, iv.Hi, 1e-5)
	assert.True(t, iv.Contains(10))
}

func TestConfidenceIntervals_WidenWithLevel(t *testing.T) {
	values := symmetricSample(100, 10, 2)
	ivs, err := ConfidenceIntervals(values, DefaultConfidenceLevels)
	require.NoError(t, err)
	require.Len(t, ivs, 3)

	// t(0.95, 99) = 1.660391, t(0.995, 99) = 2.626405
	assert.InDelta(t, 1.660391*0.2, ivs[0].HalfWidth, 1e-5)
	assert.InDelta(t, 2.626405*0.2, ivs[2].HalfWidth, 1e-5)
	assert.Less(t, ivs[0].HalfWidth, ivs[1].HalfWidth)
	assert.Less(t, ivs[1].HalfWidth, ivs[2].HalfWidth)
}

func TestConfidenceInterval_Errors(t *testing.T) {
	_, err := ConfidenceInterval([]float64{1}, 0.95)
	assert.ErrorIs(t, err, ErrInsufficientSample)

	for _, level := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		_, err := ConfidenceInterval([]float64{1, 2, 3}, level)
		assert.ErrorIs(t, err, ErrInvalidParameter, "level %v", level)
	}
}
