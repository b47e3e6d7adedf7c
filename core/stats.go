package core

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultConfidenceLevels are the levels the report always prints.
var DefaultConfidenceLevels = []float64{0.90, 0.95, 0.99}

// Summary holds the descriptive statistics of a sample.
type Summary struct {
	Count    int     `json:"count" yaml:"count"`
	Mean     float64 `json:"mean" yaml:"mean"`
	Median   float64 `json:"median" yaml:"median"`
	Mode     float64 `json:"mode" yaml:"mode"`
	Variance float64 `json:"variance" yaml:"variance"`
	StdDev   float64 `json:"std_dev" yaml:"std_dev"`
	Min      float64 `json:"min" yaml:"min"`
	Q1       float64 `json:"q1" yaml:"q1"`
	Q3       float64 `json:"q3" yaml:"q3"`
	Max      float64 `json:"max" yaml:"max"`
}

// Interval is a two sided confidence interval around a sample mean.
type Interval struct {
	Level     float64 `json:"level" yaml:"level"`
	Mean      float64 `json:"mean" yaml:"mean"`
	StdErr    float64 `json:"std_err" yaml:"std_err"`
	HalfWidth float64 `json:"half_width" yaml:"half_width"`
	Lo        float64 `json:"lo" yaml:"lo"`
	Hi        float64 `json:"hi" yaml:"hi"`
}

// Contains reports whether v lies in [Lo, Hi].
func (iv Interval) Contains(v float64) bool {
	return v >= iv.Lo && v <= iv.Hi
}

func checkSample(values []float64) error {
	if len(values) < 2 {
		return fmt.Errorf("%w: need at least 2 values, got %d", ErrInsufficientSample, len(values))
	}
	for i, v := range values {
		if !IsFinite(v) {
			return fmt.Errorf("%w: value %d is %v", ErrInvalidInput, i, v)
		}
	}
	return nil
}

// Describe computes mean, median, mode, sample variance and standard deviation
// (n-1 denominator) plus the five number summary used by boxplots.
// Samples with fewer than two values are rejected since their variance is undefined.
func Describe(values []float64) (Summary, error) {
	if err := checkSample(values); err != nil {
		return Summary{}, err
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(values, nil)
	return Summary{
		Count:    len(values),
		Mean:     mean,
		Median:   median(sorted),
		Mode:     mode(sorted),
		Variance: stat.Variance(values, nil),
		StdDev:   std,
		Min:      sorted[0],
		Q1:       stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		Q3:       stat.Quantile(0.75, stat.LinInterp, sorted, nil),
		Max:      sorted[len(sorted)-1],
	}, nil
}

// median of an already sorted, non empty slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// mode returns the most frequent value of a sorted slice. When several values
// share the highest count the smallest of them wins.
func mode(sorted []float64) float64 {
	best, bestCount := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	return best
}

// ConfidenceInterval returns the Student-t interval for the mean of values at
// the given level, using n-1 degrees of freedom and s/sqrt(n) as standard error.
func ConfidenceInterval(values []float64, level float64) (Interval, error) {
	if !(level > 0 && level < 1) {
		return Interval{}, fmt.Errorf("%w: confidence level must be in (0, 1), got %v", ErrInvalidParameter, level)
	}
	if err := checkSample(values); err != nil {
		return Interval{}, err
	}

	n := float64(len(values))
	mean, std := stat.MeanStdDev(values, nil)
	se := stat.StdErr(std, n)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 1}.Quantile(1 - (1-level)/2)
	half := t * se
	if math.IsNaN(half) {
		return Interval{}, fmt.Errorf("%w: could not evaluate t quantile for level %v", ErrInvalidParameter, level)
	}
	return Interval{
		Level:     level,
		Mean:      mean,
		StdErr:    se,
		HalfWidth: half,
		Lo:        mean - half,
		Hi:        mean + half,
	}, nil
}

// ConfidenceIntervals evaluates ConfidenceInterval at every level, in order.
func ConfidenceIntervals(values []float64, levels []float64) ([]Interval, error) {
	out := make([]Interval, 0, len(levels))
	for _, level := range levels {
		iv, err := ConfidenceInterval(values, level)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, nil
}
