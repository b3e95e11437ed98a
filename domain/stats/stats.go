// Package stats holds the small statistical utilities shared by the curation
// actions: robust z-scoring and regression-vs-classification target typing.
package stats

import (
	"math"

	"github.com/montanaflynn/stats"
)

// ConsistencyCorrection scales the median absolute deviation so that it
// approximates the standard deviation for normally distributed data.
const ConsistencyCorrection = 1.4826

// dropNaN returns the non-NaN values of xs.
func dropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// NaNMedian computes the median of the non-NaN values. Returns NaN when no
// values remain.
func NaNMedian(xs []float64) float64 {
	clean := dropNaN(xs)
	if len(clean) == 0 {
		return math.NaN()
	}
	m, err := stats.Median(clean)
	if err != nil {
		return math.NaN()
	}
	return m
}

// NaNMean computes the mean of the non-NaN values. Returns NaN when no values
// remain.
func NaNMean(xs []float64) float64 {
	clean := dropNaN(xs)
	if len(clean) == 0 {
		return math.NaN()
	}
	m, err := stats.Mean(clean)
	if err != nil {
		return math.NaN()
	}
	return m
}

// MAD computes the median absolute deviation from the median over the non-NaN
// values.
func MAD(xs []float64) float64 {
	median := NaNMedian(xs)
	if math.IsNaN(median) {
		return math.NaN()
	}
	dev := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			dev = append(dev, math.Abs(x-median))
		}
	}
	m, err := stats.Median(dev)
	if err != nil {
		return math.NaN()
	}
	return m
}

// ModifiedZScores computes (x - median) / (1.4826 * MAD) for every element.
// NaN inputs yield NaN outputs. A zero MAD yields +/-Inf scores through IEEE
// division; callers comparing |score| against a threshold then flag those
// points, which is the intended behavior, not an error.
func ModifiedZScores(xs []float64) []float64 {
	median := NaNMedian(xs)
	mad := MAD(xs)
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = (x - median) / (ConsistencyCorrection * mad)
	}
	return out
}

// ZScores computes the standard z-score (x - mean) / stddev for every
// element, NaN-aware like ModifiedZScores.
func ZScores(xs []float64) []float64 {
	clean := dropNaN(xs)
	out := make([]float64, len(xs))
	if len(clean) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	mean, _ := stats.Mean(clean)
	sd, _ := stats.StandardDeviation(clean)
	for i, x := range xs {
		out[i] = (x - mean) / sd
	}
	return out
}

// TargetType classifies a target column to decide between the regression and
// the classification treatment.
type TargetType string

const (
	TargetContinuous TargetType = "continuous"
	TargetBinary     TargetType = "binary"
	TargetMulticlass TargetType = "multiclass"
	TargetUnknown    TargetType = "unknown"
)

// TypeOfTarget infers the target type from the non-NaN values: any fractional
// value makes the column continuous; otherwise the distinct value count
// decides binary (<= 2) versus multiclass. An empty column is unknown, which
// callers treat as a hard error.
func TypeOfTarget(xs []float64) TargetType {
	clean := dropNaN(xs)
	if len(clean) == 0 {
		return TargetUnknown
	}
	distinct := make(map[float64]struct{})
	for _, x := range clean {
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return TargetContinuous
		}
		distinct[x] = struct{}{}
	}
	if len(distinct) <= 2 {
		return TargetBinary
	}
	return TargetMulticlass
}

// IsRegression reports whether the target column should take the regression
// path. Binary and multiclass targets take the classification path; anything
// else is unsupported.
func IsRegression(xs []float64) (bool, TargetType) {
	t := TypeOfTarget(xs)
	return t == TargetContinuous, t
}
