// Package outlier implements the outlier-detection strategies behind a single
// fit-predict contract. The zscore strategy is computed in-house on the
// domain statistics; the remaining strategies mirror the decision contract of
// the usual unsupervised outlier libraries: each scores every point and cuts
// at a contamination quantile, reporting -1 for outliers and +1 for inliers.
package outlier

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"molcure/domain/dataset"
)

// Method is the closed set of supported outlier-detection strategies.
type Method string

const (
	MethodIsolationForest    Method = "iso"
	MethodLocalOutlierFactor Method = "lof"
	MethodOneClassSVM        Method = "svm"
	MethodEllipticEnvelope   Method = "ee"
	MethodZScore             Method = "zscore"
)

// Scorer is the uniform fit-predict contract shared by all strategies.
// FitPredict returns one decision per input value: +1 inlier, -1 outlier.
type Scorer interface {
	FitPredict(xs []float64) []int
}

// factory builds a scorer from the opaque keyword arguments carried by the
// workflow document. Unknown keys are ignored; JSON numbers arrive as
// float64.
type factory func(kwargs map[string]interface{}) (Scorer, error)

// registry maps each method tag to its constructor. Assembled here at
// start-up; there is deliberately no dynamic registration.
var registry = map[Method]factory{
	MethodZScore:             newZScoreScorer,
	MethodIsolationForest:    newIsolationForest,
	MethodLocalOutlierFactor: newLocalOutlierFactor,
	MethodEllipticEnvelope:   newEllipticEnvelope,
	MethodOneClassSVM:        newKDEScorer,
}

// Methods returns the supported method tags.
func Methods() []Method {
	out := make([]Method, 0, len(registry))
	for m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Valid reports whether the method tag is known.
func (m Method) Valid() bool {
	_, ok := registry[m]
	return ok
}

// Detect classifies every value of a single column as inlier, outlier or
// undetermined. NaN values are excluded from fitting and scoring and come
// back as FlagUndetermined; the output always has the same length and
// alignment as the input.
func Detect(values []float64, method Method, kwargs map[string]interface{}) ([]dataset.Flag, error) {
	build, ok := registry[method]
	if !ok {
		return nil, fmt.Errorf("unknown outlier detection method %q (choose from %v)", method, Methods())
	}
	scorer, err := build(kwargs)
	if err != nil {
		return nil, fmt.Errorf("outlier method %q: %w", method, err)
	}

	indices := make([]int, 0, len(values))
	clean := make([]float64, 0, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			indices = append(indices, i)
			clean = append(clean, v)
		}
	}

	flags := make([]dataset.Flag, len(values))
	for i := range flags {
		flags[i] = dataset.FlagUndetermined
	}
	if len(clean) == 0 {
		return flags, nil
	}

	decisions := scorer.FitPredict(clean)
	for i, pos := range indices {
		flags[pos] = dataset.FlagOf(decisions[i] == -1)
	}
	return flags, nil
}

// floatArg reads a numeric keyword argument with a default.
func floatArg(kwargs map[string]interface{}, key string, def float64) float64 {
	if v, ok := kwargs[key]; ok {
		switch x := v.(type) {
		case float64:
			return x
		case int:
			return float64(x)
		}
	}
	return def
}

// intArg reads an integer keyword argument with a default.
func intArg(kwargs map[string]interface{}, key string, def int) int {
	return int(floatArg(kwargs, key, float64(def)))
}

// boolArg reads a boolean keyword argument with a default.
func boolArg(kwargs map[string]interface{}, key string, def bool) bool {
	if v, ok := kwargs[key]; ok {
		if b, isBool := v.(bool); isBool {
			return b
		}
	}
	return def
}

// cutByContamination converts anomaly scores (higher = more anomalous) to
// +/-1 decisions by flagging the points above the (1 - contamination)
// quantile.
func cutByContamination(scores []float64, contamination float64) []int {
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)
	cutoff := stat.Quantile(1-contamination, stat.Empirical, sorted, nil)

	out := make([]int, len(scores))
	for i, s := range scores {
		if s > cutoff {
			out[i] = -1
		} else {
			out[i] = 1
		}
	}
	return out
}
