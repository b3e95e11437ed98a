package outlier

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// kdeScorer stands in for a one-class SVM decision function in one dimension:
// it estimates the support of the data with a Gaussian kernel density and
// flags the lowest-density contamination fraction as outside the support.
type kdeScorer struct {
	bandwidth     float64 // 0 = Silverman's rule
	contamination float64
}

func newKDEScorer(kwargs map[string]interface{}) (Scorer, error) {
	// The library analogue exposes nu as the expected outlier fraction.
	contamination := floatArg(kwargs, "nu", floatArg(kwargs, "contamination", 0.1))
	if contamination <= 0 || contamination >= 0.5 {
		return nil, fmt.Errorf("nu must be in (0, 0.5), got %g", contamination)
	}
	return &kdeScorer{
		bandwidth:     floatArg(kwargs, "bandwidth", 0),
		contamination: contamination,
	}, nil
}

func (s *kdeScorer) FitPredict(xs []float64) []int {
	n := len(xs)
	h := s.bandwidth
	if h <= 0 {
		sd, err := stats.StandardDeviation(xs)
		if err != nil || sd == 0 {
			sd = 1
		}
		h = 1.06 * sd * math.Pow(float64(n), -0.2)
	}

	kernel := distuv.UnitNormal
	scores := make([]float64, n)
	for i, x := range xs {
		var density float64
		for _, xj := range xs {
			density += kernel.Prob((x - xj) / h)
		}
		density /= float64(n) * h
		// Low density = anomalous; negate so higher scores mean outlier.
		scores[i] = -math.Log(density + 1e-300)
	}
	return cutByContamination(scores, s.contamination)
}
