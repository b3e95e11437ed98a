package outlier

import (
	"fmt"

	"molcure/domain/stats"
)

// ellipticEnvelope fits a robust location and scale (median, scaled MAD) and
// scores points by squared standardized distance, the one-dimensional
// analogue of a robust-covariance Mahalanobis envelope.
type ellipticEnvelope struct {
	contamination float64
}

func newEllipticEnvelope(kwargs map[string]interface{}) (Scorer, error) {
	contamination := floatArg(kwargs, "contamination", 0.1)
	if contamination <= 0 || contamination >= 0.5 {
		return nil, fmt.Errorf("contamination must be in (0, 0.5), got %g", contamination)
	}
	return &ellipticEnvelope{contamination: contamination}, nil
}

func (e *ellipticEnvelope) FitPredict(xs []float64) []int {
	center := stats.NaNMedian(xs)
	scale := stats.ConsistencyCorrection * stats.MAD(xs)

	scores := make([]float64, len(xs))
	for i, x := range xs {
		d := x - center
		if scale > 0 {
			d /= scale
		}
		scores[i] = d * d
	}
	return cutByContamination(scores, e.contamination)
}
