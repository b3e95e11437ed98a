package outlier

import (
	"fmt"
	"math"

	"molcure/domain/stats"
)

// zscoreScorer flags points whose absolute (optionally modified) z-score
// exceeds a threshold. This is the one strategy implemented fully in-house.
type zscoreScorer struct {
	threshold   float64
	useModified bool
}

func newZScoreScorer(kwargs map[string]interface{}) (Scorer, error) {
	threshold := floatArg(kwargs, "threshold", 3)
	if threshold <= 0 {
		return nil, fmt.Errorf("threshold must be positive, got %g", threshold)
	}
	return &zscoreScorer{
		threshold:   threshold,
		useModified: boolArg(kwargs, "use_modified_zscore", false),
	}, nil
}

func (s *zscoreScorer) FitPredict(xs []float64) []int {
	var scores []float64
	if s.useModified {
		scores = stats.ModifiedZScores(xs)
	} else {
		scores = stats.ZScores(xs)
	}

	// A zero MAD puts deviant points at +/-Inf, which still compares above
	// the threshold; NaN scores (0/0 at the median itself) never do.
	out := make([]int, len(xs))
	for i, score := range scores {
		if math.Abs(score) > s.threshold {
			out[i] = -1
		} else {
			out[i] = 1
		}
	}
	return out
}
