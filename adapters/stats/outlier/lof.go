package outlier

import (
	"fmt"
	"math"
	"sort"
)

// localOutlierFactor compares each point's local density against the density
// of its nearest neighbors; points in sparse regions score above 1 and the
// most extreme contamination fraction is flagged.
type localOutlierFactor struct {
	numNeighbors  int
	contamination float64
}

func newLocalOutlierFactor(kwargs map[string]interface{}) (Scorer, error) {
	k := intArg(kwargs, "n_neighbors", 20)
	if k < 1 {
		return nil, fmt.Errorf("n_neighbors must be at least 1, got %d", k)
	}
	contamination := floatArg(kwargs, "contamination", 0.1)
	if contamination <= 0 || contamination >= 0.5 {
		return nil, fmt.Errorf("contamination must be in (0, 0.5), got %g", contamination)
	}
	return &localOutlierFactor{numNeighbors: k, contamination: contamination}, nil
}

func (l *localOutlierFactor) FitPredict(xs []float64) []int {
	n := len(xs)
	k := l.numNeighbors
	if k > n-1 {
		k = n - 1
	}
	if k < 1 {
		// Too few points to compare densities; everything is an inlier.
		out := make([]int, n)
		for i := range out {
			out[i] = 1
		}
		return out
	}

	neighbors := nearestNeighbors(xs, k)

	// k-distance and local reachability density per point.
	kdist := make([]float64, n)
	for i, nb := range neighbors {
		kdist[i] = math.Abs(xs[i] - xs[nb[len(nb)-1]])
	}
	lrd := make([]float64, n)
	for i, nb := range neighbors {
		var reachSum float64
		for _, j := range nb {
			reach := math.Abs(xs[i] - xs[j])
			if kdist[j] > reach {
				reach = kdist[j]
			}
			reachSum += reach
		}
		if reachSum == 0 {
			lrd[i] = math.Inf(1)
		} else {
			lrd[i] = float64(len(nb)) / reachSum
		}
	}

	scores := make([]float64, n)
	for i, nb := range neighbors {
		var ratioSum float64
		for _, j := range nb {
			if math.IsInf(lrd[i], 1) {
				ratioSum++
			} else {
				ratioSum += lrd[j] / lrd[i]
			}
		}
		scores[i] = ratioSum / float64(len(nb))
	}
	return cutByContamination(scores, l.contamination)
}

// nearestNeighbors finds the k nearest neighbors of every point. The data is
// one-dimensional, so neighbors are found by expanding a window over the
// sorted order.
func nearestNeighbors(xs []float64, k int) [][]int {
	n := len(xs)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return xs[order[a]] < xs[order[b]] })

	pos := make([]int, n) // position of each point in sorted order
	for p, idx := range order {
		pos[idx] = p
	}

	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		p := pos[i]
		lo, hi := p-1, p+1
		nb := make([]int, 0, k)
		for len(nb) < k {
			switch {
			case lo < 0:
				nb = append(nb, order[hi])
				hi++
			case hi >= n:
				nb = append(nb, order[lo])
				lo--
			case xs[i]-xs[order[lo]] <= xs[order[hi]]-xs[i]:
				nb = append(nb, order[lo])
				lo--
			default:
				nb = append(nb, order[hi])
				hi++
			}
		}
		// Order neighbors by distance so the k-th is the farthest.
		sort.Slice(nb, func(a, b int) bool {
			return math.Abs(xs[i]-xs[nb[a]]) < math.Abs(xs[i]-xs[nb[b]])
		})
		neighbors[i] = nb
	}
	return neighbors
}
