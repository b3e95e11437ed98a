package outlier

import (
	"fmt"
	"math"
	"math/rand"
)

// isolationForest isolates points with random interval splits; anomalous
// points need fewer splits and receive higher scores. Decisions follow the
// shared contamination cut.
type isolationForest struct {
	numTrees      int
	sampleSize    int
	contamination float64
	rng           *rand.Rand
}

func newIsolationForest(kwargs map[string]interface{}) (Scorer, error) {
	contamination := floatArg(kwargs, "contamination", 0.1)
	if contamination <= 0 || contamination >= 0.5 {
		return nil, fmt.Errorf("contamination must be in (0, 0.5), got %g", contamination)
	}
	return &isolationForest{
		numTrees:      intArg(kwargs, "n_estimators", 100),
		sampleSize:    intArg(kwargs, "max_samples", 256),
		contamination: contamination,
		// Fixed default seed: curation runs must be reproducible.
		rng: rand.New(rand.NewSource(int64(intArg(kwargs, "random_state", 42)))),
	}, nil
}

type isoNode struct {
	split       float64
	left, right *isoNode
	size        int
}

func (f *isolationForest) FitPredict(xs []float64) []int {
	n := len(xs)
	sample := f.sampleSize
	if sample > n {
		sample = n
	}

	trees := make([]*isoNode, f.numTrees)
	maxDepth := int(math.Ceil(math.Log2(float64(sample)))) + 1
	for t := range trees {
		sub := make([]float64, sample)
		for i := range sub {
			sub[i] = xs[f.rng.Intn(n)]
		}
		trees[t] = f.buildTree(sub, 0, maxDepth)
	}

	scores := make([]float64, n)
	norm := averagePathLength(sample)
	for i, x := range xs {
		var total float64
		for _, tree := range trees {
			total += pathLength(tree, x, 0)
		}
		mean := total / float64(len(trees))
		scores[i] = math.Pow(2, -mean/norm)
	}
	return cutByContamination(scores, f.contamination)
}

func (f *isolationForest) buildTree(xs []float64, depth, maxDepth int) *isoNode {
	lo, hi := minMax(xs)
	if depth >= maxDepth || len(xs) <= 1 || lo == hi {
		return &isoNode{size: len(xs)}
	}
	split := lo + f.rng.Float64()*(hi-lo)
	var left, right []float64
	for _, x := range xs {
		if x < split {
			left = append(left, x)
		} else {
			right = append(right, x)
		}
	}
	return &isoNode{
		split: split,
		left:  f.buildTree(left, depth+1, maxDepth),
		right: f.buildTree(right, depth+1, maxDepth),
		size:  len(xs),
	}
}

func pathLength(node *isoNode, x float64, depth int) float64 {
	if node.left == nil {
		return float64(depth) + averagePathLength(node.size)
	}
	if x < node.split {
		return pathLength(node.left, x, depth+1)
	}
	return pathLength(node.right, x, depth+1)
}

// averagePathLength is c(n), the expected path length of an unsuccessful BST
// search, used to normalize isolation depths.
func averagePathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + 0.5772156649 // harmonic number approximation
	return 2*h - 2*float64(n-1)/float64(n)
}

func minMax(xs []float64) (lo, hi float64) {
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}
