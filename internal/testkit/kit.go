// Package testkit provides deterministic fixture datasets for curation
// tests: small tables with planted outliers, duplicated molecules and
// stereoisomer groups with known activity cliffs.
package testkit

import (
	"math"
	"math/rand"

	"molcure/domain/dataset"
)

// PlantedOutlierValues returns a small series with obvious extremes at both
// ends and one missing value. Rows 0 and 11 are the planted outliers, row 1
// is NaN.
func PlantedOutlierValues() []float64 {
	return []float64{-5, math.NaN(), 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
}

// BioactivityFixture builds a 12-row dataset with a smiles column, a
// continuous activity column carrying the planted outliers, and a binary
// class column.
func BioactivityFixture() *dataset.Table {
	smiles := dataset.StringColumn{
		"CCO", "CCN", "CCC", "CCCC", "CC(C)O", "CC(C)N",
		"c1ccccc1", "c1ccccc1O", "CCOC", "CCNC", "CCCO", "CCCN",
	}
	activity := dataset.FloatColumn(PlantedOutlierValues())
	class := dataset.FloatColumn{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1}

	t := dataset.NewTable()
	mustSet(t, "smiles", smiles)
	mustSet(t, "activity", activity)
	mustSet(t, "class", class)
	return t
}

// DuplicateFixture builds a dataset where molecules A and B each appear
// twice with different activity readouts, and C appears once.
func DuplicateFixture() *dataset.Table {
	t := dataset.NewTable()
	mustSet(t, "smiles", dataset.StringColumn{"A", "B", "A", "C", "B"})
	mustSet(t, "activity", dataset.FloatColumn{1.0, 2.0, 3.0, 4.0, math.NaN()})
	return t
}

// StereoFixture builds a dataset of stereoisomer groups keyed by a shared
// no-stereo hash. Group g1 is an activity cliff pair (values far apart),
// group g2 is a quiet pair, g3 is a singleton.
func StereoFixture() *dataset.Table {
	t := dataset.NewTable()
	mustSet(t, "MOL_smiles", dataset.StringColumn{
		"C[C@H](N)C(=O)O", "C[C@@H](N)C(=O)O",
		"C[C@H](O)CC", "C[C@@H](O)CC",
		"CC(C)Br",
	})
	mustSet(t, "MOL_molhash_id_no_stereo", dataset.StringColumn{"g1", "g1", "g2", "g2", "g3"})
	mustSet(t, "activity", dataset.FloatColumn{0.1, 95.0, 5.0, 5.2, 7.0})
	mustSet(t, "class", dataset.FloatColumn{0, 1, 1, 1, 0})
	return t
}

// RandomActivities returns n values drawn from a seeded normal distribution
// with planted extremes appended, for detector tests that need more mass
// than the fixed fixtures.
func RandomActivities(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, 0, n+2)
	for i := 0; i < n; i++ {
		out = append(out, rng.NormFloat64())
	}
	out = append(out, 25, -25)
	return out
}

func mustSet(t *dataset.Table, name string, col dataset.Column) {
	if err := t.SetColumn(name, col); err != nil {
		panic(err)
	}
}
