package curation

import (
	"fmt"
	"sort"

	"molcure/domain/dataset"
	"molcure/domain/report"
	"molcure/domain/stats"
)

// KeepPolicy selects which duplicate survives.
type KeepPolicy string

const (
	KeepFirst KeepPolicy = "first"
	KeepLast  KeepPolicy = "last"
)

// AggMethod selects the statistic used to merge duplicated measurements.
type AggMethod string

const (
	AggMean   AggMethod = "mean"
	AggMedian AggMethod = "median"
)

// Deduplicate resolves duplicated rows. Without aggregate columns it is a
// plain duplicate drop on the key columns, surviving rows in original order.
// With aggregate columns, rows are grouped by the key tuple, each aggregate
// column is reduced to one scalar per group (skipping NaN), and the result
// has one row per distinct key, ordered by key sort order with a fresh
// contiguous index.
func Deduplicate(t *dataset.Table, keyColumns, aggColumns []string, keep KeepPolicy, method AggMethod) (*dataset.Table, error) {
	if keep != KeepFirst && keep != KeepLast {
		return nil, fmt.Errorf("%q is not a valid keep policy, choose from %q or %q", keep, KeepFirst, KeepLast)
	}
	if method != AggMean && method != AggMedian {
		return nil, fmt.Errorf("%q is not a valid aggregation method, choose from %q or %q", method, AggMean, AggMedian)
	}

	if len(aggColumns) == 0 {
		keys := keyColumns
		if len(keys) == 0 {
			keys = t.Columns()
		}
		groups, err := t.GroupBy(keys)
		if err != nil {
			return nil, err
		}
		kept := make([]int, 0, len(groups))
		for _, g := range groups {
			kept = append(kept, keepRow(g, keep))
		}
		sort.Ints(kept)
		out := t.Select(kept)
		out.ResetIndex()
		return out, nil
	}

	if len(keyColumns) == 0 {
		return nil, fmt.Errorf("aggregation requires key columns to group by")
	}
	for _, agg := range aggColumns {
		for _, key := range keyColumns {
			if agg == key {
				return nil, fmt.Errorf("aggregate and key columns must be non-overlapping (%q appears in both)", agg)
			}
		}
	}

	work := t.DeepCopy()
	groups, err := work.GroupBy(keyColumns)
	if err != nil {
		return nil, err
	}

	for _, agg := range aggColumns {
		col, err := work.Floats(agg)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			vals := make([]float64, len(g.Rows))
			for i, r := range g.Rows {
				vals[i] = col[r]
			}
			var merged float64
			if method == AggMean {
				merged = stats.NaNMean(vals)
			} else {
				merged = stats.NaNMedian(vals)
			}
			for _, r := range g.Rows {
				col[r] = merged
			}
		}
	}

	// One row per distinct key, result ordered by key sort order. This is a
	// deliberate ordering contract, not source order.
	dataset.SortGroupsByKey(groups)
	kept := make([]int, 0, len(groups))
	for _, g := range groups {
		kept = append(kept, keepRow(g, keep))
	}
	out := work.Select(kept)
	out.ResetIndex()
	return out, nil
}

func keepRow(g dataset.Group, keep KeepPolicy) int {
	if keep == KeepLast {
		return g.Rows[len(g.Rows)-1]
	}
	return g.Rows[0]
}

// Deduplication merges and removes duplicated molecules from the dataset.
// This is the only action permitted to change the row count.
type Deduplication struct {
	ActionPrefix string `json:"prefix,omitempty"`

	DeduplicateOn []string   `json:"deduplicate_on,omitempty"`
	YCols         []string   `json:"y_cols,omitempty"`
	Keep          KeepPolicy `json:"keep"`
	Method        AggMethod  `json:"method"`
}

// NewDeduplication creates the action with its defaults.
func NewDeduplication() *Deduplication {
	return &Deduplication{Keep: KeepFirst, Method: AggMedian}
}

func (a *Deduplication) Name() string { return "deduplicate" }

func (a *Deduplication) Prefix() string {
	if a.ActionPrefix == "" {
		return defaultPrefix(a.Name())
	}
	return a.ActionPrefix
}

func (a *Deduplication) Validate() error {
	if a.Keep != KeepFirst && a.Keep != KeepLast {
		return fmt.Errorf("deduplicate: %q is not a valid keep policy", a.Keep)
	}
	if a.Method != AggMean && a.Method != AggMedian {
		return fmt.Errorf("deduplicate: %q is not a valid aggregation method", a.Method)
	}
	for _, y := range a.YCols {
		for _, key := range a.DeduplicateOn {
			if y == key {
				return fmt.Errorf("deduplicate: aggregate and key columns must be non-overlapping (%q appears in both)", y)
			}
		}
	}
	return nil
}

func (a *Deduplication) Transform(t *dataset.Table, section *report.Section, opts RunOptions) (*dataset.Table, error) {
	deduped, err := Deduplicate(t, a.DeduplicateOn, a.YCols, a.Keep, a.Method)
	if err != nil {
		return nil, err
	}
	numDuplicates := t.NumRows() - deduped.NumRows()
	section.Logf("Deduplication merged and removed %d duplicated molecules from dataset", numDuplicates)
	return deduped, nil
}
