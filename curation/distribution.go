package curation

import (
	"fmt"

	"molcure/adapters/viz"
	"molcure/domain/dataset"
	"molcure/domain/report"
)

// Distribution visualizes one or more continuous distributions. Bins are
// optional: when unset, the thresholds a prior Discretize step published for
// the same column are overlaid if present, and otherwise the histogram falls
// back to its automatic bucketing with no marker lines.
type Distribution struct {
	ActionPrefix string `json:"prefix,omitempty"`

	YCols    []string  `json:"y_cols"`
	LogScale bool      `json:"log_scale,omitempty"`
	Bins     []float64 `json:"bins,omitempty"`
}

// NewDistribution creates the action with its defaults.
func NewDistribution() *Distribution {
	return &Distribution{}
}

func (a *Distribution) Name() string { return "distribution" }

func (a *Distribution) Prefix() string {
	if a.ActionPrefix == "" {
		return defaultPrefix(a.Name())
	}
	return a.ActionPrefix
}

func (a *Distribution) Validate() error {
	if len(a.YCols) == 0 {
		return fmt.Errorf("distribution: at least one column is required")
	}
	return nil
}

func (a *Distribution) Transform(t *dataset.Table, section *report.Section, opts RunOptions) (*dataset.Table, error) {
	for _, col := range a.YCols {
		values, err := t.Floats(col)
		if err != nil {
			return nil, err
		}
		bins := a.Bins
		if len(bins) == 0 && opts.Context != nil {
			if v, ok := opts.Context.Value(DiscretizationThresholdsKey(col)); ok {
				bins = v.([]float64)
			}
		}
		section.LogImage(viz.ContinuousDistribution(values, bins, a.LogScale, fmt.Sprintf("Data distribution - %s", col)))
	}
	return t, nil
}
