package curation

import (
	"fmt"
	"math"
	"sort"

	"molcure/adapters/viz"
	"molcure/domain/dataset"
	"molcure/domain/report"
)

// LabelOrder controls which side of the thresholds gets the low class labels.
type LabelOrder string

const (
	LabelAscending  LabelOrder = "ascending"
	LabelDescending LabelOrder = "descending"
)

// Discretize maps continuous values to ordinal class labels by right-closed
// binning against sorted ascending thresholds: the ascending label of x is
// the index of the first threshold >= x, or len(thresholds) when x is above
// them all. Descending order mirrors the labels (K - ascending), which for a
// single threshold is exactly the binary complement. NaN values pass through
// as NaN when allowNaN is set and are rejected otherwise.
func Discretize(xs []float64, thresholds []float64, allowNaN bool, order LabelOrder) ([]float64, error) {
	if order != LabelAscending && order != LabelDescending {
		return nil, fmt.Errorf("%q is not a valid label_order, choose from %q or %q", order, LabelAscending, LabelDescending)
	}
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("at least one threshold is required")
	}
	if !sort.Float64sAreSorted(thresholds) {
		return nil, fmt.Errorf("thresholds must be sorted in ascending order")
	}

	k := float64(len(thresholds))
	out := make([]float64, len(xs))
	for i, x := range xs {
		if math.IsNaN(x) {
			if !allowNaN {
				return nil, fmt.Errorf("input contains NaN at position %d and allow_nan is false", i)
			}
			out[i] = math.NaN()
			continue
		}
		label := k
		for j, t := range thresholds {
			if x <= t {
				label = float64(j)
				break
			}
		}
		if order == LabelDescending {
			label = k - label
		}
		out[i] = label
	}
	return out, nil
}

// Discretization thresholds a continuous bioactivity column into ordinal
// class labels, written to a new prefixed column.
type Discretization struct {
	ActionPrefix string `json:"prefix,omitempty"`

	InputColumn string     `json:"input_column"`
	Thresholds  []float64  `json:"thresholds"`
	AllowNaN    bool       `json:"allow_nan"`
	LabelOrder  LabelOrder `json:"label_order"`
	LogScale    bool       `json:"log_scale,omitempty"`
}

// NewDiscretization creates the action with its defaults.
func NewDiscretization() *Discretization {
	return &Discretization{
		ActionPrefix: "CLS_",
		AllowNaN:     true,
		LabelOrder:   LabelAscending,
	}
}

func (a *Discretization) Name() string { return "discretize" }

func (a *Discretization) Prefix() string {
	if a.ActionPrefix == "" {
		return "CLS_"
	}
	return a.ActionPrefix
}

// Provides declares the thresholds side channel consumed by a later
// Distribution step.
func (a *Discretization) Provides() []ContextKey {
	return []ContextKey{DiscretizationThresholdsKey(a.InputColumn)}
}

func (a *Discretization) Validate() error {
	if a.InputColumn == "" {
		return fmt.Errorf("discretize: input_column is required")
	}
	if len(a.Thresholds) == 0 {
		return fmt.Errorf("discretize: at least one threshold is required")
	}
	if !sort.Float64sAreSorted(a.Thresholds) {
		return fmt.Errorf("discretize: thresholds must be sorted in ascending order")
	}
	if a.LabelOrder != LabelAscending && a.LabelOrder != LabelDescending {
		return fmt.Errorf("discretize: %q is not a valid label_order", a.LabelOrder)
	}
	return nil
}

func (a *Discretization) Transform(t *dataset.Table, section *report.Section, opts RunOptions) (*dataset.Table, error) {
	values, err := t.Floats(a.InputColumn)
	if err != nil {
		return nil, err
	}

	labels, err := Discretize(values, a.Thresholds, a.AllowNaN, a.LabelOrder)
	if err != nil {
		return nil, err
	}

	if opts.Context != nil {
		if err := opts.Context.Publish(DiscretizationThresholdsKey(a.InputColumn), append([]float64(nil), a.Thresholds...)); err != nil {
			return nil, err
		}
	}

	section.LogImage(viz.ContinuousDistribution(values, a.Thresholds, a.LogScale, fmt.Sprintf("Data distribution - %s", a.InputColumn)))

	name := columnName(a.Prefix(), a.InputColumn)
	if err := t.SetColumn(name, dataset.FloatColumn(labels)); err != nil {
		return nil, err
	}
	section.LogNewColumn(name)
	return t, nil
}
