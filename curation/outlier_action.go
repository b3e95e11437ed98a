package curation

import (
	"fmt"

	"molcure/adapters/stats/outlier"
	"molcure/adapters/viz"
	"molcure/domain/dataset"
	"molcure/domain/report"
)

// OutlierDetection flags potential outliers in one or more columns. Each
// configured column gets a new prefixed tri-state flag column; rows with a
// missing value stay undetermined.
type OutlierDetection struct {
	ActionPrefix string `json:"prefix,omitempty"`

	Method  outlier.Method         `json:"method"`
	Columns []string               `json:"columns"`
	Kwargs  map[string]interface{} `json:"kwargs,omitempty"`
}

// NewOutlierDetection creates the action with its defaults.
func NewOutlierDetection() *OutlierDetection {
	return &OutlierDetection{ActionPrefix: "OUTLIER_"}
}

func (a *OutlierDetection) Name() string { return "outlier_detection" }

func (a *OutlierDetection) Prefix() string {
	if a.ActionPrefix == "" {
		return "OUTLIER_"
	}
	return a.ActionPrefix
}

func (a *OutlierDetection) Validate() error {
	if !a.Method.Valid() {
		return fmt.Errorf("outlier_detection: unknown method %q (choose from %v)", a.Method, outlier.Methods())
	}
	if len(a.Columns) == 0 {
		return fmt.Errorf("outlier_detection: at least one column is required")
	}
	return nil
}

func (a *OutlierDetection) Transform(t *dataset.Table, section *report.Section, opts RunOptions) (*dataset.Table, error) {
	for _, column := range a.Columns {
		values, err := t.Floats(column)
		if err != nil {
			return nil, err
		}

		flags, err := outlier.Detect(values, a.Method, a.Kwargs)
		if err != nil {
			return nil, err
		}

		name := columnName(a.Prefix(), column)
		if err := t.SetColumn(name, dataset.FlagColumn(flags)); err != nil {
			return nil, err
		}

		numOutliers := 0
		for _, f := range flags {
			if f == dataset.FlagTrue {
				numOutliers++
			}
		}

		section.LogNewColumn(name)
		section.Logf("Found %d potential outliers with respect to the %s column for review.", numOutliers, column)
		section.LogImage(viz.DistributionWithOutliers(values, flags, fmt.Sprintf("Probability Plot - %s", column)))
	}
	return t, nil
}
