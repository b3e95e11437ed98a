package curation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"molcure/domain/dataset"
	"molcure/domain/report"
	"molcure/domain/stats"
	"molcure/ports"
)

// DetectStereoisomerActivityCliffs flags groups of stereoisomers (rows
// sharing groupColumn) whose target values diverge. For continuous targets
// the whole column is converted to modified z-scores once and a group is a
// cliff when its z-score range exceeds the threshold; for classification
// targets a group is a cliff when it holds more than one distinct label.
// Groups of size one are undetermined. One tri-state column per target is
// added, named prefix+target, written by original row position.
func DetectStereoisomerActivityCliffs(t *dataset.Table, groupColumn string, targetColumns []string, threshold float64, prefix string) (*dataset.Table, error) {
	groups, err := t.GroupBy([]string{groupColumn})
	if err != nil {
		return nil, err
	}

	for _, target := range targetColumns {
		ys, err := t.Floats(target)
		if err != nil {
			return nil, err
		}

		isReg, targetType := stats.IsRegression(ys)
		if targetType == stats.TargetUnknown {
			return nil, fmt.Errorf("unsupported target type %q for column %q", targetType, target)
		}

		var zscores []float64
		if isReg {
			// One global pass; groups are compared on the shared scale.
			zscores = stats.ModifiedZScores(ys)
		}

		flags := make(dataset.FlagColumn, t.NumRows())
		for _, g := range groups {
			var flag dataset.Flag
			switch {
			case len(g.Rows) == 1:
				// A single isomer cannot exhibit a cliff against itself.
				flag = dataset.FlagUndetermined
			case isReg:
				flag = regressionCliff(zscores, g.Rows, threshold)
			default:
				flag = classificationCliff(ys, g.Rows)
			}
			for _, row := range g.Rows {
				flags[row] = flag
			}
		}

		if err := t.SetColumn(columnName(prefix, target), flags); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func regressionCliff(zscores []float64, rows []int, threshold float64) dataset.Flag {
	lo, hi := math.Inf(1), math.Inf(-1)
	seen := 0
	for _, r := range rows {
		z := zscores[r]
		if math.IsNaN(z) {
			continue
		}
		seen++
		if z < lo {
			lo = z
		}
		if z > hi {
			hi = z
		}
	}
	if seen == 0 {
		return dataset.FlagUndetermined
	}
	return dataset.FlagOf(hi-lo > threshold)
}

func classificationCliff(ys []float64, rows []int) dataset.Flag {
	labels := make(map[float64]struct{})
	for _, r := range rows {
		if !math.IsNaN(ys[r]) {
			labels[ys[r]] = struct{}{}
		}
	}
	if len(labels) == 0 {
		return dataset.FlagUndetermined
	}
	return dataset.FlagOf(len(labels) > 1)
}

// StereoisomerACDetection detects activity shifts between stereoisomers of
// the same base structure and asks the molecule renderer for a picture of the
// implicated molecules.
type StereoisomerACDetection struct {
	ActionPrefix string `json:"prefix,omitempty"`

	StereoisomerIDCol string   `json:"stereoisomer_id_col"`
	YCols             []string `json:"y_cols"`
	Threshold         float64  `json:"threshold"`
	MolCol            string   `json:"mol_col,omitempty"`

	renderer ports.MoleculeRenderer
}

// NewStereoisomerACDetection creates the action with its defaults.
func NewStereoisomerACDetection() *StereoisomerACDetection {
	return &StereoisomerACDetection{
		StereoisomerIDCol: "MOL_molhash_id_no_stereo",
		Threshold:         2.0,
		MolCol:            "MOL_smiles",
	}
}

func (a *StereoisomerACDetection) Name() string { return "ac_stereoisomer" }

func (a *StereoisomerACDetection) Prefix() string {
	if a.ActionPrefix == "" {
		return "AC_"
	}
	return a.ActionPrefix
}

// SetRenderer injects the molecule renderer used for the report image.
func (a *StereoisomerACDetection) SetRenderer(r ports.MoleculeRenderer) {
	a.renderer = r
}

func (a *StereoisomerACDetection) Validate() error {
	if a.StereoisomerIDCol == "" {
		return fmt.Errorf("ac_stereoisomer: stereoisomer_id_col is required")
	}
	if len(a.YCols) == 0 {
		return fmt.Errorf("ac_stereoisomer: at least one target column is required")
	}
	if a.Threshold <= 0 {
		return fmt.Errorf("ac_stereoisomer: threshold must be positive, got %g", a.Threshold)
	}
	return nil
}

func (a *StereoisomerACDetection) Transform(t *dataset.Table, section *report.Section, opts RunOptions) (*dataset.Table, error) {
	t, err := DetectStereoisomerActivityCliffs(t, a.StereoisomerIDCol, a.YCols, a.Threshold, a.Prefix())
	if err != nil {
		return nil, err
	}

	for _, col := range a.YCols {
		withPrefix := columnName(a.Prefix(), col)
		section.LogNewColumn(withPrefix)

		flags, err := t.Flags(withPrefix)
		if err != nil {
			return nil, err
		}
		cliffRows := make([]int, 0)
		for row, f := range flags {
			if f == dataset.FlagTrue {
				cliffRows = append(cliffRows, row)
			}
		}

		if len(cliffRows) == 0 {
			section.Logf("Found no activity cliffs among stereoisomers with respect to the %s column.", col)
			continue
		}

		section.Logf("Found %d activity cliffs among stereoisomers with respect to the %s column.", len(cliffRows), col)

		if a.MolCol == "" || a.renderer == nil {
			continue
		}
		smilesCol, err := t.Strings(a.MolCol)
		if err != nil {
			return nil, err
		}
		ys, err := t.Floats(col)
		if err != nil {
			return nil, err
		}

		// Order the grid by stereoisomer id so the isomers of a base
		// structure sit next to each other in the image.
		if ids, idErr := t.Strings(a.StereoisomerIDCol); idErr == nil {
			sort.SliceStable(cliffRows, func(i, j int) bool {
				return ids[cliffRows[i]] < ids[cliffRows[j]]
			})
		}

		index := t.Index()
		smiles := make([]string, len(cliffRows))
		legends := make([]string, len(cliffRows))
		indices := make([]string, len(cliffRows))
		for i, row := range cliffRows {
			smiles[i] = smilesCol[row]
			indices[i] = strconv.Itoa(index[row])
			legends[i] = fmt.Sprintf("mol_index: %d\n%s: %s", index[row], col, strconv.FormatFloat(ys[row], 'g', -1, 64))
		}
		section.Logf("The molecule index are : %s", strings.Join(indices, " ,"))

		img, err := a.renderer.RenderGrid(smiles, legends, fmt.Sprintf("Activity shifts among stereoisomers - %s", col))
		if err != nil {
			return nil, err
		}
		section.LogImage(img)
	}
	return t, nil
}
