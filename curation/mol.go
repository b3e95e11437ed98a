package curation

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"molcure/domain/dataset"
	"molcure/domain/report"
	"molcure/ports"
)

// MoleculeCuration standardizes the raw molecule column through the
// normalization collaborator and annotates every row with the canonical
// string, structural identity hashes and stereocenter counts. Rows whose
// molecule cannot be normalized keep null annotations and are counted, not
// fatal.
type MoleculeCuration struct {
	ActionPrefix string `json:"prefix,omitempty"`

	InputColumn  string `json:"input_column"`
	RemoveStereo bool   `json:"remove_stereo,omitempty"`

	normalizer ports.MoleculeNormalizer
	renderer   ports.MoleculeRenderer
}

// NewMoleculeCuration creates the action with its defaults.
func NewMoleculeCuration() *MoleculeCuration {
	return &MoleculeCuration{ActionPrefix: "MOL_"}
}

func (a *MoleculeCuration) Name() string { return "mol_curation" }

func (a *MoleculeCuration) Prefix() string {
	if a.ActionPrefix == "" {
		return "MOL_"
	}
	return a.ActionPrefix
}

// SetNormalizer injects the molecule-normalization collaborator.
func (a *MoleculeCuration) SetNormalizer(n ports.MoleculeNormalizer) {
	a.normalizer = n
}

// SetRenderer injects the molecule renderer used for the report image.
func (a *MoleculeCuration) SetRenderer(r ports.MoleculeRenderer) {
	a.renderer = r
}

func (a *MoleculeCuration) Validate() error {
	if a.InputColumn == "" {
		return fmt.Errorf("mol_curation: input_column is required")
	}
	return nil
}

func (a *MoleculeCuration) Transform(t *dataset.Table, section *report.Section, opts RunOptions) (*dataset.Table, error) {
	if a.normalizer == nil {
		return nil, fmt.Errorf("mol_curation: no molecule normalizer configured")
	}

	raw, err := t.Strings(a.InputColumn)
	if err != nil {
		return nil, err
	}

	records, err := a.normalizeAll(raw, opts)
	if err != nil {
		return nil, err
	}

	n := len(records)
	smiles := make(dataset.StringColumn, n)
	hashID := make(dataset.StringColumn, n)
	hashIDNoStereo := make(dataset.StringColumn, n)
	numIsomers := make(dataset.FloatColumn, n)
	numUndefinedIsomers := make(dataset.FloatColumn, n)
	numCenters := make(dataset.FloatColumn, n)
	numDefined := make(dataset.FloatColumn, n)
	numUndefined := make(dataset.FloatColumn, n)
	undefinedED := make(dataset.FlagColumn, n)
	undefinedEZ := make(dataset.FlagColumn, n)

	numInvalid := 0
	for i, rec := range records {
		if !rec.Valid {
			numInvalid++
			numIsomers[i] = math.NaN()
			numUndefinedIsomers[i] = math.NaN()
			numCenters[i] = math.NaN()
			numDefined[i] = math.NaN()
			numUndefined[i] = math.NaN()
			undefinedED[i] = dataset.FlagUndetermined
			undefinedEZ[i] = dataset.FlagUndetermined
			continue
		}
		if a.RemoveStereo {
			// Collapse to the stereo-insensitive form: both identities
			// coincide, a single form remains and the stereocenter counts
			// no longer apply.
			smiles[i] = rec.SmilesNoStereo
			hashID[i] = rec.MolhashIDNoStereo
			hashIDNoStereo[i] = rec.MolhashIDNoStereo
			numIsomers[i] = 1
			numUndefinedIsomers[i] = 1
			continue
		}
		smiles[i] = rec.Smiles
		hashID[i] = rec.MolhashID
		hashIDNoStereo[i] = rec.MolhashIDNoStereo
		numIsomers[i] = float64(rec.NumStereoisomers)
		numUndefinedIsomers[i] = float64(rec.NumUndefinedStereoisomers)
		numCenters[i] = float64(rec.NumStereoCenters)
		numDefined[i] = float64(rec.NumDefinedStereoCenters)
		numUndefined[i] = float64(rec.NumUndefinedStereoCenters)
		undefinedED[i] = dataset.FlagOf(rec.UndefinedED)
		undefinedEZ[i] = dataset.FlagOf(rec.UndefinedEZ)
	}

	columns := []struct {
		base string
		col  dataset.Column
	}{
		{"smiles", smiles},
		{"molhash_id", hashID},
		{"molhash_id_no_stereo", hashIDNoStereo},
		{"num_stereoisomers", numIsomers},
		{"num_undefined_stereoisomers", numUndefinedIsomers},
		{"num_defined_stereo_center", numDefined},
		{"num_undefined_stereo_center", numUndefined},
		{"num_stereo_center", numCenters},
		{"undefined_E_D", undefinedED},
		{"undefined_E/Z", undefinedEZ},
	}
	for _, c := range columns {
		name := columnName(a.Prefix(), c.base)
		if err := t.SetColumn(name, c.col); err != nil {
			return nil, err
		}
		section.LogNewColumn(name)
	}

	if numInvalid > 0 {
		section.Logf("Couldn't preprocess %d / %d molecules.", numInvalid, n)
	}

	a.reportUndefinedStereocenters(t, section)
	return t, nil
}

// normalizeAll runs the per-row normalization as a parallel map. The worker
// count comes from the opaque parallelization kwargs (n_jobs); output order
// matches input order and a per-molecule failure is confined to its record.
func (a *MoleculeCuration) normalizeAll(raw []string, opts RunOptions) ([]ports.MoleculeRecord, error) {
	workers := 1
	if opts.ParallelizedKwargs != nil {
		if v, ok := opts.ParallelizedKwargs["n_jobs"]; ok {
			if f, isFloat := v.(float64); isFloat && f >= 1 {
				workers = int(f)
			} else if i, isInt := v.(int); isInt && i >= 1 {
				workers = i
			}
		}
	}

	records := make([]ports.MoleculeRecord, len(raw))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for i, input := range raw {
		i, input := i, input
		g.Go(func() error {
			records[i] = a.normalizer.Normalize(ctx, input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// reportUndefinedStereocenters flags molecules whose stereochemistry is only
// partially specified; those are the ones worth a manual look before any
// stereo-sensitive analysis.
func (a *MoleculeCuration) reportUndefinedStereocenters(t *dataset.Table, section *report.Section) {
	undefinedCol, err := t.Floats(columnName(a.Prefix(), "num_undefined_stereo_center"))
	if err != nil {
		return
	}
	smilesCol, err := t.Strings(columnName(a.Prefix(), "smiles"))
	if err != nil {
		return
	}
	definedCol, _ := t.Floats(columnName(a.Prefix(), "num_defined_stereo_center"))

	var smiles, legends []string
	for i, u := range undefinedCol {
		if !math.IsNaN(u) && u > 0 {
			smiles = append(smiles, smilesCol[i])
			legends = append(legends, fmt.Sprintf("Undefined: %g\nDefined: %g", u, definedCol[i]))
		}
	}

	section.Logf("Molecules with undefined stereocenter detected: %d.", len(smiles))
	if len(smiles) == 0 || a.renderer == nil {
		return
	}
	img, err := a.renderer.RenderGrid(smiles, legends, "Molecules with undefined stereocenters")
	if err != nil {
		return
	}
	img.Description = fmt.Sprintf(
		"There are %d molecules with undefined stereocenter(s). It's recommended to run ac_stereoisomer and check the stereoisomers and activity cliffs in the dataset.",
		len(smiles))
	section.LogImage(img)
}
