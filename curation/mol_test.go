package curation

import (
	"math"
	"strings"
	"testing"

	"molcure/adapters/molecule/heuristic"
	"molcure/domain/dataset"
	"molcure/domain/report"
)

func molTestTable(t *testing.T) *dataset.Table {
	t.Helper()
	table := dataset.NewTable()
	if err := table.SetColumn("smiles", dataset.StringColumn{
		"CCO",
		"C[C@H](N)C(=O)O",
		"!!not a molecule!!",
	}); err != nil {
		t.Fatal(err)
	}
	return table
}

func newMolAction() *MoleculeCuration {
	action := NewMoleculeCuration()
	action.InputColumn = "smiles"
	action.SetNormalizer(heuristic.NewNormalizer())
	action.SetRenderer(heuristic.NewRenderer())
	return action
}

func TestMoleculeCurationAnnotatesRows(t *testing.T) {
	action := newMolAction()

	rep := report.New()
	section := rep.StartSection(action.Name())
	out, err := action.Transform(molTestTable(t), section, RunOptions{})
	section.End()
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{
		"MOL_smiles", "MOL_molhash_id", "MOL_molhash_id_no_stereo",
		"MOL_num_stereoisomers", "MOL_num_undefined_stereoisomers",
		"MOL_num_stereo_center", "MOL_num_defined_stereo_center", "MOL_num_undefined_stereo_center",
		"MOL_undefined_E_D", "MOL_undefined_E/Z",
	} {
		if !out.HasColumn(name) {
			t.Errorf("missing column %s", name)
		}
	}

	smiles, _ := out.Strings("MOL_smiles")
	if smiles[0] != "CCO" {
		t.Errorf("row 0 smiles mangled: %s", smiles[0])
	}
	if smiles[2] != "" {
		t.Errorf("invalid row should have empty canonical smiles, got %q", smiles[2])
	}

	defined, _ := out.Floats("MOL_num_defined_stereo_center")
	if defined[1] != 1 {
		t.Errorf("stereo molecule should report 1 defined center, got %g", defined[1])
	}
	if !math.IsNaN(defined[2]) {
		t.Errorf("invalid row should have NaN counts, got %g", defined[2])
	}

	// Two centers give four possible forms, one of them from the single
	// undefined center pair.
	isomers, _ := out.Floats("MOL_num_stereoisomers")
	undefIsomers, _ := out.Floats("MOL_num_undefined_stereoisomers")
	if isomers[1] != 4 || undefIsomers[1] != 2 {
		t.Errorf("stereo molecule isomer counts: got %g / %g, want 4 / 2", isomers[1], undefIsomers[1])
	}
	if isomers[0] != 1 || undefIsomers[0] != 1 {
		t.Errorf("achiral molecule should have a single form, got %g / %g", isomers[0], undefIsomers[0])
	}
	if !math.IsNaN(isomers[2]) {
		t.Errorf("invalid row should have NaN isomer counts, got %g", isomers[2])
	}

	ed, _ := out.Flags("MOL_undefined_E_D")
	ez, _ := out.Flags("MOL_undefined_E/Z")
	if ed[1] != dataset.FlagFalse {
		t.Errorf("molecule with a defined center is not fully undefined, got %s", ed[1])
	}
	if ez[1] != dataset.FlagFalse {
		t.Errorf("molecule with a tetrahedral center has no pure E/Z ambiguity, got %s", ez[1])
	}
	if ed[2] != dataset.FlagUndetermined || ez[2] != dataset.FlagUndetermined {
		t.Errorf("invalid row annotations should be undetermined, got %s / %s", ed[2], ez[2])
	}

	joined := strings.Join(section.Logs, "\n")
	if !strings.Contains(joined, "Couldn't preprocess 1 / 3 molecules.") {
		t.Errorf("missing invalid-count log: %v", section.Logs)
	}
	if !strings.Contains(joined, "Molecules with undefined stereocenter detected: 1.") {
		t.Errorf("missing undefined stereocenter log: %v", section.Logs)
	}
	if len(section.Images) != 1 {
		t.Errorf("expected an undefined-stereocenter grid, got %d images", len(section.Images))
	}
}

func TestMoleculeCurationRemoveStereoCollapsesIdentity(t *testing.T) {
	action := newMolAction()
	action.RemoveStereo = true

	rep := report.New()
	section := rep.StartSection(action.Name())
	out, err := action.Transform(molTestTable(t), section, RunOptions{})
	section.End()
	if err != nil {
		t.Fatal(err)
	}

	hashID, _ := out.Strings("MOL_molhash_id")
	hashNoStereo, _ := out.Strings("MOL_molhash_id_no_stereo")
	if hashID[1] != hashNoStereo[1] {
		t.Error("with stereo removed, both identity hashes should coincide")
	}
	smiles, _ := out.Strings("MOL_smiles")
	if strings.ContainsAny(smiles[1], "@/\\") {
		t.Errorf("stereo markers survived: %s", smiles[1])
	}
	isomers, _ := out.Floats("MOL_num_stereoisomers")
	if isomers[1] != 1 {
		t.Errorf("with stereo removed a single form remains, got %g", isomers[1])
	}
}

func TestMoleculeCurationParallelMatchesSerial(t *testing.T) {
	serial := newMolAction()
	rep := report.New()
	s1 := rep.StartSection("serial")
	outSerial, err := serial.Transform(molTestTable(t), s1, RunOptions{})
	s1.End()
	if err != nil {
		t.Fatal(err)
	}

	parallel := newMolAction()
	s2 := rep.StartSection("parallel")
	outParallel, err := parallel.Transform(molTestTable(t), s2, RunOptions{
		ParallelizedKwargs: map[string]interface{}{"n_jobs": 4},
	})
	s2.End()
	if err != nil {
		t.Fatal(err)
	}

	a, _ := outSerial.Strings("MOL_molhash_id")
	b, _ := outParallel.Strings("MOL_molhash_id")
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("row %d: parallel result diverged", i)
		}
	}
}

func TestMoleculeCurationRequiresNormalizer(t *testing.T) {
	action := NewMoleculeCuration()
	action.InputColumn = "smiles"

	rep := report.New()
	section := rep.StartSection(action.Name())
	_, err := action.Transform(molTestTable(t), section, RunOptions{})
	section.End()
	if err == nil {
		t.Fatal("expected error without a normalizer")
	}
}
