package curation

import (
	"math"
	"strings"
	"testing"

	"molcure/adapters/molecule/heuristic"
	"molcure/domain/dataset"
	"molcure/domain/report"
	"molcure/internal/testkit"
)

func TestStereoCliffsRegressionTarget(t *testing.T) {
	table := testkit.StereoFixture()

	out, err := DetectStereoisomerActivityCliffs(table, "MOL_molhash_id_no_stereo", []string{"activity"}, 2.0, "AC_")
	if err != nil {
		t.Fatal(err)
	}

	flags, err := out.Flags("AC_activity")
	if err != nil {
		t.Fatal(err)
	}
	// g1 (rows 0,1) spans 0.1 vs 95.0: a cliff. g2 (rows 2,3) is quiet.
	// g3 (row 4) is a singleton, which cannot be judged.
	want := dataset.FlagColumn{
		dataset.FlagTrue, dataset.FlagTrue,
		dataset.FlagFalse, dataset.FlagFalse,
		dataset.FlagUndetermined,
	}
	for i := range want {
		if flags[i] != want[i] {
			t.Errorf("row %d: got %s, want %s", i, flags[i], want[i])
		}
	}
}

func TestStereoCliffsClassificationTarget(t *testing.T) {
	table := testkit.StereoFixture()

	out, err := DetectStereoisomerActivityCliffs(table, "MOL_molhash_id_no_stereo", []string{"class"}, 2.0, "AC_")
	if err != nil {
		t.Fatal(err)
	}

	flags, err := out.Flags("AC_class")
	if err != nil {
		t.Fatal(err)
	}
	// g1 holds both labels, g2 holds one, g3 is a singleton.
	want := dataset.FlagColumn{
		dataset.FlagTrue, dataset.FlagTrue,
		dataset.FlagFalse, dataset.FlagFalse,
		dataset.FlagUndetermined,
	}
	for i := range want {
		if flags[i] != want[i] {
			t.Errorf("row %d: got %s, want %s", i, flags[i], want[i])
		}
	}
}

func TestStereoCliffsAllNaNGroupIsUndetermined(t *testing.T) {
	table := dataset.NewTable()
	_ = table.SetColumn("group", dataset.StringColumn{"g", "g", "h", "h"})
	_ = table.SetColumn("y", dataset.FloatColumn{math.NaN(), math.NaN(), 0.5, 0.6})

	out, err := DetectStereoisomerActivityCliffs(table, "group", []string{"y"}, 2.0, "AC_")
	if err != nil {
		t.Fatal(err)
	}
	flags, _ := out.Flags("AC_y")
	if flags[0] != dataset.FlagUndetermined || flags[1] != dataset.FlagUndetermined {
		t.Errorf("all-NaN group should be undetermined, got %v %v", flags[0], flags[1])
	}
}

func TestStereoCliffsRejectsUnknownTargetType(t *testing.T) {
	table := dataset.NewTable()
	_ = table.SetColumn("group", dataset.StringColumn{"g", "g"})
	_ = table.SetColumn("y", dataset.FloatColumn{math.NaN(), math.NaN()})

	if _, err := DetectStereoisomerActivityCliffs(table, "group", []string{"y"}, 2.0, "AC_"); err == nil {
		t.Fatal("expected error for a target with no usable values")
	}
}

func TestStereoACActionReportsCliffsAndImage(t *testing.T) {
	action := NewStereoisomerACDetection()
	action.YCols = []string{"activity"}
	action.SetRenderer(heuristic.NewRenderer())
	if err := action.Validate(); err != nil {
		t.Fatal(err)
	}

	rep := report.New()
	section := rep.StartSection(action.Name())
	_, err := action.Transform(testkit.StereoFixture(), section, RunOptions{})
	section.End()
	if err != nil {
		t.Fatal(err)
	}

	joined := strings.Join(section.Logs, "\n")
	if !strings.Contains(joined, "Found 2 activity cliffs among stereoisomers with respect to the activity column.") {
		t.Errorf("missing cliff count log: %v", section.Logs)
	}
	if !strings.Contains(joined, "The molecule index are :") {
		t.Errorf("missing molecule index log: %v", section.Logs)
	}
	if len(section.Images) != 1 {
		t.Errorf("expected one rendered grid, got %d images", len(section.Images))
	}
}

func TestStereoACActionGridOrderedByIsomerGroup(t *testing.T) {
	// Row order interleaves the groups; the grid must bring the isomers of
	// a base structure back together by sorting on the id column.
	table := dataset.NewTable()
	_ = table.SetColumn("MOL_smiles", dataset.StringColumn{"CC", "CCC", "CN", "CCN"})
	_ = table.SetColumn("MOL_molhash_id_no_stereo", dataset.StringColumn{"z", "z", "a", "a"})
	_ = table.SetColumn("class", dataset.FloatColumn{0, 1, 0, 1})

	action := NewStereoisomerACDetection()
	action.YCols = []string{"class"}
	action.SetRenderer(heuristic.NewRenderer())

	rep := report.New()
	section := rep.StartSection(action.Name())
	_, err := action.Transform(table, section, RunOptions{})
	section.End()
	if err != nil {
		t.Fatal(err)
	}

	joined := strings.Join(section.Logs, "\n")
	if !strings.Contains(joined, "The molecule index are : 2 ,3 ,0 ,1") {
		t.Errorf("grid rows not ordered by isomer group: %v", section.Logs)
	}
}

func TestStereoACActionNoCliffs(t *testing.T) {
	table := dataset.NewTable()
	_ = table.SetColumn("MOL_smiles", dataset.StringColumn{"CC", "CC"})
	_ = table.SetColumn("MOL_molhash_id_no_stereo", dataset.StringColumn{"g", "g"})
	_ = table.SetColumn("activity", dataset.FloatColumn{1.0, 1.1})

	action := NewStereoisomerACDetection()
	action.YCols = []string{"activity"}
	action.SetRenderer(heuristic.NewRenderer())

	rep := report.New()
	section := rep.StartSection(action.Name())
	_, err := action.Transform(table, section, RunOptions{})
	section.End()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(strings.Join(section.Logs, "\n"), "Found no activity cliffs") {
		t.Errorf("missing no-cliff log: %v", section.Logs)
	}
	if len(section.Images) != 0 {
		t.Errorf("no image expected without cliffs, got %d", len(section.Images))
	}
}
