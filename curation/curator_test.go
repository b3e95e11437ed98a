package curation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"molcure/domain/dataset"
	"molcure/domain/report"
	"molcure/internal/testkit"
)

const workflowJSON = `{
	"steps": [
		{"name": "deduplicate", "deduplicate_on": ["smiles"], "keep": "first", "method": "median"},
		{"name": "outlier_detection", "method": "zscore", "columns": ["activity"],
		 "kwargs": {"threshold": 4.5, "use_modified_zscore": true}},
		{"name": "discretize", "input_column": "activity", "thresholds": [0.5],
		 "allow_nan": true, "label_order": "ascending"},
		{"name": "distribution", "y_cols": ["activity"]}
	],
	"verbosity": "SILENT"
}`

func TestCuratorJSONRoundTripPreservesSteps(t *testing.T) {
	var c Curator
	if err := json.Unmarshal([]byte(workflowJSON), &c); err != nil {
		t.Fatal(err)
	}
	if len(c.Steps) != 4 {
		t.Fatalf("got %d steps, want 4", len(c.Steps))
	}

	wantOrder := []string{"deduplicate", "outlier_detection", "discretize", "distribution"}
	for i, step := range c.Steps {
		if step.Name() != wantOrder[i] {
			t.Errorf("step %d: got %s, want %s", i, step.Name(), wantOrder[i])
		}
	}

	data, err := json.Marshal(&c)
	if err != nil {
		t.Fatal(err)
	}
	var back Curator
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}

	dedup, ok := back.Steps[0].(*Deduplication)
	if !ok || len(dedup.DeduplicateOn) != 1 || dedup.DeduplicateOn[0] != "smiles" {
		t.Errorf("deduplicate step lost configuration: %+v", back.Steps[0])
	}
	disc, ok := back.Steps[2].(*Discretization)
	if !ok || disc.InputColumn != "activity" || disc.Thresholds[0] != 0.5 {
		t.Errorf("discretize step lost configuration: %+v", back.Steps[2])
	}
	if back.Verbosity != Silent {
		t.Errorf("verbosity lost: %v", back.Verbosity)
	}
}

func TestCuratorAcceptsKeyedStepForm(t *testing.T) {
	doc := `{"steps": [{"deduplicate": {"keep": "last", "method": "mean"}}], "verbosity": "NORMAL"}`
	var c Curator
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		t.Fatal(err)
	}
	dedup, ok := c.Steps[0].(*Deduplication)
	if !ok || dedup.Keep != KeepLast || dedup.Method != AggMean {
		t.Errorf("keyed form decoded wrong: %+v", c.Steps[0])
	}
}

func TestCuratorRejectsUnknownStepTag(t *testing.T) {
	doc := `{"steps": [{"name": "hallucinate"}], "verbosity": "NORMAL"}`
	var c Curator
	err := json.Unmarshal([]byte(doc), &c)
	if err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Fatalf("expected unknown action error, got %v", err)
	}
}

func TestCuratorRejectsInvalidStepConfig(t *testing.T) {
	doc := `{"steps": [{"name": "discretize", "thresholds": [0.5], "label_order": "ascending"}], "verbosity": "NORMAL"}`
	var c Curator
	if err := json.Unmarshal([]byte(doc), &c); err == nil {
		t.Fatal("expected validation error for missing input_column")
	}
}

func TestCuratorRequiresDataset(t *testing.T) {
	c := NewCurator(NewDeduplication())
	c.Verbosity = Silent
	_, _, err := c.Transform(nil)
	if err == nil || !strings.Contains(err.Error(), "source dataset is required") {
		t.Fatalf("expected missing dataset error, got %v", err)
	}
}

func TestCuratorRequiresSteps(t *testing.T) {
	c := NewCurator()
	c.Verbosity = Silent
	_, _, err := c.Transform(testkit.BioactivityFixture())
	if err == nil {
		t.Fatal("expected error for empty step list")
	}
}

func TestCuratorDefaultsVerbosityToNormal(t *testing.T) {
	doc := `{"steps": [{"name": "deduplicate"}]}`
	var c Curator
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		t.Fatal(err)
	}
	if c.Verbosity != Normal {
		t.Errorf("workflow without verbosity decoded to %s, want NORMAL", c.Verbosity)
	}
}

// needsUpstream declares a context dependency and nothing else, so the
// pre-run chain check can be exercised in isolation.
type needsUpstream struct{}

func (needsUpstream) Name() string    { return "needs_upstream" }
func (needsUpstream) Prefix() string  { return "X_" }
func (needsUpstream) Validate() error { return nil }
func (needsUpstream) Requires() []ContextKey {
	return []ContextKey{DiscretizationThresholdsKey("activity")}
}
func (needsUpstream) Transform(t *dataset.Table, section *report.Section, opts RunOptions) (*dataset.Table, error) {
	return t, nil
}

func TestCuratorVerifiesDependencyChain(t *testing.T) {
	c := NewCurator(needsUpstream{})
	c.Verbosity = Silent
	_, _, err := c.Transform(testkit.BioactivityFixture())
	if err == nil || !strings.Contains(err.Error(), "no earlier step provides") {
		t.Fatalf("expected dependency chain error, got %v", err)
	}

	disc := NewDiscretization()
	disc.InputColumn = "activity"
	disc.Thresholds = []float64{0.5}
	satisfied := NewCurator(disc, needsUpstream{})
	satisfied.Verbosity = Silent
	if _, _, err := satisfied.Transform(testkit.BioactivityFixture()); err != nil {
		t.Fatalf("provided chain should pass: %v", err)
	}
}

func TestCuratorBinlessDistributionFallsBackToAutoBins(t *testing.T) {
	dist := NewDistribution()
	dist.YCols = []string{"activity"}

	c := NewCurator(dist)
	c.Verbosity = Silent
	_, rep, err := c.Transform(testkit.BioactivityFixture())
	if err != nil {
		t.Fatalf("bin-less distribution should render on its own: %v", err)
	}
	if len(rep.Sections) != 1 || len(rep.Sections[0].Images) != 1 {
		t.Fatalf("expected one rendered distribution, got %d sections", len(rep.Sections))
	}
}

func TestCuratorMultipleDiscretizeStepsDoNotCollide(t *testing.T) {
	onActivity := NewDiscretization()
	onActivity.InputColumn = "activity"
	onActivity.Thresholds = []float64{0.5}

	onClass := NewDiscretization()
	onClass.InputColumn = "class"
	onClass.Thresholds = []float64{0.5}

	c := NewCurator(onActivity, onClass)
	c.Verbosity = Silent
	curated, _, err := c.Transform(testkit.BioactivityFixture())
	if err != nil {
		t.Fatal(err)
	}
	if !curated.HasColumn("CLS_activity") || !curated.HasColumn("CLS_class") {
		t.Error("both discretized columns should exist")
	}
}

func TestCuratorEndToEnd(t *testing.T) {
	var c Curator
	if err := json.Unmarshal([]byte(workflowJSON), &c); err != nil {
		t.Fatal(err)
	}

	input := testkit.BioactivityFixture()
	curated, rep, err := c.Transform(input)
	if err != nil {
		t.Fatal(err)
	}

	// The input is untouched; the run works on a copy.
	if input.HasColumn("OUTLIER_activity") {
		t.Error("input table was mutated")
	}

	flags, err := curated.Flags("OUTLIER_activity")
	if err != nil {
		t.Fatal(err)
	}
	if flags[0] != dataset.FlagTrue || flags[len(flags)-1] != dataset.FlagTrue {
		t.Error("planted outliers not flagged")
	}
	if flags[1] != dataset.FlagUndetermined {
		t.Errorf("missing value should be undetermined, got %s", flags[1])
	}

	if !curated.HasColumn("CLS_activity") {
		t.Error("discretized column missing")
	}

	if len(rep.Sections) != 4 {
		t.Fatalf("got %d report sections, want 4", len(rep.Sections))
	}
	for i, want := range []string{"deduplicate", "outlier_detection", "discretize", "distribution"} {
		if rep.Sections[i].Title != want {
			t.Errorf("section %d: got %s, want %s", i, rep.Sections[i].Title, want)
		}
	}
	if rep.RunID == "" || rep.ToolVersion == "" {
		t.Error("report metadata missing")
	}
}

func TestCuratorPipelineComposes(t *testing.T) {
	dedup := NewDeduplication()
	dedup.DeduplicateOn = []string{"smiles"}

	disc := NewDiscretization()
	disc.InputColumn = "activity"
	disc.Thresholds = []float64{0.5}

	combined := NewCurator(dedup, disc)
	combined.Verbosity = Silent
	gotCombined, _, err := combined.Transform(testkit.BioactivityFixture())
	if err != nil {
		t.Fatal(err)
	}

	first := NewCurator(dedup)
	first.Verbosity = Silent
	intermediate, _, err := first.Transform(testkit.BioactivityFixture())
	if err != nil {
		t.Fatal(err)
	}
	second := NewCurator(disc)
	second.Verbosity = Silent
	gotStaged, _, err := second.Transform(intermediate)
	if err != nil {
		t.Fatal(err)
	}

	a, _ := gotCombined.Floats("CLS_activity")
	b, _ := gotStaged.Floats("CLS_activity")
	if len(a) != len(b) {
		t.Fatalf("row counts diverged: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] && !(a[i] != a[i] && b[i] != b[i]) {
			t.Errorf("row %d: combined %g vs staged %g", i, a[i], b[i])
		}
	}
}

func TestCuratorPassedDatasetTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.csv")
	if err := os.WriteFile(path, []byte("smiles,activity\nCCO,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	dedup := NewDeduplication()
	c := NewCurator(dedup)
	c.Verbosity = Silent
	c.SrcDatasetPath = path

	curated, _, err := c.Transform(testkit.DuplicateFixture())
	if err != nil {
		t.Fatal(err)
	}
	if curated.NumRows() == 1 {
		t.Error("source path was used despite a passed-in dataset")
	}

	// Without a passed dataset the path is the fallback.
	fromPath, _, err := c.Transform(nil)
	if err != nil {
		t.Fatal(err)
	}
	if fromPath.NumRows() != 1 {
		t.Errorf("got %d rows from source path, want 1", fromPath.NumRows())
	}
}

func TestCuratorFileRoundTrip(t *testing.T) {
	var c Curator
	if err := json.Unmarshal([]byte(workflowJSON), &c); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "workflow.json")
	if err := c.ToJSON(path); err != nil {
		t.Fatal(err)
	}
	back, err := FromJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Steps) != len(c.Steps) {
		t.Fatalf("got %d steps, want %d", len(back.Steps), len(c.Steps))
	}
	for i := range c.Steps {
		if back.Steps[i].Name() != c.Steps[i].Name() {
			t.Errorf("step %d: got %s, want %s", i, back.Steps[i].Name(), c.Steps[i].Name())
		}
	}
}

func TestActionRegistryClosedSet(t *testing.T) {
	names := ActionNames()
	want := []string{"ac_stereoisomer", "deduplicate", "discretize", "distribution", "mol_curation", "outlier_detection"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}

	if _, err := NewAction("nope"); err == nil {
		t.Error("expected error for unregistered action")
	}
}
