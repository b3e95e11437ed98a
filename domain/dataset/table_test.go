package dataset

import (
	"math"
	"testing"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	table := NewTable()
	if err := table.SetColumn("smiles", StringColumn{"A", "B", "A", "C"}); err != nil {
		t.Fatal(err)
	}
	if err := table.SetColumn("y", FloatColumn{1, 2, 3, math.NaN()}); err != nil {
		t.Fatal(err)
	}
	return table
}

func TestSetColumnRejectsLengthMismatch(t *testing.T) {
	table := sampleTable(t)
	if err := table.SetColumn("short", FloatColumn{1, 2}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestColumnAccessorsCheckKind(t *testing.T) {
	table := sampleTable(t)
	if _, err := table.Floats("smiles"); err == nil {
		t.Error("expected kind error reading strings as floats")
	}
	if _, err := table.Strings("missing"); err == nil {
		t.Error("expected error for absent column")
	}
}

func TestDeepCopyIsIndependent(t *testing.T) {
	table := sampleTable(t)
	cp := table.DeepCopy()

	y, _ := cp.Floats("y")
	y[0] = 999

	orig, _ := table.Floats("y")
	if orig[0] != 1 {
		t.Error("deep copy shares backing storage with the original")
	}
}

func TestSelectPreservesIndexValues(t *testing.T) {
	table := sampleTable(t)
	out := table.Select([]int{2, 0})

	idx := out.Index()
	if idx[0] != 2 || idx[1] != 0 {
		t.Errorf("index values not preserved: %v", idx)
	}

	out.ResetIndex()
	idx = out.Index()
	if idx[0] != 0 || idx[1] != 1 {
		t.Errorf("reset index not contiguous: %v", idx)
	}
}

func TestGroupByFirstAppearanceOrder(t *testing.T) {
	table := sampleTable(t)
	groups, err := table.GroupBy([]string{"smiles"})
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	if groups[0].Key[0] != "A" || groups[1].Key[0] != "B" || groups[2].Key[0] != "C" {
		t.Errorf("groups out of first-appearance order: %v", groups)
	}
	if len(groups[0].Rows) != 2 || groups[0].Rows[0] != 0 || groups[0].Rows[1] != 2 {
		t.Errorf("group A rows wrong: %v", groups[0].Rows)
	}
}

func TestSortGroupsByKeyFloatsNaNLast(t *testing.T) {
	groups := []Group{
		{Key: []interface{}{math.NaN()}},
		{Key: []interface{}{2.0}},
		{Key: []interface{}{-1.0}},
	}
	SortGroupsByKey(groups)
	if groups[0].Key[0] != -1.0 || groups[1].Key[0] != 2.0 {
		t.Errorf("numeric keys out of order: %v", groups)
	}
	last := groups[2].Key[0].(float64)
	if !math.IsNaN(last) {
		t.Errorf("NaN key should sort last, got %v", last)
	}
}

func TestColumnsInsertionOrder(t *testing.T) {
	table := sampleTable(t)
	cols := table.Columns()
	if cols[0] != "smiles" || cols[1] != "y" {
		t.Errorf("columns out of insertion order: %v", cols)
	}
}
