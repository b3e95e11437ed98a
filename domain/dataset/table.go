package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the value type held by a column.
type Kind int

const (
	KindFloat Kind = iota
	KindString
	KindFlag
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// Column is one named vector of a table. Concrete types are FloatColumn,
// StringColumn and FlagColumn.
type Column interface {
	Kind() Kind
	Len() int
	clone() Column
	gather(rows []int) Column
}

// FloatColumn holds float64 values; NaN marks a missing value.
type FloatColumn []float64

func (c FloatColumn) Kind() Kind { return KindFloat }
func (c FloatColumn) Len() int   { return len(c) }
func (c FloatColumn) clone() Column {
	out := make(FloatColumn, len(c))
	copy(out, c)
	return out
}
func (c FloatColumn) gather(rows []int) Column {
	out := make(FloatColumn, len(rows))
	for i, r := range rows {
		out[i] = c[r]
	}
	return out
}

// StringColumn holds string values; the empty string marks a missing value.
type StringColumn []string

func (c StringColumn) Kind() Kind { return KindString }
func (c StringColumn) Len() int   { return len(c) }
func (c StringColumn) clone() Column {
	out := make(StringColumn, len(c))
	copy(out, c)
	return out
}
func (c StringColumn) gather(rows []int) Column {
	out := make(StringColumn, len(rows))
	for i, r := range rows {
		out[i] = c[r]
	}
	return out
}

// FlagColumn holds three-valued booleans.
type FlagColumn []Flag

func (c FlagColumn) Kind() Kind { return KindFlag }
func (c FlagColumn) Len() int   { return len(c) }
func (c FlagColumn) clone() Column {
	out := make(FlagColumn, len(c))
	copy(out, c)
	return out
}
func (c FlagColumn) gather(rows []int) Column {
	out := make(FlagColumn, len(rows))
	for i, r := range rows {
		out[i] = c[r]
	}
	return out
}

// Table is a mutable column-oriented table with named columns and a stable
// integer row index. Rows are never reordered implicitly; only explicit row
// selection (e.g. deduplication) changes row count or order.
type Table struct {
	names []string
	cols  map[string]Column
	index []int
}

// NewTable creates an empty table with no columns and no rows.
func NewTable() *Table {
	return &Table{cols: make(map[string]Column)}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.index)
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Index returns the stable row index.
func (t *Table) Index() []int {
	out := make([]int, len(t.index))
	copy(out, t.index)
	return out
}

// SetColumn adds or replaces a column. The first column added determines the
// row count; later columns must match it.
func (t *Table) SetColumn(name string, col Column) error {
	if name == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	if len(t.names) > 0 && col.Len() != t.NumRows() {
		return fmt.Errorf("column %q has %d rows, table has %d", name, col.Len(), t.NumRows())
	}
	if _, exists := t.cols[name]; !exists {
		t.names = append(t.names, name)
		if len(t.names) == 1 {
			t.index = make([]int, col.Len())
			for i := range t.index {
				t.index[i] = i
			}
		}
	}
	t.cols[name] = col
	return nil
}

// Column returns the named column or an error if it is absent.
func (t *Table) Column(name string) (Column, error) {
	col, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found in dataset", name)
	}
	return col, nil
}

// Floats returns the named column as floats.
func (t *Table) Floats(name string) (FloatColumn, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	fc, ok := col.(FloatColumn)
	if !ok {
		return nil, fmt.Errorf("column %q is %s, expected float", name, col.Kind())
	}
	return fc, nil
}

// Strings returns the named column as strings.
func (t *Table) Strings(name string) (StringColumn, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	sc, ok := col.(StringColumn)
	if !ok {
		return nil, fmt.Errorf("column %q is %s, expected string", name, col.Kind())
	}
	return sc, nil
}

// Flags returns the named column as flags.
func (t *Table) Flags(name string) (FlagColumn, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	fc, ok := col.(FlagColumn)
	if !ok {
		return nil, fmt.Errorf("column %q is %s, expected flag", name, col.Kind())
	}
	return fc, nil
}

// Value returns the cell at (name, row) as an interface value.
func (t *Table) Value(name string, row int) (interface{}, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= col.Len() {
		return nil, fmt.Errorf("row %d out of range for column %q", row, name)
	}
	switch c := col.(type) {
	case FloatColumn:
		return c[row], nil
	case StringColumn:
		return c[row], nil
	case FlagColumn:
		return c[row], nil
	default:
		return nil, fmt.Errorf("column %q has unknown kind", name)
	}
}

// DeepCopy returns an independent copy of the table.
func (t *Table) DeepCopy() *Table {
	out := &Table{
		names: append([]string(nil), t.names...),
		cols:  make(map[string]Column, len(t.cols)),
		index: append([]int(nil), t.index...),
	}
	for name, col := range t.cols {
		out.cols[name] = col.clone()
	}
	return out
}

// Select returns a new table containing the given row positions in the given
// order. Index values of the selected rows are preserved.
func (t *Table) Select(rows []int) *Table {
	out := &Table{
		names: append([]string(nil), t.names...),
		cols:  make(map[string]Column, len(t.cols)),
		index: make([]int, len(rows)),
	}
	for i, r := range rows {
		out.index[i] = t.index[r]
	}
	for name, col := range t.cols {
		out.cols[name] = col.gather(rows)
	}
	return out
}

// ResetIndex renumbers the row index to a fresh contiguous 0..n-1 range.
func (t *Table) ResetIndex() {
	for i := range t.index {
		t.index[i] = i
	}
}

// Group is a set of row positions sharing a key tuple.
type Group struct {
	Key  []interface{}
	Rows []int
}

// GroupBy partitions rows by the tuple of values in the given columns.
// Groups appear in order of first appearance, not sorted.
func (t *Table) GroupBy(columns []string) ([]Group, error) {
	for _, name := range columns {
		if _, err := t.Column(name); err != nil {
			return nil, err
		}
	}
	var groups []Group
	seen := make(map[string]int)
	for row := 0; row < t.NumRows(); row++ {
		key := make([]interface{}, len(columns))
		for i, name := range columns {
			v, err := t.Value(name, row)
			if err != nil {
				return nil, err
			}
			key[i] = v
		}
		ks := keyString(key)
		if gi, ok := seen[ks]; ok {
			groups[gi].Rows = append(groups[gi].Rows, row)
			continue
		}
		seen[ks] = len(groups)
		groups = append(groups, Group{Key: key, Rows: []int{row}})
	}
	return groups, nil
}

// SortGroupsByKey orders groups by component-wise key comparison. Floats
// compare numerically with NaN last, everything else by string order.
func SortGroupsByKey(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return compareKeys(groups[i].Key, groups[j].Key) < 0
	})
}

func compareKeys(a, b []interface{}) int {
	for i := range a {
		if i >= len(b) {
			return 1
		}
		if c := compareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	if len(a) < len(b) {
		return -1
	}
	return 0
}

func compareValues(a, b interface{}) int {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		switch {
		case math.IsNaN(af) && math.IsNaN(bf):
			return 0
		case math.IsNaN(af):
			return 1
		case math.IsNaN(bf):
			return -1
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(valueString(a), valueString(b))
}

func keyString(key []interface{}) string {
	parts := make([]string, len(key))
	for i, v := range key {
		parts[i] = valueString(v)
	}
	return strings.Join(parts, "\x1f")
}

func valueString(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	case Flag:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
