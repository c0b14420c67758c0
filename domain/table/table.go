// Package table provides the typed, immutable table the assumption checks
// consume: ordered named columns of equal length, each either numeric or
// categorical.
package table

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gostatcheck/domain/core"
)

// Kind is the storage type of a column
type Kind int

const (
	KindNumeric Kind = iota
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is a named vector of either float64 values or string labels.
type Column struct {
	name    string
	kind    Kind
	numeric []float64
	labels  []string
}

// NumericColumn creates a numeric column. The values are copied.
func NumericColumn(name string, values []float64) Column {
	return Column{name: name, kind: KindNumeric, numeric: append([]float64(nil), values...)}
}

// CategoricalColumn creates a column of group labels. The labels are copied.
func CategoricalColumn(name string, labels []string) Column {
	return Column{name: name, kind: KindCategorical, labels: append([]string(nil), labels...)}
}

// Name returns the column name
func (c Column) Name() string { return c.name }

// Kind returns the column kind
func (c Column) Kind() Kind { return c.kind }

// Len returns the number of values in the column
func (c Column) Len() int {
	if c.kind == KindNumeric {
		return len(c.numeric)
	}
	return len(c.labels)
}

// Table is an ordered set of equal-length columns with unique names.
// A Table is never modified after New returns; every accessor hands out copies.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New validates the columns and builds a table. Column order is preserved.
func New(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col.name == "" {
			return nil, fmt.Errorf("column %d: %w", i, core.ErrEmptyColumnName)
		}
		if _, exists := t.index[col.name]; exists {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateColumn, col.name)
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("%w: column %q has %d values, expected %d",
				core.ErrLengthMismatch, col.name, col.Len(), t.rows)
		}
		t.index[col.name] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustNew is like New but panics on invalid input. Intended for fixtures.
func MustNew(columns ...Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns the column names in table order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.name
	}
	return names
}

// NumericNames returns the names of numeric columns in table order
func (t *Table) NumericNames() []string {
	names := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		if col.kind == KindNumeric {
			names = append(names, col.name)
		}
	}
	return names
}

// Len returns the number of rows
func (t *Table) Len() int { return t.rows }

// Width returns the number of columns
func (t *Table) Width() int { return len(t.columns) }

// Has reports whether a column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Kind returns the kind of the named column
func (t *Table) Kind(name string) (Kind, error) {
	col, err := t.column(name)
	if err != nil {
		return 0, err
	}
	return col.kind, nil
}

// Numeric returns a copy of a numeric column's values.
func (t *Table) Numeric(name string) ([]float64, error) {
	col, err := t.column(name)
	if err != nil {
		return nil, err
	}
	if col.kind != KindNumeric {
		return nil, fmt.Errorf("%w: %q is %s", core.ErrNonNumeric, name, col.kind)
	}
	return append([]float64(nil), col.numeric...), nil
}

// Labels returns a column as group labels. Numeric columns are formatted with
// the shortest representation that round-trips, so numeric keys can group too.
func (t *Table) Labels(name string) ([]string, error) {
	col, err := t.column(name)
	if err != nil {
		return nil, err
	}
	if col.kind == KindCategorical {
		return append([]string(nil), col.labels...), nil
	}
	labels := make([]string, len(col.numeric))
	for i, v := range col.numeric {
		labels[i] = formatLabel(v)
	}
	return labels, nil
}

// MissingLabel marks a categorical cell with no value. Rows carrying it
// belong to no group.
const MissingLabel = ""

// Group is the slice of a feature belonging to one group label
type Group struct {
	Label  string
	Values []float64
}

// Partition splits a numeric feature by the distinct labels of the group
// column. Groups are ordered by label (numerically for numeric group columns).
// Rows whose label is MissingLabel are left out.
func (t *Table) Partition(feature, group string) ([]Group, error) {
	values, err := t.Numeric(feature)
	if err != nil {
		return nil, err
	}
	labels, err := t.Labels(group)
	if err != nil {
		return nil, err
	}

	positions := make(map[string]int)
	var groups []Group
	for i, label := range labels {
		if label == MissingLabel {
			continue
		}
		pos, ok := positions[label]
		if !ok {
			pos = len(groups)
			positions[label] = pos
			groups = append(groups, Group{Label: label})
		}
		groups[pos].Values = append(groups[pos].Values, values[i])
	}

	numericKey := t.columns[t.index[group]].kind == KindNumeric
	sort.SliceStable(groups, func(i, j int) bool {
		if numericKey {
			a, _ := strconv.ParseFloat(groups[i].Label, 64)
			b, _ := strconv.ParseFloat(groups[j].Label, 64)
			return a < b
		}
		return groups[i].Label < groups[j].Label
	})
	return groups, nil
}

// Select returns a new table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		col, err := t.column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return New(cols...)
}

// Drop returns a new table without the named columns. Every name must exist.
func (t *Table) Drop(names ...string) (*Table, error) {
	skip := make(map[string]bool, len(names))
	for _, name := range names {
		if !t.Has(name) {
			return nil, core.NewColumnNotFoundError(name)
		}
		skip[name] = true
	}
	cols := make([]Column, 0, len(t.columns))
	for _, col := range t.columns {
		if !skip[col.name] {
			cols = append(cols, col)
		}
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		out.rows = t.rows
	}
	return out, nil
}

// WithConstant returns a new table with a column of ones named name
// prepended, the usual intercept augmentation for regression.
func (t *Table) WithConstant(name string) (*Table, error) {
	ones := make([]float64, t.rows)
	for i := range ones {
		ones[i] = 1
	}
	cols := make([]Column, 0, len(t.columns)+1)
	cols = append(cols, NumericColumn(name, ones))
	cols = append(cols, t.columns...)
	return New(cols...)
}

// Fingerprint hashes names, kinds and values. Two tables with the same
// fingerprint produce identical reports.
func (t *Table) Fingerprint() core.Hash {
	var buf []byte
	var scratch [8]byte
	for _, col := range t.columns {
		buf = append(buf, col.name...)
		buf = append(buf, 0, byte(col.kind))
		switch col.kind {
		case KindNumeric:
			for _, v := range col.numeric {
				binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
				buf = append(buf, scratch[:]...)
			}
		case KindCategorical:
			for _, l := range col.labels {
				buf = append(buf, l...)
				buf = append(buf, 0)
			}
		}
	}
	return core.NewHash(buf)
}

func (t *Table) column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, core.NewColumnNotFoundError(name)
	}
	return t.columns[i], nil
}

func formatLabel(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
