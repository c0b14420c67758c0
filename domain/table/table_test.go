package table

import (
	"testing"

	"gostatcheck/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		columns []Column
		wantErr error
	}{
		{
			name:    "empty name",
			columns: []Column{NumericColumn("", []float64{1})},
			wantErr: core.ErrEmptyColumnName,
		},
		{
			name: "duplicate",
			columns: []Column{
				NumericColumn("a", []float64{1, 2}),
				NumericColumn("a", []float64{3, 4}),
			},
			wantErr: core.ErrDuplicateColumn,
		},
		{
			name: "length mismatch",
			columns: []Column{
				NumericColumn("a", []float64{1, 2}),
				CategoricalColumn("g", []string{"x"}),
			},
			wantErr: core.ErrLengthMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.columns...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAccessorsCopy(t *testing.T) {
	src := []float64{1, 2, 3}
	tbl := MustNew(NumericColumn("a", src))

	src[0] = 100
	got, err := tbl.Numeric("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, got, "constructor must copy input")

	got[1] = 200
	again, err := tbl.Numeric("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, again, "accessor must return a copy")
}

func TestNumericErrors(t *testing.T) {
	tbl := MustNew(
		NumericColumn("a", []float64{1, 2}),
		CategoricalColumn("g", []string{"x", "y"}),
	)

	_, err := tbl.Numeric("missing")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)

	_, err = tbl.Numeric("g")
	assert.ErrorIs(t, err, core.ErrNonNumeric)

	assert.Equal(t, []string{"a"}, tbl.NumericNames())
	assert.Equal(t, []string{"a", "g"}, tbl.Names())
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 2, tbl.Width())
}

func TestPartitionCategorical(t *testing.T) {
	tbl := MustNew(
		NumericColumn("x", []float64{1, 2, 3, 4, 5}),
		CategoricalColumn("grp", []string{"b", "a", "b", "a", "c"}),
	)

	groups, err := tbl.Partition("x", "grp")
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, Group{Label: "a", Values: []float64{2, 4}}, groups[0])
	assert.Equal(t, Group{Label: "b", Values: []float64{1, 3}}, groups[1])
	assert.Equal(t, Group{Label: "c", Values: []float64{5}}, groups[2])
}

func TestPartitionSkipsMissingLabels(t *testing.T) {
	tbl := MustNew(
		NumericColumn("x", []float64{1, 2, 3, 4, 5, 6}),
		CategoricalColumn("g", []string{"a", "a", "b", "b", MissingLabel, MissingLabel}),
	)

	groups, err := tbl.Partition("x", "g")
	require.NoError(t, err)
	assert.Equal(t, []Group{
		{Label: "a", Values: []float64{1, 2}},
		{Label: "b", Values: []float64{3, 4}},
	}, groups)
}

func TestPartitionNumericKeyOrdersNumerically(t *testing.T) {
	tbl := MustNew(
		NumericColumn("x", []float64{1, 2, 3}),
		NumericColumn("dose", []float64{10, 2, 10}),
	)

	groups, err := tbl.Partition("x", "dose")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "2", groups[0].Label)
	assert.Equal(t, "10", groups[1].Label)
	assert.Equal(t, []float64{1, 3}, groups[1].Values)
}

func TestDropAndSelect(t *testing.T) {
	tbl := MustNew(
		NumericColumn("a", []float64{1, 2}),
		NumericColumn("b", []float64{3, 4}),
		CategoricalColumn("g", []string{"x", "y"}),
	)

	dropped, err := tbl.Drop("g")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, dropped.Names())
	assert.Equal(t, 3, tbl.Width(), "source table is unchanged")

	_, err = tbl.Drop("nope")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)

	selected, err := tbl.Select("b", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, selected.Names())
}

func TestWithConstant(t *testing.T) {
	tbl := MustNew(NumericColumn("a", []float64{5, 6, 7}))

	withConst, err := tbl.WithConstant("const")
	require.NoError(t, err)
	assert.Equal(t, []string{"const", "a"}, withConst.Names())

	ones, err := withConst.Numeric("const")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, ones)

	_, err = withConst.WithConstant("a")
	assert.ErrorIs(t, err, core.ErrDuplicateColumn)
}

func TestFingerprint(t *testing.T) {
	a := MustNew(NumericColumn("a", []float64{1, 2}))
	b := MustNew(NumericColumn("a", []float64{1, 2}))
	c := MustNew(NumericColumn("a", []float64{1, 3}))
	d := MustNew(CategoricalColumn("a", []string{"1", "2"}))

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
}
