package coercer

import (
	"testing"

	"gostatcheck/domain/core"
	"gostatcheck/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" -3.5 ", -3.5, true},
		{"1e3", 1000, true},
		{"(125)", -125, true},
		{"$1,234.50", 1234.5, true},
		{"1.234,56", 1234.56, true},
		{"1 234,56", 1234.56, true},
		{"3,5", 3.5, true},
		{"0,125", 0.125, true},
		{"1,234", 0, false},
		{"-12,500", 0, false},
		{"1,234,567", 1234567, true},
		{"12%", 12, true},
		{"€ 7", 7, true},
		{"abc", 0, false},
		{"", 0, false},
		{"Inf", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumeric(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestAnalyzeColumn(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	numeric := c.AnalyzeColumn([]string{"1", "2.5", "NA", "4"})
	assert.Equal(t, table.KindNumeric, numeric.Kind)
	assert.Equal(t, 1, numeric.MissingCount)
	assert.Equal(t, 3, numeric.NumericCount)

	mixed := c.AnalyzeColumn([]string{"1", "north", "3"})
	assert.Equal(t, table.KindCategorical, mixed.Kind)
	assert.InDelta(t, 2.0/3.0, mixed.NumericRatio, 1e-12)

	empty := c.AnalyzeColumn([]string{"", " "})
	assert.Equal(t, table.KindCategorical, empty.Kind)
}

func TestAnalyzeColumnRespectsThreshold(t *testing.T) {
	cfg := DefaultCoercionConfig()
	cfg.NumericThreshold = 0.6
	c := NewTypeCoercer(cfg)

	assert.Equal(t, table.KindNumeric, c.AnalyzeColumn([]string{"1", "x", "3"}).Kind)
}

func TestBuildColumn(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	col, analysis, err := c.BuildColumn("height", []string{"1,5", "2", "(3)"})
	require.NoError(t, err)
	assert.Equal(t, table.KindNumeric, analysis.Kind)
	tbl := table.MustNew(col)
	values, err := tbl.Numeric("height")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2, -3}, values)

	col, _, err = c.BuildColumn("region", []string{"  North  east", "South"})
	require.NoError(t, err)
	labels, err := table.MustNew(col).Labels("region")
	require.NoError(t, err)
	assert.Equal(t, []string{"North east", "South"}, labels)
}

func TestBuildColumnMissingNumericNamesFeature(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	_, _, err := c.BuildColumn("weight", []string{"1", "", "3"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNonFinite)
	feature, ok := core.FailedFeature(err)
	assert.True(t, ok)
	assert.Equal(t, "weight", feature)
	assert.Contains(t, err.Error(), "row 2")
}

func TestBuildColumnUnparseableBelowThreshold(t *testing.T) {
	cfg := DefaultCoercionConfig()
	cfg.NumericThreshold = 0.5
	c := NewTypeCoercer(cfg)

	_, _, err := c.BuildColumn("score", []string{"1", "2", "high"})
	assert.ErrorIs(t, err, core.ErrNonNumeric)
}

func TestBuildColumnAmbiguousThousandsIsNotNumeric(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	col, analysis, err := c.BuildColumn("revenue", []string{"1,234", "2,500", "980"})
	require.NoError(t, err)
	assert.Equal(t, table.KindCategorical, analysis.Kind)
	assert.Equal(t, table.KindCategorical, col.Kind())
}

func TestBuildColumnMissingLabels(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	col, analysis, err := c.BuildColumn("group", []string{"a", "", "NA", " b "})
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.MissingCount)
	labels, err := table.MustNew(col).Labels("group")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", table.MissingLabel, table.MissingLabel, "b"}, labels)
}
