package assumptions

import (
	"encoding/json"
	"math"
	"testing"

	"gostatcheck/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyNormality(t *testing.T) {
	assert.Equal(t, NormalityPass, ClassifyNormality(0.2, 0.05))
	assert.Equal(t, NormalityFail, ClassifyNormality(0.05, 0.05), "threshold itself fails")
	assert.Equal(t, NormalityFail, ClassifyNormality(0.01, 0.05))
}

func TestClassifyHomogeneity(t *testing.T) {
	assert.Equal(t, Homogeneous, ClassifyHomogeneity(0.5, 0.05))
	assert.Equal(t, NotHomogeneous, ClassifyHomogeneity(0.05, 0.05))
}

func TestClassifyVIF(t *testing.T) {
	tests := []struct {
		vif  float64
		want CollinearityLevel
	}{
		{1, CollinearityNone},
		{1 + 1e-12, CollinearityNone},
		{1.0001, CollinearityModerate},
		{4.999, CollinearityModerate},
		{5, CollinearityHigh},
		{9.99, CollinearityHigh},
		{10, CollinearitySignificant},
		{250, CollinearitySignificant},
		{math.Inf(1), CollinearitySignificant},
		{math.NaN(), CollinearitySignificant},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyVIF(tt.vif), "vif=%v", tt.vif)
	}
}

func TestParseSortKey(t *testing.T) {
	key, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortByPValue, key)

	key, err = ParseSortKey("statistics")
	require.NoError(t, err)
	assert.Equal(t, SortByStatistic, key)

	_, err = ParseSortKey("median")
	assert.ErrorIs(t, err, core.ErrUnknownSortKey)
}

func TestParseCenter(t *testing.T) {
	c, err := ParseCenter("")
	require.NoError(t, err)
	assert.Equal(t, CenterMedian, c)

	c, err = ParseCenter("Mean")
	require.NoError(t, err)
	assert.Equal(t, CenterMean, c)

	_, err = ParseCenter("mode")
	assert.ErrorIs(t, err, core.ErrInvalidOption)
}

func TestValidateAlpha(t *testing.T) {
	assert.NoError(t, ValidateAlpha(0.05))
	for _, bad := range []float64{0, 1, -0.1, 2, math.NaN()} {
		assert.ErrorIs(t, ValidateAlpha(bad), core.ErrInvalidOption, "alpha=%v", bad)
	}
}

func TestNormalityReportSort(t *testing.T) {
	report := &NormalityReport{Rows: []NormalityRow{
		{Feature: "c", Statistic: 0.90, PValue: 0.30, Verdict: NormalityPass},
		{Feature: "a", Statistic: 0.80, PValue: 0.01, Verdict: NormalityFail},
		{Feature: "b", Statistic: 0.95, PValue: 0.30, Verdict: NormalityPass},
	}}

	require.NoError(t, report.Sort(SortByPValue))
	assert.Equal(t, []string{"a", "c", "b"}, features(report), "stable on ties")

	require.NoError(t, report.Sort(SortByFeature))
	assert.Equal(t, []string{"a", "b", "c"}, features(report))

	require.NoError(t, report.Sort(SortByStatistic))
	assert.Equal(t, []string{"a", "c", "b"}, features(report))

	require.NoError(t, report.Sort(SortByVerdict))
	assert.Equal(t, "a", report.Rows[0].Feature, "Fail sorts before Pass")
	assert.Equal(t, SortByVerdict, report.SortBy)

	assert.ErrorIs(t, report.Sort("bogus"), core.ErrUnknownSortKey)
}

func TestCollinearityRowJSON(t *testing.T) {
	data, err := json.Marshal(CollinearityRow{Feature: "x", VIF: math.Inf(1), Level: CollinearitySignificant, Unstable: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"feature":"x","vif":null,"multicollinearity":"Significant","unstable":true}`, string(data))

	data, err = json.Marshal(CollinearityRow{Feature: "y", VIF: 2.5, Level: CollinearityModerate})
	require.NoError(t, err)
	assert.JSONEq(t, `{"feature":"y","vif":2.5,"multicollinearity":"Moderate"}`, string(data))
}

func TestHomogeneityRowJSON(t *testing.T) {
	data, err := json.Marshal(HomogeneityRow{Feature: "x", Statistic: math.Inf(1), PValue: 0, Verdict: NotHomogeneous, Groups: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"feature":"x","statistic":null,"p_value":0,"homogeneity":"Not Homogeneous","groups":2}`, string(data))
}

func TestTabularShapes(t *testing.T) {
	reports := []Tabular{
		&NormalityReport{Rows: []NormalityRow{{Feature: "a"}}},
		&HomogeneityReport{GroupColumn: "g", Rows: []HomogeneityRow{{Feature: "a"}}},
		&CollinearityReport{Rows: []CollinearityRow{{Feature: "const"}, {Feature: "a"}}},
	}
	for _, r := range reports {
		for _, row := range r.Values() {
			assert.Len(t, row, len(r.Header()), r.Title())
		}
	}
}

func features(r *NormalityReport) []string {
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Feature
	}
	return out
}
