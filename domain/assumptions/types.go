package assumptions

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"gostatcheck/domain/core"
)

// ============================================================================
// PARAMETERS
// ============================================================================

// DefaultAlpha is the significance threshold used when none is configured.
const DefaultAlpha = 0.05

// ConstantFeature names the synthetic intercept column added for VIF.
const ConstantFeature = "const"

// SortKey selects the normality report column rows are ordered by.
// Values match the report headers.
type SortKey string

const (
	SortByPValue    SortKey = "p-value"
	SortByStatistic SortKey = "Statistics"
	SortByVerdict   SortKey = "Normality"
	SortByFeature   SortKey = "Feature"
)

// ParseSortKey accepts a header name, case-insensitively.
func ParseSortKey(s string) (SortKey, error) {
	if strings.TrimSpace(s) == "" {
		return SortByPValue, nil
	}
	for _, k := range []SortKey{SortByPValue, SortByStatistic, SortByVerdict, SortByFeature} {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of p-value, Statistics, Normality, Feature)", core.ErrUnknownSortKey, s)
}

// Center is the location estimate Levene's test measures deviations from.
type Center string

const (
	CenterMedian  Center = "median" // Brown-Forsythe
	CenterMean    Center = "mean"   // original Levene
	CenterTrimmed Center = "trimmed"
)

// ParseCenter parses a Levene center name
func ParseCenter(s string) (Center, error) {
	switch Center(strings.ToLower(strings.TrimSpace(s))) {
	case "", CenterMedian:
		return CenterMedian, nil
	case CenterMean:
		return CenterMean, nil
	case CenterTrimmed:
		return CenterTrimmed, nil
	}
	return "", fmt.Errorf("%w: levene center %q (want median, mean or trimmed)", core.ErrInvalidOption, s)
}

// ValidateAlpha checks that a significance threshold lies strictly inside (0, 1).
func ValidateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return fmt.Errorf("%w: threshold %v must be in (0, 1)", core.ErrInvalidOption, alpha)
	}
	return nil
}

// ============================================================================
// VERDICTS
// ============================================================================

// NormalityVerdict labels a Shapiro-Wilk outcome
type NormalityVerdict string

const (
	NormalityPass NormalityVerdict = "Pass"
	NormalityFail NormalityVerdict = "Fail"
)

// HomogeneityVerdict labels a Levene outcome
type HomogeneityVerdict string

const (
	Homogeneous    HomogeneityVerdict = "Homogeneous"
	NotHomogeneous HomogeneityVerdict = "Not Homogeneous"
)

// CollinearityLevel labels a variance inflation factor
type CollinearityLevel string

const (
	CollinearityNone        CollinearityLevel = "No Multicollinearity (Pass)"
	CollinearityModerate    CollinearityLevel = "Moderate"
	CollinearityHigh        CollinearityLevel = "High"
	CollinearitySignificant CollinearityLevel = "Significant"
)

// vifUnityTolerance absorbs rounding in VIFs that are exactly 1 analytically.
const vifUnityTolerance = 1e-9

// ClassifyNormality passes when p is strictly above alpha.
func ClassifyNormality(pValue, alpha float64) NormalityVerdict {
	if pValue > alpha {
		return NormalityPass
	}
	return NormalityFail
}

// ClassifyHomogeneity reports equal variances when p is strictly above alpha.
func ClassifyHomogeneity(pValue, alpha float64) HomogeneityVerdict {
	if pValue > alpha {
		return Homogeneous
	}
	return NotHomogeneous
}

// ClassifyVIF buckets a VIF: 1, (1,5), [5,10), [10,inf]. NaN and +Inf are
// Significant.
func ClassifyVIF(vif float64) CollinearityLevel {
	switch {
	case math.IsNaN(vif) || math.IsInf(vif, 0):
		return CollinearitySignificant
	case math.Abs(vif-1) <= vifUnityTolerance:
		return CollinearityNone
	case vif > 1 && vif < 5:
		return CollinearityModerate
	case vif >= 5 && vif < 10:
		return CollinearityHigh
	case vif >= 10:
		return CollinearitySignificant
	default:
		// below 1 is not attainable by a least squares R²; treat as unstable
		return CollinearitySignificant
	}
}

// ============================================================================
// REPORTS
// ============================================================================

// Tabular is a labeled result table as consumed by renderers and exporters.
// Values holds float64, int, bool or string cells.
type Tabular interface {
	Title() string
	Header() []string
	Values() [][]any
}

// NormalityRow is one feature's Shapiro-Wilk result
type NormalityRow struct {
	Feature   string           `json:"feature"`
	Statistic float64          `json:"statistic"`
	PValue    float64          `json:"p_value"`
	Verdict   NormalityVerdict `json:"normality"`
}

// NormalityReport holds one row per feature in SortBy order
type NormalityReport struct {
	Alpha  float64        `json:"alpha"`
	SortBy SortKey        `json:"sort_by"`
	Rows   []NormalityRow `json:"rows"`
}

func (r *NormalityReport) Title() string { return "Shapiro-Wilk normality" }

func (r *NormalityReport) Header() []string {
	return []string{"Feature", "Statistics", "p-value", "Normality"}
}

func (r *NormalityReport) Values() [][]any {
	out := make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = []any{row.Feature, row.Statistic, row.PValue, string(row.Verdict)}
	}
	return out
}

// Row looks up a feature's result
func (r *NormalityReport) Row(feature string) (NormalityRow, bool) {
	for _, row := range r.Rows {
		if row.Feature == feature {
			return row, true
		}
	}
	return NormalityRow{}, false
}

// Sort orders rows ascending by key. The sort is stable so ties keep input order.
func (r *NormalityReport) Sort(key SortKey) error {
	var less func(a, b NormalityRow) bool
	switch key {
	case SortByPValue:
		less = func(a, b NormalityRow) bool { return floatLess(a.PValue, b.PValue) }
	case SortByStatistic:
		less = func(a, b NormalityRow) bool { return floatLess(a.Statistic, b.Statistic) }
	case SortByVerdict:
		less = func(a, b NormalityRow) bool { return a.Verdict < b.Verdict }
	case SortByFeature:
		less = func(a, b NormalityRow) bool { return a.Feature < b.Feature }
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownSortKey, key)
	}
	sort.SliceStable(r.Rows, func(i, j int) bool { return less(r.Rows[i], r.Rows[j]) })
	r.SortBy = key
	return nil
}

// HomogeneityRow is one feature's Levene result
type HomogeneityRow struct {
	Feature   string             `json:"feature"`
	Statistic float64            `json:"statistic"`
	PValue    float64            `json:"p_value"`
	Verdict   HomogeneityVerdict `json:"homogeneity"`
	Groups    int                `json:"groups"`
}

// MarshalJSON encodes an infinite statistic as null
func (r HomogeneityRow) MarshalJSON() ([]byte, error) {
	type plain struct {
		Feature   string             `json:"feature"`
		Statistic *float64           `json:"statistic"`
		PValue    float64            `json:"p_value"`
		Verdict   HomogeneityVerdict `json:"homogeneity"`
		Groups    int                `json:"groups"`
	}
	return json.Marshal(plain{
		Feature:   r.Feature,
		Statistic: finiteOrNil(r.Statistic),
		PValue:    r.PValue,
		Verdict:   r.Verdict,
		Groups:    r.Groups,
	})
}

// HomogeneityReport holds one row per feature, in table order
type HomogeneityReport struct {
	GroupColumn string           `json:"group_column"`
	Alpha       float64          `json:"alpha"`
	Center      Center           `json:"center"`
	Rows        []HomogeneityRow `json:"rows"`
}

func (r *HomogeneityReport) Title() string {
	return fmt.Sprintf("Levene homogeneity of variance by %s", r.GroupColumn)
}

func (r *HomogeneityReport) Header() []string {
	return []string{"Feature", "Statistic", "p-value", "Homogeneity"}
}

func (r *HomogeneityReport) Values() [][]any {
	out := make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = []any{row.Feature, row.Statistic, row.PValue, string(row.Verdict)}
	}
	return out
}

// Row looks up a feature's result
func (r *HomogeneityReport) Row(feature string) (HomogeneityRow, bool) {
	for _, row := range r.Rows {
		if row.Feature == feature {
			return row, true
		}
	}
	return HomogeneityRow{}, false
}

// CollinearityRow is one column's variance inflation factor.
// VIF is +Inf for perfectly collinear columns and Unstable is set.
type CollinearityRow struct {
	Feature  string            `json:"feature"`
	VIF      float64           `json:"vif"`
	Level    CollinearityLevel `json:"multicollinearity"`
	Unstable bool              `json:"unstable,omitempty"`
}

// MarshalJSON encodes non-finite VIFs as null since JSON has no infinity.
func (r CollinearityRow) MarshalJSON() ([]byte, error) {
	type plain struct {
		Feature  string            `json:"feature"`
		VIF      *float64          `json:"vif"`
		Level    CollinearityLevel `json:"multicollinearity"`
		Unstable bool              `json:"unstable,omitempty"`
	}
	return json.Marshal(plain{Feature: r.Feature, VIF: finiteOrNil(r.VIF), Level: r.Level, Unstable: r.Unstable})
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// CollinearityReport holds the const row first, then features in table order
type CollinearityReport struct {
	Rows []CollinearityRow `json:"rows"`
}

func (r *CollinearityReport) Title() string { return "Variance inflation factors" }

func (r *CollinearityReport) Header() []string {
	return []string{"Feature", "VIF", "Multicollinearity"}
}

func (r *CollinearityReport) Values() [][]any {
	out := make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = []any{row.Feature, row.VIF, string(row.Level)}
	}
	return out
}

// Row looks up a feature's result
func (r *CollinearityReport) Row(feature string) (CollinearityRow, bool) {
	for _, row := range r.Rows {
		if row.Feature == feature {
			return row, true
		}
	}
	return CollinearityRow{}, false
}

// floatLess sorts NaN last, as pandas does
func floatLess(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}
