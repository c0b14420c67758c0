package coercer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gostatcheck/domain/core"
	"gostatcheck/domain/table"
)

// TypeCoercer turns raw cell text into typed table columns
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64  `json:"numeric_threshold"` // share of non-missing values that must parse as numbers
	MissingMarkers   []string `json:"missing_markers"`   // cell texts treated as empty, compared case-insensitively
	NormalizeLabels  bool     `json:"normalize_labels"`  // trim and collapse whitespace in categorical labels
	LowercaseLabels  bool     `json:"lowercase_labels"`  // fold categorical labels to lower case
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 1.0, // every present value must be a number
		MissingMarkers:   []string{"", "na", "n/a", "nan", "null", "none", "-"},
		NormalizeLabels:  true,
		LowercaseLabels:  false,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// ColumnAnalysis summarizes how a column's cells parse
type ColumnAnalysis struct {
	TotalCount   int        `json:"total_count"`
	MissingCount int        `json:"missing_count"`
	NumericCount int        `json:"numeric_count"`
	NumericRatio float64    `json:"numeric_ratio"`
	Kind         table.Kind `json:"kind"`
}

// AnalyzeColumn decides whether a column is numeric or categorical. A
// column with no present values is categorical.
func (c *TypeCoercer) AnalyzeColumn(cells []string) ColumnAnalysis {
	analysis := ColumnAnalysis{TotalCount: len(cells)}
	for _, cell := range cells {
		if c.IsMissing(cell) {
			analysis.MissingCount++
			continue
		}
		if _, ok := ParseNumeric(cell); ok {
			analysis.NumericCount++
		}
	}

	present := analysis.TotalCount - analysis.MissingCount
	if present > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(present)
	}
	analysis.Kind = table.KindCategorical
	if present > 0 && analysis.NumericRatio >= c.config.NumericThreshold {
		analysis.Kind = table.KindNumeric
	}
	return analysis
}

// BuildColumn coerces a column's cells into a typed column. Numeric columns
// may not contain missing or unparseable cells; the error names the column
// and the first offending row (1-based, excluding the header). Missing cells
// of a categorical column become table.MissingLabel.
func (c *TypeCoercer) BuildColumn(name string, cells []string) (table.Column, ColumnAnalysis, error) {
	analysis := c.AnalyzeColumn(cells)
	if analysis.Kind == table.KindCategorical {
		labels := make([]string, len(cells))
		for i, cell := range cells {
			if c.IsMissing(cell) {
				labels[i] = table.MissingLabel
				continue
			}
			labels[i] = c.normalizeLabel(cell)
		}
		return table.CategoricalColumn(name, labels), analysis, nil
	}

	values := make([]float64, len(cells))
	for i, cell := range cells {
		if c.IsMissing(cell) {
			return table.Column{}, analysis, core.NewFeatureError("coerce", name,
				fmt.Errorf("%w: missing value at row %d", core.ErrNonFinite, i+1))
		}
		v, ok := ParseNumeric(cell)
		if !ok {
			return table.Column{}, analysis, core.NewFeatureError("coerce", name,
				fmt.Errorf("%w: %q at row %d", core.ErrNonNumeric, cell, i+1))
		}
		values[i] = v
	}
	return table.NumericColumn(name, values), analysis, nil
}

// IsMissing reports whether a cell counts as empty
func (c *TypeCoercer) IsMissing(cell string) bool {
	trimmed := strings.TrimSpace(cell)
	for _, marker := range c.config.MissingMarkers {
		if strings.EqualFold(trimmed, marker) {
			return true
		}
	}
	return trimmed == ""
}

// ParseNumeric parses a number written in common spreadsheet styles:
// parentheses for negatives, currency symbols, percent signs, and European
// or French grouping with a decimal comma. A single comma followed by exactly
// three digits, as in "1,234", is ambiguous and does not parse.
func ParseNumeric(s string) (float64, bool) {
	cleanVal := strings.TrimSpace(s)
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range currencySymbols {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(strings.ReplaceAll(cleanVal, "%", ""))

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 and 1 234,56 put the decimal comma last
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if commaIdx > strings.LastIndex(cleanVal, ".") && len(afterComma) <= 3 && allDigits(afterComma) {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma && strings.Count(cleanVal, ",") == 1:
		// a lone comma is a decimal separator, except 1,234 which could be
		// either and is rejected
		commaIdx := strings.Index(cleanVal, ",")
		intPart := strings.TrimLeft(cleanVal[:commaIdx], "+-")
		if fracPart := cleanVal[commaIdx+1:]; len(fracPart) == 3 && allDigits(fracPart) && intPart != "0" {
			return 0, false
		}
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	default:
		cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

var currencySymbols = []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"}

var whitespaceRun = regexp.MustCompile(`\s+`)

func (c *TypeCoercer) normalizeLabel(s string) string {
	if !c.config.NormalizeLabels {
		return s
	}
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
	if c.config.LowercaseLabels {
		s = strings.ToLower(s)
	}
	return s
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
