package app

import (
	"context"
	"fmt"
	"math"

	"gostatcheck/domain/assumptions"
	"gostatcheck/domain/core"
	"gostatcheck/domain/table"
	"gostatcheck/internal"
	"gostatcheck/ports"
)

// AssumptionService runs the classical assumption checks over a table. Each
// check is a single pass that reads the table and builds a report; nothing
// is retained between calls.
type AssumptionService struct {
	normality    ports.NormalityTester
	variance     ports.VarianceTester
	collinearity ports.CollinearityScorer
	logger       *internal.Logger
}

// NormalityOptions configures CheckNormality. Zero values select the defaults.
type NormalityOptions struct {
	Alpha  float64
	SortBy assumptions.SortKey
}

// HomogeneityOptions configures CheckHomogeneity. Zero values select the defaults.
type HomogeneityOptions struct {
	Alpha  float64
	Center assumptions.Center
}

// SuiteOptions configures CheckAll
type SuiteOptions struct {
	GroupColumn string // homogeneity is skipped when empty
	Normality   NormalityOptions
	Homogeneity HomogeneityOptions
}

// NewAssumptionService creates an assumption service
func NewAssumptionService(
	normality ports.NormalityTester,
	variance ports.VarianceTester,
	collinearity ports.CollinearityScorer,
	logger *internal.Logger,
) *AssumptionService {
	if logger == nil {
		logger = internal.Discard
	}
	return &AssumptionService{
		normality:    normality,
		variance:     variance,
		collinearity: collinearity,
		logger:       logger.With("AssumptionService"),
	}
}

// CheckNormality runs the normality test on every column and returns one
// row per column, sorted ascending by opts.SortBy. A feature passes when its
// p-value is strictly greater than alpha. Every column must be numeric.
func (s *AssumptionService) CheckNormality(ctx context.Context, tbl *table.Table, opts NormalityOptions) (*assumptions.NormalityReport, error) {
	alpha, err := resolveAlpha(opts.Alpha)
	if err != nil {
		return nil, err
	}
	sortBy, err := assumptions.ParseSortKey(string(opts.SortBy))
	if err != nil {
		return nil, err
	}

	limit := 0
	if limiter, ok := s.normality.(ports.SampleLimiter); ok {
		limit = limiter.MaxReliableN()
	}

	report := &assumptions.NormalityReport{
		Alpha:  alpha,
		SortBy: sortBy,
		Rows:   make([]assumptions.NormalityRow, 0, tbl.Width()),
	}
	for _, feature := range tbl.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values, err := tbl.Numeric(feature)
		if err != nil {
			return nil, core.NewFeatureError("normality", feature, err)
		}
		if limit > 0 && len(values) > limit {
			s.logger.Warn("%s: p-value for N=%d may not be accurate above %d observations", feature, len(values), limit)
		}

		stat, p, err := s.normality.TestNormality(values)
		if err != nil {
			return nil, core.NewFeatureError("normality", feature, err)
		}
		verdict := assumptions.ClassifyNormality(p, alpha)
		s.logger.Debug("%s %s: W=%.6g p=%.6g %s", s.normality.Name(), feature, stat, p, verdict)

		report.Rows = append(report.Rows, assumptions.NormalityRow{
			Feature:   feature,
			Statistic: stat,
			PValue:    p,
			Verdict:   verdict,
		})
	}

	if err := report.Sort(sortBy); err != nil {
		return nil, err
	}
	s.logger.Info("normality: %d features, %d fail at alpha=%g", len(report.Rows), countNormalityFails(report), alpha)
	return report, nil
}

// CheckHomogeneity runs the equal-variance test for every column except the
// grouping column, splitting each feature by the distinct group labels.
// Rows follow table order. The grouping column must exist.
func (s *AssumptionService) CheckHomogeneity(ctx context.Context, tbl *table.Table, group string, opts HomogeneityOptions) (*assumptions.HomogeneityReport, error) {
	alpha, err := resolveAlpha(opts.Alpha)
	if err != nil {
		return nil, err
	}
	center, err := assumptions.ParseCenter(string(opts.Center))
	if err != nil {
		return nil, err
	}
	if !tbl.Has(group) {
		return nil, fmt.Errorf("grouping column: %w", core.NewColumnNotFoundError(group))
	}

	report := &assumptions.HomogeneityReport{
		GroupColumn: group,
		Alpha:       alpha,
		Center:      center,
		Rows:        make([]assumptions.HomogeneityRow, 0, tbl.Width()-1),
	}
	for _, feature := range tbl.Names() {
		if feature == group {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		groups, err := tbl.Partition(feature, group)
		if err != nil {
			return nil, core.NewFeatureError("homogeneity", feature, err)
		}
		samples := make([][]float64, len(groups))
		for i, g := range groups {
			samples[i] = g.Values
		}

		stat, p, err := s.variance.TestEqualVariance(samples, center)
		if err != nil {
			return nil, core.NewFeatureError("homogeneity", feature, err)
		}
		verdict := assumptions.ClassifyHomogeneity(p, alpha)
		s.logger.Debug("%s %s by %s (%d groups): W=%.6g p=%.6g %s",
			s.variance.Name(), feature, group, len(groups), stat, p, verdict)

		report.Rows = append(report.Rows, assumptions.HomogeneityRow{
			Feature:   feature,
			Statistic: stat,
			PValue:    p,
			Verdict:   verdict,
			Groups:    len(groups),
		})
	}

	s.logger.Info("homogeneity by %s: %d features, center=%s", group, len(report.Rows), center)
	return report, nil
}

// CheckMulticollinearity prepends a constant column and reports the variance
// inflation factor of every column, const first. Perfectly collinear columns
// are kept with an infinite VIF and flagged unstable.
func (s *AssumptionService) CheckMulticollinearity(ctx context.Context, tbl *table.Table) (*assumptions.CollinearityReport, error) {
	if tbl.Width() == 0 {
		return nil, core.ErrEmptyTable
	}
	for _, feature := range tbl.Names() {
		if kind, _ := tbl.Kind(feature); kind != table.KindNumeric {
			return nil, core.NewFeatureError("multicollinearity", feature, core.ErrNonNumeric)
		}
	}
	augmented, err := tbl.WithConstant(assumptions.ConstantFeature)
	if err != nil {
		return nil, core.NewFeatureError("multicollinearity", assumptions.ConstantFeature, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names := augmented.Names()
	columns := make([][]float64, len(names))
	for i, name := range names {
		if columns[i], err = augmented.Numeric(name); err != nil {
			return nil, core.NewFeatureError("multicollinearity", name, err)
		}
		if !allFinite(columns[i]) {
			return nil, core.NewFeatureError("multicollinearity", name, core.ErrNonFinite)
		}
	}

	vifs, err := s.collinearity.InflationFactors(columns)
	if err != nil {
		if feature, ok := core.FailedFeature(err); ok {
			return nil, core.NewFeatureError("multicollinearity", feature, err)
		}
		return nil, fmt.Errorf("multicollinearity: %w", err)
	}
	if len(vifs) != len(names) {
		return nil, fmt.Errorf("%s returned %d factors for %d columns", s.collinearity.Name(), len(vifs), len(names))
	}

	report := &assumptions.CollinearityReport{Rows: make([]assumptions.CollinearityRow, len(names))}
	unstable := 0
	for i, name := range names {
		row := assumptions.CollinearityRow{
			Feature:  name,
			VIF:      vifs[i],
			Level:    assumptions.ClassifyVIF(vifs[i]),
			Unstable: math.IsInf(vifs[i], 0) || math.IsNaN(vifs[i]),
		}
		if row.Unstable {
			unstable++
			s.logger.Warn("%s is perfectly collinear with other columns", name)
		}
		s.logger.Debug("VIF %s = %.6g (%s)", name, row.VIF, row.Level)
		report.Rows[i] = row
	}

	s.logger.Info("multicollinearity: %d columns including %s, %d unstable", len(names), assumptions.ConstantFeature, unstable)
	return report, nil
}

// CheckAll runs every check that applies. The grouping column, when set, is
// excluded from normality and multicollinearity and drives homogeneity.
func (s *AssumptionService) CheckAll(ctx context.Context, tbl *table.Table, opts SuiteOptions) ([]assumptions.Tabular, error) {
	features := tbl
	if opts.GroupColumn != "" {
		if !tbl.Has(opts.GroupColumn) {
			return nil, fmt.Errorf("grouping column: %w", core.NewColumnNotFoundError(opts.GroupColumn))
		}
		var err error
		if features, err = tbl.Drop(opts.GroupColumn); err != nil {
			return nil, err
		}
	}

	normality, err := s.CheckNormality(ctx, features, opts.Normality)
	if err != nil {
		return nil, err
	}
	reports := []assumptions.Tabular{normality}

	if opts.GroupColumn != "" {
		homogeneity, err := s.CheckHomogeneity(ctx, tbl, opts.GroupColumn, opts.Homogeneity)
		if err != nil {
			return nil, err
		}
		reports = append(reports, homogeneity)
	} else {
		s.logger.Info("no grouping column set, skipping homogeneity")
	}

	collinearity, err := s.CheckMulticollinearity(ctx, features)
	if err != nil {
		return nil, err
	}
	return append(reports, collinearity), nil
}

func resolveAlpha(alpha float64) (float64, error) {
	if alpha == 0 {
		return assumptions.DefaultAlpha, nil
	}
	if err := assumptions.ValidateAlpha(alpha); err != nil {
		return 0, err
	}
	return alpha, nil
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func countNormalityFails(report *assumptions.NormalityReport) int {
	n := 0
	for _, row := range report.Rows {
		if row.Verdict == assumptions.NormalityFail {
			n++
		}
	}
	return n
}
