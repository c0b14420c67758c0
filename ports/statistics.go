package ports

import (
	"gostatcheck/domain/assumptions"
)

// NormalityTester tests whether a sample is drawn from a normal distribution
type NormalityTester interface {
	Name() string
	TestNormality(sample []float64) (statistic, pValue float64, err error)
}

// VarianceTester tests equality of variances across two or more groups
type VarianceTester interface {
	Name() string
	TestEqualVariance(groups [][]float64, center assumptions.Center) (statistic, pValue float64, err error)
}

// CollinearityScorer computes one variance inflation factor per column.
// columns[i] holds the values of column i; all columns have equal length.
type CollinearityScorer interface {
	Name() string
	InflationFactors(columns [][]float64) ([]float64, error)
}

// SampleLimiter is implemented by testers whose p-values are only validated
// up to a sample size. Larger samples are still tested.
type SampleLimiter interface {
	MaxReliableN() int
}
