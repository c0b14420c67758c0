package classic

import (
	"fmt"
	"math"
	"sort"

	"gostatcheck/domain/assumptions"
	"gostatcheck/domain/core"

	"github.com/montanaflynn/stats"
)

// leveneTrimProportion is cut from each tail of every group for the trimmed center
const leveneTrimProportion = 0.05

// LeveneTest tests equality of variances across k groups using absolute
// deviations from a per-group center.
type LeveneTest struct {
	dist *Distributions
}

// NewLeveneTest creates a new Levene test
func NewLeveneTest() *LeveneTest {
	return &LeveneTest{dist: NewDistributions()}
}

// Name returns the test name
func (l *LeveneTest) Name() string {
	return "levene"
}

// TestEqualVariance returns the W statistic, F-distributed with (k-1, N-k)
// degrees of freedom under the null, and its p-value.
func (l *LeveneTest) TestEqualVariance(groups [][]float64, center assumptions.Center) (float64, float64, error) {
	k := len(groups)
	if k < 2 {
		return 0, 0, fmt.Errorf("%w: got %d", core.ErrTooFewGroups, k)
	}

	samples := make([][]float64, k)
	for i, g := range groups {
		if len(g) < 2 {
			return 0, 0, fmt.Errorf("group %d: %w", i, core.NewInsufficientDataError(len(g), 2))
		}
		if err := checkFinite(g); err != nil {
			return 0, 0, fmt.Errorf("group %d: %w", i, err)
		}
		samples[i] = g
		if center == assumptions.CenterTrimmed {
			samples[i] = trimBoth(g, leveneTrimProportion)
		}
	}

	// absolute deviations from each group's center
	deviations := make([][]float64, k)
	groupMeans := make([]float64, k)
	total := 0
	grandSum := 0.0
	for i, g := range samples {
		c, err := l.center(g, center)
		if err != nil {
			return 0, 0, fmt.Errorf("group %d: %w", i, err)
		}
		z := make([]float64, len(g))
		for j, v := range g {
			z[j] = math.Abs(v - c)
		}
		deviations[i] = z
		groupMeans[i], _ = stats.Mean(z)
		total += len(z)
		grandSum += groupMeans[i] * float64(len(z))
	}
	grandMean := grandSum / float64(total)

	between := 0.0
	within := 0.0
	for i, z := range deviations {
		d := groupMeans[i] - grandMean
		between += float64(len(z)) * d * d
		for _, v := range z {
			e := v - groupMeans[i]
			within += e * e
		}
	}

	df1 := k - 1
	df2 := total - k
	if within == 0 {
		if between == 0 {
			return 0, 0, fmt.Errorf("%w: no dispersion within or between groups", core.ErrDegenerate)
		}
		return math.Inf(1), 0, nil
	}
	w := (float64(df2) / float64(df1)) * between / within
	return w, l.dist.FTestPValue(w, df1, df2), nil
}

func (l *LeveneTest) center(g []float64, center assumptions.Center) (float64, error) {
	switch center {
	case assumptions.CenterMedian, "":
		return stats.Median(g)
	case assumptions.CenterMean, assumptions.CenterTrimmed:
		return stats.Mean(g)
	}
	return 0, fmt.Errorf("%w: levene center %q", core.ErrInvalidOption, center)
}

// trimBoth sorts a copy and drops int(proportion*n) values from each end
func trimBoth(values []float64, proportion float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	cut := int(proportion * float64(len(sorted)))
	return sorted[cut : len(sorted)-cut]
}
