package classic

import (
	"fmt"
	"math"
	"sort"

	"gostatcheck/domain/core"

	"github.com/montanaflynn/stats"
)

// ShapiroMaxValidN is the largest sample Royston's p-value approximation was
// validated for. Larger samples are still tested.
const ShapiroMaxValidN = 5000

const (
	shapiroMinN = 3
	// ranges below this are treated as identical values
	shapiroSmall = 1e-19
)

// Royston (1995) polynomial coefficients, algorithm AS R94
var (
	swC1 = []float64{0.0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0.0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ShapiroWilkTest is the Shapiro-Wilk W test for normality using Royston's
// approximation for the coefficients and the p-value.
type ShapiroWilkTest struct {
	dist *Distributions
}

// NewShapiroWilkTest creates a new Shapiro-Wilk test
func NewShapiroWilkTest() *ShapiroWilkTest {
	return &ShapiroWilkTest{dist: NewDistributions()}
}

// Name returns the test name
func (s *ShapiroWilkTest) Name() string {
	return "shapiro-wilk"
}

// MaxReliableN returns ShapiroMaxValidN
func (s *ShapiroWilkTest) MaxReliableN() int {
	return ShapiroMaxValidN
}

// TestNormality returns W and its p-value. The sample is not modified.
func (s *ShapiroWilkTest) TestNormality(sample []float64) (float64, float64, error) {
	n := len(sample)
	if n < shapiroMinN {
		return 0, 0, core.NewInsufficientDataError(n, shapiroMinN)
	}
	if err := checkFinite(sample); err != nil {
		return 0, 0, err
	}

	x := append([]float64(nil), sample...)
	sort.Float64s(x)

	lo, _ := stats.Min(x)
	hi, _ := stats.Max(x)
	rng := hi - lo
	if rng < shapiroSmall {
		return 0, 0, core.ErrZeroRange
	}

	a := s.coefficients(n)
	w := s.statistic(x, a, rng)
	return w, s.pValue(w, n), nil
}

// coefficients returns the first n/2 weights; the weight for x(n+1-i) is
// a[i] and the weight for x(i) is -a[i].
func (s *ShapiroWilkTest) coefficients(n int) []float64 {
	nn2 := n / 2
	a := make([]float64, nn2)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	an := float64(n)
	an25 := an + 0.25
	m := make([]float64, nn2)
	summ2 := 0.0
	for i := range m {
		m[i] = s.dist.NormalQuantile((float64(i+1) - 0.375) / an25)
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)
	a1 := poly(swC1, rsn) - m[0]/ssumm2

	var i1 int
	var fac float64
	if n > 5 {
		i1 = 2
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		i1 = 1
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := i1; i < nn2; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

// statistic computes W on range-scaled data to keep the sums well conditioned
func (s *ShapiroWilkTest) statistic(x, a []float64, rng float64) float64 {
	n := len(x)
	scaled := make([]float64, n)
	for i, v := range x {
		scaled[i] = v / rng
	}
	mean, _ := stats.Mean(scaled)

	ssq := 0.0
	for _, v := range scaled {
		d := v - mean
		ssq += d * d
	}

	num := 0.0
	for i, ai := range a {
		num += ai * (scaled[n-1-i] - scaled[i])
	}

	w := num * num / ssq
	if w > 1 {
		w = 1
	}
	return w
}

func (s *ShapiroWilkTest) pValue(w float64, n int) float64 {
	if n == 3 {
		const pi6 = 6 / math.Pi
		const stqr = math.Pi / 3 // asin(sqrt(3/4))
		p := pi6 * (math.Asin(math.Sqrt(w)) - stqr)
		return clampProbability(p)
	}
	if w >= 1 {
		return 1
	}

	an := float64(n)
	y := math.Log(1 - w)
	var m, sd float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		m = poly(swC3, an)
		sd = math.Exp(poly(swC4, an))
	} else {
		xx := math.Log(an)
		m = poly(swC5, xx)
		sd = math.Exp(poly(swC6, xx))
	}
	return clampProbability(s.dist.NormalUpperTail((y - m) / sd))
}

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*x + c[i]
	}
	return result
}

func checkFinite(values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: value %v at row %d", core.ErrNonFinite, v, i)
		}
	}
	return nil
}
