package classic

import (
	"fmt"
	"math"

	"gostatcheck/domain/core"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// singular values below vifRcond times the largest are treated as zero
	vifRcond = 1e-15
	// 1-R² at or below this is perfect collinearity
	vifCollinearTolerance = 1e-12
)

// VIFScorer computes variance inflation factors by regressing each column
// on all the others with ordinary least squares.
type VIFScorer struct{}

// NewVIFScorer creates a new VIF scorer
func NewVIFScorer() *VIFScorer {
	return &VIFScorer{}
}

// Name returns the scorer name
func (v *VIFScorer) Name() string {
	return "variance-inflation-factor"
}

// InflationFactors returns 1/(1-R²) for each column. R² is centered when the
// other columns include a constant one and uncentered otherwise, so a
// constant column's own VIF is measured against zero. Perfectly collinear
// columns get +Inf.
//
// Only an explicit nonzero constant column switches to the centered R².
// An implicit intercept, such as one-hot columns summing to one, is not
// detected, so callers wanting centered factors should include a constant
// column themselves, as AssumptionService does.
func (v *VIFScorer) InflationFactors(columns [][]float64) ([]float64, error) {
	p := len(columns)
	if p < 2 {
		return nil, fmt.Errorf("%w: need at least 2 columns, got %d", core.ErrInsufficientData, p)
	}
	n := len(columns[0])
	if n == 0 {
		return nil, core.NewInsufficientDataError(0, 1)
	}
	for i, col := range columns {
		if len(col) != n {
			return nil, fmt.Errorf("%w: column %d has %d values, expected %d", core.ErrLengthMismatch, i, len(col), n)
		}
		if err := checkFinite(col); err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
	}

	constant := make([]bool, p)
	for i, col := range columns {
		constant[i] = isConstant(col)
	}

	vifs := make([]float64, p)
	for i := range columns {
		others := make([][]float64, 0, p-1)
		hasConst := false
		for j, col := range columns {
			if j == i {
				continue
			}
			others = append(others, col)
			hasConst = hasConst || constant[j]
		}
		vifs[i] = v.inflation(columns[i], others, hasConst)
	}
	return vifs, nil
}

// inflation regresses y on the regressors and converts R² to a VIF
func (v *VIFScorer) inflation(y []float64, regressors [][]float64, centered bool) float64 {
	n := len(y)
	k := len(regressors)

	x := mat.NewDense(n, k, nil)
	for j, col := range regressors {
		x.SetCol(j, col)
	}
	target := mat.NewVecDense(n, append([]float64(nil), y...))

	fitted := mat.NewVecDense(n, nil)
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); ok {
		if rank := svd.Rank(vifRcond); rank > 0 {
			beta := mat.NewVecDense(k, nil)
			svd.SolveVecTo(beta, target, rank)
			fitted.MulVec(x, beta)
		}
	}

	ssr := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		ssr += r * r
	}

	tss := 0.0
	if centered {
		mean := stat.Mean(y, nil)
		for _, val := range y {
			d := val - mean
			tss += d * d
		}
	} else {
		for _, val := range y {
			tss += val * val
		}
	}

	if tss == 0 {
		// y carries nothing the intercept does not already explain
		return math.Inf(1)
	}
	unexplained := ssr / tss
	if math.IsNaN(unexplained) || unexplained <= vifCollinearTolerance {
		return math.Inf(1)
	}
	return 1 / unexplained
}

func isConstant(col []float64) bool {
	if len(col) == 0 {
		return false
	}
	for _, v := range col[1:] {
		if v != col[0] {
			return false
		}
	}
	return col[0] != 0
}
