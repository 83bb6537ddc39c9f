package whr

import "fmt"

// Tridiagonal is a tridiagonal matrix stored as its three bands.
// Sub[i] = M[i+1][i] and Super[i] = M[i][i+1]; both have length n-1 where
// n = len(Diag).
type Tridiagonal struct {
	Sub   []float64
	Diag  []float64
	Super []float64
}

func (m Tridiagonal) size() int { return len(m.Diag) }

// decompose runs the Thomas forward elimination, returning the sub-diagonal
// multipliers and pivots of the LU factorization. mult[0] is unused.
func (m Tridiagonal) decompose() (mult, pivot []float64, err error) {
	n := m.size()
	mult = make([]float64, n)
	pivot = make([]float64, n)

	pivot[0] = m.Diag[0]
	for i := 1; i < n; i++ {
		if pivot[i-1] == 0 {
			return nil, nil, fmt.Errorf("tridiagonal solve: zero pivot at row %d", i-1)
		}
		mult[i] = m.Sub[i-1] / pivot[i-1]
		pivot[i] = m.Diag[i] - mult[i]*m.Super[i-1]
	}
	if pivot[n-1] == 0 {
		return nil, nil, fmt.Errorf("tridiagonal solve: zero pivot at row %d", n-1)
	}
	return mult, pivot, nil
}

// Solve solves M·x = rhs via LU decomposition, forward substitution and back
// substitution. O(n) in the matrix dimension.
func (m Tridiagonal) Solve(rhs []float64) ([]float64, error) {
	n := m.size()
	if len(rhs) != n {
		return nil, fmt.Errorf("tridiagonal solve: rhs length %d, want %d", len(rhs), n)
	}

	mult, pivot, err := m.decompose()
	if err != nil {
		return nil, err
	}

	y := make([]float64, n)
	y[0] = rhs[0]
	for i := 1; i < n; i++ {
		y[i] = rhs[i] - mult[i]*y[i-1]
	}

	x := make([]float64, n)
	x[n-1] = y[n-1] / pivot[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = (y[i] - m.Super[i]*x[i+1]) / pivot[i]
	}
	return x, nil
}

// InverseBands returns the diagonal and sub-diagonal of -M⁻¹, combining the
// forward Thomas pass with an independent elimination run from the last row
// upward. For a negative-definite Hessian the diagonal entries are the
// posterior variances of the corresponding variables.
func (m Tridiagonal) InverseBands() (diag, sub []float64, err error) {
	n := m.size()
	mult, pivot, err := m.decompose()
	if err != nil {
		return nil, nil, err
	}

	diag = make([]float64, n)
	if n == 1 {
		return []float64{-1 / pivot[0]}, nil, nil
	}

	// Reverse elimination: pivots dp and multipliers from row n-1 down to 0.
	dp := make([]float64, n)
	dp[n-1] = m.Diag[n-1]
	for i := n - 2; i >= 0; i-- {
		if dp[i+1] == 0 {
			return nil, nil, fmt.Errorf("tridiagonal inverse: zero reverse pivot at row %d", i+1)
		}
		ap := m.Super[i] / dp[i+1]
		dp[i] = m.Diag[i] - ap*m.Sub[i]
	}

	for i := 0; i < n-1; i++ {
		denom := m.Super[i]*m.Sub[i] - pivot[i]*dp[i+1]
		if denom == 0 {
			return nil, nil, fmt.Errorf("tridiagonal inverse: singular leading block at row %d", i)
		}
		diag[i] = dp[i+1] / denom
	}
	diag[n-1] = -1 / pivot[n-1]

	sub = make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		sub[i] = -mult[i+1] * diag[i+1]
	}
	return diag, sub, nil
}
