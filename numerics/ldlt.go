package numerics

import "math"

// PDTolerance is the minimum pivot magnitude below which a factorization
// is reported as not positive definite. The backward pass treats any
// factorization failing this probe as a trigger to increase ρ and retry
// (§4.1 step 5).
const PDTolerance = 1e-12

// LDLT holds an in-place symmetric LDLᵀ factorization: A = L D L^T with
// L unit lower triangular and D diagonal. The struct is reusable across
// calls to Factorize so the solver's per-timestep workspace never
// reallocates it mid-solve.
type LDLT struct {
	n      int
	l      *Matrix
	d      Vector
	PosDef bool
}

// NewLDLT allocates factorization storage for an n x n matrix.
func NewLDLT(n int) *LDLT {
	return &LDLT{n: n, l: NewMatrix(n, n), d: make(Vector, n)}
}

// Factorize computes the LDLᵀ factorization of the symmetric matrix a
// (only the lower triangle is read) and reports whether every pivot
// exceeded PDTolerance. On failure the partial factorization must not
// be used for Solve/SolveMatrix.
func (f *LDLT) Factorize(a *Matrix) bool {
	n := f.n
	f.l.Zero()
	f.PosDef = true

	for j := 0; j < n; j++ {
		sum := a.At(j, j)
		for k := 0; k < j; k++ {
			sum -= f.l.At(j, k) * f.l.At(j, k) * f.d[k]
		}
		f.d[j] = sum

		if sum < PDTolerance {
			f.PosDef = false
			return false
		}

		f.l.Set(j, j, 1)
		for i := j + 1; i < n; i++ {
			sum := a.At(i, j)
			for k := 0; k < j; k++ {
				sum -= f.l.At(i, k) * f.l.At(j, k) * f.d[k]
			}
			f.l.Set(i, j, sum/f.d[j])
		}
	}

	return true
}

// Solve returns x solving A x = rhs using the last successful
// factorization. Callers must check PosDef first.
func (f *LDLT) Solve(rhs Vector) Vector {
	out := make(Vector, f.n)
	f.SolveInto(rhs, out)
	return out
}

// SolveInto solves A x = rhs into out without allocating beyond the
// scratch z already held by the receiver's call stack.
func (f *LDLT) SolveInto(rhs Vector, out Vector) {
	n := f.n
	z := make(Vector, n)

	// forward solve L z = rhs
	for i := 0; i < n; i++ {
		sum := rhs[i]
		for k := 0; k < i; k++ {
			sum -= f.l.At(i, k) * z[k]
		}
		z[i] = sum
	}

	// diagonal solve
	for i := 0; i < n; i++ {
		z[i] /= f.d[i]
	}

	// backward solve L^T x = z
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for k := i + 1; k < n; k++ {
			sum -= f.l.At(k, i) * out[k]
		}
		out[i] = sum
	}
}

// SolveMatrix solves A X = rhs column-by-column, returning X with the
// same shape as rhs. Used by the backward pass to solve the combined
// feedforward/feedback system with a single factorization (§4.1 step 6).
func (f *LDLT) SolveMatrix(rhs *Matrix) *Matrix {
	n := f.n
	out := NewMatrix(rhs.Rows, rhs.Cols)
	col := make(Vector, rhs.Rows)
	res := make(Vector, n)
	for j := 0; j < rhs.Cols; j++ {
		for i := 0; i < rhs.Rows; i++ {
			col[i] = rhs.At(i, j)
		}
		f.SolveInto(col, res)
		for i := 0; i < n; i++ {
			out.Set(i, j, res[i])
		}
	}
	return out
}

// IsWellConditioned reports whether every pivot is finite and above the
// tolerance; used defensively after a factorization that reported
// PosDef=true but whose downstream solve produced non-finite output.
func (f *LDLT) IsWellConditioned() bool {
	for _, d := range f.d {
		if math.IsNaN(d) || math.IsInf(d, 0) || d < PDTolerance {
			return false
		}
	}
	return true
}
