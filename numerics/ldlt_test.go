package numerics

import "testing"

func TestLDLTFactorizeAndSolveSPD(t *testing.T) {
	// A = [[4, 2], [2, 3]], positive definite.
	a := NewMatrix(2, 2)
	a.Set(0, 0, 4)
	a.Set(0, 1, 2)
	a.Set(1, 0, 2)
	a.Set(1, 1, 3)

	f := NewLDLT(2)
	if ok := f.Factorize(a); !ok {
		t.Fatalf("Factorize: expected success on SPD matrix")
	}
	if !f.PosDef {
		t.Fatalf("PosDef: expected true after successful factorization")
	}

	x := f.Solve(Vector{1, 1})
	// Verify A x == rhs.
	check := a.MulVec(x)
	if !vecEqual(check, Vector{1, 1}) {
		t.Errorf("Solve: A*x = %v, want [1 1]", check)
	}
}

func TestLDLTFactorizeRejectsNonPD(t *testing.T) {
	a := NewMatrix(2, 2)
	a.Set(0, 0, -1)
	a.Set(1, 1, -1)

	f := NewLDLT(2)
	if ok := f.Factorize(a); ok {
		t.Fatalf("Factorize: expected failure on non-PD matrix")
	}
	if f.PosDef {
		t.Fatalf("PosDef: expected false after failed factorization")
	}
}

func TestLDLTSolveMatrixMatchesColumnwiseSolve(t *testing.T) {
	a := NewMatrix(3, 3)
	a.Set(0, 0, 6)
	a.Set(1, 1, 5)
	a.Set(2, 2, 4)
	a.Set(0, 1, 1)
	a.Set(1, 0, 1)

	f := NewLDLT(3)
	if ok := f.Factorize(a); !ok {
		t.Fatalf("Factorize: expected success")
	}

	rhs := NewMatrix(3, 2)
	rhs.Set(0, 0, 1)
	rhs.Set(1, 1, 1)

	sol := f.SolveMatrix(rhs)
	for j := 0; j < 2; j++ {
		col := Vector{sol.At(0, j), sol.At(1, j), sol.At(2, j)}
		want := Vector{rhs.At(0, j), rhs.At(1, j), rhs.At(2, j)}
		got := a.MulVec(col)
		if !vecEqual(got, want) {
			t.Errorf("SolveMatrix column %d: A*x = %v, want %v", j, got, want)
		}
	}
}

func TestLDLTIsWellConditioned(t *testing.T) {
	a := Identity(2)
	f := NewLDLT(2)
	f.Factorize(a)
	if !f.IsWellConditioned() {
		t.Error("identity matrix should be well-conditioned")
	}
}
