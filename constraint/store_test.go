package constraint

import (
	"testing"

	"github.com/opentraj/ipddp/numerics"
)

// boundConstraint is a minimal single-row g(x,u) = x[0] - bound <= 0
// fixture for exercising Store in isolation.
type boundConstraint struct {
	bound float64
	nx    int
}

func (b *boundConstraint) DualDim() int                                { return 1 }
func (b *boundConstraint) Evaluate(x, u numerics.Vector) numerics.Vector { return numerics.Vector{x[0]} }
func (b *boundConstraint) UpperBound() numerics.Vector                 { return numerics.Vector{b.bound} }
func (b *boundConstraint) StateJacobian(x, u numerics.Vector) *numerics.Matrix {
	m := numerics.NewMatrix(1, b.nx)
	m.Set(0, 0, 1)
	return m
}
func (b *boundConstraint) ControlJacobian(x, u numerics.Vector) *numerics.Matrix {
	return numerics.NewMatrix(1, 0)
}

func TestStoreAddRemove(t *testing.T) {
	s := NewStore()
	if err := s.Add("a", &boundConstraint{bound: 1, nx: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("a", &boundConstraint{bound: 1, nx: 1}); err == nil {
		t.Error("Add: expected error on duplicate name")
	}
	if s.Len() != 1 {
		t.Errorf("Len: got %d want 1", s.Len())
	}
	if !s.Remove("a") {
		t.Error("Remove: expected true for existing constraint")
	}
	if s.Remove("a") {
		t.Error("Remove: expected false for already-removed constraint")
	}
}

func TestStoreTotalDimAndOffsets(t *testing.T) {
	s := NewStore()
	s.Add("b", &boundConstraint{bound: 1, nx: 2})
	s.Add("a", &boundConstraint{bound: 1, nx: 2})

	if s.TotalDim() != 2 {
		t.Fatalf("TotalDim: got %d want 2", s.TotalDim())
	}

	// names are reindexed alphabetically regardless of insertion order.
	offA, ok := s.Offset("a")
	if !ok || offA != 0 {
		t.Errorf("Offset(a): got %d, ok=%v, want 0, true", offA, ok)
	}
	offB, ok := s.Offset("b")
	if !ok || offB != 1 {
		t.Errorf("Offset(b): got %d, ok=%v, want 1, true", offB, ok)
	}
}

func TestStoreStackResidual(t *testing.T) {
	s := NewStore()
	s.Add("a", &boundConstraint{bound: 3, nx: 1})

	out := make(numerics.Vector, s.TotalDim())
	s.StackResidual(numerics.Vector{5}, nil, out)
	if out[0] != 2 {
		t.Errorf("StackResidual: got %v want 2 (5 - 3)", out[0])
	}
}

func TestStoreStackJacobians(t *testing.T) {
	s := NewStore()
	s.Add("a", &boundConstraint{bound: 0, nx: 2})

	gx, gu := s.StackJacobians(numerics.Vector{0, 0}, numerics.Vector{}, 2, 0)
	if gx.Rows != 1 || gx.Cols != 2 {
		t.Fatalf("StackJacobians gx shape: got %dx%d", gx.Rows, gx.Cols)
	}
	if gx.At(0, 0) != 1 {
		t.Errorf("StackJacobians gx: got %v want 1", gx.At(0, 0))
	}
	if gu.Rows != 1 || gu.Cols != 0 {
		t.Fatalf("StackJacobians gu shape: got %dx%d", gu.Rows, gu.Cols)
	}
}
