package constraint

import "github.com/opentraj/ipddp/numerics"

// Constraint is a single named inequality g(x, u) ≤ b, evaluated as a
// vector of dimension DualDim(). The solver works with the effective
// residual g(x,u) - UpperBound(), so g ≤ 0 is the feasible region.
type Constraint interface {
	// DualDim returns m_i, the dimension of Evaluate's output and the
	// number of dual/slack scalars this constraint owns per timestep.
	DualDim() int
	// Evaluate returns the raw constraint value at (x, u), before
	// subtracting UpperBound.
	Evaluate(x, u numerics.Vector) numerics.Vector
	// UpperBound returns the constant vector b_i such that
	// g_i(x,u) = Evaluate(x,u) - b_i defines the feasible region g_i ≤ 0.
	UpperBound() numerics.Vector
	// StateJacobian returns ∂Evaluate/∂x (m_i x n_x) at (x, u).
	StateJacobian(x, u numerics.Vector) *numerics.Matrix
	// ControlJacobian returns ∂Evaluate/∂u (m_i x n_u) at (x, u).
	ControlJacobian(x, u numerics.Vector) *numerics.Matrix
}
