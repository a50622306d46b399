package dynamics

import "github.com/opentraj/ipddp/numerics"

// System is the dynamics map a caller supplies: Discrete computes
// x_{t+1} = f_t(x_t, u_t) however the caller likes (explicit Euler,
// RK4, an exact discretization, ...), while Jacobians returns the
// *continuous-time* Jacobians of the underlying ẋ = f(x, u) the solver
// linearizes itself via A_t = I + Δt·F_x, B_t = Δt·F_u (§4.1 step 1) —
// the same Euler-linearization the solver uses regardless of how
// Discrete actually integrates. Implementations must be pure functions
// of their arguments: the solver calls them concurrently across t
// during Jacobian pre-computation (§5).
type System interface {
	// StateDim returns n_x, the fixed dimension of every state vector.
	StateDim() int
	// ControlDim returns n_u, the fixed dimension of every control vector.
	ControlDim() int
	// Discrete evaluates f_t(x, u) at absolute time tAbs, returning x_{t+1}.
	Discrete(x, u numerics.Vector, tAbs float64) numerics.Vector
	// Jacobians returns the continuous-time ∂ẋ/∂x (n_x x n_x) and
	// ∂ẋ/∂u (n_x x n_u) at (x, u, tAbs).
	Jacobians(x, u numerics.Vector, tAbs float64) (fx, fu *numerics.Matrix)
}

// HessianSystem is an optional capability: systems that can supply
// second-order dynamics tensors enable full DDP (as opposed to iLQR,
// which drops these terms — see the glossary's "iLQR mode"). The
// backward pass probes for this interface with a type assertion, the
// same optional-capability idiom the teacher uses for EnergyComputer.
type HessianSystem interface {
	System
	// Hessians returns, for each state component i in [0, StateDim()),
	// the continuous-time n_x x n_x block F_xx_i = ∂²ẋ_i/∂x², the
	// n_u x n_u block F_uu_i = ∂²ẋ_i/∂u², and the n_u x n_x block
	// F_ux_i = ∂²ẋ_i/∂u∂x.
	Hessians(x, u numerics.Vector, tAbs float64) (fxx, fuu, fux []*numerics.Matrix)
}
