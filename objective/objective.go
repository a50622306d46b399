package objective

import "github.com/opentraj/ipddp/numerics"

// Objective supplies the stage cost ℓ_t(x, u) and terminal cost φ(x_N)
// together with their first and second derivatives (§6).
type Objective interface {
	// Running evaluates ℓ_t(x, u) at absolute time tAbs.
	Running(x, u numerics.Vector, tAbs float64) float64
	// Terminal evaluates φ(x).
	Terminal(x numerics.Vector) float64

	// RunningGradients returns ℓ_x and ℓ_u at (x, u, tAbs).
	RunningGradients(x, u numerics.Vector, tAbs float64) (lx, lu numerics.Vector)
	// RunningHessians returns ℓ_xx, ℓ_uu, ℓ_ux at (x, u, tAbs).
	RunningHessians(x, u numerics.Vector, tAbs float64) (lxx, luu, lux *numerics.Matrix)

	// TerminalGradient returns φ_x at x.
	TerminalGradient(x numerics.Vector) numerics.Vector
	// TerminalHessian returns φ_xx at x.
	TerminalHessian(x numerics.Vector) *numerics.Matrix
}
