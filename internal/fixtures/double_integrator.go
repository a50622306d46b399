// Package fixtures provides concrete dynamics/objective/constraint
// implementations used only by this module's own test suites (§8's
// scenarios). They are not part of the public API.
package fixtures

import (
	"github.com/opentraj/ipddp/numerics"
)

// DoubleIntegrator is ẋ1 = x2, ẋ2 = u: the textbook scalar
// double-integrator used by scenario 1 (unconstrained) and scenario 2
// (box-constrained). State is (position, velocity), control is
// acceleration.
type DoubleIntegrator struct {
	k1, k2, k3, k4, scratch numerics.Vector
}

// NewDoubleIntegrator returns a DoubleIntegrator with its RK4 scratch
// buffers unallocated until the first Discrete call.
func NewDoubleIntegrator() *DoubleIntegrator { return &DoubleIntegrator{} }

func (d *DoubleIntegrator) StateDim() int   { return 2 }
func (d *DoubleIntegrator) ControlDim() int { return 1 }

func (d *DoubleIntegrator) derive(x, u numerics.Vector) numerics.Vector {
	return numerics.Vector{x[1], u[0]}
}

func (d *DoubleIntegrator) ensureScratch() {
	if len(d.k1) == 2 {
		return
	}
	d.k1 = make(numerics.Vector, 2)
	d.k2 = make(numerics.Vector, 2)
	d.k3 = make(numerics.Vector, 2)
	d.k4 = make(numerics.Vector, 2)
	d.scratch = make(numerics.Vector, 2)
}

// Discrete advances one step of fixed-stage RK4.
func (d *DoubleIntegrator) Discrete(x, u numerics.Vector, tAbs float64) numerics.Vector {
	d.ensureScratch()
	dt := discreteStepDt

	copy(d.k1, d.derive(x, u))
	for i := range d.scratch {
		d.scratch[i] = x[i] + dt*0.5*d.k1[i]
	}
	copy(d.k2, d.derive(d.scratch, u))
	for i := range d.scratch {
		d.scratch[i] = x[i] + dt*0.5*d.k2[i]
	}
	copy(d.k3, d.derive(d.scratch, u))
	for i := range d.scratch {
		d.scratch[i] = x[i] + dt*d.k3[i]
	}
	copy(d.k4, d.derive(d.scratch, u))

	out := make(numerics.Vector, 2)
	dt6 := dt / 6.0
	for i := range out {
		out[i] = x[i] + dt6*(d.k1[i]+2*d.k2[i]+2*d.k3[i]+d.k4[i])
	}
	return out
}

// discreteStepDt is the fixed integration substep fixtures use inside
// Discrete, independent of the solver's own dt (the solver's Euler
// linearization in Jacobians is what actually matters to IPDDP; this
// governs how faithfully Discrete tracks the continuous model).
const discreteStepDt = 0.01

// Jacobians returns the exact, state-independent continuous-time
// Jacobians of the linear double integrator.
func (d *DoubleIntegrator) Jacobians(x, u numerics.Vector, tAbs float64) (fx, fu *numerics.Matrix) {
	fx = numerics.NewMatrix(2, 2)
	fx.Set(0, 1, 1)
	fu = numerics.NewMatrix(2, 1)
	fu.Set(1, 0, 1)
	return fx, fu
}

// Hessians returns all-zero tensors: the double integrator is linear,
// so iLQR and full DDP coincide for it.
func (d *DoubleIntegrator) Hessians(x, u numerics.Vector, tAbs float64) (fxx, fuu, fux []*numerics.Matrix) {
	fxx = make([]*numerics.Matrix, 2)
	fuu = make([]*numerics.Matrix, 2)
	fux = make([]*numerics.Matrix, 2)
	for i := 0; i < 2; i++ {
		fxx[i] = numerics.NewMatrix(2, 2)
		fuu[i] = numerics.NewMatrix(1, 1)
		fux[i] = numerics.NewMatrix(1, 2)
	}
	return fxx, fuu, fux
}

// QuadraticTracking is ℓ_t = ½(x-x_ref)ᵀQ(x-x_ref) + ½uᵀRu,
// φ = ½(x-x_ref)ᵀQf(x-x_ref), the running/terminal cost shared by the
// double-integrator scenarios (the car scenario uses ParkingObjective).
type QuadraticTracking struct {
	Q, R, Qf *numerics.Matrix
	XRef     numerics.Vector
}

// NewQuadraticTracking builds a QuadraticTracking with diagonal Q, R, Qf.
func NewQuadraticTracking(qDiag, rDiag, qfDiag, xRef numerics.Vector) *QuadraticTracking {
	diag := func(d numerics.Vector) *numerics.Matrix {
		m := numerics.NewMatrix(len(d), len(d))
		for i, v := range d {
			m.Set(i, i, v)
		}
		return m
	}
	return &QuadraticTracking{Q: diag(qDiag), R: diag(rDiag), Qf: diag(qfDiag), XRef: xRef}
}

func (q *QuadraticTracking) Running(x, u numerics.Vector, tAbs float64) float64 {
	dx := x.Sub(q.XRef)
	return 0.5*dx.Dot(q.Q.MulVec(dx)) + 0.5*u.Dot(q.R.MulVec(u))
}

func (q *QuadraticTracking) Terminal(x numerics.Vector) float64 {
	dx := x.Sub(q.XRef)
	return 0.5 * dx.Dot(q.Qf.MulVec(dx))
}

func (q *QuadraticTracking) RunningGradients(x, u numerics.Vector, tAbs float64) (lx, lu numerics.Vector) {
	return q.Q.MulVec(x.Sub(q.XRef)), q.R.MulVec(u)
}

func (q *QuadraticTracking) RunningHessians(x, u numerics.Vector, tAbs float64) (lxx, luu, lux *numerics.Matrix) {
	return q.Q.Clone(), q.R.Clone(), numerics.NewMatrix(len(u), len(x))
}

func (q *QuadraticTracking) TerminalGradient(x numerics.Vector) numerics.Vector {
	return q.Qf.MulVec(x.Sub(q.XRef))
}

func (q *QuadraticTracking) TerminalHessian(x numerics.Vector) *numerics.Matrix {
	return q.Qf.Clone()
}

// BoxConstraint implements both g(x,u) = u - uMax <= 0 and its mirrored
// lower bound by stacking two rows, used for scenario 2's control
// saturation and for infeasible-bound termination tests.
type BoxConstraint struct {
	// Index selects the component the bound applies to: a component of
	// u when OnControl is set, otherwise a component of x.
	Index     int
	OnControl bool
	Lower, Upper float64
	nx, nu    int
}

// NewControlBoxConstraint bounds control component idx to [lower, upper].
func NewControlBoxConstraint(idx, nx, nu int, lower, upper float64) *BoxConstraint {
	return &BoxConstraint{Index: idx, OnControl: true, Lower: lower, Upper: upper, nx: nx, nu: nu}
}

// NewStateBoxConstraint bounds state component idx to [lower, upper].
func NewStateBoxConstraint(idx, nx, nu int, lower, upper float64) *BoxConstraint {
	return &BoxConstraint{Index: idx, OnControl: false, Lower: lower, Upper: upper, nx: nx, nu: nu}
}

func (b *BoxConstraint) DualDim() int { return 2 }

func (b *BoxConstraint) value(x, u numerics.Vector) float64 {
	if b.OnControl {
		return u[b.Index]
	}
	return x[b.Index]
}

// Evaluate returns (v, -v) so that UpperBound (Upper, -Lower) yields
// the two residuals v - Upper <= 0 and -v - (-Lower) <= 0.
func (b *BoxConstraint) Evaluate(x, u numerics.Vector) numerics.Vector {
	v := b.value(x, u)
	return numerics.Vector{v, -v}
}

func (b *BoxConstraint) UpperBound() numerics.Vector {
	return numerics.Vector{b.Upper, -b.Lower}
}

func (b *BoxConstraint) StateJacobian(x, u numerics.Vector) *numerics.Matrix {
	m := numerics.NewMatrix(2, b.nx)
	if !b.OnControl {
		m.Set(0, b.Index, 1)
		m.Set(1, b.Index, -1)
	}
	return m
}

func (b *BoxConstraint) ControlJacobian(x, u numerics.Vector) *numerics.Matrix {
	m := numerics.NewMatrix(2, b.nu)
	if b.OnControl {
		m.Set(0, b.Index, 1)
		m.Set(1, b.Index, -1)
	}
	return m
}
