package ipddp

import (
	"sync"

	"github.com/opentraj/ipddp/numerics"
)

// Workspace holds every dense buffer the solver reuses across
// iterations: per-timestep Jacobians, optional Hessian tensors, and a
// per-timestep LDLᵀ factorization cache with an explicit validity flag
// (§3 "Lifecycles", §5 "Shared-resource policy", §9 "Workspace reuse").
// It is allocated by initialize and rebuilt only when the dimensions
// change, Configure is called again, or a constraint is added or
// removed.
type Workspace struct {
	horizon, nx, nu, dim int
	fullDDP              bool

	Fx, Fu []*numerics.Matrix // continuous-time ∂f/∂x, ∂f/∂u, one per t
	Gx, Gu []*numerics.Matrix // stacked constraint Jacobians, one per t

	// Optional second-order dynamics tensors, one slice of nx matrices
	// per t; nil when fullDDP is false (iLQR mode).
	Fxx, Fuu, Fux [][]*numerics.Matrix

	factorizations []*numerics.LDLT
	factorizedOK   []bool

	vecPool sync.Pool // scratch numerics.Vector sized nx, served by GetScratch/PutScratch
}

// NewWorkspace allocates every buffer up front for the given horizon
// and dimensions.
func NewWorkspace(horizon, nx, nu, dim int, fullDDP bool) *Workspace {
	w := &Workspace{horizon: horizon, nx: nx, nu: nu, dim: dim, fullDDP: fullDDP}

	w.Fx = make([]*numerics.Matrix, horizon)
	w.Fu = make([]*numerics.Matrix, horizon)
	w.Gx = make([]*numerics.Matrix, horizon)
	w.Gu = make([]*numerics.Matrix, horizon)
	w.factorizations = make([]*numerics.LDLT, horizon)
	w.factorizedOK = make([]bool, horizon)

	for t := 0; t < horizon; t++ {
		w.Fx[t] = numerics.NewMatrix(nx, nx)
		w.Fu[t] = numerics.NewMatrix(nx, nu)
		if dim > 0 {
			w.Gx[t] = numerics.NewMatrix(dim, nx)
			w.Gu[t] = numerics.NewMatrix(dim, nu)
		}
		w.factorizations[t] = numerics.NewLDLT(nu)
	}

	if fullDDP {
		w.Fxx = make([][]*numerics.Matrix, horizon)
		w.Fuu = make([][]*numerics.Matrix, horizon)
		w.Fux = make([][]*numerics.Matrix, horizon)
		for t := 0; t < horizon; t++ {
			w.Fxx[t] = make([]*numerics.Matrix, nx)
			w.Fuu[t] = make([]*numerics.Matrix, nx)
			w.Fux[t] = make([]*numerics.Matrix, nx)
			for i := 0; i < nx; i++ {
				w.Fxx[t][i] = numerics.NewMatrix(nx, nx)
				w.Fuu[t][i] = numerics.NewMatrix(nu, nu)
				w.Fux[t][i] = numerics.NewMatrix(nu, nx)
			}
		}
	}

	w.vecPool.New = func() interface{} { return make(numerics.Vector, nx) }

	return w
}

// GetScratch returns a zeroed state-sized scratch vector from the pool.
func (w *Workspace) GetScratch() numerics.Vector {
	v := w.vecPool.Get().(numerics.Vector)
	v.Zero()
	return v
}

// PutScratch returns v to the pool for reuse.
func (w *Workspace) PutScratch(v numerics.Vector) {
	if len(v) == w.nx {
		w.vecPool.Put(v)
	}
}

// Factorization returns the cached LDLT for timestep t.
func (w *Workspace) Factorization(t int) *numerics.LDLT { return w.factorizations[t] }

// MarkFactorized records whether timestep t's factorization succeeded,
// validating the per-t staleness flag (§5).
func (w *Workspace) MarkFactorized(t int, ok bool) { w.factorizedOK[t] = ok }

// Factorized reports whether timestep t currently holds a valid
// factorization.
func (w *Workspace) Factorized(t int) bool { return w.factorizedOK[t] }

// InvalidateFactorizations marks every cached factorization stale,
// called whenever ρ changes and the backward sweep must retry from
// scratch (§5 "invalidated on any update").
func (w *Workspace) InvalidateFactorizations() {
	for t := range w.factorizedOK {
		w.factorizedOK[t] = false
	}
}
