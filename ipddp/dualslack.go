package ipddp

import (
	"math"

	"github.com/opentraj/ipddp/constraint"
	"github.com/opentraj/ipddp/numerics"
)

// DualSlackState holds, for one constraint store, the per-timestep dual
// y, slack s, and cached residual g arrays flattened across every
// constraint registered in the store (§3 "Dual/slack store"). Path
// constraints get one entry per t in [0, N); terminal constraints get a
// single entry.
type DualSlackState struct {
	store *constraint.Store
	Y     []numerics.Vector
	S     []numerics.Vector
	G     []numerics.Vector
}

// NewDualSlackState allocates zeroed arrays for steps timesteps, sized
// to store's current flat dual dimension.
func NewDualSlackState(store *constraint.Store, steps int) *DualSlackState {
	dim := store.TotalDim()
	d := &DualSlackState{store: store}
	d.Y = make([]numerics.Vector, steps)
	d.S = make([]numerics.Vector, steps)
	d.G = make([]numerics.Vector, steps)
	for t := 0; t < steps; t++ {
		d.Y[t] = make(numerics.Vector, dim)
		d.S[t] = make(numerics.Vector, dim)
		d.G[t] = make(numerics.Vector, dim)
	}
	return d
}

// Steps returns the number of timesteps this state tracks.
func (d *DualSlackState) Steps() int { return len(d.Y) }

// Dim returns the flat dual/slack dimension (Σ_i m_i).
func (d *DualSlackState) Dim() int { return d.store.TotalDim() }

// EvaluateResidual refreshes G[t] from the current (x, u) at step t.
func (d *DualSlackState) EvaluateResidual(t int, x, u numerics.Vector) {
	d.store.StackResidual(x, u, d.G[t])
}

// Initialize seeds Y[t]/S[t] from the current residual at every
// timestep following §4.3's rule:
//
//	s_i ← max(slackInitScale, -g_i)
//	y_i ← clamp(μ/s_i, 0.01*dualInitScale, 100*dualInitScale)
func (d *DualSlackState) Initialize(xs, us []numerics.Vector, mu float64, opts Options) {
	dim := d.Dim()
	for t := 0; t < len(d.Y); t++ {
		u := numerics.Vector(nil)
		if t < len(us) {
			u = us[t]
		}
		d.EvaluateResidual(t, xs[t], u)
		for i := 0; i < dim; i++ {
			s := math.Max(opts.SlackInitScale, -d.G[t][i])
			d.S[t][i] = s
			y := mu / s
			d.Y[t][i] = numerics.Clamp(y, 0.01*opts.DualInitScale, 100*opts.DualInitScale)
		}
	}
}

// AllPositive reports whether every slack and dual component across
// every timestep is strictly positive (§8 "Positivity").
func (d *DualSlackState) AllPositive() bool {
	for t := range d.Y {
		for _, v := range d.Y[t] {
			if v <= 0 {
				return false
			}
		}
		for _, v := range d.S[t] {
			if v <= 0 {
				return false
			}
		}
	}
	return true
}

// CopyFrom overwrites d's contents with src without reallocating.
// Only the first min(d.Steps(), src.Steps()) timesteps are copied, so
// src may be longer or shorter than d.
func (d *DualSlackState) CopyFrom(src *DualSlackState) {
	n := len(d.Y)
	if len(src.Y) < n {
		n = len(src.Y)
	}
	for t := 0; t < n; t++ {
		copy(d.Y[t], src.Y[t])
		copy(d.S[t], src.S[t])
		copy(d.G[t], src.G[t])
	}
}
