package ipddp

import "github.com/opentraj/ipddp/numerics"

// Trajectory is the primal pair (X, U) of §3: X holds N+1 state
// vectors, U holds N control vectors. X[0] is immutable once a solve
// has started.
type Trajectory struct {
	X []numerics.Vector
	U []numerics.Vector
}

// NewTrajectory allocates a zeroed trajectory for the given horizon and
// dimensions.
func NewTrajectory(horizon, nx, nu int) Trajectory {
	t := Trajectory{
		X: make([]numerics.Vector, horizon+1),
		U: make([]numerics.Vector, horizon),
	}
	for i := range t.X {
		t.X[i] = make(numerics.Vector, nx)
	}
	for i := range t.U {
		t.U[i] = make(numerics.Vector, nu)
	}
	return t
}

// Horizon returns N, the number of control intervals.
func (t Trajectory) Horizon() int { return len(t.U) }

// Clone returns a deep copy of t.
func (t Trajectory) Clone() Trajectory {
	out := Trajectory{
		X: make([]numerics.Vector, len(t.X)),
		U: make([]numerics.Vector, len(t.U)),
	}
	for i, x := range t.X {
		out.X[i] = x.Clone()
	}
	for i, u := range t.U {
		out.U[i] = u.Clone()
	}
	return out
}

// CopyFrom overwrites t's contents with src in place, without
// reallocating — used on the accepted-trajectory mutation path so the
// workspace's backing arrays stay stable across iterations (§3
// "Lifecycles").
func (t Trajectory) CopyFrom(src Trajectory) {
	for i := range t.X {
		copy(t.X[i], src.X[i])
	}
	for i := range t.U {
		copy(t.U[i], src.U[i])
	}
}

// MatchesDims reports whether t has the given horizon and state/control
// dimensions.
func (t Trajectory) MatchesDims(horizon, nx, nu int) bool {
	if len(t.X) != horizon+1 || len(t.U) != horizon {
		return false
	}
	if len(t.X) > 0 && len(t.X[0]) != nx {
		return false
	}
	if len(t.U) > 0 && len(t.U[0]) != nu {
		return false
	}
	return true
}

// InterpolateStates fills X by linear interpolation from x0 to xRef
// across the horizon (§4.3 cold-start initialization), leaving U
// untouched (the caller zeroes U separately).
func InterpolateStates(x0, xRef numerics.Vector, horizon int) []numerics.Vector {
	out := make([]numerics.Vector, horizon+1)
	n := len(x0)
	for t := 0; t <= horizon; t++ {
		frac := float64(t) / float64(horizon)
		xt := make(numerics.Vector, n)
		for i := 0; i < n; i++ {
			xt[i] = x0[i] + frac*(xRef[i]-x0[i])
		}
		out[t] = xt
	}
	return out
}
