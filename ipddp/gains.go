package ipddp

import "github.com/opentraj/ipddp/numerics"

// Gains holds the time-varying feedforward/feedback gains the backward
// pass produces (§3 "Gains"). Control gains have one entry per t in
// [0, N); dual/slack gains are sized to the path-constraint store's
// flat dual dimension and are empty slices when there are no path
// constraints.
type Gains struct {
	FeedforwardU []numerics.Vector // k_u,t, length nu
	FeedbackU    []*numerics.Matrix // K_u,t, nu x nx

	FeedforwardY []numerics.Vector // k_y,t, length dim
	FeedbackY    []*numerics.Matrix // K_y,t, dim x nx

	FeedforwardS []numerics.Vector // k_s,t, length dim
	FeedbackS    []*numerics.Matrix // K_s,t, dim x nx
}

// TerminalGains holds the single-timestep feedforward/feedback gains
// for the optional terminal inequalities h(x_N) ≤ 0 (§1). Terminal
// constraints depend only on x_N, so there is no control-coupling term
// the way there is for path constraints.
type TerminalGains struct {
	FeedforwardY numerics.Vector
	FeedbackY    *numerics.Matrix
	FeedforwardS numerics.Vector
	FeedbackS    *numerics.Matrix
}

// NewTerminalGains allocates terminal-gain storage for state dimension
// nx and flat terminal-constraint dimension dim.
func NewTerminalGains(nx, dim int) *TerminalGains {
	return &TerminalGains{
		FeedforwardY: make(numerics.Vector, dim),
		FeedbackY:    numerics.NewMatrix(dim, nx),
		FeedforwardS: make(numerics.Vector, dim),
		FeedbackS:    numerics.NewMatrix(dim, nx),
	}
}

// NewGains allocates gain storage for a horizon of N steps with control
// dimension nu, state dimension nx, and flat constraint dimension dim.
func NewGains(horizon, nx, nu, dim int) *Gains {
	g := &Gains{
		FeedforwardU: make([]numerics.Vector, horizon),
		FeedbackU:    make([]*numerics.Matrix, horizon),
		FeedforwardY: make([]numerics.Vector, horizon),
		FeedbackY:    make([]*numerics.Matrix, horizon),
		FeedforwardS: make([]numerics.Vector, horizon),
		FeedbackS:    make([]*numerics.Matrix, horizon),
	}
	for t := 0; t < horizon; t++ {
		g.FeedforwardU[t] = make(numerics.Vector, nu)
		g.FeedbackU[t] = numerics.NewMatrix(nu, nx)
		g.FeedforwardY[t] = make(numerics.Vector, dim)
		g.FeedbackY[t] = numerics.NewMatrix(dim, nx)
		g.FeedforwardS[t] = make(numerics.Vector, dim)
		g.FeedbackS[t] = numerics.NewMatrix(dim, nx)
	}
	return g
}
