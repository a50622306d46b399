package ipddp

import "github.com/opentraj/ipddp/numerics"

// RegularizationState tracks ρ (Hessian regularization) and the
// terminal-regularization counter described in §4.5 and §9 ("keep the
// knob for compatibility but do not assume semantics beyond 'symmetric
// counterpart of ρ'"). TerminalRho is updated in lockstep with Rho by
// every call here; nothing in the backward pass currently reads it.
type RegularizationState struct {
	Rho         float64
	TerminalRho float64

	factor, min, max float64
}

// NewRegularizationState initializes ρ and its terminal counterpart
// from Options.
func NewRegularizationState(opts Options) *RegularizationState {
	return &RegularizationState{
		Rho:         opts.RhoInit,
		TerminalRho: opts.RhoInit,
		factor:      opts.RhoFactor,
		min:         opts.RhoMin,
		max:         opts.RhoMax,
	}
}

// OnFailure multiplies ρ (and its terminal counterpart) by the fixed
// factor, clamped to ρ_max, after a non-PD factorization or a forward
// pass that rejected every step length.
func (r *RegularizationState) OnFailure() {
	r.Rho = numerics.Clamp(r.Rho*r.factor, r.min, r.max)
	r.TerminalRho = numerics.Clamp(r.TerminalRho*r.factor, r.min, r.max)
}

// OnSuccess divides ρ (and its terminal counterpart) by the fixed
// factor, clamped to ρ_min, after an accepted iteration.
func (r *RegularizationState) OnSuccess() {
	r.Rho = numerics.Clamp(r.Rho/r.factor, r.min, r.max)
	r.TerminalRho = numerics.Clamp(r.TerminalRho/r.factor, r.min, r.max)
}

// Saturated reports whether ρ has reached ρ_max, the driver's signal to
// terminate with RegularizationLimitReached_NotConverged.
func (r *RegularizationState) Saturated() bool {
	return r.Rho >= r.max
}
