package ipddp

import "math"

// FilterPoint is one (merit, constraint_violation) entry in the filter
// (§3 "Filter", glossary). Violation is the θ = Σ‖g+s‖₁ measure.
type FilterPoint struct {
	Merit     float64
	Violation float64
}

// Filter is the ordered sequence of FilterPoints a trial iterate must
// not be dominated by (§9 "model explicitly rather than a scatter of
// booleans").
type Filter struct {
	points []FilterPoint
}

// NewFilter returns an empty filter.
func NewFilter() *Filter { return &Filter{} }

// Reset clears the filter, leaving it empty. The solver itself resets
// through ResetWith, which also seeds the starting point.
func (f *Filter) Reset() { f.points = f.points[:0] }

// ResetWith clears the filter and seeds it with a single starting
// point, mirroring the original solver's resetBarrierFilter.
func (f *Filter) ResetWith(p FilterPoint) {
	f.points = f.points[:0]
	f.points = append(f.points, p)
}

// Add appends p to the filter.
func (f *Filter) Add(p FilterPoint) { f.points = append(f.points, p) }

// Last returns the most recently added point (the reset point, or the
// last accepted trial that was added to the filter). Panics if the filter
// is empty; callers always reset with a starting point first.
func (f *Filter) Last() FilterPoint { return f.points[len(f.points)-1] }

// Dominated reports whether p is dominated by any existing filter
// point: a trial with both worse merit and worse violation than some
// recorded point must be rejected.
func (f *Filter) Dominated(p FilterPoint) bool {
	for _, q := range f.points {
		if p.Merit >= q.Merit && p.Violation >= q.Violation {
			return true
		}
	}
	return false
}

// FilterDecision is the outcome of the acceptance test: whether the
// trial point is accepted, and whether it should be appended to the
// filter (the Armijo-type switching branch is accepted without being
// added, matching the original solver's behavior).
type FilterDecision struct {
	Accept    bool
	AddToFilter bool
}

// Accept runs the three-branch filter/Armijo acceptance test of §4.2
// step 6 against the previous iterate (old) for the trial point
// (trial), given the step length alpha and the backward pass's
// predicted first-order reduction dV1 (negative when a decrease is
// expected).
func (f *Filter) Accept(opts Options, old, trial FilterPoint, alpha, dv1 float64) FilterDecision {
	if f.Dominated(trial) {
		return FilterDecision{}
	}

	// Branch 1: constraint violation starts out (or stays) large but
	// shrinks by the required fraction.
	if trial.Violation > opts.FilterThetaMax && trial.Violation < (1-opts.FilterGammaTheta)*old.Violation {
		return FilterDecision{Accept: true, AddToFilter: true}
	}

	// Branch 2: both iterates are nearly feasible and the step is a
	// genuine descent direction — accept under an Armijo-type sufficient
	// decrease without adding to the filter (switching condition).
	maxTheta := math.Max(trial.Violation, old.Violation)
	if maxTheta < opts.FilterThetaMinArmijo && alpha*dv1 < 0 {
		if trial.Merit < old.Merit+opts.FilterEtaA*alpha*dv1 {
			return FilterDecision{Accept: true, AddToFilter: false}
		}
	}

	// Branch 3: sufficient decrease in merit or in violation.
	if trial.Merit < old.Merit-opts.FilterSM*trial.Violation ||
		trial.Violation < (1-opts.FilterGammaTheta)*old.Violation {
		return FilterDecision{Accept: true, AddToFilter: true}
	}

	return FilterDecision{}
}

// UnconstrainedAccept implements the collapsed unconstrained-case
// acceptance test of §4.2's closing paragraph: an expected-vs-actual
// cost-reduction ratio test. expectedChange and actualChange are the
// predicted and observed cost changes, negative for a decrease.
func UnconstrainedAccept(expectedChange, actualChange, ratioMin float64) bool {
	if expectedChange >= 0 {
		return actualChange < 0
	}
	ratio := actualChange / expectedChange
	return ratio > ratioMin
}
