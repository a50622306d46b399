package ipddp

import "math"

// dualScaleMax is s_max in the scaled dual infeasibility formula of §4.4.
const dualScaleMax = 100.0

// ScaledDualInfeasibility computes inf_du_scaled from the raw inf_du
// using the §4.4 scaling factor
//
//	sd = max(s_max, (‖y‖₁+‖s‖₁)/(m+n)) / s_max
func ScaledDualInfeasibility(infDu, normY1, normS1 float64, m, n int) float64 {
	denom := float64(m + n)
	var avg float64
	if denom > 0 {
		avg = (normY1 + normS1) / denom
	}
	sd := math.Max(dualScaleMax, avg) / dualScaleMax
	return infDu / sd
}

// UpdateBarrier applies one of the three §4.4 strategies and returns the
// new μ together with whether the filter should reset (the driver
// resets on any report of true, §4.3 step (e)). The monotonic strategy
// always reports true, even once μ is pinned at MuMin, matching the
// original's unconditional per-iteration filter reset.
func UpdateBarrier(mu float64, e float64, opts Options) (newMu float64, changed bool) {
	switch opts.BarrierStrategy {
	case BarrierMonotonic:
		newMu = math.Max(opts.MuMin, opts.KappaMu*mu)
		return newMu, true

	case BarrierIPOPTLike:
		if e > opts.KappaEpsilon*mu {
			return mu, false
		}
		newMu = math.Max(opts.Tolerance/10, math.Min(opts.KappaMu*mu, math.Pow(mu, opts.ThetaMu)))
		return newMu, newMu != mu

	default: // BarrierAdaptive
		if e > math.Max(opts.KappaMu*mu, 2*mu) {
			return mu, false
		}
		ratio := e / mu
		kappaPrime := opts.KappaMu
		switch {
		case ratio < 0.01:
			kappaPrime = 0.1 * opts.KappaMu
		case ratio < 0.1:
			kappaPrime = 0.3 * opts.KappaMu
		case ratio < 0.5:
			kappaPrime = 0.6 * opts.KappaMu
		}
		newMu = math.Max(opts.Tolerance/100, math.Min(kappaPrime*mu, math.Pow(mu, opts.ThetaMu)))
		return newMu, newMu != mu
	}
}
