package ipddp

import (
	"math"
	"testing"
)

func TestScaledDualInfeasibilityBelowFloor(t *testing.T) {
	// normY1+normS1 small relative to m+n keeps sd at 1 (s_max dominates).
	sd := ScaledDualInfeasibility(2.0, 1.0, 1.0, 3, 1)
	if math.Abs(sd-2.0) > 1e-12 {
		t.Errorf("ScaledDualInfeasibility: got %v, want 2.0 (unscaled)", sd)
	}
}

func TestScaledDualInfeasibilityAboveFloorShrinks(t *testing.T) {
	// large (normY1+normS1)/(m+n) inflates the scale factor, shrinking the
	// reported infeasibility below the raw value.
	sd := ScaledDualInfeasibility(2.0, 10000.0, 10000.0, 10, 10)
	if sd >= 2.0 {
		t.Errorf("ScaledDualInfeasibility: got %v, expected scaling to shrink below 2.0", sd)
	}
}

func TestUpdateBarrierMonotonic(t *testing.T) {
	opts := DefaultOptions()
	opts.BarrierStrategy = BarrierMonotonic
	opts.KappaMu = 0.2
	opts.MuMin = 1e-9

	newMu, changed := UpdateBarrier(1.0, 0, opts)
	if !changed {
		t.Fatal("UpdateBarrier monotonic: expected a change")
	}
	if math.Abs(newMu-0.2) > 1e-12 {
		t.Errorf("UpdateBarrier monotonic: got %v, want 0.2", newMu)
	}
}

func TestUpdateBarrierMonotonicFloorsAtMuMin(t *testing.T) {
	opts := DefaultOptions()
	opts.BarrierStrategy = BarrierMonotonic
	opts.MuMin = 0.5
	opts.KappaMu = 0.01

	newMu, _ := UpdateBarrier(1.0, 0, opts)
	if newMu != opts.MuMin {
		t.Errorf("UpdateBarrier monotonic floor: got %v, want %v", newMu, opts.MuMin)
	}
}

func TestUpdateBarrierIPOPTLikeRefusesWhenInfeasibilityHigh(t *testing.T) {
	opts := DefaultOptions()
	opts.BarrierStrategy = BarrierIPOPTLike
	opts.KappaEpsilon = 10

	_, changed := UpdateBarrier(1.0, 100.0, opts)
	if changed {
		t.Error("UpdateBarrier ipopt-like: expected no update while e > kappaEpsilon*mu")
	}
}

func TestUpdateBarrierIPOPTLikeDecreasesWhenSatisfied(t *testing.T) {
	opts := DefaultOptions()
	opts.BarrierStrategy = BarrierIPOPTLike
	opts.KappaEpsilon = 10
	opts.KappaMu = 0.2
	opts.ThetaMu = 1.5

	newMu, changed := UpdateBarrier(1.0, 0.01, opts)
	if !changed {
		t.Fatal("UpdateBarrier ipopt-like: expected a change once e is small")
	}
	if newMu >= 1.0 {
		t.Errorf("UpdateBarrier ipopt-like: got %v, expected a decrease from 1.0", newMu)
	}
}

func TestUpdateBarrierAdaptiveRefusesWhenInfeasibilityHigh(t *testing.T) {
	opts := DefaultOptions()
	opts.BarrierStrategy = BarrierAdaptive

	_, changed := UpdateBarrier(1.0, 100.0, opts)
	if changed {
		t.Error("UpdateBarrier adaptive: expected no update while e is large")
	}
}
