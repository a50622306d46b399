package ipddp

import "testing"

func TestRegularizationOnFailureIncreasesRho(t *testing.T) {
	opts := DefaultOptions()
	opts.RhoInit = 1e-6
	opts.RhoFactor = 10
	opts.RhoMax = 1e8

	r := NewRegularizationState(opts)
	before := r.Rho
	r.OnFailure()
	if r.Rho != before*10 {
		t.Errorf("OnFailure: got %v, want %v", r.Rho, before*10)
	}
	if r.TerminalRho != before*10 {
		t.Errorf("OnFailure: TerminalRho got %v, want %v", r.TerminalRho, before*10)
	}
}

func TestRegularizationOnSuccessDecreasesRho(t *testing.T) {
	opts := DefaultOptions()
	opts.RhoInit = 1.0
	opts.RhoFactor = 10
	opts.RhoMin = 1e-9

	r := NewRegularizationState(opts)
	r.OnSuccess()
	if r.Rho != 0.1 {
		t.Errorf("OnSuccess: got %v, want 0.1", r.Rho)
	}
}

func TestRegularizationSaturated(t *testing.T) {
	opts := DefaultOptions()
	opts.RhoInit = 1.0
	opts.RhoMax = 10.0
	opts.RhoFactor = 10

	r := NewRegularizationState(opts)
	if r.Saturated() {
		t.Fatal("expected not saturated at init")
	}
	r.OnFailure()
	if !r.Saturated() {
		t.Error("expected saturated once rho reaches rho_max")
	}
}

func TestRegularizationClampsAtBounds(t *testing.T) {
	opts := DefaultOptions()
	opts.RhoInit = 1e-9
	opts.RhoMin = 1e-9
	opts.RhoMax = 1e8
	opts.RhoFactor = 10

	r := NewRegularizationState(opts)
	r.OnSuccess()
	if r.Rho != opts.RhoMin {
		t.Errorf("OnSuccess below RhoMin: got %v, want floor %v", r.Rho, opts.RhoMin)
	}
}
