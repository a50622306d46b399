package ipddp

import "testing"

func TestRegisterSolverAndLookup(t *testing.T) {
	RegisterSolver("test-echo", func() Algorithm { return &ipddpAlgorithm{} })

	factory, ok := lookupSolver("test-echo")
	if !ok {
		t.Fatal("lookupSolver: expected the just-registered name to be found")
	}
	if factory() == nil {
		t.Error("factory: expected a non-nil Algorithm")
	}
}

func TestLookupUnregisteredSolverReturnsFalse(t *testing.T) {
	_, ok := lookupSolver("definitely-not-registered")
	if ok {
		t.Error("lookupSolver: expected false for an unregistered name")
	}
}

func TestIPDDPRegisteredByDefault(t *testing.T) {
	_, ok := lookupSolver("IPDDP")
	if !ok {
		t.Fatal("lookupSolver: expected \"IPDDP\" to be registered by this package's init()")
	}
}
