package ipddp

import (
	"testing"

	"github.com/opentraj/ipddp/internal/fixtures"
	"github.com/opentraj/ipddp/numerics"
)

func TestSolveUnconstrainedDoubleIntegratorConverges(t *testing.T) {
	sys := fixtures.NewDoubleIntegrator()
	obj := fixtures.NewQuadraticTracking(
		numerics.Vector{1, 1}, numerics.Vector{0.01}, numerics.Vector{10, 10},
		numerics.Vector{1, 0},
	)

	s := NewSolver()
	opts := DefaultOptions()
	opts.MaxIterations = 100
	opts.Parallel = false

	if err := s.Configure(numerics.Vector{0, 0}, numerics.Vector{1, 0}, 40, 0.05, sys, obj, opts); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	sol, err := s.Solve("IPDDP")
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if sol.Status != StatusOptimalSolutionFound && sol.Status != StatusAcceptableSolutionFound {
		t.Fatalf("Solve: status = %v, expected convergence", sol.Status)
	}
	finalX := sol.StateTrajectory[len(sol.StateTrajectory)-1]
	if finalX[0] < 0.5 {
		t.Errorf("Solve: final position %v did not move meaningfully toward the target 1.0", finalX[0])
	}
	if len(sol.ControlFeedbackGainsK) != s.horizon {
		t.Errorf("Solve: got %d feedback gains, want %d", len(sol.ControlFeedbackGainsK), s.horizon)
	}
}

func TestSolveBoxConstrainedDoubleIntegratorRespectsBound(t *testing.T) {
	sys := fixtures.NewDoubleIntegrator()
	obj := fixtures.NewQuadraticTracking(
		numerics.Vector{1, 1}, numerics.Vector{0.01}, numerics.Vector{10, 10},
		numerics.Vector{1, 0},
	)

	s := NewSolver()
	opts := DefaultOptions()
	opts.MaxIterations = 150
	opts.Parallel = false

	if err := s.Configure(numerics.Vector{0, 0}, numerics.Vector{1, 0}, 40, 0.05, sys, obj, opts); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	uMax := 0.3
	if err := s.AddPathConstraint("u_bound", fixtures.NewControlBoxConstraint(0, 2, 1, -uMax, uMax)); err != nil {
		t.Fatalf("AddPathConstraint: %v", err)
	}

	sol, err := s.Solve("IPDDP")
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status == StatusUnknownSolver {
		t.Fatalf("Solve: unexpected UnknownSolver status")
	}

	const slack = 1e-2 // interior-point iterates stay strictly inside the bound, not exactly on it
	for t_, u := range sol.ControlTrajectory {
		if u[0] > uMax+slack || u[0] < -uMax-slack {
			t.Errorf("control bound violated at step %d: u=%v, bound=[%v, %v]", t_, u[0], -uMax, uMax)
		}
	}
}

func TestSolveCarParkingScenarioReachesNeighborhood(t *testing.T) {
	sys := fixtures.NewCar(2.5)
	target := numerics.Vector{5, 2, 0, 0}
	obj := fixtures.NewParkingObjective(
		numerics.Vector{0.05, 0.05},
		target,
		numerics.Vector{20, 20, 5, 5},
	)

	s := NewSolver()
	opts := DefaultOptions()
	opts.MaxIterations = 150
	opts.Parallel = false
	opts.FullDDP = false

	x0 := numerics.Vector{0, 0, 0, 0}
	if err := s.Configure(x0, target, 60, 0.05, sys, obj, opts); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	sol, err := s.Solve("IPDDP")
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	finalX := sol.StateTrajectory[len(sol.StateTrajectory)-1]
	dist := (finalX[0]-target[0])*(finalX[0]-target[0]) + (finalX[1]-target[1])*(finalX[1]-target[1])
	if dist > 4.0 {
		t.Errorf("car parking: final position %v too far from target %v (sq dist %v)", finalX[:2], target[:2], dist)
	}
}

func TestSolveInfeasibleBoundTerminatesWithoutPanic(t *testing.T) {
	sys := fixtures.NewDoubleIntegrator()
	obj := fixtures.NewQuadraticTracking(
		numerics.Vector{1, 1}, numerics.Vector{0.01}, numerics.Vector{10, 10},
		numerics.Vector{1, 0},
	)

	s := NewSolver()
	opts := DefaultOptions()
	opts.MaxIterations = 30
	opts.Parallel = false

	if err := s.Configure(numerics.Vector{0, 0}, numerics.Vector{1, 0}, 20, 0.05, sys, obj, opts); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	// An inconsistent pair of bounds on the same control component: the
	// solver must still terminate with a well-formed Solution rather
	// than hang or panic.
	if err := s.AddPathConstraint("tight", fixtures.NewControlBoxConstraint(0, 2, 1, 0.1, -0.1)); err != nil {
		t.Fatalf("AddPathConstraint: %v", err)
	}

	sol, err := s.Solve("IPDDP")
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status == "" {
		t.Error("Solve: expected a non-empty terminal status even for an infeasible bound")
	}
}

func TestSolveUnknownSolverDoesNotError(t *testing.T) {
	sys := fixtures.NewDoubleIntegrator()
	obj := fixtures.NewQuadraticTracking(
		numerics.Vector{1, 1}, numerics.Vector{0.01}, numerics.Vector{10, 10},
		numerics.Vector{1, 0},
	)

	s := NewSolver()
	if err := s.Configure(numerics.Vector{0, 0}, numerics.Vector{1, 0}, 10, 0.05, sys, obj, DefaultOptions()); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	sol, err := s.Solve("NOT_A_REAL_SOLVER")
	if err != nil {
		t.Fatalf("Solve: expected no error for an unregistered solver name, got %v", err)
	}
	if sol.Status != StatusUnknownSolver {
		t.Errorf("Solve: got status %v, want %v", sol.Status, StatusUnknownSolver)
	}
	if len(sol.StateTrajectory) != 0 {
		t.Errorf("Solve: expected an empty trajectory for UnknownSolver, got %d states", len(sol.StateTrajectory))
	}
}

func TestSolveBeforeConfigureReturnsConfigurationError(t *testing.T) {
	s := NewSolver()
	_, err := s.Solve("IPDDP")
	if err == nil {
		t.Fatal("Solve: expected a ConfigurationError when called before Configure")
	}
	if _, ok := err.(*ConfigurationError); !ok {
		t.Errorf("Solve: got error of type %T, want *ConfigurationError", err)
	}
}

func TestWarmStartReuseWithMatchingDimensions(t *testing.T) {
	sys := fixtures.NewDoubleIntegrator()
	obj := fixtures.NewQuadraticTracking(
		numerics.Vector{1, 1}, numerics.Vector{0.01}, numerics.Vector{10, 10},
		numerics.Vector{1, 0},
	)

	s := NewSolver()
	opts := DefaultOptions()
	opts.MaxIterations = 100
	opts.Parallel = false
	opts.WarmStart = true

	if err := s.Configure(numerics.Vector{0, 0}, numerics.Vector{1, 0}, 30, 0.05, sys, obj, opts); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	first, err := s.Solve("IPDDP")
	if err != nil {
		t.Fatalf("Solve (first): %v", err)
	}

	second, err := s.Solve("IPDDP")
	if err != nil {
		t.Fatalf("Solve (second): %v", err)
	}

	// A warm-started re-solve of an already-converged problem should
	// need at most as many iterations as the cold-started first solve.
	if second.IterationsCompleted > first.IterationsCompleted {
		t.Errorf("warm start: second solve took %d iterations, first took %d", second.IterationsCompleted, first.IterationsCompleted)
	}
}
