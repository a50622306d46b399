package ipddp

import (
	"github.com/opentraj/ipddp/constraint"
	"github.com/opentraj/ipddp/dynamics"
	"github.com/opentraj/ipddp/numerics"
	"github.com/opentraj/ipddp/objective"
)

// Solver is the solver context of §3: problem sizing, the current
// primal trajectory, regularization/barrier state, options, and the
// pre-allocated workspace the backward/forward passes mutate in place.
// A Solver is reused across successive Solve calls — Configure may be
// called again with new dimensions, which forces the workspace to be
// rebuilt on the next Solve.
type Solver struct {
	nx, nu, horizon int
	dt              float64
	x0, xRef        numerics.Vector

	sys dynamics.System
	obj objective.Objective

	pathConstraints *constraint.Store
	termConstraints *constraint.Store

	opts      Options
	lifecycle State

	traj      Trajectory
	gains     *Gains
	termGains *TerminalGains
	pathDual  *DualSlackState
	termDual  *DualSlackState
	termGx    *numerics.Matrix

	ws  *Workspace
	reg *RegularizationState
	mu  float64

	filter *Filter

	cost, merit                    float64
	infPr, infDu, infComp          float64
	stepNorm, alphaPr, alphaDu     float64

	configured   bool
	hasSolved    bool
	needsReinit  bool // set on constraint-store mutation, forces a cold start
	pendingTraj  Trajectory
	hasPending   bool

	// Warnings accumulates non-fatal diagnostics (currently just
	// SetInitialTrajectory dimension mismatches, §6 "Warn (not fail)").
	Warnings []string
}

// NewSolver returns a Solver in the Uninitialized lifecycle state with
// empty path/terminal constraint stores ready to receive
// AddPathConstraint/AddTerminalConstraint calls even before Configure.
func NewSolver() *Solver {
	return &Solver{
		pathConstraints: constraint.NewStore(),
		termConstraints: constraint.NewStore(),
		lifecycle:       StateUninitialized,
		filter:          NewFilter(),
	}
}

// Configure sets the problem sizing and user-supplied callbacks (§6).
// It validates eagerly and does not mutate solver state on failure
// (§7 ConfigurationError).
func (s *Solver) Configure(x0, xRef numerics.Vector, horizon int, dt float64, sys dynamics.System, obj objective.Objective, opts Options) error {
	if sys == nil {
		return &ConfigurationError{Field: "system", Wrapped: ErrMissingDynamics}
	}
	if obj == nil {
		return &ConfigurationError{Field: "objective", Wrapped: ErrMissingObjective}
	}
	if horizon <= 0 {
		return &ConfigurationError{Field: "horizon", Wrapped: ErrZeroHorizon}
	}
	nx, nu := sys.StateDim(), sys.ControlDim()
	if len(x0) != nx || len(xRef) != nx {
		return &ConfigurationError{Field: "x0/xRef", Wrapped: ErrDimensionMismatch}
	}

	s.nx, s.nu, s.horizon, s.dt = nx, nu, horizon, dt
	s.x0, s.xRef = x0.Clone(), xRef.Clone()
	s.sys, s.obj, s.opts = sys, obj, opts
	s.configured = true
	s.needsReinit = true
	s.lifecycle = StateUninitialized
	return nil
}

// AddPathConstraint registers c under name in the per-timestep
// constraint store (§6). Invalidates the current initialization: the
// next Solve performs a cold start regardless of Options.WarmStart.
func (s *Solver) AddPathConstraint(name string, c constraint.Constraint) error {
	err := s.pathConstraints.Add(name, c)
	if err == nil {
		s.needsReinit = true
	}
	return err
}

// RemovePathConstraint deregisters name, reporting whether it existed.
func (s *Solver) RemovePathConstraint(name string) bool {
	ok := s.pathConstraints.Remove(name)
	if ok {
		s.needsReinit = true
	}
	return ok
}

// AddTerminalConstraint registers c under name in the terminal
// constraint store for the optional h(x_N) <= 0 inequalities (§1).
func (s *Solver) AddTerminalConstraint(name string, c constraint.Constraint) error {
	err := s.termConstraints.Add(name, c)
	if err == nil {
		s.needsReinit = true
	}
	return err
}

// RemoveTerminalConstraint deregisters name, reporting whether it existed.
func (s *Solver) RemoveTerminalConstraint(name string) bool {
	ok := s.termConstraints.Remove(name)
	if ok {
		s.needsReinit = true
	}
	return ok
}

// SetInitialTrajectory supplies a seed (X, U) for the next cold start.
// A dimension mismatch is recorded in Warnings rather than failing
// (§6 "Warn (not fail) on dimension mismatch"); the mismatched
// trajectory is discarded.
func (s *Solver) SetInitialTrajectory(X, U []numerics.Vector) {
	cand := Trajectory{X: X, U: U}
	if s.horizon == 0 || !cand.MatchesDims(s.horizon, s.nx, s.nu) {
		s.Warnings = append(s.Warnings, "SetInitialTrajectory: dimension mismatch, ignoring supplied trajectory")
		return
	}
	s.pendingTraj = cand.Clone()
	s.hasPending = true
}

// Solve looks up solverType in the process-wide registry (§6) and runs
// it against this solver context. A ConfigurationError is returned
// (without mutating solver state) when Configure has not been called
// successfully; an unregistered solverType never errors — it returns
// the well-formed empty-trajectory Solution §7/§8 scenario 5 requires.
func (s *Solver) Solve(solverType string) (Solution, error) {
	factory, ok := lookupSolver(solverType)
	if !ok {
		return unknownSolverSolution(solverType), nil
	}
	if !s.configured {
		return Solution{}, &ConfigurationError{Field: "solver", Wrapped: ErrNotConfigured}
	}

	algo := factory()
	s.lifecycle = StateSolving
	sol := algo.Run(s)
	s.lifecycle = StateTerminated
	s.hasSolved = true
	return sol, nil
}
