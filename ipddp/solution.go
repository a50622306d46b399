package ipddp

import "github.com/opentraj/ipddp/numerics"

// History carries the optional per-iteration diagnostics of §6
// ("iteration-history arrays keyed as history_* with uniform length").
// Expressed as a struct-of-slices rather than a string-keyed map, per
// §9's redesign note on typed records over heterogeneous maps.
type History struct {
	Cost             []float64
	InfPrimal        []float64
	InfDual          []float64
	InfComplementary []float64
	Mu               []float64
	Rho              []float64
	StepLength       []float64
}

// Solution is the single typed output of Solve (§6, §9). It is always
// returned — even on failure — with Status/StatusMessage explaining
// why, per §7's "Solve() always returns a solution record."
type Solution struct {
	SolverName   string
	Status       Status
	StatusMessage string

	IterationsCompleted int
	SolveTimeMs          float64

	FinalObjective  float64
	FinalStepLength float64

	TimePoints        []float64
	StateTrajectory   []numerics.Vector
	ControlTrajectory []numerics.Vector

	// ControlFeedbackGainsK is the time-varying feedback gain sequence
	// K_u,t (§3 "Gains") a tracking controller uses in closed loop.
	ControlFeedbackGainsK []*numerics.Matrix

	FinalRegularization     float64
	FinalBarrierParameterMu float64

	FinalPrimalInfeasibility        float64
	FinalDualInfeasibility          float64
	FinalComplementaryInfeasibility float64

	// History is non-nil only when Options.RecordHistory was set.
	History *History
}

// unknownSolverSolution builds the well-formed, empty-trajectory
// solution §7/§8 scenario 5 requires when Solve is asked for a name
// that was never registered.
func unknownSolverSolution(name string) Solution {
	return Solution{
		SolverName:    name,
		Status:        StatusUnknownSolver,
		StatusMessage: "UnknownSolver: no solver registered under name " + name,
	}
}
