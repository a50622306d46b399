// Package ipddp implements the interior-point differential dynamic
// programming (DDP) solver for finite-horizon, discrete-time,
// constrained nonlinear trajectory optimization (see the module's
// SPEC_FULL.md). It provides:
//
//   - [Solver]: the solver context — problem sizing, current primal
//     trajectory, regularization/barrier state, options, and a
//     pre-allocated workspace.
//   - the backward pass ([backwardPass]) and forward pass
//     ([forwardPass]), coupled through the regularization and
//     barrier-parameter update loop in [Solver.Solve].
//   - [RegisterSolver]/[Solver.Solve]: an extensible, string-keyed
//     solver factory registry and the method that looks names up in it.
//
// The library has no CLI and no on-disk format: a caller configures a
// [Solver] in-process, supplies [dynamics.System], [objective.Objective],
// and optional [constraint.Constraint] implementations, and calls
// [Solver.Solve].
package ipddp
