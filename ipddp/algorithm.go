package ipddp

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opentraj/ipddp/numerics"
)

// ipddpAlgorithm is the built-in solver registered under "IPDDP" (§6).
// It owns no state of its own beyond the Solver it is handed — every
// field that persists across iterations lives on *Solver so warm start
// works across repeated RegisterSolver-looked-up Run calls.
type ipddpAlgorithm struct{}

// Run drives the §4.3 iteration loop: backward pass, forward pass,
// convergence check, barrier update, until a terminal state is
// reached.
func (ipddpAlgorithm) Run(s *Solver) Solution {
	start := time.Now()
	initialize(s)

	sol := Solution{SolverName: "IPDDP"}
	var hist *History
	if s.opts.RecordHistory {
		hist = &History{}
		recordIteration(hist, s, s.stepNorm)
	}

	status := StatusMaxIterationsReached
	iter := 0
	var dJ float64

loop:
	for iter < s.opts.MaxIterations {
		iter++

		if s.opts.MaxCPUTimeMs > 0 && float64(time.Since(start).Milliseconds()) > s.opts.MaxCPUTimeMs {
			status = StatusMaxCpuTimeReached
			break
		}

		var bw BackwardResult
		for {
			precomputeDerivatives(s)
			bw = backwardPass(s)
			if bw.OK {
				break
			}
			s.ws.InvalidateFactorizations()
			s.reg.OnFailure()
			if s.reg.Saturated() {
				status = StatusRegularizationLimitReachedNotConverged
				break loop
			}
		}
		s.infPr, s.infDu, s.infComp, s.stepNorm = bw.InfPrimal, bw.InfDu, bw.InfComp, bw.StepNorm

		outcome := forwardPass(s, bw)
		if outcome != nil && outcome.ok {
			dJ = s.cost - outcome.cost
			acceptTrajectory(s, outcome)
			s.reg.OnSuccess()
			s.ws.InvalidateFactorizations()
			if hist != nil {
				recordIteration(hist, s, bw.StepNorm)
			}
		} else {
			s.reg.OnFailure()
			s.ws.InvalidateFactorizations()
			if s.reg.Saturated() {
				status = StatusRegularizationLimitReachedNotConverged
				break loop
			}
			if s.opts.IterationCallback != nil {
				s.opts.IterationCallback(IterationInfo{
					Iteration: iter, Accepted: false, Cost: s.cost,
					InfPrimal: s.infPr, InfDual: s.infDu, InfComplementary: s.infComp,
					Mu: s.mu, Rho: s.reg.Rho,
				})
			}
			continue
		}

		if s.opts.IterationCallback != nil {
			s.opts.IterationCallback(IterationInfo{
				Iteration: iter, Accepted: true, Cost: s.cost,
				InfPrimal: s.infPr, InfDual: s.infDu, InfComplementary: s.infComp,
				Mu: s.mu, Rho: s.reg.Rho, StepLength: s.alphaPr,
			})
		}

		if done, reason := checkConvergence(s, dJ, iter); done {
			status = reason
			break
		}

		e := scaledDualInfeasibility(s)
		if newMu, changed := UpdateBarrier(s.mu, e, s.opts); changed {
			s.mu = newMu
			resetFilterState(s)
		}
	}

	sol.Status = status
	sol.StatusMessage = string(status)
	sol.IterationsCompleted = iter
	sol.SolveTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	sol.FinalObjective = s.cost
	sol.FinalStepLength = s.alphaPr
	sol.TimePoints = make([]float64, s.horizon+1)
	for t := 0; t <= s.horizon; t++ {
		sol.TimePoints[t] = float64(t) * s.dt
	}
	sol.StateTrajectory = s.traj.X
	sol.ControlTrajectory = s.traj.U
	sol.ControlFeedbackGainsK = s.gains.FeedbackU
	sol.FinalRegularization = s.reg.Rho
	sol.FinalBarrierParameterMu = s.mu
	sol.FinalPrimalInfeasibility = s.infPr
	sol.FinalDualInfeasibility = s.infDu
	sol.FinalComplementaryInfeasibility = s.infComp
	sol.History = hist
	return sol
}

func recordIteration(h *History, s *Solver, stepNorm float64) {
	h.Cost = append(h.Cost, s.cost)
	h.InfPrimal = append(h.InfPrimal, s.infPr)
	h.InfDual = append(h.InfDual, s.infDu)
	h.InfComplementary = append(h.InfComplementary, s.infComp)
	h.Mu = append(h.Mu, s.mu)
	h.Rho = append(h.Rho, s.reg.Rho)
	h.StepLength = append(h.StepLength, s.alphaPr)
}

// initialize implements §4.3's initialize() together with the
// supplemented feasibility-aware μ seeding described in SPEC_FULL.md §D
// (grounded on ipddp_solver.cpp's initialize/initializeDualSlackVariables).
func initialize(s *Solver) {
	dim := s.pathConstraints.TotalDim()
	termDim := s.termConstraints.TotalDim()

	structural := s.ws == nil || s.ws.horizon != s.horizon || s.ws.nx != s.nx ||
		s.ws.nu != s.nu || s.ws.dim != dim || s.needsReinit

	warmEligible := s.opts.WarmStart && s.hasSolved && !structural &&
		s.traj.MatchesDims(s.horizon, s.nx, s.nu) && s.pathDual != nil &&
		s.pathDual.Dim() == dim && s.pathDual.Steps() == s.horizon

	if structural {
		s.ws = NewWorkspace(s.horizon, s.nx, s.nu, dim, s.opts.FullDDP)
		s.gains = NewGains(s.horizon, s.nx, s.nu, dim)
		s.termGains = NewTerminalGains(s.nx, termDim)
		s.termGx = numerics.NewMatrix(max(termDim, 1), s.nx)
		s.reg = NewRegularizationState(s.opts)
		s.needsReinit = false
	}

	if warmEligible {
		s.mu = s.opts.MuInit * 0.1
		s.stepNorm = 0
		s.cost = evaluateCostAndResiduals(s)
		if s.pathDual == nil || s.pathDual.Dim() != dim {
			s.pathDual = NewDualSlackState(s.pathConstraints, s.horizon)
			s.pathDual.Initialize(s.traj.X, s.traj.U, s.mu, s.opts)
		}
		if s.termDual == nil || s.termDual.Dim() != termDim {
			s.termDual = NewDualSlackState(s.termConstraints, 1)
			s.termDual.Initialize([]numerics.Vector{s.traj.X[s.horizon]}, nil, s.mu, s.opts)
		}
	} else {
		seedTrajectory(s)
		s.gains = NewGains(s.horizon, s.nx, s.nu, dim)
		s.reg = NewRegularizationState(s.opts)
		s.stepNorm = 0

		s.pathDual = NewDualSlackState(s.pathConstraints, s.horizon)
		s.termDual = NewDualSlackState(s.termConstraints, 1)

		// Seed μ from the initial guess's feasibility before it is known
		// (terminal-infeasibility-aware seeding, SPEC_FULL.md §D).
		s.mu = s.opts.MuInit
		if dim == 0 && termDim == 0 {
			s.mu = 1e-8
		} else {
			maxViol := initialMaxViolation(s)
			switch {
			case maxViol <= s.opts.Tolerance:
				s.mu = s.opts.Tolerance * 0.01
			case maxViol <= 0.1:
				s.mu = s.opts.Tolerance
			default:
				s.mu = s.opts.MuInit * 0.1
			}
		}

		s.pathDual.Initialize(s.traj.X, s.traj.U, s.mu, s.opts)
		if termDim > 0 {
			s.termDual.Initialize([]numerics.Vector{s.traj.X[s.horizon]}, nil, s.mu, s.opts)
		}
		s.cost = evaluateCostAndResiduals(s)
	}

	resetFilterState(s)
}

// seedTrajectory fills s.traj by linear interpolation from x0 to xRef
// with zero controls (§4.3 cold-start), unless a matching trajectory
// was supplied via SetInitialTrajectory.
func seedTrajectory(s *Solver) {
	if s.hasPending {
		s.traj = s.pendingTraj
		s.hasPending = false
		return
	}
	s.traj = NewTrajectory(s.horizon, s.nx, s.nu)
	s.traj.X = InterpolateStates(s.x0, s.xRef, s.horizon)
}

// evaluateCostAndResiduals computes Σℓ_t + φ over the current
// trajectory and refreshes the path/terminal constraint residual
// caches, without propagating dynamics (the current X is already the
// authoritative trajectory; only the forward pass rolls it forward).
func evaluateCostAndResiduals(s *Solver) float64 {
	cost := 0.0
	for t := 0; t < s.horizon; t++ {
		cost += s.obj.Running(s.traj.X[t], s.traj.U[t], float64(t)*s.dt)
		if s.pathConstraints.TotalDim() > 0 {
			s.pathDual.EvaluateResidual(t, s.traj.X[t], s.traj.U[t])
		}
	}
	cost += s.obj.Terminal(s.traj.X[s.horizon])
	if s.termConstraints.TotalDim() > 0 {
		s.termConstraints.StackResidual(s.traj.X[s.horizon], nil, s.termDual.G[0])
	}
	return cost
}

// initialMaxViolation evaluates |g_i| for every path/terminal
// constraint at the seeded trajectory, used only to pick the cold-start
// μ (SPEC_FULL.md §D).
func initialMaxViolation(s *Solver) float64 {
	max := 0.0
	if s.pathConstraints.TotalDim() > 0 {
		g := make(numerics.Vector, s.pathConstraints.TotalDim())
		for t := 0; t < s.horizon; t++ {
			s.pathConstraints.StackResidual(s.traj.X[t], s.traj.U[t], g)
			if m := g.NormInf(); m > max {
				max = m
			}
		}
	}
	if s.termConstraints.TotalDim() > 0 {
		g := make(numerics.Vector, s.termConstraints.TotalDim())
		s.termConstraints.StackResidual(s.traj.X[s.horizon], nil, g)
		if m := g.NormInf(); m > max {
			max = m
		}
	}
	return max
}

// resetFilterState rebuilds the filter's starting point from the
// current (cost, μ, S, G) — called by initialize and on every barrier
// change (§4.3 step (e)).
func resetFilterState(s *Solver) {
	merit := s.cost
	violation := 0.0
	dim := s.pathConstraints.TotalDim()
	if dim > 0 {
		for t := 0; t < s.horizon; t++ {
			sv := s.pathDual.S[t]
			gv := s.pathDual.G[t]
			for i := 0; i < dim; i++ {
				merit -= s.mu * logSafe(sv[i])
			}
			violation += gv.Add(sv).Norm1()
		}
	}
	if termDim := s.termConstraints.TotalDim(); termDim > 0 {
		sv := s.termDual.S[0]
		gv := s.termDual.G[0]
		for i := 0; i < termDim; i++ {
			merit -= s.mu * logSafe(sv[i])
		}
		violation += gv.Add(sv).Norm1()
	}
	s.filter.ResetWith(FilterPoint{Merit: merit, Violation: violation})
}

// precomputeDerivatives fills the workspace's per-t dynamics Jacobians
// (and Hessians, if full DDP) and constraint Jacobians ahead of the
// backward sweep (§4.3 step (a)). Parallelized across t via errgroup
// when the horizon is long enough to amortize fork-join overhead (§5).
func precomputeDerivatives(s *Solver) {
	N := s.horizon
	dim := s.pathConstraints.TotalDim()

	work := func(t int) {
		x, u := s.traj.X[t], s.traj.U[t]
		tAbs := float64(t) * s.dt
		fx, fu := s.sys.Jacobians(x, u, tAbs)
		s.ws.Fx[t].CopyFrom(fx)
		s.ws.Fu[t].CopyFrom(fu)

		if s.opts.FullDDP {
			if hs, ok := s.sys.(interface {
				Hessians(x, u numerics.Vector, t float64) (fxx, fuu, fux []*numerics.Matrix)
			}); ok {
				fxx, fuu, fux := hs.Hessians(x, u, tAbs)
				for i := 0; i < s.nx; i++ {
					s.ws.Fxx[t][i].CopyFrom(fxx[i])
					s.ws.Fuu[t][i].CopyFrom(fuu[i])
					s.ws.Fux[t][i].CopyFrom(fux[i])
				}
			}
		}

		if dim > 0 {
			gx, gu := s.pathConstraints.StackJacobians(x, u, s.nx, s.nu)
			s.ws.Gx[t].CopyFrom(gx)
			s.ws.Gu[t].CopyFrom(gu)
		}
	}

	if s.opts.Parallel && N >= 50 {
		g, _ := errgroup.WithContext(context.Background())
		sem := make(chan struct{}, maxWorkers(s.opts))
		for t := 0; t < N; t++ {
			t := t
			g.Go(func() error {
				sem <- struct{}{}
				defer func() { <-sem }()
				work(t)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for t := 0; t < N; t++ {
			work(t)
		}
	}

	if termDim := s.termConstraints.TotalDim(); termDim > 0 {
		gx, _ := s.termConstraints.StackJacobians(s.traj.X[N], nil, s.nx, 0)
		s.termGx.CopyFrom(gx)
	}
}

// acceptTrajectory mutates the accepted (X, U, y, s, g) exactly once
// per iteration, after the forward-pass fan-out completes (§5
// "Ordering guarantees").
func acceptTrajectory(s *Solver, o *forwardOutcome) {
	s.traj.CopyFrom(o.traj)
	s.cost = o.cost
	s.merit = o.merit
	s.alphaPr = o.alphaPr
	s.alphaDu = o.alphaDu

	dim := s.pathConstraints.TotalDim()
	if dim > 0 {
		for t := 0; t < s.horizon; t++ {
			copy(s.pathDual.Y[t], o.pathY[t])
			copy(s.pathDual.S[t], o.pathS[t])
			copy(s.pathDual.G[t], o.pathG[t])
		}
	}
	if termDim := s.termConstraints.TotalDim(); termDim > 0 {
		copy(s.termDual.Y[0], o.termY)
		copy(s.termDual.S[0], o.termS)
		copy(s.termDual.G[0], o.termG)
	}
	if o.addToFilter {
		s.filter.Add(FilterPoint{Merit: o.merit, Violation: o.violation})
	}
}

// scaledDualInfeasibility implements §4.4's sd-scaling of inf_du,
// folding in the terminal dual/slack store alongside the path store.
func scaledDualInfeasibility(s *Solver) float64 {
	dim := s.pathConstraints.TotalDim()
	termDim := s.termConstraints.TotalDim()
	if dim == 0 && termDim == 0 {
		return s.infDu
	}
	var normY1, normS1 float64
	m := 0
	for t := 0; t < s.horizon; t++ {
		normY1 += s.pathDual.Y[t].Norm1()
		normS1 += s.pathDual.S[t].Norm1()
		m += dim
	}
	if termDim > 0 {
		normY1 += s.termDual.Y[0].Norm1()
		normS1 += s.termDual.S[0].Norm1()
		m += termDim
	}
	return ScaledDualInfeasibility(s.infDu, normY1, normS1, m, s.nu*s.horizon)
}

// checkConvergence mirrors checkConvergence in the original solver:
// scaled-KKT satisfaction, then a small-cost-change-with-low-
// infeasibility fallback, then a small-step-with-feasibility fallback.
func checkConvergence(s *Solver, dJ float64, iter int) (bool, Status) {
	e := scaledDualInfeasibility(s)
	metric := math.Max(e, math.Max(s.infPr, s.infComp))
	if metric <= s.opts.Tolerance {
		return true, StatusOptimalSolutionFound
	}

	acceptableTol := s.opts.Tolerance * 100
	if math.Abs(dJ) < acceptableTol && iter > 10 {
		if s.infPr < math.Sqrt(acceptableTol) && s.infComp < math.Sqrt(acceptableTol) {
			return true, StatusAcceptableSolutionFound
		}
	}

	if iter >= 1 && s.stepNorm < s.opts.Tolerance*10 && s.infPr < 1e-4 {
		return true, StatusAcceptableSolutionFound
	}

	return false, ""
}
