package ipddp

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/opentraj/ipddp/numerics"
)

// alphaLadder builds the geometric step-size sequence {α_j} of §3
// ("Barrier/regularization state"), clamped below at AlphaMin.
func alphaLadder(opts Options) []float64 {
	n := opts.NumAlphaSteps
	if n <= 0 {
		n = 1
	}
	out := make([]float64, 0, n)
	alpha := 1.0
	for i := 0; i < n; i++ {
		if alpha < opts.AlphaMin {
			break
		}
		out = append(out, alpha)
		alpha *= opts.AlphaReduction
	}
	if len(out) == 0 {
		out = append(out, opts.AlphaMin)
	}
	return out
}

// forwardOutcome is one alpha trial's result (§4.2).
type forwardOutcome struct {
	ok bool

	alphaPr, alphaDu float64

	traj Trajectory

	pathY, pathS, pathG []numerics.Vector
	termY, termS, termG numerics.Vector

	cost      float64
	merit     float64
	violation float64

	addToFilter bool
}

// forwardPass runs the §4.2 fork-join search over the step-size ladder:
// every α is tried independently (safe — trials only read the previous
// iterate, §5 "Ordering guarantees"), and the accepted trial is the
// successful one with the lowest merit (§5 "the first successful
// proposal with the lowest merit is selected").
func forwardPass(s *Solver, bw BackwardResult) *forwardOutcome {
	ladder := alphaLadder(s.opts)
	results := make([]*forwardOutcome, len(ladder))

	if s.opts.Parallel && len(ladder) > 1 {
		g, _ := errgroup.WithContext(context.Background())
		sem := make(chan struct{}, maxWorkers(s.opts))
		for i, alpha := range ladder {
			i, alpha := i, alpha
			g.Go(func() error {
				sem <- struct{}{}
				defer func() { <-sem }()
				results[i] = tryAlpha(s, bw, alpha)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, alpha := range ladder {
			results[i] = tryAlpha(s, bw, alpha)
		}
	}

	var best *forwardOutcome
	for _, r := range results {
		if r == nil || !r.ok {
			continue
		}
		if best == nil || r.merit < best.merit {
			best = r
		}
	}
	return best
}

func maxWorkers(opts Options) int {
	if opts.NumWorkers > 0 {
		return opts.NumWorkers
	}
	return 1
}

// tryAlpha evaluates a single candidate primal step length, implementing
// §4.2 steps 1-6. It allocates its own trial trajectory/dual-slack
// buffers so concurrent trials never alias each other's state (§5
// "parallel workers operate on disjoint index ranges").
func tryAlpha(s *Solver, bw BackwardResult, alpha float64) *forwardOutcome {
	nx := s.nx
	N := s.horizon
	tau := max64(s.opts.TauMin, 1-s.mu)
	dim := s.pathConstraints.TotalDim()
	termDim := s.termConstraints.TotalDim()

	out := &forwardOutcome{alphaPr: alpha}

	trial := NewTrajectory(N, nx, s.nu)
	trial.X[0] = s.traj.X[0].Clone()

	if dim == 0 && termDim == 0 {
		return unconstrainedTrial(s, bw, alpha, trial)
	}

	pathS := make([]numerics.Vector, N)
	pathG := make([]numerics.Vector, N)

	for t := 0; t < N; t++ {
		deltaX := trial.X[t].Sub(s.traj.X[t])

		if dim > 0 {
			sOld := s.pathDual.S[t]
			sNew := sOld.Add(s.gains.FeedforwardS[t].Scale(alpha)).Add(s.gains.FeedbackS[t].MulVec(deltaX))
			for i := 0; i < dim; i++ {
				if sNew[i] < (1-tau)*sOld[i] {
					return out // slack infeasible, ok remains false
				}
			}
			pathS[t] = sNew
		}

		u := s.traj.U[t].Add(s.gains.FeedforwardU[t].Scale(alpha)).Add(s.gains.FeedbackU[t].MulVec(deltaX))
		trial.U[t] = u
		trial.X[t+1] = s.sys.Discrete(trial.X[t], u, float64(t)*s.dt)
	}

	var termSNew numerics.Vector
	if termDim > 0 {
		deltaXN := trial.X[N].Sub(s.traj.X[N])
		sOld := s.termDual.S[0]
		sNew := sOld.Add(s.termGains.FeedforwardS.Scale(alpha)).Add(s.termGains.FeedbackS.MulVec(deltaXN))
		for i := 0; i < termDim; i++ {
			if sNew[i] < (1-tau)*sOld[i] {
				return out
			}
		}
		termSNew = sNew
	}

	// Step 2: separate dual step search over the same ladder.
	ladder := alphaLadder(s.opts)
	var pathY2 []numerics.Vector
	var termY2 numerics.Vector
	alphaDu := 0.0
	found := false

	for _, alphaY := range ladder {
		ok := true
		candY := make([]numerics.Vector, N)
		for t := 0; t < N && ok; t++ {
			deltaX := trial.X[t].Sub(s.traj.X[t])
			if dim > 0 {
				yOld := s.pathDual.Y[t]
				yNew := yOld.Add(s.gains.FeedforwardY[t].Scale(alphaY)).Add(s.gains.FeedbackY[t].MulVec(deltaX))
				for i := 0; i < dim; i++ {
					if yNew[i] < (1-tau)*yOld[i] {
						ok = false
						break
					}
				}
				candY[t] = yNew
			}
		}
		var candTermY numerics.Vector
		if ok && termDim > 0 {
			deltaXN := trial.X[N].Sub(s.traj.X[N])
			yOld := s.termDual.Y[0]
			yNew := yOld.Add(s.termGains.FeedforwardY.Scale(alphaY)).Add(s.termGains.FeedbackY.MulVec(deltaXN))
			for i := 0; i < termDim; i++ {
				if yNew[i] < (1-tau)*yOld[i] {
					ok = false
					break
				}
			}
			candTermY = yNew
		}
		if ok {
			pathY2 = candY
			termY2 = candTermY
			alphaDu = alphaY
			found = true
			break
		}
	}
	if !found {
		return out
	}

	// Cost, constraint residuals, merit, violation.
	cost := 0.0
	violation := 0.0
	merit := 0.0
	for t := 0; t < N; t++ {
		cost += s.obj.Running(trial.X[t], trial.U[t], float64(t)*s.dt)
		if dim > 0 {
			g := make(numerics.Vector, dim)
			s.pathConstraints.StackResidual(trial.X[t], trial.U[t], g)
			pathG[t] = g
			sv := pathS[t]
			for i := 0; i < dim; i++ {
				merit -= s.mu * logSafe(sv[i])
			}
			rp := g.Add(sv)
			violation += rp.Norm1()
		}
	}
	cost += s.obj.Terminal(trial.X[N])
	merit += cost

	var termGNew numerics.Vector
	if termDim > 0 {
		termGNew = make(numerics.Vector, termDim)
		s.termConstraints.StackResidual(trial.X[N], nil, termGNew)
		for i := 0; i < termDim; i++ {
			merit -= s.mu * logSafe(termSNew[i])
		}
		rp := termGNew.Add(termSNew)
		violation += rp.Norm1()
	}

	decision := s.filter.Accept(s.opts, s.filter.Last(), FilterPoint{Merit: merit, Violation: violation}, alpha, bw.DV1)
	if !decision.Accept {
		return out
	}

	out.ok = true
	out.alphaDu = alphaDu
	out.traj = trial
	out.pathY, out.pathS, out.pathG = pathY2, pathS, pathG
	out.termY, out.termS, out.termG = termY2, termSNew, termGNew
	out.cost = cost
	out.merit = merit
	out.violation = violation
	out.addToFilter = decision.AddToFilter
	return out
}

// unconstrainedTrial implements §4.2's closing paragraph: the
// expected-vs-actual cost-reduction ratio test that the full filter
// machinery collapses to when there are no constraints at all.
func unconstrainedTrial(s *Solver, bw BackwardResult, alpha float64, trial Trajectory) *forwardOutcome {
	out := &forwardOutcome{alphaPr: alpha, alphaDu: 1.0}

	cost := 0.0
	for t := 0; t < s.horizon; t++ {
		deltaX := trial.X[t].Sub(s.traj.X[t])
		u := s.traj.U[t].Add(s.gains.FeedforwardU[t].Scale(alpha)).Add(s.gains.FeedbackU[t].MulVec(deltaX))
		trial.U[t] = u
		trial.X[t+1] = s.sys.Discrete(trial.X[t], u, float64(t)*s.dt)
		cost += s.obj.Running(trial.X[t], u, float64(t)*s.dt)
	}
	cost += s.obj.Terminal(trial.X[s.horizon])

	dJ := s.cost - cost
	expected := -alpha * (bw.DV1 + 0.5*alpha*bw.DV2)

	// dJ and expected are reductions (positive for a decrease);
	// UnconstrainedAccept takes cost changes, so both are negated.
	out.ok = UnconstrainedAccept(-expected, -dJ, s.opts.UnconstrainedRatioMin)
	out.traj = trial
	out.cost = cost
	out.merit = cost
	out.violation = 0
	out.addToFilter = false
	return out
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// logSafe floors the log-barrier argument so a slack that rounds to
// zero or below cannot drive the merit function to +Inf/NaN mid-search;
// tryAlpha already rejects any trial with s_new below the
// fraction-to-boundary floor, so this only guards the rare case where
// the accepted slack is extremely small.
func logSafe(x float64) float64 {
	if x <= 0 {
		return math.Log(1e-300)
	}
	return math.Log(x)
}
