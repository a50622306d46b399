package ipddp

import "github.com/opentraj/ipddp/numerics"

// BackwardResult carries the tracked scalars of §4.1's closing
// paragraph, plus the predicted linear/quadratic value-function
// reduction the forward pass uses for its Armijo-type filter branch.
type BackwardResult struct {
	OK bool

	InfDu     float64
	InfPrimal float64
	InfComp   float64
	StepNorm  float64

	DV1 float64 // Σ k^T Q_u
	DV2 float64 // Σ ½ k^T Q_uu k
}

// backwardPass runs the §4.1 recursion from t=N-1 down to 0, filling
// s.gains and s.termGains in place. A single non-PD factorization at
// any t aborts the sweep without mutating the accepted trajectory
// (§4.1 "Failure semantics").
func backwardPass(s *Solver) BackwardResult {
	nx, nu := s.nx, s.nu
	dim := s.pathConstraints.TotalDim()
	termDim := s.termConstraints.TotalDim()
	N := s.horizon
	rho := s.reg.Rho

	xN := s.traj.X[N]
	vx := s.obj.TerminalGradient(xN)
	vxx := s.obj.TerminalHessian(xN).Clone()

	var result BackwardResult
	result.OK = true

	if termDim > 0 {
		gxT := s.termGx
		yT := s.termDual.Y[0]
		sT := s.termDual.S[0]
		s.termConstraints.StackResidual(xN, nil, s.termDual.G[0])
		gT := s.termDual.G[0]

		vx = vx.Add(gxT.TransMulVec(yT))
		sigmaT := yT.DivElem(sT)
		scaled := gxT.Clone()
		scaled.ScaleRowsInPlace(sigmaT)
		vxx.AddInPlace(scaled.TransMul(gxT))

		rpT := gT.Add(sT)
		rcT := yT.Hadamard(sT)
		for i := range rcT {
			rcT[i] -= s.mu
		}
		rhatT := yT.Hadamard(rpT).Sub(rcT)

		s.termGains.FeedforwardS = rpT.Scale(-1)
		s.termGains.FeedbackS = gxT.Clone()
		for i := 0; i < gxT.Rows; i++ {
			row := s.termGains.FeedbackS.Row(i)
			for j := range row {
				row[j] = -row[j]
			}
		}
		s.termGains.FeedforwardY = rhatT.DivElem(sT)
		s.termGains.FeedbackY = scaled // Σ_T G_x,T
	}

	for t := N - 1; t >= 0; t-- {
		x, u := s.traj.X[t], s.traj.U[t]
		fx, fu := s.ws.Fx[t], s.ws.Fu[t]

		a := numerics.Identity(nx)
		a.AddInPlace(scaledCopy(fx, s.dt))
		b := scaledCopy(fu, s.dt)

		lx, lu := s.obj.RunningGradients(x, u, float64(t)*s.dt)
		lxx, luu, lux := s.obj.RunningHessians(x, u, float64(t)*s.dt)

		var qx, qu numerics.Vector
		var gx, gu *numerics.Matrix
		var sigma numerics.Vector
		var rp, rc, rhat numerics.Vector
		y, sl := numerics.Vector(nil), numerics.Vector(nil)

		if dim > 0 {
			gx, gu = s.ws.Gx[t], s.ws.Gu[t]
			y, sl = s.pathDual.Y[t], s.pathDual.S[t]
			s.pathDual.EvaluateResidual(t, x, u)
			g := s.pathDual.G[t]

			qx = lx.Add(gx.TransMulVec(y)).Add(a.TransMulVec(vx))
			qu = lu.Add(gu.TransMulVec(y)).Add(b.TransMulVec(vx))

			rp = g.Add(sl)
			rc = y.Hadamard(sl)
			for i := range rc {
				rc[i] -= s.mu
			}
			rhat = y.Hadamard(rp).Sub(rc)
			sigma = y.DivElem(sl)
		} else {
			qx = lx.Add(a.TransMulVec(vx))
			qu = lu.Add(b.TransMulVec(vx))
		}

		qxx := lxx.Clone()
		qxx.AddInPlace(a.TransMul(vxx.Mul(a)))
		qux := lux.Clone()
		qux.AddInPlace(b.TransMul(vxx.Mul(a)))
		quu := luu.Clone()
		quu.AddInPlace(b.TransMul(vxx.Mul(b)))

		if s.opts.FullDDP {
			if hs, ok := s.sys.(interface {
				Hessians(x, u numerics.Vector, t float64) (fxx, fuu, fux []*numerics.Matrix)
			}); ok {
				fxx, fuu, fux := hs.Hessians(x, u, float64(t)*s.dt)
				for i := 0; i < nx; i++ {
					qxx.AddInPlace(scaledCopy(fxx[i], s.dt*vx[i]))
					qux.AddInPlace(scaledCopy(fux[i], s.dt*vx[i]))
					quu.AddInPlace(scaledCopy(fuu[i], s.dt*vx[i]))
				}
			}
		}

		quu.SymmetrizeInPlace()

		// Fold the barrier/KKT condensation into every Q-term, not just
		// Q_uu, so the value function handed to t-1 matches the condensed
		// system the gains below are solved against (§4.1 step 5).
		if dim > 0 {
			sInv := rhat.DivElem(sl)
			qx = qx.Add(gx.TransMulVec(sInv))
			qu = qu.Add(gu.TransMulVec(sInv))

			scaledGu := gu.Clone()
			scaledGu.ScaleRowsInPlace(sigma)
			scaledGx := gx.Clone()
			scaledGx.ScaleRowsInPlace(sigma)

			qxx.AddInPlace(scaledGx.TransMul(gx))
			qux.AddInPlace(scaledGu.TransMul(gx))
			quu.AddInPlace(scaledGu.TransMul(gu))
		}

		// V_x, V_xx, and dV propagate against the reduced-but-unregularized
		// Q_uu in the constrained branch; ρ steers only the factorization
		// used to solve for the gains below. Unconstrained steps have
		// nothing to reduce, so they keep using the ρ-regularized Q_uu as
		// before.
		var quuReduced *numerics.Matrix
		if dim > 0 {
			quuReduced = quu.Clone()
		}
		quu.AddScaledIdentity(rho)
		if quuReduced == nil {
			quuReduced = quu
		}

		fac := s.ws.Factorization(t)
		ok := fac.Factorize(quu)
		s.ws.MarkFactorized(t, ok)
		if !ok {
			result.OK = false
			return result
		}

		rhs := numerics.NewMatrix(nu, 1+nx)
		for i := 0; i < nu; i++ {
			rhs.Set(i, 0, qu[i])
		}
		for i := 0; i < nu; i++ {
			row := qux.Row(i)
			for j := 0; j < nx; j++ {
				rhs.Set(i, 1+j, row[j])
			}
		}

		sol := fac.SolveMatrix(rhs)
		ku := make(numerics.Vector, nu)
		kk := numerics.NewMatrix(nu, nx)
		for i := 0; i < nu; i++ {
			ku[i] = -sol.At(i, 0)
			for j := 0; j < nx; j++ {
				kk.Set(i, j, -sol.At(i, j+1))
			}
		}
		s.gains.FeedforwardU[t] = ku
		s.gains.FeedbackU[t] = kk

		if dim > 0 {
			guKu := gu.MulVec(ku)
			ks := rp.Add(guKu).Scale(-1)
			guKk := gu.Mul(kk)
			ksFb := gx.Clone()
			ksFb.AddInPlace(guKk)
			negate(ksFb)
			ky := rhat.Add(y.Hadamard(guKu)).DivElem(sl)
			kyFb := gx.Clone()
			kyFb.AddInPlace(guKk)
			kyFb.ScaleRowsInPlace(sigma)

			s.gains.FeedforwardS[t] = ks
			s.gains.FeedbackS[t] = ksFb
			s.gains.FeedforwardY[t] = ky
			s.gains.FeedbackY[t] = kyFb

			result.InfPrimal = maxAbs(result.InfPrimal, rp)
			result.InfComp = maxAbs(result.InfComp, rc)
		}

		result.InfDu = maxAbs(result.InfDu, qu)
		result.StepNorm = maxAbs(result.StepNorm, ku)

		result.DV1 += ku.Dot(qu)
		result.DV2 += 0.5 * ku.Dot(quuReduced.MulVec(ku))

		newVx := qx.Add(kk.TransMulVec(qu)).Add(qux.TransMulVec(ku)).Add(kk.TransMulVec(quuReduced.MulVec(ku)))
		newVxx := qxx.Clone()
		newVxx.AddInPlace(kk.TransMul(qux))
		newVxx.AddInPlace(qux.TransMul(kk))
		newVxx.AddInPlace(kk.TransMul(quuReduced.Mul(kk)))
		newVxx.SymmetrizeInPlace()

		vx, vxx = newVx, newVxx
	}

	return result
}

func scaledCopy(m *numerics.Matrix, factor float64) *numerics.Matrix {
	out := m.Clone()
	for i := 0; i < out.Rows; i++ {
		row := out.Row(i)
		for j := range row {
			row[j] *= factor
		}
	}
	return out
}

func maxAbs(cur float64, v numerics.Vector) float64 {
	m := v.NormInf()
	if m > cur {
		return m
	}
	return cur
}

func negate(m *numerics.Matrix) {
	for i := 0; i < m.Rows; i++ {
		row := m.Row(i)
		for j := range row {
			row[j] = -row[j]
		}
	}
}
