package fixtures

import (
	"math"

	"github.com/opentraj/ipddp/numerics"
)

// Car is the kinematic bicycle model used by scenario 3 (parking):
// state (x, y, heading, speed), control (acceleration, steering
// angle). ẋ = v cosθ, ẏ = v sinθ, θ̇ = v tanδ / L, v̇ = a.
type Car struct {
	Wheelbase               float64
	k1, k2, k3, k4, scratch numerics.Vector
}

// NewCar returns a Car with the given wheelbase length.
func NewCar(wheelbase float64) *Car {
	return &Car{Wheelbase: wheelbase}
}

func (c *Car) StateDim() int   { return 4 }
func (c *Car) ControlDim() int { return 2 }

func (c *Car) derive(x, u numerics.Vector) numerics.Vector {
	theta, v := x[2], x[3]
	a, delta := u[0], u[1]
	return numerics.Vector{
		v * math.Cos(theta),
		v * math.Sin(theta),
		v * math.Tan(delta) / c.Wheelbase,
		a,
	}
}

func (c *Car) ensureScratch() {
	if len(c.k1) == 4 {
		return
	}
	c.k1 = make(numerics.Vector, 4)
	c.k2 = make(numerics.Vector, 4)
	c.k3 = make(numerics.Vector, 4)
	c.k4 = make(numerics.Vector, 4)
	c.scratch = make(numerics.Vector, 4)
}

func (c *Car) Discrete(x, u numerics.Vector, tAbs float64) numerics.Vector {
	c.ensureScratch()
	dt := discreteStepDt

	copy(c.k1, c.derive(x, u))
	for i := range c.scratch {
		c.scratch[i] = x[i] + dt*0.5*c.k1[i]
	}
	copy(c.k2, c.derive(c.scratch, u))
	for i := range c.scratch {
		c.scratch[i] = x[i] + dt*0.5*c.k2[i]
	}
	copy(c.k3, c.derive(c.scratch, u))
	for i := range c.scratch {
		c.scratch[i] = x[i] + dt*c.k3[i]
	}
	copy(c.k4, c.derive(c.scratch, u))

	out := make(numerics.Vector, 4)
	dt6 := dt / 6.0
	for i := range out {
		out[i] = x[i] + dt6*(c.k1[i]+2*c.k2[i]+2*c.k3[i]+c.k4[i])
	}
	return out
}

// Jacobians returns the analytic continuous-time partials of the
// kinematic bicycle model at (x, u).
func (c *Car) Jacobians(x, u numerics.Vector, tAbs float64) (fx, fu *numerics.Matrix) {
	theta, v := x[2], x[3]
	delta := u[1]

	fx = numerics.NewMatrix(4, 4)
	fx.Set(0, 2, -v*math.Sin(theta))
	fx.Set(0, 3, math.Cos(theta))
	fx.Set(1, 2, v*math.Cos(theta))
	fx.Set(1, 3, math.Sin(theta))
	fx.Set(2, 3, math.Tan(delta)/c.Wheelbase)

	fu = numerics.NewMatrix(4, 2)
	fu.Set(3, 0, 1)
	sec2 := 1.0 / (math.Cos(delta) * math.Cos(delta))
	fu.Set(2, 1, v*sec2/c.Wheelbase)
	return fx, fu
}

// ParkingTerminal is a terminal objective penalizing distance to a
// target pose with no running cost contribution of its own; for
// scenario 3 ParkingObjective pairs it with a control-effort running cost.
type ParkingTerminal struct {
	Target numerics.Vector
	Weight numerics.Vector
}

func (p *ParkingTerminal) weighted(dx numerics.Vector) numerics.Vector {
	out := make(numerics.Vector, len(dx))
	for i := range dx {
		out[i] = p.Weight[i] * dx[i]
	}
	return out
}

func (p *ParkingTerminal) Terminal(x numerics.Vector) float64 {
	dx := x.Sub(p.Target)
	return 0.5 * dx.Dot(p.weighted(dx))
}

func (p *ParkingTerminal) TerminalGradient(x numerics.Vector) numerics.Vector {
	return p.weighted(x.Sub(p.Target))
}

func (p *ParkingTerminal) TerminalHessian(x numerics.Vector) *numerics.Matrix {
	n := len(p.Weight)
	m := numerics.NewMatrix(n, n)
	for i, w := range p.Weight {
		m.Set(i, i, w)
	}
	return m
}

// ParkingObjective combines a control-effort running cost with
// ParkingTerminal's terminal pose penalty into the single Objective
// the solver requires.
type ParkingObjective struct {
	R    *numerics.Matrix
	Goal *ParkingTerminal
}

// NewParkingObjective builds a ParkingObjective with diagonal control
// weight rDiag and terminal target/weight as given.
func NewParkingObjective(rDiag, target, terminalWeight numerics.Vector) *ParkingObjective {
	r := numerics.NewMatrix(len(rDiag), len(rDiag))
	for i, v := range rDiag {
		r.Set(i, i, v)
	}
	return &ParkingObjective{
		R:    r,
		Goal: &ParkingTerminal{Target: target, Weight: terminalWeight},
	}
}

func (p *ParkingObjective) Running(x, u numerics.Vector, tAbs float64) float64 {
	return 0.5 * u.Dot(p.R.MulVec(u))
}

func (p *ParkingObjective) Terminal(x numerics.Vector) float64 { return p.Goal.Terminal(x) }

func (p *ParkingObjective) RunningGradients(x, u numerics.Vector, tAbs float64) (lx, lu numerics.Vector) {
	return make(numerics.Vector, len(x)), p.R.MulVec(u)
}

func (p *ParkingObjective) RunningHessians(x, u numerics.Vector, tAbs float64) (lxx, luu, lux *numerics.Matrix) {
	return numerics.NewMatrix(len(x), len(x)), p.R.Clone(), numerics.NewMatrix(len(u), len(x))
}

func (p *ParkingObjective) TerminalGradient(x numerics.Vector) numerics.Vector {
	return p.Goal.TerminalGradient(x)
}

func (p *ParkingObjective) TerminalHessian(x numerics.Vector) *numerics.Matrix {
	return p.Goal.TerminalHessian(x)
}
