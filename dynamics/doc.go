// Package dynamics declares the capability contract a caller's discrete
// dynamics model must satisfy to drive the solver (§6 "solver-facing
// interface"). The package never supplies a concrete model: the car,
// quadrotor, spacecraft, and similar systems are external collaborators
// by design (§1).
package dynamics
