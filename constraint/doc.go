// Package constraint declares the named inequality-constraint contract
// (§3 "Constraint store") and [Store], the collection that owns the
// per-(name, timestep) dual and slack variables the IPDDP core threads
// through the backward and forward passes.
//
// Concrete constraint shapes (box, polytopic, ...) are an external
// collaborator per §1; this package only captures what the core needs
// from them.
package constraint
