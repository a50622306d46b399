package constraint

import (
	"fmt"
	"sort"

	"github.com/opentraj/ipddp/numerics"
)

// Store is a named collection of constraints (§3 "Constraint store").
// It is mutated only between solves; AddPathConstraint/RemovePathConstraint
// report success and may invalidate the solver's current initialization
// (the caller must re-initialize before the next Solve).
type Store struct {
	constraints map[string]Constraint
	order       []string // names sorted alphabetically for deterministic stacking
	offsets     map[string]int
	totalDim    int
}

// NewStore returns an empty constraint store.
func NewStore() *Store {
	return &Store{
		constraints: make(map[string]Constraint),
		offsets:     make(map[string]int),
	}
}

// Add registers c under name. Returns an error if the name is already
// in use. Recomputes the flat dual-dimension layout.
func (s *Store) Add(name string, c Constraint) error {
	if _, exists := s.constraints[name]; exists {
		return fmt.Errorf("constraint: name %q already registered", name)
	}
	s.constraints[name] = c
	s.order = append(s.order, name)
	s.reindex()
	return nil
}

// Remove deletes the constraint named name. Reports whether it existed.
func (s *Store) Remove(name string) bool {
	if _, exists := s.constraints[name]; !exists {
		return false
	}
	delete(s.constraints, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.reindex()
	return true
}

func (s *Store) reindex() {
	sort.Strings(s.order) // deterministic, independent of map iteration/add order
	s.offsets = make(map[string]int, len(s.order))
	total := 0
	for _, name := range s.order {
		s.offsets[name] = total
		total += s.constraints[name].DualDim()
	}
	s.totalDim = total
}

// Names returns the constraint names in stacking order.
func (s *Store) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of registered constraints.
func (s *Store) Len() int { return len(s.order) }

// TotalDim returns Σ_i m_i, the flat dual/slack dimension (§3 invariant:
// stable within a solve).
func (s *Store) TotalDim() int { return s.totalDim }

// Offset returns the flat-vector offset assigned to name, and whether
// name is registered.
func (s *Store) Offset(name string) (int, bool) {
	off, ok := s.offsets[name]
	return off, ok
}

// Get returns the constraint registered under name.
func (s *Store) Get(name string) (Constraint, bool) {
	c, ok := s.constraints[name]
	return c, ok
}

// StackResidual evaluates every constraint at (x, u) and writes the
// effective residual g_i(x,u) = Evaluate(x,u) - UpperBound() into the
// corresponding slice of out, which must have length TotalDim().
func (s *Store) StackResidual(x, u numerics.Vector, out numerics.Vector) {
	for _, name := range s.order {
		c := s.constraints[name]
		off := s.offsets[name]
		val := c.Evaluate(x, u)
		bound := c.UpperBound()
		for i, v := range val {
			out[off+i] = v - bound[i]
		}
	}
}

// StackJacobians builds the stacked state and control Jacobians
// (TotalDim() x nx, TotalDim() x nu) by evaluating and copying each
// constraint's block into its assigned row range.
func (s *Store) StackJacobians(x, u numerics.Vector, nx, nu int) (gx, gu *numerics.Matrix) {
	gx = numerics.NewMatrix(s.totalDim, nx)
	gu = numerics.NewMatrix(s.totalDim, nu)
	for _, name := range s.order {
		c := s.constraints[name]
		off := s.offsets[name]
		jx := c.StateJacobian(x, u)
		ju := c.ControlJacobian(x, u)
		for i := 0; i < jx.Rows; i++ {
			copy(gx.Row(off+i), jx.Row(i))
		}
		for i := 0; i < ju.Rows; i++ {
			copy(gu.Row(off+i), ju.Row(i))
		}
	}
	return gx, gu
}
