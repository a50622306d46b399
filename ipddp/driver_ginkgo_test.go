package ipddp

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opentraj/ipddp/internal/fixtures"
	"github.com/opentraj/ipddp/numerics"
)

var _ = Describe("Filter", func() {
	var f *Filter

	BeforeEach(func() {
		f = NewFilter()
		f.ResetWith(FilterPoint{Merit: 10, Violation: 5})
	})

	It("never accepts a point dominated by an existing entry", func() {
		f.Add(FilterPoint{Merit: 2, Violation: 1})
		decision := f.Accept(DefaultOptions(), f.Last(), FilterPoint{Merit: 3, Violation: 2}, 1.0, -1.0)
		Expect(decision.Accept).To(BeFalse())
	})

	It("keeps the filter monotonically non-decreasing in entries once a point is added", func() {
		before := len(f.points)
		f.Add(FilterPoint{Merit: 1, Violation: 1})
		Expect(len(f.points)).To(Equal(before + 1))
	})

	It("resets to exactly one entry on ResetWith", func() {
		f.Add(FilterPoint{Merit: 1, Violation: 1})
		f.ResetWith(FilterPoint{Merit: 0, Violation: 0})
		Expect(f.points).To(HaveLen(1))
	})
})

var _ = Describe("State machine", func() {
	It("reports Uninitialized for a freshly constructed Solver", func() {
		s := NewSolver()
		Expect(s.lifecycle).To(Equal(StateUninitialized))
	})

	It("reaches Terminated after a successful Solve", func() {
		sys := fixtures.NewDoubleIntegrator()
		obj := fixtures.NewQuadraticTracking(
			numerics.Vector{1, 1}, numerics.Vector{0.01}, numerics.Vector{10, 10},
			numerics.Vector{1, 0},
		)
		s := NewSolver()
		opts := DefaultOptions()
		opts.MaxIterations = 20
		opts.Parallel = false
		Expect(s.Configure(numerics.Vector{0, 0}, numerics.Vector{1, 0}, 10, 0.05, sys, obj, opts)).To(Succeed())

		_, err := s.Solve("IPDDP")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.lifecycle).To(Equal(StateTerminated))
	})
})

var _ = Describe("Dual/slack positivity", func() {
	It("keeps every dual and slack component strictly positive through a box-constrained solve", func() {
		sys := fixtures.NewDoubleIntegrator()
		obj := fixtures.NewQuadraticTracking(
			numerics.Vector{1, 1}, numerics.Vector{0.01}, numerics.Vector{10, 10},
			numerics.Vector{1, 0},
		)
		s := NewSolver()
		opts := DefaultOptions()
		opts.MaxIterations = 50
		opts.Parallel = false
		Expect(s.Configure(numerics.Vector{0, 0}, numerics.Vector{1, 0}, 20, 0.05, sys, obj, opts)).To(Succeed())
		Expect(s.AddPathConstraint("u_bound", fixtures.NewControlBoxConstraint(0, 2, 1, -0.5, 0.5))).To(Succeed())

		_, err := s.Solve("IPDDP")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.pathDual.AllPositive()).To(BeTrue())
	})
})
