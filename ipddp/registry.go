package ipddp

import "sync"

// Algorithm is what a registered solver name resolves to: something
// that can run the solve loop against a configured Solver and produce
// a Solution. The IPDDP core registers itself under "IPDDP"; external
// collaborators may register ALDDP/LogDDP/ASDDP/MSIPDDP-style variants
// sharing this package's backward/forward primitives (§9 Open
// Questions).
type Algorithm interface {
	Run(s *Solver) Solution
}

// AlgorithmFactory constructs a fresh Algorithm instance per solve.
type AlgorithmFactory func() Algorithm

var (
	registryMu sync.RWMutex
	registry   = map[string]AlgorithmFactory{}
)

// RegisterSolver adds name to the process-wide solver registry (§6).
// Following the discipline §9 recommends, register once at program
// start; registration is guarded by a mutex but solves performed
// concurrently with a registration race are not a supported usage.
func RegisterSolver(name string, factory AlgorithmFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// lookupSolver mirrors internal/experiment/registry.go's
// map-lookup-with-bool idiom, generalized from model/integrator/
// controller factories to solver-algorithm factories.
func lookupSolver(name string) (AlgorithmFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[name]
	return factory, ok
}

func init() {
	RegisterSolver("IPDDP", func() Algorithm { return &ipddpAlgorithm{} })
}
