package ipddp

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// BarrierStrategy selects one of the three μ-update rules of §4.4.
type BarrierStrategy string

const (
	BarrierMonotonic BarrierStrategy = "monotonic"
	BarrierIPOPTLike BarrierStrategy = "ipopt"
	BarrierAdaptive  BarrierStrategy = "adaptive"
)

// Options holds the tunable numeric knobs of the solver (§4.3-§4.5).
// It is a plain struct with yaml tags so an embedding driver can load
// tuned presets from a config file — a configuration convenience, not
// the solve-output format: [Solution] remains the only wire-shaped
// value the core ever produces.
type Options struct {
	// Barrier parameter (§3, §4.4).
	MuInit          float64         `yaml:"mu_init"`
	MuMin           float64         `yaml:"mu_min"`
	BarrierStrategy BarrierStrategy `yaml:"barrier_strategy"`
	KappaMu         float64         `yaml:"kappa_mu"`
	ThetaMu         float64         `yaml:"theta_mu"`
	KappaEpsilon    float64         `yaml:"kappa_epsilon"`

	// Regularization (§4.5).
	RhoInit   float64 `yaml:"rho_init"`
	RhoMin    float64 `yaml:"rho_min"`
	RhoMax    float64 `yaml:"rho_max"`
	RhoFactor float64 `yaml:"rho_factor"`

	// Fraction-to-boundary (§4.2, glossary).
	TauMin float64 `yaml:"tau_min"`

	// Dual/slack initialization (§4.3).
	SlackInitScale float64 `yaml:"slack_init_scale"`
	DualInitScale  float64 `yaml:"dual_init_scale"`

	// Step-size ladder (§3 "Barrier/regularization state").
	AlphaMin         float64 `yaml:"alpha_min"`
	AlphaReduction    float64 `yaml:"alpha_reduction"`
	NumAlphaSteps    int     `yaml:"num_alpha_steps"`

	// Filter acceptance (§4.2).
	FilterEtaTheta        float64 `yaml:"filter_eta_theta"`
	FilterGammaTheta      float64 `yaml:"filter_gamma_theta"`
	FilterGammaM          float64 `yaml:"filter_gamma_m"`
	FilterSM              float64 `yaml:"filter_s_m"`
	FilterEtaA            float64 `yaml:"filter_eta_a"`
	FilterThetaMax        float64 `yaml:"filter_theta_max"`
	FilterThetaMinArmijo  float64 `yaml:"filter_theta_min_armijo"`
	UnconstrainedRatioMin float64 `yaml:"unconstrained_ratio_min"`

	// Convergence and budgets (§4.3, §7).
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
	MaxCPUTimeMs  float64 `yaml:"max_cpu_time_ms"`

	// Algorithmic mode.
	FullDDP bool `yaml:"full_ddp"` // false = iLQR mode (glossary): drop dynamics 2nd-order terms.

	// Concurrency (§5, §9 "Expose thread count as a configuration option").
	Parallel   bool `yaml:"parallel"`
	NumWorkers int  `yaml:"num_workers"`

	// Warm start and diagnostics (§3 "Lifecycles", §6 "iteration-history").
	WarmStart     bool `yaml:"warm_start"`
	RecordHistory bool `yaml:"record_history"`

	// IterationCallback, when non-nil, is invoked once per completed
	// iteration (accepted or rejected) with a snapshot of the driver's
	// progress. It plays the role the teacher's Observer.OnStep plays
	// for a simulation loop, and is the only hook the core exposes for
	// a driver to build its own logging on top (§B "Logging" in
	// SPEC_FULL.md — the core itself never logs).
	IterationCallback func(IterationInfo) `yaml:"-"`
}

// IterationInfo is the snapshot passed to Options.IterationCallback.
type IterationInfo struct {
	Iteration        int
	Accepted         bool
	Cost             float64
	InfPrimal        float64
	InfDual          float64
	InfComplementary float64
	Mu               float64
	Rho              float64
	StepLength       float64
}

// DefaultOptions returns the baseline tuning used when a caller does
// not supply Options explicitly. The numeric defaults follow the
// conventions of the interior-point literature this solver family is
// drawn from (§4.4's adaptive strategy is the default per spec).
func DefaultOptions() Options {
	return Options{
		MuInit:          1.0,
		MuMin:           1e-9,
		BarrierStrategy: BarrierAdaptive,
		KappaMu:         0.2,
		ThetaMu:         1.5,
		KappaEpsilon:    10.0,

		RhoInit:   1e-6,
		RhoMin:    1e-9,
		RhoMax:    1e8,
		RhoFactor: 10.0,

		TauMin: 0.99,

		SlackInitScale: 1.0,
		DualInitScale:  1.0,

		AlphaMin:      1e-8,
		AlphaReduction: 0.5,
		NumAlphaSteps: 20,

		FilterEtaTheta:        1e-4,
		FilterGammaTheta:      1e-5,
		FilterGammaM:          1e-5,
		FilterSM:              1e-4,
		FilterEtaA:            1e-4,
		FilterThetaMax:        1e4,
		FilterThetaMinArmijo:  1e-4,
		UnconstrainedRatioMin: 1e-6,

		Tolerance:     1e-6,
		MaxIterations: 200,
		MaxCPUTimeMs:  30000,

		FullDDP: false,

		Parallel:   true,
		NumWorkers: 4,

		WarmStart:     false,
		RecordHistory: false,
	}
}

// Presets mirrors the teacher's named-configuration-bundle idiom
// (internal/config/presets.go) in the solver-options domain: a small
// set of ready-made tuning profiles keyed by name.
var Presets = map[string]func() Options{
	"fast": func() Options {
		o := DefaultOptions()
		o.MaxIterations = 50
		o.Tolerance = 1e-4
		o.FullDDP = false
		return o
	},
	"balanced": func() Options {
		return DefaultOptions()
	},
	"robust": func() Options {
		o := DefaultOptions()
		o.MaxIterations = 500
		o.RhoInit = 1e-4
		o.FullDDP = true
		o.BarrierStrategy = BarrierIPOPTLike
		return o
	},
}

// LoadOptions reads a YAML-encoded Options document from path, starting
// from DefaultOptions so a preset file only needs to override the
// fields it cares about.
func LoadOptions(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Options{}, err
	}
	defer f.Close()
	return LoadOptionsFromReader(f)
}

// LoadOptionsFromReader decodes Options from r the same way LoadOptions does.
func LoadOptionsFromReader(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	data, err := io.ReadAll(r)
	if err != nil {
		return Options{}, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}
