package ipddp

import (
	"strings"
	"testing"
)

func TestDefaultOptionsSane(t *testing.T) {
	opts := DefaultOptions()
	if opts.MaxIterations <= 0 {
		t.Error("DefaultOptions: MaxIterations must be positive")
	}
	if opts.RhoMin >= opts.RhoMax {
		t.Error("DefaultOptions: RhoMin must be below RhoMax")
	}
}

func TestPresetsOverrideDefaults(t *testing.T) {
	fast := Presets["fast"]()
	if fast.MaxIterations != 50 {
		t.Errorf("fast preset: MaxIterations = %d, want 50", fast.MaxIterations)
	}
	robust := Presets["robust"]()
	if !robust.FullDDP {
		t.Error("robust preset: expected FullDDP to be true")
	}
}

func TestLoadOptionsFromReaderOverridesSelectively(t *testing.T) {
	yamlDoc := `
tolerance: 1e-8
max_iterations: 10
`
	opts, err := LoadOptionsFromReader(strings.NewReader(yamlDoc))
	if err != nil {
		t.Fatalf("LoadOptionsFromReader: %v", err)
	}
	if opts.Tolerance != 1e-8 {
		t.Errorf("Tolerance: got %v, want 1e-8", opts.Tolerance)
	}
	if opts.MaxIterations != 10 {
		t.Errorf("MaxIterations: got %v, want 10", opts.MaxIterations)
	}
	// Untouched fields should keep DefaultOptions' values.
	if opts.RhoInit != DefaultOptions().RhoInit {
		t.Errorf("RhoInit: got %v, want default %v", opts.RhoInit, DefaultOptions().RhoInit)
	}
}

func TestLoadOptionsFromReaderRejectsInvalidYAML(t *testing.T) {
	_, err := LoadOptionsFromReader(strings.NewReader("not: [valid"))
	if err == nil {
		t.Fatal("LoadOptionsFromReader: expected an error for malformed YAML")
	}
}
