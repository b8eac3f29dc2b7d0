package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quantumsim/quantumsim/sim/backend"
	"github.com/quantumsim/quantumsim/sim/trace"
)

// RunConfig holds the parameters of a run, loadable from a YAML file.
type RunConfig struct {
	Shots          int    `yaml:"shots"`            // independent repetitions (must be > 0)
	Rounds         int    `yaml:"rounds"`           // circuit applications per shot on the same state (must be > 0)
	Workers        int    `yaml:"workers"`          // concurrent shots; 0 = GOMAXPROCS
	Seed           int64  `yaml:"seed"`             // master seed of the PartitionedRNG
	Backend        string `yaml:"backend"`          // dense backend name ("cpu", "parallel")
	MaxDenseQubits int    `yaml:"max_dense_qubits"` // 0 = sparsedm default
	Renormalize    bool   `yaml:"renormalize"`      // renormalize the state between rounds
	TraceLevel     string `yaml:"trace_level"`      // "none" (default) or "shots"
}

// DefaultRunConfig returns a single-shot, single-round run on the cpu
// backend.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Shots:      1,
		Rounds:     1,
		Backend:    backend.DefaultName,
		TraceLevel: string(trace.TraceLevelNone),
	}
}

// LoadRunConfig reads a YAML run configuration over the defaults. Unknown
// keys are rejected.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	cfg := DefaultRunConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidBackends reports the registered backend names, plus "" for the
// default.
func ValidBackends() map[string]bool {
	valid := map[string]bool{"": true}
	for _, name := range backend.Names() {
		valid[name] = true
	}
	return valid
}

// Validate checks names and parameter ranges.
func (c *RunConfig) Validate() error {
	if c.Shots <= 0 {
		return fmt.Errorf("shots must be > 0, got %d", c.Shots)
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("rounds must be > 0, got %d", c.Rounds)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.MaxDenseQubits < 0 {
		return fmt.Errorf("max_dense_qubits must be non-negative, got %d", c.MaxDenseQubits)
	}
	if !ValidBackends()[c.Backend] {
		return fmt.Errorf("unknown backend %q (registered: %v)", c.Backend, backend.Names())
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return fmt.Errorf("unknown trace level %q", c.TraceLevel)
	}
	return nil
}
