package qasm

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/quantumsim/quantumsim/sim/overlay"
)

// Instruction maps a QASM instruction onto a gate kind. A nil Duration
// uses the qubit's default duration for that kind.
type Instruction struct {
	Gate     string             `yaml:"gate"`
	Duration *float64           `yaml:"duration"`
	Params   map[string]float64 `yaml:"params"`
}

// HardwareConfig describes the instruction set of a device.
// All top-level sections must be listed to satisfy strict parsing.
type HardwareConfig struct {
	Name         string                 `yaml:"name"`
	Instructions map[string]Instruction `yaml:"instructions"`
}

// SimulatorConfig describes the noise model used to simulate a device.
type SimulatorConfig struct {
	Seed          *int64       `yaml:"seed"`
	Noise         *bool        `yaml:"noise"`
	StaticFluxStd float64      `yaml:"static_flux_std"`
	Qubits        QubitsConfig `yaml:"qubits"`
}

// QubitsConfig holds the parameters shared by all qubits and per-qubit
// overrides. Overrides only replace the fields they name.
type QubitsConfig struct {
	Default  yaml.Node            `yaml:"default"`
	PerQubit map[string]yaml.Node `yaml:"per_qubit"`
}

// LoadHardwareConfig reads a YAML (or JSON) hardware description.
func LoadHardwareConfig(path string) (*HardwareConfig, error) {
	var cfg HardwareConfig
	if err := decodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("hardware config: %w", err)
	}
	return &cfg, cfg.Validate()
}

// Validate checks that every instruction names a known gate kind.
func (h *HardwareConfig) Validate() error {
	names := make([]string, 0, len(h.Instructions))
	for n := range h.Instructions {
		names = append(names, n)
	}
	sort.Strings(names)
	setup := &overlay.Setup{GateAliases: overlay.DefaultGateAliases()}
	for _, n := range names {
		ins := h.Instructions[n]
		if _, err := setup.Resolve(ins.Gate); err != nil {
			return fmt.Errorf("instruction %q: %w", n, err)
		}
		if ins.Duration != nil && *ins.Duration < 0 {
			return fmt.Errorf("instruction %q: duration must be >= 0, got %v", n, *ins.Duration)
		}
	}
	return nil
}

// LoadSimulatorConfig reads a YAML (or JSON) simulator description.
func LoadSimulatorConfig(path string) (*SimulatorConfig, error) {
	var cfg SimulatorConfig
	if err := decodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("simulator config: %w", err)
	}
	if cfg.StaticFluxStd < 0 {
		return nil, fmt.Errorf("simulator config: static_flux_std must be >= 0, got %v", cfg.StaticFluxStd)
	}
	return &cfg, nil
}

// NoiseEnabled reports whether the noisy defaults apply; unset means yes.
func (s *SimulatorConfig) NoiseEnabled() bool {
	return s.Noise == nil || *s.Noise
}

// QubitParams returns the parameters of the named qubit: the noise
// defaults, then the shared section, then the qubit's own overrides.
func (s *SimulatorConfig) QubitParams(name string) (overlay.QubitParams, error) {
	p := overlay.DefaultQubitParams(s.NoiseEnabled())
	if s.Qubits.Default.Kind != 0 {
		if err := decodeNode(&s.Qubits.Default, &p); err != nil {
			return p, fmt.Errorf("default qubit parameters: %w", err)
		}
	}
	if node, ok := s.Qubits.PerQubit[name]; ok {
		if err := decodeNode(&node, &p); err != nil {
			return p, fmt.Errorf("parameters of qubit %q: %w", name, err)
		}
	}
	return p, p.Validate()
}

func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// decodeNode decodes node over out with strict field checking. Fields the
// node does not mention keep their values.
func decodeNode(node *yaml.Node, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(out)
}
