// Package overlay builds realistic circuits from gate names: it knows the
// gate set of a device, the timing and noise of its qubits, and schedules
// gates as soon as the qubits they touch are free.
//
// A Setup bundles gate aliases, per-qubit parameters, update rules and
// measurement samplers. QuickSetup returns the spin-qubit defaults; YAML
// files decoded into QubitParams cover everything else.
package overlay

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/quantumsim/quantumsim/sim/circuit"
	"github.com/quantumsim/quantumsim/sim/photons"
)

// Canonical gate kinds the builder schedules. Everything except measure is
// a circuit registry name.
const (
	KindMeasure = "measure"
)

// DefaultGateAliases maps the device gate names to canonical kinds.
func DefaultGateAliases() map[string]string {
	return map[string]string{
		"CZ":            "cphase",
		"C-Phase":       "cphase",
		"CPhase":        "cphase",
		"RotateX":       "rotate_x",
		"RX":            "rotate_x",
		"Rx":            "rotate_x",
		"RotateY":       "rotate_y",
		"RY":            "rotate_y",
		"Ry":            "rotate_y",
		"RotateZ":       "rotate_z",
		"RZ":            "rotate_z",
		"Rz":            "rotate_z",
		"Measure":       KindMeasure,
		"ISwap":         "iswap",
		"ISwapRotation": "iswap_rotation",
		"ResetGate":     "reset",
		"Reset":         "reset",
		"Had":           "hadamard",
		"H":             "hadamard",
		"CNOT":          "cnot",
	}
}

// QubitParams are the timing and noise parameters of one qubit. Times are
// in nanoseconds.
type QubitParams struct {
	T1             float64 `yaml:"t1"`
	T2             float64 `yaml:"t2"`
	DephasingAngle float64 `yaml:"dephasing_angle"`
	ReadoutError   float64 `yaml:"readout_error"`

	// Population flips right after a reset and right before a
	// measurement: excitation of |0> and decay of |1>.
	PExcInit float64 `yaml:"p_exc_init"`
	PDecInit float64 `yaml:"p_dec_init"`
	PExcFin  float64 `yaml:"p_exc_fin"`
	PDecFin  float64 `yaml:"p_dec_fin"`

	OneqGateTime  float64 `yaml:"oneq_gate_time"`
	CZGateTime    float64 `yaml:"cz_gate_time"`
	ISwapGateTime float64 `yaml:"iswap_gate_time"`
	MsmtTime      float64 `yaml:"msmt_time"`
	ResetTime     float64 `yaml:"reset_time"`
	IntervalTime  float64 `yaml:"interval_time"`

	// QuasistaticFlux is a frequency offset drawn once per run; nil means
	// none.
	QuasistaticFlux *float64 `yaml:"quasistatic_flux"`

	Photons   bool              `yaml:"photons"`
	Resonator photons.Resonator `yaml:"resonator"`
}

// DefaultQubitParams returns the spin-qubit defaults. Without noise the
// lifetimes are infinite and gates and readout are perfect; timing is the
// same either way.
func DefaultQubitParams(noise bool) QubitParams {
	p := QubitParams{
		T1:            math.Inf(1),
		T2:            math.Inf(1),
		OneqGateTime:  100,
		CZGateTime:    40,
		ISwapGateTime: 40 * math.Sqrt2,
		MsmtTime:      3000,
		ResetTime:     100,
		IntervalTime:  1000,
	}
	if noise {
		p.T2 = 100000
		p.DephasingAngle = 1e-5
		p.ReadoutError = 0.02
	}
	return p
}

// Validate rejects parameters no qubit can have.
func (p QubitParams) Validate() error {
	if p.T1 < 0 || p.T2 < 0 {
		return fmt.Errorf("lifetimes must be >= 0, got t1=%v t2=%v", p.T1, p.T2)
	}
	for _, pr := range []struct {
		name string
		v    float64
	}{
		{"readout_error", p.ReadoutError},
		{"p_exc_init", p.PExcInit}, {"p_dec_init", p.PDecInit},
		{"p_exc_fin", p.PExcFin}, {"p_dec_fin", p.PDecFin},
	} {
		if pr.v < 0 || pr.v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", pr.name, pr.v)
		}
	}
	for name, d := range map[string]float64{
		"oneq_gate_time": p.OneqGateTime, "cz_gate_time": p.CZGateTime, "iswap_gate_time": p.ISwapGateTime,
		"msmt_time": p.MsmtTime, "reset_time": p.ResetTime, "interval_time": p.IntervalTime,
	} {
		if d < 0 {
			return fmt.Errorf("%s must be >= 0, got %v", name, d)
		}
	}
	return p.Resonator.Validate()
}

// Duration returns how long a gate of the given kind occupies the qubit.
func (p QubitParams) Duration(kind string) float64 {
	switch kind {
	case "cphase", "cphase_rotation", "cnot":
		return p.CZGateTime
	case "iswap", "iswap_rotation":
		return p.ISwapGateTime
	case KindMeasure:
		return p.MsmtTime
	case "reset":
		return p.ResetTime
	case "classical_not", "classical_cnot":
		return 0
	default:
		return p.OneqGateTime
	}
}

// Setup describes a device: which gate names exist, how each qubit behaves
// and how its measurements are sampled.
type Setup struct {
	GateAliases map[string]string
	Qubits      map[string]QubitParams
	UpdateRules []UpdateRule
	Samplers    map[string]circuit.Sampler
}

// NewSetup builds a setup over explicit qubit parameters. Samplers draw
// from src; a qubit with readout error gets a noisy sampler.
func NewSetup(qubits map[string]QubitParams, src circuit.RandomSource) (*Setup, error) {
	s := &Setup{
		GateAliases: DefaultGateAliases(),
		Qubits:      make(map[string]QubitParams, len(qubits)),
		UpdateRules: []UpdateRule{UpdateQuasistaticFlux},
		Samplers:    make(map[string]circuit.Sampler, len(qubits)),
	}
	for _, name := range sortedNames(qubits) {
		p := qubits[name]
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("qubit %q: %w", name, err)
		}
		s.Qubits[name] = p
		if p.ReadoutError > 0 {
			s.Samplers[name] = circuit.NewUniformNoisySampler(src, p.ReadoutError)
		} else {
			s.Samplers[name] = circuit.NewUniformSampler(src)
		}
	}
	return s, nil
}

// QubitNames returns the qubits of the setup, sorted.
func (s *Setup) QubitNames() []string {
	return sortedNames(s.Qubits)
}

// Resolve maps a gate name to its canonical kind. Canonical names are
// accepted as they are.
func (s *Setup) Resolve(name string) (string, error) {
	if kind, ok := s.GateAliases[name]; ok {
		return kind, nil
	}
	if name == KindMeasure {
		return name, nil
	}
	if _, err := circuit.GateArity(name); err != nil {
		return "", err
	}
	return name, nil
}

// Option adjusts QuickSetup.
type Option func(*quickConfig)

type quickConfig struct {
	noise     bool
	src       circuit.RandomSource
	fluxStd   float64
	fluxRNG   *rand.Rand
	overrides []func(*QubitParams)
}

// WithNoise selects the noisy or the noiseless parameter set. Noise is on
// by default.
func WithNoise(noise bool) Option {
	return func(c *quickConfig) { c.noise = noise }
}

// WithSampleSource sets the random source of the measurement samplers.
func WithSampleSource(src circuit.RandomSource) Option {
	return func(c *quickConfig) { c.src = src }
}

// WithStaticFluxStd draws a quasistatic flux offset with standard deviation
// std for every qubit.
func WithStaticFluxStd(std float64, rng *rand.Rand) Option {
	return func(c *quickConfig) {
		c.fluxStd = std
		c.fluxRNG = rng
	}
}

// WithQubitParams applies f to the parameters of every qubit.
func WithQubitParams(f func(*QubitParams)) Option {
	return func(c *quickConfig) { c.overrides = append(c.overrides, f) }
}

// QuickSetup returns a setup where every qubit has the default parameters.
func QuickSetup(qubits []string, opts ...Option) (*Setup, error) {
	cfg := quickConfig{noise: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	params := make(map[string]QubitParams, len(qubits))
	sorted := append([]string(nil), qubits...)
	sort.Strings(sorted)
	for _, q := range sorted {
		p := DefaultQubitParams(cfg.noise)
		for _, f := range cfg.overrides {
			f(&p)
		}
		if cfg.fluxRNG != nil {
			flux := cfg.fluxStd * cfg.fluxRNG.NormFloat64()
			p.QuasistaticFlux = &flux
		}
		params[q] = p
	}
	return NewSetup(params, cfg.src)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
