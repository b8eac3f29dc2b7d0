// Package sparsedm holds the state of a register in which only the bits that
// have been entangled or put into superposition are stored densely. All other
// bits are classical values with no storage cost.
//
// Bits start classical. A bit becomes dense when a PTM is applied to it, and
// classical again when it is projected by a measurement. The trace of the
// state is the trace of the dense part times the classical probability,
// which accumulates the weights of measurement outcomes (readout errors,
// projections onto contradicting classical values).
package sparsedm

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/quantumsim/quantumsim/sim/backend"
	_ "github.com/quantumsim/quantumsim/sim/backend/cpu"
	_ "github.com/quantumsim/quantumsim/sim/backend/parallel"
)

var (
	// ErrUnknownBit is returned for a bit name the register does not hold.
	ErrUnknownBit = errors.New("unknown bit")
	// ErrNotClassical is returned when a dense bit is not in a definite
	// computational basis state but a classical value is required.
	ErrNotClassical = errors.New("bit is not in a classical state")
	// ErrTooManyDenseQubits is returned when densifying a bit would exceed
	// the configured limit.
	ErrTooManyDenseQubits = errors.New("too many dense qubits")
)

// DefaultMaxDenseQubits is the dense-part limit when none is configured.
// 12 dense qubits hold 4^12 float64 coefficients (128 MiB).
const DefaultMaxDenseQubits = 12

// classicalTolerance is the relative population below which a dense bit
// counts as being in a definite state.
const classicalTolerance = 1e-12

// SparseDM is a register of named bits. It is not safe for concurrent use.
type SparseDM struct {
	names     []string
	known     map[string]bool
	classical map[string]int
	idx       map[string]int // position in the dense part
	dense     []string       // dense bits by position
	full      backend.Backend

	backendName          string
	maxDense             int
	classicalProbability float64
}

// Option configures a SparseDM.
type Option func(*SparseDM)

// WithBackend selects the dense backend by registry name.
func WithBackend(name string) Option {
	return func(s *SparseDM) { s.backendName = name }
}

// WithMaxDenseQubits bounds the number of simultaneously dense bits.
func WithMaxDenseQubits(n int) Option {
	return func(s *SparseDM) { s.maxDense = n }
}

// New creates a register over names with every bit classical 0.
func New(names []string, opts ...Option) (*SparseDM, error) {
	s := &SparseDM{
		known:                make(map[string]bool, len(names)),
		classical:            make(map[string]int, len(names)),
		idx:                  make(map[string]int),
		maxDense:             DefaultMaxDenseQubits,
		classicalProbability: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, name := range names {
		if s.known[name] {
			return nil, fmt.Errorf("duplicate bit name %q", name)
		}
		s.known[name] = true
		s.names = append(s.names, name)
		s.classical[name] = 0
	}
	full, err := backend.New(s.backendName)
	if err != nil {
		return nil, err
	}
	s.full = full
	return s, nil
}

// Names returns the bit names in creation order.
func (s *SparseDM) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Classical returns a copy of the classical bits and their values.
func (s *SparseDM) Classical() map[string]int {
	out := make(map[string]int, len(s.classical))
	for k, v := range s.classical {
		out[k] = v
	}
	return out
}

// ClassicalValue returns the value of a classical bit.
func (s *SparseDM) ClassicalValue(bit string) (int, error) {
	if err := s.check(bit); err != nil {
		return 0, err
	}
	v, ok := s.classical[bit]
	if !ok {
		return 0, fmt.Errorf("%w: %q is dense", ErrNotClassical, bit)
	}
	return v, nil
}

// SetClassical overwrites the value of a bit that is currently classical.
func (s *SparseDM) SetClassical(bit string, value int) error {
	if err := s.check(bit); err != nil {
		return err
	}
	if _, ok := s.classical[bit]; !ok {
		return fmt.Errorf("%w: %q is dense", ErrNotClassical, bit)
	}
	if err := checkValue(value); err != nil {
		return err
	}
	s.classical[bit] = value
	return nil
}

// DenseBits returns the dense bits in backend order.
func (s *SparseDM) DenseBits() []string {
	out := make([]string, len(s.dense))
	copy(out, s.dense)
	return out
}

// FullDM exposes the dense part.
func (s *SparseDM) FullDM() backend.Backend {
	return s.full
}

// ClassicalProbability returns the accumulated weight of classical outcomes.
func (s *SparseDM) ClassicalProbability() float64 {
	return s.classicalProbability
}

// ScaleClassicalProbability multiplies the classical probability by p.
func (s *SparseDM) ScaleClassicalProbability(p float64) {
	s.classicalProbability *= p
}

// Trace returns the trace of the dense part times the classical probability.
func (s *SparseDM) Trace() float64 {
	return s.full.Trace() * s.classicalProbability
}

// Renormalize rescales the state to unit trace and resets the classical
// probability to 1.
func (s *SparseDM) Renormalize() {
	s.full.Renormalize()
	s.classicalProbability = 1
}

// EnsureDense moves bit into the dense part if it is classical.
func (s *SparseDM) EnsureDense(bit string) error {
	if err := s.check(bit); err != nil {
		return err
	}
	v, ok := s.classical[bit]
	if !ok {
		return nil
	}
	if len(s.dense) >= s.maxDense {
		return fmt.Errorf("%w: densifying %q would exceed %d", ErrTooManyDenseQubits, bit, s.maxDense)
	}
	s.full.AddQubit(v)
	s.idx[bit] = len(s.dense)
	s.dense = append(s.dense, bit)
	delete(s.classical, bit)
	logrus.Debugf("sparsedm: %q is now dense (%d dense bits)", bit, len(s.dense))
	return nil
}

// EnsureClassical makes bit classical. A dense bit must be in a definite
// state; it is projected onto that state.
func (s *SparseDM) EnsureClassical(bit string) error {
	if err := s.check(bit); err != nil {
		return err
	}
	pos, ok := s.idx[bit]
	if !ok {
		return nil
	}
	p0, p1 := s.full.PeakMeasurement(pos)
	total := math.Abs(p0) + math.Abs(p1)
	switch {
	case total == 0 || math.Abs(p1) <= classicalTolerance*total:
		return s.ProjectMeasurement(bit, 0)
	case math.Abs(p0) <= classicalTolerance*total:
		return s.ProjectMeasurement(bit, 1)
	default:
		return fmt.Errorf("%w: %q has populations (%g, %g)", ErrNotClassical, bit, p0, p1)
	}
}

// ApplyPTM applies a single-qubit PTM to bit.
func (s *SparseDM) ApplyPTM(bit string, p backend.PTM) error {
	if r, c := p.Dims(); r != 4 || c != 4 {
		return fmt.Errorf("single-qubit PTM must be 4x4, got %dx%d", r, c)
	}
	if err := s.EnsureDense(bit); err != nil {
		return err
	}
	s.full.ApplyPTM(s.idx[bit], p)
	return nil
}

// ApplyTwoPTM applies a two-qubit PTM to (bit0, bit1); bit0 is the first
// tensor factor.
func (s *SparseDM) ApplyTwoPTM(bit0, bit1 string, p backend.PTM) error {
	if r, c := p.Dims(); r != 16 || c != 16 {
		return fmt.Errorf("two-qubit PTM must be 16x16, got %dx%d", r, c)
	}
	if bit0 == bit1 {
		return fmt.Errorf("two-qubit PTM applied twice to %q", bit0)
	}
	if err := s.EnsureDense(bit0); err != nil {
		return err
	}
	if err := s.EnsureDense(bit1); err != nil {
		return err
	}
	s.full.ApplyTwoPTM(s.idx[bit0], s.idx[bit1], p)
	return nil
}

// PeakMeasurement returns the (unnormalized) probabilities of measuring bit
// as 0 and 1 without changing the state.
func (s *SparseDM) PeakMeasurement(bit string) (p0, p1 float64, err error) {
	if err := s.check(bit); err != nil {
		return 0, 0, err
	}
	if pos, ok := s.idx[bit]; ok {
		p0, p1 = s.full.PeakMeasurement(pos)
		return p0 * s.classicalProbability, p1 * s.classicalProbability, nil
	}
	tr := s.Trace()
	if s.classical[bit] == 0 {
		return tr, 0, nil
	}
	return 0, tr, nil
}

// ProjectMeasurement keeps only the branch where bit equals state, without
// renormalizing. The bit is classical afterwards. Projecting a classical bit
// onto the other value zeroes the classical probability.
func (s *SparseDM) ProjectMeasurement(bit string, state int) error {
	if err := s.check(bit); err != nil {
		return err
	}
	if err := checkValue(state); err != nil {
		return err
	}
	pos, ok := s.idx[bit]
	if !ok {
		if s.classical[bit] != state {
			s.classicalProbability = 0
		}
		return nil
	}
	s.full.ProjectMeasurement(pos, state)
	delete(s.idx, bit)
	s.dense = append(s.dense[:pos], s.dense[pos+1:]...)
	for i := pos; i < len(s.dense); i++ {
		s.idx[s.dense[i]] = i
	}
	s.classical[bit] = state
	return nil
}

// SetBit makes bit classical and sets it to value.
func (s *SparseDM) SetBit(bit string, value int) error {
	if err := checkValue(value); err != nil {
		return err
	}
	if err := s.EnsureClassical(bit); err != nil {
		return err
	}
	s.classical[bit] = value
	return nil
}

// Copy returns an independent copy of the register.
func (s *SparseDM) Copy() *SparseDM {
	out := &SparseDM{
		names:                s.Names(),
		known:                make(map[string]bool, len(s.known)),
		classical:            s.Classical(),
		idx:                  make(map[string]int, len(s.idx)),
		dense:                s.DenseBits(),
		full:                 s.full.Copy(),
		backendName:          s.backendName,
		maxDense:             s.maxDense,
		classicalProbability: s.classicalProbability,
	}
	for k := range s.known {
		out.known[k] = true
	}
	for k, v := range s.idx {
		out.idx[k] = v
	}
	return out
}

// String summarizes the register for logs.
func (s *SparseDM) String() string {
	return fmt.Sprintf("SparseDM(dense=%v, classical=%d bits, trace=%.6g)", s.dense, len(s.classical), s.Trace())
}

func (s *SparseDM) check(bit string) error {
	if !s.known[bit] {
		return fmt.Errorf("%w: %q", ErrUnknownBit, bit)
	}
	return nil
}

func checkValue(v int) error {
	if v != 0 && v != 1 {
		return fmt.Errorf("bit value must be 0 or 1, got %d", v)
	}
	return nil
}
