package circuit

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Measurement measures a qubit in the computational basis. The qubit is
// projected onto the sampled branch and becomes classical; the declared
// value is copied to OutputBit when one is set and appended to
// Measurements.
type Measurement struct {
	base
	Sampler      Sampler
	OutputBit    string
	Measurements []int
}

// NewMeasurement returns a measurement of bit. A nil sampler is replaced by
// an unseeded uniform sampler.
func NewMeasurement(bit string, time float64, sampler Sampler, outputBit string) *Measurement {
	if sampler == nil {
		sampler = NewUniformSampler(nil)
	}
	return &Measurement{base: newBase(time, "M", bit), Sampler: sampler, OutputBit: outputBit}
}

func (m *Measurement) IsMeasurement() bool { return true }

func (m *Measurement) ApplyTo(s State) error {
	bit := m.bits[0]
	p0, p1, err := s.PeakMeasurement(bit)
	if err != nil {
		return err
	}
	declared, projected, prob := m.Sampler.Sample(p0, p1)
	logrus.Debugf("circuit: measured %s at t=%g: p=(%g, %g) projected %d declared %d", bit, m.time, p0, p1, projected, declared)
	if err := s.ProjectMeasurement(bit, projected); err != nil {
		return err
	}
	if m.OutputBit != "" {
		if err := s.SetBit(m.OutputBit, declared); err != nil {
			return fmt.Errorf("writing measurement of %s to %s: %w", bit, m.OutputBit, err)
		}
	}
	s.ScaleClassicalProbability(prob)
	m.Measurements = append(m.Measurements, declared)
	return nil
}

// Remap shares the sampler with the original; recorded outcomes are not
// copied.
func (m *Measurement) Remap(dt float64, rename func(string) string) Gate {
	out := &Measurement{base: m.remapped(dt, rename), Sampler: m.Sampler}
	if m.OutputBit != "" {
		out.OutputBit = rename(m.OutputBit)
	}
	return out
}
