package circuit

import (
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// RandomSource is the part of *rand.Rand a sampler draws from.
type RandomSource interface {
	Float64() float64
}

// Sampler decides the outcome of a measurement from the unnormalized
// populations p0 and p1. declared is the value reported to the output bit,
// projected is the branch the state is projected on, and prob is the
// weight of the readout outcome given the projection.
type Sampler interface {
	Sample(p0, p1 float64) (declared, projected int, prob float64)
}

func unseededSource(what string) RandomSource {
	logrus.Warnf("%s created without a random source; results will not be reproducible", what)
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// probabilityOfZero normalizes p0 against p0+p1. An empty branch pair
// counts as an unbiased coin.
func probabilityOfZero(p0, p1 float64) float64 {
	total := p0 + p1
	if total <= 0 {
		return 0.5
	}
	return p0 / total
}

// SelectionSampler always projects onto Result and reports it with
// probability 1.
type SelectionSampler struct {
	Result int
}

func (s SelectionSampler) Sample(_, _ float64) (int, int, float64) {
	return s.Result, s.Result, 1
}

// UniformSampler projects according to the Born rule without readout error.
type UniformSampler struct {
	rng RandomSource
}

// NewUniformSampler returns a Born-rule sampler. A nil rng falls back to a
// time-seeded one and logs a warning.
func NewUniformSampler(rng RandomSource) *UniformSampler {
	if rng == nil {
		rng = unseededSource("uniform sampler")
	}
	return &UniformSampler{rng: rng}
}

func (s *UniformSampler) Sample(p0, p1 float64) (int, int, float64) {
	proj := 0
	if s.rng.Float64() >= probabilityOfZero(p0, p1) {
		proj = 1
	}
	return proj, proj, 1
}

// UniformNoisySampler projects according to the Born rule and then flips
// the declared value with probability ReadoutError.
type UniformNoisySampler struct {
	rng          RandomSource
	ReadoutError float64
}

// NewUniformNoisySampler returns a Born-rule sampler with symmetric readout
// error.
func NewUniformNoisySampler(rng RandomSource, readoutError float64) *UniformNoisySampler {
	if rng == nil {
		rng = unseededSource("uniform noisy sampler")
	}
	return &UniformNoisySampler{rng: rng, ReadoutError: readoutError}
}

func (s *UniformNoisySampler) Sample(p0, p1 float64) (int, int, float64) {
	proj := 0
	if s.rng.Float64() >= probabilityOfZero(p0, p1) {
		proj = 1
	}
	declared, prob := readout(s.rng, proj, s.ReadoutError)
	return declared, proj, prob
}

func readout(rng RandomSource, proj int, readoutError float64) (int, float64) {
	if rng.Float64() < readoutError {
		return 1 - proj, readoutError
	}
	return proj, 1 - readoutError
}

// BiasedSampler draws projections from the Born probabilities raised to
// Alpha, which favours unlikely branches for alpha < 1. PTwiddle is the
// product of the probabilities of every choice made under the biased
// distribution, including readout, and is used to reweight samples.
type BiasedSampler struct {
	rng          RandomSource
	Alpha        float64
	ReadoutError float64
	PTwiddle     float64
}

// NewBiasedSampler returns an importance sampler. A nil rng logs a warning.
func NewBiasedSampler(rng RandomSource, alpha, readoutError float64) *BiasedSampler {
	if rng == nil {
		rng = unseededSource("biased sampler")
	}
	return &BiasedSampler{rng: rng, Alpha: alpha, ReadoutError: readoutError, PTwiddle: 1}
}

func (s *BiasedSampler) Sample(p0, p1 float64) (int, int, float64) {
	pz := probabilityOfZero(p0, p1)
	b0 := math.Pow(pz, s.Alpha)
	b1 := math.Pow(1-pz, s.Alpha)
	biased := probabilityOfZero(b0, b1)

	proj := 0
	if s.rng.Float64() < biased {
		s.PTwiddle *= biased
	} else {
		proj = 1
		s.PTwiddle *= 1 - biased
	}
	declared, prob := readout(s.rng, proj, s.ReadoutError)
	s.PTwiddle *= prob
	return declared, proj, prob
}
