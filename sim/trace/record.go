package trace

// ShotRecord captures the outcome of a single shot.
type ShotRecord struct {
	Shot                 int      `yaml:"shot"`
	Seed                 int64    `yaml:"seed"`
	Outcomes             []string `yaml:"outcomes"`              // declared outcomes in round then time order, as "bit@time=value"
	Trace                float64  `yaml:"trace"`                 // trace of the final state
	ClassicalProbability float64  `yaml:"classical_probability"` // product of the sampler weights
}
