package sim

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/quantumsim/quantumsim/sim/circuit"
	"github.com/quantumsim/quantumsim/sim/sparsedm"
	"github.com/quantumsim/quantumsim/sim/trace"
)

// CircuitFactory builds the circuit of one shot. Every random choice the
// circuit makes (flux offsets, measurement samples) must draw from rng, or
// runs stop being reproducible.
type CircuitFactory func(rng *rand.Rand) (*circuit.Circuit, error)

// Simulator runs shots of a circuit. Repeated Run calls append to the same
// trace.
type Simulator struct {
	cfg   RunConfig
	rng   *PartitionedRNG
	runID string
	trace *trace.SimulationTrace
}

// NewSimulator validates cfg and returns a simulator with a fresh run ID.
func NewSimulator(cfg RunConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	return &Simulator{
		cfg:   cfg,
		rng:   NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		runID: runID,
		trace: trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(cfg.TraceLevel)}, runID),
	}, nil
}

// RunID identifies the run in results and traces.
func (s *Simulator) RunID() string { return s.runID }

// RNG returns the partitioned RNG of the run.
func (s *Simulator) RNG() *PartitionedRNG { return s.rng }

// Trace returns the shot records collected so far.
func (s *Simulator) Trace() *trace.SimulationTrace { return s.trace }

// outcome is one value declared by a measurement.
type outcome struct {
	bit   string
	time  float64
	value int
}

func (o outcome) measurementKey() string { return fmt.Sprintf("%s@%g", o.bit, o.time) }

func (o outcome) String() string { return fmt.Sprintf("%s=%d", o.measurementKey(), o.value) }

type shotResult struct {
	title                string
	seed                 int64
	rounds               [][]outcome
	trace                float64
	classicalProbability float64
}

// Run executes cfg.Shots shots on cfg.Workers goroutines. Each shot gets
// its own circuit from factory, seeded by SubsystemShot(i), so the results
// do not depend on scheduling. The first failing shot cancels the rest.
func (s *Simulator) Run(ctx context.Context, factory CircuitFactory) (*Results, error) {
	workers := s.cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logrus.Infof("sim: run %s: %d shots x %d rounds on %d workers (backend %q, seed %d)",
		s.runID, s.cfg.Shots, s.cfg.Rounds, workers, s.cfg.Backend, s.cfg.Seed)

	shots := make([]shotResult, s.cfg.Shots)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range shots {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r, err := s.runShot(gctx, i, factory)
			if err != nil {
				return fmt.Errorf("shot %d: %w", i, err)
			}
			shots[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := s.aggregate(shots)
	logrus.Infof("sim: run %s done: mean trace %.6f", s.runID, res.MeanTrace)
	return res, nil
}

func (s *Simulator) runShot(ctx context.Context, i int, factory CircuitFactory) (shotResult, error) {
	seed := s.rng.SeedFor(SubsystemShot(i))
	c, err := factory(rand.New(rand.NewSource(seed)))
	if err != nil {
		return shotResult{}, err
	}
	opts := []sparsedm.Option{sparsedm.WithBackend(s.cfg.Backend)}
	if s.cfg.MaxDenseQubits > 0 {
		opts = append(opts, sparsedm.WithMaxDenseQubits(s.cfg.MaxDenseQubits))
	}
	state, err := sparsedm.New(c.QubitNames(), opts...)
	if err != nil {
		return shotResult{}, err
	}

	var measurements []*circuit.Measurement
	for _, g := range c.Gates {
		if m, ok := g.(*circuit.Measurement); ok {
			measurements = append(measurements, m)
		}
	}

	res := shotResult{title: c.Title, seed: seed}
	for round := 0; round < s.cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if round > 0 && s.cfg.Renormalize {
			state.Renormalize()
		}
		if err := c.ApplyTo(state); err != nil {
			return res, fmt.Errorf("round %d: %w", round, err)
		}
		declared := make([]outcome, 0, len(measurements))
		for _, m := range measurements {
			if n := len(m.Measurements); n > 0 {
				declared = append(declared, outcome{bit: m.InvolvedQubits()[0], time: m.Time(), value: m.Measurements[n-1]})
			}
		}
		res.rounds = append(res.rounds, declared)
	}
	res.trace = state.Trace()
	res.classicalProbability = state.ClassicalProbability()
	return res, nil
}

// aggregate folds the shot results in shot order.
func (s *Simulator) aggregate(shots []shotResult) *Results {
	res := &Results{
		RunID:     s.runID,
		Shots:     s.cfg.Shots,
		Rounds:    s.cfg.Rounds,
		Seed:      s.cfg.Seed,
		Histogram: make([]map[string]int, s.cfg.Rounds),
		P1:        make(map[string]float64),
	}
	for r := range res.Histogram {
		res.Histogram[r] = make(map[string]int)
	}
	if len(shots) > 0 {
		res.Circuit = shots[0].title
	}

	seen := make(map[string]int)
	var traceSum, weightSum float64
	for i, shot := range shots {
		var declared []string
		for r, round := range shot.rounds {
			for _, o := range round {
				res.Histogram[r][o.String()]++
				seen[o.measurementKey()]++
				res.P1[o.measurementKey()] += float64(o.value)
				declared = append(declared, o.String())
			}
		}
		traceSum += shot.trace
		weightSum += shot.classicalProbability
		if s.trace.Config.Enabled() {
			s.trace.RecordShot(trace.ShotRecord{
				Shot:                 i,
				Seed:                 shot.seed,
				Outcomes:             declared,
				Trace:                shot.trace,
				ClassicalProbability: shot.classicalProbability,
			})
		}
	}
	for key, n := range seen {
		res.P1[key] /= float64(n)
	}
	res.MeanTrace = traceSum / float64(len(shots))
	res.MeanClassicalProbability = weightSum / float64(len(shots))
	return res
}
