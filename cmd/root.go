package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/quantumsim/quantumsim/sim"
	"github.com/quantumsim/quantumsim/sim/circuit"
	"github.com/quantumsim/quantumsim/sim/qasm"
	"github.com/quantumsim/quantumsim/sim/trace"
)

// envPrefix namespaces environment overrides, e.g. QUANTUMSIM_SHOTS.
const envPrefix = "QUANTUMSIM"

var (
	// CLI flags for the program and device descriptions
	qasmPath      string // QASM program
	hardwarePath  string // hardware instruction set (YAML or JSON)
	simulatorPath string // qubit noise model (YAML or JSON)
	circuitName   string // run only the circuit with this title
	resultsPath   string // where to write results YAML (optional)
	runConfigPath string // run config YAML (optional)
	logLevel      string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "quantumsim",
	Short: "Density-matrix simulator for noisy quantum circuits",
}

// runOptions is everything a run needs besides the run config.
type runOptions struct {
	QASM, Hardware, Simulator string
	Circuit                   string
	ResultsPath               string
	// InheritSeed takes the run seed from the simulator config when it
	// has one. Set when no flag, variable or run config names a seed.
	InheritSeed bool
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every circuit of a QASM program",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := resolveRunConfig(cmd, runConfigPath)
		if err != nil {
			logrus.Fatalf("Invalid run configuration: %v", err)
		}

		startTime := time.Now()
		opts := runOptions{
			QASM:        qasmPath,
			Hardware:    hardwarePath,
			Simulator:   simulatorPath,
			Circuit:     circuitName,
			ResultsPath: resultsPath,
			InheritSeed: !seedExplicit(cmd, runConfigPath),
		}
		if err := runProgram(cmd.Context(), cfg, opts, os.Stdout); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}

// runKeys maps run config keys to the flags that set them.
var runKeys = map[string]string{
	"shots":            "shots",
	"rounds":           "rounds",
	"workers":          "workers",
	"seed":             "seed",
	"backend":          "backend",
	"max_dense_qubits": "max-dense-qubits",
	"renormalize":      "renormalize",
	"trace_level":      "trace",
}

// resolveRunConfig merges, from lowest to highest precedence, the built-in
// defaults, the run config file, QUANTUMSIM_* environment variables and
// explicitly set flags.
func resolveRunConfig(cmd *cobra.Command, path string) (sim.RunConfig, error) {
	base := sim.DefaultRunConfig()
	if path != "" {
		loaded, err := sim.LoadRunConfig(path)
		if err != nil {
			return base, err
		}
		base = *loaded
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("shots", base.Shots)
	v.SetDefault("rounds", base.Rounds)
	v.SetDefault("workers", base.Workers)
	v.SetDefault("seed", base.Seed)
	v.SetDefault("backend", base.Backend)
	v.SetDefault("max_dense_qubits", base.MaxDenseQubits)
	v.SetDefault("renormalize", base.Renormalize)
	v.SetDefault("trace_level", base.TraceLevel)
	for key, flag := range runKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return base, err
			}
		}
	}

	cfg := sim.RunConfig{
		Shots:          v.GetInt("shots"),
		Rounds:         v.GetInt("rounds"),
		Workers:        v.GetInt("workers"),
		Seed:           v.GetInt64("seed"),
		Backend:        v.GetString("backend"),
		MaxDenseQubits: v.GetInt("max_dense_qubits"),
		Renormalize:    v.GetBool("renormalize"),
		TraceLevel:     v.GetString("trace_level"),
	}
	return cfg, cfg.Validate()
}

// seedExplicit reports whether the run seed comes from the --seed flag,
// QUANTUMSIM_SEED or the run config file.
func seedExplicit(cmd *cobra.Command, path string) bool {
	if f := cmd.Flags().Lookup("seed"); f != nil && f.Changed {
		return true
	}
	if _, ok := os.LookupEnv(envPrefix + "_SEED"); ok {
		return true
	}
	if path == "" {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var file struct {
		Seed *int64 `yaml:"seed"`
	}
	return yaml.Unmarshal(data, &file) == nil && file.Seed != nil
}

// runProgram parses the QASM program once to learn its circuits, then runs
// each selected circuit with a fresh parse per shot so that flux offsets and
// measurement samples come from the shot's RNG.
func runProgram(ctx context.Context, cfg sim.RunConfig, opts runOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.QASM == "" || opts.Hardware == "" || opts.Simulator == "" {
		return fmt.Errorf("--qasm, --hardware and --simulator are required")
	}
	parser, err := qasm.NewConfigurableParser(opts.Hardware, opts.Simulator)
	if err != nil {
		return err
	}
	if seed, ok := parser.Seed(); ok && opts.InheritSeed {
		logrus.Infof("Using seed %d from %s", seed, opts.Simulator)
		cfg.Seed = seed
	}
	data, err := os.ReadFile(opts.QASM)
	if err != nil {
		return fmt.Errorf("reading qasm: %w", err)
	}
	lines := strings.Split(string(data), "\n")

	master := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	circuits, err := parser.WithRand(master.ForSubsystem(sim.SubsystemParse)).ParseLines(lines)
	if err != nil {
		return err
	}

	var selected []int
	for i, c := range circuits {
		if opts.Circuit == "" || c.Title == opts.Circuit {
			selected = append(selected, i)
		}
	}
	if len(selected) == 0 {
		return fmt.Errorf("no circuit named %q in %s", opts.Circuit, opts.QASM)
	}

	for _, idx := range selected {
		s, err := sim.NewSimulator(cfg)
		if err != nil {
			return err
		}
		factory := func(rng *rand.Rand) (*circuit.Circuit, error) {
			cs, err := parser.WithRand(rng).ParseLines(lines)
			if err != nil {
				return nil, err
			}
			return cs[idx], nil
		}
		res, err := s.Run(ctx, factory)
		if err != nil {
			return fmt.Errorf("circuit %q: %w", circuits[idx].Title, err)
		}
		res.Print(out)
		if s.Trace().Config.Enabled() {
			printTraceSummary(out, trace.Summarize(s.Trace()))
		}
		if opts.ResultsPath != "" {
			path := resultsFile(opts.ResultsPath, res.Circuit, len(selected))
			if err := res.SaveYAML(path); err != nil {
				return err
			}
			logrus.Infof("Results written to %s", path)
		}
	}
	return nil
}

// resultsFile inserts the circuit title before the extension when a
// program has several circuits, e.g. out.yaml → out.bell.yaml.
func resultsFile(path, title string, n int) string {
	if n <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + title + ext
}

func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Shot Trace Summary ===")
	fmt.Fprintf(w, "Shots Traced         : %d\n", s.TotalShots)
	fmt.Fprintf(w, "Min Trace            : %.6f\n", s.MinTrace)
	fmt.Fprintf(w, "Mean Weight          : %.6f\n", s.MeanWeight)
	fmt.Fprintf(w, "Unique Outcomes      : %d\n", s.UniqueOutcomes)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addRunConfigFlags registers one flag per run config field.
func addRunConfigFlags(cmd *cobra.Command) {
	def := sim.DefaultRunConfig()
	cmd.Flags().Int("shots", def.Shots, "Number of shots")
	cmd.Flags().Int("rounds", def.Rounds, "Circuit applications per shot")
	cmd.Flags().Int("workers", def.Workers, "Concurrent shots (0 = GOMAXPROCS)")
	cmd.Flags().Int64("seed", def.Seed, "Master seed")
	cmd.Flags().String("backend", def.Backend, "Density-matrix backend (see 'quantumsim backends')")
	cmd.Flags().Int("max-dense-qubits", def.MaxDenseQubits, "Dense qubit limit (0 = default)")
	cmd.Flags().Bool("renormalize", def.Renormalize, "Renormalize the state between rounds")
	cmd.Flags().String("trace", def.TraceLevel, "Trace level (none, shots)")
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&qasmPath, "qasm", "", "QASM program to simulate")
	runCmd.Flags().StringVar(&hardwarePath, "hardware", "", "Hardware instruction set (YAML or JSON)")
	runCmd.Flags().StringVar(&simulatorPath, "simulator", "", "Qubit noise model (YAML or JSON)")
	runCmd.Flags().StringVar(&circuitName, "circuit", "", "Run only the circuit with this title")
	runCmd.Flags().StringVar(&resultsPath, "results", "", "Write results YAML to this path")
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Run config YAML; flags and QUANTUMSIM_* variables override it")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	addRunConfigFlags(runCmd)

	_ = runCmd.MarkFlagRequired("qasm")
	_ = runCmd.MarkFlagRequired("hardware")
	_ = runCmd.MarkFlagRequired("simulator")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
