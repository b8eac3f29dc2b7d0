// Package qasm turns QASM programs into scheduled circuits using a
// hardware description (which instructions exist and how long they take)
// and a simulator description (how noisy each qubit is).
//
// The accepted dialect is line based:
//
//	# comment
//	qubits 3
//	.bell
//	  h q0
//	  cnot q0,q1
//	  rx q2, 1.5708
//	  { measure q0 | measure q1 }
//
// Each ".name" line starts a new circuit. Braces group instructions that
// start together.
package qasm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/quantumsim/quantumsim/sim/circuit"
	"github.com/quantumsim/quantumsim/sim/overlay"
)

// ErrSyntax is returned for lines the parser cannot interpret.
var ErrSyntax = errors.New("qasm syntax error")

// Parser builds circuits from QASM text. Every call builds its own setup,
// but the random source is shared: give each goroutine its own copy via
// WithRand.
type Parser struct {
	hw  *HardwareConfig
	sim *SimulatorConfig
	rng *rand.Rand
}

// NewParser returns a parser over already loaded configurations.
func NewParser(hw *HardwareConfig, sim *SimulatorConfig) *Parser {
	p := &Parser{hw: hw, sim: sim}
	if sim.Seed != nil {
		p.rng = rand.New(rand.NewSource(*sim.Seed))
	}
	return p
}

// NewConfigurableParser loads the hardware and simulator configurations
// from files.
func NewConfigurableParser(hwPath, simPath string) (*Parser, error) {
	hw, err := LoadHardwareConfig(hwPath)
	if err != nil {
		return nil, err
	}
	sim, err := LoadSimulatorConfig(simPath)
	if err != nil {
		return nil, err
	}
	return NewParser(hw, sim), nil
}

// WithRand returns a copy of the parser whose samplers and flux draws use
// rng. A *rand.Rand is not safe for concurrent use, so each goroutine needs
// its own.
func (p *Parser) WithRand(rng *rand.Rand) *Parser {
	out := *p
	out.rng = rng
	return &out
}

// Seed returns the seed named by the simulator config, if any.
func (p *Parser) Seed() (int64, bool) {
	if p.sim.Seed == nil {
		return 0, false
	}
	return *p.sim.Seed, true
}

// Parse reads a QASM program.
func (p *Parser) Parse(r io.Reader) ([]*circuit.Circuit, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading qasm: %w", err)
	}
	return p.ParseLines(lines)
}

// ParseLines parses a QASM program given as lines.
func (p *Parser) ParseLines(lines []string) ([]*circuit.Circuit, error) {
	st := &parseState{parser: p}
	for i, raw := range lines {
		if err := st.line(i+1, raw); err != nil {
			return nil, err
		}
	}
	st.finish()
	logrus.Debugf("qasm: parsed %d circuits", len(st.circuits))
	return st.circuits, nil
}

type parseState struct {
	parser   *Parser
	qubits   []string
	known    map[string]bool
	setup    *overlay.Setup
	builder  *overlay.Builder
	circuits []*circuit.Circuit
}

func syntaxError(lineNo int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, lineNo, fmt.Sprintf(format, args...))
}

func (st *parseState) line(lineNo int, raw string) error {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	line := strings.TrimSpace(raw)
	switch {
	case line == "":
		return nil
	case strings.HasPrefix(line, "qubits"):
		return st.declare(lineNo, line)
	case strings.HasPrefix(line, "."):
		title := strings.TrimSpace(line[1:])
		if title == "" {
			return syntaxError(lineNo, "circuit name missing")
		}
		return st.start(lineNo, title)
	}
	if st.setup == nil {
		return syntaxError(lineNo, "instruction before qubits declaration")
	}
	if st.builder == nil {
		if err := st.start(lineNo, "main"); err != nil {
			return err
		}
	}
	if strings.HasPrefix(line, "{") {
		return st.group(lineNo, line)
	}
	return st.instruction(lineNo, line)
}

func (st *parseState) declare(lineNo int, line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != "qubits" {
		return syntaxError(lineNo, "expected 'qubits N', got %q", line)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n <= 0 {
		return syntaxError(lineNo, "invalid qubit count %q", fields[1])
	}
	if st.setup != nil {
		return syntaxError(lineNo, "qubits declared twice")
	}
	sim := st.parser.sim
	params := make(map[string]overlay.QubitParams, n)
	st.known = make(map[string]bool, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("q%d", i)
		qp, err := sim.QubitParams(name)
		if err != nil {
			return err
		}
		if sim.StaticFluxStd > 0 && st.parser.rng != nil {
			flux := sim.StaticFluxStd * st.parser.rng.NormFloat64()
			qp.QuasistaticFlux = &flux
		}
		params[name] = qp
		st.qubits = append(st.qubits, name)
		st.known[name] = true
	}
	var src circuit.RandomSource
	if st.parser.rng != nil {
		src = st.parser.rng
	}
	setup, err := overlay.NewSetup(params, src)
	if err != nil {
		return err
	}
	st.setup = setup
	return nil
}

func (st *parseState) start(lineNo int, title string) error {
	if st.setup == nil {
		return syntaxError(lineNo, "circuit %q before qubits declaration", title)
	}
	st.finish()
	b, err := overlay.NewBuilder(st.setup, title)
	if err != nil {
		return err
	}
	st.builder = b
	return nil
}

func (st *parseState) finish() {
	if st.builder == nil {
		return
	}
	st.circuits = append(st.circuits, st.builder.Finish(0))
	st.builder = nil
}

func (st *parseState) group(lineNo int, line string) error {
	if !strings.HasSuffix(line, "}") {
		return syntaxError(lineNo, "unterminated parallel group")
	}
	parts := strings.Split(strings.TrimSpace(line[1:len(line)-1]), "|")
	var parsed []parsedInstruction
	var involved []string
	for _, part := range parts {
		ins, err := st.parse(lineNo, strings.TrimSpace(part))
		if err != nil {
			return err
		}
		parsed = append(parsed, ins)
		involved = append(involved, ins.qubits...)
	}
	st.builder.Align(involved...)
	for _, ins := range parsed {
		if err := st.apply(lineNo, ins); err != nil {
			return err
		}
	}
	return nil
}

func (st *parseState) instruction(lineNo int, line string) error {
	ins, err := st.parse(lineNo, line)
	if err != nil {
		return err
	}
	return st.apply(lineNo, ins)
}

type parsedInstruction struct {
	name   string
	qubits []string
	angle  *float64
}

// parse splits "name q0,q1[, angle]" into its parts.
func (st *parseState) parse(lineNo int, text string) (parsedInstruction, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	if len(fields) < 2 {
		return parsedInstruction{}, syntaxError(lineNo, "expected 'instruction qubit[,qubit...]', got %q", text)
	}
	ins := parsedInstruction{name: fields[0]}
	args := fields[1:]
	last := args[len(args)-1]
	v, err := strconv.ParseFloat(last, 64)
	switch {
	case err == nil:
		ins.angle = &v
		args = args[:len(args)-1]
	case errors.Is(err, strconv.ErrRange):
		return ins, syntaxError(lineNo, "invalid angle %q", last)
	}
	if len(args) == 0 {
		return ins, syntaxError(lineNo, "instruction %q has no qubits", ins.name)
	}
	seen := make(map[string]bool, len(args))
	for _, q := range args {
		if !st.known[q] {
			return ins, syntaxError(lineNo, "unknown qubit %q", q)
		}
		if seen[q] {
			return ins, syntaxError(lineNo, "qubit %q repeated in %q", q, ins.name)
		}
		seen[q] = true
	}
	ins.qubits = args
	return ins, nil
}

func (st *parseState) apply(lineNo int, ins parsedInstruction) error {
	gate := ins.name
	params := circuit.Params{}
	var duration *float64
	if hwIns, ok := st.parser.hw.Instructions[ins.name]; ok {
		gate = hwIns.Gate
		duration = hwIns.Duration
		for k, v := range hwIns.Params {
			params[k] = v
		}
	}
	if _, err := st.setup.Resolve(gate); err != nil {
		return syntaxError(lineNo, "unknown instruction %q", ins.name)
	}
	if ins.angle != nil {
		params["angle"] = *ins.angle
	}
	var err error
	if duration != nil {
		_, err = st.builder.AddTimedGate(gate, ins.qubits, params, *duration)
	} else {
		_, err = st.builder.AddGate(gate, ins.qubits, params)
	}
	if err != nil {
		return syntaxError(lineNo, "%s: %v", ins.name, err)
	}
	return nil
}
