package circuit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/quantumsim/quantumsim/sim/backend"
	"github.com/quantumsim/quantumsim/sim/internal/testutil"
	"github.com/quantumsim/quantumsim/sim/ptm"
)

// recordingState logs calls in a compact string form and answers peaks
// from a queue.
type recordingState struct {
	calls     []string
	peaks     [][2]float64
	classical map[string]int
	scale     float64
}

func newRecordingState() *recordingState {
	return &recordingState{classical: map[string]int{}, scale: 1}
}

func (r *recordingState) ApplyPTM(bit string, _ backend.PTM) error {
	r.calls = append(r.calls, "ptm "+bit)
	return nil
}

func (r *recordingState) ApplyTwoPTM(bit0, bit1 string, _ backend.PTM) error {
	r.calls = append(r.calls, "ptm2 "+bit0+","+bit1)
	return nil
}

func (r *recordingState) PeakMeasurement(bit string) (float64, float64, error) {
	r.calls = append(r.calls, "peak "+bit)
	p := r.peaks[0]
	r.peaks = r.peaks[1:]
	return p[0], p[1], nil
}

func (r *recordingState) ProjectMeasurement(bit string, state int) error {
	r.calls = append(r.calls, "project "+bit+"="+string(rune('0'+state)))
	return nil
}

func (r *recordingState) SetBit(bit string, value int) error {
	r.calls = append(r.calls, "set "+bit+"="+string(rune('0'+value)))
	r.classical[bit] = value
	return nil
}

func (r *recordingState) EnsureClassical(bit string) error {
	r.calls = append(r.calls, "classical "+bit)
	return nil
}

func (r *recordingState) ClassicalValue(bit string) (int, error) {
	return r.classical[bit], nil
}

func (r *recordingState) ScaleClassicalProbability(p float64) {
	r.scale *= p
}

func TestAddQubit(t *testing.T) {
	c := New("test")
	require.NoError(t, c.AddQubit(NewQubit("A", 10, 20)))

	assert.Empty(t, c.Gates)
	require.Len(t, c.Qubits(), 1)
	assert.Equal(t, "A", c.Qubits()[0].Name())
}

func TestAddQubit_TwiceIsAnError(t *testing.T) {
	c := New("test")
	require.NoError(t, c.AddQubit(NewIdealQubit("A")))

	err := c.AddQubit(NewClassicalBit("A"))
	assert.ErrorIs(t, err, ErrDuplicateQubit)
	assert.Contains(t, err.Error(), "trying to add qubit with name")
}

func TestQubitNames(t *testing.T) {
	c := New("test")
	for _, n := range []string{"A", "B", "C"} {
		require.NoError(t, c.AddQubit(NewIdealQubit(n)))
	}
	assert.ElementsMatch(t, []string{"A", "B", "C"}, c.QubitNames())
}

func TestOrder_ConditionalAndClassicalGates(t *testing.T) {
	c := New("test")
	require.NoError(t, c.AddNamedQubit("D", 1000, 1000))
	require.NoError(t, c.AddNamedQubit("A", 1000, 1000))
	require.NoError(t, c.AddQubit(NewClassicalBit("MA")))
	require.NoError(t, c.AddQubit(NewClassicalBit("SA")))

	c.AddRotateY("A", 0, math.Pi/2)
	c.AddCPhase("A", "D", 10)
	c.AddGate(NewConditionalGate("SA", 20, []Gate{NewRotateY("A", 20, -math.Pi/2)}, nil))
	c.AddGate(NewConditionalGate("SA", 30, nil, []Gate{NewRotateY("A", 20, math.Pi/2)}))
	c.AddMeasurement("A", 40, NewBiasedSampler(testutil.NewScriptedSource(0.3), 1, 0.0015), "MA")
	c.AddGate(NewClassicalCNOT("MA", "SA", 35))
	require.Len(t, c.Gates, 6)

	c.Order()

	require.Len(t, c.Gates, 6)
	times := make([]float64, len(c.Gates))
	for i, g := range c.Gates {
		times[i] = g.Time()
	}
	assert.Equal(t, []float64{0, 10, 20, 30, 35, 40}, times)
}

func TestOrder_IsStable(t *testing.T) {
	c := New("test")
	c.AddHadamard("A", 1)
	c.AddRotateX("A", 0, 1)
	c.AddRotateZ("A", 0, 2)

	c.Order()

	assert.Equal(t, "$R_x(1)$", c.Gates[0].Label())
	assert.Equal(t, "$R_z(2)$", c.Gates[1].Label())
	assert.Equal(t, "H", c.Gates[2].Label())
}

func TestAddWaitingGates(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Circuit)
		opts  WaitingOptions
		want  int
	}{
		{
			name: "gap between two gates",
			setup: func(c *Circuit) {
				_ = c.AddNamedQubit("A", 10, 0)
				c.AddHadamard("A", 1)
				c.AddHadamard("A", 0)
			},
			want: 3,
		},
		{
			name:  "no gates and no bounds",
			setup: func(c *Circuit) { _ = c.AddNamedQubit("A", 0, 0) },
			want:  0,
		},
		{
			name:  "no gates with bounds",
			setup: func(c *Circuit) { _ = c.AddNamedQubit("A", 0, 0) },
			opts:  WaitingOptions{TMin: Bound(0), TMax: Bound(100)},
			want:  1,
		},
		{
			name: "only selected qubits",
			setup: func(c *Circuit) {
				_ = c.AddNamedQubit("A", 10, 10)
				_ = c.AddNamedQubit("B", 10, 10)
			},
			opts: WaitingOptions{OnlyQubits: []string{"A"}, TMin: Bound(0), TMax: Bound(1)},
			want: 1,
		},
		{
			name: "infinite lifetimes are skipped",
			setup: func(c *Circuit) {
				_ = c.AddQubit(NewIdealQubit("A"))
				_ = c.AddNamedQubit("B", math.Inf(1), math.Inf(1))
				_ = c.AddNamedQubit("C", 10, 10)
			},
			opts: WaitingOptions{TMin: Bound(0), TMax: Bound(1)},
			want: 1,
		},
		{
			name: "classical bits are skipped",
			setup: func(c *Circuit) {
				_ = c.AddQubit(NewClassicalBit("A"))
				_ = c.AddNamedQubit("B", math.Inf(1), math.Inf(1))
				_ = c.AddNamedQubit("C", 10, 10)
			},
			opts: WaitingOptions{TMin: Bound(0), TMax: Bound(1)},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.name)
			tt.setup(c)
			c.AddWaitingGates(tt.opts)
			assert.Len(t, c.Gates, tt.want)
		})
	}
}

func TestAddWaitingGates_CenteredInGap(t *testing.T) {
	c := New("test")
	require.NoError(t, c.AddNamedQubit("A", 10, 0))
	c.AddHadamard("A", 1)
	c.AddHadamard("A", 0)

	c.AddWaitingGates(WaitingOptions{})
	c.Order()

	wait, ok := c.Gates[1].(*AmpPhDamp)
	require.True(t, ok)
	assert.Equal(t, 0.5, wait.Time())
	assert.Equal(t, 1.0, wait.Duration)
}

func TestAddWaitingGates_BoundsDropOutsideTimes(t *testing.T) {
	c := New("test")
	require.NoError(t, c.AddNamedQubit("A", 10, 10))
	c.AddHadamard("A", -5)
	c.AddHadamard("A", 5)

	c.AddWaitingGates(WaitingOptions{TMin: Bound(0), TMax: Bound(10)})

	// the gate at -5 is outside [0, 10], so only 0-5 and 5-10 are filled
	require.Len(t, c.Gates, 4)
	assert.Equal(t, 2.5, c.Gates[2].Time())
	assert.Equal(t, 7.5, c.Gates[3].Time())
}

func TestVariableDecoherenceQubit_WaitingGates(t *testing.T) {
	// GIVEN a qubit whose decay doubles during [10, 20]
	c := New("test")
	window := []Window{{Start: 10, End: 20, Value: 10}}
	require.NoError(t, c.AddQubit(NewVariableDecoherenceQubit("A", 10, 10, window, window)))
	c.AddHadamard("A", 10)
	c.AddHadamard("A", 0)
	c.AddHadamard("A", 20)

	// WHEN waiting gates are added
	c.AddWaitingGates(WaitingOptions{})
	c.Order()

	// THEN the first gap uses the base lifetime and the second the raised rate
	first := c.Gates[1].(*AmpPhDamp)
	assert.Equal(t, 5.0, first.Time())
	assert.Equal(t, 10.0, first.Duration)
	assert.Equal(t, 10.0, first.T1)
	assert.InDelta(t, 5.0, c.Gates[3].(*AmpPhDamp).T1, 1e-12)
}

func TestVariableDecoherenceQubit_Averaging(t *testing.T) {
	c := New("test")
	window := []Window{{Start: 10, End: 20, Value: 10}}
	require.NoError(t, c.AddQubit(NewVariableDecoherenceQubit("A", 10, 10, window, window)))

	c.AddWaitingGates(WaitingOptions{TMin: Bound(0), TMax: Bound(100)})

	require.Len(t, c.Gates, 1)
	wait := c.Gates[0].(*AmpPhDamp)
	assert.Equal(t, 50.0, wait.Time())
	assert.Equal(t, 100.0, wait.Duration)
	testutil.AssertFloat64Equal(t, "t1", 10/(9.0/10+1.0/5), wait.T1, 1e-12)
}

func TestApplyTo_CallSequence(t *testing.T) {
	c := New("test")
	require.NoError(t, c.AddNamedQubit("A", 10, 20))
	c.AddHadamard("A", 0)
	c.AddHadamard("A", 10)
	c.AddMeasurement("A", 20, SelectionSampler{Result: 0}, "")
	c.AddWaitingGates(WaitingOptions{})
	c.Order()

	s := newRecordingState()
	s.peaks = [][2]float64{{1, 0}}
	require.NoError(t, c.ApplyTo(s))

	assert.Equal(t, []string{
		"ptm A", "ptm A", "ptm A", "ptm A", "peak A", "project A=0",
	}, s.calls)
}

func TestAddGateByName(t *testing.T) {
	c := New("test")
	require.NoError(t, c.AddNamedQubit("A", 10, 10))

	_, err := c.AddGateByName("hadamard", []string{"A"}, 20, nil)
	require.NoError(t, err)
	require.Len(t, c.Gates, 1)
	assert.Equal(t, 20.0, c.Gates[0].Time())

	_, err = c.AddGateByName("cphase", []string{"A", "B"}, 30, nil)
	require.NoError(t, err)
	assert.Equal(t, 30.0, c.Gates[1].Time())

	_, err = c.AddGateByName("toffoli", []string{"A"}, 0, nil)
	assert.ErrorIs(t, err, ErrUnknownGate)

	_, err = c.AddGateByName("cphase", []string{"A"}, 0, nil)
	assert.Error(t, err)
}

func TestNewGate_ParamsReachThePTM(t *testing.T) {
	g, err := NewGate("rotate_y", []string{"A"}, 0, Params{"angle": 0.7})
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(ptm.RotateY(0.7), g.(*SinglePTMGate).PTM, 1e-12))

	g, err = NewGate("amp_ph_damp", []string{"A"}, 3, Params{"duration": 2, "t1": 10, "t2": 5})
	require.NoError(t, err)
	apd := g.(*AmpPhDamp)
	assert.Equal(t, 2.0, apd.Duration)
	assert.Equal(t, 5.0, apd.T2)

	arity, err := GateArity("classical_cnot")
	require.NoError(t, err)
	assert.Equal(t, 2, arity)
	assert.Contains(t, GateNames(), "iswap_rotation")
}

func TestConvenienceAdders(t *testing.T) {
	c := New("test")
	c.AddHadamard("A", 20)
	c.AddRotateY("A", 20, 0)

	require.Len(t, c.Gates, 2)
	assert.Equal(t, 20.0, c.Gates[0].Time())
}

func TestAddSubcircuit(t *testing.T) {
	sub := New("sub")
	require.NoError(t, sub.AddQubit(NewIdealQubit("A")))
	sub.AddHadamard("A", 0)
	sub.AddHadamard("A", 5)

	c := New("main")
	require.NoError(t, c.AddQubit(NewIdealQubit("Q")))

	// WHEN added with an explicit map and with a positional list
	c.AddSubcircuit(sub, 0, map[string]string{"A": "Q"})
	names, err := NameMapFromList(sub, []string{"Q"})
	require.NoError(t, err)
	c.AddSubcircuit(sub, 10, names)

	require.Len(t, c.Gates, 4)
	assert.ElementsMatch(t, []float64{0, 5, 10, 15}, gateTimes(c))
	for _, g := range c.Gates {
		assert.Equal(t, []string{"Q"}, g.InvolvedQubits())
	}

	// WHEN added without a map the names are kept
	c.AddSubcircuit(sub, 0, nil)
	require.Len(t, c.Gates, 6)
	assert.Equal(t, []string{"A"}, c.Gates[5].InvolvedQubits())

	// the subcircuit itself is unchanged
	assert.Equal(t, []string{"A"}, sub.Gates[0].InvolvedQubits())

	_, err = NameMapFromList(sub, []string{"Q", "R"})
	assert.Error(t, err)
}

func gateTimes(c *Circuit) []float64 {
	out := make([]float64, len(c.Gates))
	for i, g := range c.Gates {
		out[i] = g.Time()
	}
	return out
}
