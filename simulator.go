package qsim

import (
	"math/rand/v2"

	"github.com/davecgh/go-spew/spew"
	"github.com/theapemachine/errnie"
)

// simulateStream is the PCG stream used by Simulate; trials use their index.
const simulateStream = ^uint64(0)

/*
Simulator replays a circuit into a state vector. It holds no per-run state,
so one Simulator can serve any number of concurrent runs; every run owns its
vector and its random stream.
*/
type Simulator struct {
	config *Config
}

// NewSimulator copies config and fills unset fields from NewConfig. A nil
// config means all defaults.
func NewSimulator(config *Config) *Simulator {
	if config == nil {
		config = NewConfig()
	}
	return &Simulator{config: config.withDefaults()}
}

func (s *Simulator) Config() Config { return *s.config }

type simulateOptions struct {
	qubitOrder []Qubit
}

// SimulateOption adjusts a single Simulate call.
type SimulateOption func(*simulateOptions)

// WithQubitOrder fixes the register instead of taking the circuit's. Every
// qubit the circuit touches must appear in it.
func WithQubitOrder(qubits ...Qubit) SimulateOption {
	return func(o *simulateOptions) {
		o.qubitOrder = append([]Qubit(nil), qubits...)
	}
}

// step is an operation resolved against the register.
type step struct {
	index   int
	op      Operation
	gate    Gate
	slots   []int
	measure bool
}

// program is a circuit snapshot compiled for one run.
type program struct {
	qubits       []Qubit
	steps        []step
	terminal     []bool
	measured     []Qubit
	columns      map[int]int
	firstMeasure int
}

func (s *Simulator) compile(c *Circuit, opts ...SimulateOption) (*program, error) {
	options := &simulateOptions{}
	for _, opt := range opts {
		opt(options)
	}

	snap := c.snapshot()
	registry := snap.registry
	if options.qubitOrder != nil {
		registry = NewQubitRegistry()
		for _, q := range options.qubitOrder {
			registry.Register(q)
		}
	}

	if registry.Size() > s.config.MaxQubits {
		return nil, ErrTooManyQubits
	}

	prog := &program{
		qubits:       registry.Qubits(),
		steps:        make([]step, len(snap.ops)),
		terminal:     snap.terminal(),
		columns:      make(map[int]int),
		firstMeasure: snap.firstMeasurement(),
	}

	for i, op := range snap.ops {
		st := step{index: i, op: op}
		for _, q := range op.Qubits() {
			slot, ok := registry.Index(q)
			if !ok {
				return nil, operationError(i, op, &UnknownQubitError{Qubit: q, Operation: op})
			}
			st.slots = append(st.slots, slot)
		}

		switch o := op.(type) {
		case GateOperation:
			st.gate = o.gate
		case MeasurementOperation:
			st.measure = true
		}
		prog.steps[i] = st
	}

	measured := snap.measuredQubits()
	for _, q := range measured {
		slot, _ := registry.Index(q)
		prog.columns[slot] = len(prog.measured)
		prog.measured = append(prog.measured, q)
	}

	return prog, nil
}

/*
Simulate returns the state reached at the end of the circuit. Measurements
that something acts on afterwards collapse the state using the configured
seed; terminal measurements are left out, so the result is the vector a
final sampling step would read.
*/
func (s *Simulator) Simulate(c *Circuit, opts ...SimulateOption) (*StateVector, error) {
	prog, err := s.compile(c, opts...)
	if err != nil {
		return nil, err
	}

	state := NewStateVector(prog.qubits)
	rng := rand.New(rand.NewPCG(s.config.Seed, simulateStream))

	for _, st := range prog.steps {
		if st.measure && prog.terminal[st.index] {
			continue
		}
		s.apply(state, st, rng)
	}

	if err := state.checkNorm(s.config.Tolerance); err != nil {
		errnie.Error(err)
		return nil, err
	}
	return state, nil
}

// FinalStateVector is Simulate reduced to its amplitudes, ordered by
// basis index.
func (s *Simulator) FinalStateVector(c *Circuit) ([]complex128, error) {
	state, err := s.Simulate(c)
	if err != nil {
		return nil, err
	}
	return state.Amplitudes, nil
}

// apply runs one step and returns the measured bits for measurements.
func (s *Simulator) apply(state *StateVector, st step, rng *rand.Rand) []Bit {
	var bits []Bit
	if st.measure {
		bits = state.collapse(st.slots, rng)
	} else {
		state.applyGate(st.gate, st.slots)
	}

	if s.config.Trace {
		errnie.Debug("step %d %s -> %v\n%s", st.index, st.op, bits, spew.Sdump(state.Amplitudes))
	}
	return bits
}
