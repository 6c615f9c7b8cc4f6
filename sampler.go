package qsim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
)

// sampleStream is the PCG stream SampleState draws from.
const sampleStream = ^uint64(0) - 1

/*
Sampler turns circuits and state vectors into classical outcomes. Every
trial of Run starts again from the all-zero state and draws from its own
random stream, keyed by the trial index, so a fixed seed gives the same
table whether trials run serially or spread over a worker pool.

Each call on a Sampler takes the next run number and mixes it into the
seed, so repeated calls draw fresh outcomes. Two samplers built with the
same seed replay the same sequence of calls.
*/
type Sampler struct {
	sim     *Simulator
	metrics *Metrics
	runs    atomic.Uint64
}

// NewSampler wraps sim; a nil sim gets a simulator with default config.
func NewSampler(sim *Simulator) *Sampler {
	if sim == nil {
		sim = NewSimulator(nil)
	}
	return &Sampler{sim: sim, metrics: NewMetrics()}
}

// nextSeed returns the seed for the next call on this sampler.
func (s *Sampler) nextSeed() uint64 {
	return s.sim.config.Seed ^ splitmix64(s.runs.Add(1)-1)
}

// splitmix64 scatters consecutive run numbers across the seed space. Run 0
// maps to 0, so a sampler's first call uses the configured seed unchanged.
func splitmix64(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Run executes the circuit repetitions times, collapsing the state at every
// measurement, and records the bits seen on each measured qubit.
func (s *Sampler) Run(ctx context.Context, c *Circuit, repetitions int) (*MeasurementResult, error) {
	if repetitions < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRepetitions, repetitions)
	}

	prog, err := s.sim.compile(c)
	if err != nil {
		errnie.Error(err)
		return nil, err
	}

	seed := s.nextSeed()
	result := &MeasurementResult{
		RunID:  uuid.New(),
		Qubits: prog.measured,
		Trials: [][]Bit{},
	}
	if len(prog.measured) == 0 || repetitions == 0 {
		return result, nil
	}

	cfg := s.sim.config
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	prefix := NewStateVector(prog.qubits)
	for _, st := range prog.steps[:prog.firstMeasure] {
		s.sim.apply(prefix, st, nil)
	}

	rows := make([][]Bit, repetitions)
	for i := range rows {
		rows[i] = make([]Bit, len(prog.measured))
	}

	if cfg.Workers > 1 {
		err = s.runParallel(ctx, prog, prefix, seed, rows, result.RunID)
	} else {
		err = s.runTrials(ctx, prog, prefix, seed, 0, repetitions, rows)
	}
	if err != nil {
		errnie.Error(err)
		return nil, fmt.Errorf("run %s: %w", result.RunID, err)
	}

	result.Trials = rows
	errnie.Debug("run %s: %d repetitions over %d qubits", result.RunID, repetitions, len(prog.qubits))
	return result, nil
}

// runTrials fills rows[lo:hi]. Each trial restores the shared prefix into
// a private vector and replays the remaining steps with its own stream.
func (s *Sampler) runTrials(ctx context.Context, prog *program, prefix *StateVector, seed uint64, lo, hi int, rows [][]Bit) error {
	cfg := s.sim.config
	state := prefix.Clone()
	tail := prog.steps[prog.firstMeasure:]

	for t := lo; t < hi; t++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("trial %d: %w", t, err)
		}

		state.copyFrom(prefix)
		rng := rand.New(rand.NewPCG(seed, uint64(t)))
		row := rows[t]

		for _, st := range tail {
			bits := s.sim.apply(state, st, rng)
			if !st.measure {
				continue
			}
			for k, slot := range st.slots {
				row[prog.columns[slot]] = bits[k]
			}
		}

		if err := state.checkNorm(cfg.Tolerance); err != nil {
			return fmt.Errorf("trial %d: %w", t, err)
		}
	}

	s.metrics.recordTrials(hi - lo)
	return nil
}

/*
runParallel splits the trials into chunks and schedules one pool job per
chunk. All chunks of a run share one breaker, so after the first failure
the chunks still queued return ErrBatchAborted without simulating. The
error reported is the earliest real failure in trial order.
*/
func (s *Sampler) runParallel(ctx context.Context, prog *program, prefix *StateVector, seed uint64, rows [][]Bit, runID uuid.UUID) error {
	cfg := s.sim.config
	repetitions := len(rows)

	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = (repetitions + cfg.Workers*4 - 1) / (cfg.Workers * 4)
	}

	pool := NewPool(ctx, cfg.Workers, s.metrics)
	defer pool.Close()

	breaker := WithBreaker(runID.String(), 1, time.Hour)
	results := make([]chan Value, 0, (repetitions+chunk-1)/chunk)

	for lo := 0; lo < repetitions; lo += chunk {
		hi := min(lo+chunk, repetitions)
		id := fmt.Sprintf("%s/%d", runID, len(results))

		results = append(results, pool.Schedule(id, func() (any, error) {
			return hi - lo, s.runTrials(ctx, prog, prefix, seed, lo, hi, rows)
		}, breaker))
	}

	var failed, aborted error
	for _, ch := range results {
		select {
		case v := <-ch:
			switch {
			case v.Error == nil:
			case errors.Is(v.Error, ErrBatchAborted):
				if aborted == nil {
					aborted = v.Error
				}
			case failed == nil:
				failed = v.Error
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if failed != nil {
		return failed
	}
	return aborted
}

/*
SampleState draws repetitions outcomes for qubits from an existing vector
without touching it. Columns follow the vector's register order whatever
order the qubits are passed in.
*/
func (s *Sampler) SampleState(ctx context.Context, state *StateVector, qubits []Qubit, repetitions int) (*MeasurementResult, error) {
	if repetitions < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRepetitions, repetitions)
	}

	wanted := make(map[Qubit]struct{}, len(qubits))
	for _, q := range qubits {
		if _, ok := state.slot(q); !ok {
			return nil, &UnknownQubitError{Qubit: q}
		}
		wanted[q] = struct{}{}
	}

	seed := s.nextSeed()
	result := &MeasurementResult{RunID: uuid.New(), Trials: [][]Bit{}}
	var slots []int
	for slot, q := range state.Qubits {
		if _, ok := wanted[q]; ok {
			slots = append(slots, slot)
			result.Qubits = append(result.Qubits, q)
		}
	}
	if len(slots) == 0 || repetitions == 0 {
		return result, nil
	}

	cfg := s.sim.config
	if err := state.checkNorm(cfg.Tolerance); err != nil {
		errnie.Error(err)
		return nil, err
	}

	dist := state.distribution(slots)
	rng := rand.New(rand.NewPCG(seed, sampleStream))
	rows := make([][]Bit, repetitions)

	for t := range rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("sample %d: %w", t, err)
		}
		rows[t] = dist.sample(rng)
	}

	s.metrics.recordTrials(repetitions)
	result.Trials = rows
	return result, nil
}

// Metrics exports counters for every trial and pool job this sampler ran.
func (s *Sampler) Metrics() map[string]any {
	return s.metrics.ExportMetrics()
}
