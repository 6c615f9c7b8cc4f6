package qsim

import "time"

type Config struct {
	// Seed is the base of every pseudo-random stream. Trial i of a run draws
	// from the stream (Seed, i), so a fixed seed reproduces a run exactly.
	Seed uint64
	// Workers above 1 spread repetitions over a worker pool.
	Workers int
	// ChunkSize is the number of trials per pool job; 0 picks one.
	ChunkSize int
	MaxQubits int
	Tolerance float64
	// Timeout bounds a whole batch of repetitions; 0 disables it.
	Timeout time.Duration
	// Trace logs every operation and dumps the vector at debug level.
	Trace bool
}

// MaxRegister is the hard ceiling on MaxQubits: 2^30 amplitudes is 16 GiB.
const MaxRegister = 30

// NewConfig returns the defaults: a time based seed, serial trials, a 24
// qubit limit and a 1e-9 norm tolerance.
func NewConfig() *Config {
	return &Config{
		Seed:      uint64(time.Now().UnixNano()),
		Workers:   1,
		MaxQubits: 24,
		Tolerance: 1e-9,
	}
}

func (c *Config) withDefaults() *Config {
	out := *c
	defaults := NewConfig()

	if out.Workers < 1 {
		out.Workers = defaults.Workers
	}
	if out.MaxQubits <= 0 {
		out.MaxQubits = defaults.MaxQubits
	}
	if out.MaxQubits > MaxRegister {
		out.MaxQubits = MaxRegister
	}
	if out.Tolerance <= 0 {
		out.Tolerance = defaults.Tolerance
	}
	return &out
}
