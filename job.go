package qsim

import "time"

// Job represents work to be done
type Job struct {
	ID            string
	Fn            func() (any, error)
	BreakerID     string
	BreakerConfig *BreakerConfig
	StartTime     time.Time
}

// JobOption is a function type for configuring jobs
type JobOption func(*Job)

// BreakerConfig struct
type BreakerConfig struct {
	MaxFailures  int
	ResetTimeout time.Duration
	HalfOpenMax  int
}

// WithBreaker attaches the job to a shared breaker. Jobs with the same id
// stop running once the breaker has seen maxFailures failures.
func WithBreaker(id string, maxFailures int, resetTimeout time.Duration) JobOption {
	return func(j *Job) {
		j.BreakerID = id
		j.BreakerConfig = &BreakerConfig{
			MaxFailures:  maxFailures,
			ResetTimeout: resetTimeout,
			HalfOpenMax:  1,
		}
	}
}
