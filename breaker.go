package qsim

import (
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

// BreakerState represents the state of the breaker
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

/*
Breaker stops a group of jobs once enough of them have failed. The sampler
keys one breaker per run, so the first failing chunk of trials turns every
chunk still queued into a fast abort instead of more wasted simulation.

Failures count cumulatively while closed: a success does not reset the
count, only a successful half-open probe does. The half-open path serves
Pool callers that reuse one breaker id over time; a sampler run ends long
before its one-hour reset timeout, so its breaker never leaves the open
state.
*/
type Breaker struct {
	mu               sync.Mutex
	maxFailures      int
	resetTimeout     time.Duration
	halfOpenMax      int
	failureCount     int
	state            BreakerState
	openTime         time.Time
	halfOpenAttempts int
}

func NewBreaker(maxFailures int, resetTimeout time.Duration, halfOpenMax int) *Breaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Breaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		halfOpenMax:  halfOpenMax,
		state:        BreakerClosed,
	}
}

// RecordFailure records a failure and updates the breaker state
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	if b.failureCount < b.maxFailures {
		return
	}

	switch b.state {
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.openTime = time.Now()
		errnie.Warn("breaker reopened from half-open state")
	case BreakerClosed:
		b.state = BreakerOpen
		b.openTime = time.Now()
		errnie.Warn("breaker opened after %d failures", b.failureCount)
	}
}

// RecordSuccess records a successful attempt and updates the breaker state
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen {
		b.halfOpenAttempts++
		if b.halfOpenAttempts >= b.halfOpenMax {
			b.state = BreakerClosed
			b.failureCount = 0
			b.halfOpenAttempts = 0
		}
	}
}

// Allow determines if a job may run based on the breaker state
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if time.Since(b.openTime) > b.resetTimeout {
			b.state = BreakerHalfOpen
			b.halfOpenAttempts = 0
			return true
		}
		return false
	case BreakerHalfOpen:
		return b.halfOpenAttempts < b.halfOpenMax
	default:
		return false
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
