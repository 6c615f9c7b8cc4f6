package qsim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

/*
Pool is a fixed set of workers fed through a single job queue. A manager
goroutine hands each queued job to whichever worker announces itself idle
first. Results are delivered through the pool's Space, keyed by job id.
*/
type Pool struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	workers    chan chan Job
	jobs       chan Job
	space      *Space
	metrics    *Metrics
	breakers   map[string]*Breaker
	breakersMu sync.Mutex
}

// NewPool starts size workers. Cancelling ctx stops the pool the same way
// Close does.
func NewPool(ctx context.Context, size int, metrics *Metrics) *Pool {
	if size < 1 {
		size = 1
	}
	if metrics == nil {
		metrics = NewMetrics()
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pool{
		ctx:      ctx,
		cancel:   cancel,
		workers:  make(chan chan Job, size),
		jobs:     make(chan Job, size*10),
		space:    NewSpace(),
		metrics:  metrics,
		breakers: make(map[string]*Breaker),
	}

	for i := 0; i < size; i++ {
		p.startWorker()
	}
	metrics.setWorkers(size)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.manage()
	}()

	errnie.Debug("pool started with %d workers", size)
	return p
}

func (p *Pool) manage() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case job := <-p.jobs:
			select {
			case <-p.ctx.Done():
				p.space.Store(job.ID, nil, fmt.Errorf("job %s: %w", job.ID, p.ctx.Err()))
				return
			case workerChan := <-p.workers:
				select {
				case workerChan <- job:
				case <-p.ctx.Done():
					p.space.Store(job.ID, nil, fmt.Errorf("job %s: %w", job.ID, p.ctx.Err()))
					return
				}
			}
		}
	}
}

// Schedule queues fn and returns a channel that receives its result once.
func (p *Pool) Schedule(id string, fn func() (any, error), opts ...JobOption) chan Value {
	job := Job{
		ID:        id,
		Fn:        fn,
		StartTime: time.Now(),
	}
	for _, opt := range opts {
		opt(&job)
	}

	result := p.space.Await(id)

	if breaker := p.breaker(job); breaker != nil && !breaker.Allow() {
		p.space.Store(id, nil, fmt.Errorf("job %s: breaker %s is open: %w", id, job.BreakerID, ErrBatchAborted))
		return result
	}

	if err := p.ctx.Err(); err != nil {
		p.metrics.recordSchedulingFailure()
		p.space.Store(id, nil, fmt.Errorf("job %s scheduling: %w", id, err))
		return result
	}

	select {
	case p.jobs <- job:
	case <-p.ctx.Done():
		p.metrics.recordSchedulingFailure()
		p.space.Store(id, nil, fmt.Errorf("job %s scheduling: %w", id, p.ctx.Err()))
	}
	return result
}

func (p *Pool) startWorker() {
	worker := &Worker{
		pool: p,
		jobs: make(chan Job),
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		worker.run()
	}()
}

func (p *Pool) breaker(job Job) *Breaker {
	if job.BreakerID == "" || job.BreakerConfig == nil {
		return nil
	}

	p.breakersMu.Lock()
	defer p.breakersMu.Unlock()

	b, exists := p.breakers[job.BreakerID]
	if !exists {
		b = NewBreaker(
			job.BreakerConfig.MaxFailures,
			job.BreakerConfig.ResetTimeout,
			job.BreakerConfig.HalfOpenMax,
		)
		p.breakers[job.BreakerID] = b
	}
	return b
}

// Close stops every worker and waits for jobs in flight to return.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.cancel()
	p.wg.Wait()
	errnie.Debug("pool closed")
}
