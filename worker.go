package qsim

import (
	"fmt"
)

// Worker processes jobs
type Worker struct {
	pool *Pool
	jobs chan Job
}

func (w *Worker) run() {
	ctx := w.pool.ctx
	for {
		select {
		case <-ctx.Done():
			return
		case w.pool.workers <- w.jobs:
			select {
			case job := <-w.jobs:
				result, err := w.processJob(job)
				w.pool.space.Store(job.ID, result, err)
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Worker) processJob(job Job) (any, error) {
	breaker := w.pool.breaker(job)
	if breaker != nil && !breaker.Allow() {
		return nil, fmt.Errorf("job %s: %w", job.ID, ErrBatchAborted)
	}

	result, err := job.Fn()
	w.pool.metrics.recordJobExecution(job.StartTime, err == nil)

	if breaker != nil {
		if err != nil {
			breaker.RecordFailure()
		} else {
			breaker.RecordSuccess()
		}
	}

	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.ID, err)
	}
	return result, nil
}
