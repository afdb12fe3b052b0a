// Package worker runs webhook processing off the acknowledgment path. A
// bounded queue plus a fixed set of workers replaces bare fire-and-forget
// goroutines, so forwarding volume and drops are observable.
package worker

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"instagram-relay/infrastructure/logger"
)

type Job func(ctx context.Context)

type Pool struct {
	jobs chan Job

	submitted uint64
	dropped   uint64
	processed uint64
}

// Stats is a point-in-time snapshot of pool counters.
type Stats struct {
	Submitted uint64 `json:"submitted"`
	Dropped   uint64 `json:"dropped"`
	Processed uint64 `json:"processed"`
	Queued    int    `json:"queued"`
}

func NewPool(queueSize int) *Pool {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Pool{jobs: make(chan Job, queueSize)}
}

// Run blocks until ctx is cancelled, processing jobs on `workers` goroutines.
// Intended to be launched from the process errgroup.
func (p *Pool) Run(ctx context.Context, workers int) error {
	if workers <= 0 {
		workers = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case job := <-p.jobs:
					p.runJob(ctx, job)
				}
			}
		})
	}
	return g.Wait()
}

func (p *Pool) runJob(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().WithField("panic", r).Error("Worker job panicked")
		}
	}()
	job(ctx)
	atomic.AddUint64(&p.processed, 1)
}

// Submit enqueues a job without blocking. A full queue drops the job; the
// inbound webhook was already acknowledged, so dropping is the only option
// that keeps the acknowledgment path fast.
func (p *Pool) Submit(job Job) bool {
	select {
	case p.jobs <- job:
		atomic.AddUint64(&p.submitted, 1)
		return true
	default:
		atomic.AddUint64(&p.dropped, 1)
		logger.GetLogger().Warn("Worker queue full, dropping job")
		return false
	}
}

func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: atomic.LoadUint64(&p.submitted),
		Dropped:   atomic.LoadUint64(&p.dropped),
		Processed: atomic.LoadUint64(&p.processed),
		Queued:    len(p.jobs),
	}
}
