// Package worker runs batch recommendation jobs on a fixed pool of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/taskflow/internal/adapters/mq/queue"
	"github.com/okian/taskflow/internal/domain/scoring"
	"github.com/okian/taskflow/pkg/logger"
	"github.com/okian/taskflow/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// Recommender produces the ranked candidates for one task key.
type Recommender interface {
	Recommend(ctx context.Context, taskKey string) ([]scoring.Recommendation, error)
}

// RecommenderFunc adapts a function to Recommender.
type RecommenderFunc func(ctx context.Context, taskKey string) ([]scoring.Recommendation, error)

// Recommend calls f.
func (f RecommenderFunc) Recommend(ctx context.Context, taskKey string) ([]scoring.Recommendation, error) {
	return f(ctx, taskKey)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs and replies with recommendations.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// counters is shared by the workers of one pool.
type counters struct {
	active    atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// InMemoryWorker implements Worker for processing jobs.
type InMemoryWorker struct {
	queue       Queue
	recommender Recommender
	name        string
	stats       *counters

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, recommender Recommender, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:       q,
		recommender: recommender,
		name:        "worker",
		stats:       &counters{},
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		logger:      logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Warn(ctx, "batch job failed",
					logger.String("worker", w.name),
					logger.String("batch", job.BatchID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob recommends for one task and always replies, error or not.
func (w *InMemoryWorker) processJob(ctx context.Context, job queue.Job) error {
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.stats.active.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.stats.active.Add(-1)))
		metrics.RecordBatchJobLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	recs, err := w.recommender.Recommend(ctx, job.TaskKey)
	if err != nil {
		w.stats.failed.Add(1)
		metrics.RecordErrorByComponent("worker", "job_failed")
	} else {
		w.stats.processed.Add(1)
	}
	// Counters are settled before the reply so callers observe them.
	job.Respond(queue.Result{Recommendations: recs, Err: err})

	if err != nil {
		return fmt.Errorf("recommend %s: %w", job.TaskKey, err)
	}
	return nil
}

// Stats is a point-in-time view of a pool.
type Stats struct {
	Workers   int   `json:"workers"`
	Active    int64 `json:"active"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	stats   *counters

	logger logger.Logger
}

// NewPool creates a new worker pool. A workerCount below one means one
// worker per CPU.
func NewPool(workerCount int, q Queue, recommender Recommender) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		stats:   &counters{},
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		w := NewInMemoryWorker(q, recommender, WithName("worker-"+strconv.Itoa(i)))
		w.stats = pool.stats
		pool.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Stats returns the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   len(p.workers),
		Active:    p.stats.active.Load(),
		Processed: p.stats.processed.Load(),
		Failed:    p.stats.failed.Load(),
	}
}

// Shutdown closes the queue and waits for every worker to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
