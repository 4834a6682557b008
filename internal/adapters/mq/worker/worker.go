// Package worker drains the job queue and runs session analysis asynchronously.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/pipeline"
	"github.com/okian/volley/pkg/logger"
	"github.com/okian/volley/pkg/metrics"
)

// Default worker configuration constants.
const (
	metricsUpdateInterval = 5 * time.Second
	defaultJobTimeout     = 2 * time.Minute
	poolShutdownTimeout   = 30 * time.Second
)

// Analyzer runs one session through the engine.
type Analyzer interface {
	Analyze(ctx context.Context, s *model.Session) (*pipeline.Result, error)
}

// Recorder stores the lifecycle of a job.
type Recorder interface {
	MarkProcessing(ctx context.Context, sessionID string) error
	Complete(ctx context.Context, sessionID string, res *pipeline.Result) error
	Fail(ctx context.Context, sessionID string, cause error) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Next(ctx context.Context) (model.Job, error)
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is drained.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the in-flight job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue      Queue
	analyzer   Analyzer
	recorder   Recorder
	name       string
	jobTimeout time.Duration

	// shared with the owning pool, nil when standalone
	processed *atomic.Int64
	active    *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, analyzer Analyzer, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      q,
		analyzer:   analyzer,
		recorder:   recorder,
		name:       "worker",
		jobTimeout: defaultJobTimeout,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.shutdown:
			cancel()
		case <-runCtx.Done():
		}
	}()

	for {
		job, err := w.queue.Next(runCtx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				w.logger.Debug(ctx, "worker loop finished", logger.Error(err))
			}
			return
		}
		if err := w.process(runCtx, job); err != nil {
			w.logger.Error(ctx, "error processing job", logger.Error(err))
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process analyses one job and records its outcome.
func (w *InMemoryWorker) process(ctx context.Context, job model.Job) error {
	start := time.Now()
	if w.active != nil {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
		defer func() { metrics.UpdateWorkerActiveCount(int(w.active.Add(-1))) }()
	}
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	// outcome writes survive cancellation of the run context
	recordCtx := context.WithoutCancel(ctx)

	if err := w.recorder.MarkProcessing(recordCtx, job.SessionID); err != nil {
		metrics.RecordErrorByComponent("worker", "record_error")
		return fmt.Errorf("mark %s processing: %w", job.SessionID, err)
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	res, err := w.analyzer.Analyze(jobCtx, job.Session)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "analysis_error")
		w.logger.Error(ctx, "analysis failed",
			logger.String("session_id", job.SessionID),
			logger.Error(err),
		)
		if ferr := w.recorder.Fail(recordCtx, job.SessionID, err); ferr != nil {
			return fmt.Errorf("record failure of %s: %w", job.SessionID, ferr)
		}
		return fmt.Errorf("analyze %s: %w", job.SessionID, err)
	}

	if err := w.recorder.Complete(recordCtx, job.SessionID, res); err != nil {
		metrics.RecordErrorByComponent("worker", "record_error")
		return fmt.Errorf("record result of %s: %w", job.SessionID, err)
	}
	if w.processed != nil {
		w.processed.Add(1)
	}

	w.logger.Debug(ctx, "job completed",
		logger.String("session_id", job.SessionID),
		logger.Int("strokes", len(res.Timeline)),
		logger.Duration("latency", time.Since(start)),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	processed atomic.Int64
	active    atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	lastTick     time.Time

	logger logger.Logger
}

// NewPool creates a worker pool. A non-positive count defaults to NumCPU.
func NewPool(workerCount int, q Queue, analyzer Analyzer, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		lastTick: time.Now(),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{}, opts...)
		wopts = append(wopts, WithName("worker-"+strconv.Itoa(i)))
		w := NewInMemoryWorker(q, analyzer, recorder, wopts...)
		w.processed = &p.processed
		w.active = &p.active
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerJobsPerSecond(0)

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns the number of jobs completed since the pool started.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}

// Active returns the number of workers currently analysing a job.
func (p *Pool) Active() int64 {
	return p.active.Load()
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	var last int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case now := <-ticker.C:
			total := p.processed.Load()
			if elapsed := now.Sub(p.lastTick).Seconds(); elapsed > 0 {
				metrics.UpdateWorkerJobsPerSecond(float64(total-last) / elapsed)
			}
			last = total
			p.lastTick = now
		}
	}
}

// Stop cancels every worker without draining the queue.
func (p *Pool) Stop(ctx context.Context) {
	p.shutdownOnce.Do(func() { close(p.shutdown) })
	for i, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker stop timed out", logger.Int("worker_id", i))
		}
	}
}

// Shutdown closes the queue, lets workers drain it and waits for them.
// Workers still busy when ctx expires are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	p.shutdownOnce.Do(func() { close(p.shutdown) })

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		for _, w := range p.workers {
			w.shutdownOnce.Do(func() { close(w.shutdown) })
		}
		return fmt.Errorf("pool shutdown: %w", drainCtx.Err())
	}
	return nil
}
