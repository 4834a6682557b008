// Package service composes the analysis engine with the job queue, worker
// pool and session repository, and implements the dependencies required by
// the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/volley/internal/adapters/mq/queue"
	"github.com/okian/volley/internal/adapters/mq/worker"
	"github.com/okian/volley/internal/adapters/repository"
	"github.com/okian/volley/internal/config"
	"github.com/okian/volley/internal/domain/dedupe"
	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/pipeline"
	"github.com/okian/volley/internal/domain/types"
	"github.com/okian/volley/pkg/logger"
	"github.com/okian/volley/pkg/metrics"
)

// Analyzer runs one session through the engine.
type Analyzer interface {
	Analyze(ctx context.Context, s *model.Session) (*pipeline.Result, error)
}

// SubmitResult acknowledges an asynchronous submission.
type SubmitResult struct {
	SessionID string
	Status    model.Status
	Duplicate bool
}

// Service implements the API dependencies for the analysis service.
type Service struct {
	mu sync.RWMutex

	// Core components
	analyzer   Analyzer
	sessions   repository.Store
	store      repository.Store // injected; otherwise an in-memory store is created
	deduper    dedupe.Deduper
	jobs       queue.Queue
	workerPool *worker.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	maxSessions int
	jobTimeout  time.Duration
	engine      *config.Engine
	now         func() time.Time

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued sessions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the submitted session id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxSessions caps the number of session records kept for polling.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithJobTimeout bounds one asynchronous analysis.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithAnalyzer replaces the analysis engine.
func WithAnalyzer(a Analyzer) Option {
	return func(s *Service) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithStore replaces the in-memory session store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig applies the service and engine settings of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		WithWorkerCount(cfg.WorkerCount)(s)
		WithQueueSize(cfg.QueueSize)(s)
		WithDedupeSize(cfg.DedupeSize)(s)
		WithMaxSessions(cfg.MaxSessions)(s)
		WithJobTimeout(time.Duration(cfg.JobTimeoutSec * float64(time.Second)))(s)
		s.engine = &cfg.Engine
	}
}

// New constructs a Service. Components are created by Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		dedupeSize:  100_000,
		maxSessions: 10_000,
		jobTimeout:  2 * time.Minute,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.analyzer == nil {
		engine := config.New().Engine
		if s.engine != nil {
			engine = *s.engine
		}
		s.analyzer = NewAnalyzer(engine, s.logger)
	}
	s.analyzer = &instrumented{next: s.analyzer}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting analysis service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.sessions = s.store
	if s.sessions == nil {
		s.sessions = repository.NewMemoryStore(runCtx, repository.WithMaxRecords(s.maxSessions))
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.workerPool = worker.NewPool(s.workerCount, s.jobs, s.analyzer, s.sessions,
		worker.WithJobTimeout(s.jobTimeout),
	)
	s.workerPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("maxSessions", s.maxSessions),
	)
	return nil
}

// Stop drains queued sessions and shuts the components down.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping analysis service...")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	if closer, ok := s.sessions.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
}

// Analyze runs a session synchronously, bounded by the job timeout.
func (s *Service) Analyze(ctx context.Context, session *model.Session) (*pipeline.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()
	return s.analyzer.Analyze(ctx, session)
}

// Submit queues a session for asynchronous analysis. A session id that was
// already submitted returns the existing record with Duplicate set. A
// missing id is generated.
func (s *Service) Submit(ctx context.Context, session *model.Session) (SubmitResult, error) {
	if session == nil {
		return SubmitResult{}, pipeline.ErrNilSession
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return SubmitResult{}, ErrNotStarted
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	id := session.ID

	if s.deduper.SeenAndRecord(ctx, id) {
		if rec, err := s.sessions.Get(ctx, id); err == nil {
			metrics.RecordSessionDuplicate()
			s.logger.Debug(ctx, "duplicate session submission", logger.String("session_id", id))
			return SubmitResult{SessionID: id, Status: rec.Status, Duplicate: true}, nil
		}
		// the record was evicted; the id is free again
	}

	submitted := session.SubmittedAt
	if submitted.IsZero() {
		submitted = s.now()
		session.SubmittedAt = submitted
	}

	if err := s.sessions.Create(ctx, id, submitted); err != nil {
		switch {
		case errors.Is(err, repository.ErrExists):
			rec, gerr := s.sessions.Get(ctx, id)
			if gerr != nil {
				s.deduper.Unrecord(ctx, id)
				return SubmitResult{}, fmt.Errorf("%w: %w", ErrSessionChanged, gerr)
			}
			metrics.RecordSessionDuplicate()
			return SubmitResult{SessionID: id, Status: rec.Status, Duplicate: true}, nil
		case errors.Is(err, repository.ErrFull):
			s.deduper.Unrecord(ctx, id)
			return SubmitResult{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		default:
			s.deduper.Unrecord(ctx, id)
			return SubmitResult{}, err
		}
	}

	job := model.Job{SessionID: id, Session: session, SubmittedAt: submitted}
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		// roll back so the client can retry with the same id
		_ = s.sessions.Delete(ctx, id)
		s.deduper.Unrecord(ctx, id)
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			return SubmitResult{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return SubmitResult{}, err
	}

	s.logger.Debug(ctx, "session queued",
		logger.String("session_id", id),
		logger.Int("frames", len(session.Frames)),
	)
	return SubmitResult{SessionID: id, Status: model.StatusPending}, nil
}

// Session returns the state of an asynchronously analysed session.
func (s *Service) Session(ctx context.Context, id string) (types.SessionStatus, error) {
	if err := s.ready(); err != nil {
		return types.SessionStatus{}, err
	}
	rec, err := s.sessions.Get(ctx, id)
	if err != nil {
		return types.SessionStatus{}, err
	}
	return statusFromRecord(rec, true), nil
}

// Sessions lists up to limit sessions, newest first, without their results.
func (s *Service) Sessions(ctx context.Context, limit int) ([]types.SessionStatus, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	recs, err := s.sessions.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.SessionStatus, len(recs))
	for i, rec := range recs {
		out[i] = statusFromRecord(rec, false)
	}
	return out, nil
}

// DeleteSession forgets a session. Its id may then be submitted again.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.deduper.Unrecord(ctx, id)
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"maxSessions": s.maxSessions,
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	stats["goroutines"] = goroutines
	stats["heapBytes"] = mem.HeapAlloc
	metrics.UpdateSystemGoroutineCount(goroutines)
	metrics.UpdateSystemMemoryUsage(mem.HeapAlloc)

	if s.started {
		queueLen := s.jobs.Len(ctx)
		byStatus := s.sessions.CountByStatus(ctx)
		sessions := make(map[string]int, len(byStatus))
		for st, n := range byStatus {
			sessions[string(st)] = n
		}

		stats["queueLength"] = queueLen
		stats["sessions"] = sessions
		stats["totalSessions"] = s.sessions.Count(ctx)
		stats["seenSessions"] = s.deduper.Size()
		stats["processed"] = s.workerPool.Processed()
		stats["activeWorkers"] = s.workerPool.Active()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
		metrics.UpdateRepositoryRecordsTotal(s.sessions.Count(ctx))
	}
	return stats
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func statusFromRecord(rec repository.Record, withResult bool) types.SessionStatus {
	st := types.SessionStatus{
		SessionID:   rec.SessionID,
		Status:      string(rec.Status),
		SubmittedAt: rec.SubmittedAt,
		UpdatedAt:   rec.UpdatedAt,
		Error:       rec.Error,
	}
	if withResult && rec.Result != nil {
		st.Result = types.FromResult(rec.Result)
	}
	return st
}

// instrumented records engine metrics around every analysis, synchronous
// or queued.
type instrumented struct {
	next Analyzer
}

func (a *instrumented) Analyze(ctx context.Context, session *model.Session) (*pipeline.Result, error) {
	start := time.Now()
	res, err := a.next.Analyze(ctx, session)
	metrics.RecordAnalysisLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordSessionAnalyzed("failed")
		metrics.RecordErrorByComponent("pipeline", errorKind(err))
		return nil, err
	}

	outcome := "completed"
	if res.Reason != nil {
		outcome = "degenerate"
	}
	metrics.RecordSessionAnalyzed(outcome)
	metrics.RecordFrames(res.FramesUsable, res.FramesTotal-res.FramesUsable)
	metrics.RecordCandidates(res.Candidates)
	for _, e := range res.Timeline {
		metrics.RecordStroke(string(e.Type))
	}
	if res.Analytics != nil {
		metrics.RecordRallies(len(res.Analytics.Rally.Rallies))
	}
	return res, nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, pipeline.ErrNilSession), errors.Is(err, pipeline.ErrInvalidFPS):
		return "invalid_session"
	default:
		return "internal"
	}
}
