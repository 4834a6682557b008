package repository

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/pipeline"
	"github.com/okian/volley/pkg/metrics"
)

const (
	defaultMaxRecords            = 10000
	defaultMetricsUpdateInterval = 5 * time.Second
)

// MemoryStore is a process-local Store. Records are kept in submission
// order so eviction and listing never sort.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*list.Element // value: *Record
	order   *list.List               // oldest at the front

	maxRecords            int
	metricsUpdateInterval time.Duration
	now                   func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMemoryStore creates a store and starts its background metrics updater,
// which runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		records:               make(map[string]*list.Element),
		order:                 list.New(),
		maxRecords:            defaultMaxRecords,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		now:                   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

// Create registers a pending session.
func (s *MemoryStore) Create(_ context.Context, sessionID string, submittedAt time.Time) error {
	start := time.Now()
	defer observeUpdate(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[sessionID]; ok {
		metrics.RecordErrorByComponent("repository", "exists")
		return fmt.Errorf("%w: %s", ErrExists, sessionID)
	}
	if len(s.records) >= s.maxRecords && !s.evictOldestFinished() {
		metrics.RecordErrorByComponent("repository", "full")
		return ErrFull
	}

	if submittedAt.IsZero() {
		submittedAt = s.now()
	}
	rec := &Record{
		SessionID:   sessionID,
		Status:      model.StatusPending,
		SubmittedAt: submittedAt,
		UpdatedAt:   s.now(),
	}
	s.records[sessionID] = s.order.PushBack(rec)
	return nil
}

// evictOldestFinished drops the oldest completed or failed record.
// Caller holds the write lock.
func (s *MemoryStore) evictOldestFinished() bool {
	for el := s.order.Front(); el != nil; el = el.Next() {
		rec := el.Value.(*Record)
		if rec.Status.Done() {
			s.order.Remove(el)
			delete(s.records, rec.SessionID)
			metrics.RecordRepositoryEviction()
			return true
		}
	}
	return false
}

// MarkProcessing moves a pending session to processing.
func (s *MemoryStore) MarkProcessing(_ context.Context, sessionID string) error {
	return s.transition(sessionID, model.StatusPending, func(r *Record) {
		r.Status = model.StatusProcessing
	})
}

// Complete stores the analysis result of a processing session.
func (s *MemoryStore) Complete(_ context.Context, sessionID string, res *pipeline.Result) error {
	return s.transition(sessionID, model.StatusProcessing, func(r *Record) {
		r.Status = model.StatusCompleted
		r.Result = res
	})
}

// Fail records the cause of a failed analysis.
func (s *MemoryStore) Fail(_ context.Context, sessionID string, cause error) error {
	return s.transition(sessionID, model.StatusProcessing, func(r *Record) {
		r.Status = model.StatusFailed
		if cause != nil {
			r.Error = cause.Error()
		}
	})
}

func (s *MemoryStore) transition(sessionID string, from model.Status, apply func(*Record)) error {
	start := time.Now()
	defer observeUpdate(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.records[sessionID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	rec := el.Value.(*Record)
	if rec.Status != from {
		metrics.RecordErrorByComponent("repository", "invalid_transition")
		return fmt.Errorf("%w: %s is %s, want %s", ErrInvalidTransition, sessionID, rec.Status, from)
	}
	apply(rec)
	rec.UpdatedAt = s.now()
	return nil
}

// Get returns a copy of the record for sessionID.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (Record, error) {
	start := time.Now()
	defer observeQuery(start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.records[sessionID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return *el.Value.(*Record), nil
}

// List returns up to limit records, newest submission first.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Record, error) {
	start := time.Now()
	defer observeQuery(start)

	if limit < 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.order.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Record, 0, n)
	for el := s.order.Back(); el != nil && len(out) < n; el = el.Prev() {
		out = append(out, *el.Value.(*Record))
	}
	return out, nil
}

// Delete removes a record unless it is being processed.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	start := time.Now()
	defer observeUpdate(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.records[sessionID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if el.Value.(*Record).Status == model.StatusProcessing {
		return fmt.Errorf("%w: %s", ErrInProgress, sessionID)
	}
	s.order.Remove(el)
	delete(s.records, sessionID)
	return nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// CountByStatus returns the number of records in each lifecycle status.
func (s *MemoryStore) CountByStatus(_ context.Context) map[model.Status]int {
	out := map[model.Status]int{
		model.StatusPending:    0,
		model.StatusProcessing: 0,
		model.StatusCompleted:  0,
		model.StatusFailed:     0,
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, el := range s.records {
		out[el.Value.(*Record).Status]++
	}
	return out
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.updateMetrics(ctx)
			}
		}
	}()
}

func (s *MemoryStore) updateMetrics(ctx context.Context) {
	metrics.UpdateRepositoryRecordsTotal(s.Count(ctx))
	for status, n := range s.CountByStatus(ctx) {
		metrics.UpdateRepositoryRecordsByStatus(string(status), n)
	}
}

func observeUpdate(start time.Time) {
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
}
