package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/volley/internal/adapters/mq/queue"
	worker "github.com/okian/volley/internal/adapters/mq/worker"
	model "github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/pipeline"
	logging "github.com/okian/volley/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockAnalyzer struct {
	mu     sync.Mutex
	errors map[string]error
	delay  time.Duration
	calls  int
}

func newMockAnalyzer() *mockAnalyzer {
	return &mockAnalyzer{errors: make(map[string]error)}
}

func (m *mockAnalyzer) Analyze(ctx context.Context, s *model.Session) (*pipeline.Result, error) {
	m.mu.Lock()
	m.calls++
	err := m.errors[s.ID]
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &pipeline.Result{
		SessionID: s.ID,
		FPS:       s.FPS,
		Timeline:  []model.StrokeEvent{{ID: 1, Type: model.Forehand}},
	}, nil
}

func (m *mockAnalyzer) setError(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[id] = err
}

type mockRecorder struct {
	mu      sync.Mutex
	status  map[string]model.Status
	results map[string]*pipeline.Result
	causes  map[string]error
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{
		status:  make(map[string]model.Status),
		results: make(map[string]*pipeline.Result),
		causes:  make(map[string]error),
	}
}

func (m *mockRecorder) MarkProcessing(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[id] = model.StatusProcessing
	return nil
}

func (m *mockRecorder) Complete(_ context.Context, id string, res *pipeline.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[id] = model.StatusCompleted
	m.results[id] = res
	return nil
}

func (m *mockRecorder) Fail(_ context.Context, id string, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[id] = model.StatusFailed
	m.causes[id] = cause
	return nil
}

func (m *mockRecorder) get(id string) model.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status[id]
}

func (m *mockRecorder) count(st model.Status) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.status {
		if s == st {
			n++
		}
	}
	return n
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func newJob(id string) model.Job {
	return model.Job{SessionID: id, Session: &model.Session{ID: id, FPS: 30}, SubmittedAt: time.Now()}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		analyzer := newMockAnalyzer()
		recorder := newMockRecorder()

		convey.Convey("When creating a worker with custom options", func() {
			w := worker.NewInMemoryWorker(
				q, analyzer, recorder,
				worker.WithName("test-worker"),
				worker.WithJobTimeout(time.Second),
				worker.WithLogger(logging.Nop()),
			)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(q, analyzer, recorder)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			convey.Convey("And a job succeeds", func() {
				convey.So(q.Enqueue(ctx, newJob("s-1")), convey.ShouldBeNil)

				convey.Convey("Then the result is recorded as completed", func() {
					convey.So(waitFor(func() bool { return recorder.get("s-1") == model.StatusCompleted }), convey.ShouldBeTrue)
					recorder.mu.Lock()
					convey.So(recorder.results["s-1"].SessionID, convey.ShouldEqual, "s-1")
					recorder.mu.Unlock()
				})
			})

			convey.Convey("And analysis fails", func() {
				analyzer.setError("s-2", errors.New("boom"))
				convey.So(q.Enqueue(ctx, newJob("s-2")), convey.ShouldBeNil)

				convey.Convey("Then the job is recorded as failed with its cause", func() {
					convey.So(waitFor(func() bool { return recorder.get("s-2") == model.StatusFailed }), convey.ShouldBeTrue)
					recorder.mu.Lock()
					convey.So(recorder.causes["s-2"].Error(), convey.ShouldEqual, "boom")
					recorder.mu.Unlock()
				})
			})

			convey.Convey("Then shutdown returns once the loop exits", func() {
				sctx, scancel := context.WithTimeout(context.Background(), time.Second)
				defer scancel()
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When a job outlives its timeout", func() {
			analyzer.delay = 200 * time.Millisecond
			w := worker.NewInMemoryWorker(q, analyzer, recorder, worker.WithJobTimeout(20*time.Millisecond))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)
			convey.So(q.Enqueue(ctx, newJob("slow")), convey.ShouldBeNil)

			convey.Convey("Then it is failed with a deadline error", func() {
				convey.So(waitFor(func() bool { return recorder.get("slow") == model.StatusFailed }), convey.ShouldBeTrue)
				recorder.mu.Lock()
				convey.So(errors.Is(recorder.causes["slow"], context.DeadlineExceeded), convey.ShouldBeTrue)
				recorder.mu.Unlock()
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		analyzer := newMockAnalyzer()
		recorder := newMockRecorder()
		pool := worker.NewPool(4, q, analyzer, recorder, worker.WithLogger(logging.Nop()))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When many jobs are queued and the pool is shut down", func() {
			for i := 0; i < 50; i++ {
				convey.So(q.Enqueue(ctx, newJob(fmt.Sprintf("s-%d", i))), convey.ShouldBeNil)
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every queued job is drained before workers exit", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(recorder.count(model.StatusCompleted), convey.ShouldEqual, 50)
				convey.So(pool.Processed(), convey.ShouldEqual, 50)
				convey.So(pool.Active(), convey.ShouldEqual, 0)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the pool is stopped", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			pool.Stop(sctx)

			convey.Convey("Then queued jobs are no longer consumed", func() {
				convey.So(q.Enqueue(ctx, newJob("late")), convey.ShouldBeNil)
				time.Sleep(30 * time.Millisecond)
				convey.So(recorder.get("late"), convey.ShouldEqual, model.Status(""))
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), newMockAnalyzer(), newMockRecorder())

		convey.Convey("Then the pool falls back to the CPU count", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
