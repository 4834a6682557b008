package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/volley/internal/domain/model"
)

func job(id string) model.Job {
	return model.Job{SessionID: id, Session: &model.Session{ID: id, FPS: 30}, SubmittedAt: time.Now()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, job("s1")); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got, err := q.Next(ctx)
	if err != nil {
		t.Fatalf("expected next to succeed, got %v", err)
	}
	if got.SessionID != "s1" {
		t.Errorf("expected s1, got %v", got.SessionID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if q.Capacity() != 2 {
		t.Fatalf("expected capacity 2, got %d", q.Capacity())
	}
	for _, id := range []string{"s1", "s2"} {
		if err := q.Enqueue(ctx, job(id)); err != nil {
			t.Fatalf("expected enqueue %s to succeed, got %v", id, err)
		}
	}

	if err := q.Enqueue(ctx, job("s3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_FIFO(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(5))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := q.Enqueue(ctx, job(fmt.Sprintf("s%d", i))); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 5; i++ {
		got, err := q.Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if want := fmt.Sprintf("s%d", i); got.SessionID != want {
			t.Errorf("expected %s, got %s", want, got.SessionID)
		}
	}
}

func TestInMemoryQueue_ContextCancelled(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, job("s1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled on enqueue, got %v", err)
	}

	timeoutCtx, stop := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer stop()
	if _, err := q.Next(timeoutCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded on empty next, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	producers, perProducer := 10, 100

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				for q.Enqueue(ctx, job(fmt.Sprintf("s%d_%d", id, j))) != nil {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	consumed := make(chan string, producers*perProducer)
	var consumers sync.WaitGroup
	for i := 0; i < 4; i++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				j, err := q.Next(ctx)
				if err != nil {
					return
				}
				consumed <- j.SessionID
			}
		}()
	}

	wg.Wait()
	_ = q.Close()
	consumers.Wait()
	close(consumed)

	seen := map[string]bool{}
	for id := range consumed {
		if seen[id] {
			t.Fatalf("job %s delivered twice", id)
		}
		seen[id] = true
	}
	if len(seen) != producers*perProducer {
		t.Errorf("expected %d jobs, got %d", producers*perProducer, len(seen))
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if err := q.Enqueue(ctx, job("s1")); err != nil {
		t.Fatal(err)
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Enqueue(ctx, job("s2")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after closing, got %v", err)
	}

	// queued jobs drain before the closed signal
	got, err := q.Next(ctx)
	if err != nil || got.SessionID != "s1" {
		t.Errorf("expected to drain s1, got %v %v", got.SessionID, err)
	}
	if _, err := q.Next(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed once drained, got %v", err)
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
