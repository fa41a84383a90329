package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

type recordingService struct {
	mu     sync.Mutex
	events []domain.IdentityEvent
	done   chan struct{}
	want   int
	err    error
}

func newRecordingService(want int) *recordingService {
	return &recordingService{done: make(chan struct{}), want: want}
}

func (s *recordingService) Process(_ context.Context, ev domain.IdentityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if len(s.events) == s.want {
		close(s.done)
	}
	return s.err
}

func (s *recordingService) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}
}

func TestDispatcher_PreservesPerSubjectOrder(t *testing.T) {
	const perSubject = 20
	subjects := []string{"user-a", "user-b", "user-c"}

	svc := newRecordingService(perSubject * len(subjects))
	d := NewDispatcher(3, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for i := 0; i < perSubject; i++ {
		for _, sub := range subjects {
			err := d.Enqueue(ctx, domain.IdentityEvent{
				DeliveryID: fmt.Sprintf("%s-%02d", sub, i),
				Type:       domain.EventUserUpdated,
				Subject:    sub,
			})
			if err != nil {
				t.Fatalf("enqueue: %v", err)
			}
		}
	}
	svc.wait(t)
	cancel()
	d.Wait()

	next := map[string]int{}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, ev := range svc.events {
		want := fmt.Sprintf("%s-%02d", ev.Subject, next[ev.Subject])
		if ev.DeliveryID != want {
			t.Fatalf("out of order for %s: got %s, want %s", ev.Subject, ev.DeliveryID, want)
		}
		next[ev.Subject]++
	}
}

func TestDispatcher_ContinuesAfterError(t *testing.T) {
	svc := newRecordingService(2)
	svc.err = domain.NewValidationError("type", "unsupported")
	d := NewDispatcher(1, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for _, id := range []string{"d1", "d2"} {
		if err := d.Enqueue(ctx, domain.IdentityEvent{DeliveryID: id, Subject: "user-a"}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	svc.wait(t)
}

func TestDispatcher_EnqueueHonoursContext(t *testing.T) {
	d := NewDispatcher(1, newRecordingService(0), zerolog.Nop())
	for i := 0; i < channelBuffer; i++ {
		if err := d.Enqueue(context.Background(), domain.IdentityEvent{Subject: "user-a"}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Enqueue(ctx, domain.IdentityEvent{Subject: "user-a"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled on a full shard, got %v", err)
	}
}

func TestDispatcher_ShutdownDrainsBufferedEvents(t *testing.T) {
	const total = 50
	svc := newRecordingService(total)
	d := NewDispatcher(2, svc, zerolog.Nop())

	// Buffered before any worker runs, as if acknowledged during a burst.
	for i := 0; i < total; i++ {
		ev := domain.IdentityEvent{DeliveryID: fmt.Sprintf("d%02d", i), Subject: fmt.Sprintf("user-%d", i%5)}
		if err := d.Enqueue(context.Background(), ev); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer drainCancel()
	if err := d.Shutdown(drainCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	svc.mu.Lock()
	got := len(svc.events)
	svc.mu.Unlock()
	if got != total {
		t.Fatalf("expected %d processed events, got %d", total, got)
	}

	if err := d.Enqueue(context.Background(), domain.IdentityEvent{Subject: "user-1"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after shutdown, got %v", err)
	}
	if err := d.Shutdown(drainCtx); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}

type blockingService struct {
	release chan struct{}
}

func (s blockingService) Process(ctx context.Context, _ domain.IdentityEvent) error {
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestDispatcher_ShutdownReportsPending(t *testing.T) {
	svc := blockingService{release: make(chan struct{})}
	d := NewDispatcher(1, svc, zerolog.Nop())
	for i := 0; i < 3; i++ {
		if err := d.Enqueue(context.Background(), domain.IdentityEvent{Subject: "user-a"}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer drainCancel()
	err := d.Shutdown(drainCtx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}

	cancel()
	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop after cancel")
	}
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(0, newRecordingService(0), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	if d.shardIndex("user-a") != d.shardIndex("user-a") {
		t.Fatal("shard index must be deterministic")
	}
	for _, sub := range []string{"", "user-a", "b", "some-long-subject-id"} {
		if idx := d.shardIndex(sub); idx < 0 || idx >= defaultWorkers {
			t.Fatalf("index %d out of range for %q", idx, sub)
		}
	}
}

func TestErrorReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.NewValidationError("type", "bad"), "invalid_event"},
		{fmt.Errorf("find: %w", domain.ErrStorage), "storage"},
		{errors.New("boom"), "process_failed"},
	}
	for _, tt := range tests {
		if got := errorReason(tt.err); got != tt.want {
			t.Errorf("errorReason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
