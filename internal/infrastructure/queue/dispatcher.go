package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/api/metrics"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrClosed is returned by Enqueue once Shutdown has started.
var ErrClosed = errors.New("dispatcher closed")

// Dispatcher routes identity lifecycle events to a fixed set of workers using
// consistent hashing on the subject, guaranteeing per-user event ordering.
type Dispatcher struct {
	workers []chan domain.IdentityEvent
	service ports.LifecycleService
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.LifecycleService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.IdentityEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.IdentityEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown stops accepting events and waits until the workers have processed
// everything already buffered. Those events were acknowledged to the sender,
// so they are drained rather than dropped. When ctx ends first the number of
// unprocessed events is reported; cancelling the Start context then stops the
// workers.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		pending := 0
		for _, ch := range d.workers {
			pending += len(ch)
		}
		return fmt.Errorf("drain identity events: %d pending: %w", pending, ctx.Err())
	}
}

// Enqueue sends an event to the worker responsible for its subject. It blocks
// while that worker's buffer is full and gives up when ctx is done.
func (d *Dispatcher) Enqueue(ctx context.Context, event domain.IdentityEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	idx := d.shardIndex(event.Subject)
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a subject deterministically to a worker index.
func (d *Dispatcher) shardIndex(subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subject))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.IdentityEvent) {
	defer d.wg.Done()
	depth := metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.process(ctx, id, event)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, event domain.IdentityEvent) {
	start := time.Now()
	err := d.service.Process(ctx, event)
	if err != nil {
		metrics.EventProcessingDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		metrics.EventsErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		d.log.Error().Err(err).
			Str("delivery_id", event.DeliveryID).
			Str("subject", event.Subject).
			Int("worker_id", id).
			Msg("identity event processing failed")
		return
	}
	metrics.EventProcessingDuration.WithLabelValues(string(event.Type)).Observe(time.Since(start).Seconds())
	metrics.EventsProcessedTotal.WithLabelValues(string(event.Type)).Inc()
}

func errorReason(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return "invalid_event"
	case errors.Is(err, domain.ErrStorage):
		return "storage"
	default:
		return "process_failed"
	}
}
