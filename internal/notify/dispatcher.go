package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/config"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/logger"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/metrics"

	"github.com/sony/gobreaker/v2"
)

// Publisher accepts events without blocking the caller and without reporting
// delivery failures back to it.
type Publisher interface {
	Publish(ev Event)
}

// Dispatcher buffers events in memory and delivers them to a Sink from a
// small worker pool. Each delivery runs under its own timeout and behind a
// circuit breaker so an unavailable gateway costs callers nothing.
type Dispatcher struct {
	name    string
	sink    Sink
	timeout time.Duration
	workers int
	breaker *gobreaker.CircuitBreaker[any]

	mu     sync.RWMutex
	events chan Event
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(name string, sink Sink, cfg config.NotifyConfig) *Dispatcher {
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return cfg.BreakerFailures > 0 && counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("dispatch circuit breaker state changed",
				"queue", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Dispatcher{
		name:    name,
		sink:    sink,
		timeout: cfg.SendTimeout,
		workers: cfg.Workers,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		events:  make(chan Event, cfg.BufferSize),
	}
}

// Start launches the worker pool. Workers exit once Stop has been called and
// the buffer is drained.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	logger.Info("dispatcher started", "queue", d.name, "workers", d.workers)
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.events {
		metrics.DispatchBacklog.WithLabelValues(d.name).Set(float64(len(d.events)))
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	_, err := d.breaker.Execute(func() (any, error) {
		return nil, d.sink.Deliver(ctx, ev)
	})
	switch {
	case err == nil:
		metrics.RecordDispatch(d.name, "sent")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordDispatch(d.name, "rejected")
		logger.Warn("dispatch skipped, circuit open", "queue", d.name, "event", ev.Name, "member_id", ev.MemberID)
	default:
		metrics.RecordDispatch(d.name, "failed")
		logger.Error("dispatch failed", "queue", d.name, "event", ev.Name, "member_id", ev.MemberID, "error", err)
	}
}

// Publish enqueues ev. When the buffer is full or the dispatcher is stopped
// the event is dropped and counted.
func (d *Dispatcher) Publish(ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.RecordDispatch(d.name, "dropped")
		return
	}

	select {
	case d.events <- ev:
		metrics.RecordDispatch(d.name, "queued")
	default:
		metrics.RecordDispatch(d.name, "dropped")
		logger.Warn("dispatch buffer full, event dropped", "queue", d.name, "event", ev.Name, "member_id", ev.MemberID)
	}
}

// Stop rejects new events and waits for buffered ones to be delivered or
// for ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("dispatcher stopped", "queue", d.name)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
