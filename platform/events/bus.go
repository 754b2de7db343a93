package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"imamportal_backend/platform/logger"
)

// defaultQueueSize bounds how many published events may wait for a worker
// before Publish starts dropping with a log line. Publishers never block on
// a full queue; a triggering write must not stall on notification work.
const defaultQueueSize = 256

type queued struct {
	event Event
}

// InMemoryBus dispatches events to subscribed handlers on a fixed pool of
// worker goroutines. Compared to spawning a goroutine per publish, the pool
// gives bounded concurrency and a drainable shutdown path.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	queue    chan queued
	wg       sync.WaitGroup
	inflight sync.WaitGroup
	log      *logger.Logger
	closed   bool
}

// NewInMemoryBus creates an in-memory event bus with the given number of
// worker goroutines. workers < 1 falls back to 1.
func NewInMemoryBus(workers int, log *logger.Logger) *InMemoryBus {
	if workers < 1 {
		workers = 1
	}

	b := &InMemoryBus{
		handlers: make(map[string][]Handler),
		queue:    make(chan queued, defaultQueueSize),
		log:      log,
	}

	b.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go b.worker()
	}

	return b
}

// Subscribe registers a handler for the named event type.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish enqueues the event for asynchronous handling. The caller's context
// is not carried into handlers: the caller's request may complete (and its
// context be cancelled) long before handlers run.
func (b *InMemoryBus) Publish(_ context.Context, event Event) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return
	}

	b.inflight.Add(1)
	select {
	case b.queue <- queued{event: event}:
	default:
		b.inflight.Done()
		if b.log != nil {
			b.log.Warn("event bus queue full, dropping event", "event", event.EventName())
		}
	}
}

// PublishSync runs all handlers for the event on the caller's goroutine and
// returns the first handler error encountered.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	for _, h := range b.handlersFor(event.EventName()) {
		if err := b.safeHandle(ctx, h, event); err != nil {
			return err
		}
	}
	return nil
}

// Drain waits for queued and in-flight events to finish handling, up to the
// given timeout, then stops the workers. Used during graceful shutdown.
func (b *InMemoryBus) Drain(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		if b.log != nil {
			b.log.Warn("event bus drain timed out", "timeout", timeout.String())
		}
	}

	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *InMemoryBus) worker() {
	defer b.wg.Done()
	for q := range b.queue {
		for _, h := range b.handlersFor(q.event.EventName()) {
			if err := b.safeHandle(context.Background(), h, q.event); err != nil && b.log != nil {
				b.log.Error("event handler failed",
					"event", q.event.EventName(),
					"error", err.Error(),
				)
			}
		}
		b.inflight.Done()
	}
}

func (b *InMemoryBus) handlersFor(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.handlers[name]
}

// safeHandle isolates handler panics so one misbehaving subscriber cannot
// take down the worker pool or sibling handlers.
func (b *InMemoryBus) safeHandle(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, event)
}
