package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus(2, nil)
	var calls atomic.Int32

	handler := HandlerFunc(func(_ context.Context, _ Event) error {
		calls.Add(1)
		return nil
	})
	bus.Subscribe("test.event", handler)
	bus.Subscribe("test.event", handler)

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.event"})
	bus.Drain(2 * time.Second)

	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 handler calls, got %d", got)
	}
}

func TestPublishSyncReturnsHandlerError(t *testing.T) {
	bus := NewInMemoryBus(1, nil)
	wantErr := errors.New("boom")
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, _ Event) error {
		return wantErr
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.event"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestHandlerPanicIsIsolated(t *testing.T) {
	bus := NewInMemoryBus(1, nil)
	var survived atomic.Bool

	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, _ Event) error {
		panic("handler exploded")
	}))
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, _ Event) error {
		survived.Store(true)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.event"})
	bus.Drain(2 * time.Second)

	if !survived.Load() {
		t.Fatal("second handler did not run after first handler panicked")
	}
}

func TestPublishAfterDrainIsNoop(t *testing.T) {
	bus := NewInMemoryBus(1, nil)
	bus.Drain(time.Second)

	// Must not panic on a closed queue.
	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.event"})
}
