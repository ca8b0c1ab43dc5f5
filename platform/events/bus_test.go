package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"loanflow_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSyncRunsAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("loans.test", HandlerFunc(func(ctx context.Context, e Event) error {
			calls.Add(1)
			return nil
		}))
	}

	if err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "loans.test"}); err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 handler calls, got %d", got)
	}
}

func TestPublishSyncPropagatesHandlerError(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))
	wantErr := errors.New("handler failed")

	bus.Subscribe("loans.test", HandlerFunc(func(ctx context.Context, e Event) error {
		return wantErr
	}))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "loans.test"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}

func TestPublishIsolatesPanicsFromPublisher(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	var called atomic.Bool
	bus.Subscribe("loans.test", HandlerFunc(func(ctx context.Context, e Event) error {
		panic("boom")
	}))
	bus.Subscribe("loans.test", HandlerFunc(func(ctx context.Context, e Event) error {
		called.Store(true)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "loans.test"})
	bus.Wait()

	if !called.Load() {
		t.Fatal("second handler should run despite panic in first")
	}
}

func TestPublishToUnknownEventIsNoop(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))
	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "loans.nobody"})
	bus.Wait()
}
