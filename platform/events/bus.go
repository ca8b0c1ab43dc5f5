package events

import (
	"context"
	"sync"
	"time"

	"loanflow_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

// asyncHandlerTimeout bounds the lifetime of handlers spawned by Publish,
// which outlive the request that triggered them.
const asyncHandlerTimeout = 30 * time.Second

// InMemoryBus is a process-local implementation of Bus.
// Subscriptions are expected to happen during startup, before any Publish.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
	log      *logger.Logger
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for the given event name.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish dispatches the event to all registered handlers asynchronously.
// Handler errors and panics are logged, never propagated to the publisher.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	for _, handler := range b.handlersFor(event.EventName()) {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("event handler panicked",
						"event", event.EventName(), "panic", r)
				}
			}()

			// Detach from the caller's context: the request that published
			// the event may complete before handlers finish.
			handlerCtx, cancel := context.WithTimeout(context.Background(), asyncHandlerTimeout)
			defer cancel()

			if err := h.Handle(handlerCtx, event); err != nil {
				b.log.Error("event handler failed",
					"event", event.EventName(), "error", err)
			}
		}(handler)
	}
}

// PublishSync dispatches the event and waits for all handlers to complete,
// returning the first handler error encountered.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, handler := range b.handlersFor(event.EventName()) {
		h := handler
		g.Go(func() error {
			return h.Handle(gctx, event)
		})
	}
	return g.Wait()
}

// Wait blocks until all asynchronously dispatched handlers have finished.
// Used during graceful shutdown.
func (b *InMemoryBus) Wait() {
	b.wg.Wait()
}

func (b *InMemoryBus) handlersFor(eventName string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	registered := b.handlers[eventName]
	result := make([]Handler, len(registered))
	copy(result, registered)
	return result
}
