package events

import (
	"context"
	"sync"
	"time"

	"speedrun_backend/platform/logger"
)

// InMemoryBus is a Bus backed by an in-process handler registry.
// Publish runs handlers on a separate goroutine with a bounded timeout;
// PublishSync runs them inline.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *logger.Logger
	timeout  time.Duration
}

// NewInMemoryBus creates an in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		logger:   log,
		timeout:  30 * time.Second,
	}
}

// Subscribe registers a handler for the named event.
func (b *InMemoryBus) Subscribe(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

// Publish delivers the event asynchronously. Handler errors are logged, not
// returned; a failed subscriber must not fail the publishing operation.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Name()]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	go func() {
		// Detach from the request context so in-flight handlers survive the
		// HTTP response, but keep a hard upper bound.
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
		defer cancel()

		for _, h := range handlers {
			if err := h.Handle(hctx, event); err != nil {
				b.logger.Error("event handler failed",
					"event", event.Name(),
					"error", err.Error(),
				)
			}
		}
	}()
}

// PublishSync delivers the event on the calling goroutine and returns the
// first handler error.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Name()]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
