// Package events provides a lightweight in-process publish/subscribe bus for
// domain events. Modules publish events after state changes; subscribers react
// without coupling the modules together.
package events

import (
	"context"
	"time"
)

// Event is the interface all domain events implement.
type Event interface {
	// Name returns the event name, e.g. "speedrun.daily_target_reached".
	Name() string
	// OccurredAt returns when the event happened.
	OccurredAt() time.Time
}

// BaseEvent provides common event fields. Embed it in concrete events.
type BaseEvent struct {
	Timestamp time.Time
}

// NewBaseEvent creates a BaseEvent stamped with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}

// OccurredAt returns when the event happened.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// Handler processes an event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the wrapped function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes events to subscribed handlers.
type Bus interface {
	// Publish delivers the event to subscribers asynchronously.
	Publish(ctx context.Context, event Event)
	// PublishSync delivers the event to subscribers on the calling goroutine
	// and returns the first handler error.
	PublishSync(ctx context.Context, event Event) error
	// Subscribe registers a handler for the named event.
	Subscribe(name string, handler Handler)
}
