// Package events defines the domain events exchanged between modules and
// re-exports the platform bus types so modules import a single package.
package events

import (
	"speedrun_backend/platform/events"
)

// Re-exported bus types.
type (
	Event       = events.Event
	BaseEvent   = events.BaseEvent
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	Bus         = events.Bus
	InMemoryBus = events.InMemoryBus
)

// NewBaseEvent stamps a BaseEvent with the current time.
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the in-process bus.
var NewInMemoryBus = events.NewInMemoryBus
