// Package events is the in-process publish/subscribe bus modules use to react
// to each other without importing one another.
package events

import (
	"context"
	"time"
)

// Event is anything published on the Bus. EventName is the subscription key.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent stamps an event with its publication time. Embed it in concrete
// events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}

// Handler consumes events it subscribed to.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// Bus delivers events to subscribers.
type Bus interface {
	// Publish dispatches to every handler on its own goroutine.
	Publish(ctx context.Context, event Event)
	// PublishSync runs handlers in order and returns the first error.
	PublishSync(ctx context.Context, event Event) error
	// Subscribe registers a handler for an Event.EventName() value.
	Subscribe(eventName string, handler Handler)
}
