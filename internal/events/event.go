// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"marketplace_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// ProductCreated is published after a seller listing and its images are stored.
type ProductCreated struct {
	BaseEvent
	ProductID  uuid.UUID `json:"productId"`
	ImageCount int       `json:"imageCount"`
}

func (e ProductCreated) EventName() string { return "catalog.product.created" }
