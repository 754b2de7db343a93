// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	platformevents "imamportal_backend/platform/events"
	"imamportal_backend/platform/logger"
)

// Re-export platform types for convenience
type (
	Event       = platformevents.Event
	Bus         = platformevents.Bus
	Handler     = platformevents.Handler
	HandlerFunc = platformevents.HandlerFunc
	BaseEvent   = platformevents.BaseEvent
	InMemoryBus = platformevents.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = platformevents.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus with the given worker
// pool size. This is a convenience re-export from platform/events.
func NewInMemoryBus(workers int, log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(workers, log)
}

// =============================================================================
// Notification Domain Events
// =============================================================================

// RecordCommittedName is the bus subscription key for RecordCommitted.
const RecordCommittedName = "notification.record.committed"

// RecordCommitted is published by domain services immediately after a row is
// durably written. It is the single trigger for notification dispatch: the
// notification module subscribes to it and decides which templates apply.
//
// Record must be the post-commit row (including generated id and timestamps).
// For updates, Previous must be the pre-write row so a status transition can
// be detected. ExplicitRecipients, when set, bypasses slot-based recipient
// resolution for every template dispatched for this event.
type RecordCommitted struct {
	BaseEvent
	TableName          string         `json:"tableName"`
	Action             string         `json:"action"`
	Record             map[string]any `json:"record"`
	Previous           map[string]any `json:"previous,omitempty"`
	ExplicitRecipients []string       `json:"explicitRecipients,omitempty"`
}

func (e RecordCommitted) EventName() string { return RecordCommittedName }
