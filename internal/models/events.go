package models

import "time"

// Event types
const (
	EventTypeStateTransition = "STATE_TRANSITION"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// TransitionEvent is published whenever an async resource changes status.
type TransitionEvent struct {
	BaseEvent
	Container string `json:"container"`
	Operation string `json:"operation"`
	From      string `json:"from"`
	To        string `json:"to"`
	Error     string `json:"error,omitempty"`
}
