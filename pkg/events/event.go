package events

import (
	"context"
	"time"
)

// Domain event codes. They double as the NATS subject suffix (events.<CODE>).
const (
	UserRegistered    = "USER_REGISTERED"
	UserLogin         = "USER_LOGIN"
	UserLogout        = "USER_LOGOUT"
	PasswordReset     = "PASSWORD_RESET"
	ChatTurnCompleted = "CHAT_TURN_COMPLETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "USER_LOGIN").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher is anything that can put an event on the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// BaseEvent is the only Event implementation the services need.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
