package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "USER_LOGIN").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the standard Event implementation.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
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

// Domain event codes.
const (
	TypeUserLogin      = "USER_LOGIN"
	TypeSessionCreated = "SESSION_CREATED"
	TypeTurnRecorded   = "TURN_RECORDED"
)

func NewSessionCreated(userId, sessionId uuid.UUID, topic string) Event {
	return BaseEvent{
		Type: TypeSessionCreated,
		Data: map[string]interface{}{
			"user_id":    userId,
			"session_id": sessionId,
			"topic":      topic,
		},
		OccurredAt: time.Now(),
	}
}

func NewTurnRecorded(userId, sessionId, turnId uuid.UUID, truncated bool) Event {
	return BaseEvent{
		Type: TypeTurnRecorded,
		Data: map[string]interface{}{
			"user_id":    userId,
			"session_id": sessionId,
			"turn_id":    turnId,
			"truncated":  truncated,
		},
		OccurredAt: time.Now(),
	}
}

func NewUserLogin(userId uuid.UUID, userAgent string) Event {
	return BaseEvent{
		Type: TypeUserLogin,
		Data: map[string]interface{}{
			"user_id": userId,
			"device":  userAgent,
			"time":    time.Now().Format(time.RFC822),
		},
		OccurredAt: time.Now(),
	}
}
