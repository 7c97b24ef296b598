package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TUTOR_EXCHANGE_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by the tutoring events.
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

// Event type codes emitted by the tutoring pipeline.
const (
	TypeExchangeCompleted = "TUTOR_EXCHANGE_COMPLETED"
	TypeRetrievalDegraded = "TUTOR_RETRIEVAL_DEGRADED"
	TypeSessionArchived   = "TUTOR_SESSION_ARCHIVED"
	TypeChapterIndexed    = "TUTOR_CHAPTER_INDEXED"
)

func NewExchangeCompleted(sessionId, userId string, degraded bool) Event {
	return BaseEvent{
		Type: TypeExchangeCompleted,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"user_id":    userId,
			"degraded":   degraded,
		},
		OccurredAt: time.Now(),
	}
}

func NewRetrievalDegraded(sessionId, userId, reason string) Event {
	return BaseEvent{
		Type: TypeRetrievalDegraded,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"user_id":    userId,
			"reason":     reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionArchived(sessionId, userId string) Event {
	return BaseEvent{
		Type: TypeSessionArchived,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"user_id":    userId,
		},
		OccurredAt: time.Now(),
	}
}

func NewChapterIndexed(chapterId string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeChapterIndexed,
		Data: map[string]interface{}{
			"chapter_id":  chapterId,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}
