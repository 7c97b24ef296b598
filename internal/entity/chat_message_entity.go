package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	UserId        uuid.UUID
	Role          string // user | assistant
	Text          string
	Seq           int64 // insertion order, breaks created_at ties
	CreatedAt     time.Time
}
