package contract

import (
	"context"
	"time"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	// CreateActive inserts a new active session. The partial unique index on
	// (user_id, chapter_id) WHERE status='active' resolves concurrent
	// creation at the store: a conflicting insert is a silent no-op and the
	// caller must read back the surviving row.
	CreateActive(ctx context.Context, session *entity.ChatSession) error

	// Refresh advances updated_at on a still-active session. Returns false
	// when the session is no longer active (archived or completed elsewhere).
	Refresh(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)

	// Touch advances updated_at and increments message_count atomically.
	// Called once per persisted message.
	Touch(ctx context.Context, id uuid.UUID, now time.Time) error

	// Archive transitions a session to terminal 'archived' status.
	Archive(ctx context.Context, id uuid.UUID, now time.Time) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
