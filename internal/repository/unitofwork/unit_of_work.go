package unitofwork

import (
	"context"

	"ai-tutoring-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	ContentChunkRepository() contract.ContentChunkRepository
}
