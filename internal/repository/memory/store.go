// Package memory is an in-process implementation of the repository
// contracts. It backs unit tests and local runs without Postgres, and it
// enforces the same store-level guarantees the SQL schema does: one
// active session per (user, chapter) and monotonically increasing
// message sequence numbers.
package memory

import (
	"context"
	"sync"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.ChatSession
	messages []*entity.ChatMessage
	chunks   map[uuid.UUID]*entity.ContentChunk
	seq      int64

	// Failure injection for degraded-path tests.
	FindRecentErr error
	SearchErr     error
	CreateMsgErr  error
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*entity.ChatSession),
		chunks:   make(map[uuid.UUID]*entity.ContentChunk),
	}
}

func (s *Store) SessionRepository() contract.ChatSessionRepository {
	return &ChatSessionRepository{store: s}
}

func (s *Store) MessageRepository() contract.ChatMessageRepository {
	return &ChatMessageRepository{store: s}
}

func (s *Store) ChunkRepository() contract.ContentChunkRepository {
	return &ContentChunkRepository{store: s}
}

// Factory adapts a Store to the unitofwork interfaces. Transactions are
// no-ops: every operation commits immediately.
type Factory struct {
	store *Store
}

func NewFactory(store *Store) unitofwork.RepositoryFactory {
	return &Factory{store: store}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

type unitOfWork struct {
	store *Store
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }

func (u *unitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return u.store.SessionRepository()
}

func (u *unitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return u.store.MessageRepository()
}

func (u *unitOfWork) ContentChunkRepository() contract.ContentChunkRepository {
	return u.store.ChunkRepository()
}
