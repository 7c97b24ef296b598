package memory

import (
	"context"
	"sort"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository struct {
	store *Store
}

func (r *ChatMessageRepository) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.CreateMsgErr != nil {
		return r.store.CreateMsgErr
	}

	r.store.seq++
	message.Seq = r.store.seq

	copied := *message
	r.store.messages = append(r.store.messages, &copied)
	return nil
}

func (r *ChatMessageRepository) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	kept := r.store.messages[:0]
	for _, msg := range r.store.messages {
		if msg.ChatSessionId != sessionId {
			kept = append(kept, msg)
		}
	}
	r.store.messages = kept
	return nil
}

func (r *ChatMessageRepository) FindRecent(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.FindRecentErr != nil {
		return nil, r.store.FindRecentErr
	}

	var matches []*entity.ChatMessage
	for _, msg := range r.store.messages {
		if msg.ChatSessionId == sessionId {
			copied := *msg
			matches = append(matches, &copied)
		}
	}

	sortChronological(matches)

	if limit > 0 && len(matches) > limit {
		matches = matches[len(matches)-limit:]
	}
	return matches, nil
}

func (r *ChatMessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	q := buildQuery(specs...)

	var matches []*entity.ChatMessage
	for _, msg := range r.store.messages {
		if q.sessionId != nil && msg.ChatSessionId != *q.sessionId {
			continue
		}
		if q.userId != nil && msg.UserId != *q.userId {
			continue
		}
		copied := *msg
		matches = append(matches, &copied)
	}

	sortChronological(matches)

	if q.offset > 0 {
		if q.offset >= len(matches) {
			return nil, nil
		}
		matches = matches[q.offset:]
	}
	if q.limit >= 0 && len(matches) > q.limit {
		matches = matches[:q.limit]
	}
	return matches, nil
}

func (r *ChatMessageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(matches)), nil
}

func sortChronological(messages []*entity.ChatMessage) {
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].Seq < messages[j].Seq
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}
