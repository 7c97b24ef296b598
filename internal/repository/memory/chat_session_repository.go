package memory

import (
	"context"
	"sort"
	"time"

	"ai-tutoring-be/internal/constant"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository struct {
	store *Store
}

func (r *ChatSessionRepository) CreateActive(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// Same semantics as the partial unique index plus ON CONFLICT DO
	// NOTHING: a second active session for the pair is a silent no-op.
	for _, existing := range r.store.sessions {
		if existing.Status == constant.SessionStatusActive &&
			existing.UserId == session.UserId &&
			existing.ChapterId == session.ChapterId {
			return nil
		}
	}

	copied := *session
	r.store.sessions[session.Id] = &copied
	return nil
}

func (r *ChatSessionRepository) Refresh(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sess, ok := r.store.sessions[id]
	if !ok || sess.Status != constant.SessionStatusActive {
		return false, nil
	}
	t := now
	sess.UpdatedAt = &t
	return true, nil
}

func (r *ChatSessionRepository) Touch(ctx context.Context, id uuid.UUID, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sess, ok := r.store.sessions[id]
	if !ok {
		return nil
	}
	sess.MessageCount++
	t := now
	sess.UpdatedAt = &t
	return nil
}

func (r *ChatSessionRepository) Archive(ctx context.Context, id uuid.UUID, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sess, ok := r.store.sessions[id]
	if !ok {
		return nil
	}
	sess.Status = constant.SessionStatusArchived
	t := now
	sess.UpdatedAt = &t
	return nil
}

func (r *ChatSessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *ChatSessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	q := buildQuery(specs...)

	var matches []*entity.ChatSession
	for _, sess := range r.store.sessions {
		if q.id != nil && sess.Id != *q.id {
			continue
		}
		if q.userId != nil && sess.UserId != *q.userId {
			continue
		}
		if q.chapterId != nil && sess.ChapterId != *q.chapterId {
			continue
		}
		if q.status != nil && sess.Status != *q.status {
			continue
		}
		copied := *sess
		matches = append(matches, &copied)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].StartedAt.Before(matches[j].StartedAt)
	})

	return matches, nil
}

func (r *ChatSessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(matches)), nil
}
