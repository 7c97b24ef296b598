// Package session owns the lifecycle of tutoring sessions: at most one
// active session exists per (user, chapter), enforced by a partial unique
// index in the store rather than by application locking.
package session

import (
	"context"
	"fmt"
	"time"

	"ai-tutoring-be/internal/constant"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/internal/repository/specification"
	"ai-tutoring-be/pkg/tutor"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Key identifies the chapter a session is scoped to, with display names
// carried along for prompt assembly.
type Key struct {
	ExamId      uuid.UUID
	SubjectId   uuid.UUID
	ChapterId   uuid.UUID
	ExamName    string
	SubjectName string
	ChapterName string
}

type Manager struct {
	sessionRepo contract.ChatSessionRepository
	messageRepo contract.ChatMessageRepository
	hotCache    *gocache.Cache
	logger      logger.ILogger
}

func NewManager(
	sessionRepo contract.ChatSessionRepository,
	messageRepo contract.ChatMessageRepository,
	log logger.ILogger,
) *Manager {
	return &Manager{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		hotCache:    gocache.New(5*time.Minute, 10*time.Minute),
		logger:      log,
	}
}

func cacheKey(userId, chapterId uuid.UUID) string {
	return userId.String() + ":" + chapterId.String()
}

// Ensure returns the user's active session for the chapter, creating one
// if none exists. Concurrent calls for the same (user, chapter) converge
// on a single session: the store's uniqueness constraint decides which
// insert wins and the loser reads the surviving row back.
func (m *Manager) Ensure(ctx context.Context, userId uuid.UUID, key Key) (*entity.ChatSession, error) {
	now := time.Now()

	// Hot path: a cached session is only trusted after Refresh confirms
	// it is still active in the store. The cache holds value snapshots;
	// each hit works on its own copy so concurrent callers never share
	// a mutable session.
	if cached, found := m.hotCache.Get(cacheKey(userId, key.ChapterId)); found {
		snap := cached.(entity.ChatSession)
		alive, err := m.sessionRepo.Refresh(ctx, snap.Id, now)
		if err != nil {
			return nil, fmt.Errorf("%w: refresh session: %v", tutor.ErrPersistence, err)
		}
		if alive {
			snap.UpdatedAt = &now
			return &snap, nil
		}
		m.hotCache.Delete(cacheKey(userId, key.ChapterId))
	}

	sess, err := m.findActive(ctx, userId, key.ChapterId)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		alive, err := m.sessionRepo.Refresh(ctx, sess.Id, now)
		if err != nil {
			return nil, fmt.Errorf("%w: refresh session: %v", tutor.ErrPersistence, err)
		}
		if alive {
			sess.UpdatedAt = &now
			m.hotCache.SetDefault(cacheKey(userId, key.ChapterId), *sess)
			return sess, nil
		}
		// Archived between the read and the refresh. Fall through to create.
	}

	return m.createActive(ctx, userId, key, now)
}

// StartFresh archives the current active session (if any), purges its
// messages, and creates a new active session. The old session is never
// resurrected even if cleanup partially fails.
func (m *Manager) StartFresh(ctx context.Context, userId uuid.UUID, key Key) (*entity.ChatSession, error) {
	now := time.Now()

	old, err := m.findActive(ctx, userId, key.ChapterId)
	if err != nil {
		return nil, err
	}
	if old != nil {
		if err := m.sessionRepo.Archive(ctx, old.Id, now); err != nil {
			return nil, fmt.Errorf("%w: archive session: %v", tutor.ErrPersistence, err)
		}
		// Message purge is best-effort: orphaned rows of an archived
		// session are invisible to the pipeline.
		if err := m.messageRepo.DeleteByChatSessionId(ctx, old.Id); err != nil {
			m.logger.Warn("SessionManager", "Failed to purge messages of archived session", map[string]interface{}{
				"session_id": old.Id.String(),
				"error":      err.Error(),
			})
		}
	}
	m.hotCache.Delete(cacheKey(userId, key.ChapterId))

	return m.createActive(ctx, userId, key, now)
}

// Current returns the user's active session for the chapter, or (nil, nil)
// when none exists.
func (m *Manager) Current(ctx context.Context, userId, chapterId uuid.UUID) (*entity.ChatSession, error) {
	return m.findActive(ctx, userId, chapterId)
}

// FindOwned returns the session only if it belongs to the user. A session
// owned by someone else yields tutor.ErrAuth, not a not-found.
func (m *Manager) FindOwned(ctx context.Context, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	sess, err := m.sessionRepo.FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, fmt.Errorf("%w: find session: %v", tutor.ErrPersistence, err)
	}
	if sess == nil {
		return nil, nil
	}
	if sess.UserId != userId {
		return nil, fmt.Errorf("%w: session belongs to another user", tutor.ErrAuth)
	}
	return sess, nil
}

// Invalidate drops the hot cache entry. Call after any out-of-band status
// change so the next Ensure re-reads the store.
func (m *Manager) Invalidate(userId, chapterId uuid.UUID) {
	m.hotCache.Delete(cacheKey(userId, chapterId))
}

func (m *Manager) findActive(ctx context.Context, userId, chapterId uuid.UUID) (*entity.ChatSession, error) {
	sess, err := m.sessionRepo.FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByChapterID{ChapterID: chapterId},
		specification.ByStatus{Status: constant.SessionStatusActive},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: find active session: %v", tutor.ErrPersistence, err)
	}
	return sess, nil
}

func (m *Manager) createActive(ctx context.Context, userId uuid.UUID, key Key, now time.Time) (*entity.ChatSession, error) {
	candidate := &entity.ChatSession{
		Id:          uuid.New(),
		UserId:      userId,
		ExamId:      key.ExamId,
		SubjectId:   key.SubjectId,
		ChapterId:   key.ChapterId,
		ExamName:    key.ExamName,
		SubjectName: key.SubjectName,
		ChapterName: key.ChapterName,
		Status:      constant.SessionStatusActive,
		StartedAt:   now,
		UpdatedAt:   &now,
	}

	if err := m.sessionRepo.CreateActive(ctx, candidate); err != nil {
		return nil, fmt.Errorf("%w: create session: %v", tutor.ErrPersistence, err)
	}

	// Read back the surviving row. Under a concurrent create our insert may
	// have been the losing no-op, in which case this returns the winner.
	sess, err := m.findActive(ctx, userId, key.ChapterId)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: active session missing after create", tutor.ErrPersistence)
	}

	m.hotCache.SetDefault(cacheKey(userId, key.ChapterId), *sess)
	return sess, nil
}
