package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-tutoring-be/internal/constant"
	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/internal/repository/memory"
	"ai-tutoring-be/pkg/llm"
	"ai-tutoring-be/pkg/tutor"
	"ai-tutoring-be/pkg/tutor/pipeline"
	"ai-tutoring-be/pkg/tutor/prompt"
	"ai-tutoring-be/pkg/tutor/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestTutorService(store *memory.Store) (ITutorService, *session.Manager) {
	sessions := session.NewManager(store.SessionRepository(), store.MessageRepository(), logger.NopLogger{})
	svc := NewTutorService(
		nil, // pipeline unused by the paths under test
		sessions,
		store.MessageRepository(),
		NewPublisherService(nil, logger.NopLogger{}),
		logger.NopLogger{},
		time.Minute,
	)
	return svc, sessions
}

// stalledGenerator never answers; it only returns once the context dies.
type stalledGenerator struct{}

func (stalledGenerator) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (stalledGenerator) Generate(ctx context.Context, promptText string, opts ...llm.Option) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type emptyRetriever struct{}

func (emptyRetriever) Retrieve(ctx context.Context, question string, chapterId uuid.UUID) ([]*contract.ScoredContentChunk, error) {
	return nil, nil
}

type emptyHistory struct{}

func (emptyHistory) Load(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	return nil, nil
}

func TestAskDeadlineExpiryFailsLikeGeneration(t *testing.T) {
	store := memory.NewStore()
	sessions := session.NewManager(store.SessionRepository(), store.MessageRepository(), logger.NopLogger{})
	pl := pipeline.NewPipeline(
		sessions,
		emptyRetriever{},
		emptyHistory{},
		prompt.NewBuilder(),
		stalledGenerator{},
		store.MessageRepository(),
		store.SessionRepository(),
		logger.NopLogger{},
	)
	svc := NewTutorService(
		pl,
		sessions,
		store.MessageRepository(),
		NewPublisherService(nil, logger.NopLogger{}),
		logger.NopLogger{},
		30*time.Millisecond,
	)

	userId := uuid.New()
	chapterId := uuid.New()
	_, err := svc.Ask(context.Background(), userId, &dto.AskRequest{
		Question:  "What is instantaneous velocity?",
		ExamId:    uuid.New(),
		SubjectId: uuid.New(),
		ChapterId: chapterId,
	})
	assert.True(t, errors.Is(err, tutor.ErrGeneration))

	// The student's message survives the failed exchange.
	sess, err := sessions.Current(context.Background(), userId, chapterId)
	assert.NoError(t, err)
	if assert.NotNil(t, sess) {
		messages, err := store.MessageRepository().FindRecent(context.Background(), sess.Id, 10)
		assert.NoError(t, err)
		if assert.Len(t, messages, 1) {
			assert.Equal(t, constant.ChatMessageRoleUser, messages[0].Role)
		}
	}
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	svc, _ := newTestTutorService(memory.NewStore())

	_, err := svc.Ask(context.Background(), uuid.New(), &dto.AskRequest{
		Question:  "   ",
		ExamId:    uuid.New(),
		SubjectId: uuid.New(),
		ChapterId: uuid.New(),
	})
	assert.True(t, errors.Is(err, tutor.ErrValidation))
}

func TestHistoryRejectsForeignSession(t *testing.T) {
	store := memory.NewStore()
	svc, sessions := newTestTutorService(store)

	owner := uuid.New()
	sess, err := sessions.Ensure(context.Background(), owner, session.Key{
		ExamId: uuid.New(), SubjectId: uuid.New(), ChapterId: uuid.New(),
	})
	assert.NoError(t, err)

	_, err = svc.History(context.Background(), uuid.New(), sess.Id)
	assert.True(t, errors.Is(err, tutor.ErrAuth))
}

func TestHistoryUnknownSessionIsNotFound(t *testing.T) {
	svc, _ := newTestTutorService(memory.NewStore())

	_, err := svc.History(context.Background(), uuid.New(), uuid.New())

	var fiberErr *fiber.Error
	if assert.True(t, errors.As(err, &fiberErr)) {
		assert.Equal(t, fiber.StatusNotFound, fiberErr.Code)
	}
}

func TestHistoryReturnsFullConversation(t *testing.T) {
	store := memory.NewStore()
	svc, sessions := newTestTutorService(store)

	userId := uuid.New()
	sess, err := sessions.Ensure(context.Background(), userId, session.Key{
		ExamId: uuid.New(), SubjectId: uuid.New(), ChapterId: uuid.New(),
	})
	assert.NoError(t, err)

	base := time.Now().Add(-time.Minute)
	for i, text := range []string{"q1", "a1", "q2"} {
		role := constant.ChatMessageRoleUser
		if i%2 == 1 {
			role = constant.ChatMessageRoleAssistant
		}
		err := store.MessageRepository().Create(context.Background(), &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: sess.Id,
			UserId:        userId,
			Role:          role,
			Text:          text,
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		})
		assert.NoError(t, err)
	}

	res, err := svc.History(context.Background(), userId, sess.Id)
	assert.NoError(t, err)
	assert.Equal(t, sess.Id, res.SessionId)
	if assert.Len(t, res.Messages, 3) {
		assert.Equal(t, "q1", res.Messages[0].Text)
		assert.Equal(t, "q2", res.Messages[2].Text)
	}
}

func TestCurrentSessionNotFoundWithoutActive(t *testing.T) {
	svc, _ := newTestTutorService(memory.NewStore())

	_, err := svc.CurrentSession(context.Background(), uuid.New(), uuid.New())

	var fiberErr *fiber.Error
	if assert.True(t, errors.As(err, &fiberErr)) {
		assert.Equal(t, fiber.StatusNotFound, fiberErr.Code)
	}
}

func TestStartFreshReturnsNewActiveSession(t *testing.T) {
	store := memory.NewStore()
	svc, sessions := newTestTutorService(store)

	userId := uuid.New()
	key := session.Key{ExamId: uuid.New(), SubjectId: uuid.New(), ChapterId: uuid.New()}

	old, err := sessions.Ensure(context.Background(), userId, key)
	assert.NoError(t, err)

	res, err := svc.StartFresh(context.Background(), userId, &dto.StartFreshRequest{
		ExamId:    key.ExamId,
		SubjectId: key.SubjectId,
		ChapterId: key.ChapterId,
	})
	assert.NoError(t, err)
	assert.NotEqual(t, old.Id, res.Id)
	assert.Equal(t, constant.SessionStatusActive, res.Status)
	assert.Equal(t, 0, res.MessageCount)
}
