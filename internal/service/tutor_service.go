package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/internal/repository/specification"
	"ai-tutoring-be/pkg/events"
	"ai-tutoring-be/pkg/tutor"
	"ai-tutoring-be/pkg/tutor/pipeline"
	"ai-tutoring-be/pkg/tutor/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ITutorService interface {
	Ask(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error)
	StartFresh(ctx context.Context, userId uuid.UUID, req *dto.StartFreshRequest) (*dto.SessionResponse, error)
	CurrentSession(ctx context.Context, userId, chapterId uuid.UUID) (*dto.SessionResponse, error)
	History(ctx context.Context, userId, sessionId uuid.UUID) (*dto.ChatHistoryResponse, error)
}

type tutorService struct {
	pipeline        *pipeline.Pipeline
	sessions        *session.Manager
	messageRepo     contract.ChatMessageRepository
	publisher       IPublisherService
	logger          logger.ILogger
	exchangeTimeout time.Duration
}

func NewTutorService(
	p *pipeline.Pipeline,
	sessions *session.Manager,
	messageRepo contract.ChatMessageRepository,
	publisher IPublisherService,
	log logger.ILogger,
	exchangeTimeout time.Duration,
) ITutorService {
	return &tutorService{
		pipeline:        p,
		sessions:        sessions,
		messageRepo:     messageRepo,
		publisher:       publisher,
		logger:          log,
		exchangeTimeout: exchangeTimeout,
	}
}

func (s *tutorService) Ask(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", tutor.ErrValidation)
	}

	// The whole exchange runs under one deadline. A generation still in
	// flight when it expires fails like any other generation error, with
	// the student's message already persisted.
	if s.exchangeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.exchangeTimeout)
		defer cancel()
	}

	result, err := s.pipeline.Ask(ctx, pipeline.AskInput{
		UserId:   userId,
		Key:      sessionKeyFromAsk(req),
		Question: question,
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishEvent(ctx, events.NewExchangeCompleted(result.SessionId.String(), userId.String(), result.Degraded))
	if result.Degraded {
		s.publisher.PublishEvent(ctx, events.NewRetrievalDegraded(
			result.SessionId.String(), userId.String(), strings.Join(result.DegradedReasons, ","),
		))
	}

	sources := make([]dto.SourceResponse, len(result.Sources))
	for i, src := range result.Sources {
		sources[i] = dto.SourceResponse{
			ChunkId:    src.Chunk.Id,
			Similarity: src.Similarity,
		}
	}

	return &dto.AskResponse{
		SessionId:       result.SessionId,
		Answer:          result.Answer,
		Sources:         sources,
		Degraded:        result.Degraded,
		DegradedReasons: result.DegradedReasons,
	}, nil
}

func (s *tutorService) StartFresh(ctx context.Context, userId uuid.UUID, req *dto.StartFreshRequest) (*dto.SessionResponse, error) {
	old, err := s.sessions.Current(ctx, userId, req.ChapterId)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.StartFresh(ctx, userId, session.Key{
		ExamId:      req.ExamId,
		SubjectId:   req.SubjectId,
		ChapterId:   req.ChapterId,
		ExamName:    req.ExamName,
		SubjectName: req.SubjectName,
		ChapterName: req.ChapterName,
	})
	if err != nil {
		return nil, err
	}

	if old != nil {
		s.publisher.PublishEvent(ctx, events.NewSessionArchived(old.Id.String(), userId.String()))
	}

	return sessionToResponse(sess), nil
}

func (s *tutorService) CurrentSession(ctx context.Context, userId, chapterId uuid.UUID) (*dto.SessionResponse, error) {
	sess, err := s.sessions.Current(ctx, userId, chapterId)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "no active session for this chapter")
	}
	return sessionToResponse(sess), nil
}

func (s *tutorService) History(ctx context.Context, userId, sessionId uuid.UUID) (*dto.ChatHistoryResponse, error) {
	sess, err := s.sessions.FindOwned(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	messages, err := s.messageRepo.FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
		specification.OrderBy{Field: "seq"},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: read history: %v", tutor.ErrPersistence, err)
	}

	res := &dto.ChatHistoryResponse{
		SessionId: sessionId,
		Messages:  make([]dto.ChatMessageResponse, len(messages)),
	}
	for i, msg := range messages {
		res.Messages[i] = dto.ChatMessageResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Text:      msg.Text,
			CreatedAt: msg.CreatedAt,
		}
	}
	return res, nil
}

func sessionKeyFromAsk(req *dto.AskRequest) session.Key {
	return session.Key{
		ExamId:      req.ExamId,
		SubjectId:   req.SubjectId,
		ChapterId:   req.ChapterId,
		ExamName:    req.ExamName,
		SubjectName: req.SubjectName,
		ChapterName: req.ChapterName,
	}
}

func sessionToResponse(sess *entity.ChatSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:           sess.Id,
		ExamId:       sess.ExamId,
		SubjectId:    sess.SubjectId,
		ChapterId:    sess.ChapterId,
		ExamName:     sess.ExamName,
		SubjectName:  sess.SubjectName,
		ChapterName:  sess.ChapterName,
		Status:       sess.Status,
		MessageCount: sess.MessageCount,
		StartedAt:    sess.StartedAt,
		UpdatedAt:    sess.UpdatedAt,
	}
}
