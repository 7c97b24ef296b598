// Package pipeline orchestrates one tutoring exchange: resolve the
// session, gather context, persist the student's message, generate the
// answer, and persist it.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-tutoring-be/internal/constant"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/pkg/llm"
	"ai-tutoring-be/pkg/tutor"
	"ai-tutoring-be/pkg/tutor/prompt"
	"ai-tutoring-be/pkg/tutor/session"

	"github.com/google/uuid"
)

// ContextRetriever produces the course material grounding an answer.
type ContextRetriever interface {
	Retrieve(ctx context.Context, question string, chapterId uuid.UUID) ([]*contract.ScoredContentChunk, error)
}

// HistoryReader produces the recent conversation window of a session.
type HistoryReader interface {
	Load(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error)
}

type AskInput struct {
	UserId   uuid.UUID
	Key      session.Key
	Question string
}

type AskResult struct {
	SessionId uuid.UUID
	Answer    string
	Sources   []*contract.ScoredContentChunk

	// Degraded is true when retrieval or history failed and the answer
	// was generated from a reduced context.
	Degraded        bool
	DegradedReasons []string
}

type Pipeline struct {
	sessions    *session.Manager
	retriever   ContextRetriever
	history     HistoryReader
	builder     *prompt.Builder
	generator   llm.LLMProvider
	messageRepo contract.ChatMessageRepository
	sessionRepo contract.ChatSessionRepository
	logger      logger.ILogger
}

func NewPipeline(
	sessions *session.Manager,
	retriever ContextRetriever,
	historyReader HistoryReader,
	builder *prompt.Builder,
	generator llm.LLMProvider,
	messageRepo contract.ChatMessageRepository,
	sessionRepo contract.ChatSessionRepository,
	log logger.ILogger,
) *Pipeline {
	return &Pipeline{
		sessions:    sessions,
		retriever:   retriever,
		history:     historyReader,
		builder:     builder,
		generator:   generator,
		messageRepo: messageRepo,
		sessionRepo: sessionRepo,
		logger:      log,
	}
}

// Ask runs one exchange. Retrieval and history failures degrade the
// context but never abort; generation failure aborts the exchange with
// the student's message already persisted. The history window is read
// before the student's message is written, so a prompt never quotes the
// question it is answering.
func (p *Pipeline) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	sess, err := p.sessions.Ensure(ctx, input.UserId, input.Key)
	if err != nil {
		return nil, err
	}

	var (
		wg           sync.WaitGroup
		chunks       []*contract.ScoredContentChunk
		retrievalErr error
		messages     []*entity.ChatMessage
		historyErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		chunks, retrievalErr = p.retriever.Retrieve(ctx, input.Question, input.Key.ChapterId)
	}()
	go func() {
		defer wg.Done()
		messages, historyErr = p.history.Load(ctx, sess.Id)
	}()
	wg.Wait()

	var degradedReasons []string
	if retrievalErr != nil {
		chunks = nil
		degradedReasons = append(degradedReasons, "retrieval")
	}
	if historyErr != nil {
		messages = nil
		degradedReasons = append(degradedReasons, "history")
	}

	now := time.Now()
	userMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sess.Id,
		UserId:        input.UserId,
		Role:          constant.ChatMessageRoleUser,
		Text:          input.Question,
		CreatedAt:     now,
	}
	if err := p.messageRepo.Create(ctx, userMessage); err != nil {
		return nil, fmt.Errorf("%w: persist user message: %v", tutor.ErrPersistence, err)
	}
	p.touch(ctx, sess.Id, now)

	promptText := p.builder.Build(prompt.BuildParams{
		ExamName:    sess.ExamName,
		SubjectName: sess.SubjectName,
		ChapterName: sess.ChapterName,
		Chunks:      chunks,
		History:     messages,
		Question:    input.Question,
	})

	answer, err := p.generator.Generate(ctx, promptText)
	if err != nil {
		// The student's message stays persisted so a retry continues the
		// same conversation.
		return nil, fmt.Errorf("%w: %v", tutor.ErrGeneration, err)
	}

	assistantAt := time.Now()
	assistantMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sess.Id,
		UserId:        input.UserId,
		Role:          constant.ChatMessageRoleAssistant,
		Text:          answer,
		CreatedAt:     assistantAt,
	}
	if err := p.messageRepo.Create(ctx, assistantMessage); err != nil {
		// The answer already exists; losing its persistence is logged,
		// not surfaced.
		p.logger.Error("TutorPipeline", "Failed to persist assistant message", map[string]interface{}{
			"session_id": sess.Id.String(),
			"error":      err.Error(),
		})
	} else {
		p.touch(ctx, sess.Id, assistantAt)
	}

	return &AskResult{
		SessionId:       sess.Id,
		Answer:          answer,
		Sources:         chunks,
		Degraded:        len(degradedReasons) > 0,
		DegradedReasons: degradedReasons,
	}, nil
}

func (p *Pipeline) touch(ctx context.Context, sessionId uuid.UUID, at time.Time) {
	if err := p.sessionRepo.Touch(ctx, sessionId, at); err != nil {
		p.logger.Warn("TutorPipeline", "Failed to touch session counters", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}
}
