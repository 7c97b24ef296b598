package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-tutoring-be/internal/constant"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/internal/repository/memory"
	"ai-tutoring-be/internal/repository/specification"
	"ai-tutoring-be/pkg/llm"
	"ai-tutoring-be/pkg/tutor"
	"ai-tutoring-be/pkg/tutor/history"
	"ai-tutoring-be/pkg/tutor/prompt"
	"ai-tutoring-be/pkg/tutor/session"

	"github.com/google/uuid"
)

type fakeGenerator struct {
	answer     string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	if len(messages) > 0 {
		f.lastPrompt = messages[len(messages)-1].Content
	}
	return f.answer, f.err
}

func (f *fakeGenerator) Generate(ctx context.Context, promptText string, opts ...llm.Option) (string, error) {
	f.lastPrompt = promptText
	return f.answer, f.err
}

type fakeRetriever struct {
	chunks []*contract.ScoredContentChunk
	err    error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string, chapterId uuid.UUID) ([]*contract.ScoredContentChunk, error) {
	return f.chunks, f.err
}

type testHarness struct {
	pipeline  *Pipeline
	store     *memory.Store
	generator *fakeGenerator
	retriever *fakeRetriever
	userId    uuid.UUID
	key       session.Key
}

func newHarness() *testHarness {
	store := memory.NewStore()
	generator := &fakeGenerator{answer: "the answer"}
	retriever := &fakeRetriever{}

	sessions := session.NewManager(store.SessionRepository(), store.MessageRepository(), logger.NopLogger{})
	loader := history.NewLoader(store.MessageRepository(), logger.NopLogger{}, 10)

	p := NewPipeline(
		sessions,
		retriever,
		loader,
		prompt.NewBuilder(),
		generator,
		store.MessageRepository(),
		store.SessionRepository(),
		logger.NopLogger{},
	)

	return &testHarness{
		pipeline:  p,
		store:     store,
		generator: generator,
		retriever: retriever,
		userId:    uuid.New(),
		key: session.Key{
			ExamId:      uuid.New(),
			SubjectId:   uuid.New(),
			ChapterId:   uuid.New(),
			ExamName:    "NEET",
			SubjectName: "Biology",
			ChapterName: "Genetics",
		},
	}
}

func (h *testHarness) sessionState(t *testing.T, sessionId uuid.UUID) (*entity.ChatSession, []*entity.ChatMessage) {
	t.Helper()
	sess, err := h.store.SessionRepository().FindOne(context.Background(), specification.ByID{ID: sessionId})
	if err != nil || sess == nil {
		t.Fatalf("read session back: (%v, %v)", sess, err)
	}
	messages, err := h.store.MessageRepository().FindRecent(context.Background(), sessionId, 100)
	if err != nil {
		t.Fatalf("read messages back: %v", err)
	}
	return sess, messages
}

func TestAskFullExchange(t *testing.T) {
	h := newHarness()
	h.retriever.chunks = []*contract.ScoredContentChunk{{
		Chunk:      &entity.ContentChunk{Id: uuid.New(), Text: "Mendel's laws describe inheritance."},
		Similarity: 0.9,
	}}

	result, err := h.pipeline.Ask(context.Background(), AskInput{
		UserId:   h.userId,
		Key:      h.key,
		Question: "What are Mendel's laws?",
	})
	if err != nil {
		t.Fatalf("ask: %v", err)
	}

	if result.Answer != "the answer" {
		t.Errorf("answer = %q", result.Answer)
	}
	if result.Degraded {
		t.Error("healthy exchange must not be degraded")
	}
	if len(result.Sources) != 1 {
		t.Errorf("got %d sources, want 1", len(result.Sources))
	}

	sess, messages := h.sessionState(t, result.SessionId)
	if len(messages) != 2 {
		t.Fatalf("got %d persisted messages, want user + assistant", len(messages))
	}
	if messages[0].Role != constant.ChatMessageRoleUser || messages[1].Role != constant.ChatMessageRoleAssistant {
		t.Error("messages must be persisted user first, assistant second")
	}
	if sess.MessageCount != 2 {
		t.Errorf("session message count = %d, want 2", sess.MessageCount)
	}
}

func TestAskGenerationFailureKeepsUserMessage(t *testing.T) {
	h := newHarness()
	h.generator.err = errors.New("model unavailable")

	_, err := h.pipeline.Ask(context.Background(), AskInput{
		UserId:   h.userId,
		Key:      h.key,
		Question: "What is a gene?",
	})
	if !errors.Is(err, tutor.ErrGeneration) {
		t.Fatalf("generation failure must classify as ErrGeneration, got: %v", err)
	}

	sess, err2 := h.store.SessionRepository().FindOne(context.Background())
	if err2 != nil || sess == nil {
		t.Fatalf("session must exist after failed exchange: (%v, %v)", sess, err2)
	}

	_, messages := h.sessionState(t, sess.Id)
	if len(messages) != 1 {
		t.Fatalf("got %d persisted messages, want only the user's", len(messages))
	}
	if messages[0].Role != constant.ChatMessageRoleUser {
		t.Error("the surviving message must be the user's")
	}
	if sess.MessageCount != 1 {
		t.Errorf("session message count = %d, want 1", sess.MessageCount)
	}
}

func TestAskDegradesOnRetrievalFailure(t *testing.T) {
	h := newHarness()
	h.retriever.err = tutor.ErrRetrieval

	result, err := h.pipeline.Ask(context.Background(), AskInput{
		UserId:   h.userId,
		Key:      h.key,
		Question: "q",
	})
	if err != nil {
		t.Fatalf("retrieval failure must not abort the exchange: %v", err)
	}

	if !result.Degraded {
		t.Error("result must be flagged degraded")
	}
	if len(result.Sources) != 0 {
		t.Error("degraded retrieval must yield no sources")
	}
	if result.Answer != "the answer" {
		t.Errorf("answer = %q, generation must still run", result.Answer)
	}
}

func TestAskDegradesOnHistoryFailure(t *testing.T) {
	h := newHarness()
	h.store.FindRecentErr = errors.New("history table gone")

	result, err := h.pipeline.Ask(context.Background(), AskInput{
		UserId:   h.userId,
		Key:      h.key,
		Question: "q",
	})
	if err != nil {
		t.Fatalf("history failure must not abort the exchange: %v", err)
	}
	if !result.Degraded {
		t.Error("result must be flagged degraded")
	}
}

func TestAskHistoryExcludesCurrentQuestion(t *testing.T) {
	h := newHarness()

	if _, err := h.pipeline.Ask(context.Background(), AskInput{
		UserId: h.userId, Key: h.key, Question: "first question",
	}); err != nil {
		t.Fatalf("first ask: %v", err)
	}

	if _, err := h.pipeline.Ask(context.Background(), AskInput{
		UserId: h.userId, Key: h.key, Question: "second question",
	}); err != nil {
		t.Fatalf("second ask: %v", err)
	}

	promptText := h.generator.lastPrompt
	if strings.Count(promptText, "second question") != 1 {
		t.Error("the current question must appear exactly once, in the question slot")
	}
	if strings.Count(promptText, "first question") != 1 {
		t.Error("the prior exchange must appear in the history slot")
	}
}

func TestAskUserPersistenceFailureIsFatal(t *testing.T) {
	h := newHarness()
	h.store.CreateMsgErr = errors.New("disk full")

	_, err := h.pipeline.Ask(context.Background(), AskInput{
		UserId: h.userId, Key: h.key, Question: "q",
	})
	if !errors.Is(err, tutor.ErrPersistence) {
		t.Errorf("user message persistence failure must classify as ErrPersistence, got: %v", err)
	}
}
