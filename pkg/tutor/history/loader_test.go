package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ai-tutoring-be/internal/constant"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/memory"
	"ai-tutoring-be/pkg/tutor"

	"github.com/google/uuid"
)

func seedMessages(t *testing.T, store *memory.Store, sessionId uuid.UUID, count int) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < count; i++ {
		err := store.MessageRepository().Create(context.Background(), &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			Role:          constant.ChatMessageRoleUser,
			Text:          fmt.Sprintf("message %d", i),
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}
}

func TestLoadReturnsNewestWindowInChronologicalOrder(t *testing.T) {
	store := memory.NewStore()
	sessionId := uuid.New()
	seedMessages(t, store, sessionId, 15)

	l := NewLoader(store.MessageRepository(), logger.NopLogger{}, 10)

	messages, err := l.Load(context.Background(), sessionId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(messages) != 10 {
		t.Fatalf("got %d messages, want window of 10", len(messages))
	}
	if messages[0].Text != "message 5" {
		t.Errorf("window must keep the newest messages, oldest kept is %q", messages[0].Text)
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			t.Fatal("messages must be in chronological order")
		}
	}
}

func TestLoadIsolatesSessions(t *testing.T) {
	store := memory.NewStore()
	mine := uuid.New()
	other := uuid.New()
	seedMessages(t, store, mine, 3)
	seedMessages(t, store, other, 5)

	l := NewLoader(store.MessageRepository(), logger.NopLogger{}, 10)

	messages, err := l.Load(context.Background(), mine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 3 {
		t.Errorf("got %d messages, want only this session's 3", len(messages))
	}
}

func TestLoadEmptySession(t *testing.T) {
	store := memory.NewStore()

	l := NewLoader(store.MessageRepository(), logger.NopLogger{}, 10)

	messages, err := l.Load(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("empty session is not an error, got: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("got %d messages, want 0", len(messages))
	}
}

func TestLoadWrapsReadFailure(t *testing.T) {
	store := memory.NewStore()
	store.FindRecentErr = errors.New("store offline")

	l := NewLoader(store.MessageRepository(), logger.NopLogger{}, 10)

	_, err := l.Load(context.Background(), uuid.New())
	if !errors.Is(err, tutor.ErrHistoryRead) {
		t.Errorf("read failure must classify as ErrHistoryRead, got: %v", err)
	}
}
