package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-tutoring-be/internal/constant"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/memory"
	"ai-tutoring-be/pkg/tutor"

	"github.com/google/uuid"
)

func newTestManager() (*Manager, *memory.Store) {
	store := memory.NewStore()
	return NewManager(store.SessionRepository(), store.MessageRepository(), logger.NopLogger{}), store
}

func testKey() Key {
	return Key{
		ExamId:      uuid.New(),
		SubjectId:   uuid.New(),
		ChapterId:   uuid.New(),
		ExamName:    "JEE",
		SubjectName: "Physics",
		ChapterName: "Kinematics",
	}
}

func TestEnsureCreatesThenReuses(t *testing.T) {
	m, _ := newTestManager()
	userId := uuid.New()
	key := testKey()

	first, err := m.Ensure(context.Background(), userId, key)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if first.Status != constant.SessionStatusActive {
		t.Errorf("new session status = %q, want active", first.Status)
	}

	second, err := m.Ensure(context.Background(), userId, key)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if second.Id != first.Id {
		t.Error("ensure must reuse the existing active session")
	}
}

func TestEnsureSeparatesChaptersAndUsers(t *testing.T) {
	m, _ := newTestManager()
	userId := uuid.New()
	keyA := testKey()
	keyB := testKey()

	a, _ := m.Ensure(context.Background(), userId, keyA)
	b, _ := m.Ensure(context.Background(), userId, keyB)
	if a.Id == b.Id {
		t.Error("different chapters must get different sessions")
	}

	otherUser, _ := m.Ensure(context.Background(), uuid.New(), keyA)
	if otherUser.Id == a.Id {
		t.Error("different users must get different sessions")
	}
}

func TestEnsureConcurrentConvergesOnOneSession(t *testing.T) {
	m, store := newTestManager()
	userId := uuid.New()
	key := testKey()

	const goroutines = 16
	sessions := make([]*entity.ChatSession, goroutines)
	errs := make([]error, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			sessions[i], errs[i] = m.Ensure(context.Background(), userId, key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}
		if sessions[i].Id != sessions[0].Id {
			t.Fatal("all concurrent ensures must converge on the same session")
		}
	}

	count, err := store.SessionRepository().Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("store holds %d sessions, want exactly 1", count)
	}
}

func TestEnsureCacheHitsDoNotShareState(t *testing.T) {
	m, _ := newTestManager()
	userId := uuid.New()
	key := testKey()

	// First ensure warms the cache; everything after runs the hot path.
	warm, err := m.Ensure(context.Background(), userId, key)
	if err != nil {
		t.Fatalf("warm ensure: %v", err)
	}

	const goroutines = 8
	sessions := make([]*entity.ChatSession, goroutines)
	errs := make([]error, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			sessions[i], errs[i] = m.Ensure(context.Background(), userId, key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}
		if sessions[i].Id != warm.Id {
			t.Fatal("cache hits must keep returning the same session")
		}
		if sessions[i] == warm {
			t.Fatal("a cache hit must return its own copy, not the cached struct")
		}
		for j := 0; j < i; j++ {
			if sessions[i] == sessions[j] {
				t.Fatal("two cache hits must not share one session struct")
			}
		}
	}
}

func TestStartFreshArchivesAndPurges(t *testing.T) {
	m, store := newTestManager()
	userId := uuid.New()
	key := testKey()

	old, err := m.Ensure(context.Background(), userId, key)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	err = store.MessageRepository().Create(context.Background(), &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: old.Id,
		UserId:        userId,
		Role:          constant.ChatMessageRoleUser,
		Text:          "old question",
		CreatedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("seed message: %v", err)
	}

	fresh, err := m.StartFresh(context.Background(), userId, key)
	if err != nil {
		t.Fatalf("start fresh: %v", err)
	}

	if fresh.Id == old.Id {
		t.Fatal("fresh session must be a new row, never the old one resurrected")
	}
	if fresh.Status != constant.SessionStatusActive {
		t.Errorf("fresh session status = %q, want active", fresh.Status)
	}
	if fresh.MessageCount != 0 {
		t.Errorf("fresh session message count = %d, want 0", fresh.MessageCount)
	}
	if old.UpdatedAt != nil && fresh.StartedAt.Before(*old.UpdatedAt) {
		t.Errorf("fresh session starts at %v, before the old session's last update %v",
			fresh.StartedAt, *old.UpdatedAt)
	}

	messages, err := store.MessageRepository().FindRecent(context.Background(), old.Id, 10)
	if err != nil {
		t.Fatalf("find recent: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("old session still has %d messages after purge", len(messages))
	}

	// A later Ensure continues the fresh session, not the archived one.
	again, err := m.Ensure(context.Background(), userId, key)
	if err != nil {
		t.Fatalf("ensure after fresh: %v", err)
	}
	if again.Id != fresh.Id {
		t.Error("ensure after fresh must return the new session")
	}
}

func TestStartFreshWithoutExistingSession(t *testing.T) {
	m, _ := newTestManager()
	userId := uuid.New()

	fresh, err := m.StartFresh(context.Background(), userId, testKey())
	if err != nil {
		t.Fatalf("start fresh: %v", err)
	}
	if fresh == nil || fresh.Status != constant.SessionStatusActive {
		t.Error("fresh start without a prior session must still create an active one")
	}
}

func TestEnsureDetectsStaleCache(t *testing.T) {
	m, store := newTestManager()
	userId := uuid.New()
	key := testKey()

	cached, err := m.Ensure(context.Background(), userId, key)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	// Archive behind the manager's back: the cached entry is now stale.
	if err := store.SessionRepository().Archive(context.Background(), cached.Id, time.Now()); err != nil {
		t.Fatalf("archive: %v", err)
	}

	next, err := m.Ensure(context.Background(), userId, key)
	if err != nil {
		t.Fatalf("ensure after archive: %v", err)
	}
	if next.Id == cached.Id {
		t.Error("a session archived elsewhere must not be served from the cache")
	}
}

func TestCurrentReturnsNilWithoutSession(t *testing.T) {
	m, _ := newTestManager()

	sess, err := m.Current(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess != nil {
		t.Error("current without a session must be (nil, nil)")
	}
}

func TestFindOwnedRejectsForeignSession(t *testing.T) {
	m, _ := newTestManager()
	owner := uuid.New()
	key := testKey()

	sess, err := m.Ensure(context.Background(), owner, key)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	_, err = m.FindOwned(context.Background(), uuid.New(), sess.Id)
	if !errors.Is(err, tutor.ErrAuth) {
		t.Errorf("foreign session access must classify as ErrAuth, got: %v", err)
	}

	found, err := m.FindOwned(context.Background(), owner, sess.Id)
	if err != nil || found == nil {
		t.Errorf("owner must see their session, got (%v, %v)", found, err)
	}
}
