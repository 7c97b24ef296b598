package service

import (
	"context"
	"strings"
	"testing"

	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/memory"
	"ai-tutoring-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubEmbedder struct {
	calls int
}

func (s *stubEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	s.calls++
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0, 0}},
	}, nil
}

func newTestIndexer(store *memory.Store, embedder embedding.EmbeddingProvider) IIndexerService {
	return NewIndexerService(
		nil, // no bus: Index is called directly
		"INDEX_CHAPTER_CONTENT",
		memory.NewFactory(store),
		embedder,
		NewPublisherService(nil, logger.NopLogger{}),
		logger.NopLogger{},
		100,
		20,
	)
}

func TestIndexSplitsAndStoresChunks(t *testing.T) {
	store := memory.NewStore()
	embedder := &stubEmbedder{}
	indexer := newTestIndexer(store, embedder)

	chapterId := uuid.New()
	err := indexer.Index(context.Background(), &dto.IndexChapterMessage{
		ExamId:    uuid.New(),
		SubjectId: uuid.New(),
		ChapterId: chapterId,
		Content:   strings.Repeat("x", 250),
	})
	assert.NoError(t, err)

	chunks, err := store.ChunkRepository().FindAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, chunks, 3)
	assert.Equal(t, 3, embedder.calls)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, chapterId, chunk.ChapterId)
		assert.NotEmpty(t, chunk.Embedding)
	}
}

func TestIndexReplacesPreviousChunks(t *testing.T) {
	store := memory.NewStore()
	indexer := newTestIndexer(store, &stubEmbedder{})

	chapterId := uuid.New()
	msg := &dto.IndexChapterMessage{
		ExamId:    uuid.New(),
		SubjectId: uuid.New(),
		ChapterId: chapterId,
		Content:   strings.Repeat("old content. ", 30),
	}
	assert.NoError(t, indexer.Index(context.Background(), msg))

	msg.Content = "new short content"
	assert.NoError(t, indexer.Index(context.Background(), msg))

	chunks, err := store.ChunkRepository().FindAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, chunks, 1)
	assert.Equal(t, "new short content", chunks[0].Text)
}

func TestIndexLeavesOtherChaptersAlone(t *testing.T) {
	store := memory.NewStore()
	indexer := newTestIndexer(store, &stubEmbedder{})

	other := &dto.IndexChapterMessage{
		ExamId: uuid.New(), SubjectId: uuid.New(), ChapterId: uuid.New(),
		Content: "other chapter material",
	}
	assert.NoError(t, indexer.Index(context.Background(), other))

	mine := &dto.IndexChapterMessage{
		ExamId: uuid.New(), SubjectId: uuid.New(), ChapterId: uuid.New(),
		Content: "my chapter material",
	}
	assert.NoError(t, indexer.Index(context.Background(), mine))

	chunks, err := store.ChunkRepository().FindAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, chunks, 2)
}
