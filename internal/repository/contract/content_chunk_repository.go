package contract

import (
	"context"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredContentChunk pairs a chunk with its cosine similarity to a query.
type ScoredContentChunk struct {
	Chunk      *entity.ContentChunk
	Similarity float64
}

type ContentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.ContentChunk) error
	DeleteByChapterId(ctx context.Context, chapterId uuid.UUID) error

	// SearchSimilarWithScore returns chunks of one chapter scored by cosine
	// similarity against the query embedding, keeping only similarity >=
	// threshold, ordered by similarity descending then id ascending, at most
	// `limit` rows.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, chapterId uuid.UUID, threshold float64) ([]*ScoredContentChunk, error)

	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
