// Package retriever turns a student question into the ranked course
// material that grounds the tutor's answer.
package retriever

import (
	"context"
	"fmt"

	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/pkg/embedding"
	"ai-tutoring-be/pkg/tutor"

	"github.com/google/uuid"
)

type Retriever struct {
	embedder  embedding.EmbeddingProvider
	chunkRepo contract.ContentChunkRepository
	logger    logger.ILogger
	topK      int
	threshold float64
}

func NewRetriever(
	embedder embedding.EmbeddingProvider,
	chunkRepo contract.ContentChunkRepository,
	log logger.ILogger,
	topK int,
	threshold float64,
) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		embedder:  embedder,
		chunkRepo: chunkRepo,
		logger:    log,
		topK:      topK,
		threshold: threshold,
	}
}

// Retrieve embeds the question and searches the chapter's chunks by cosine
// similarity. Failures are wrapped with tutor.ErrRetrieval so the pipeline
// can recognize them as recoverable; an empty result is not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string, chapterId uuid.UUID) ([]*contract.ScoredContentChunk, error) {
	embRes, err := r.embedder.Generate(ctx, question, "RETRIEVAL_QUERY")
	if err != nil {
		r.logger.Warn("Retriever", "Question embedding failed", map[string]interface{}{
			"chapter_id": chapterId.String(),
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("%w: embed question: %v", tutor.ErrRetrieval, err)
	}

	chunks, err := r.chunkRepo.SearchSimilarWithScore(ctx, embRes.Embedding.Values, r.topK, chapterId, r.threshold)
	if err != nil {
		r.logger.Warn("Retriever", "Similarity search failed", map[string]interface{}{
			"chapter_id": chapterId.String(),
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("%w: similarity search: %v", tutor.ErrRetrieval, err)
	}

	return chunks, nil
}
