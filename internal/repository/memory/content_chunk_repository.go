package memory

import (
	"context"
	"sort"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/internal/repository/specification"
	"ai-tutoring-be/pkg/utils"

	"github.com/google/uuid"
)

type ContentChunkRepository struct {
	store *Store
}

func (r *ContentChunkRepository) CreateBulk(ctx context.Context, chunks []*entity.ContentChunk) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, chunk := range chunks {
		copied := *chunk
		r.store.chunks[chunk.Id] = &copied
	}
	return nil
}

func (r *ContentChunkRepository) DeleteByChapterId(ctx context.Context, chapterId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, chunk := range r.store.chunks {
		if chunk.ChapterId == chapterId {
			delete(r.store.chunks, id)
		}
	}
	return nil
}

func (r *ContentChunkRepository) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, chapterId uuid.UUID, threshold float64) ([]*contract.ScoredContentChunk, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.SearchErr != nil {
		return nil, r.store.SearchErr
	}

	var scored []*contract.ScoredContentChunk
	for _, chunk := range r.store.chunks {
		if chunk.ChapterId != chapterId {
			continue
		}
		similarity := utils.CosineSimilarity(embedding, chunk.Embedding)
		if similarity < threshold {
			continue
		}
		copied := *chunk
		scored = append(scored, &contract.ScoredContentChunk{
			Chunk:      &copied,
			Similarity: similarity,
		})
	}

	// similarity DESC, id ASC as tie-break, same ordering as the SQL path
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity == scored[j].Similarity {
			return scored[i].Chunk.Id.String() < scored[j].Chunk.Id.String()
		}
		return scored[i].Similarity > scored[j].Similarity
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (r *ContentChunkRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentChunk, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	q := buildQuery(specs...)

	var matches []*entity.ContentChunk
	for _, chunk := range r.store.chunks {
		if q.id != nil && chunk.Id != *q.id {
			continue
		}
		if q.chapterId != nil && chunk.ChapterId != *q.chapterId {
			continue
		}
		copied := *chunk
		matches = append(matches, &copied)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ChunkIndex < matches[j].ChunkIndex
	})

	return matches, nil
}

func (r *ContentChunkRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(matches)), nil
}
