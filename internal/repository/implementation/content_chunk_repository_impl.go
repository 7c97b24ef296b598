package implementation

import (
	"context"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/mapper"
	"ai-tutoring-be/internal/model"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ContentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentChunkMapper
}

func NewContentChunkRepository(db *gorm.DB) contract.ContentChunkRepository {
	return &ContentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentChunkMapper(),
	}
}

func (r *ContentChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ContentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.ContentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ContentChunkRepositoryImpl) DeleteByChapterId(ctx context.Context, chapterId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("chapter_id = ?", chapterId).
		Delete(&model.ContentChunk{}).Error
}

// SearchSimilarWithScore computes cosine similarity in the store.
// pgvector's <=> operator is cosine distance, so similarity is
// 1 - (embedding <=> query). The id ASC tie-break keeps equal-score
// results deterministic.
func (r *ContentChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, chapterId uuid.UUID, threshold float64) ([]*contract.ScoredContentChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.ContentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("content_chunks").
		Select("content_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("chapter_id = ?", chapterId).
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Order("id ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredContentChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredContentChunk{
			Chunk:      r.mapper.ToEntity(&res.ContentChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *ContentChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentChunk, error) {
	var models []*model.ContentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ContentChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ContentChunk{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
