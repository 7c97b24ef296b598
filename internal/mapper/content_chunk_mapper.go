package mapper

import (
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ContentChunkMapper struct{}

func NewContentChunkMapper() *ContentChunkMapper {
	return &ContentChunkMapper{}
}

func (m *ContentChunkMapper) ToEntity(c *model.ContentChunk) *entity.ContentChunk {
	if c == nil {
		return nil
	}

	return &entity.ContentChunk{
		Id:         c.Id,
		Text:       c.Text,
		Embedding:  c.Embedding.Slice(),
		ExamId:     c.ExamId,
		SubjectId:  c.SubjectId,
		ChapterId:  c.ChapterId,
		ChunkIndex: c.ChunkIndex,
		Metadata:   map[string]interface{}(c.Metadata),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ContentChunkMapper) ToModel(c *entity.ContentChunk) *model.ContentChunk {
	if c == nil {
		return nil
	}

	return &model.ContentChunk{
		Id:         c.Id,
		Text:       c.Text,
		Embedding:  pgvector.NewVector(c.Embedding),
		ExamId:     c.ExamId,
		SubjectId:  c.SubjectId,
		ChapterId:  c.ChapterId,
		ChunkIndex: c.ChunkIndex,
		Metadata:   datatypes.JSONMap(c.Metadata),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ContentChunkMapper) ToEntities(chunks []*model.ContentChunk) []*entity.ContentChunk {
	entities := make([]*entity.ContentChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *ContentChunkMapper) ToModels(chunks []*entity.ContentChunk) []*model.ContentChunk {
	models := make([]*model.ContentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
