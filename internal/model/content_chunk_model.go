package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ContentChunk struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Text       string            `gorm:"type:text;not null"`
	Embedding  pgvector.Vector   `gorm:"type:vector(768)"` // text-embedding-004 / nomic-embed-text dimensionality
	ExamId     uuid.UUID         `gorm:"type:uuid;not null;index"`
	SubjectId  uuid.UUID         `gorm:"type:uuid;not null;index"`
	ChapterId  uuid.UUID         `gorm:"type:uuid;not null;index"`
	ChunkIndex int               `gorm:"default:0"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
}

func (ContentChunk) TableName() string {
	return "content_chunks"
}
