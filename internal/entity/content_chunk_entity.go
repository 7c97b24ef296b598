package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContentChunk is a unit of indexed course material. Chunks are written once
// by the ingestion path and never mutated afterwards.
type ContentChunk struct {
	Id         uuid.UUID
	Text       string
	Embedding  []float32
	ExamId     uuid.UUID
	SubjectId  uuid.UUID
	ChapterId  uuid.UUID
	ChunkIndex int
	Metadata   map[string]interface{}
	CreatedAt  time.Time
}
