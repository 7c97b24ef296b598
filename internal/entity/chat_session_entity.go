package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	ExamId       uuid.UUID
	SubjectId    uuid.UUID
	ChapterId    uuid.UUID
	ExamName     string
	SubjectName  string
	ChapterName  string
	Status       string // active | completed | archived
	MessageCount int
	StartedAt    time.Time
	UpdatedAt    *time.Time
}
