package dto

import (
	"time"

	"github.com/google/uuid"
)

// AskRequest is one student question addressed to a chapter.
type AskRequest struct {
	Question  string    `json:"question" validate:"required,min=1,max=4000"`
	ExamId    uuid.UUID `json:"exam_id" validate:"required"`
	SubjectId uuid.UUID `json:"subject_id" validate:"required"`
	ChapterId uuid.UUID `json:"chapter_id" validate:"required"`

	// Display names are optional; assembly falls back to generic labels.
	ExamName    string `json:"exam_name"`
	SubjectName string `json:"subject_name"`
	ChapterName string `json:"chapter_name"`
}

type SourceResponse struct {
	ChunkId    uuid.UUID `json:"chunk_id"`
	Similarity float64   `json:"similarity"`
}

type AskResponse struct {
	SessionId       uuid.UUID        `json:"session_id"`
	Answer          string           `json:"answer"`
	Sources         []SourceResponse `json:"sources"`
	Degraded        bool             `json:"degraded"`
	DegradedReasons []string         `json:"degraded_reasons,omitempty"`
}

type StartFreshRequest struct {
	ExamId    uuid.UUID `json:"exam_id" validate:"required"`
	SubjectId uuid.UUID `json:"subject_id" validate:"required"`
	ChapterId uuid.UUID `json:"chapter_id" validate:"required"`

	ExamName    string `json:"exam_name"`
	SubjectName string `json:"subject_name"`
	ChapterName string `json:"chapter_name"`
}

type SessionResponse struct {
	Id           uuid.UUID  `json:"id"`
	ExamId       uuid.UUID  `json:"exam_id"`
	SubjectId    uuid.UUID  `json:"subject_id"`
	ChapterId    uuid.UUID  `json:"chapter_id"`
	ExamName     string     `json:"exam_name"`
	SubjectName  string     `json:"subject_name"`
	ChapterName  string     `json:"chapter_name"`
	Status       string     `json:"status"`
	MessageCount int        `json:"message_count"`
	StartedAt    time.Time  `json:"started_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type ChatMessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	SessionId uuid.UUID             `json:"session_id"`
	Messages  []ChatMessageResponse `json:"messages"`
}

// IndexChapterRequest replaces a chapter's indexed material with new content.
type IndexChapterRequest struct {
	ExamId    uuid.UUID              `json:"exam_id" validate:"required"`
	SubjectId uuid.UUID              `json:"subject_id" validate:"required"`
	ChapterId uuid.UUID              `json:"chapter_id" validate:"required"`
	Content   string                 `json:"content" validate:"required,min=1"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// IndexChapterMessage is the watermill payload of the ingestion topic.
type IndexChapterMessage struct {
	ExamId    uuid.UUID              `json:"exam_id"`
	SubjectId uuid.UUID              `json:"subject_id"`
	ChapterId uuid.UUID              `json:"chapter_id"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata"`
}
