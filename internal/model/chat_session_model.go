package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_active_session_per_chapter,where:status = 'active'"`
	ExamId       uuid.UUID `gorm:"type:uuid;not null;index"`
	SubjectId    uuid.UUID `gorm:"type:uuid;not null;index"`
	ChapterId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_active_session_per_chapter,where:status = 'active'"`
	ExamName     string    `gorm:"type:text"`
	SubjectName  string    `gorm:"type:text"`
	ChapterName  string    `gorm:"type:text"`
	Status       string    `gorm:"type:text;not null;default:'active';index"`
	MessageCount int       `gorm:"not null;default:0"`
	StartedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
