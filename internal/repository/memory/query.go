package memory

import (
	"ai-tutoring-be/internal/repository/specification"

	"github.com/google/uuid"
)

// query is the in-memory interpretation of the specification pattern.
// Only the specifications the tutoring code actually uses are handled.
type query struct {
	id        *uuid.UUID
	userId    *uuid.UUID
	chapterId *uuid.UUID
	sessionId *uuid.UUID
	status    *string
	orderBy   []specification.OrderBy
	limit     int
	offset    int
}

func buildQuery(specs ...specification.Specification) query {
	q := query{limit: -1}
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			id := s.ID
			q.id = &id
		case specification.UserOwnedBy:
			userId := s.UserID
			q.userId = &userId
		case specification.ByChapterID:
			chapterId := s.ChapterID
			q.chapterId = &chapterId
		case specification.ByChatSessionID:
			sessionId := s.ChatSessionID
			q.sessionId = &sessionId
		case specification.ByStatus:
			status := s.Status
			q.status = &status
		case specification.OrderBy:
			q.orderBy = append(q.orderBy, s)
		case specification.Pagination:
			q.limit = s.Limit
			q.offset = s.Offset
		}
	}
	return q
}
