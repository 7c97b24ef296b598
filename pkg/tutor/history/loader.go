// Package history loads the recent conversation window for a session.
package history

import (
	"context"
	"fmt"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/pkg/tutor"

	"github.com/google/uuid"
)

type Loader struct {
	messageRepo contract.ChatMessageRepository
	logger      logger.ILogger
	window      int
}

func NewLoader(messageRepo contract.ChatMessageRepository, log logger.ILogger, window int) *Loader {
	if window <= 0 {
		window = 10
	}
	return &Loader{
		messageRepo: messageRepo,
		logger:      log,
		window:      window,
	}
}

// Load returns the session's newest messages up to the window size, in
// chronological order. Read failures are wrapped with tutor.ErrHistoryRead
// so the pipeline can degrade to an empty history.
func (l *Loader) Load(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	messages, err := l.messageRepo.FindRecent(ctx, sessionId, l.window)
	if err != nil {
		l.logger.Warn("HistoryLoader", "History read failed", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", tutor.ErrHistoryRead, err)
	}
	return messages, nil
}
