package service

import (
	"context"
	"time"

	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/pkg/events"
	pkgNats "ai-tutoring-be/pkg/nats"
)

type IPublisherService interface {
	// PublishEvent sends an event to the bus. Best-effort: failures are
	// logged and never propagate into request handling.
	PublishEvent(ctx context.Context, event events.Event)
}

type publisherService struct {
	publisher *pkgNats.Publisher // nil when NATS is not configured
	logger    logger.ILogger
}

func NewPublisherService(publisher *pkgNats.Publisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		publisher: publisher,
		logger:    log,
	}
}

func (s *publisherService) PublishEvent(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.publisher.Publish(publishCtx, event); err != nil {
		s.logger.Warn("PublisherService", "Failed to publish event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
	}
}
