package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/unitofwork"
	"ai-tutoring-be/pkg/embedding"
	"ai-tutoring-be/pkg/events"
	"ai-tutoring-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IIndexerService owns the chapter ingestion path: content is enqueued by
// the API, then chunked, embedded, and written as one atomic replacement
// of the chapter's previous chunks.
type IIndexerService interface {
	Enqueue(ctx context.Context, req *dto.IndexChapterRequest) error
	Consume(ctx context.Context) error
	Index(ctx context.Context, msg *dto.IndexChapterMessage) error
}

type indexerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	publisher         IPublisherService
	logger            logger.ILogger
	chunkSize         int
	chunkOverlap      int
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	publisher IPublisherService,
	log logger.ILogger,
	chunkSize int,
	chunkOverlap int,
) IIndexerService {
	return &indexerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		publisher:         publisher,
		logger:            log,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
	}
}

func (s *indexerService) Enqueue(ctx context.Context, req *dto.IndexChapterRequest) error {
	payload := dto.IndexChapterMessage{
		ExamId:    req.ExamId,
		SubjectId: req.SubjectId,
		ChapterId: req.ChapterId,
		Content:   req.Content,
		Metadata:  req.Metadata,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payloadBytes)
	return s.pubSub.Publish(s.topicName, msg)
}

func (s *indexerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IndexChapterMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("IndexerService", "Failed to unmarshal index message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads are never retriable
		return
	}

	if err := s.Index(ctx, &payload); err != nil {
		s.logger.Error("IndexerService", "Failed to index chapter", map[string]interface{}{
			"chapter_id": payload.ChapterId.String(),
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}

// Index splits the content, embeds every chunk, and replaces the chapter's
// previous chunks inside one transaction. A failed run leaves the old
// chunks untouched.
func (s *indexerService) Index(ctx context.Context, payload *dto.IndexChapterMessage) error {
	parts := utils.SplitText(payload.Content, s.chunkSize, s.chunkOverlap)

	now := time.Now()
	chunks := make([]*entity.ContentChunk, 0, len(parts))
	for i, part := range parts {
		embRes, err := s.embeddingProvider.Generate(ctx, part, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, &entity.ContentChunk{
			Id:         uuid.New(),
			Text:       part,
			Embedding:  embRes.Embedding.Values,
			ExamId:     payload.ExamId,
			SubjectId:  payload.SubjectId,
			ChapterId:  payload.ChapterId,
			ChunkIndex: i,
			Metadata:   payload.Metadata,
			CreatedAt:  now,
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	repo := uow.ContentChunkRepository()
	if err := repo.DeleteByChapterId(ctx, payload.ChapterId); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("delete previous chunks: %w", err)
	}
	if err := repo.CreateBulk(ctx, chunks); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("insert chunks: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("IndexerService", "Chapter content indexed", map[string]interface{}{
		"chapter_id":  payload.ChapterId.String(),
		"chunk_count": len(chunks),
	})
	s.publisher.PublishEvent(ctx, events.NewChapterIndexed(payload.ChapterId.String(), len(chunks)))

	return nil
}
