// Command ingest indexes a chapter's course material from a local file,
// bypassing the HTTP API. Useful for seeding content before the server
// is running.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"ai-tutoring-be/internal/config"
	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/unitofwork"
	"ai-tutoring-be/internal/service"
	"ai-tutoring-be/pkg/database"
	"ai-tutoring-be/pkg/embedding"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

func main() {
	filePath := flag.String("file", "", "path to the content file (required)")
	examId := flag.String("exam", "", "exam uuid (required)")
	subjectId := flag.String("subject", "", "subject uuid (required)")
	chapterId := flag.String("chapter", "", "chapter uuid (required)")
	flag.Parse()

	if *filePath == "" || *examId == "" || *subjectId == "" || *chapterId == "" {
		flag.Usage()
		os.Exit(2)
	}

	exam, err := uuid.Parse(*examId)
	if err != nil {
		log.Fatalf("invalid exam uuid: %v", err)
	}
	subject, err := uuid.Parse(*subjectId)
	if err != nil {
		log.Fatalf("invalid subject uuid: %v", err)
	}
	chapter, err := uuid.Parse(*chapterId)
	if err != nil {
		log.Fatalf("invalid chapter uuid: %v", err)
	}

	content, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("read content file: %v", err)
	}

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}

	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, false)
	uowFactory := unitofwork.NewRepositoryFactory(db)
	publisher := service.NewPublisherService(nil, sysLogger)

	indexer := service.NewIndexerService(
		nil, // no event bus: this path indexes synchronously
		cfg.Tutor.IndexTopicName,
		uowFactory,
		embeddingProvider,
		publisher,
		sysLogger,
		cfg.Tutor.ChunkSize,
		cfg.Tutor.ChunkOverlap,
	)

	color.Cyan("Indexing chapter %s from %s (%d bytes)...", chapter, *filePath, len(content))

	err = indexer.Index(context.Background(), &dto.IndexChapterMessage{
		ExamId:    exam,
		SubjectId: subject,
		ChapterId: chapter,
		Content:   string(content),
	})
	if err != nil {
		color.Red("Indexing failed: %v", err)
		os.Exit(1)
	}

	color.Green("Chapter %s indexed.", chapter)
}
