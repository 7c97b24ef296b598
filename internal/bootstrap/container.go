package bootstrap

import (
	"log"

	"ai-tutoring-be/internal/config"
	"ai-tutoring-be/internal/controller"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/implementation"
	"ai-tutoring-be/internal/repository/unitofwork"
	"ai-tutoring-be/internal/service"
	"ai-tutoring-be/pkg/embedding"
	"ai-tutoring-be/pkg/llm/factory"
	"ai-tutoring-be/pkg/tutor/history"
	"ai-tutoring-be/pkg/tutor/pipeline"
	"ai-tutoring-be/pkg/tutor/prompt"
	"ai-tutoring-be/pkg/tutor/retriever"
	"ai-tutoring-be/pkg/tutor/session"

	pkgNats "ai-tutoring-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	TutorController   controller.ITutorController
	ContentController controller.IContentController

	// Background Services (Exposed for main.go to run)
	IndexerService service.IIndexerService

	// Shared infrastructure
	Logger    logger.ILogger
	Publisher *pkgNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	sessionRepo := implementation.NewChatSessionRepository(db)
	messageRepo := implementation.NewChatMessageRepository(db)
	chunkRepo := implementation.NewContentChunkRepository(db)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS is optional: the publisher service degrades to a no-op when
	// the bus is unreachable.
	natsPublisher, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("Warn: NATS unavailable, events disabled: %v", err)
		natsPublisher = nil
	}
	publisherService := service.NewPublisherService(natsPublisher, sysLogger)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Panicf("Unable to initialize LLM provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Tutoring Core
	sessionManager := session.NewManager(sessionRepo, messageRepo, sysLogger)
	contextRetriever := retriever.NewRetriever(
		embeddingProvider,
		chunkRepo,
		sysLogger,
		cfg.Tutor.TopK,
		cfg.Tutor.SimilarityThreshold,
	)
	historyLoader := history.NewLoader(messageRepo, sysLogger, cfg.Tutor.HistoryWindow)
	promptBuilder := prompt.NewBuilder()

	tutorPipeline := pipeline.NewPipeline(
		sessionManager,
		contextRetriever,
		historyLoader,
		promptBuilder,
		llmProvider,
		messageRepo,
		sessionRepo,
		sysLogger,
	)

	// 5. Services
	tutorService := service.NewTutorService(
		tutorPipeline,
		sessionManager,
		messageRepo,
		publisherService,
		sysLogger,
		cfg.Tutor.ExchangeTimeout,
	)
	indexerService := service.NewIndexerService(
		pubSub,
		cfg.Tutor.IndexTopicName,
		uowFactory,
		embeddingProvider,
		publisherService,
		sysLogger,
		cfg.Tutor.ChunkSize,
		cfg.Tutor.ChunkOverlap,
	)

	// 6. Controllers
	tutorController := controller.NewTutorController(tutorService)
	contentController := controller.NewContentController(indexerService)

	return &Container{
		TutorController:   tutorController,
		ContentController: contentController,
		IndexerService:    indexerService,
		Logger:            sysLogger,
		Publisher:         natsPublisher,
	}
}
