package bootstrap

import (
	"context"
	"log"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/controller"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/internal/service"
	"ai-chat-be/pkg/embedding"
	"ai-chat-be/pkg/llm/deepseek"
	pktNats "ai-chat-be/pkg/nats"
	"ai-chat-be/pkg/rag"
	"ai-chat-be/pkg/title"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	IndexerService service.IIndexerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingProvider := embedding.NewOllamaProvider(
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
		cfg.Ai.EmbeddingDimension,
	)
	embeddingGenerator := embedding.NewGenerator(embeddingProvider)
	// Warm up in the background; first chat requests wait on it if needed.
	go func() {
		if err := embeddingGenerator.Init(context.Background()); err != nil {
			log.Printf("[WARN] Embedding model warm-up failed: %v", err)
		}
	}()

	llmProvider := deepseek.NewDeepSeekProvider(
		cfg.Keys.DeepSeek,
		cfg.Ai.DeepSeekBaseURL,
		cfg.Ai.DeepSeekModel,
	)
	log.Printf("[INFO] Using LLM Provider: DeepSeek (%s)", cfg.Ai.DeepSeekModel)

	titleGenerator := title.NewGenerator(llmProvider)

	searcher := &turnEmbeddingSearcher{uowFactory: uowFactory}
	retriever := rag.NewRetriever(embeddingGenerator, searcher, cfg.Ai.RetrievalTopK)

	// In-Memory Session State
	sessionState := memory.NewSessionStateRepository()

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.IndexTurnTopic, pubSub)
	indexerService := service.NewIndexerService(
		pubSub,
		cfg.Keys.IndexTurnTopic,
		uowFactory,
		embeddingGenerator,
		sysLogger,
	)

	authService := service.NewAuthService(uowFactory, natsPub)
	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		retriever,
		titleGenerator,
		sessionState,
		publisherService,
		natsPub,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		AuthController: controller.NewAuthController(authService),
		ChatController: controller.NewChatController(chatService, rdb),

		IndexerService: indexerService,
		Logger:         sysLogger,
	}
}

// turnEmbeddingSearcher adapts the embeddings repository to the retriever's
// read-only view.
type turnEmbeddingSearcher struct {
	uowFactory unitofwork.RepositoryFactory
}

func (s *turnEmbeddingSearcher) SearchSimilar(ctx context.Context, vector []float32, limit int, userId uuid.UUID) ([]rag.ScoredText, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	scored, err := uow.TurnEmbeddingRepository().SearchSimilarWithScore(ctx, vector, limit, userId)
	if err != nil {
		return nil, err
	}

	return toScoredTexts(scored), nil
}

func toScoredTexts(scored []*contract.ScoredTurnEmbedding) []rag.ScoredText {
	results := make([]rag.ScoredText, 0, len(scored))
	for _, s := range scored {
		if s.Embedding == nil {
			continue
		}
		results = append(results, rag.ScoredText{
			Text:       s.Embedding.SourceText,
			Similarity: s.Similarity,
		})
	}
	return results
}
