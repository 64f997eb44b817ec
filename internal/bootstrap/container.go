package bootstrap

import (
	"context"
	"fmt"

	"mindease-be/internal/config"
	"mindease-be/internal/controller"
	"mindease-be/internal/pkg/logger"
	"mindease-be/internal/repository/contract"
	"mindease-be/internal/repository/implementation"
	"mindease-be/internal/repository/memory"
	"mindease-be/internal/repository/unitofwork"
	"mindease-be/internal/service"
	"mindease-be/pkg/embedding"
	"mindease-be/pkg/events"
	"mindease-be/pkg/llm"
	"mindease-be/pkg/llm/factory"
	"mindease-be/pkg/rag/completion"
	"mindease-be/pkg/rag/executor"
	"mindease-be/pkg/rag/history"
	"mindease-be/pkg/rag/retriever"
	"mindease-be/pkg/store"

	pktNats "mindease-be/pkg/nats"

	"gorm.io/gorm"
)

// DocumentsDurable is the JetStream consumer that refreshes the document listing
const DocumentsDurable = "mindease-documents-listing"

type Container struct {
	Logger logger.ILogger

	// Controllers
	ChatbotController controller.IChatbotController
	InfoController    controller.IInfoController

	// Services
	ChatbotService service.IChatbotService
	IngestService  service.IIngestService

	Catalogue *llm.Catalogue
	DocChunks contract.DocChunkRepository
	Publisher events.Publisher

	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
}

func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	// 1. Repositories
	docChunkRepo := implementation.NewDocChunkRepository(db)
	sessionRepo := memory.NewSessionRepository(cfg.Rag.SessionTTL)

	// 2. Remote providers
	embeddingProvider, err := embedding.NewProvider(embeddingParams(cfg))
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"model":    cfg.Ai.EmbeddingModel,
	})

	llmProvider, err := factory.NewLLMProvider(llmParams(cfg))
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider":      cfg.Ai.LLMProvider,
		"default_model": cfg.Ai.DefaultModel,
	})

	// 3. Chat pipeline
	catalogue := llm.NewCatalogue(cfg.Ai.SupportedModels, cfg.Ai.ModelAliases)
	completer := completion.NewClient(llmProvider, catalogue, cfg.Ai.RequestTimeout, sysLogger)
	turnExecutor := executor.NewTurnExecutor(
		retriever.NewRetriever(embeddingProvider, docChunkRepo, sysLogger, cfg.Rag.DropLowestChunk),
		history.NewSummarizer(completer, sysLogger),
		completer,
		executor.Options{
			NumChunks:   cfg.Rag.NumChunks,
			SlideWindow: cfg.Rag.SlideWindow,
		},
		sysLogger,
	)

	// 4. Event bus (optional)
	c := &Container{
		Logger:    sysLogger,
		Catalogue: catalogue,
		DocChunks: docChunkRepo,
		Publisher: events.NopPublisher{},
	}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS publisher, events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			c.natsPub = natsPub
			c.Publisher = natsPub
		}
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS subscriber", map[string]interface{}{"error": err.Error()})
		} else {
			c.natsSub = natsSub
		}
	}

	// 5. Services
	c.ChatbotService = service.NewChatbotService(
		sessionRepo,
		turnExecutor,
		catalogue,
		docChunkRepo,
		c.Publisher,
		store.SessionConfig{
			Model:      cfg.Ai.DefaultModel,
			UseHistory: cfg.Rag.DefaultUseHistory,
			Debug:      cfg.Rag.DefaultDebug,
		},
		sysLogger,
	)
	c.IngestService = service.NewIngestService(
		service.NewPubSub(),
		unitofwork.NewRepositoryFactory(db),
		embeddingProvider,
		cfg.Ingest.ChunkSize,
		cfg.Ingest.ChunkOverlap,
		sysLogger,
	)

	// 6. Controllers
	c.ChatbotController = controller.NewChatbotController(c.ChatbotService)
	c.InfoController = controller.NewInfoController()

	return c, nil
}

// ListenForIngest drops the cached document listing whenever the ingest tool reports new chunks.
// It is a no-op without a NATS connection.
func (c *Container) ListenForIngest(ctx context.Context) error {
	if c.natsSub == nil {
		return nil
	}
	return c.natsSub.Subscribe(ctx, events.TypeDocumentsIngested, DocumentsDurable, func(ctx context.Context, event events.Event) error {
		c.Logger.Info("BOOTSTRAP", "Documents ingested, refreshing listing", event.Payload())
		c.ChatbotService.InvalidateDocuments()
		return nil
	})
}

func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	_ = c.Logger.Sync()
}

func embeddingParams(cfg *config.Config) embedding.Params {
	p := embedding.Params{
		Provider: cfg.Ai.EmbeddingProvider,
		Model:    cfg.Ai.EmbeddingModel,
		BaseURL:  cfg.Ai.OllamaBaseURL,
	}
	switch cfg.Ai.EmbeddingProvider {
	case "openai":
		p.BaseURL = cfg.Ai.OpenAIBaseURL
		p.APIKey = cfg.Ai.OpenAIAPIKey
	case "gemini":
		p.APIKey = cfg.Ai.GeminiAPIKey
	}
	return p
}

func llmParams(cfg *config.Config) factory.Params {
	p := factory.Params{
		Provider:  cfg.Ai.LLMProvider,
		ModelName: cfg.Ai.DefaultModel,
		BaseURL:   cfg.Ai.OllamaBaseURL,
	}
	if cfg.Ai.LLMProvider == "openai" {
		p.BaseURL = cfg.Ai.OpenAIBaseURL
		p.APIKey = cfg.Ai.OpenAIAPIKey
	}
	return p
}
