package bootstrap

import (
	"context"
	"log"
	"path/filepath"

	"live-assist-be/internal/config"
	"live-assist-be/internal/constant"
	"live-assist-be/internal/controller"
	"live-assist-be/internal/pkg/logger"
	"live-assist-be/internal/service"
	"live-assist-be/internal/websocket"
	"live-assist-be/pkg/assistant"
	"live-assist-be/pkg/autodetect"
	"live-assist-be/pkg/database"
	"live-assist-be/pkg/embedding"
	"live-assist-be/pkg/ingest"
	"live-assist-be/pkg/llm/factory"
	"live-assist-be/pkg/rerank"
	"live-assist-be/pkg/vectorindex"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	TopicController      controller.ITopicController
	KnowledgeController  controller.IKnowledgeController
	TranscriptController controller.ITranscriptController
	UploadController     controller.IUploadController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService
	ScannerService  service.IScannerService

	// WebSockets
	WebSocketHub *websocket.Hub
	Gateway      *websocket.Gateway

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding provider. The hash provider never fails, so every
	// remote provider is wrapped with it as the fallback. The fallback
	// is sized to the primary's vector width so a mid-run provider
	// failure cannot hand the index a mismatched dimensionality.
	onEmbedError := func(err error) {
		sysLogger.Warn("Embedding", "Provider failed, using hash fallback", map[string]interface{}{
			"error": err.Error(),
		})
	}

	var embedder embedding.Provider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		primary := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbeddingModel)
		embedder = embedding.NewFallbackProvider(
			primary,
			embedding.NewHashProvider(primary.Dimensions()),
			onEmbedError,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbeddingModel)
	case "gemini":
		primary := embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		embedder = embedding.NewFallbackProvider(
			primary,
			embedding.NewHashProvider(primary.Dimensions()),
			onEmbedError,
		)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	default:
		embedder = embedding.NewHashProvider(cfg.Ai.EmbeddingDim)
		log.Printf("[INFO] Using Embedding Provider: HASH (dim=%d)", cfg.Ai.EmbeddingDim)
	}

	// 4. Vector index backend
	var index vectorindex.Index
	switch cfg.Vector.Backend {
	case "pgvector":
		db, err := database.NewGormDBFromDSN(cfg.Vector.DSN)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to vector database: %v", err)
		}
		index, err = vectorindex.NewPgvectorIndex(db)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize pgvector index: %v", err)
		}
		log.Printf("[INFO] Using Vector Backend: PGVECTOR")
	case "memory":
		index = vectorindex.NewMemoryIndex()
		log.Printf("[INFO] Using Vector Backend: MEMORY")
	default:
		fileIndex, err := vectorindex.NewFileIndex(cfg.Vector.FilePath)
		if err != nil {
			log.Fatalf("[FATAL] Failed to open vector index file: %v", err)
		}
		index = fileIndex
		log.Printf("[INFO] Using Vector Backend: FILE (%s)", cfg.Vector.FilePath)
	}

	// 5. LLM provider chain
	llmProvider := factory.NewProvider(factory.Config{
		Provider:      cfg.Ai.LLMProvider,
		GeminiApiKey:  cfg.Keys.GoogleGemini,
		GeminiModel:   cfg.Ai.GeminiModel,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OllamaModel:   cfg.Ai.OllamaChatModel,
		OpenAIApiKey:  cfg.Keys.OpenAI,
		OpenAIBaseURL: cfg.Ai.OpenAIBaseURL,
		OpenAIModel:   cfg.Ai.OpenAIModel,
	})
	log.Printf("[INFO] Using LLM Provider: %s", cfg.Ai.LLMProvider)

	// 6. Ingestion
	registry, err := ingest.NewRegistry(filepath.Join(cfg.App.DataDir, "ingested_files.json"))
	if err != nil {
		log.Fatalf("[FATAL] Failed to load ingested-files registry: %v", err)
	}
	pipeline := ingest.NewPipeline(embedder, index, registry, cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap, sysLogger)

	// 7. Retrieval
	reranker := rerank.NewReranker(cfg.Rag.RerankerURL, func(err error) {
		sysLogger.Warn("Rerank", "Remote reranker failed, using lexical fallback", map[string]interface{}{
			"error": err.Error(),
		})
	})

	// 8. Redis (optional, cross-instance session fanout)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
			rdb = nil
		}
	}

	// 9. WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/session.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 10. Services
	publisherService := service.NewPublisherService(constant.TopicIngestFile, pubSub)
	consumerService := service.NewConsumerService(pubSub, constant.TopicIngestFile, pipeline, sysLogger)

	assistantStore := assistant.NewStore(filepath.Join(cfg.App.DataDir, "assistants.json"))
	topicService := service.NewTopicService(assistantStore)

	knowledgeService := service.NewKnowledgeService(
		embedder,
		index,
		reranker,
		pipeline,
		cfg.Rag.TopK,
		cfg.Rag.RerankWeight,
		sysLogger,
	)

	transcriptService := service.NewTranscriptService(
		cfg.Transcripts.Dir,
		registry,
		pipeline,
		publisherService,
		sysLogger,
	)
	scannerService := service.NewScannerService(transcriptService, cfg.Transcripts.ScanInterval, sysLogger)

	answerService := service.NewAnswerService(
		assistantStore,
		knowledgeService,
		llmProvider,
		cfg.Ai.GenerationTimeout,
		sysLogger,
	)

	uploadService := service.NewUploadService(cfg.App.DataDir, pipeline, sysLogger)

	// 11. Session gateway
	detector := autodetect.NewDetector(cfg.AutoDetect.MinWords, cfg.AutoDetect.Cooldown)
	gateway := websocket.NewGateway(
		wsHub,
		transcriptService,
		answerService,
		detector,
		cfg.AutoDetect.Enabled,
		cfg.Rag.ContextLines,
		wsLogger,
	)

	return &Container{
		TopicController:      controller.NewTopicController(topicService),
		KnowledgeController:  controller.NewKnowledgeController(knowledgeService),
		TranscriptController: controller.NewTranscriptController(transcriptService),
		UploadController:     controller.NewUploadController(uploadService),

		ConsumerService: consumerService,
		ScannerService:  scannerService,

		WebSocketHub: wsHub,
		Gateway:      gateway,

		Logger: sysLogger,
	}
}
