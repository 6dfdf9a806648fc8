package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ai-support-be/internal/config"
	"ai-support-be/internal/controller"
	"ai-support-be/internal/pkg/logger"
	"ai-support-be/internal/repository/memory"
	"ai-support-be/internal/service"
	"ai-support-be/pkg/catalog"
	"ai-support-be/pkg/database"
	"ai-support-be/pkg/embedding"
	"ai-support-be/pkg/llm/ollama"
	"ai-support-be/pkg/notify"
	"ai-support-be/pkg/orders"
	"ai-support-be/pkg/respond"
	"ai-support-be/pkg/retrieval"
	"ai-support-be/pkg/router"
	"ai-support-be/pkg/session"
)

type Container struct {
	Logger       logger.ILogger
	CatalogIndex *catalog.Index
	RedisClient  *redis.Client

	ChatController controller.IChatController

	// Background services, run by main.go.
	EscalationConsumer service.IEscalationConsumer

	NotifyPublisher *notify.Publisher
	PubSub          *gochannel.GoChannel
}

// NewContainer wires the whole pipeline. Startup fails only on programmer
// or configuration errors (bad catalog, bad database DSN); unreachable
// side infrastructure (NATS, Redis, Ollama) degrades with a warning.
func NewContainer(cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLog := log.New(os.Stdout, "", log.LstdFlags)

	// Catalog
	var db *gorm.DB
	var catalogSource catalog.Source
	if cfg.Catalog.Source == "postgres" {
		var err error
		db, err = database.NewGormDB(cfg.Database.Connection)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		catalogSource = catalog.NewGormSource(db)
	} else {
		catalogSource = catalog.NewFileSource(cfg.Catalog.Path)
	}

	entries, err := catalogSource.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	catalogIndex := catalog.NewIndex(entries, nil)
	log.Printf("[INFO] Catalog loaded: %d entries", len(entries))

	// Semantic index (optional)
	var semanticIndex retrieval.SemanticIndex
	var indexer service.EntryIndexer
	if cfg.Ai.SemanticIndex != "off" && cfg.Ai.EmbeddingProvider == "ollama" {
		provider := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
		switch cfg.Ai.SemanticIndex {
		case "pgvector":
			if db == nil {
				return nil, fmt.Errorf("semantic index 'pgvector' requires CATALOG_SOURCE=postgres")
			}
			idx := retrieval.NewPgvectorIndex(db, provider)
			semanticIndex, indexer = idx, idx
		case "memory":
			idx := retrieval.NewMemoryIndex(provider)
			semanticIndex, indexer = idx, idx
			if err := idx.IndexEntries(context.Background(), entries); err != nil {
				log.Printf("[WARN] Initial semantic indexing failed: %v", err)
			}
		}
		log.Printf("[INFO] Semantic index: %s (%s)", cfg.Ai.SemanticIndex, cfg.Ai.EmbeddingModel)
	}

	// Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// NATS
	notifyPub, err := notify.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS: %v", err)
		notifyPub = nil
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Pipeline components
	sessionRepo := memory.NewSessionRepository()
	store := session.NewStore(sessionRepo, pipelineLog)
	rt := router.New(pipelineLog)
	engine := retrieval.NewEngine(catalogIndex, semanticIndex, retrieval.DefaultConfig(), pipelineLog)

	llmProvider := ollama.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.LLMModel)
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	assembler := respond.NewAssembler(llmProvider, time.Duration(cfg.Ai.GenerateTimeout)*time.Second, pipelineLog)

	var orderService orders.Service
	if cfg.Orders.BaseURL != "" {
		orderService = orders.NewHTTPService(cfg.Orders.BaseURL, cfg.Orders.Key, cfg.Orders.Secret)
	}

	assistantService := service.NewAssistantService(
		catalogIndex,
		catalogSource,
		indexer,
		store,
		rt,
		engine,
		assembler,
		orderService,
		pubSub,
		sysLogger,
	)

	return &Container{
		Logger:             sysLogger,
		CatalogIndex:       catalogIndex,
		RedisClient:        rdb,
		ChatController:     controller.NewChatController(assistantService),
		EscalationConsumer: service.NewEscalationConsumer(pubSub, notifyPub, sysLogger),
		NotifyPublisher:    notifyPub,
		PubSub:             pubSub,
	}, nil
}
