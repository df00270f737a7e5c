package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pdfchat/internal/ai"
	"pdfchat/internal/app"
	"pdfchat/internal/cache"
	"pdfchat/internal/config"
	"pdfchat/internal/logging"
	"pdfchat/internal/metrics"
	mysqlClient "pdfchat/internal/platform/mysql"
	rabbitmqClient "pdfchat/internal/platform/rabbitmq"
	redisClient "pdfchat/internal/platform/redis"
	"pdfchat/internal/repository"
	"pdfchat/internal/vectorstore"
	"pdfchat/internal/worker"
)

type llmBackend interface {
	app.Embedder
	app.Generator
	io.Closer
}

type vectorBackend interface {
	app.VectorStore
	Health(ctx context.Context) error
	io.Closer
}

type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	RAG       *app.RAGService
	Documents *app.DocumentService // nil unless MySQL is enabled

	LLM            llmBackend
	Store          vectorBackend
	MySQL          *gorm.DB
	Redis          *redis.Client
	MQConn         *amqp.Connection
	DocumentWorker *worker.DocumentPersistWorker

	StartedAt time.Time
}

// New loads configuration and wires every backend. On error, whatever was already
// opened is closed again.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics.New(),
		StartedAt: time.Now(),
	}
	if err := a.wire(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg := a.Config

	llm, err := newLLM(ctx, cfg)
	if err != nil {
		return err
	}
	a.LLM = llm

	store, err := newVectorStore(cfg, a.Logger)
	if err != nil {
		return err
	}
	a.Store = store

	a.RAG = app.NewRAGService(llm, llm, store, app.RAGConfig{
		ChunkSize:       cfg.RAG.ChunkSize,
		ChunkOverlap:    cfg.RAG.ChunkOverlap,
		TopK:            cfg.RAG.TopK,
		MaxContextChars: cfg.RAG.MaxContextChars,
	}, a.Logger, a.Metrics)

	if !cfg.MySQL.Enabled {
		a.Logger.Info("document registry disabled")
		return nil
	}

	db, err := mysqlClient.New(ctx, mysqlClient.Options{DSN: cfg.MySQLDSN()})
	if err != nil {
		return err
	}
	a.MySQL = db
	repo := repository.NewRAGDocumentRepository(db)

	var docCache app.DocumentCache
	if cfg.Redis.Enabled {
		client, err := redisClient.New(ctx, redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		a.Redis = client
		docCache = cache.NewDocumentCache(client, time.Duration(cfg.Redis.DocumentTTLSeconds)*time.Second)
	}
	a.Documents = app.NewDocumentService(repo, docCache, store, a.Logger)

	if !cfg.RabbitMQ.Enabled {
		a.RAG.SetPublisher(app.NewDirectPublisher(repo))
		return nil
	}

	conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.DocumentQueue)
	if err != nil {
		return err
	}
	a.MQConn = conn
	// The worker outlives the bootstrap context.
	a.DocumentWorker = worker.NewDocumentPersistWorker(conn, repo, cfg.RabbitMQ.DocumentQueue, a.Logger)
	if err := a.DocumentWorker.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("start document worker failed: %w", err)
	}
	a.RAG.SetPublisher(rabbitmqClient.NewDocumentPublisher(conn, cfg.RabbitMQ.DocumentQueue))
	return nil
}

func newLLM(ctx context.Context, cfg *config.Config) (llmBackend, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return ai.NewOpenAIClient(ai.OpenAIConfig{
			BaseURL:        cfg.LLM.BaseURL,
			APIKey:         cfg.LLM.APIKey,
			EmbeddingModel: cfg.LLM.EmbeddingModel,
			ChatModel:      cfg.LLM.GenerationModel,
			Timeout:        time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		})
	default:
		return ai.NewGeminiClient(ctx, ai.GeminiConfig{
			APIKey:          cfg.LLM.APIKey,
			EmbeddingModel:  cfg.LLM.EmbeddingModel,
			GenerationModel: cfg.LLM.GenerationModel,
		})
	}
}

func newVectorStore(cfg *config.Config, logger *zap.Logger) (vectorBackend, error) {
	switch cfg.VectorStore.Backend {
	case config.BackendQdrant:
		q := cfg.VectorStore.Qdrant
		return vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
			Host:   q.Host,
			Port:   q.Port,
			APIKey: q.APIKey,
			UseTLS: q.UseTLS,
		}, logger)
	default:
		return vectorstore.NewChromemStore(vectorstore.ChromemConfig{
			Path:     cfg.VectorStore.Path,
			Compress: cfg.VectorStore.Compress,
		}, logger)
	}
}

// HealthChecks returns one probe per configured dependency.
func (a *App) HealthChecks() map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{
		"vectorstore": a.Store.Health,
	}
	if a.MySQL != nil {
		checks["mysql"] = func(ctx context.Context) error {
			return mysqlClient.Ping(ctx, a.MySQL)
		}
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}
	}
	if a.MQConn != nil {
		checks["rabbitmq"] = func(context.Context) error {
			if a.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	return checks
}

func (a *App) Close() error {
	var errs []error
	if a.DocumentWorker != nil {
		a.DocumentWorker.Close()
	}
	if a.MQConn != nil {
		errs = append(errs, a.MQConn.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.MySQL != nil {
		if sqlDB, err := a.MySQL.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.LLM != nil {
		errs = append(errs, a.LLM.Close())
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}
