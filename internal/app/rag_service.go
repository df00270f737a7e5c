package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pdfchat/internal/metrics"
	"pdfchat/internal/model"
	"pdfchat/internal/pkg/retry"
	"pdfchat/internal/rag"
)

const DefaultTopK = 4

type Embedder interface {
	Embed(ctx context.Context, text string, role rag.EmbedRole) ([]float32, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// VectorStore keeps one namespace per document. Query on a namespace that does not
// exist returns no results and no error.
type VectorStore interface {
	Upsert(ctx context.Context, namespace string, records []rag.Record) error
	Query(ctx context.Context, namespace string, vector []float32, k int) ([]rag.RetrievedChunk, error)
	DeleteNamespace(ctx context.Context, namespace string) error
}

// DocumentPublisher receives a registry record after every successful ingestion.
type DocumentPublisher interface {
	Publish(ctx context.Context, doc model.RAGDocument) error
}

// RAGConfig tunes the pipelines. Zero values fall back to the package defaults.
type RAGConfig struct {
	ChunkSize       int
	ChunkOverlap    int
	TopK            int
	MaxContextChars int

	EmbedPolicy *retry.Policy
	GenPolicy   *retry.Policy
	NewDocID    func() string
}

type RAGService struct {
	embedder  Embedder
	generator Generator
	store     VectorStore
	publisher DocumentPublisher

	chunkSize       int
	chunkOverlap    int
	topK            int
	maxContextChars int
	embedPolicy     retry.Policy
	genPolicy       retry.Policy
	newDocID        func() string

	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewRAGService(
	embedder Embedder,
	generator Generator,
	store VectorStore,
	cfg RAGConfig,
	logger *zap.Logger,
	m *metrics.Metrics,
) *RAGService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RAGService{
		embedder:        embedder,
		generator:       generator,
		store:           store,
		chunkSize:       valueOr(cfg.ChunkSize, rag.DefaultChunkSize),
		chunkOverlap:    cfg.ChunkOverlap,
		topK:            valueOr(cfg.TopK, DefaultTopK),
		maxContextChars: valueOr(cfg.MaxContextChars, rag.DefaultMaxContextChars),
		embedPolicy:     retry.Embedding(),
		genPolicy:       retry.Generation(),
		newDocID:        cfg.NewDocID,
		logger:          logger.Named("rag"),
		metrics:         m,
	}
	if cfg.ChunkSize <= 0 && cfg.ChunkOverlap == 0 {
		s.chunkOverlap = rag.DefaultChunkOverlap
	}
	if cfg.EmbedPolicy != nil {
		s.embedPolicy = *cfg.EmbedPolicy
	}
	if cfg.GenPolicy != nil {
		s.genPolicy = *cfg.GenPolicy
	}
	if s.newDocID == nil {
		s.newDocID = NewDocID
	}
	s.embedPolicy.OnRetry = s.logRetry("embed")
	s.genPolicy.OnRetry = s.logRetry("generate")
	return s
}

// SetPublisher attaches the document registry. Without one, ingestion only writes
// the vector store.
func (s *RAGService) SetPublisher(p DocumentPublisher) {
	s.publisher = p
}

// NewDocID mints a document id: a random UUID as 32 lowercase hex characters.
func NewDocID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func valueOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func (s *RAGService) logRetry(op string) func(err error, wait time.Duration) {
	return func(err error, wait time.Duration) {
		s.logger.Warn("backend call failed, retrying",
			zap.String("op", op),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
}

// IngestInput carries the extracted pages of one uploaded PDF.
type IngestInput struct {
	Filename string
	Pages    []rag.Page
}

type IngestResult struct {
	DocID      string `json:"doc_id"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunks"`
}

// Ingest chunks every page with text, embeds each chunk as a document, and writes
// all records to a namespace named after a freshly minted document id.
func (s *RAGService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if !rag.HasText(input.Pages) {
		s.metrics.ObserveIngestion(metrics.ResultUnprocessable, 0)
		return nil, fmt.Errorf("%w: no extractable text", rag.ErrUnprocessableDocument)
	}

	docID := s.newDocID()
	chunks, err := rag.ChunkPages(docID, input.Pages, s.chunkSize, s.chunkOverlap)
	if err != nil {
		// Chunk bounds come from server config, not from the upload.
		s.metrics.ObserveIngestion(metrics.ResultError, 0)
		return nil, fmt.Errorf("chunker misconfigured: %v", err)
	}
	if len(chunks) == 0 {
		s.metrics.ObserveIngestion(metrics.ResultUnprocessable, 0)
		return nil, fmt.Errorf("%w: no chunks produced", rag.ErrUnprocessableDocument)
	}

	records := make([]rag.Record, 0, len(chunks))
	for _, c := range chunks {
		vec, err := retry.Do(ctx, s.embedPolicy, rag.IsRetryable, func(ctx context.Context) ([]float32, error) {
			return s.embedder.Embed(ctx, c.Text, rag.RoleDocument)
		})
		if err != nil {
			s.metrics.ObserveIngestion(metrics.ResultError, 0)
			return nil, fmt.Errorf("embed chunk %s failed: %w", c.ID(), err)
		}
		records = append(records, rag.Record{
			ID:     c.ID(),
			Text:   c.Text,
			Page:   c.Page,
			Vector: vec,
		})
	}

	if err := s.store.Upsert(ctx, docID, records); err != nil {
		s.metrics.ObserveIngestion(metrics.ResultError, 0)
		return nil, fmt.Errorf("store chunks of %s failed: %w", docID, err)
	}

	result := &IngestResult{
		DocID:      docID,
		PageCount:  len(input.Pages),
		ChunkCount: len(records),
	}
	s.metrics.ObserveIngestion(metrics.ResultOK, len(records))
	s.logger.Info("document ingested",
		zap.String("doc_id", docID),
		zap.String("filename", input.Filename),
		zap.Int("pages", result.PageCount),
		zap.Int("chunks", result.ChunkCount),
	)

	s.publish(ctx, input.Filename, result)
	return result, nil
}

// The vector store is the source of truth; a registry failure is only logged.
func (s *RAGService) publish(ctx context.Context, filename string, res *IngestResult) {
	if s.publisher == nil {
		return
	}
	doc := model.RAGDocument{
		DocID:      res.DocID,
		Filename:   filename,
		PageCount:  res.PageCount,
		ChunkCount: res.ChunkCount,
		CreatedAt:  time.Now(),
	}
	if err := s.publisher.Publish(ctx, doc); err != nil {
		s.metrics.IncPublishErrors()
		s.logger.Error("publish document record failed",
			zap.String("doc_id", res.DocID),
			zap.Error(err),
		)
	}
}

type QueryInput struct {
	DocID    string
	Question string
	TopK     int
}

type QueryResult struct {
	Answer    string         `json:"answer"`
	Citations []rag.Citation `json:"citations"`
}

// Query answers a question from the chunks of a single document. Citations list
// every retrieved chunk, including those that did not fit the context budget.
func (s *RAGService) Query(ctx context.Context, input QueryInput) (*QueryResult, error) {
	start := time.Now()
	res, err := s.query(ctx, input)
	s.metrics.ObserveQuery(queryResult(err), time.Since(start))
	return res, err
}

func (s *RAGService) query(ctx context.Context, input QueryInput) (*QueryResult, error) {
	docID := strings.TrimSpace(input.DocID)
	question := strings.TrimSpace(input.Question)
	if docID == "" {
		return nil, fmt.Errorf("%w: doc_id is required", rag.ErrInvalidArgument)
	}
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", rag.ErrInvalidArgument)
	}
	k := input.TopK
	if k <= 0 {
		k = s.topK
	}

	vec, err := retry.Do(ctx, s.embedPolicy, rag.IsRetryable, func(ctx context.Context) ([]float32, error) {
		return s.embedder.Embed(ctx, question, rag.RoleQuery)
	})
	if err != nil {
		return nil, fmt.Errorf("embed question failed: %w", err)
	}

	retrieved, err := s.store.Query(ctx, docID, vec, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve chunks of %s failed: %w", docID, err)
	}

	assembled := rag.AssembleContext(retrieved, s.maxContextChars)
	prompt := rag.BuildPrompt(question, assembled)
	s.logger.Debug("context assembled",
		zap.String("doc_id", docID),
		zap.Int("retrieved", len(retrieved)),
		zap.Int("blocks", assembled.Blocks),
		zap.Bool("empty", assembled.Empty),
	)

	answer, err := retry.Do(ctx, s.genPolicy, rag.IsRetryable, func(ctx context.Context) (string, error) {
		return s.generator.Generate(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, rag.ErrRateLimited) || errors.Is(err, rag.ErrGenerationFailed) {
			return nil, fmt.Errorf("generate answer failed: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", rag.ErrGenerationFailed, err)
	}

	return &QueryResult{
		Answer:    strings.TrimSpace(answer),
		Citations: rag.Citations(retrieved),
	}, nil
}

func queryResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, rag.ErrInvalidArgument):
		return metrics.ResultInvalid
	case errors.Is(err, rag.ErrRateLimited):
		return metrics.ResultRateLimited
	case errors.Is(err, rag.ErrGenerationFailed):
		return metrics.ResultGenerationFail
	default:
		return metrics.ResultError
	}
}
