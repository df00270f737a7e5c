package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"pdfchat/internal/rag"
)

const (
	metaPage    = "page"
	metaChunkID = "chunk_id"
)

var errNoEmbedder = errors.New("chromem store expects precomputed embeddings")

type ChromemConfig struct {
	// Path of the persistence directory. Empty keeps everything in memory.
	Path     string
	Compress bool
}

// ChromemStore is the embedded vector store backed by chromem-go.
type ChromemStore struct {
	db     *chromem.DB
	logger *zap.Logger
}

func NewChromemStore(cfg ChromemConfig, logger *zap.Logger) (*ChromemStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Path == "" {
		logger.Info("chromem store initialized in memory")
		return &ChromemStore{db: chromem.NewDB(), logger: logger}, nil
	}

	path, err := expandPath(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("expand chromem path failed: %w", err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create chromem directory %s failed: %w", path, err)
	}
	db, err := chromem.NewPersistentDB(path, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("open chromem db failed: %w", err)
	}

	logger.Info("chromem store initialized",
		zap.String("path", path),
		zap.Bool("compress", cfg.Compress),
	)
	return &ChromemStore{db: db, logger: logger}, nil
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// Vectors are always supplied by the caller; chromem must never embed on its own.
func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedder
}

func (s *ChromemStore) Upsert(ctx context.Context, namespace string, records []rag.Record) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	name := CollectionName(namespace)
	col, err := s.db.GetOrCreateCollection(name, nil, noEmbedding)
	if err != nil {
		return fmt.Errorf("get or create collection %s failed: %w", name, err)
	}

	docs := make([]chromem.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, chromem.Document{
			ID:      r.ID,
			Content: r.Text,
			Metadata: map[string]string{
				metaChunkID: r.ID,
				metaPage:    strconv.Itoa(r.Page),
			},
			Embedding: r.Vector,
		})
	}
	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("add documents to %s failed: %w", name, err)
	}

	s.logger.Debug("upserted chunks",
		zap.String("collection", name),
		zap.Int("count", len(docs)),
	)
	return nil
}

// Query returns up to k nearest chunks of one namespace. A namespace that was never
// written yields no results.
func (s *ChromemStore) Query(ctx context.Context, namespace string, vector []float32, k int) ([]rag.RetrievedChunk, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", rag.ErrInvalidArgument, k)
	}

	col := s.db.GetCollection(CollectionName(namespace), noEmbedding)
	if col == nil {
		return []rag.RetrievedChunk{}, nil
	}

	// chromem requires nResults <= document count
	count := col.Count()
	if count == 0 {
		return []rag.RetrievedChunk{}, nil
	}
	if k > count {
		k = count
	}

	results, err := col.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection %s failed: %w", col.Name, err)
	}

	out := make([]rag.RetrievedChunk, 0, len(results))
	for _, r := range results {
		page, _ := strconv.Atoi(r.Metadata[metaPage])
		out = append(out, rag.RetrievedChunk{
			ID:    r.ID,
			Text:  r.Content,
			Page:  page,
			Score: r.Similarity,
		})
	}
	return out, nil
}

func (s *ChromemStore) DeleteNamespace(_ context.Context, namespace string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	name := CollectionName(namespace)
	if s.db.GetCollection(name, noEmbedding) == nil {
		return nil
	}
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("delete collection %s failed: %w", name, err)
	}
	return nil
}

func (s *ChromemStore) Health(context.Context) error { return nil }

func (s *ChromemStore) Close() error { return nil }
