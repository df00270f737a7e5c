package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pdfchat/internal/model"
	"pdfchat/internal/rag"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.RAGDocument) error
	GetByDocID(ctx context.Context, docID string) (*model.RAGDocument, error)
	List(ctx context.Context, limit int) ([]model.RAGDocument, error)
	DeleteByDocID(ctx context.Context, docID string) error
}

type DocumentCache interface {
	Get(ctx context.Context, docID string) (*model.RAGDocument, bool, error)
	Set(ctx context.Context, doc *model.RAGDocument) error
	Delete(ctx context.Context, docID string) error
}

// DocumentService reads and removes entries of the document registry. Deleting a
// document also drops its vector store namespace.
type DocumentService struct {
	repo   DocumentRepository
	cache  DocumentCache
	store  VectorStore
	logger *zap.Logger
}

// NewDocumentService accepts a nil cache.
func NewDocumentService(repo DocumentRepository, cache DocumentCache, store VectorStore, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		repo:   repo,
		cache:  cache,
		store:  store,
		logger: logger.Named("documents"),
	}
}

func (s *DocumentService) List(ctx context.Context, limit int) ([]model.RAGDocument, error) {
	return s.repo.List(ctx, limit)
}

func (s *DocumentService) Get(ctx context.Context, docID string) (*model.RAGDocument, error) {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return nil, fmt.Errorf("%w: doc_id is required", rag.ErrInvalidArgument)
	}

	if s.cache != nil {
		doc, ok, err := s.cache.Get(ctx, docID)
		if err != nil {
			s.logger.Warn("document cache read failed", zap.String("doc_id", docID), zap.Error(err))
		} else if ok {
			return doc, nil
		}
	}

	doc, err := s.repo.GetByDocID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, doc); err != nil {
			s.logger.Warn("document cache write failed", zap.String("doc_id", docID), zap.Error(err))
		}
	}
	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, docID string) error {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return err
	}

	// Registry row first: a listed document always has its vectors.
	if err := s.repo.DeleteByDocID(ctx, doc.DocID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, doc.DocID); err != nil {
			s.logger.Warn("document cache delete failed", zap.String("doc_id", doc.DocID), zap.Error(err))
		}
	}
	if err := s.store.DeleteNamespace(ctx, doc.DocID); err != nil {
		s.logger.Error("vectors left behind for deleted document", zap.String("doc_id", doc.DocID), zap.Error(err))
		return fmt.Errorf("delete vectors of %s failed: %w", doc.DocID, err)
	}
	s.logger.Info("document deleted", zap.String("doc_id", doc.DocID))
	return nil
}

// DirectPublisher writes registry records synchronously when no message broker is
// configured.
type DirectPublisher struct {
	repo DocumentRepository
}

func NewDirectPublisher(repo DocumentRepository) *DirectPublisher {
	return &DirectPublisher{repo: repo}
}

func (p *DirectPublisher) Publish(ctx context.Context, doc model.RAGDocument) error {
	return p.repo.Create(ctx, &doc)
}
