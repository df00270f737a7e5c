package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pdfchat/internal/model"
)

const defaultListLimit = 100

type RAGDocumentRepository struct {
	db *gorm.DB
}

func NewRAGDocumentRepository(db *gorm.DB) *RAGDocumentRepository {
	return &RAGDocumentRepository{db: db}
}

func (r *RAGDocumentRepository) Create(ctx context.Context, doc *model.RAGDocument) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("create rag document failed: %w", err)
	}
	return nil
}

// GetByDocID returns nil, nil when no document has that id.
func (r *RAGDocumentRepository) GetByDocID(ctx context.Context, docID string) (*model.RAGDocument, error) {
	var doc model.RAGDocument
	if err := r.db.WithContext(ctx).Where("doc_id = ?", docID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rag document failed: %w", err)
	}
	return &doc, nil
}

// List returns the newest documents first.
func (r *RAGDocumentRepository) List(ctx context.Context, limit int) ([]model.RAGDocument, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var list []model.RAGDocument
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list rag documents failed: %w", err)
	}
	return list, nil
}

func (r *RAGDocumentRepository) DeleteByDocID(ctx context.Context, docID string) error {
	if err := r.db.WithContext(ctx).Where("doc_id = ?", docID).Delete(&model.RAGDocument{}).Error; err != nil {
		return fmt.Errorf("delete rag document failed: %w", err)
	}
	return nil
}
