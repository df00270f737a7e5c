package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pdfchat/internal/model"
	"pdfchat/internal/transport/http/response"
)

type DocumentRegistry interface {
	List(ctx context.Context, limit int) ([]model.RAGDocument, error)
	Get(ctx context.Context, docID string) (*model.RAGDocument, error)
	Delete(ctx context.Context, docID string) error
}

type DocumentHandler struct {
	registry DocumentRegistry
	logger   *zap.Logger
}

func NewDocumentHandler(registry DocumentRegistry, logger *zap.Logger) *DocumentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentHandler{registry: registry, logger: logger}
}

func (h *DocumentHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	docs, err := h.registry.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"documents": docs})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.registry.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"doc_id": c.Param("id"), "deleted": true})
}
