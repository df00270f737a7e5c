package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pdfchat/internal/app"
	"pdfchat/internal/pkg/pdfextract"
	"pdfchat/internal/rag"
	"pdfchat/internal/transport/http/response"
)

// RAGPipeline is the part of app.RAGService the handler needs.
type RAGPipeline interface {
	Ingest(ctx context.Context, input app.IngestInput) (*app.IngestResult, error)
	Query(ctx context.Context, input app.QueryInput) (*app.QueryResult, error)
}

type RAGHandler struct {
	pipeline       RAGPipeline
	maxUploadBytes int64
	extract        func(io.Reader) ([]rag.Page, error)
	logger         *zap.Logger
}

type ChatRequest struct {
	DocID    string `json:"doc_id" binding:"required"`
	Question string `json:"question" binding:"required"`
	TopK     int    `json:"top_k" binding:"omitempty,min=1,max=50"`
}

func NewRAGHandler(pipeline RAGPipeline, maxUploadBytes int64, logger *zap.Logger) *RAGHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RAGHandler{
		pipeline:       pipeline,
		maxUploadBytes: maxUploadBytes,
		extract:        pdfextract.ExtractPages,
		logger:         logger,
	}
}

// Upload accepts a multipart form with a "file" field holding a PDF.
func (h *RAGHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		response.Error(c, http.StatusBadRequest, response.CodeUnsupportedFile, "only PDF files are allowed")
		return
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge,
			fmt.Sprintf("file too large (max %d MB)", h.maxUploadBytes>>20))
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	pages, err := h.extract(f)
	if err != nil {
		h.logger.Info("pdf rejected", zap.String("filename", file.Filename), zap.Error(err))
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to read PDF: "+err.Error())
		return
	}

	result, err := h.pipeline.Ingest(c.Request.Context(), app.IngestInput{
		Filename: file.Filename,
		Pages:    pages,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

func (h *RAGHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.pipeline.Query(c.Request.Context(), app.QueryInput{
		DocID:    req.DocID,
		Question: req.Question,
		TopK:     req.TopK,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}
