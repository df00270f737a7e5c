package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pdfchat/internal/app"
	"pdfchat/internal/rag"
	"pdfchat/internal/transport/http/response"
)

// writeError maps the error taxonomy onto HTTP statuses. Generation failure is checked
// before transient backend failure because an exhausted transient generation error
// carries both.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, rag.ErrInvalidArgument):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, rag.ErrUnprocessableDocument):
		response.Error(c, http.StatusBadRequest, response.CodeUnprocessableDocument, "PDF contains no extractable text")
	case errors.Is(err, app.ErrDocumentNotFound):
		response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "document not found")
	case errors.Is(err, rag.ErrRateLimited):
		logger.Warn("backend rate limited", zap.Error(err))
		response.Error(c, http.StatusTooManyRequests, response.CodeRateLimited, "model rate limit reached, try again later")
	case errors.Is(err, rag.ErrGenerationFailed):
		logger.Error("generation failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.CodeGenerationFailed, "answer generation failed")
	case errors.Is(err, rag.ErrTransientBackend):
		logger.Error("backend unavailable", zap.Error(err))
		response.Error(c, http.StatusServiceUnavailable, response.CodeBackendUnavailable, "backend temporarily unavailable")
	default:
		logger.Error("request failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "internal server error")
	}
}
