package routes

import (
	"context"
	"errors"
	"net/http"

	"fdv-chatbot-platform/internal/ai"
	"fdv-chatbot-platform/internal/documents"
	"fdv-chatbot-platform/internal/index"
	"fdv-chatbot-platform/internal/logger"
	"fdv-chatbot-platform/internal/queue"
	"fdv-chatbot-platform/internal/retrieval"
	"fdv-chatbot-platform/middleware"
	"fdv-chatbot-platform/services"
	"fdv-chatbot-platform/utils"

	"github.com/gin-gonic/gin"
)

// respondWithServiceError maps domain errors onto the error envelope.
func respondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, documents.ErrVendorNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "vendor_not_found", "Vendor has no document collection", nil)
	case errors.Is(err, documents.ErrInvalidName):
		utils.RespondWithError(c, http.StatusBadRequest, "invalid_name", err.Error(), nil)
	case errors.Is(err, documents.ErrUnsupportedFormat):
		utils.RespondWithError(c, http.StatusUnsupportedMediaType, "unsupported_format", err.Error(), nil)
	case errors.Is(err, documents.ErrFileTooLarge):
		utils.RespondWithError(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), nil)
	case errors.Is(err, index.ErrIndexNotFound):
		utils.RespondWithNotFound(c, "Index not found")
	case errors.Is(err, retrieval.ErrInvalidParameter):
		utils.RespondWithInternalError(c, "Invalid chunking configuration", nil)
	case errors.Is(err, services.ErrEmptyQuestion):
		utils.RespondWithBadRequest(c, "Question is empty", nil)
	case errors.Is(err, services.ErrTranscriptsDisabled):
		utils.RespondWithServiceUnavailable(c, "Conversation history is not enabled")
	case errors.Is(err, queue.ErrRebuildPending):
		utils.RespondWithError(c, http.StatusConflict, "rebuild_pending", "A rebuild of this vendor is already queued", nil)
	case errors.Is(err, ai.ErrQuotaExceeded):
		utils.RespondWithError(c, http.StatusTooManyRequests, "ai_quota_exceeded", "The assistant is busy. Please try again later.", nil)
	case errors.Is(err, context.DeadlineExceeded):
		utils.RespondWithError(c, http.StatusGatewayTimeout, "timeout", "The request timed out", nil)
	case errors.Is(err, services.ErrAnswerFailed):
		logger.Error("Answer generation failed", "request_id", middleware.GetRequestID(c), "error", err)
		utils.RespondWithBadGateway(c, "ai_generation_error", "Failed to generate an answer")
	default:
		logger.Error("Request failed", "request_id", middleware.GetRequestID(c), "path", c.FullPath(), "error", err)
		utils.RespondWithInternalError(c, "Internal server error", nil)
	}
}

func respondWithBindError(c *gin.Context, err error) {
	utils.RespondWithError(c, http.StatusBadRequest, "invalid_input", "Invalid request data", gin.H{"error": err.Error()})
}
