package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storyteller-server/internal/models"
	"storyteller-server/internal/service"
)

// handleServiceError отображает ошибки сервисного слоя в HTTP-статусы.
// Детали внешних ошибок (статус и сообщение AI-сервиса) попадают в поле
// message для диагностики.
func handleServiceError(c *gin.Context, err error, logger *zap.Logger) {
	var statusCode int
	var errResp models.ErrorResponse

	switch {
	case errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Error: "Bad request", Message: err.Error()}
	case errors.Is(err, models.ErrStoryNotFound), errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Error: "Story not found"}
	case errors.Is(err, service.ErrAIGenerationFailed),
		errors.Is(err, service.ErrAIUnavailable),
		errors.Is(err, service.ErrAIEmptyResponse):
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: "Failed to generate story", Message: err.Error()}
	case errors.Is(err, service.ErrSpeechSynthesis):
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: "Failed to convert text to speech", Message: err.Error()}
	default:
		logger.Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: "Internal server error"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
