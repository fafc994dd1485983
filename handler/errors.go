package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jakeh134/motionflow/pkg/apperr"
	"github.com/jakeh134/motionflow/pkg/logger"
	"github.com/jakeh134/motionflow/service"
)

// respondError maps a service error onto a status code and JSON body.
func respondError(c *gin.Context, err error) {
	var ve apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Record belongs to another court"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperr.ErrInvalidTransition), errors.Is(err, apperr.ErrTaskNotReviewable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperr.IsRetryable(err), errors.Is(err, service.ErrStoreFull):
		logger.Warn(c.Request.Context(), "request failed, retryable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable, please retry"})
	default:
		logger.Error(c.Request.Context(), "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
