package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jakeh134/motionflow/middleware"
	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/apperr"
	"github.com/jakeh134/motionflow/service"
)

type BatchHandler struct {
	batches *service.BatchStore
	motions *service.MotionStore
}

func NewBatchHandler(batches *service.BatchStore, motions *service.MotionStore) *BatchHandler {
	return &BatchHandler{batches: batches, motions: motions}
}

type batchResponse struct {
	*model.BatchUpload
	Progress int `json:"progress"`
}

// List returns the caller's uploads, newest first
func (h *BatchHandler) List(c *gin.Context) {
	sess := middleware.GetSession(c)
	batches := h.batches.ListByUser(sess.UserID)

	result := make([]batchResponse, len(batches))
	for i, b := range batches {
		result[i] = batchResponse{BatchUpload: b, Progress: b.Progress()}
	}
	c.JSON(http.StatusOK, gin.H{"batches": result})
}

// Get returns one batch of the caller's court with its motions
func (h *BatchHandler) Get(c *gin.Context) {
	sess := middleware.GetSession(c)
	id := c.Param("id")

	b, ok := h.batches.Get(id)
	if !ok {
		respondError(c, fmt.Errorf("batch %s: %w", id, apperr.ErrNotFound))
		return
	}
	if b.CourtID != sess.CourtID {
		respondError(c, fmt.Errorf("batch %s: %w", id, apperr.ErrForbidden))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch":   batchResponse{BatchUpload: b, Progress: b.Progress()},
		"motions": h.motions.ListByBatch(id),
	})
}
