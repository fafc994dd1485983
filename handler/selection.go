package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jakeh134/motionflow/middleware"
	"github.com/jakeh134/motionflow/service"
	"github.com/jakeh134/motionflow/workflow"
)

// SelectionHandler serves the dashboard checkboxes and bulk actions.
type SelectionHandler struct {
	dashboards *service.DashboardService
}

func NewSelectionHandler(dashboards *service.DashboardService) *SelectionHandler {
	return &SelectionHandler{dashboards: dashboards}
}

type ToggleRequest struct {
	ID string `json:"id" binding:"required"`
}

type BulkRejectRequest struct {
	Reason workflow.RejectionReason `json:"reason"`
	Notes  string                   `json:"notes"`
}

func (h *SelectionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboards.Current(middleware.GetSession(c)))
}

func (h *SelectionHandler) Toggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	c.JSON(http.StatusOK, h.dashboards.Toggle(middleware.GetSession(c), req.ID))
}

func (h *SelectionHandler) ToggleAll(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboards.ToggleAll(middleware.GetSession(c)))
}

func (h *SelectionHandler) Clear(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboards.ClearSelection(middleware.GetSession(c)))
}

func (h *SelectionHandler) Accept(c *gin.Context) {
	h.bulk(c, workflow.BulkRequest{Action: workflow.BulkAccept})
}

func (h *SelectionHandler) Reject(c *gin.Context) {
	var req BulkRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	h.bulk(c, workflow.BulkRequest{Action: workflow.BulkReject, Reason: req.Reason, Notes: req.Notes})
}

func (h *SelectionHandler) bulk(c *gin.Context, req workflow.BulkRequest) {
	res, err := h.dashboards.Bulk(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
