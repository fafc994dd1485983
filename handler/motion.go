package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakeh134/motionflow/middleware"
	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/apperr"
	"github.com/jakeh134/motionflow/pkg/logger"
	"github.com/jakeh134/motionflow/service"
	"github.com/jakeh134/motionflow/workflow"
)

type MotionHandler struct {
	motions    *service.MotionService
	dashboards *service.DashboardService
}

func NewMotionHandler(motions *service.MotionService, dashboards *service.DashboardService) *MotionHandler {
	return &MotionHandler{motions: motions, dashboards: dashboards}
}

func criteriaFrom(c *gin.Context) (workflow.Criteria, error) {
	crit, err := workflow.NewCriteria(c.Query("status"), c.Query("q"))
	if err != nil {
		return workflow.Criteria{}, apperr.NewValidation("status", c.Query("status"), err.Error())
	}
	return crit, nil
}

// List returns the court's motions matching ?status= and ?q=. The filter
// becomes the session's current dashboard view.
func (h *MotionHandler) List(c *gin.Context) {
	crit, err := criteriaFrom(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.dashboards.View(middleware.GetSession(c), crit))
}

// Export downloads the filtered list as CSV or XLSX
func (h *MotionHandler) Export(c *gin.Context) {
	sess := middleware.GetSession(c)
	crit, err := criteriaFrom(c)
	if err != nil {
		respondError(c, err)
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		respondError(c, apperr.NewValidation("format", c.Query("format"), err.Error()))
		return
	}

	motions := h.motions.List(sess, crit)
	var buf bytes.Buffer
	if err := service.WriteExport(&buf, format, motions); err != nil {
		respondError(c, err)
		return
	}

	filename := service.ExportFilename(format, time.Now())
	logger.Info(c.Request.Context(), "motions exported", "format", format, "rows", len(motions))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// motionResponse adds what the review page needs to render its buttons
type motionResponse struct {
	*model.Motion
	StatusLabel   string          `json:"status_label"`
	ReasonLabel   string          `json:"reason_label,omitempty"`
	Actions       map[string]bool `json:"actions"`
	LowConfidence []string        `json:"low_confidence_fields"`
}

func (h *MotionHandler) Get(c *gin.Context) {
	m, err := h.motions.Get(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := motionResponse{
		Motion:      m,
		StatusLabel: m.Status.Label(),
		Actions: map[string]bool{
			string(service.DocAccept):       workflow.CanTransition(m, model.StatusAccepted),
			string(service.DocReject):       workflow.CanTransition(m, model.StatusRejected),
			string(service.DocRequestFix):   workflow.CanTransition(m, model.StatusFixRequested),
			string(service.DocManualReview): workflow.CanTransition(m, model.StatusNeedsManualReview),
		},
		LowConfidence: h.motions.Validator().LowConfidenceFields(m),
	}
	if m.Decision != nil && m.Decision.Reason != "" {
		resp.ReasonLabel = workflow.RejectionReason(m.Decision.Reason).Label()
	}
	c.JSON(http.StatusOK, resp)
}

// Document returns a download link for the motion's source file
func (h *MotionHandler) Document(c *gin.Context) {
	url, err := h.motions.DocumentURL(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Fields returns the review form annotations. Unsaved edits may be passed as
// query parameters to re-evaluate the form.
func (h *MotionHandler) Fields(c *gin.Context) {
	var draft map[string]string
	if q := c.Request.URL.Query(); len(q) > 0 {
		draft = make(map[string]string, len(q))
		for k := range q {
			draft[k] = q.Get(k)
		}
	}

	hints, err := h.motions.Hints(c.Request.Context(), middleware.GetSession(c), c.Param("id"), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": hints})
}

type SaveFieldsRequest struct {
	Fields map[string]string `json:"fields" binding:"required"`
}

func (h *MotionHandler) SaveFields(c *gin.Context) {
	var req SaveFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	m, err := h.motions.SaveFields(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req.Fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Decide returns the handler for one review action.
func (h *MotionHandler) Decide(action service.DocumentAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ActionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
		}

		m, err := h.motions.Act(c.Request.Context(), middleware.GetSession(c), c.Param("id"), action, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, m)
	}
}
