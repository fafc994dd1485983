package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/service"
	"github.com/jakeh134/motionflow/workflow"
)

// ReferenceHandler serves the lookup tables the dashboard filters and
// review forms are built from.
type ReferenceHandler struct {
	schemas *workflow.SchemaRegistry
}

func NewReferenceHandler(schemas *workflow.SchemaRegistry) *ReferenceHandler {
	return &ReferenceHandler{schemas: schemas}
}

type statusOption struct {
	Value model.Status `json:"value"`
	Label string       `json:"label"`
}

type reasonOption struct {
	Value workflow.RejectionReason `json:"value"`
	Label string                   `json:"label"`
}

func (h *ReferenceHandler) Get(c *gin.Context) {
	statuses := make([]statusOption, 0, len(model.AllStatuses))
	for _, s := range model.AllStatuses {
		statuses = append(statuses, statusOption{Value: s, Label: s.Label()})
	}
	reasons := make([]reasonOption, 0, len(workflow.RejectionReasons))
	for _, r := range workflow.RejectionReasons {
		reasons = append(reasons, reasonOption{Value: r, Label: r.Label()})
	}

	motionTypes := h.schemas.MotionTypes()
	schemas := make([]workflow.Schema, len(motionTypes))
	for i, mt := range motionTypes {
		schemas[i] = h.schemas.For(mt.Name)
	}

	c.JSON(http.StatusOK, gin.H{
		"counties":          service.DemoCounties,
		"courts":            service.DemoCourts,
		"case_types":        service.DemoCaseTypes,
		"motion_types":      motionTypes,
		"field_schemas":     schemas,
		"statuses":          statuses,
		"rejection_reasons": reasons,
	})
}
