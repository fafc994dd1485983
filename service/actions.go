package service

import (
	"fmt"
	"time"

	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/apperr"
	"github.com/jakeh134/motionflow/workflow"
)

// DocumentAction is a clerk review action addressed by URL segment.
type DocumentAction string

const (
	DocAccept       DocumentAction = "accept"
	DocReject       DocumentAction = "reject"
	DocRequestFix   DocumentAction = "fix"
	DocManualReview DocumentAction = "manual-review"
	DocSaveFields   DocumentAction = "fields"
)

// ActionRequest carries the optional inputs of a DocumentAction.
type ActionRequest struct {
	Reason workflow.RejectionReason `json:"reason"`
	Notes  string                   `json:"notes"`
	Fields map[string]string        `json:"fields"`
}

// applyAction runs one review action against mo in place.
func applyAction(m workflow.Machine, schemas *workflow.SchemaRegistry, mo *model.Motion,
	action DocumentAction, req ActionRequest, by workflow.Actor, now time.Time) error {
	switch action {
	case DocAccept:
		return m.Accept(mo, by)
	case DocReject:
		return m.Reject(mo, req.Reason, req.Notes, by)
	case DocRequestFix:
		return m.RequestFix(mo, req.Notes, by)
	case DocManualReview:
		return m.RequestManualReview(mo, by)
	case DocSaveFields:
		if err := checkEditable(schemas, mo, req.Fields); err != nil {
			return err
		}
		d := workflow.NewDraft(mo)
		for field, v := range req.Fields {
			d.Edit(field, v)
		}
		d.Save(now)
		return nil
	default:
		return apperr.NewValidation("action", string(action), "unknown action")
	}
}

func checkEditable(schemas *workflow.SchemaRegistry, mo *model.Motion, patch map[string]string) error {
	if len(patch) == 0 {
		return apperr.NewValidation("fields", nil, "no fields to save")
	}
	schema := schemas.For(mo.MotionType)
	for field, v := range patch {
		if _, ok := schema.Field(field); !ok {
			return apperr.NewValidation(field, v, fmt.Sprintf("field is not editable for %s", mo.MotionType))
		}
	}
	return nil
}
