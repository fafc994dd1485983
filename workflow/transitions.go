// Package workflow holds the clerk review rules: status transitions, field
// edits, list filtering, selection with bulk dispatch and confidence hints.
// Everything here operates on in-memory motions and is free of I/O.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/apperr"
)

// RejectionReason is the closed set of reasons a clerk may reject with.
type RejectionReason string

const (
	ReasonMissingService   RejectionReason = "missing_service"
	ReasonFeeUnpaid        RejectionReason = "fee_unpaid"
	ReasonInvalidReason    RejectionReason = "invalid_reason"
	ReasonMissingSignature RejectionReason = "missing_signature"
	ReasonOther            RejectionReason = "other"
)

// RejectionReasons lists the reasons in display order.
var RejectionReasons = []RejectionReason{
	ReasonMissingService,
	ReasonFeeUnpaid,
	ReasonInvalidReason,
	ReasonMissingSignature,
	ReasonOther,
}

var rejectionReasons = map[RejectionReason]string{
	ReasonMissingService:   "Missing Proof of Service",
	ReasonFeeUnpaid:        "Fee Unpaid",
	ReasonInvalidReason:    "Invalid Reason",
	ReasonMissingSignature: "Missing Signature",
	ReasonOther:            "Other",
}

// Label returns the display text for r.
func (r RejectionReason) Label() string {
	return rejectionReasons[r]
}

// ValidateReason checks that reason is set and belongs to the closed set.
func ValidateReason(reason RejectionReason) error {
	if strings.TrimSpace(string(reason)) == "" {
		return apperr.NewValidation("reason", "", "rejection reason is required")
	}
	if _, ok := rejectionReasons[reason]; !ok {
		return apperr.NewValidation("reason", reason, "unknown rejection reason")
	}
	return nil
}

// Actor identifies who performed a transition for the audit record.
type Actor struct {
	UserID string
}

// Machine applies clerk decisions to motions. The zero value is usable.
type Machine struct {
	// Now overrides the clock in tests.
	Now func() time.Time
}

func (m Machine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

// Accept marks the motion accepted. Compliance flags are not consulted.
func (m Machine) Accept(mo *model.Motion, by Actor) error {
	return m.apply(mo, model.StatusAccepted, model.Decision{Action: model.ActionAccept, ActorID: by.UserID})
}

// Reject marks the motion rejected and records the reason and notes.
func (m Machine) Reject(mo *model.Motion, reason RejectionReason, notes string, by Actor) error {
	if err := ValidateReason(reason); err != nil {
		return err
	}
	return m.apply(mo, model.StatusRejected, model.Decision{
		Action:  model.ActionReject,
		Reason:  string(reason),
		Notes:   strings.TrimSpace(notes),
		ActorID: by.UserID,
	})
}

// RequestFix sends the motion back to the filer with notes on what to fix.
func (m Machine) RequestFix(mo *model.Motion, notes string, by Actor) error {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return apperr.NewValidation("notes", "", "fix request notes are required")
	}
	return m.apply(mo, model.StatusFixRequested, model.Decision{
		Action:  model.ActionRequestFix,
		Notes:   notes,
		ActorID: by.UserID,
	})
}

// RequestManualReview flags the motion for a second look by a clerk.
func (m Machine) RequestManualReview(mo *model.Motion, by Actor) error {
	return m.apply(mo, model.StatusNeedsManualReview, model.Decision{Action: model.ActionManualReview, ActorID: by.UserID})
}

// apply moves mo into target. Re-entering the current status is a no-op;
// leaving accepted or rejected is refused.
func (m Machine) apply(mo *model.Motion, target model.Status, d model.Decision) error {
	if mo.Status == target {
		return nil
	}
	if mo.Status.Terminal() {
		return fmt.Errorf("%w: motion %s is %s, cannot move to %s",
			apperr.ErrInvalidTransition, mo.ID, mo.Status, target)
	}

	now := m.now()
	d.DecidedAt = now
	mo.Status = target
	mo.Decision = &d
	mo.UpdatedAt = now
	return nil
}

// CanTransition reports whether a decision into target would change mo.
func CanTransition(mo *model.Motion, target model.Status) bool {
	return mo.Status != target && !mo.Status.Terminal()
}
