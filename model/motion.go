package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the review state of a motion.
type Status string

const (
	StatusPending           Status = "pending"
	StatusAccepted          Status = "accepted"
	StatusRejected          Status = "rejected"
	StatusFixRequested      Status = "fix_requested"
	StatusNeedsManualReview Status = "needs_manual_review"
	StatusAIError           Status = "ai_error"
	StatusNonEviction       Status = "non_eviction"
)

// AllStatuses lists the closed status set in display order.
var AllStatuses = []Status{
	StatusPending,
	StatusAccepted,
	StatusRejected,
	StatusFixRequested,
	StatusNeedsManualReview,
	StatusAIError,
	StatusNonEviction,
}

// statusAliases maps legacy vocabulary onto the closed set.
var statusAliases = map[string]Status{
	"pending_review": StatusNeedsManualReview,
}

// ParseStatus normalises s into the closed status set.
func ParseStatus(s string) (Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if alias, ok := statusAliases[s]; ok {
		return alias, nil
	}
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown motion status %q", s)
}

// Terminal reports whether no decision may move a motion out of s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Label is the human readable badge text for s.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	case StatusFixRequested:
		return "Fix Requested"
	case StatusNeedsManualReview:
		return "Needs Review"
	case StatusAIError:
		return "AI Error"
	case StatusNonEviction:
		return "Non-Eviction"
	default:
		return string(s)
	}
}

// ComplianceFlag is the result of one rule check against a motion.
type ComplianceFlag struct {
	Rule    string `json:"rule"`
	Pass    bool   `json:"pass"`
	Message string `json:"message,omitempty"`
}

// Citation is a legal citation found in the document and its verification.
type Citation struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	IsValid  bool   `json:"is_valid"`
	Reason   string `json:"reason,omitempty"`
	Location string `json:"location"`
}

// DecisionAction names the clerk action recorded in a Decision.
type DecisionAction string

const (
	ActionAccept       DecisionAction = "accept"
	ActionReject       DecisionAction = "reject"
	ActionRequestFix   DecisionAction = "request_fix"
	ActionManualReview DecisionAction = "manual_review"
)

// Decision is the audit record of the last status-changing clerk action.
type Decision struct {
	Action    DecisionAction `json:"action"`
	Reason    string         `json:"reason,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	ActorID   string         `json:"actor_id,omitempty"`
	DecidedAt time.Time      `json:"decided_at"`
}

// Motion is one filed document tracked through intake and clerk review.
type Motion struct {
	ID                  string             `json:"id"`
	CountyID            string             `json:"county_id"`
	CourtID             string             `json:"court_id"`
	BatchID             string             `json:"batch_id,omitempty"`
	UploadedByUserID    string             `json:"uploaded_by_user_id"`
	CaseNumber          string             `json:"case_number"`
	CaseTypeID          int                `json:"case_type_id"`
	CaseType            string             `json:"case_type"`
	MotionTypeID        int                `json:"motion_type_id"`
	MotionType          string             `json:"motion_type"`
	FilerName           string             `json:"filer_name"`
	Reason              string             `json:"reason,omitempty"`
	Status              Status             `json:"status"`
	ComplianceFlags     []ComplianceFlag   `json:"compliance_flags"`
	ExtractedData       map[string]string  `json:"extracted_data"`
	AIConfidence        map[string]float64 `json:"ai_confidence"`
	Citations           []Citation         `json:"citations,omitempty"`
	Summary             string             `json:"summary,omitempty"`
	DocumentStoragePath string             `json:"document_storage_path"`
	Decision            *Decision          `json:"decision,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// Confidence returns the AI confidence for field and whether it was evaluated.
func (m *Motion) Confidence(field string) (float64, bool) {
	c, ok := m.AIConfidence[field]
	return c, ok
}

// FailedFlags returns the compliance flags that did not pass.
func (m *Motion) FailedFlags() []ComplianceFlag {
	var failed []ComplianceFlag
	for _, f := range m.ComplianceFlags {
		if !f.Pass {
			failed = append(failed, f)
		}
	}
	return failed
}

// Clone returns a deep copy so callers can mutate without touching stored state.
func (m *Motion) Clone() *Motion {
	c := *m
	c.ComplianceFlags = append([]ComplianceFlag(nil), m.ComplianceFlags...)
	c.Citations = append([]Citation(nil), m.Citations...)
	if m.ExtractedData != nil {
		c.ExtractedData = make(map[string]string, len(m.ExtractedData))
		for k, v := range m.ExtractedData {
			c.ExtractedData[k] = v
		}
	}
	if m.AIConfidence != nil {
		c.AIConfidence = make(map[string]float64, len(m.AIConfidence))
		for k, v := range m.AIConfidence {
			c.AIConfidence[k] = v
		}
	}
	if m.Decision != nil {
		d := *m.Decision
		c.Decision = &d
	}
	return &c
}
