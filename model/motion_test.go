package model

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{"ACCEPTED", StatusAccepted, false},
		{" fix_requested ", StatusFixRequested, false},
		{"pending_review", StatusNeedsManualReview, false},
		{"non_eviction", StatusNonEviction, false},
		{"archived", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range AllStatuses {
		want := s == StatusAccepted || s == StatusRejected
		if s.Terminal() != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, s.Terminal(), want)
		}
	}
}

func TestMotionCloneIsDeep(t *testing.T) {
	m := &Motion{
		ID:              "m1",
		Status:          StatusPending,
		ExtractedData:   map[string]string{"filerName": "John Doe"},
		AIConfidence:    map[string]float64{"filerName": 0.92},
		ComplianceFlags: []ComplianceFlag{{Rule: "Signature Presence", Pass: true}},
		Decision:        &Decision{Action: ActionAccept, DecidedAt: time.Now()},
	}

	c := m.Clone()
	c.ExtractedData["filerName"] = "Jane"
	c.AIConfidence["filerName"] = 0.1
	c.ComplianceFlags[0].Pass = false
	c.Decision.Notes = "changed"

	if m.ExtractedData["filerName"] != "John Doe" {
		t.Error("Clone shares ExtractedData")
	}
	if m.AIConfidence["filerName"] != 0.92 {
		t.Error("Clone shares AIConfidence")
	}
	if !m.ComplianceFlags[0].Pass {
		t.Error("Clone shares ComplianceFlags")
	}
	if m.Decision.Notes != "" {
		t.Error("Clone shares Decision")
	}
}

func TestConfidenceAbsentIsNotZero(t *testing.T) {
	m := &Motion{AIConfidence: map[string]float64{"caseNumber": 0}}

	if c, ok := m.Confidence("caseNumber"); !ok || c != 0 {
		t.Errorf("Expected evaluated zero confidence, got %v %v", c, ok)
	}
	if _, ok := m.Confidence("filerName"); ok {
		t.Error("Expected filerName to be not evaluated")
	}
}

func TestFailedFlags(t *testing.T) {
	m := &Motion{ComplianceFlags: []ComplianceFlag{
		{Rule: "Signature Presence", Pass: true},
		{Rule: "Proof of Service", Pass: false, Message: "No proof of service"},
	}}

	failed := m.FailedFlags()
	if len(failed) != 1 || failed[0].Rule != "Proof of Service" {
		t.Errorf("Unexpected failed flags %+v", failed)
	}
}
