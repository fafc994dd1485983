package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/apperr"
)

// ExtractRequest identifies one stored document to run extraction on.
type ExtractRequest struct {
	FileName    string
	ContentType string
	ObjectName  string
	Index       int // position of the file within its batch
}

// Extractor turns a stored document into a draft motion: extracted fields,
// per-field confidence, compliance flags and citation checks. The returned
// motion carries no id, court or batch; intake assigns those.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (*model.Motion, error)
}

var errUnreadable = errors.New("document could not be read")

// MockExtractor simulates AI extraction by cycling through canned motions.
type MockExtractor struct {
	templates []*model.Motion
	delay     time.Duration
	fail      func(ExtractRequest) bool
}

// NewMockExtractor uses the Travis demo motions as templates. Files whose
// name contains "corrupt" or "unreadable" fail extraction.
func NewMockExtractor(delay time.Duration) *MockExtractor {
	var templates []*model.Motion
	for _, m := range DemoMotions() {
		if m.CourtID == CourtTravis {
			templates = append(templates, m)
		}
	}
	return &MockExtractor{
		templates: templates,
		delay:     delay,
		fail:      unreadableName,
	}
}

// WithFailure replaces the failure predicate.
func (e *MockExtractor) WithFailure(fail func(ExtractRequest) bool) *MockExtractor {
	e.fail = fail
	return e
}

func unreadableName(req ExtractRequest) bool {
	name := strings.ToLower(req.FileName)
	return strings.Contains(name, "corrupt") || strings.Contains(name, "unreadable")
}

func (e *MockExtractor) Extract(ctx context.Context, req ExtractRequest) (*model.Motion, error) {
	if e.delay > 0 {
		timer := time.NewTimer(e.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.fail != nil && e.fail(req) {
		return nil, apperr.NewRetryableError(fmt.Errorf("%s: %w", req.FileName, errUnreadable), "extraction failed")
	}
	if len(e.templates) == 0 {
		return nil, fmt.Errorf("extractor has no templates")
	}

	m := e.templates[req.Index%len(e.templates)].Clone()
	m.ID = ""
	m.BatchID = ""
	m.Decision = nil
	m.DocumentStoragePath = req.ObjectName
	m.Citations = DemoCitations()
	m.Status = model.StatusPending
	if len(m.FailedFlags()) > 0 {
		m.Status = model.StatusNeedsManualReview
	}
	return m, nil
}
