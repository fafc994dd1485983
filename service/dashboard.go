package service

import (
	"context"
	"sync"

	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/logger"
	"github.com/jakeh134/motionflow/workflow"
)

// Dashboard is one clerk session's list view: the current filter and the
// selection built on top of it.
type Dashboard struct {
	mu        sync.Mutex
	criteria  workflow.Criteria
	selection *workflow.Selection
}

// DashboardView is a filtered page of the dashboard.
type DashboardView struct {
	Motions     []*model.Motion `json:"motions"`
	Empty       bool            `json:"empty"`
	Selected    []string        `json:"selected"`
	Hidden      []string        `json:"hidden_selected"`
	AllSelected bool            `json:"all_selected"`
}

// DashboardService keeps per-session dashboards keyed by token id.
type DashboardService struct {
	motions *MotionService

	mu     sync.Mutex
	boards map[string]*Dashboard
}

func NewDashboardService(motions *MotionService) *DashboardService {
	return &DashboardService{motions: motions, boards: make(map[string]*Dashboard)}
}

func (s *DashboardService) board(sess *model.Session) *Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[sess.TokenID]
	if !ok {
		b = &Dashboard{
			criteria:  workflow.Criteria{Status: workflow.StatusAll},
			selection: workflow.NewSelection(),
		}
		s.boards[sess.TokenID] = b
	}
	return b
}

// Drop discards the session's dashboard state on logout.
func (s *DashboardService) Drop(sess *model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.boards, sess.TokenID)
}

// View applies c as the session's current filter and returns the result.
func (s *DashboardService) View(sess *model.Session, c workflow.Criteria) DashboardView {
	b := s.board(sess)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.criteria = c
	return s.render(sess, b)
}

// Current renders the dashboard with the last applied filter.
func (s *DashboardService) Current(sess *model.Session) DashboardView {
	b := s.board(sess)
	b.mu.Lock()
	defer b.mu.Unlock()
	return s.render(sess, b)
}

// Toggle flips one motion's selection within the current filtered view.
func (s *DashboardService) Toggle(sess *model.Session, id string) DashboardView {
	b := s.board(sess)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selection.Toggle(id, workflow.IDs(s.motions.List(sess, b.criteria)))
	return s.render(sess, b)
}

// ToggleAll is the header checkbox of the current filtered view.
func (s *DashboardService) ToggleAll(sess *model.Session) DashboardView {
	b := s.board(sess)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selection.ToggleAll(workflow.IDs(s.motions.List(sess, b.criteria)))
	return s.render(sess, b)
}

func (s *DashboardService) ClearSelection(sess *model.Session) DashboardView {
	b := s.board(sess)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selection.Clear()
	return s.render(sess, b)
}

// Bulk applies req to every selected motion, hidden ones included.
func (s *DashboardService) Bulk(ctx context.Context, sess *model.Session, req workflow.BulkRequest) (workflow.BulkResult, error) {
	b := s.board(sess)
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.selection.Dispatch(req, s.motions.Machine(), s.motions.Scoped(sess), actorOf(sess))
	if err != nil {
		return res, err
	}
	logger.Info(ctx, "bulk action dispatched", "result", res.String())
	return res, nil
}

// render must be called with b.mu held.
func (s *DashboardService) render(sess *model.Session, b *Dashboard) DashboardView {
	motions := s.motions.List(sess, b.criteria)
	visible := workflow.IDs(motions)
	return DashboardView{
		Motions:     motions,
		Empty:       len(motions) == 0,
		Selected:    b.selection.IDs(),
		Hidden:      b.selection.Hidden(visible),
		AllSelected: b.selection.AllSelected(visible),
	}
}
