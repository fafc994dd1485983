package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/apperr"
	"github.com/jakeh134/motionflow/pkg/logger"
	"github.com/jakeh134/motionflow/workflow"
)

// MotionService applies clerk review operations to stored motions, scoped to
// the session's court.
type MotionService struct {
	store     *MotionStore
	machine   workflow.Machine
	validator *workflow.Validator
	storage   DocumentStorage
}

func NewMotionService(store *MotionStore, validator *workflow.Validator) *MotionService {
	return &MotionService{
		store:     store,
		validator: validator,
	}
}

// WithStorage enables document links for stored motions.
func (s *MotionService) WithStorage(storage DocumentStorage) *MotionService {
	s.storage = storage
	return s
}

func (s *MotionService) Validator() *workflow.Validator {
	return s.validator
}

// List returns the court's motions that match c, in insertion order.
func (s *MotionService) List(sess *model.Session, c workflow.Criteria) []*model.Motion {
	return workflow.Filter(s.store.ListByCourt(sess.CourtID), c)
}

// Get returns one motion if it belongs to the session's court.
func (s *MotionService) Get(ctx context.Context, sess *model.Session, id string) (*model.Motion, error) {
	m, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("motion %s: %w", id, apperr.ErrNotFound)
	}
	if !sess.CanAccess(m) {
		logger.Warn(ctx, "court mismatch on motion access", "motion_id", id, "motion_court", m.CourtID)
		return nil, fmt.Errorf("motion %s: %w", id, apperr.ErrForbidden)
	}
	return m, nil
}

// Hints returns the field annotations for the review form. draft holds
// unsaved edits and may be nil.
func (s *MotionService) Hints(ctx context.Context, sess *model.Session, id string, draft map[string]string) ([]workflow.FieldHint, error) {
	m, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return s.validator.Hints(m, draft), nil
}

// DocumentURL returns a download link for the motion's source document.
func (s *MotionService) DocumentURL(ctx context.Context, sess *model.Session, id string) (string, error) {
	m, err := s.Get(ctx, sess, id)
	if err != nil {
		return "", err
	}
	if s.storage == nil || m.DocumentStoragePath == "" {
		return "", fmt.Errorf("document of motion %s: %w", id, apperr.ErrNotFound)
	}
	return s.storage.PresignedURL(ctx, m.DocumentStoragePath)
}

func (s *MotionService) Accept(ctx context.Context, sess *model.Session, id string) (*model.Motion, error) {
	return s.decide(ctx, sess, id, "accept", func(m *model.Motion) error {
		return s.machine.Accept(m, actorOf(sess))
	})
}

func (s *MotionService) Reject(ctx context.Context, sess *model.Session, id string, reason workflow.RejectionReason, notes string) (*model.Motion, error) {
	return s.decide(ctx, sess, id, "reject", func(m *model.Motion) error {
		return s.machine.Reject(m, reason, notes, actorOf(sess))
	})
}

func (s *MotionService) RequestFix(ctx context.Context, sess *model.Session, id, notes string) (*model.Motion, error) {
	return s.decide(ctx, sess, id, "request_fix", func(m *model.Motion) error {
		return s.machine.RequestFix(m, notes, actorOf(sess))
	})
}

func (s *MotionService) RequestManualReview(ctx context.Context, sess *model.Session, id string) (*model.Motion, error) {
	return s.decide(ctx, sess, id, "manual_review", func(m *model.Motion) error {
		return s.machine.RequestManualReview(m, actorOf(sess))
	})
}

// SaveFields merges edits into the motion's extracted data. Only fields of
// the motion type's schema may be edited.
func (s *MotionService) SaveFields(ctx context.Context, sess *model.Session, id string, patch map[string]string) (*model.Motion, error) {
	return s.Act(ctx, sess, id, DocSaveFields, ActionRequest{Fields: patch})
}

// Act dispatches a review action named by its URL segment.
func (s *MotionService) Act(ctx context.Context, sess *model.Session, id string, action DocumentAction, req ActionRequest) (*model.Motion, error) {
	return s.decide(ctx, sess, id, string(action), func(m *model.Motion) error {
		return applyAction(s.machine, s.validator.Schemas, m, action, req, actorOf(sess), time.Now().UTC())
	})
}

// Scoped returns an Updater that refuses motions outside the session's court.
func (s *MotionService) Scoped(sess *model.Session) workflow.Updater {
	return scopedUpdater{store: s.store, sess: sess}
}

func (s *MotionService) Machine() workflow.Machine {
	return s.machine
}

func (s *MotionService) decide(ctx context.Context, sess *model.Session, id, op string, fn func(*model.Motion) error) (*model.Motion, error) {
	var updated *model.Motion
	err := s.Scoped(sess).Update(id, func(m *model.Motion) error {
		from := m.Status
		if err := fn(m); err != nil {
			return err
		}
		updated = m.Clone()
		logger.Info(ctx, "motion updated", "motion_id", id, "op", op, "from", from, "to", m.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type scopedUpdater struct {
	store *MotionStore
	sess  *model.Session
}

func (u scopedUpdater) Update(id string, fn func(*model.Motion) error) error {
	return u.store.Update(id, func(m *model.Motion) error {
		if !u.sess.CanAccess(m) {
			return fmt.Errorf("motion %s: %w", id, apperr.ErrForbidden)
		}
		return fn(m)
	})
}

func actorOf(sess *model.Session) workflow.Actor {
	return workflow.Actor{UserID: sess.UserID}
}
