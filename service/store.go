package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jakeh134/motionflow/config"
	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/apperr"
)

// ErrStoreFull is returned when a new motion would exceed MaxMotions.
var ErrStoreFull = errors.New("motion store is full")

// MotionStore is an in-memory store for motions. Motions are never deleted;
// listing preserves insertion order. Callers always receive copies.
type MotionStore struct {
	mu         sync.RWMutex
	motions    map[string]*model.Motion
	order      []string
	maxMotions int // 0 = unlimited
}

// NewMotionStore creates an empty store with the configured capacity.
func NewMotionStore(cfg *config.StoreConfig) *MotionStore {
	maxMotions := cfg.MaxMotions
	if maxMotions < 0 {
		maxMotions = 0
	}
	slog.Info("motion store initialized", "max_motions", maxMotions)
	return &MotionStore{
		motions:    make(map[string]*model.Motion),
		maxMotions: maxMotions,
	}
}

// Save inserts or replaces a motion.
func (s *MotionStore) Save(m *model.Motion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.motions[m.ID]; !exists {
		if s.maxMotions > 0 && len(s.motions) >= s.maxMotions {
			return fmt.Errorf("%w: %d motions", ErrStoreFull, s.maxMotions)
		}
		s.order = append(s.order, m.ID)
	}
	c := m.Clone()
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}
	s.motions[m.ID] = c
	return nil
}

// SaveAll inserts a set of new motions. Either all of them are stored or,
// when the batch would exceed MaxMotions, none are.
func (s *MotionStore) SaveAll(motions []*model.Motion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, m := range motions {
		if _, exists := s.motions[m.ID]; !exists {
			added++
		}
	}
	if s.maxMotions > 0 && len(s.motions)+added > s.maxMotions {
		return fmt.Errorf("%w: %d motions, %d more requested", ErrStoreFull, s.maxMotions, added)
	}

	now := time.Now().UTC()
	for _, m := range motions {
		if _, exists := s.motions[m.ID]; !exists {
			s.order = append(s.order, m.ID)
		}
		c := m.Clone()
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
		s.motions[m.ID] = c
	}
	return nil
}

func (s *MotionStore) Get(id string) (*model.Motion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.motions[id]
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// ListByCourt returns the court's motions in insertion order.
func (s *MotionStore) ListByCourt(courtID string) []*model.Motion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Motion, 0)
	for _, id := range s.order {
		if m := s.motions[id]; m.CourtID == courtID {
			result = append(result, m.Clone())
		}
	}
	return result
}

// ListByBatch returns the motions created by one batch upload.
func (s *MotionStore) ListByBatch(batchID string) []*model.Motion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Motion, 0)
	for _, id := range s.order {
		if m := s.motions[id]; m.BatchID == batchID {
			result = append(result, m.Clone())
		}
	}
	return result
}

// Update runs fn on a copy of the motion and stores it only if fn succeeds,
// so a failed transition leaves stored state untouched.
func (s *MotionStore) Update(id string, fn func(*model.Motion) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.motions[id]
	if !ok {
		return fmt.Errorf("motion %s: %w", id, apperr.ErrNotFound)
	}
	c := m.Clone()
	if err := fn(c); err != nil {
		return err
	}
	s.motions[id] = c
	return nil
}

// Count returns the number of motions in the store
func (s *MotionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.motions)
}

// BatchStore is an in-memory store for batch uploads.
type BatchStore struct {
	mu      sync.RWMutex
	batches map[string]*model.BatchUpload
	order   []string
}

func NewBatchStore() *BatchStore {
	return &BatchStore{batches: make(map[string]*model.BatchUpload)}
}

func (s *BatchStore) Save(b *model.BatchUpload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.batches[b.ID]; !exists {
		s.order = append(s.order, b.ID)
	}
	c := *b
	s.batches[b.ID] = &c
}

func (s *BatchStore) Get(id string) (*model.BatchUpload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, false
	}
	c := *b
	return &c, true
}

// ListByUser returns the batches a clerk uploaded, newest upload first.
// Batches with the same timestamp come latest-saved first.
func (s *BatchStore) ListByUser(userID string) []*model.BatchUpload {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.BatchUpload, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		if b := s.batches[s.order[i]]; b.UploadedByUserID == userID {
			c := *b
			result = append(result, &c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UploadTimestamp.After(result[j].UploadTimestamp)
	})
	return result
}

// Update applies fn to the stored batch and re-derives its status.
func (s *BatchStore) Update(id string, fn func(*model.BatchUpload)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[id]
	if !ok {
		return fmt.Errorf("batch %s: %w", id, apperr.ErrNotFound)
	}
	fn(b)
	b.Status = b.DeriveStatus()
	return nil
}
