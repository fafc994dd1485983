package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jakeh134/motionflow/config"
	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/apperr"
	"github.com/jakeh134/motionflow/pkg/logger"
	"github.com/jakeh134/motionflow/workflow"
)

// IntakePhase is the step an upload task is on.
type IntakePhase string

const (
	PhaseUploading  IntakePhase = "uploading"
	PhaseProcessing IntakePhase = "processing"
	PhaseReviewing  IntakePhase = "reviewing"
	PhaseComplete   IntakePhase = "complete"
	PhaseFailed     IntakePhase = "failed"
	PhaseCancelled  IntakePhase = "cancelled"
)

// running reports whether the background pipeline still owns the task.
func (p IntakePhase) running() bool {
	return p == PhaseUploading || p == PhaseProcessing
}

var acceptedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

// UploadFile is one file submitted for intake.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// FileRejection explains why a submitted file was not accepted.
type FileRejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// IntakeProgress is published to subscribers on every progress change.
type IntakeProgress struct {
	TaskID    string      `json:"task_id"`
	Phase     IntakePhase `json:"phase"`
	Progress  int         `json:"progress"`
	Processed int         `json:"processed"`
	Failed    int         `json:"failed"`
	Total     int         `json:"total"`
}

// IntakeSnapshot is a point-in-time copy of an intake task.
type IntakeSnapshot struct {
	ID             string          `json:"id"`
	BatchID        string          `json:"batch_id"`
	Phase          IntakePhase     `json:"phase"`
	Progress       int             `json:"progress"`
	Total          int             `json:"total"`
	Processed      int             `json:"processed"`
	Failed         int             `json:"failed"`
	Rejected       []FileRejection `json:"rejected,omitempty"`
	Documents      []*model.Motion `json:"documents"`
	Cursor         int             `json:"cursor"`
	ReviewComplete bool            `json:"review_complete"`
	Error          string          `json:"error,omitempty"`
}

// IntakeTask is one batch upload moving through upload, extraction and the
// per-document review loop. Documents are held on the task until Finish.
type IntakeTask struct {
	mu sync.Mutex

	id      string
	batchID string
	sess    model.Session
	files   []UploadFile

	phase          IntakePhase
	progress       int
	processed      int
	failed         int
	rejected       []FileRejection
	documents      []*model.Motion
	cursor         int
	reviewComplete bool
	errMsg         string

	cancel context.CancelFunc
	subs   []chan IntakeProgress
}

func (t *IntakeTask) snapshot() IntakeSnapshot {
	docs := make([]*model.Motion, len(t.documents))
	for i, d := range t.documents {
		docs[i] = d.Clone()
	}
	return IntakeSnapshot{
		ID:             t.id,
		BatchID:        t.batchID,
		Phase:          t.phase,
		Progress:       t.progress,
		Total:          len(t.files),
		Processed:      t.processed,
		Failed:         t.failed,
		Rejected:       append([]FileRejection(nil), t.rejected...),
		Documents:      docs,
		Cursor:         t.cursor,
		ReviewComplete: t.reviewComplete,
		Error:          t.errMsg,
	}
}

// publish must be called with t.mu held. Slow subscribers miss updates.
func (t *IntakeTask) publish() {
	p := IntakeProgress{
		TaskID:    t.id,
		Phase:     t.phase,
		Progress:  t.progress,
		Processed: t.processed,
		Failed:    t.failed,
		Total:     len(t.files),
	}
	for _, ch := range t.subs {
		select {
		case ch <- p:
		default:
		}
	}
	if !t.phase.running() {
		for _, ch := range t.subs {
			close(ch)
		}
		t.subs = nil
	}
}

func (t *IntakeTask) setPhase(phase IntakePhase, progress int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.phase.running() {
		return
	}
	t.phase = phase
	t.progress = progress
	t.publish()
}

// IntakeService runs upload tasks on the worker pool and holds them for the
// review loop.
type IntakeService struct {
	cfg       *config.IntakeConfig
	storage   DocumentStorage
	extractor Extractor
	pool      *WorkerPool
	motions   *MotionStore
	batches   *BatchStore
	schemas   *workflow.SchemaRegistry
	machine   workflow.Machine
	now       func() time.Time

	mu    sync.RWMutex
	tasks map[string]*IntakeTask
}

func NewIntakeService(cfg *config.IntakeConfig, storage DocumentStorage, extractor Extractor, pool *WorkerPool,
	motions *MotionStore, batches *BatchStore, schemas *workflow.SchemaRegistry) *IntakeService {
	return &IntakeService{
		cfg:       cfg,
		storage:   storage,
		extractor: extractor,
		pool:      pool,
		motions:   motions,
		batches:   batches,
		schemas:   schemas,
		now:       func() time.Time { return time.Now().UTC() },
		tasks:     make(map[string]*IntakeTask),
	}
}

// Start validates files, records a batch and queues the task. Files with an
// unsupported type or size are reported in the snapshot's Rejected list.
func (s *IntakeService) Start(ctx context.Context, sess *model.Session, files []UploadFile) (IntakeSnapshot, error) {
	if s.cfg.MaxFiles > 0 && len(files) > s.cfg.MaxFiles {
		return IntakeSnapshot{}, apperr.NewValidation("files", len(files),
			fmt.Sprintf("at most %d files per upload", s.cfg.MaxFiles))
	}

	maxSize := s.cfg.MaxFileSizeMB << 20
	var valid []UploadFile
	var rejected []FileRejection
	for _, f := range files {
		switch {
		case !acceptedContentTypes[f.ContentType]:
			rejected = append(rejected, FileRejection{Name: f.Name, Reason: f.Name + " is not a PDF or image file"})
		case maxSize > 0 && int64(len(f.Data)) > maxSize:
			rejected = append(rejected, FileRejection{Name: f.Name, Reason: f.Name + " exceeds the size limit"})
		default:
			valid = append(valid, f)
		}
	}
	if len(valid) == 0 {
		return IntakeSnapshot{}, apperr.NewValidation("files", nil, "please select at least one PDF or image file")
	}

	batch := &model.BatchUpload{
		ID:               uuid.New().String(),
		UploadedByUserID: sess.UserID,
		CourtID:          sess.CourtID,
		UploadTimestamp:  s.now(),
		TotalFiles:       len(valid),
	}
	batch.Status = batch.DeriveStatus()

	taskCtx, cancel := context.WithCancel(context.Background())
	t := &IntakeTask{
		id:       uuid.New().String(),
		batchID:  batch.ID,
		sess:     *sess,
		files:    valid,
		phase:    PhaseUploading,
		rejected: rejected,
		cancel:   cancel,
	}

	s.batches.Save(batch)
	s.mu.Lock()
	s.tasks[t.id] = t
	s.mu.Unlock()

	err := s.pool.Submit(func(poolCtx context.Context) error {
		stop := context.AfterFunc(poolCtx, cancel)
		defer stop()
		return s.run(taskCtx, t)
	})
	if err != nil {
		cancel()
		s.mu.Lock()
		delete(s.tasks, t.id)
		s.mu.Unlock()
		_ = s.batches.Update(batch.ID, func(b *model.BatchUpload) { b.FailedFiles = b.TotalFiles })
		return IntakeSnapshot{}, apperr.NewRetryableError(err, "intake is busy, try again shortly")
	}

	logger.Info(ctx, "intake started", "task_id", t.id, "batch_id", batch.ID,
		"files", len(valid), "rejected", len(rejected))

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot(), nil
}

func (s *IntakeService) run(ctx context.Context, t *IntakeTask) error {
	ctx = logger.WithActor(ctx, t.sess.UserID, t.sess.CourtID)
	total := len(t.files)

	uploaded := make([]string, total)
	for i, f := range t.files {
		if err := sleepCtx(ctx, s.cfg.UploadDelay); err != nil {
			return s.abort(ctx, t, err)
		}
		object := fmt.Sprintf("%s/%s/%d-%s", t.sess.CourtID, t.batchID, i, path.Base(f.Name))
		if err := s.storage.Upload(ctx, object, bytes.NewReader(f.Data), int64(len(f.Data)), f.ContentType); err != nil {
			if ctx.Err() != nil {
				return s.abort(ctx, t, ctx.Err())
			}
			logger.Warn(ctx, "document upload failed", "task_id", t.id, "file", f.Name, "error", err)
		} else {
			uploaded[i] = object
		}
		t.setPhase(PhaseUploading, (i+1)*100/total)
	}

	t.setPhase(PhaseProcessing, 0)
	var docs []*model.Motion
	for i, f := range t.files {
		doc, err := s.extract(ctx, t, i, f, uploaded[i])
		if ctx.Err() != nil {
			return s.abort(ctx, t, ctx.Err())
		}
		t.mu.Lock()
		if err != nil {
			t.failed++
			logger.Warn(ctx, "document processing failed", "task_id", t.id, "file", f.Name, "error", err)
		} else {
			t.processed++
			docs = append(docs, doc)
		}
		t.progress = (i + 1) * 100 / total
		t.publish()
		t.mu.Unlock()

		_ = s.batches.Update(t.batchID, func(b *model.BatchUpload) {
			if err != nil {
				b.RecordFailed()
			} else {
				b.RecordProcessed()
			}
		})
	}
	return s.settle(ctx, t, docs)
}

// settle moves a task whose pipeline ran to completion into review, or
// records it as failed or cancelled.
func (s *IntakeService) settle(ctx context.Context, t *IntakeTask, docs []*model.Motion) error {
	t.mu.Lock()
	if t.phase == PhaseCancelled {
		t.mu.Unlock()
		return s.abort(ctx, t, context.Canceled)
	}
	defer t.mu.Unlock()
	if len(docs) == 0 {
		t.phase = PhaseFailed
		t.errMsg = "all documents failed processing"
		t.publish()
		logger.Error(ctx, "intake failed", "task_id", t.id, "batch_id", t.batchID)
		return nil
	}
	t.documents = docs
	t.cursor = 0
	t.phase = PhaseReviewing
	t.progress = 100
	t.publish()
	logger.Info(ctx, "intake ready for review", "task_id", t.id, "documents", len(docs), "failed", t.failed)
	return nil
}

func (s *IntakeService) extract(ctx context.Context, t *IntakeTask, i int, f UploadFile, object string) (*model.Motion, error) {
	if object == "" {
		return nil, errors.New("document was not stored")
	}
	doc, err := s.extractor.Extract(ctx, ExtractRequest{
		FileName:    f.Name,
		ContentType: f.ContentType,
		ObjectName:  object,
		Index:       i,
	})
	if err != nil {
		return nil, err
	}
	now := s.now()
	doc.ID = uuid.New().String()
	doc.BatchID = t.batchID
	doc.CourtID = t.sess.CourtID
	doc.CountyID = t.sess.CountyID
	doc.UploadedByUserID = t.sess.UserID
	doc.DocumentStoragePath = object
	if id, ok := s.schemas.TypeID(doc.MotionType); ok {
		doc.MotionTypeID = id
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return doc, nil
}

// abort records a cancelled pipeline.
func (s *IntakeService) abort(ctx context.Context, t *IntakeTask, cause error) error {
	t.mu.Lock()
	t.phase = PhaseCancelled
	t.errMsg = "upload cancelled"
	t.documents = nil
	t.publish()
	t.mu.Unlock()

	s.discardBatch(t.batchID)
	logger.Info(ctx, "intake cancelled", "task_id", t.id, "cause", cause)
	return nil
}

// discardBatch counts every file of a cancelled batch as failed, since none
// of them reach the motion store.
func (s *IntakeService) discardBatch(batchID string) {
	_ = s.batches.Update(batchID, func(b *model.BatchUpload) {
		b.ProcessedFiles = 0
		b.FailedFiles = b.TotalFiles
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *IntakeService) task(sess *model.Session, id string) (*IntakeTask, error) {
	s.mu.RLock()
	t, ok := s.tasks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("intake %s: %w", id, apperr.ErrNotFound)
	}
	if t.sess.CourtID != sess.CourtID {
		return nil, fmt.Errorf("intake %s: %w", id, apperr.ErrForbidden)
	}
	return t, nil
}

func (s *IntakeService) Get(sess *model.Session, id string) (IntakeSnapshot, error) {
	t, err := s.task(sess, id)
	if err != nil {
		return IntakeSnapshot{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot(), nil
}

// Subscribe returns a channel of progress updates. It is closed once the
// pipeline stops; the returned func unsubscribes early.
func (s *IntakeService) Subscribe(sess *model.Session, id string) (<-chan IntakeProgress, func(), error) {
	t, err := s.task(sess, id)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan IntakeProgress, 16)

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.phase.running() {
		ch <- IntakeProgress{TaskID: t.id, Phase: t.phase, Progress: t.progress,
			Processed: t.processed, Failed: t.failed, Total: len(t.files)}
		close(ch)
		return ch, func() {}, nil
	}
	t.subs = append(t.subs, ch)

	unsubscribe := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, c := range t.subs {
			if c == ch {
				t.subs = append(t.subs[:i], t.subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, unsubscribe, nil
}

// Cancel stops a running task or discards one awaiting review. Nothing is
// committed to the motion store.
func (s *IntakeService) Cancel(ctx context.Context, sess *model.Session, id string) (IntakeSnapshot, error) {
	t, err := s.task(sess, id)
	if err != nil {
		return IntakeSnapshot{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.phase {
	case PhaseUploading, PhaseProcessing:
		t.cancel()
		t.phase = PhaseCancelled
		t.errMsg = "upload cancelled"
		t.publish()
	case PhaseReviewing:
		t.phase = PhaseCancelled
		for _, doc := range t.documents {
			if err := s.storage.Delete(ctx, doc.DocumentStoragePath); err != nil {
				logger.Warn(ctx, "failed to delete discarded document", "object", doc.DocumentStoragePath, "error", err)
			}
		}
		t.documents = nil
		t.errMsg = "upload cancelled"
		t.cancel()
		t.publish()
		s.discardBatch(t.batchID)
	case PhaseCancelled:
	default:
		return IntakeSnapshot{}, fmt.Errorf("intake %s is %s: %w", id, t.phase, apperr.ErrInvalidTransition)
	}
	logger.Info(ctx, "intake cancel requested", "task_id", id)
	return t.snapshot(), nil
}

// reviewing returns the task locked. The caller must unlock it.
func (s *IntakeService) reviewing(sess *model.Session, id string) (*IntakeTask, error) {
	t, err := s.task(sess, id)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	if t.phase != PhaseReviewing {
		phase := t.phase
		t.mu.Unlock()
		return nil, fmt.Errorf("intake %s is %s: %w", id, phase, apperr.ErrTaskNotReviewable)
	}
	return t, nil
}

// Current returns the document under the review cursor.
func (s *IntakeService) Current(sess *model.Session, id string) (*model.Motion, error) {
	t, err := s.reviewing(sess, id)
	if err != nil {
		return nil, err
	}
	defer t.mu.Unlock()
	return t.documents[t.cursor].Clone(), nil
}

// Next advances the cursor. On the last document it marks review complete.
func (s *IntakeService) Next(sess *model.Session, id string) (IntakeSnapshot, error) {
	t, err := s.reviewing(sess, id)
	if err != nil {
		return IntakeSnapshot{}, err
	}
	defer t.mu.Unlock()
	if t.cursor < len(t.documents)-1 {
		t.cursor++
	} else {
		t.reviewComplete = true
	}
	return t.snapshot(), nil
}

// Prev moves the cursor back; it stays put on the first document.
func (s *IntakeService) Prev(sess *model.Session, id string) (IntakeSnapshot, error) {
	t, err := s.reviewing(sess, id)
	if err != nil {
		return IntakeSnapshot{}, err
	}
	defer t.mu.Unlock()
	if t.cursor > 0 {
		t.cursor--
	}
	return t.snapshot(), nil
}

// Act applies a review action to one document of the task.
func (s *IntakeService) Act(ctx context.Context, sess *model.Session, id, docID string, action DocumentAction, req ActionRequest) (*model.Motion, error) {
	t, err := s.reviewing(sess, id)
	if err != nil {
		return nil, err
	}
	defer t.mu.Unlock()

	for _, doc := range t.documents {
		if doc.ID != docID {
			continue
		}
		c := doc.Clone()
		if err := applyAction(s.machine, s.schemas, c, action, req, actorOf(sess), s.now()); err != nil {
			return nil, err
		}
		*doc = *c
		logger.Info(ctx, "intake document updated", "task_id", id, "doc_id", docID, "op", action, "status", doc.Status)
		return doc.Clone(), nil
	}
	return nil, fmt.Errorf("document %s: %w", docID, apperr.ErrNotFound)
}

// DocumentURL returns a download link for one document under review.
func (s *IntakeService) DocumentURL(ctx context.Context, sess *model.Session, id, docID string) (string, error) {
	t, err := s.reviewing(sess, id)
	if err != nil {
		return "", err
	}
	var object string
	for _, doc := range t.documents {
		if doc.ID == docID {
			object = doc.DocumentStoragePath
		}
	}
	t.mu.Unlock()

	if object == "" {
		return "", fmt.Errorf("document %s: %w", docID, apperr.ErrNotFound)
	}
	return s.storage.PresignedURL(ctx, object)
}

// Finish commits the reviewed documents to the motion store.
func (s *IntakeService) Finish(ctx context.Context, sess *model.Session, id string) (IntakeSnapshot, error) {
	t, err := s.reviewing(sess, id)
	if err != nil {
		return IntakeSnapshot{}, err
	}
	defer t.mu.Unlock()

	if !t.reviewComplete {
		return IntakeSnapshot{}, apperr.NewValidation("review", nil, "review every document before finishing")
	}
	if err := s.motions.SaveAll(t.documents); err != nil {
		return IntakeSnapshot{}, fmt.Errorf("failed to commit batch %s: %w", t.batchID, err)
	}
	t.phase = PhaseComplete
	logger.Info(ctx, "intake finished", "task_id", id, "batch_id", t.batchID, "committed", len(t.documents))
	return t.snapshot(), nil
}
