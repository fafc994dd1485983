package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jakeh134/motionflow/pkg/apperr"
)

// Job is a unit of background work.
type Job func(context.Context) error

// WorkerPool runs jobs on a fixed number of goroutines.
type WorkerPool struct {
	workerCount int
	jobChan     chan Job
	wg          sync.WaitGroup
	stopOnce    sync.Once
}

func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
		jobChan:     make(chan Job, workerCount*2),
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	slog.Info("starting worker pool", "worker_count", wp.workerCount)

	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Stop closes the queue and waits for running jobs to return.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		slog.Info("stopping worker pool")
		close(wp.jobChan)
		wp.wg.Wait()
		slog.Info("worker pool stopped")
	})
}

// Submit enqueues job without blocking. A full queue returns ErrQueueFull.
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case wp.jobChan <- job:
		return nil
	default:
		slog.Warn("worker pool job queue full, job dropped")
		return apperr.ErrQueueFull
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	log := slog.With("worker_id", id)
	log.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("worker stopping due to context cancellation")
			return
		case job, ok := <-wp.jobChan:
			if !ok {
				log.Debug("worker stopping due to closed job channel")
				return
			}

			if err := job(ctx); err != nil {
				log.Error("job execution failed", "error", err)
			}
		}
	}
}
