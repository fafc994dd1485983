package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakeh134/motionflow/pkg/apperr"
)

func TestWorkerPoolRunsJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewWorkerPool(2)
	pool.Start(ctx)

	var ran atomic.Int32
	done := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		require.NoError(t, pool.Submit(func(context.Context) error {
			ran.Add(1)
			done <- struct{}{}
			return errors.New("logged, not fatal")
		}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("job did not run")
		}
	}
	pool.Stop()
	assert.Equal(t, int32(3), ran.Load())
}

func TestWorkerPoolQueueFull(t *testing.T) {
	// Not started: nothing drains the queue.
	pool := NewWorkerPool(1)

	noop := func(context.Context) error { return nil }
	require.NoError(t, pool.Submit(noop))
	require.NoError(t, pool.Submit(noop))
	assert.ErrorIs(t, pool.Submit(noop), apperr.ErrQueueFull)
}

func TestWorkerPoolStopIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()
}
