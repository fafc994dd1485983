package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/apperr"
)

func TestMockExtractorCyclesTemplates(t *testing.T) {
	e := NewMockExtractor(0)
	ctx := context.Background()

	first, err := e.Extract(ctx, ExtractRequest{FileName: "a.pdf", ObjectName: "obj/a", Index: 0})
	require.NoError(t, err)
	assert.Equal(t, "Motion for Continuance", first.MotionType)
	assert.Empty(t, first.ID)
	assert.Equal(t, "obj/a", first.DocumentStoragePath)
	assert.Len(t, first.Citations, 3)
	assert.Equal(t, model.StatusPending, first.Status)

	second, err := e.Extract(ctx, ExtractRequest{FileName: "b.pdf", Index: 1})
	require.NoError(t, err)
	assert.Equal(t, "Motion to Dismiss", second.MotionType)
	assert.Equal(t, model.StatusNeedsManualReview, second.Status, "failed proof of service needs review")

	wrapped, err := e.Extract(ctx, ExtractRequest{FileName: "f.pdf", Index: 5})
	require.NoError(t, err)
	assert.Equal(t, first.MotionType, wrapped.MotionType)
	assert.Nil(t, wrapped.Decision)
}

func TestMockExtractorFailure(t *testing.T) {
	e := NewMockExtractor(0)

	_, err := e.Extract(context.Background(), ExtractRequest{FileName: "Corrupt-scan.png"})
	assert.True(t, apperr.IsRetryable(err))

	e.WithFailure(func(ExtractRequest) bool { return false })
	_, err = e.Extract(context.Background(), ExtractRequest{FileName: "Corrupt-scan.png"})
	assert.NoError(t, err)
}

func TestMockExtractorCancellation(t *testing.T) {
	e := NewMockExtractor(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, ExtractRequest{FileName: "a.pdf"})
	assert.ErrorIs(t, err, context.Canceled)
}
