package model

import (
	"math"
	"time"
)

// BatchStatus is the aggregate state of a batch upload.
type BatchStatus string

const (
	BatchPending         BatchStatus = "pending"
	BatchProcessing      BatchStatus = "processing"
	BatchPartialComplete BatchStatus = "partial_complete"
	BatchComplete        BatchStatus = "complete"
	BatchFailed          BatchStatus = "failed"
)

// BatchUpload is a group of documents uploaded together in one action.
// Invariant: ProcessedFiles + FailedFiles <= TotalFiles.
type BatchUpload struct {
	ID               string      `json:"id"`
	UploadedByUserID string      `json:"uploaded_by_user_id"`
	CourtID          string      `json:"court_id"`
	UploadTimestamp  time.Time   `json:"upload_timestamp"`
	Status           BatchStatus `json:"status"`
	TotalFiles       int         `json:"total_files"`
	ProcessedFiles   int         `json:"processed_files"`
	FailedFiles      int         `json:"failed_files"`
}

// DeriveStatus computes the aggregate status from the file counters.
func (b *BatchUpload) DeriveStatus() BatchStatus {
	finished := b.ProcessedFiles + b.FailedFiles
	switch {
	case b.TotalFiles == 0:
		return BatchPending
	case finished < b.TotalFiles && finished == 0:
		return BatchPending
	case finished < b.TotalFiles:
		return BatchProcessing
	case b.FailedFiles == 0:
		return BatchComplete
	case b.FailedFiles == b.TotalFiles:
		return BatchFailed
	default:
		return BatchPartialComplete
	}
}

// RecordProcessed counts one successfully processed file.
func (b *BatchUpload) RecordProcessed() {
	if b.ProcessedFiles+b.FailedFiles < b.TotalFiles {
		b.ProcessedFiles++
	}
	b.Status = b.DeriveStatus()
}

// RecordFailed counts one failed file.
func (b *BatchUpload) RecordFailed() {
	if b.ProcessedFiles+b.FailedFiles < b.TotalFiles {
		b.FailedFiles++
	}
	b.Status = b.DeriveStatus()
}

// Progress returns the completion percentage shown on the batches screen.
func (b *BatchUpload) Progress() int {
	switch b.Status {
	case BatchComplete:
		return 100
	case BatchFailed:
		return 0
	}
	if b.TotalFiles == 0 {
		return 0
	}
	processed := float64(b.ProcessedFiles + b.FailedFiles)
	return int(math.Floor(processed/float64(b.TotalFiles)*100 + 0.5))
}
