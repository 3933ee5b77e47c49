// Package async runs report generation in the background on a bounded
// worker pool.
package async

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shut down")

// Job finishes one report that was already registered as processing.
type Job struct {
	ReportID    string
	SubmittedAt time.Time
	RequestID   string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
