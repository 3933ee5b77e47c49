package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/entity"
)

// Finisher runs generation for a processing report.
type Finisher interface {
	Finish(ctx context.Context, id string) (entity.Report, error)
}

type ReportQueue struct {
	fin     Finisher
	logger  *slog.Logger
	workers int
	timeout time.Duration
	onDone  func(Job, entity.Report, error)

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// senders hold the read lock so Shutdown never closes ch under them
	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*ReportQueue)(nil)

type Option func(*ReportQueue)

func WithWorkers(n int) Option {
	return func(q *ReportQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ReportQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ReportQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithOnDone registers a callback invoked by the worker after each job.
func WithOnDone(fn func(Job, entity.Report, error)) Option {
	return func(q *ReportQueue) {
		q.onDone = fn
	}
}

func NewReportQueue(fin Finisher, logger *slog.Logger, opts ...Option) *ReportQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ReportQueue{
		fin:     fin,
		logger:  logger,
		workers: 2,
		timeout: 5 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ReportQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.start", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("queue.worker.stop", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ReportQueue) run(workerID int, job Job) {
	ctx := context.Background()
	if job.RequestID != "" {
		ctx = common.WithRequestID(ctx, job.RequestID)
	}
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	r, err := q.fin.Finish(ctx, job.ReportID)
	if err != nil {
		q.logger.Error("queue.job.failed", "worker_id", workerID, "report_id", job.ReportID, "error", err)
	} else {
		q.logger.Info("queue.job.ok", "worker_id", workerID, "report_id", job.ReportID,
			"wait_ms", time.Since(job.SubmittedAt).Milliseconds())
	}
	if q.onDone != nil {
		q.onDone(job, r, err)
	}
}

// Enqueue hands job to a worker. A full queue blocks until a slot frees or
// ctx is done.
func (q *ReportQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "report_id", job.ReportID)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	if job.RequestID == "" {
		job.RequestID = common.RequestIDFromContext(ctx)
	}
	select {
	case q.ch <- job:
		q.logger.Info("queue.enqueue", "report_id", job.ReportID)
		return nil
	default:
	}
	q.logger.Warn("queue.full", "report_id", job.ReportID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to drain or ctx to end.
func (q *ReportQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted", "error", ctx.Err())
	case <-done:
		q.logger.Info("queue.shutdown.ok")
	}
}
