package jobs

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"go.uber.org/zap"
)

// Queue is the part of Repo the worker drives.
type Queue interface {
	Claim(ctx context.Context, workerID string) (*Job, error)
	MarkDone(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64, errMsg string) error
	RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error
}

// Reconciler recomputes favorite counters; catalog.Ledger implements it.
type Reconciler interface {
	Reconcile(ctx context.Context, memeID *uint64) (int64, error)
}

// Observer is told how each job ended.
type Observer interface {
	JobProcessed(jobType, status string)
}

type Worker struct {
	ID         string
	Queue      Queue
	Reconciler Reconciler
	Log        *zap.Logger
	Observer   Observer

	PollInterval time.Duration
	now          func() time.Time
}

// Run polls for due jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	interval := w.PollInterval
	if interval <= 0 {
		interval = 800 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.log().Info("job worker started", zap.String("worker_id", w.ID), zap.Duration("poll", interval))

	for {
		select {
		case <-ctx.Done():
			w.log().Info("job worker stopped", zap.String("worker_id", w.ID))
			return nil
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll claims and handles at most one job. It reports whether a job was
// claimed.
func (w *Worker) Poll(ctx context.Context) bool {
	job, err := w.Queue.Claim(ctx, w.ID)
	if err != nil {
		w.log().Error("job claim failed", zap.Error(err))
		return false
	}
	if job == nil {
		return false
	}
	w.handle(ctx, job)
	return true
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeCounterReconcile:
		w.handleReconcile(ctx, job)
	default:
		w.fail(ctx, job, "unknown job type")
	}
}

func (w *Worker) handleReconcile(ctx context.Context, job *Job) {
	var p ReconcilePayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		w.fail(ctx, job, "bad payload")
		return
	}

	fixed, err := w.Reconciler.Reconcile(ctx, p.MemeID)
	if err != nil {
		w.retry(ctx, job, err.Error())
		return
	}

	w.log().Info("counter reconcile done",
		zap.Uint64("job_id", job.ID),
		zap.Int64("corrected", fixed),
	)
	if err := w.Queue.MarkDone(ctx, job.ID); err != nil {
		w.log().Error("mark job done failed", zap.Uint64("job_id", job.ID), zap.Error(err))
	}
	w.observe(job.Type, StatusDone)
}

func (w *Worker) fail(ctx context.Context, job *Job, errMsg string) {
	w.log().Warn("job failed", zap.Uint64("job_id", job.ID), zap.String("type", job.Type), zap.String("error", errMsg))
	if err := w.Queue.MarkFailed(ctx, job.ID, errMsg); err != nil {
		w.log().Error("mark job failed failed", zap.Uint64("job_id", job.ID), zap.Error(err))
	}
	w.observe(job.Type, StatusFailed)
}

func (w *Worker) retry(ctx context.Context, job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		w.fail(ctx, job, errMsg)
		return
	}

	next := w.clock().Add(retryDelay(attempts))
	w.log().Warn("job will retry",
		zap.Uint64("job_id", job.ID),
		zap.Int("attempts", attempts),
		zap.Time("run_at", next),
		zap.String("error", errMsg),
	)
	if err := w.Queue.RetryLater(ctx, job.ID, attempts, next, errMsg); err != nil {
		w.log().Error("reschedule job failed", zap.Uint64("job_id", job.ID), zap.Error(err))
	}
	w.observe(job.Type, "RETRY")
}

// retryDelay is 2^attempts seconds, capped at ten minutes.
func retryDelay(attempts int) time.Duration {
	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	return time.Duration(sec) * time.Second
}

func (w *Worker) clock() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now()
}

func (w *Worker) log() *zap.Logger {
	if w.Log == nil {
		return zap.NewNop()
	}
	return w.Log
}

func (w *Worker) observe(jobType, status string) {
	if w.Observer != nil {
		w.Observer.JobProcessed(jobType, status)
	}
}
