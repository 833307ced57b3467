package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Enqueuer is the part of Repo the scheduler drives.
type Enqueuer interface {
	EnqueueReconcile(ctx context.Context, memeID *uint64) (uint64, error)
}

// Scheduler enqueues a full counter reconcile every Interval.
type Scheduler struct {
	Queue    Enqueuer
	Interval time.Duration
	Log      *zap.Logger
}

// Run blocks until ctx is cancelled. A non-positive Interval disables it.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.Interval <= 0 {
		return nil
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			id, err := s.Queue.EnqueueReconcile(ctx, nil)
			if err != nil {
				log.Error("enqueue counter reconcile failed", zap.Error(err))
				continue
			}
			log.Debug("counter reconcile enqueued", zap.Uint64("job_id", id))
		}
	}
}
