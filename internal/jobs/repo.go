package jobs

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	DB *gorm.DB
}

// EnqueueReconcile schedules a counter reconcile for one meme (or all when
// memeID is nil). Pending jobs with the same scope are dropped first so a
// burst of requests leaves a single job behind.
func (r *Repo) EnqueueReconcile(ctx context.Context, memeID *uint64) (uint64, error) {
	payload, err := json.Marshal(ReconcilePayload{MemeID: memeID})
	if err != nil {
		return 0, err
	}

	var id uint64
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Where("type = ? AND status = ?", TypeCounterReconcile, StatusPending)
		if memeID != nil {
			del = del.Where("(payload->>'meme_id')::bigint = ?", *memeID)
		} else {
			del = del.Where("payload->'meme_id' is null")
		}
		if err := del.Delete(&Job{}).Error; err != nil {
			return err
		}

		j := Job{
			Type:    TypeCounterReconcile,
			Payload: payload,
			RunAt:   time.Now(),
			Status:  StatusPending,
		}
		if err := tx.Create(&j).Error; err != nil {
			return err
		}
		id = j.ID
		return nil
	})
	return id, err
}

// Claim one due job atomically using SKIP LOCKED.
// Works on Postgres.
func (r *Repo) Claim(ctx context.Context, workerID string) (*Job, error) {
	var job Job
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// requeue RUNNING jobs whose worker died
		if err := tx.Exec(`
update jobs
set status='PENDING', locked_by=null, locked_at=null, updated_at=now()
where status='RUNNING' and locked_at is not null and locked_at < now() - interval '5 minutes'
`).Error; err != nil {
			return err
		}

		q := tx.Raw(`
with cte as (
  select id
  from jobs
  where status='PENDING' and run_at <= now()
  order by run_at asc
  for update skip locked
  limit 1
)
update jobs
set status='RUNNING', locked_by=?, locked_at=now(), updated_at=now()
where id in (select id from cte)
returning *;
`, workerID)

		return q.Scan(&job).Error
	})
	if err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, nil
	}
	return &job, nil
}

func (r *Repo) MarkDone(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Exec(`update jobs set status='DONE', updated_at=now() where id=?`, id).Error
}

func (r *Repo) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	return r.DB.WithContext(ctx).Exec(`update jobs set status='FAILED', last_error=?, updated_at=now() where id=?`, errMsg, id).Error
}

func (r *Repo) RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error {
	return r.DB.WithContext(ctx).Exec(`
update jobs
set status='PENDING',
    attempts=?,
    run_at=?,
    locked_by=null,
    locked_at=null,
    last_error=?,
    updated_at=now()
where id=?`, attempts, runAt, errMsg, id).Error
}
