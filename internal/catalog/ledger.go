package catalog

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultToggleRetries bounds how often a toggle transaction is retried after
// a serialization failure or deadlock.
const DefaultToggleRetries = 5

// ToggleOutcome is what a committed toggle did to the relation set.
type ToggleOutcome string

const (
	OutcomeAdded   ToggleOutcome = "added"
	OutcomeRemoved ToggleOutcome = "removed"
	// OutcomeNoop means a concurrent toggle on the same pair changed the row
	// first; nothing was written.
	OutcomeNoop ToggleOutcome = "noop"
)

// LedgerObserver receives toggle and reconcile events. metrics.Metrics
// implements it.
type LedgerObserver interface {
	ToggleCommitted(outcome ToggleOutcome)
	ToggleRetried()
	ReconcileRetried()
	CountersCorrected(n int64)
}

// Ledger owns user_favorites and memes.favorites_count.
type Ledger struct {
	DB         *gorm.DB
	Log        *zap.Logger
	Observer   LedgerObserver
	MaxRetries int
}

// Toggle flips the favorite state of (userID, memeID). The relation change
// and the counter change commit in one transaction or not at all.
//
// Two toggles racing on the same pair collapse into one change: the loser
// sees the winner's row (unique violation suppressed by ON CONFLICT, or a
// delete that matches nothing), writes nothing and reports the winner's
// state.
func (l *Ledger) Toggle(ctx context.Context, userID string, memeID uint64) (ToggleResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ToggleResult{}, &ValidationError{Field: "user_id", Reason: "is required"}
	}
	if memeID == 0 {
		return ToggleResult{}, &ValidationError{Field: "meme_id", Reason: "is required"}
	}

	var (
		isFavorite bool
		outcome    ToggleOutcome
	)
	err := l.withRetry(ctx, "toggle favorite", l.observer().ToggleRetried, func() error {
		var err error
		isFavorite, outcome, err = l.toggleOnce(ctx, userID, memeID)
		return err
	})
	if err != nil {
		return ToggleResult{}, err
	}

	l.observer().ToggleCommitted(outcome)
	return ToggleResult{IsFavorite: isFavorite}, nil
}

// withRetry runs fn until it succeeds, fails with a non-retryable error, or
// MaxRetries retries have been spent. onRetry runs before every retry.
func (l *Ledger) withRetry(ctx context.Context, op string, onRetry func(), fn func() error) error {
	maxRetries := l.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultToggleRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			onRetry()
			l.logger().Debug("retrying transaction",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			if err := sleepCtx(ctx, backoff(attempt)); err != nil {
				return wrapStorage(op, err)
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return wrapStorage(op, err)
		}
		lastErr = err
	}

	l.logger().Warn("transaction gave up", zap.String("op", op), zap.Error(lastErr))
	return &StorageError{Op: op + ": retries exhausted", Err: lastErr}
}

func (l *Ledger) toggleOnce(ctx context.Context, userID string, memeID uint64) (bool, ToggleOutcome, error) {
	var (
		isFavorite bool
		outcome    ToggleOutcome
	)

	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var memeExists bool
		if err := tx.Raw(`select exists(select 1 from memes where id = ?)`, memeID).
			Scan(&memeExists).Error; err != nil {
			return err
		}
		if !memeExists {
			return &NotFoundError{Resource: "meme", ID: memeID}
		}

		var wasFavorite bool
		if err := tx.Raw(`select exists(select 1 from user_favorites where user_id = ? and meme_id = ?)`, userID, memeID).
			Scan(&wasFavorite).Error; err != nil {
			return err
		}

		if wasFavorite {
			isFavorite = false
			res := tx.Where("user_id = ? AND meme_id = ?", userID, memeID).Delete(&Favorite{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				outcome = OutcomeNoop
				return nil
			}
			outcome = OutcomeRemoved
			return bumpFavorites(tx, memeID, -1)
		}

		isFavorite = true
		fav := Favorite{UserID: userID, MemeID: memeID}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "meme_id"}},
			DoNothing: true,
		}).Create(&fav)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			outcome = OutcomeNoop
			return nil
		}
		outcome = OutcomeAdded
		return bumpFavorites(tx, memeID, 1)
	})

	return isFavorite, outcome, err
}

func bumpFavorites(tx *gorm.DB, memeID uint64, delta int) error {
	res := tx.Model(&Meme{}).
		Where("id = ?", memeID).
		UpdateColumn("favorites_count", gorm.Expr("favorites_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return errors.New("favorites counter update matched no meme")
	}
	return nil
}

// Reconcile rewrites favorites_count from user_favorites for one meme, or
// for every meme when memeID is nil, and returns how many rows were off.
// It runs under REPEATABLE READ so a toggle committing mid-statement makes
// it fail and retry instead of writing a stale count.
func (l *Ledger) Reconcile(ctx context.Context, memeID *uint64) (int64, error) {
	var fixed int64

	err := l.withRetry(ctx, "reconcile favorites", l.observer().ReconcileRetried, func() error {
		return l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			q := `
update memes m
set favorites_count = (select count(*) from user_favorites uf where uf.meme_id = m.id)
where m.favorites_count <> (select count(*) from user_favorites uf where uf.meme_id = m.id)`
			args := []any{}
			if memeID != nil {
				q += ` and m.id = ?`
				args = append(args, *memeID)
			}

			res := tx.Exec(q, args...)
			if res.Error != nil {
				return res.Error
			}
			fixed = res.RowsAffected
			return nil
		}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	})
	if err != nil {
		return 0, err
	}

	if fixed > 0 {
		l.observer().CountersCorrected(fixed)
		l.logger().Warn("favorites counters corrected", zap.Int64("rows", fixed))
	}
	return fixed, nil
}

func (l *Ledger) logger() *zap.Logger {
	if l.Log == nil {
		return zap.NewNop()
	}
	return l.Log
}

func (l *Ledger) observer() LedgerObserver {
	if l.Observer == nil {
		return nopObserver{}
	}
	return l.Observer
}

type nopObserver struct{}

func (nopObserver) ToggleCommitted(ToggleOutcome) {}
func (nopObserver) ToggleRetried()                {}
func (nopObserver) ReconcileRetried()             {}
func (nopObserver) CountersCorrected(int64)       {}

// backoff grows 2^attempt * 10ms, capped at one second.
func backoff(attempt int) time.Duration {
	ms := math.Min(math.Pow(2, float64(attempt))*10, 1000)
	return time.Duration(ms) * time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
