package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{}, NormalizeTags(nil))
	assert.Equal(t,
		[]string{"choice", "Drake"},
		NormalizeTags([]string{" choice ", "", "Drake", "CHOICE", "drake", "   "}),
	)

	many := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		many = append(many, fmt.Sprintf("t%d", i))
	}
	got := NormalizeTags(many)
	require.Len(t, got, maxTags)
	assert.Equal(t, "t0", got[0])
	assert.Equal(t, "t19", got[maxTags-1])
}

func TestFilterNormalize(t *testing.T) {
	f := Filter{Search: "  drake ", Category: " ", UserID: " u1 "}.Normalize()
	assert.Equal(t, Filter{Search: "drake", Category: CategoryAll, UserID: "u1"}, f)

	f = Filter{Category: "popular"}.Normalize()
	assert.Equal(t, "popular", f.Category)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "drake", escapeLike("drake"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, escapeLike(`c:\tmp`))
}

func TestNewMemeDefaults(t *testing.T) {
	m, err := newMeme(MemeInput{Title: "  Doge  ", Tags: []string{"dog", "Dog", " wow "}})
	require.NoError(t, err)

	assert.Equal(t, "Doge", m.Title)
	assert.Equal(t, defaultMediaType, m.MediaType)
	assert.Equal(t, defaultCategory, m.Category)
	assert.Equal(t, []string{"dog", "wow"}, []string(m.Tags))
	assert.Zero(t, m.FavoritesCount)
	assert.Zero(t, m.ViewsCount)
}

func TestNewMemeValidation(t *testing.T) {
	cases := []struct {
		name  string
		in    MemeInput
		field string
	}{
		{"missing title", MemeInput{Title: "   "}, "title"},
		{"long title", MemeInput{Title: strings.Repeat("x", 201)}, "title"},
		{"bad media url", MemeInput{Title: "a", MediaURL: "not a url"}, "media_url"},
		{"bad source url", MemeInput{Title: "a", SourceURL: "::"}, "source_url"},
		{"reserved category all", MemeInput{Title: "a", Category: "all"}, "category"},
		{"reserved category favorites", MemeInput{Title: "a", Category: "favorites"}, "category"},
		{"too many tags", MemeInput{Title: "a", Tags: make([]string, 21)}, "tags"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newMeme(tc.in)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.True(t, strings.HasPrefix(ve.Reason, "failed "), ve.Reason)
		})
	}
}

func TestWriterAddRejectsInvalidInput(t *testing.T) {
	w := &Writer{}

	_, err := w.Add(context.Background(), MemeInput{})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)
}

func TestLedgerToggleRejectsMissingIDs(t *testing.T) {
	l := &Ledger{}

	_, err := l.Toggle(context.Background(), "  ", 1)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "user_id", ve.Field)

	_, err = l.Toggle(context.Background(), "u1", 0)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "meme_id", ve.Field)
}

func TestWrapStorage(t *testing.T) {
	assert.NoError(t, wrapStorage("op", nil))

	nf := &NotFoundError{Resource: "meme", ID: 7}
	assert.Same(t, nf, wrapStorage("op", nf))

	ve := &ValidationError{Field: "title", Reason: "is required"}
	assert.Same(t, ve, wrapStorage("op", ve))

	base := errors.New("connection reset")
	err := wrapStorage("list memes", base)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "list memes", se.Op)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "storage: list memes: connection reset", err.Error())
}

func TestPostgresErrorClassification(t *testing.T) {
	serialization := fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"})
	deadlock := &pgconn.PgError{Code: "40P01"}
	unique := &pgconn.PgError{Code: "23505"}

	assert.True(t, isRetryable(serialization))
	assert.True(t, isRetryable(deadlock))
	assert.False(t, isRetryable(unique))
	assert.False(t, isRetryable(errors.New("boom")))

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(deadlock))

	assert.True(t, IsConflict(&StorageError{Op: "add meme", Err: unique}))
	assert.False(t, IsConflict(&StorageError{Op: "add meme", Err: deadlock}))
	assert.False(t, IsConflict(unique))
}

func TestWithRetry(t *testing.T) {
	obs := &countingObserver{}
	l := &Ledger{MaxRetries: 2, Observer: obs}

	calls := 0
	err := l.withRetry(context.Background(), "op", obs.ToggleRetried, func() error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, obs.retried)
	assert.Zero(t, obs.reconcileRetry)

	calls = 0
	err = l.withRetry(context.Background(), "op", obs.ToggleRetried, func() error {
		calls++
		return &pgconn.PgError{Code: "40P01"}
	})
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Op, "retries exhausted")
	assert.Equal(t, 3, calls)

	calls = 0
	err = l.withRetry(context.Background(), "op", obs.ToggleRetried, func() error {
		calls++
		return &NotFoundError{Resource: "meme", ID: 1}
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 1, calls)
}

func TestReconcileRetriesCountedSeparately(t *testing.T) {
	obs := &countingObserver{}
	l := &Ledger{MaxRetries: 1, Observer: obs}

	calls := 0
	err := l.withRetry(context.Background(), "reconcile favorites", l.observer().ReconcileRetried, func() error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, obs.reconcileRetry)
	assert.Zero(t, obs.retried)
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Ledger{MaxRetries: 3}

	err := l.withRetry(ctx, "op", func() {}, func() error {
		cancel()
		return &pgconn.PgError{Code: "40001"}
	})

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 20*time.Millisecond, backoff(1))
	assert.Equal(t, 80*time.Millisecond, backoff(3))
	assert.Equal(t, time.Second, backoff(10))
}

func TestDefaultSeed(t *testing.T) {
	set := DefaultSeed()
	require.NotEmpty(t, set)

	titles := map[string]bool{}
	for _, in := range set {
		_, err := newMeme(in)
		require.NoError(t, err, in.Title)
		assert.False(t, titles[in.Title], "duplicate seed title %q", in.Title)
		titles[in.Title] = true
	}
	assert.True(t, titles["Drake Hotline Bling"])
}

type countingObserver struct {
	committed      []ToggleOutcome
	retried        int
	reconcileRetry int
	corrected      int64
}

func (o *countingObserver) ToggleCommitted(out ToggleOutcome) { o.committed = append(o.committed, out) }
func (o *countingObserver) ToggleRetried()                    { o.retried++ }
func (o *countingObserver) ReconcileRetried()                 { o.reconcileRetry++ }
func (o *countingObserver) CountersCorrected(n int64)         { o.corrected += n }
