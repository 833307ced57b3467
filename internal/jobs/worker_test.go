package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockQueue struct{ mock.Mock }

func (m *mockQueue) Claim(ctx context.Context, workerID string) (*Job, error) {
	args := m.Called(ctx, workerID)
	job, _ := args.Get(0).(*Job)
	return job, args.Error(1)
}

func (m *mockQueue) MarkDone(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockQueue) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	return m.Called(ctx, id, errMsg).Error(0)
}

func (m *mockQueue) RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error {
	return m.Called(ctx, id, attempts, runAt, errMsg).Error(0)
}

type mockReconciler struct{ mock.Mock }

func (m *mockReconciler) Reconcile(ctx context.Context, memeID *uint64) (int64, error) {
	args := m.Called(ctx, memeID)
	return args.Get(0).(int64), args.Error(1)
}

type recordedJobs struct{ statuses []string }

func (r *recordedJobs) JobProcessed(_, status string) { r.statuses = append(r.statuses, status) }

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newWorker(q *mockQueue, rec *mockReconciler, obs *recordedJobs) *Worker {
	return &Worker{
		ID:         "worker-test",
		Queue:      q,
		Reconciler: rec,
		Observer:   obs,
		now:        func() time.Time { return fixedNow },
	}
}

func memeID(id uint64) *uint64 { return &id }

func TestPollNoJob(t *testing.T) {
	q := &mockQueue{}
	q.On("Claim", mock.Anything, "worker-test").Return(nil, nil).Once()

	w := newWorker(q, &mockReconciler{}, &recordedJobs{})

	assert.False(t, w.Poll(context.Background()))
	q.AssertExpectations(t)
}

func TestPollClaimError(t *testing.T) {
	q := &mockQueue{}
	q.On("Claim", mock.Anything, "worker-test").Return(nil, errors.New("db down")).Once()

	w := newWorker(q, &mockReconciler{}, &recordedJobs{})

	assert.False(t, w.Poll(context.Background()))
	q.AssertExpectations(t)
}

func TestPollReconcileDone(t *testing.T) {
	q := &mockQueue{}
	rec := &mockReconciler{}
	obs := &recordedJobs{}

	job := &Job{ID: 9, Type: TypeCounterReconcile, Payload: []byte(`{"meme_id":42}`), MaxAttempts: 8}
	q.On("Claim", mock.Anything, "worker-test").Return(job, nil).Once()
	rec.On("Reconcile", mock.Anything, memeID(42)).Return(int64(1), nil).Once()
	q.On("MarkDone", mock.Anything, uint64(9)).Return(nil).Once()

	w := newWorker(q, rec, obs)

	assert.True(t, w.Poll(context.Background()))
	q.AssertExpectations(t)
	rec.AssertExpectations(t)
	assert.Equal(t, []string{StatusDone}, obs.statuses)
}

func TestPollReconcileAllMemes(t *testing.T) {
	q := &mockQueue{}
	rec := &mockReconciler{}

	job := &Job{ID: 3, Type: TypeCounterReconcile, Payload: []byte(`{}`), MaxAttempts: 8}
	q.On("Claim", mock.Anything, "worker-test").Return(job, nil).Once()
	rec.On("Reconcile", mock.Anything, (*uint64)(nil)).Return(int64(0), nil).Once()
	q.On("MarkDone", mock.Anything, uint64(3)).Return(nil).Once()

	w := newWorker(q, rec, &recordedJobs{})

	assert.True(t, w.Poll(context.Background()))
	rec.AssertExpectations(t)
}

func TestPollReconcileErrorRetries(t *testing.T) {
	q := &mockQueue{}
	rec := &mockReconciler{}
	obs := &recordedJobs{}

	job := &Job{ID: 9, Type: TypeCounterReconcile, Payload: []byte(`{}`), Attempts: 1, MaxAttempts: 8}
	q.On("Claim", mock.Anything, "worker-test").Return(job, nil).Once()
	rec.On("Reconcile", mock.Anything, (*uint64)(nil)).Return(int64(0), errors.New("serialization failure")).Once()
	q.On("RetryLater", mock.Anything, uint64(9), 2, fixedNow.Add(4*time.Second), "serialization failure").
		Return(nil).Once()

	w := newWorker(q, rec, obs)

	assert.True(t, w.Poll(context.Background()))
	q.AssertExpectations(t)
	assert.Equal(t, []string{"RETRY"}, obs.statuses)
}

func TestPollReconcileErrorGivesUp(t *testing.T) {
	q := &mockQueue{}
	rec := &mockReconciler{}
	obs := &recordedJobs{}

	job := &Job{ID: 9, Type: TypeCounterReconcile, Payload: []byte(`{}`), Attempts: 7, MaxAttempts: 8}
	q.On("Claim", mock.Anything, "worker-test").Return(job, nil).Once()
	rec.On("Reconcile", mock.Anything, (*uint64)(nil)).Return(int64(0), errors.New("still broken")).Once()
	q.On("MarkFailed", mock.Anything, uint64(9), "still broken").Return(nil).Once()

	w := newWorker(q, rec, obs)

	assert.True(t, w.Poll(context.Background()))
	q.AssertExpectations(t)
	q.AssertNotCalled(t, "RetryLater", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []string{StatusFailed}, obs.statuses)
}

func TestPollBadPayload(t *testing.T) {
	q := &mockQueue{}
	rec := &mockReconciler{}

	job := &Job{ID: 5, Type: TypeCounterReconcile, Payload: []byte(`{"meme_id":"x"}`), MaxAttempts: 8}
	q.On("Claim", mock.Anything, "worker-test").Return(job, nil).Once()
	q.On("MarkFailed", mock.Anything, uint64(5), "bad payload").Return(nil).Once()

	w := newWorker(q, rec, &recordedJobs{})

	assert.True(t, w.Poll(context.Background()))
	q.AssertExpectations(t)
	rec.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
}

func TestPollUnknownType(t *testing.T) {
	q := &mockQueue{}

	job := &Job{ID: 6, Type: "SEND_EMAIL", Payload: []byte(`{}`), MaxAttempts: 8}
	q.On("Claim", mock.Anything, "worker-test").Return(job, nil).Once()
	q.On("MarkFailed", mock.Anything, uint64(6), "unknown job type").Return(nil).Once()

	w := newWorker(q, &mockReconciler{}, &recordedJobs{})

	assert.True(t, w.Poll(context.Background()))
	q.AssertExpectations(t)
}

func TestRunStopsOnCancel(t *testing.T) {
	q := &mockQueue{}
	q.On("Claim", mock.Anything, "worker-test").Return(nil, nil).Maybe()

	w := newWorker(q, &mockReconciler{}, &recordedJobs{})
	w.PollInterval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	assert.NoError(t, w.Run(ctx))
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, retryDelay(1))
	assert.Equal(t, 8*time.Second, retryDelay(3))
	assert.Equal(t, 600*time.Second, retryDelay(12))
}

type mockEnqueuer struct{ mock.Mock }

func (m *mockEnqueuer) EnqueueReconcile(ctx context.Context, memeID *uint64) (uint64, error) {
	args := m.Called(ctx, memeID)
	return args.Get(0).(uint64), args.Error(1)
}

func TestSchedulerEnqueuesFullReconcile(t *testing.T) {
	q := &mockEnqueuer{}
	fired := make(chan struct{}, 1)
	q.On("EnqueueReconcile", mock.Anything, (*uint64)(nil)).
		Return(uint64(1), nil).
		Run(func(mock.Arguments) {
			select {
			case fired <- struct{}{}:
			default:
			}
		})

	s := &Scheduler{Queue: q, Interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never enqueued")
	}
	cancel()
	assert.NoError(t, <-done)
}

func TestSchedulerDisabled(t *testing.T) {
	s := &Scheduler{Queue: &mockEnqueuer{}}
	assert.NoError(t, s.Run(context.Background()))
}
