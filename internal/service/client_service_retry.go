package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/store"
	"github.com/mlevkov/lockstep/models"
)

const kvKeyRetryState = "retry_state"

// defaultBackoffSchedule is the fixed ladder of delays between automatic
// retry attempts. The last rung is also the attempt cap: once it is spent,
// failures are still recorded but no further retry is armed until a manual
// sync succeeds or the process is restarted past its NextAttempt.
var defaultBackoffSchedule = []time.Duration{
	time.Second,
	5 * time.Second,
	15 * time.Second,
	time.Minute,
	5 * time.Minute,
}

// retryScheduler persists failure/backoff state and re-arms a timer that
// invokes the engine's deduplicated sync entry point. Persisting the state
// means a process restart resumes the countdown instead of resetting it.
type retryScheduler struct {
	kv       store.KVStore
	schedule []time.Duration
	now      func() time.Time
	trigger  func()
	logger   *logger.Logger

	mu    sync.Mutex
	timer *time.Timer
}

func newRetryScheduler(kv store.KVStore, schedule []time.Duration, now func() time.Time, trigger func(), log *logger.Logger) *retryScheduler {
	if len(schedule) == 0 {
		schedule = defaultBackoffSchedule
	}
	return &retryScheduler{
		kv:       kv,
		schedule: schedule,
		now:      now,
		trigger:  trigger,
		logger:   log,
	}
}

// maxAttempts is the attempt cap, equal to the number of rungs in the
// schedule.
func (r *retryScheduler) maxAttempts() int {
	return len(r.schedule)
}

// RecordFailure advances the persisted backoff state after a failed sync and
// arms the retry timer. Beyond the attempt cap only LastAttempt is updated;
// no further automatic retry is scheduled.
func (r *retryScheduler) RecordFailure(ctx context.Context) (models.RetryState, error) {
	st, err := r.load(ctx)
	if err != nil {
		return models.RetryState{}, err
	}

	now := r.now()
	st.LastAttempt = now

	if st.AttemptCount >= r.maxAttempts() {
		r.logger.Warn().
			Str("func", "retryScheduler.RecordFailure").
			Int("attempt_count", st.AttemptCount).
			Msg("retry attempts exhausted; waiting for manual sync")
		return st, r.persist(ctx, st)
	}

	st.AttemptCount++
	st.NextAttempt = now.Add(r.schedule[st.AttemptCount-1])
	if err = r.persist(ctx, st); err != nil {
		return models.RetryState{}, err
	}

	r.arm(st.NextAttempt.Sub(now))
	return st, nil
}

// Clear wipes the backoff state and cancels any armed timer. Called after
// every successful sync.
func (r *retryScheduler) Clear(ctx context.Context) error {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.mu.Unlock()

	if err := r.kv.Delete(ctx, kvKeyRetryState); err != nil {
		return fmt.Errorf("clear retry state: %w", err)
	}
	return nil
}

// Resume re-arms the timer from persisted state after a process restart. A
// NextAttempt already in the past fires immediately (clamped to zero). An
// AttemptCount exactly at the cap still carries the last rung's countdown,
// so it re-arms too; only state beyond the cap is stale and skipped.
func (r *retryScheduler) Resume(ctx context.Context) error {
	st, err := r.load(ctx)
	if err != nil {
		return err
	}

	if st.AttemptCount == 0 || st.AttemptCount > r.maxAttempts() || st.NextAttempt.IsZero() {
		return nil
	}

	delay := st.NextAttempt.Sub(r.now())
	if delay < 0 {
		delay = 0
	}
	r.arm(delay)

	return nil
}

// Close cancels any armed timer without touching persisted state.
func (r *retryScheduler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// State returns the current persisted backoff state, zero when none exists.
func (r *retryScheduler) State(ctx context.Context) (models.RetryState, error) {
	return r.load(ctx)
}

func (r *retryScheduler) arm(delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(delay, r.trigger)
}

func (r *retryScheduler) load(ctx context.Context) (models.RetryState, error) {
	raw, err := r.kv.Get(ctx, kvKeyRetryState)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return models.RetryState{}, nil
		}
		return models.RetryState{}, fmt.Errorf("read retry state: %w", err)
	}

	var st models.RetryState
	if err = json.Unmarshal([]byte(raw), &st); err != nil {
		return models.RetryState{}, fmt.Errorf("decode retry state: %w", err)
	}

	return st, nil
}

func (r *retryScheduler) persist(ctx context.Context, st models.RetryState) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode retry state: %w", err)
	}

	if err = r.kv.Set(ctx, kvKeyRetryState, string(payload)); err != nil {
		return fmt.Errorf("persist retry state: %w", err)
	}

	return nil
}
