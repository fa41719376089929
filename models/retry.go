package models

import "time"

// RetryState is the persisted backoff bookkeeping of the retry scheduler.
// It is created on the first failed sync, advanced on every subsequent
// failure, and deleted entirely on the first success. Persisting it means a
// process restart resumes the countdown instead of resetting it.
type RetryState struct {
	// AttemptCount is the number of consecutive failed attempts so far.
	// It never exceeds the scheduler's maximum.
	AttemptCount int `json:"attempt_count"`

	// LastAttempt is when the most recent attempt failed.
	LastAttempt time.Time `json:"last_attempt"`

	// NextAttempt is when the next automatic retry is due. Once the attempt
	// cap is reached no further NextAttempt is scheduled.
	NextAttempt time.Time `json:"next_attempt"`
}
