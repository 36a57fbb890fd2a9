package retry

import (
	"math"
	"time"
)

// BackoffStrategyRetry grows the delay exponentially:
// base * multiplier^(attempts-1), capped at maxDelay, stopping after
// maxAttempts tries.
type BackoffStrategyRetry struct {
	base        time.Duration
	multiplier  float64
	maxDelay    time.Duration
	maxAttempts int
}

func newBackoffStrategyRetry() *BackoffStrategyRetry {
	return &BackoffStrategyRetry{
		base:        time.Minute,
		multiplier:  2,
		maxDelay:    time.Hour,
		maxAttempts: 5,
	}
}

func WithBackoff(base time.Duration, multiplier float64, maxDelay time.Duration) Option {
	return func(r Retry) {
		retry := r.(*BackoffStrategyRetry)
		retry.base = base
		retry.multiplier = multiplier
		retry.maxDelay = maxDelay
	}
}

func WithMaxAttempts(maxAttempts int) Option {
	return func(r Retry) {
		retry := r.(*BackoffStrategyRetry)
		retry.maxAttempts = maxAttempts
	}
}

func (r *BackoffStrategyRetry) NextDelay(attempts int) time.Duration {
	if attempts >= r.maxAttempts {
		return Stop
	}
	delay := time.Duration(float64(r.base) * math.Pow(r.multiplier, float64(attempts-1)))
	if delay > r.maxDelay || delay < 0 {
		delay = r.maxDelay
	}
	return delay
}
