package retry

import (
	"time"
)

type Strategy string

const (
	FixedStrategy   Strategy = "fixed"
	BackoffStrategy Strategy = "backoff"
)

// Stop indicates attempts are exhausted.
const Stop time.Duration = -1

// Retry computes the delay before the next try. attempts is the number of
// tries already made (>= 1).
type Retry interface {
	NextDelay(attempts int) time.Duration
}

type Option func(Retry)

func NewRetry(strategy Strategy, opts ...Option) Retry {
	var retry Retry
	switch strategy {
	case FixedStrategy:
		retry = newFixedStrategyRetry()
	case BackoffStrategy:
		retry = newBackoffStrategyRetry()
	default:
		panic("invalid strategy: " + strategy)
	}
	for _, opt := range opts {
		opt(retry)
	}
	return retry
}
