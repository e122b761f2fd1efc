package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/lodgio/lodgio-api/internal/utils"
)

// Retry policy for deadlock-prone multi-row upserts. The deterministic write
// ordering in the aggregator is the primary defense; this wrapper is the
// fallback for the collisions ordering cannot prevent.
const (
	maxDeadlockRetries = 3
	retryBaseDelay     = 100 * time.Millisecond
	retryMaxDelay      = time.Second
	retryMaxJitter     = 50 * time.Millisecond
)

// Postgres error classes treated as transient contention.
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// IsDeadlock reports whether err is a serialization/deadlock failure that is
// safe to retry.
func IsDeadlock(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected
	}
	return false
}

// WithDeadlockRetry executes op, retrying on deadlock/serialization failures
// with exponential backoff plus random jitter to de-correlate competing
// transactions. Non-deadlock errors propagate immediately. The context
// deadline is honored: the wrapper returns the context error instead of
// sleeping past it. Exhausting retries surfaces a transient-contention error
// wrapping the last failure.
func WithDeadlockRetry(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxDeadlockRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			if delay > retryMaxDelay {
				delay = retryMaxDelay
			}
			delay += time.Duration(rand.Int63n(int64(retryMaxJitter)))

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !IsDeadlock(lastErr) {
			return lastErr
		}
		log.Warn().Err(lastErr).Int("attempt", attempt+1).Msg("deadlock detected, retrying")
	}
	return fmt.Errorf("%w after %d retries: %v", utils.ErrTransientContention, maxDeadlockRetries, lastErr)
}
