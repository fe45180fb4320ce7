package backend

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/f559/auto-novel/internal/apperrors"
)

const defaultMaxAttempts = 3

// retryDecision reports whether a failed attempt should be retried and with
// what backoff. Aborts and context cancellation never retry.
func retryDecision(err error, attempt, maxAttempts int) (bool, time.Duration) {
	if err == nil {
		return false, 0
	}
	if attempt >= maxAttempts {
		return false, 0
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, 0
	}
	if !apperrors.IsRetryable(err) {
		return false, 0
	}
	base := 1 * time.Second
	maxBackoff := 20 * time.Second
	jitterMax := 1 * time.Second

	backoff := base << (attempt - 1)
	if apperrors.IsRateLimit(err) {
		backoff = backoff * 2
	}
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(jitterMax)))
	return true, backoff + jitter
}

// withRetry runs fn up to maxAttempts times, backing off between retryable
// failures. The last error is returned unwrapped so classification survives.
func withRetry(ctx context.Context, maxAttempts int, logf LogFunc, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn()
		if err == nil {
			return nil
		}
		retry, backoff := retryDecision(err, attempt, maxAttempts)
		if !retry {
			return err
		}
		logf("Retrying after error: %s", apperrors.PublicMessage(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
