package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Retry returns the wrapped error
// unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry runs fn up to attempts times with a fixed delay between attempts.
// It stops early on success, on a Permanent error or when ctx is done.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	err := retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var perm *permanentError
			return !errors.As(err, &perm)
		}),
		retry.OnRetry(func(n uint, err error) {
			if int(n)+1 < attempts {
				zap.L().Info("Retrying request...", zap.Uint("attempt", n+2), zap.Error(err))
			}
		}),
	)
	if err == nil {
		return nil
	}

	var perm *permanentError
	if errors.As(err, &perm) {
		return perm.err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("after %d attempts, last error: %w", attempts, err)
}
