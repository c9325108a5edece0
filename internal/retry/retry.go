// Package retry re-invokes a fallible operation a bounded number of times
// with a fixed pause between attempts. It is provider-agnostic: the harness
// uses it around setup steps that can fail transiently (link issuance,
// transfers against short-lived URLs), never inside the API client itself.
package retry

import (
	"context"
	"log/slog"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

// Default policy values.
const (
	DefaultAttempts = 3
	DefaultDelay    = 2 * time.Second
)

// Policy bounds a retry sequence. Attempts counts every call including the
// first; values below 1 are treated as 1. Delay is the fixed pause between
// attempts (no backoff growth, no jitter).
type Policy struct {
	Attempts int
	Delay    time.Duration
	Logger   *slog.Logger // nil means slog.Default()
}

// DefaultPolicy returns 3 attempts with a 2 second pause.
func DefaultPolicy() Policy {
	return Policy{Attempts: DefaultAttempts, Delay: DefaultDelay}
}

// Do calls op until it returns a nil error or the policy's attempts are used
// up. The first successful result is returned immediately. When every
// attempt fails, the error from the last attempt is returned exactly as op
// produced it, so errors.Is/As and identity checks keep working. Each failed
// attempt that will be retried is logged with its number, the delay and the
// error. Cancelling ctx stops the sequence early with ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attempts := max(p.Attempts, 1)

	var (
		result  T
		attempt int
		lastErr error
	)

	limited := goretry.WithMaxRetries(uint64(attempts-1), constant(p.Delay))

	backoff := goretry.BackoffFunc(func() (time.Duration, bool) {
		next, stop := limited.Next()
		if !stop {
			logger.Warn("attempt failed, retrying",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", attempts),
				slog.Duration("delay", next),
				slog.String("error", lastErr.Error()),
			)
		}

		return next, stop
	})

	err := goretry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		v, opErr := op(ctx)
		if opErr != nil {
			lastErr = opErr

			return goretry.RetryableError(opErr)
		}

		result = v

		return nil
	})
	if err != nil {
		var zero T

		return zero, err
	}

	return result, nil
}

// Run is Do for operations that only return an error.
func Run(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})

	return err
}

// constant returns a fixed backoff. go-retry rejects non-positive constants,
// so a zero delay gets its own immediate backoff.
func constant(d time.Duration) goretry.Backoff {
	if d <= 0 {
		return goretry.BackoffFunc(func() (time.Duration, bool) {
			return 0, false
		})
	}

	return goretry.NewConstant(d)
}
