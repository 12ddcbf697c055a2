package apiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// DefaultBaseDelay is the first backoff step when a RetryPolicy leaves
// BaseDelay unset.
const DefaultBaseDelay = time.Second

// WithTimeout runs op and gives up after d. On expiry the context passed to
// op is cancelled and any result op produces later is dropped.
func WithTimeout[T any](ctx context.Context, d time.Duration, op func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, d, ErrTimedOut)
	defer cancel()

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := op(ctx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		if o.err != nil && errors.Is(context.Cause(ctx), ErrTimedOut) {
			var zero T
			return zero, fmt.Errorf("%w after %s", ErrTimedOut, d)
		}
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		if errors.Is(context.Cause(ctx), ErrTimedOut) {
			return zero, fmt.Errorf("%w after %s", ErrTimedOut, d)
		}
		return zero, ctx.Err()
	}
}

// RetryPolicy controls WithRetry. Attempt i (zero based) that fails is
// followed by a wait of BaseDelay * 2^i, except after the last attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *slog.Logger
	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// MaxBackoff is the largest wait Backoff reports; doubling saturates here
// instead of overflowing.
const MaxBackoff = time.Duration(math.MaxInt64)

// Backoff returns the wait after the failed attempt with the given index.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	attempt = max(attempt, 0)
	if attempt >= 63 || base > MaxBackoff>>attempt {
		return MaxBackoff
	}
	return base << attempt
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WithRetry calls op up to MaxAttempts times until it succeeds. When every
// attempt fails the result is a *RetriesExhaustedError wrapping the last
// failure. Cancelling ctx stops retrying and returns ctx's error.
func WithRetry[T any](ctx context.Context, p RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	attempts := max(p.MaxAttempts, 1)
	wait := p.Sleep
	if wait == nil {
		wait = sleep
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var zero T
	var last error
	for i := range attempts {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		last = err
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if i == attempts-1 {
			break
		}

		delay := p.Backoff(i)
		logger.WarnContext(ctx, "attempt failed, retrying",
			"attempt", i+1,
			"max_attempts", attempts,
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)
		if err := wait(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, &RetriesExhaustedError{Attempts: attempts, Last: last}
}
