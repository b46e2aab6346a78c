// Package retry runs provider calls under a bounded attempt budget.
// Only failures classified transient by the provider package are retried.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace_backend/platform/ai/provider"
	"marketplace_backend/platform/logger"
)

// Backoff selects how the wait grows between attempts.
type Backoff string

const (
	BackoffFixed       Backoff = "fixed"
	BackoffExponential Backoff = "exponential"
)

// DefaultMaxAttempts applies when Policy.MaxAttempts is unset.
const DefaultMaxAttempts = 3

// ErrExhausted marks a transient failure that outlived the attempt budget.
var ErrExhausted = errors.New("retry budget exhausted")

// Policy configures Do.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Backoff     Backoff
	// Sleep waits between attempts. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Delay returns the wait after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if p.BaseDelay <= 0 || attempt < 1 {
		return 0
	}
	if p.Backoff != BackoffExponential {
		return p.BaseDelay
	}
	shift := attempt - 1
	if shift > 16 {
		shift = 16
	}
	return p.BaseDelay << shift
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

// Do invokes fn until it succeeds, fails permanently, or the budget runs out.
// An exhausted budget is reported as an error matching both ErrExhausted and
// the last provider error.
func Do[T any](ctx context.Context, p Policy, log *logger.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	maxAttempts := p.attempts()
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !provider.IsTransient(err) {
			return zero, err
		}
		if attempt == maxAttempts {
			break
		}

		delay := p.Delay(attempt)
		if log != nil {
			log.WithContext(ctx).ProviderRetry(op, attempt, delay.Milliseconds(), err)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("%s: %w after %d attempts: %w", op, ErrExhausted, maxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
