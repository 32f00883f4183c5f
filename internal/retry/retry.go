// Package retry provides exponential backoff and request throttling for
// calls to remote literature and model APIs.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/logger"
)

// Policy configures exponential backoff.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps any single wait.
	MaxDelay time.Duration

	// Multiplier grows the delay per attempt. Values below 1 are treated as 1.
	Multiplier float64
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return FromSettings(domain.DefaultAppSettings().Retry)
}

// FromSettings builds a policy from configured retry settings.
func FromSettings(s domain.RetrySettings) Policy {
	return Policy{
		MaxRetries: s.MaxRetries,
		BaseDelay:  s.BaseDelay,
		MaxDelay:   s.MaxDelay,
		Multiplier: s.Multiplier,
	}
}

// Delay returns the wait before retry number attempt (0-based).
func (p Policy) Delay(attempt int) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.BaseDelay) * math.Pow(mult, float64(attempt))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Error marks an error as worth retrying.
type Error struct {
	Err error

	// After is the minimum wait requested by the server, if any.
	After time.Duration
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable wraps err so Do will retry it.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Err: err}
}

// RetryableAfter wraps err so Do will retry it no sooner than after.
func RetryableAfter(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &Error{Err: err, After: after}
}

// IsRetryable reports whether err was marked retryable.
func IsRetryable(err error) bool {
	var re *Error
	return errors.As(err, &re)
}

// Do calls fn until it succeeds, returns a non-retryable error, the retry
// budget is spent, or ctx ends. The last error is returned unwrapped.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		var re *Error
		if !errors.As(err, &re) {
			return err
		}
		if attempt >= p.MaxRetries {
			return fmt.Errorf("after %d attempts: %w", attempt+1, re.Err)
		}

		wait := p.Delay(attempt)
		if re.After > wait {
			wait = re.After
		}
		logger.Debug("retry %d/%d in %s: %v", attempt+1, p.MaxRetries, wait, re.Err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
