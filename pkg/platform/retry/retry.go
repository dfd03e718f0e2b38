// Package retry provides a bounded linear-backoff retry wrapper for
// collaborator calls that may fail transiently. It never retries
// indefinitely and never swallows the final failure.
package retry

import (
	"context"
	"time"

	derrors "convoy/pkg/domain-errors"
)

// Policy holds the retry parameters. The zero value performs a single
// attempt with no delay.
//
// Invariants:
//   - Retries >= 0 (total attempts = Retries + 1)
//   - BaseDelay > 0 when Retries > 0
//   - wait before attempt n+1 is BaseDelay * n (linear backoff)
type Policy struct {
	Retries   int
	BaseDelay time.Duration
}

// New constructs a Policy, validating its parameters.
func New(retries int, baseDelay time.Duration) (Policy, error) {
	if retries < 0 {
		return Policy{}, derrors.New(derrors.CodeValidation, "retries must be >= 0")
	}
	if retries > 0 && baseDelay <= 0 {
		return Policy{}, derrors.New(derrors.CodeValidation, "base delay must be positive")
	}
	return Policy{Retries: retries, BaseDelay: baseDelay}, nil
}

// Do executes op, retrying on failure until the policy is exhausted. The
// last error is returned unwrapped so callers can inspect it. Context
// cancellation aborts the wait between attempts and surfaces ctx.Err().
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var last error
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			if err := p.wait(ctx, attempt); err != nil {
				return err
			}
		}
		if last = op(ctx); last == nil {
			return nil
		}
	}
	return last
}

// Do1 executes op and returns its value, retrying per the policy. Generic
// counterpart of Policy.Do for operations that produce a result.
func Do1[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var (
		result T
		last   error
	)
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			if err := p.wait(ctx, attempt); err != nil {
				return result, err
			}
		}
		if result, last = op(ctx); last == nil {
			return result, nil
		}
	}
	return result, last
}

func (p Policy) wait(ctx context.Context, attempt int) error {
	delay := p.BaseDelay * time.Duration(attempt)
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
