package client

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/skykeeper/internal/common"
	"github.com/sethvargo/go-retry"
)

// Policy bounds the retries of a session call. Only network failures are
// retried; the n-th wait lasts BaseDelay * 2^(n-1).
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultPolicy makes up to three attempts, waiting 1s and then 2s.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Backoff returns a fresh schedule for one retried call. onWait, if not nil,
// is invoked before every wait with the number of the attempt that failed.
func (p Policy) Backoff(onWait func(attempt int, delay time.Duration)) retry.Backoff {
	attempt := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		if attempt >= p.MaxAttempts {
			return 0, true
		}
		delay := p.BaseDelay << (attempt - 1)
		if onWait != nil {
			onWait(attempt, delay)
		}
		return delay, false
	})
}

// WithRetry runs fn under policy p. Errors other than common.ErrNetwork are
// returned at once, and after the last attempt the last network error is
// returned as is. A context that ends while waiting yields a network error
// wrapping ctx.Err().
func WithRetry[T any](ctx context.Context, p Policy, onWait func(attempt int, delay time.Duration), fn func(ctx context.Context) (T, error)) (T, error) {
	var out, zero T

	err := retry.Do(ctx, p.Backoff(onWait), func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			if common.IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		out = v
		return nil
	})
	if err == nil {
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) && !common.IsRetryable(err) {
		return zero, common.NewError(common.ErrNetwork, "request cancelled", ctxErr)
	}
	return zero, err
}
