package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/skykeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastPolicy = Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}

func networkErr(msg string) error {
	return common.NewError(common.ErrNetwork, msg, nil)
}

func TestPolicy_BackoffSchedule(t *testing.T) {
	b := DefaultPolicy().Backoff(nil)

	d, stop := b.Next()
	assert.False(t, stop)
	assert.Equal(t, time.Second, d)

	d, stop = b.Next()
	assert.False(t, stop)
	assert.Equal(t, 2*time.Second, d)

	_, stop = b.Next()
	assert.True(t, stop)
}

func TestWithRetry_SucceedsAfterNetworkErrors(t *testing.T) {
	calls := 0
	var waits []int

	got, err := WithRetry(context.Background(), fastPolicy,
		func(attempt int, _ time.Duration) { waits = append(waits, attempt) },
		func(ctx context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", networkErr("connection reset")
			}
			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, waits)
}

func TestWithRetry_ReturnsLastNetworkError(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), fastPolicy, nil, func(ctx context.Context) (int, error) {
		calls++
		return 0, networkErr("attempt failed")
	})

	require.ErrorIs(t, err, common.ErrNetwork)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_DoesNotRetryOtherKinds(t *testing.T) {
	kinds := []error{
		common.ErrInvalidCredentials,
		common.ErrServer,
		common.ErrTokenExpired,
		common.ErrUnknown,
	}
	for _, kind := range kinds {
		t.Run(kind.Error(), func(t *testing.T) {
			calls := 0
			_, err := WithRetry(context.Background(), fastPolicy, nil, func(ctx context.Context) (int, error) {
				calls++
				return 0, common.NewError(kind, "", nil)
			})
			require.ErrorIs(t, err, kind)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestWithRetry_SingleAttemptPolicy(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), Policy{MaxAttempts: 1}, nil, func(ctx context.Context) (int, error) {
		calls++
		return 0, networkErr("down")
	})
	require.ErrorIs(t, err, common.ErrNetwork)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := Policy{MaxAttempts: 3, BaseDelay: time.Hour}

	calls := 0
	start := time.Now()
	_, err := WithRetry(ctx, slow, func(int, time.Duration) { cancel() }, func(ctx context.Context) (int, error) {
		calls++
		return 0, networkErr("down")
	})

	require.ErrorIs(t, err, common.ErrNetwork)
	require.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Minute)
}
