package txn

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/common"
)

func TestRunSucceedsFirstAttempt(t *testing.T) {
	r := New(WithBaseBackoff(0))

	calls := 0
	err := r.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRunRetriesOnVersionConflict(t *testing.T) {
	r := New(WithBaseBackoff(0))

	calls := 0
	err := r.Run(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: lost the write", common.ErrVersionConflict)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRunDoesNotRetryDomainErrors(t *testing.T) {
	r := New(WithBaseBackoff(0))

	for _, sentinel := range []error{
		common.ErrInvalidArgument,
		common.ErrNotFound,
		common.ErrUnavailable,
		common.ErrPermissionDenied,
	} {
		calls := 0
		err := r.Run(context.Background(), func(ctx context.Context) error {
			calls++
			return fmt.Errorf("%w: terminal", sentinel)
		})
		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 1, calls, "%v must surface without a retry", sentinel)
	}
}

func TestRunExhaustionSurfacesConflict(t *testing.T) {
	r := New(WithMaxAttempts(3), WithBaseBackoff(0))

	calls := 0
	err := r.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("%w: still losing", common.ErrVersionConflict)
	})
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.NotErrorIs(t, err, common.ErrVersionConflict, "exhaustion is not itself retryable")
	assert.Equal(t, 3, calls)
}

func TestRunBackoffDoubles(t *testing.T) {
	r := New(WithMaxAttempts(4), WithBaseBackoff(10*time.Millisecond))

	var slept []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	err := r.Run(context.Background(), func(ctx context.Context) error {
		return common.ErrVersionConflict
	})
	require.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
	}, slept)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	r := New(WithBaseBackoff(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, func(ctx context.Context) error {
		t.Fatal("attempt must not run on a dead context")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunNilAttempt(t *testing.T) {
	err := New().Run(context.Background(), nil)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrConflict))
}
