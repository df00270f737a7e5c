package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/pkg/retry"
)

var (
	errFlaky = errors.New("flaky")
	errFatal = errors.New("fatal")
)

func fastPolicy(attempts uint) retry.Policy {
	return retry.Policy{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      2,
	}
}

func isFlaky(err error) bool { return errors.Is(err, errFlaky) }

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	got, err := retry.Do(context.Background(), fastPolicy(5), isFlaky, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errFlaky
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsAtMaxAttempts(t *testing.T) {
	calls := 0
	var notified int
	p := fastPolicy(3)
	p.OnRetry = func(err error, _ time.Duration) {
		assert.ErrorIs(t, err, errFlaky)
		notified++
	}

	_, err := retry.Do(context.Background(), p, isFlaky, func(context.Context) (int, error) {
		calls++
		return 0, errFlaky
	})

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, notified)
}

func TestDo_PermanentErrorIsNotRetried(t *testing.T) {
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy(5), isFlaky, func(context.Context) (int, error) {
		calls++
		return 0, errFatal
	})

	assert.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroAttemptsMeansOne(t *testing.T) {
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy(0), isFlaky, func(context.Context) (int, error) {
		calls++
		return 0, errFlaky
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDefaultPolicies(t *testing.T) {
	assert.EqualValues(t, 5, retry.Embedding().MaxAttempts)
	assert.EqualValues(t, 3, retry.Generation().MaxAttempts)
}
