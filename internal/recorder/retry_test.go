package recorder

import (
	"context"
	"errors"
	"felixrec/internal/structures"
	"felixrec/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRetrier() (*Retrier, *testutil.NoSleep, *testutil.MockMetrics) {
	sleeper := &testutil.NoSleep{}
	metrics := testutil.NewMockMetrics()
	conf := &structures.Config{Recorder: structures.RecorderConfig{MaxRetries: 5, RetryBaseDelay: time.Second}}
	r := NewRetrier(conf, &testutil.MockLogger{}, metrics)
	r.Sleep = sleeper.Sleep
	return r, sleeper, metrics
}

func TestRetry_SucceedsOnFifthAttempt(t *testing.T) {
	r, sleeper, metrics := newTestRetrier()

	calls := 0
	result, err := Retry(context.Background(), r, "upload", func(context.Context) (string, error) {
		calls++
		if calls < 5 {
			return "", testutil.ErrMock
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 5, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, sleeper.Recorded())
	assert.Equal(t, 4, metrics.Retries["upload"])
}

func TestRetry_FailsAfterMaxAttempts(t *testing.T) {
	r, sleeper, _ := newTestRetrier()

	calls := 0
	_, err := Retry(context.Background(), r, "upload", func(context.Context) (int, error) {
		calls++
		return 0, testutil.ErrMock
	})

	assert.ErrorIs(t, err, testutil.ErrMock)
	assert.Equal(t, 5, calls)
	assert.Len(t, sleeper.Recorded(), 4)
}

func TestRetry_FirstAttemptSuccessDoesNotSleep(t *testing.T) {
	r, sleeper, _ := newTestRetrier()

	err := RetryErr(context.Background(), r, "status", func(context.Context) error { return nil })
	assert.NoError(t, err)
	assert.Empty(t, sleeper.Recorded())
}

func TestRetry_StopsWhenContextCancelled(t *testing.T) {
	r, _, _ := newTestRetrier()
	r.Sleep = SleepContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryErr(ctx, r, "upload", func(context.Context) error {
		calls++
		return testutil.ErrMock
	})

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}

func TestTryOperation_ReturnsDefaultOnFailure(t *testing.T) {
	r, _, _ := newTestRetrier()
	logger := &testutil.MockLogger{}
	r.logger = logger

	id := TryOperation(context.Background(), r, "create", int64(-1), func(context.Context) (int64, error) {
		return 0, testutil.ErrMock
	})

	assert.Equal(t, int64(-1), id)
	assert.Equal(t, 1, logger.Count("error"))
}

func TestTryOperation_ReturnsResult(t *testing.T) {
	r, _, _ := newTestRetrier()

	id := TryOperation(context.Background(), r, "create", int64(0), func(context.Context) (int64, error) {
		return 42, nil
	})
	assert.Equal(t, int64(42), id)
}

func TestNewRetrier_Defaults(t *testing.T) {
	r := NewRetrier(&structures.Config{}, &testutil.MockLogger{}, testutil.NewMockMetrics())
	assert.Equal(t, 5, r.MaxAttempts)
	assert.Equal(t, time.Second, r.BaseDelay)
	assert.Equal(t, 16*time.Second, r.Delay(5))
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
}
