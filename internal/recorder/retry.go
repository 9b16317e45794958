package recorder

import (
	"context"
	"felixrec/internal/providers"
	"felixrec/internal/structures"
	"fmt"
	"time"
)

const (
	defaultMaxAttempts = 5
	defaultBaseDelay   = time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retrier runs operations with exponential backoff: the delay after attempt n is
// BaseDelay * 2^(n-1), and at most MaxAttempts attempts are made.
type Retrier struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       SleepFunc
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
}

func NewRetrier(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *Retrier {
	attempts := conf.Recorder.MaxRetries
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	base := conf.Recorder.RetryBaseDelay
	if base <= 0 {
		base = defaultBaseDelay
	}
	return &Retrier{
		MaxAttempts: attempts,
		BaseDelay:   base,
		Sleep:       SleepContext,
		logger:      logger,
		metrics:     metrics,
	}
}

// Delay returns the wait after the given failed attempt (1-based).
func (r *Retrier) Delay(attempt int) time.Duration {
	return r.BaseDelay << (attempt - 1)
}

// Retry runs op until it succeeds or the attempts are exhausted, returning the last error.
func Retry[T any](ctx context.Context, r *Retrier, name string, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == r.MaxAttempts {
			break
		}

		delay := r.Delay(attempt)
		r.metrics.IncRetries(name)
		r.logger.Warnf(providers.TypeExecutor, "%s failed (attempt %d/%d), retrying in %s: %s", name, attempt, r.MaxAttempts, delay, err)
		if sleepErr := r.Sleep(ctx, delay); sleepErr != nil {
			return zero, fmt.Errorf("%s: %w", name, sleepErr)
		}
	}

	return zero, fmt.Errorf("%s failed after %d attempts: %w", name, r.MaxAttempts, lastErr)
}

// RetryErr is Retry for operations without a result.
func RetryErr(ctx context.Context, r *Retrier, name string, op func(ctx context.Context) error) error {
	_, err := Retry(ctx, r, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// TryOperation is Retry that logs the final error and returns def instead.
func TryOperation[T any](ctx context.Context, r *Retrier, name string, def T, op func(ctx context.Context) (T, error)) T {
	result, err := Retry(ctx, r, name, op)
	if err != nil {
		r.logger.Errorf(providers.TypeExecutor, "%s failed after all retries: %s", name, err)
		return def
	}
	return result
}
