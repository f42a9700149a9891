package chartmetric

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/harmonia-labs/artistpulse/pkg/errors"
	"go.uber.org/zap"
)

// Throttle is a single global cooldown gate: it enforces a hard floor on the
// spacing between outbound requests regardless of how many call sites share
// it. It is not a token bucket. One instance is constructed per process and
// injected into every caller so unrelated call sites respect one cadence.
type Throttle struct {
	mu       sync.Mutex
	lastCall time.Time
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewThrottle() *Throttle {
	return &Throttle{
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// Wait suspends until at least minInterval has passed since the previous
// call, then stamps the call time. The lock is held across the sleep so
// concurrent callers queue behind the same cadence instead of racing the
// timestamp.
func (t *Throttle) Wait(ctx context.Context, minInterval time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.lastCall.IsZero() {
		if wait := minInterval - t.now().Sub(t.lastCall); wait > 0 {
			if err := t.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	t.lastCall = t.now()
	return nil
}

// Reset clears the last-call timestamp. Intended for tests.
func (t *Throttle) Reset() {
	t.mu.Lock()
	t.lastCall = time.Time{}
	t.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryWithBackoff runs fn, retrying with exponential backoff only when the
// failure is a rate-limit signal. Any other error propagates immediately:
// non-rate-limit failures are assumed permanent. After maxRetries attempts
// the last rate-limit error propagates and the caller treats the data point
// as unavailable.
func RetryWithBackoff[T any](ctx context.Context, logger *zap.Logger, maxRetries int, baseDelay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !errors.IsRateLimit(err) {
			return zero, err
		}
		if attempt == maxRetries-1 {
			break
		}

		delay := time.Duration(float64(baseDelay) * math.Pow(2, float64(attempt)))
		logger.Warn("Rate limited, backing off",
			zap.Duration("delay", delay),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
		)
		if err := sleepCtx(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}
