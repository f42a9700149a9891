package chartmetric

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/harmonia-labs/artistpulse/pkg/errors"
	"go.uber.org/zap"
)

func newTestThrottle(start time.Time) (*Throttle, *[]time.Duration) {
	clock := start
	sleeps := []time.Duration{}
	th := NewThrottle()
	th.now = func() time.Time { return clock }
	th.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		clock = clock.Add(d)
		return nil
	}
	return th, &sleeps
}

func TestThrottleFirstCallDoesNotWait(t *testing.T) {
	th, sleeps := newTestThrottle(time.Now())

	if err := th.Wait(context.Background(), 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*sleeps) != 0 {
		t.Errorf("first call must not sleep, slept %v", *sleeps)
	}
}

func TestThrottleEnforcesMinimumSpacing(t *testing.T) {
	th, sleeps := newTestThrottle(time.Now())
	ctx := context.Background()

	if err := th.Wait(ctx, 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := th.Wait(ctx, 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(*sleeps) != 1 || (*sleeps)[0] != 10*time.Second {
		t.Errorf("expected one 10s sleep, got %v", *sleeps)
	}
}

func TestThrottleSkipsWaitAfterLongGap(t *testing.T) {
	start := time.Now()
	th, sleeps := newTestThrottle(start)
	ctx := context.Background()

	if err := th.Wait(ctx, 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// simulate 15s of elapsed wall time
	th.now = func() time.Time { return start.Add(15 * time.Second) }
	if err := th.Wait(ctx, 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*sleeps) != 0 {
		t.Errorf("expected no sleep after a gap longer than the interval, got %v", *sleeps)
	}
}

func TestRetryWithBackoffRetriesOnlyRateLimits(t *testing.T) {
	calls := 0
	result, err := RetryWithBackoff(context.Background(), zap.NewNop(), 3, time.Millisecond, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.NewRateLimitError("slow down", 429, nil)
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 || calls != 3 {
		t.Errorf("expected success on third call, got result=%d calls=%d", result, calls)
	}
}

func TestRetryWithBackoffPropagatesPermanentErrors(t *testing.T) {
	permanent := stderrors.New("boom")
	calls := 0
	_, err := RetryWithBackoff(context.Background(), zap.NewNop(), 3, time.Millisecond, func() (int, error) {
		calls++
		return 0, permanent
	})
	if !stderrors.Is(err, permanent) {
		t.Fatalf("expected permanent error back, got %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent errors must not be retried, got %d calls", calls)
	}
}

func TestRetryWithBackoffExhaustsRetries(t *testing.T) {
	calls := 0
	_, err := RetryWithBackoff(context.Background(), zap.NewNop(), 3, time.Millisecond, func() (int, error) {
		calls++
		return 0, errors.NewRateLimitError("slow down", 429, nil)
	})
	if !errors.IsRateLimit(err) {
		t.Fatalf("expected final rate-limit error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}
