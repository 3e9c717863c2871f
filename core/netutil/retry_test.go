package netutil

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestShouldRetry(t *testing.T) {
	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}
	if !ShouldRetry(dialErr) {
		t.Fatal("dial error should be retried")
	}
	if ShouldRetry(errors.New("bad request")) {
		t.Fatal("plain error should not be retried")
	}
	if ShouldRetry(context.Canceled) {
		t.Fatal("cancellation should not be retried")
	}
}

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	var waits []int
	err := Retry(context.Background(), RetryPolicy{Attempts: 5, Initial: time.Millisecond}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, func(attempt int, _ error, _ time.Duration) {
		waits = append(waits, attempt)
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if calls != 3 || len(waits) != 2 {
		t.Fatalf("calls = %d, waits = %v", calls, waits)
	}
}

func TestRetryGivesUp(t *testing.T) {
	want := errors.New("down")
	calls := 0
	err := Retry(context.Background(), RetryPolicy{Attempts: 2, Initial: time.Millisecond}, func(context.Context) error {
		calls++
		return want
	}, nil)
	if !errors.Is(err, want) || calls != 2 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, RetryPolicy{Attempts: 3, Initial: time.Hour}, func(context.Context) error {
		return errors.New("down")
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
