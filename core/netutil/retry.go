package netutil

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
	"time"
)

// ShouldRetry reports whether a network error is worth retrying.
// Only transient dial, reset and timeout failures qualify.
func ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && (opErr.Timeout() || opErr.Op == "dial") {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// RetryPolicy bounds Retry. Backoff doubles from Initial up to Max.
type RetryPolicy struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
}

// Retry calls fn until it succeeds, the attempts run out or ctx ends.
// onRetry, when set, is called before every wait.
func Retry(ctx context.Context, p RetryPolicy, fn func(context.Context) error, onRetry func(attempt int, err error, backoff time.Duration)) error {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	backoff := p.Initial
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= p.Attempts {
			return err
		}
		if onRetry != nil {
			onRetry(attempt, err, backoff)
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
		if backoff *= 2; p.Max > 0 && backoff > p.Max {
			backoff = p.Max
		}
	}
}
