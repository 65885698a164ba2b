// Package retry implements the bounded synchronous backoff used for all
// outbound data-provider calls. Retries block the invocation's single thread
// on purpose; the Lambda timeout is the outer bound and deployment config
// must keep worst-case total backoff under it.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy retries an operation up to MaxAttempts times, sleeping
// Base<<attempt between attempts (with the default Base: 1s, 2s, 4s...).
type Policy struct {
	MaxAttempts int
	Base        time.Duration

	sleep func(context.Context, time.Duration) error
}

func New(maxAttempts int) Policy {
	return Policy{MaxAttempts: maxAttempts, Base: time.Second}
}

// Do runs fn until it succeeds or attempts are exhausted. The final failure
// wraps the last underlying error; no partial or stale result is ever
// substituted.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := p.Base
	if base <= 0 {
		base = time.Second
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt < attempts-1 {
			if err := sleep(ctx, base<<attempt); err != nil {
				return fmt.Errorf("retry aborted: %w", err)
			}
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
