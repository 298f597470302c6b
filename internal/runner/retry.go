package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Retry wraps a Runner with bounded retries and exponential backoff.
// The n-th retry waits Base<<n (1s, 2s, 4s, ... with the default Base)
// before running again. Context cancellation aborts the wait immediately
// and surfaces as the context's error, never as a command failure.
type Retry struct {
	Runner   Runner
	Attempts int           // total attempts, minimum 1
	Base     time.Duration // backoff unit, defaults to time.Second
	Log      *slog.Logger
}

func (r Retry) Run(ctx context.Context, name string, args ...string) error {
	_, err := r.retry(ctx, name, func() ([]byte, error) {
		return nil, r.Runner.Run(ctx, name, args...)
	})
	return err
}

func (r Retry) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return r.retry(ctx, name, func() ([]byte, error) {
		return r.Runner.Output(ctx, name, args...)
	})
}

func (r Retry) retry(ctx context.Context, name string, run func() ([]byte, error)) ([]byte, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	base := r.Base
	if base <= 0 {
		base = time.Second
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := base << (attempt - 1)
			r.logger().Warn("command failed, retrying",
				"command", name,
				"attempt", attempt+1,
				"max_attempts", attempts,
				"delay", delay,
				"error", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		out, err := run()
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

func (r Retry) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}
