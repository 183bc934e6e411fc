package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// defaultMaxRetries bounds retries for transient provider failures.
const defaultMaxRetries = 5

// retryDelay returns the backoff delay for the given attempt, starting at
// 200ms and doubling up to a 5s ceiling.
func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

// retriable reports whether an error is a transient infrastructure failure
// worth retrying. Validation and lifecycle errors are never retried.
func retriable(err error) bool {
	return errors.Is(err, domain.ErrIndexUnavailable) ||
		errors.Is(err, domain.ErrEmbeddingUnavailable) ||
		errors.Is(err, domain.ErrLLMUnavailable)
}

// withRetry runs op, retrying transient failures with exponential backoff
// until it succeeds, a non-retriable error occurs, the attempt budget is
// exhausted, or the context is cancelled.
func withRetry(ctx context.Context, maxRetries int, op func() error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	var err error
	for attempt := 0; ; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !retriable(err) || attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(retryDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
