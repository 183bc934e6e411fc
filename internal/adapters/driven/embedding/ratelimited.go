// Package embedding provides shared decorators for embedding services.
package embedding

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure RateLimited implements the interface.
var _ driven.EmbeddingService = (*RateLimited)(nil)

// RateLimitConfig holds rate limiting configuration for an embedding provider.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimit is a conservative default that stays well below the
// request quotas of hosted embedding APIs.
var DefaultRateLimit = RateLimitConfig{RequestsPerSecond: 5.0, BurstSize: 10}

// RateLimited wraps an EmbeddingService with a token bucket rate limiter,
// plus a backoff window honoured after 429 responses.
type RateLimited struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter

	mu      sync.Mutex
	retryAt time.Time
}

// NewRateLimited wraps the given service with rate limiting.
func NewRateLimited(inner driven.EmbeddingService, cfg RateLimitConfig) *RateLimited {
	if cfg.RequestsPerSecond <= 0 {
		cfg = DefaultRateLimit
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}

	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// wait blocks until a request can be made without exceeding the rate limit.
func (r *RateLimited) wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError records a provider 429 and sets a backoff period.
func (r *RateLimited) RecordRateLimitError(retryAfterSeconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfterSeconds <= 0 {
		retryAfterSeconds = 60
	}

	r.retryAt = time.Now().Add(time.Duration(retryAfterSeconds) * time.Second)
}

// recordIfRateLimited feeds provider 429 responses into the backoff window.
func (r *RateLimited) recordIfRateLimited(err error) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		r.RecordRateLimitError(rle.RetryAfter)
	}
}

// Embed generates a vector embedding for the given text.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	vec, err := r.inner.Embed(ctx, text)
	if err != nil {
		r.recordIfRateLimited(err)
	}
	return vec, err
}

// EmbedBatch generates embeddings for multiple texts.
// One token covers the whole batch since providers count it as one request.
func (r *RateLimited) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	vecs, err := r.inner.EmbedBatch(ctx, texts)
	if err != nil {
		r.recordIfRateLimited(err)
	}
	return vecs, err
}

// Dimensions returns the embedding vector size.
func (r *RateLimited) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the name of the embedding model being used.
func (r *RateLimited) ModelName() string {
	return r.inner.ModelName()
}

// Ping validates the underlying service is reachable.
func (r *RateLimited) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close releases resources.
func (r *RateLimited) Close() error {
	return r.inner.Close()
}
