package embedding

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// RateLimitError reports a provider 429 response. RetryAfter carries the
// server's Retry-After value in seconds, zero when the header was absent.
type RateLimitError struct {
	Provider   string
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited, retry after %ds", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited", e.Provider)
}

// Unwrap keeps rate limit errors retriable like other transient embedding
// failures.
func (e *RateLimitError) Unwrap() error { return domain.ErrEmbeddingUnavailable }

// IsRateLimited returns true if the error indicates a provider 429.
func IsRateLimited(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

// RetryAfterSeconds parses a Retry-After header value. Only the
// delta-seconds form is supported; the HTTP-date form yields zero.
func RetryAfterSeconds(header string) int {
	n, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
