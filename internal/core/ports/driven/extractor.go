package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// TextExtractor maps a raw document blob to plain text.
// One extractor handles one or more declared formats; image formats are
// served by a vision-capable implementation.
type TextExtractor interface {
	// Formats returns the declared formats this extractor handles.
	Formats() []domain.Format

	// Extract converts raw bytes to plain text.
	Extract(ctx context.Context, content []byte) (string, error)
}
