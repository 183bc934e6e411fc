// Package extractors provides text extraction implementations per document format.
package extractors

import (
	"fmt"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Registry maps document formats to their text extractors.
// Later registrations win, so a vision-capable extractor can take over
// the image formats from a default registration.
type Registry struct {
	byFormat map[domain.Format]driven.TextExtractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		byFormat: make(map[domain.Format]driven.TextExtractor),
	}
}

// Register adds an extractor for every format it declares.
func (r *Registry) Register(e driven.TextExtractor) {
	for _, f := range e.Formats() {
		r.byFormat[f] = e
	}
}

// For returns the extractor registered for the given format.
// Returns ErrUnsupportedFormat when no extractor handles it.
func (r *Registry) For(format domain.Format) (driven.TextExtractor, error) {
	e, ok := r.byFormat[format]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %q", domain.ErrUnsupportedFormat, format)
	}
	return e, nil
}

// Formats returns all formats with a registered extractor.
func (r *Registry) Formats() []domain.Format {
	formats := make([]domain.Format, 0, len(r.byFormat))
	for f := range r.byFormat {
		formats = append(formats, f)
	}
	return formats
}
