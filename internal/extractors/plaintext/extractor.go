// Package plaintext extracts text from plain text documents.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatTXT}
}

// Extract converts raw bytes to plain text.
// Line endings are normalised to \n and invalid UTF-8 is replaced.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	text := string(content)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, nil
}
