// Package pdf extracts text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatPDF}
}

// Extract converts PDF bytes to plain text.
// Scanned PDFs without a text layer yield an empty string.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	reader, err := ledongthuc.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", domain.ErrInvalidInput, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", domain.ErrInvalidInput, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", domain.ErrInvalidInput, err)
	}

	return strings.TrimSpace(buf.String()), nil
}
