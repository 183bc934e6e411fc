// Package csvfile extracts text from CSV documents.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles CSV documents. Each data row is rendered as
// "header: value" lines so that column context survives chunking.
type Extractor struct{}

// New creates a new CSV extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatCSV}
}

// Extract converts CSV bytes to plain text.
// The first record is treated as the header row.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", fmt.Errorf("%w: malformed csv: %v", domain.ErrInvalidInput, err)
	}

	var b strings.Builder
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: malformed csv: %v", domain.ErrInvalidInput, err)
		}

		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		for i, field := range record {
			if i > 0 {
				b.WriteString("\n")
			}
			if i < len(header) && header[i] != "" {
				b.WriteString(header[i])
				b.WriteString(": ")
			}
			b.WriteString(field)
		}
	}

	return b.String(), nil
}
