// Package docx extracts text from DOCX documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatDOCX}
}

// Extract converts DOCX bytes to plain text.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: open docx archive: %v", domain.ErrInvalidInput, err)
	}
	return extractDocumentText(reader)
}

// extractDocumentText extracts text from word/document.xml.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open document.xml: %v", domain.ErrInvalidInput, err)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: read document.xml: %v", domain.ErrInvalidInput, err)
		}

		return parseDocumentXML(content), nil
	}
	return "", fmt.Errorf("%w: word/document.xml not found", domain.ErrInvalidInput)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts text content from the document XML.
func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String())
}
