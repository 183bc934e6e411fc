// Package markdown extracts text from Markdown documents.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles Markdown documents.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatMD}
}

// Extract converts markdown bytes to plain text with formatting simplified.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	return stripMarkdown(string(content)), nil
}

var (
	codeBlockRe    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCodeRe   = regexp.MustCompile("`[^`]+`")
	imagesRe       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linksRe        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingsRe     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquoteRe   = regexp.MustCompile(`(?m)^>\s*`)
	hrRe           = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkersRe  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedListRe = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common markdown formatting for plain text content.
// This is a simplified implementation that handles common cases.
func stripMarkdown(content string) string {
	content = codeBlockRe.ReplaceAllString(content, "")
	content = inlineCodeRe.ReplaceAllString(content, "")
	content = imagesRe.ReplaceAllString(content, "")
	content = linksRe.ReplaceAllString(content, "$1")
	content = headingsRe.ReplaceAllString(content, "")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")
	content = strings.ReplaceAll(content, "_", " ")

	content = blockquoteRe.ReplaceAllString(content, "")
	content = hrRe.ReplaceAllString(content, "")
	content = listMarkersRe.ReplaceAllString(content, "")
	content = numberedListRe.ReplaceAllString(content, "")
	content = multiNewlineRe.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
