package domain

import (
	"strings"
	"time"
)

// DocumentStatus tracks a document through the indexing lifecycle.
type DocumentStatus string

// Document lifecycle states.
const (
	DocumentUploaded  DocumentStatus = "uploaded"
	DocumentExtracted DocumentStatus = "extracted"
	DocumentIndexed   DocumentStatus = "indexed"
	DocumentFailed    DocumentStatus = "failed"
)

// Format is the declared file format of an uploaded document.
type Format string

// Supported document formats.
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
	FormatCSV  Format = "csv"
	FormatMD   Format = "md"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatJPG  Format = "jpg"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
)

// imageFormats are routed through the vision/OCR extraction path.
var imageFormats = map[Format]bool{
	FormatJPG:  true,
	FormatJPEG: true,
	FormatPNG:  true,
	FormatGIF:  true,
}

// IsImage reports whether the format requires vision/OCR extraction.
func (f Format) IsImage() bool {
	return imageFormats[f]
}

// ParseFormat maps a file extension (with or without a leading dot) to a
// Format. Returns ErrUnsupportedFormat for anything outside the supported set.
func ParseFormat(ext string) (Format, error) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	switch f := Format(ext); f {
	case FormatPDF, FormatDOCX, FormatTXT, FormatCSV, FormatMD,
		FormatXLSX, FormatXLS, FormatJPG, FormatJPEG, FormatPNG, FormatGIF:
		return f, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Document represents an uploaded document owned by a session.
// The raw bytes live outside the domain; the document carries identity,
// declared format, and indexing status only.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// SessionID links to the owning session.
	SessionID string

	// Filename is the name the document was uploaded under.
	Filename string

	// Format is the declared file format.
	Format Format

	// Status is the current indexing lifecycle state.
	Status DocumentStatus

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time

	// UpdatedAt is when the status last changed.
	UpdatedAt time.Time
}

// Chunk is a bounded text segment derived from a document; the unit of
// embedding and retrieval. Chunks are immutable once created except for
// the Embedding assignment.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Sequence is the ordinal position within the document.
	Sequence int

	// Text is the chunk content.
	Text string

	// Start and End are the character span within the extracted text.
	// Adjacent chunks may overlap, but spans never regress.
	Start int
	End   int

	// Embedding is the vector representation, nil until computed.
	Embedding []float32
}

// IndexReport summarises the outcome of indexing one document.
// Per-chunk failures are collected rather than failing the whole batch;
// the FailedChunkIDs list is retriable.
type IndexReport struct {
	Inserted       int
	FailedChunkIDs []string
}

// Complete reports whether every chunk was indexed.
func (r IndexReport) Complete() bool {
	return len(r.FailedChunkIDs) == 0
}
