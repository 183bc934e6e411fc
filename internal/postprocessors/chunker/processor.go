// Package chunker provides a boundary-aware overlapping text chunker.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits extracted text into overlapping chunks, preferring to cut
// on paragraph, then sentence, then whitespace boundaries near the target
// size. It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

var _ driven.PostProcessor = (*Processor)(nil)

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// Returns ErrInvalidConfig if chunk size is not positive, overlap is
// negative, or overlap is not smaller than the chunk size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, p.chunkSize)
	}
	if p.overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrInvalidConfig, p.overlap)
	}
	if p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrInvalidConfig, p.overlap, p.chunkSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the extracted text into chunks.
// Input chunks are ignored; this processor creates new chunks from the text.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, text string, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	textLen := len(text)
	estimated := (textLen / (p.chunkSize - p.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	sequence := 0

	for start < textLen {
		end := start + p.chunkSize
		if end >= textLen {
			end = textLen
		} else {
			end = p.backOff(text, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Sequence:   sequence,
			Text:       text[start:end],
			Start:      start,
			End:        end,
		})
		sequence++

		if end >= textLen {
			break
		}

		next := end - p.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks, nil
}

// backOff moves a cut point backwards to the nearest natural boundary within
// a tolerance window of the target. Paragraph breaks win over sentence ends,
// which win over any whitespace. Returns end unchanged when the window holds
// no boundary at all.
func (p *Processor) backOff(text string, start, end int) int {
	tolerance := p.chunkSize / 5
	windowStart := end - tolerance
	if windowStart <= start {
		windowStart = start + 1
	}
	window := text[windowStart:end]

	if idx := strings.LastIndex(window, "\n\n"); idx >= 0 {
		return windowStart + idx + 2
	}

	best := -1
	for _, boundary := range []string{". ", "! ", "? ", ".\n", "!\n", "?\n"} {
		if idx := strings.LastIndex(window, boundary); idx >= 0 && idx+len(boundary) > best {
			best = idx + len(boundary)
		}
	}
	if best >= 0 {
		return windowStart + best
	}

	if idx := strings.LastIndexAny(window, " \t\n"); idx >= 0 {
		return windowStart + idx + 1
	}

	return end
}
