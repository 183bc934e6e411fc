package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// PostProcessor transforms extracted text into chunks, or refines chunks
// produced by an earlier processor in the pipeline.
type PostProcessor interface {
	// Name returns the processor name for registry lookup and error reporting.
	Name() string

	// Process runs the processor. The first processor in a pipeline
	// receives nil chunks and creates them from the extracted text;
	// later processors receive and may modify the chunk set.
	Process(ctx context.Context, doc *domain.Document, text string, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains processors in order.
type PostProcessorPipeline interface {
	// Process runs the document's extracted text through all processors.
	Process(ctx context.Context, doc *domain.Document, text string) ([]domain.Chunk, error)
}
