package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

// defaultEmbedBatchSize is the number of chunks embedded per provider call.
const defaultEmbedBatchSize = 32

// Indexer owns the vector side of a session: namespace lifecycle, chunk
// embedding, and upserts. It is used by SessionManager and never exposed to
// front ends directly.
type Indexer struct {
	vectors    driven.VectorStore
	embedder   driven.EmbeddingService
	batchSize  int
	maxRetries int
}

// IndexerConfig configures batching and retry behaviour.
type IndexerConfig struct {
	// BatchSize is the number of chunks embedded per provider call.
	BatchSize int

	// MaxRetries bounds retries on transient embedding and store failures.
	MaxRetries int
}

// NewIndexer creates an indexer over the given vector store and embedder.
func NewIndexer(vectors driven.VectorStore, embedder driven.EmbeddingService, cfg IndexerConfig) *Indexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultEmbedBatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Indexer{
		vectors:    vectors,
		embedder:   embedder,
		batchSize:  cfg.BatchSize,
		maxRetries: cfg.MaxRetries,
	}
}

// EnsureSession prepares the session's namespace and pins its embedding
// model. Idempotent. Returns ErrInvalidConfig when the session was indexed
// with a different model than the one now configured.
func (ix *Indexer) EnsureSession(ctx context.Context, session *domain.Session) error {
	if session.EmbeddingModel != "" && session.EmbeddingModel != ix.embedder.ModelName() {
		return fmt.Errorf("%w: session indexed with %q but embedding model is %q",
			domain.ErrInvalidConfig, session.EmbeddingModel, ix.embedder.ModelName())
	}

	err := withRetry(ctx, ix.maxRetries, func() error {
		return ix.vectors.EnsureNamespace(ctx, session.Namespace, ix.embedder.Dimensions())
	})
	if err != nil {
		return err
	}

	session.EmbeddingModel = ix.embedder.ModelName()
	return nil
}

// IndexChunks embeds and upserts the chunks into the session's namespace.
// Failures are collected per batch rather than aborting the whole document;
// the returned report lists the chunk IDs that did not land.
func (ix *Indexer) IndexChunks(ctx context.Context, namespace string, chunks []domain.Chunk) (domain.IndexReport, error) {
	var report domain.IndexReport

	for start := 0; start < len(chunks); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		if err := ix.indexBatch(ctx, namespace, batch); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			logger.Warn("Indexing batch failed (%d chunks): %v", len(batch), err)
			for _, c := range batch {
				report.FailedChunkIDs = append(report.FailedChunkIDs, c.ID)
			}
			continue
		}
		report.Inserted += len(batch)
	}

	return report, nil
}

func (ix *Indexer) indexBatch(ctx context.Context, namespace string, batch []domain.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	var vectors [][]float32
	err := withRetry(ctx, ix.maxRetries, func() error {
		var embedErr error
		vectors, embedErr = ix.embedder.EmbedBatch(ctx, texts)
		return embedErr
	})
	if err != nil {
		return err
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding count mismatch: got %d vectors for %d chunks", len(vectors), len(batch))
	}

	points := make([]driven.VectorPoint, len(batch))
	for i, c := range batch {
		points[i] = driven.VectorPoint{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Sequence:   c.Sequence,
			Text:       c.Text,
			Embedding:  vectors[i],
		}
	}

	return withRetry(ctx, ix.maxRetries, func() error {
		return ix.vectors.Upsert(ctx, namespace, points)
	})
}

// RemoveDocument deletes the document's vectors from the namespace.
func (ix *Indexer) RemoveDocument(ctx context.Context, namespace, documentID string) error {
	return withRetry(ctx, ix.maxRetries, func() error {
		return ix.vectors.DeleteByDocument(ctx, namespace, documentID)
	})
}

// DestroyNamespace drops the namespace and every vector in it.
func (ix *Indexer) DestroyNamespace(ctx context.Context, namespace string) error {
	return withRetry(ctx, ix.maxRetries, func() error {
		return ix.vectors.DropNamespace(ctx, namespace)
	})
}

// Count returns the number of vectors in the namespace.
func (ix *Indexer) Count(ctx context.Context, namespace string) (int, error) {
	var n int
	err := withRetry(ctx, ix.maxRetries, func() error {
		var countErr error
		n, countErr = ix.vectors.Count(ctx, namespace)
		return countErr
	})
	return n, err
}
