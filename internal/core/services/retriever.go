package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

// defaultTopK is the number of chunks retrieved per question.
const defaultTopK = 3

// Retriever turns a question into the top-k most similar chunks from a
// session's namespace.
type Retriever struct {
	vectors    driven.VectorStore
	embedder   driven.EmbeddingService
	topK       int
	maxRetries int
}

// RetrieverConfig configures retrieval behaviour.
type RetrieverConfig struct {
	// TopK is the number of chunks to retrieve per question.
	TopK int

	// MaxRetries bounds retries on transient store failures.
	MaxRetries int
}

// NewRetriever creates a retriever over the given vector store and embedder.
func NewRetriever(vectors driven.VectorStore, embedder driven.EmbeddingService, cfg RetrieverConfig) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Retriever{
		vectors:    vectors,
		embedder:   embedder,
		topK:       cfg.TopK,
		maxRetries: cfg.MaxRetries,
	}
}

// Retrieve embeds the question and returns the session's top-k most similar
// chunks, score descending. Equal scores tie-break on document ID then
// sequence so results are deterministic. When document IDs are given, the
// search is restricted to those documents.
//
// Returns ErrEmptyIndex when the session has no indexed vectors and
// ErrInvalidConfig when the session was indexed with a different embedding
// model than the one now configured.
func (r *Retriever) Retrieve(ctx context.Context, session *domain.Session, question string, documentIDs ...string) ([]domain.RetrievalResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	if session.EmbeddingModel != "" && session.EmbeddingModel != r.embedder.ModelName() {
		return nil, fmt.Errorf("%w: session indexed with %q but embedding model is %q",
			domain.ErrInvalidConfig, session.EmbeddingModel, r.embedder.ModelName())
	}

	var count int
	err := withRetry(ctx, r.maxRetries, func() error {
		var countErr error
		count, countErr = r.vectors.Count(ctx, session.Namespace)
		return countErr
	})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domain.ErrEmptyIndex
	}

	var vector []float32
	err = withRetry(ctx, r.maxRetries, func() error {
		var embedErr error
		vector, embedErr = r.embedder.Embed(ctx, question)
		return embedErr
	})
	if err != nil {
		return nil, err
	}

	var hits []driven.VectorHit
	err = withRetry(ctx, r.maxRetries, func() error {
		var queryErr error
		hits, queryErr = r.vectors.Query(ctx, session.Namespace, vector, r.topK, driven.VectorFilter{DocumentIDs: documentIDs})
		return queryErr
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("Retrieved %d hits from namespace %s", len(hits), session.Namespace)

	results := make([]domain.RetrievalResult, 0, len(hits))
	seen := make(map[string]bool, len(hits))
	for _, h := range hits {
		if seen[h.ChunkID] {
			continue
		}
		seen[h.ChunkID] = true
		results = append(results, domain.RetrievalResult{
			ChunkID:    h.ChunkID,
			DocumentID: h.DocumentID,
			Sequence:   h.Sequence,
			Text:       h.Text,
			Score:      h.Score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].DocumentID != results[j].DocumentID {
			return results[i].DocumentID < results[j].DocumentID
		}
		return results[i].Sequence < results[j].Sequence
	})

	if len(results) > r.topK {
		results = results[:r.topK]
	}
	return results, nil
}
