package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vectormem "github.com/custodia-labs/docchat/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/docchat/internal/core/domain"
)

func testChunks(documentID string, texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:         documentID + "-chunk-" + string(rune('a'+i)),
			DocumentID: documentID,
			Sequence:   i,
			Text:       text,
		}
	}
	return chunks
}

func TestIndexer_EnsureSession(t *testing.T) {
	store := vectormem.NewStore()
	embedder := newMockEmbedder()
	ix := NewIndexer(store, embedder, IndexerConfig{})

	session := &domain.Session{ID: "s1", Namespace: "ns1"}

	require.NoError(t, ix.EnsureSession(context.Background(), session))
	assert.Equal(t, "mock-embed", session.EmbeddingModel)

	// Idempotent.
	require.NoError(t, ix.EnsureSession(context.Background(), session))

	t.Run("model mismatch", func(t *testing.T) {
		session := &domain.Session{ID: "s2", Namespace: "ns2", EmbeddingModel: "other-model"}
		err := ix.EnsureSession(context.Background(), session)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})
}

func TestIndexer_IndexChunks(t *testing.T) {
	store := vectormem.NewStore()
	embedder := newMockEmbedder()
	ix := NewIndexer(store, embedder, IndexerConfig{})

	session := &domain.Session{ID: "s1", Namespace: "ns1"}
	require.NoError(t, ix.EnsureSession(context.Background(), session))

	chunks := testChunks("doc1", "first chunk", "second chunk", "third chunk")
	report, err := ix.IndexChunks(context.Background(), "ns1", chunks)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Inserted)
	assert.Empty(t, report.FailedChunkIDs)
	assert.True(t, report.Complete())

	count, err := ix.Count(context.Background(), "ns1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestIndexer_IndexChunks_UpsertIsIdempotent(t *testing.T) {
	store := vectormem.NewStore()
	ix := NewIndexer(store, newMockEmbedder(), IndexerConfig{})

	session := &domain.Session{ID: "s1", Namespace: "ns1"}
	require.NoError(t, ix.EnsureSession(context.Background(), session))

	chunks := testChunks("doc1", "alpha", "beta")
	_, err := ix.IndexChunks(context.Background(), "ns1", chunks)
	require.NoError(t, err)
	_, err = ix.IndexChunks(context.Background(), "ns1", chunks)
	require.NoError(t, err)

	// Re-indexing the same chunk IDs overwrites, count unchanged.
	count, err := ix.Count(context.Background(), "ns1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIndexer_IndexChunks_RetriesTransientEmbedFailures(t *testing.T) {
	store := vectormem.NewStore()
	embedder := newMockEmbedder()
	embedder.failures = 2
	ix := NewIndexer(store, embedder, IndexerConfig{})

	session := &domain.Session{ID: "s1", Namespace: "ns1"}
	require.NoError(t, ix.EnsureSession(context.Background(), session))

	report, err := ix.IndexChunks(context.Background(), "ns1", testChunks("doc1", "alpha"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.True(t, report.Complete())
}

func TestIndexer_IndexChunks_CollectsFailedBatches(t *testing.T) {
	store := vectormem.NewStore()
	embedder := newMockEmbedder()
	// Outlasts the retry budget for the first batch, then recovers.
	embedder.failures = 2
	ix := NewIndexer(store, embedder, IndexerConfig{BatchSize: 2, MaxRetries: 1})

	session := &domain.Session{ID: "s1", Namespace: "ns1"}
	require.NoError(t, ix.EnsureSession(context.Background(), session))

	chunks := testChunks("doc1", "a", "b", "c", "d")
	report, err := ix.IndexChunks(context.Background(), "ns1", chunks)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Inserted)
	assert.False(t, report.Complete())
	assert.Equal(t, []string{chunks[0].ID, chunks[1].ID}, report.FailedChunkIDs)
}

func TestIndexer_RemoveDocumentAndDestroy(t *testing.T) {
	store := vectormem.NewStore()
	ix := NewIndexer(store, newMockEmbedder(), IndexerConfig{})

	session := &domain.Session{ID: "s1", Namespace: "ns1"}
	require.NoError(t, ix.EnsureSession(context.Background(), session))

	chunks := append(testChunks("doc1", "alpha"), testChunks("doc2", "beta")...)
	_, err := ix.IndexChunks(context.Background(), "ns1", chunks)
	require.NoError(t, err)

	require.NoError(t, ix.RemoveDocument(context.Background(), "ns1", "doc1"))
	count, err := ix.Count(context.Background(), "ns1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, ix.DestroyNamespace(context.Background(), "ns1"))
	count, err = ix.Count(context.Background(), "ns1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
