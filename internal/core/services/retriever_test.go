package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vectormem "github.com/custodia-labs/docchat/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/docchat/internal/core/domain"
)

// indexForRetrieval seeds a namespace with chunks whose similarity to the
// question "what is alpha?" is fixed by the mock embedder's vector table.
func indexForRetrieval(t *testing.T, store *vectormem.Store, embedder *mockEmbedder) *domain.Session {
	t.Helper()

	embedder.vectors["what is alpha?"] = []float32{1, 0, 0, 0}
	embedder.vectors["alpha is a letter"] = []float32{1, 0, 0, 0}
	embedder.vectors["alpha and beta"] = []float32{1, 1, 0, 0}
	embedder.vectors["beta is next"] = []float32{1, 2, 0, 0}
	embedder.vectors["gamma is unrelated"] = []float32{0, 0, 1, 0}

	ix := NewIndexer(store, embedder, IndexerConfig{})
	session := &domain.Session{ID: "s1", Namespace: "ns1"}
	require.NoError(t, ix.EnsureSession(context.Background(), session))

	chunks := testChunks("doc1",
		"alpha is a letter",
		"alpha and beta",
		"beta is next",
		"gamma is unrelated",
	)
	report, err := ix.IndexChunks(context.Background(), "ns1", chunks)
	require.NoError(t, err)
	require.Equal(t, 4, report.Inserted)

	return session
}

func TestRetriever_Retrieve(t *testing.T) {
	store := vectormem.NewStore()
	embedder := newMockEmbedder()
	session := indexForRetrieval(t, store, embedder)

	r := NewRetriever(store, embedder, RetrieverConfig{})
	results, err := r.Retrieve(context.Background(), session, "what is alpha?")
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "alpha is a letter", results[0].Text)
	assert.Equal(t, "alpha and beta", results[1].Text)
	assert.Equal(t, "beta is next", results[2].Text)

	// Scores descend.
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
}

func TestRetriever_Retrieve_CustomTopK(t *testing.T) {
	store := vectormem.NewStore()
	embedder := newMockEmbedder()
	session := indexForRetrieval(t, store, embedder)

	r := NewRetriever(store, embedder, RetrieverConfig{TopK: 2})
	results, err := r.Retrieve(context.Background(), session, "what is alpha?")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRetriever_Retrieve_DocumentFilter(t *testing.T) {
	store := vectormem.NewStore()
	embedder := newMockEmbedder()
	session := indexForRetrieval(t, store, embedder)

	// Add a second document whose chunk matches the question exactly.
	embedder.vectors["alpha elsewhere"] = []float32{1, 0, 0, 0}
	ix := NewIndexer(store, embedder, IndexerConfig{})
	_, err := ix.IndexChunks(context.Background(), "ns1", testChunks("doc2", "alpha elsewhere"))
	require.NoError(t, err)

	r := NewRetriever(store, embedder, RetrieverConfig{})
	results, err := r.Retrieve(context.Background(), session, "what is alpha?", "doc2")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "doc2", results[0].DocumentID)
}

func TestRetriever_Retrieve_EmptyIndex(t *testing.T) {
	store := vectormem.NewStore()
	embedder := newMockEmbedder()
	require.NoError(t, store.EnsureNamespace(context.Background(), "ns1", embedder.Dimensions()))

	r := NewRetriever(store, embedder, RetrieverConfig{})
	session := &domain.Session{ID: "s1", Namespace: "ns1", EmbeddingModel: "mock-embed"}

	_, err := r.Retrieve(context.Background(), session, "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
}

func TestRetriever_Retrieve_ModelMismatch(t *testing.T) {
	store := vectormem.NewStore()
	embedder := newMockEmbedder()
	session := indexForRetrieval(t, store, embedder)
	session.EmbeddingModel = "some-other-model"

	r := NewRetriever(store, embedder, RetrieverConfig{})
	_, err := r.Retrieve(context.Background(), session, "what is alpha?")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestRetriever_Retrieve_EmptyQuestion(t *testing.T) {
	store := vectormem.NewStore()
	embedder := newMockEmbedder()
	session := indexForRetrieval(t, store, embedder)

	r := NewRetriever(store, embedder, RetrieverConfig{})
	_, err := r.Retrieve(context.Background(), session, "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
