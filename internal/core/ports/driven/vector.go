package driven

import "context"

// VectorStore provides namespace-scoped vector persistence and similarity
// search. Each session owns exactly one namespace; namespaces are never
// shared. Upserts are keyed by chunk ID with overwrite semantics, so
// re-indexing the same document leaves the vector count unchanged.
type VectorStore interface {
	// EnsureNamespace creates the namespace if it does not exist.
	// Idempotent: calling it again for an existing namespace is a no-op.
	EnsureNamespace(ctx context.Context, namespace string, dimensions int) error

	// DropNamespace deletes the namespace and every vector in it. Irreversible.
	DropNamespace(ctx context.Context, namespace string) error

	// Upsert inserts or overwrites vectors in the namespace.
	Upsert(ctx context.Context, namespace string, points []VectorPoint) error

	// Query returns the k nearest neighbours to the query vector,
	// optionally restricted by the filter.
	Query(ctx context.Context, namespace string, vector []float32, k int, filter VectorFilter) ([]VectorHit, error)

	// DeleteByDocument removes all vectors tagged with the document ID.
	DeleteByDocument(ctx context.Context, namespace, documentID string) error

	// Count returns the number of vectors in the namespace.
	Count(ctx context.Context, namespace string) (int, error)

	// Close releases resources.
	Close() error
}

// VectorPoint is one vector plus the metadata it is tagged with.
type VectorPoint struct {
	// ChunkID is the upsert key.
	ChunkID string

	// DocumentID tags the vector for per-document deletion and filtering.
	DocumentID string

	// Sequence is the chunk's position within its document.
	Sequence int

	// Text is the chunk content, stored as payload so retrieval does not
	// require a bookkeeping-store round trip.
	Text string

	// Embedding is the vector.
	Embedding []float32
}

// VectorFilter restricts a query to a subset of documents.
// A zero filter matches everything.
type VectorFilter struct {
	DocumentIDs []string
}

// VectorHit is one similarity-search result.
type VectorHit struct {
	ChunkID    string
	DocumentID string
	Sequence   int
	Text       string
	Score      float64
}
