package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The same model/version must be used for indexing and querying within a
// session's lifetime; the retriever enforces this via ModelName.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536, 3072).
	// This must match the vector store's namespace configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
