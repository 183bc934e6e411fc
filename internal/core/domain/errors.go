package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates invalid configuration parameters.
	// Never retried; surfaced to the caller immediately.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedFormat indicates a document format with no registered extractor.
	// An expected user-facing condition, never retried.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmptyIndex indicates a query against a session with no indexed vectors.
	// Recoverable: callers should tell the user to upload documents first.
	ErrEmptyIndex = errors.New("no documents indexed")

	// ErrIndexUnavailable indicates the vector store is unreachable.
	// Transient: mutations are retried with bounded backoff before this surfaces.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGeneration indicates the generation provider failed or is unreachable.
	ErrGeneration = errors.New("generation failed")

	// ErrSessionDestroyed indicates an operation on a destroyed session or on
	// a thread that belonged to one. A lifecycle error, fatal to the call.
	ErrSessionDestroyed = errors.New("session destroyed")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generation service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
