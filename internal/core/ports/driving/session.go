package driving

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// UploadResult is the outcome of uploading one document into a session.
type UploadResult struct {
	// Document is the bookkeeping record after indexing.
	Document domain.Document

	// Report summarises per-chunk indexing outcomes.
	Report domain.IndexReport

	// ChunkCount is the number of chunks produced by the chunker.
	ChunkCount int
}

// SessionService manages session lifecycle and document membership.
// It is the only owner of SessionIndex state: front ends never touch the
// vector store directly.
type SessionService interface {
	// Create allocates a new session in the Created state.
	Create(ctx context.Context) (*domain.Session, error)

	// Get retrieves a session by ID.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// List returns all sessions.
	List(ctx context.Context) ([]domain.Session, error)

	// Upload extracts, chunks, and indexes a document into the session.
	Upload(ctx context.Context, sessionID, filename string, format domain.Format, content []byte) (*UploadResult, error)

	// Documents returns the session's documents.
	Documents(ctx context.Context, sessionID string) ([]domain.Document, error)

	// RemoveDocument deletes a document, its chunks, and its vectors.
	RemoveDocument(ctx context.Context, sessionID, documentID string) error

	// Index returns the session's index view (membership and vector count).
	Index(ctx context.Context, sessionID string) (*domain.SessionIndex, error)

	// Destroy tears the session down: vectors, documents, threads.
	// Irreversible; subsequent operations fail with ErrSessionDestroyed.
	Destroy(ctx context.Context, sessionID string) error
}

// ChatService manages threads and answers questions against a session's index.
type ChatService interface {
	// CreateThread opens a new conversation thread on a session.
	// Allowed while the session is Created, Indexing, or Ready.
	CreateThread(ctx context.Context, sessionID string) (*domain.ChatThread, error)

	// ListThreads returns the session's threads.
	ListThreads(ctx context.Context, sessionID string) ([]domain.ChatThread, error)

	// History returns a thread's message history, oldest first.
	History(ctx context.Context, threadID string) ([]domain.Message, error)

	// Answer runs the full answer pipeline for one question on one thread.
	// Questions on the same thread are serialized in arrival order. When
	// documentIDs are given, retrieval is restricted to those documents.
	Answer(ctx context.Context, sessionID, threadID, question string, documentIDs ...string) (*domain.AnswerResult, error)
}

// SummaryService produces structured summaries from indexed documents.
type SummaryService interface {
	// SummariseDocument produces a single-document summary.
	SummariseDocument(ctx context.Context, sessionID, documentID string) (*domain.Summary, error)

	// SummariseSession produces a multi-document summary across the session.
	SummariseSession(ctx context.Context, sessionID string) (*domain.Summary, error)
}
