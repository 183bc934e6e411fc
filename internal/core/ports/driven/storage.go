package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// SessionStore persists session records. The vector store holds the vectors;
// this store holds identity and lifecycle bookkeeping only.
type SessionStore interface {
	// SaveSession stores or updates a session.
	SaveSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// ListSessions returns all sessions, newest first.
	ListSessions(ctx context.Context) ([]domain.Session, error)

	// DeleteSession removes a session record.
	DeleteSession(ctx context.Context, id string) error
}

// DocumentStore persists document and chunk bookkeeping.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns documents for a session.
	ListDocuments(ctx context.Context, sessionID string) ([]domain.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// SaveChunks stores chunks for a document, replacing any existing set.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunks retrieves all chunks for a document, ordered by sequence.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)
}

// ThreadStore persists chat threads and their ordered message histories.
type ThreadStore interface {
	// SaveThread stores a thread.
	SaveThread(ctx context.Context, thread *domain.ChatThread) error

	// GetThread retrieves a thread by ID.
	GetThread(ctx context.Context, id string) (*domain.ChatThread, error)

	// ListThreads returns threads for a session.
	ListThreads(ctx context.Context, sessionID string) ([]domain.ChatThread, error)

	// DeleteThreads removes all threads and messages for a session.
	DeleteThreads(ctx context.Context, sessionID string) error

	// AppendMessages appends messages to a thread's history in order.
	// The append is atomic: either all messages land or none do.
	AppendMessages(ctx context.Context, threadID string, messages ...domain.Message) error

	// RecentMessages returns the most recent messages in chronological
	// order, at most limit (0 means all).
	RecentMessages(ctx context.Context, threadID string, limit int) ([]domain.Message, error)
}
