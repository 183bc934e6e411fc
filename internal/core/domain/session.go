package domain

import "time"

// SessionState is the lifecycle state of a chat session.
type SessionState string

// Session lifecycle states. A session cycles between Indexing and Ready as
// documents are added and removed; Destroyed is terminal.
const (
	SessionCreated   SessionState = "created"
	SessionIndexing  SessionState = "indexing"
	SessionReady     SessionState = "ready"
	SessionDestroyed SessionState = "destroyed"
)

// CanTransition reports whether a state change is allowed by the lifecycle.
func (s SessionState) CanTransition(to SessionState) bool {
	if s == SessionDestroyed {
		return false
	}
	switch to {
	case SessionIndexing:
		return s == SessionCreated || s == SessionReady || s == SessionIndexing
	case SessionReady:
		return s == SessionIndexing || s == SessionReady
	case SessionDestroyed:
		return true
	default:
		return false
	}
}

// Session is the persistent record of a chat session. It owns a vector-store
// namespace, the documents uploaded into it, and any number of chat threads.
type Session struct {
	// ID is the unique session identifier.
	ID string

	// State is the current lifecycle state.
	State SessionState

	// Namespace is the isolated vector-store partition for this session.
	// Never shared across sessions.
	Namespace string

	// EmbeddingModel records the model used to index this session's chunks.
	// Queries must use the same model; a mismatch is a configuration error.
	EmbeddingModel string

	// Summary is the generated document summary for the session, if any.
	Summary string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	// UpdatedAt is when the session last changed.
	UpdatedAt time.Time
}

// SessionIndex is the index manager's view of a session's namespace:
// which documents are members and how many vectors the store holds.
// VectorCount comes from the vector store, which is the source of truth.
type SessionIndex struct {
	SessionID   string
	Namespace   string
	DocumentIDs []string
	VectorCount int
}
