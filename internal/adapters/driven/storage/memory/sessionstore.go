// Package memory provides in-memory bookkeeping stores for tests and
// ephemeral sessions.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
	}
}

// SaveSession stores or updates a session.
func (s *SessionStore) SaveSession(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

// GetSession retrieves a session by ID.
func (s *SessionStore) GetSession(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// ListSessions returns all sessions, newest first.
func (s *SessionStore) ListSessions(_ context.Context) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Session, 0, len(s.sessions))
	for id := range s.sessions {
		result = append(result, s.sessions[id])
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteSession removes a session record.
func (s *SessionStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
