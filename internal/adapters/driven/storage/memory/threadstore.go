package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure ThreadStore implements the interface.
var _ driven.ThreadStore = (*ThreadStore)(nil)

// ThreadStore is an in-memory implementation of driven.ThreadStore.
type ThreadStore struct {
	mu       sync.RWMutex
	threads  map[string]domain.ChatThread
	messages map[string][]domain.Message // keyed by thread ID
}

// NewThreadStore creates a new in-memory thread store.
func NewThreadStore() *ThreadStore {
	return &ThreadStore{
		threads:  make(map[string]domain.ChatThread),
		messages: make(map[string][]domain.Message),
	}
}

// SaveThread stores a thread.
func (s *ThreadStore) SaveThread(_ context.Context, thread *domain.ChatThread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[thread.ID] = *thread
	return nil
}

// GetThread retrieves a thread by ID.
func (s *ThreadStore) GetThread(_ context.Context, id string) (*domain.ChatThread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	thread, ok := s.threads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &thread, nil
}

// ListThreads returns threads for a session, oldest first.
func (s *ThreadStore) ListThreads(_ context.Context, sessionID string) ([]domain.ChatThread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.ChatThread
	for id := range s.threads {
		if s.threads[id].SessionID == sessionID {
			result = append(result, s.threads[id])
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteThreads removes all threads and messages for a session.
func (s *ThreadStore) DeleteThreads(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, thread := range s.threads {
		if thread.SessionID == sessionID {
			delete(s.threads, id)
			delete(s.messages, id)
		}
	}
	return nil
}

// AppendMessages appends messages to a thread's history in order.
func (s *ThreadStore) AppendMessages(_ context.Context, threadID string, messages ...domain.Message) error {
	if len(messages) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[threadID]; !ok {
		return domain.ErrNotFound
	}
	s.messages[threadID] = append(s.messages[threadID], messages...)
	return nil
}

// RecentMessages returns the most recent messages in chronological order.
func (s *ThreadStore) RecentMessages(_ context.Context, threadID string, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.messages[threadID]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	result := make([]domain.Message, len(history))
	copy(result, history)
	return result, nil
}
