package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk // keyed by document ID
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns documents for a session, oldest first.
func (s *DocumentStore) ListDocuments(_ context.Context, sessionID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Document
	for id := range s.documents {
		if s.documents[id].SessionID == sessionID {
			result = append(result, s.documents[id])
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

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// SaveChunks stores chunks for a document, replacing any existing set.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docID := chunks[0].DocumentID
	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	sort.Slice(stored, func(i, j int) bool { return stored[i].Sequence < stored[j].Sequence })
	s.chunks[docID] = stored
	return nil
}

// GetChunks retrieves all chunks for a document, ordered by sequence.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}
	result := make([]domain.Chunk, len(chunks))
	copy(result, chunks)
	return result, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chunks := range s.chunks {
		for _, chunk := range chunks {
			if chunk.ID == id {
				return &chunk, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}
