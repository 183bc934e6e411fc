// Package memory provides an in-memory vector store for tests and
// single-process usage. Similarity is cosine distance.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// namespace holds the vectors for one session.
type namespace struct {
	dimensions int
	points     map[string]driven.VectorPoint // keyed by chunk ID
}

// Store is an in-memory vector store. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]*namespace
}

// NewStore creates a new in-memory vector store.
func NewStore() *Store {
	return &Store{
		namespaces: make(map[string]*namespace),
	}
}

// EnsureNamespace creates the namespace if it does not exist.
func (s *Store) EnsureNamespace(_ context.Context, name string, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidConfig, dimensions)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ns, ok := s.namespaces[name]; ok {
		if ns.dimensions != dimensions {
			return fmt.Errorf("%w: namespace %s has dimension %d, requested %d",
				domain.ErrInvalidConfig, name, ns.dimensions, dimensions)
		}
		return nil
	}

	s.namespaces[name] = &namespace{
		dimensions: dimensions,
		points:     make(map[string]driven.VectorPoint),
	}
	return nil
}

// DropNamespace deletes the namespace and every vector in it.
func (s *Store) DropNamespace(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, name)
	return nil
}

// Upsert inserts or overwrites vectors keyed by chunk ID.
func (s *Store) Upsert(_ context.Context, name string, points []driven.VectorPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[name]
	if !ok {
		return fmt.Errorf("%w: namespace %s not found", domain.ErrIndexUnavailable, name)
	}

	for _, p := range points {
		if len(p.Embedding) != ns.dimensions {
			return fmt.Errorf("%w: vector for chunk %s has dimension %d, namespace expects %d",
				domain.ErrInvalidInput, p.ChunkID, len(p.Embedding), ns.dimensions)
		}
	}
	for _, p := range points {
		ns.points[p.ChunkID] = p
	}
	return nil
}

// Query returns the k nearest neighbours by cosine similarity.
func (s *Store) Query(_ context.Context, name string, vector []float32, k int, filter driven.VectorFilter) ([]driven.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[name]
	if !ok {
		return nil, fmt.Errorf("%w: namespace %s not found", domain.ErrIndexUnavailable, name)
	}
	if len(vector) != ns.dimensions {
		return nil, fmt.Errorf("%w: query vector has dimension %d, namespace expects %d",
			domain.ErrInvalidInput, len(vector), ns.dimensions)
	}
	if k <= 0 {
		k = 5
	}

	var allowed map[string]bool
	if len(filter.DocumentIDs) > 0 {
		allowed = make(map[string]bool, len(filter.DocumentIDs))
		for _, id := range filter.DocumentIDs {
			allowed[id] = true
		}
	}

	hits := make([]driven.VectorHit, 0, len(ns.points))
	for _, p := range ns.points {
		if allowed != nil && !allowed[p.DocumentID] {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    p.ChunkID,
			DocumentID: p.DocumentID,
			Sequence:   p.Sequence,
			Text:       p.Text,
			Score:      cosineSimilarity(vector, p.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		// Stable order for equal scores
		if hits[i].DocumentID != hits[j].DocumentID {
			return hits[i].DocumentID < hits[j].DocumentID
		}
		return hits[i].Sequence < hits[j].Sequence
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// DeleteByDocument removes all vectors tagged with the document ID.
func (s *Store) DeleteByDocument(_ context.Context, name, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[name]
	if !ok {
		return fmt.Errorf("%w: namespace %s not found", domain.ErrIndexUnavailable, name)
	}

	for id, p := range ns.points {
		if p.DocumentID == documentID {
			delete(ns.points, id)
		}
	}
	return nil
}

// Count returns the number of vectors in the namespace.
func (s *Store) Count(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[name]
	if !ok {
		return 0, nil
	}
	return len(ns.points), nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Zero vectors yield a similarity of 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
