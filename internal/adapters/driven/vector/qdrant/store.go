// Package qdrant provides a vector store adapter using the Qdrant REST API.
// Each namespace maps to one Qdrant collection with cosine distance.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:6333"
	DefaultTimeout = 15 * time.Second
)

// Config holds configuration for the Qdrant vector store.
type Config struct {
	// BaseURL is the Qdrant REST endpoint (default: http://localhost:6333).
	BaseURL string

	// APIKey is sent in the api-key header when set.
	APIKey string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// Store is a REST client to Qdrant implementing namespace-scoped storage.
type Store struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewStore creates a new Qdrant vector store.
func NewStore(cfg Config) *Store {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// EnsureNamespace creates the collection if it does not exist.
// Qdrant returns 200 for a create of an existing collection with the same
// schema and 409 when it already exists, both of which count as success.
func (s *Store) EnsureNamespace(ctx context.Context, namespace string, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidConfig, dimensions)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}

	status, _, err := s.do(ctx, http.MethodPut, "/collections/"+namespace, body)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusConflict {
		return fmt.Errorf("%w: qdrant: create collection %s: status %d", domain.ErrIndexUnavailable, namespace, status)
	}
	return nil
}

// DropNamespace deletes the collection and every vector in it.
func (s *Store) DropNamespace(ctx context.Context, namespace string) error {
	status, _, err := s.do(ctx, http.MethodDelete, "/collections/"+namespace, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNotFound {
		return fmt.Errorf("%w: qdrant: drop collection %s: status %d", domain.ErrIndexUnavailable, namespace, status)
	}
	return nil
}

// Upsert inserts or overwrites vectors keyed by chunk ID.
func (s *Store) Upsert(ctx context.Context, namespace string, points []driven.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	apiPoints := make([]map[string]any, len(points))
	for i, p := range points {
		apiPoints[i] = map[string]any{
			"id":     p.ChunkID,
			"vector": p.Embedding,
			"payload": map[string]any{
				"chunk_id":    p.ChunkID,
				"document_id": p.DocumentID,
				"sequence":    p.Sequence,
				"text":        p.Text,
			},
		}
	}

	body := map[string]any{"points": apiPoints}
	status, respBody, err := s.do(ctx, http.MethodPut, "/collections/"+namespace+"/points?wait=true", body)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: qdrant: upsert into %s: status %d: %s", domain.ErrIndexUnavailable, namespace, status, respBody)
	}
	return nil
}

// searchResponse is the Qdrant points/search response format.
type searchResponse struct {
	Result []struct {
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Query returns the k nearest neighbours to the query vector.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, k int, filter driven.VectorFilter) ([]driven.VectorHit, error) {
	if k <= 0 {
		k = 5
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	if len(filter.DocumentIDs) > 0 {
		body["filter"] = documentFilter(filter.DocumentIDs)
	}

	status, respBody, err := s.do(ctx, http.MethodPost, "/collections/"+namespace+"/points/search", body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: qdrant: search %s: status %d: %s", domain.ErrIndexUnavailable, namespace, status, respBody)
	}

	var resp searchResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: qdrant: decode search response: %v", domain.ErrIndexUnavailable, err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hit := driven.VectorHit{Score: r.Score}
		if v, ok := r.Payload["chunk_id"].(string); ok {
			hit.ChunkID = v
		}
		if v, ok := r.Payload["document_id"].(string); ok {
			hit.DocumentID = v
		}
		if v, ok := r.Payload["sequence"].(float64); ok {
			hit.Sequence = int(v)
		}
		if v, ok := r.Payload["text"].(string); ok {
			hit.Text = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// DeleteByDocument removes all vectors tagged with the document ID.
func (s *Store) DeleteByDocument(ctx context.Context, namespace, documentID string) error {
	body := map[string]any{
		"filter": documentFilter([]string{documentID}),
	}

	status, respBody, err := s.do(ctx, http.MethodPost, "/collections/"+namespace+"/points/delete?wait=true", body)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: qdrant: delete from %s: status %d: %s", domain.ErrIndexUnavailable, namespace, status, respBody)
	}
	return nil
}

// countResponse is the Qdrant points/count response format.
type countResponse struct {
	Result struct {
		Count int `json:"count"`
	} `json:"result"`
}

// Count returns the number of vectors in the namespace.
func (s *Store) Count(ctx context.Context, namespace string) (int, error) {
	body := map[string]any{"exact": true}

	status, respBody, err := s.do(ctx, http.MethodPost, "/collections/"+namespace+"/points/count", body)
	if err != nil {
		return 0, err
	}
	if status == http.StatusNotFound {
		return 0, nil
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("%w: qdrant: count %s: status %d: %s", domain.ErrIndexUnavailable, namespace, status, respBody)
	}

	var resp countResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return 0, fmt.Errorf("%w: qdrant: decode count response: %v", domain.ErrIndexUnavailable, err)
	}
	return resp.Result.Count, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// documentFilter builds a payload filter matching any of the document IDs.
func documentFilter(documentIDs []string) map[string]any {
	return map[string]any{
		"must": []map[string]any{
			{
				"key":   "document_id",
				"match": map[string]any{"any": documentIDs},
			},
		},
	}
}

// do sends one JSON request and returns the status code and raw body.
func (s *Store) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: qdrant: %v", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: qdrant: read response: %v", domain.ErrIndexUnavailable, err)
	}

	return resp.StatusCode, respBody, nil
}
