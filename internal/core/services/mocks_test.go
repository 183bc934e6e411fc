package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing. Vectors are
// looked up by text; unknown texts get a fixed fallback vector. failures
// makes the first N calls return a transient error.
type mockEmbedder struct {
	model    string
	vectors  map[string][]float32
	failures int
	calls    int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{model: "mock-embed", vectors: make(map[string][]float32)}
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	return []float32{1, 0, 0, 0}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if err := m.maybeFail(); err != nil {
		return nil, err
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if err := m.maybeFail(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vectorFor(t)
	}
	return out, nil
}

func (m *mockEmbedder) maybeFail() error {
	m.calls++
	if m.calls <= m.failures {
		return fmt.Errorf("%w: transient", domain.ErrEmbeddingUnavailable)
	}
	return nil
}

func (m *mockEmbedder) Dimensions() int              { return 4 }
func (m *mockEmbedder) ModelName() string            { return m.model }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockLLM implements driven.LLMService for testing. Replies are consumed
// from a queue; an empty queue repeats the last reply.
type mockLLM struct {
	replies     []string
	generateErr error
	prompts     []string
	chats       [][]driven.ChatMessage
}

func (m *mockLLM) nextReply() string {
	if len(m.replies) == 0 {
		return ""
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	m.prompts = append(m.prompts, prompt)
	return m.nextReply(), nil
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	m.chats = append(m.chats, messages)
	return m.nextReply(), nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockGuard implements driven.SensitiveGuard for testing.
type mockGuard struct {
	flagged bool
	err     error
	checked []string
}

func (m *mockGuard) Check(_ context.Context, question string) (bool, error) {
	m.checked = append(m.checked, question)
	return m.flagged, m.err
}

func (m *mockGuard) Name() string { return "mock" }
