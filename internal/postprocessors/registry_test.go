package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// registryMockProcessor is a simple mock for testing registry functionality.
type registryMockProcessor struct {
	name string
}

func (m *registryMockProcessor) Name() string { return m.name }
func (m *registryMockProcessor) Process(_ context.Context, _ *domain.Document, _ string, chunks []domain.Chunk) ([]domain.Chunk, error) {
	return chunks, nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if len(r.builders) != 0 {
		t.Errorf("expected empty builders, got %d", len(r.builders))
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	builder := func(_ map[string]any) (driven.PostProcessor, error) {
		return &registryMockProcessor{name: "test"}, nil
	}

	r.Register("test", builder)

	if !r.Has("test") {
		t.Error("expected 'test' to be registered")
	}
}

func TestRegistry_Build_Success(t *testing.T) {
	r := NewRegistry()

	builder := func(cfg map[string]any) (driven.PostProcessor, error) {
		name := "default"
		if n, ok := cfg["name"].(string); ok {
			name = n
		}
		return &registryMockProcessor{name: name}, nil
	}

	r.Register("test", builder)

	proc, err := r.Build("test", map[string]any{"name": "custom"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proc.Name() != "custom" {
		t.Errorf("expected name 'custom', got %q", proc.Name())
	}
}

func TestRegistry_Build_Unknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("missing", nil)
	if err == nil {
		t.Error("expected error for unknown processor")
	}
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	if !r.Has("chunker") {
		t.Error("expected 'chunker' to be registered by defaults")
	}

	proc, err := r.Build("chunker", map[string]any{"chunk_size": 500, "overlap": 50})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proc.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got %q", proc.Name())
	}

	// Invalid config surfaces the chunker's validation error.
	_, err = r.Build("chunker", map[string]any{"chunk_size": 100, "overlap": 200})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
