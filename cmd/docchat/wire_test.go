package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/adapters/driven/config/file"
)

// memoryConfig is a config that needs no credentials and no external services.
func memoryConfig() *file.Config {
	cfg := file.Default()
	cfg.Embedding.Provider = "ollama"
	cfg.LLM.Provider = "ollama"
	cfg.Vector.Backend = "memory"
	cfg.Storage.Backend = "memory"
	return cfg
}

func TestBuildServices_MemoryBackends(t *testing.T) {
	services, cleanup, err := buildServices(memoryConfig())
	defer cleanup()

	require.NoError(t, err)
	assert.NotNil(t, services.Session)
	assert.NotNil(t, services.Chat)
	assert.NotNil(t, services.Summary)
}

func TestBuildServices_SQLiteBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.DataDir = t.TempDir()

	services, cleanup, err := buildServices(cfg)
	defer cleanup()

	require.NoError(t, err)
	assert.NotNil(t, services.Session)
}

func TestBuildServices_OpenAIRequiresAPIKey(t *testing.T) {
	cfg := memoryConfig()
	cfg.Embedding.Provider = "openai"
	cfg.Embedding.APIKey = ""

	_, cleanup, err := buildServices(cfg)
	defer cleanup()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestBuildServices_RateLimitedEmbedder(t *testing.T) {
	cfg := memoryConfig()
	cfg.Embedding.RequestsPerSecond = 2.0
	cfg.Embedding.Burst = 4

	services, cleanup, err := buildServices(cfg)
	defer cleanup()

	require.NoError(t, err)
	assert.NotNil(t, services.Session)
}

func TestBuildServices_GuardModes(t *testing.T) {
	for _, mode := range []string{"keyword", "llm", "chain"} {
		t.Run(mode, func(t *testing.T) {
			cfg := memoryConfig()
			cfg.Guard.Mode = mode

			services, cleanup, err := buildServices(cfg)
			defer cleanup()

			require.NoError(t, err)
			assert.NotNil(t, services.Chat)
		})
	}
}

func TestBuildServices_VisionRequiresAPIKey(t *testing.T) {
	cfg := memoryConfig()
	cfg.Vision.Enabled = true
	cfg.Vision.APIKey = ""
	cfg.LLM.APIKey = ""

	_, cleanup, err := buildServices(cfg)
	defer cleanup()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vision")
}
