// Package file provides TOML-backed configuration for docchat.
// Configuration lives in a single config.toml within the docchat directory.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// DefaultDirName is the docchat directory under the user's home.
const DefaultDirName = ".docchat"

// Config is the full docchat configuration.
type Config struct {
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Vector    VectorConfig    `toml:"vector"`
	Storage   StorageConfig   `toml:"storage"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Guard     GuardConfig     `toml:"guard"`
	Chat      ChatConfig      `toml:"chat"`
	Vision    VisionConfig    `toml:"vision"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is one of "openai" or "ollama".
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
	// Dimensions overrides the model's default vector size.
	Dimensions int `toml:"dimensions"`
	// RequestsPerSecond throttles calls to the provider. Zero disables.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// LLMConfig selects and configures the generation provider.
type LLMConfig struct {
	// Provider is one of "openai", "anthropic", or "ollama".
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
}

// VectorConfig selects the vector store backend.
type VectorConfig struct {
	// Backend is one of "memory" or "qdrant".
	Backend string `toml:"backend"`
	URL     string `toml:"url"`
	APIKey  string `toml:"api_key"`
}

// StorageConfig selects the bookkeeping store backend.
type StorageConfig struct {
	// Backend is one of "memory" or "sqlite".
	Backend string `toml:"backend"`
	// DataDir holds the SQLite database. Empty means ~/.docchat/data.
	DataDir string `toml:"data_dir"`
}

// ChunkingConfig controls the chunker.
type ChunkingConfig struct {
	ChunkSize int `toml:"chunk_size"`
	Overlap   int `toml:"overlap"`
}

// RetrievalConfig controls similarity search.
type RetrievalConfig struct {
	// TopK is the number of chunks retrieved per question.
	TopK int `toml:"top_k"`
}

// GuardConfig controls the sensitive-question guard.
type GuardConfig struct {
	// Mode is one of "keyword", "llm", or "chain".
	Mode string `toml:"mode"`
	// Level is the keyword sensitivity: "lenient", "standard", or "strict".
	Level string `toml:"level"`
	// Keywords overrides the built-in sensitive term list.
	Keywords []string `toml:"keywords"`
}

// ChatConfig controls conversation behaviour.
type ChatConfig struct {
	// HistoryWindow is the number of prior messages included per answer.
	HistoryWindow int `toml:"history_window"`
}

// VisionConfig controls image text extraction.
type VisionConfig struct {
	Enabled bool   `toml:"enabled"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Vector: VectorConfig{
			Backend: "qdrant",
			URL:     "http://localhost:6333",
		},
		Storage: StorageConfig{
			Backend: "sqlite",
		},
		Chunking: ChunkingConfig{
			ChunkSize: 1000,
			Overlap:   200,
		},
		Retrieval: RetrievalConfig{
			TopK: 3,
		},
		Guard: GuardConfig{
			Mode:  "keyword",
			Level: "standard",
		},
		Chat: ChatConfig{
			HistoryWindow: 10,
		},
		Vision: VisionConfig{
			Model: "gpt-4o-mini",
		},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName, "config.toml"), nil
}

// Load reads configuration from the given path. A missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to the given path with restricted permissions,
// creating the directory if needed. API keys live here, hence 0600.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidConfig, c.Embedding.Provider)
	}

	switch c.LLM.Provider {
	case "openai", "anthropic", "ollama":
	default:
		return fmt.Errorf("%w: unknown llm provider %q", domain.ErrInvalidConfig, c.LLM.Provider)
	}

	switch c.Vector.Backend {
	case "memory", "qdrant":
	default:
		return fmt.Errorf("%w: unknown vector backend %q", domain.ErrInvalidConfig, c.Vector.Backend)
	}

	switch c.Storage.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidConfig, c.Storage.Backend)
	}

	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", domain.ErrInvalidConfig)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("%w: overlap must be in [0, chunk_size)", domain.ErrInvalidConfig)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", domain.ErrInvalidConfig)
	}

	switch c.Guard.Mode {
	case "keyword", "llm", "chain":
	default:
		return fmt.Errorf("%w: unknown guard mode %q", domain.ErrInvalidConfig, c.Guard.Mode)
	}

	switch c.Guard.Level {
	case "", "lenient", "standard", "strict":
	default:
		return fmt.Errorf("%w: unknown guard level %q", domain.ErrInvalidConfig, c.Guard.Level)
	}

	return nil
}
