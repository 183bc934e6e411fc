package main

import (
	"fmt"

	"github.com/custodia-labs/docchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docchat/internal/adapters/driven/embedding"
	embollama "github.com/custodia-labs/docchat/internal/adapters/driven/embedding/ollama"
	embopenai "github.com/custodia-labs/docchat/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docchat/internal/adapters/driven/guard"
	llmanthropic "github.com/custodia-labs/docchat/internal/adapters/driven/llm/anthropic"
	llmollama "github.com/custodia-labs/docchat/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/custodia-labs/docchat/internal/adapters/driven/llm/openai"
	storagemem "github.com/custodia-labs/docchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/custodia-labs/docchat/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/docchat/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/core/services"
	"github.com/custodia-labs/docchat/internal/extractors"
	"github.com/custodia-labs/docchat/internal/extractors/csvfile"
	"github.com/custodia-labs/docchat/internal/extractors/docx"
	"github.com/custodia-labs/docchat/internal/extractors/markdown"
	"github.com/custodia-labs/docchat/internal/extractors/pdf"
	"github.com/custodia-labs/docchat/internal/extractors/plaintext"
	"github.com/custodia-labs/docchat/internal/extractors/vision"
	"github.com/custodia-labs/docchat/internal/extractors/xlsx"
	"github.com/custodia-labs/docchat/internal/postprocessors"
)

// appServices bundles the driving services handed to the CLI.
type appServices struct {
	Session driving.SessionService
	Chat    driving.ChatService
	Summary driving.SummaryService
}

// buildServices constructs the full adapter graph from configuration.
// The returned cleanup closes any resources the backends hold open.
func buildServices(cfg *file.Config) (*appServices, func(), error) {
	cleanup := func() {}

	sessions, documents, threads, storeCleanup, err := buildStorage(cfg)
	if err != nil {
		return nil, cleanup, err
	}
	cleanup = storeCleanup

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, cleanup, err
	}

	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, cleanup, err
	}

	vectors := buildVectorStore(cfg)

	registry, err := buildExtractors(cfg)
	if err != nil {
		return nil, cleanup, err
	}

	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)
	chunk, err := processors.Build("chunker", map[string]any{
		"chunk_size": cfg.Chunking.ChunkSize,
		"overlap":    cfg.Chunking.Overlap,
	})
	if err != nil {
		return nil, cleanup, err
	}
	pipeline := postprocessors.NewPipeline(chunk)

	sensitive := buildGuard(cfg, llm)

	indexer := services.NewIndexer(vectors, embedder, services.IndexerConfig{})
	retriever := services.NewRetriever(vectors, embedder, services.RetrieverConfig{
		TopK: cfg.Retrieval.TopK,
	})

	sessionManager := services.NewSessionManager(sessions, documents, threads, registry, pipeline, indexer)
	chatManager := services.NewChatManager(sessions, threads, retriever, sensitive, llm, services.ChatConfig{
		HistoryWindow: cfg.Chat.HistoryWindow,
	})
	summariser := services.NewSummariser(sessions, documents, llm, services.SummariserConfig{})

	return &appServices{
		Session: sessionManager,
		Chat:    chatManager,
		Summary: summariser,
	}, cleanup, nil
}

func buildStorage(cfg *file.Config) (driven.SessionStore, driven.DocumentStore, driven.ThreadStore, func(), error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		store, err := sqlite.NewStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, nil, func() {}, fmt.Errorf("opening sqlite store: %w", err)
		}
		cleanup := func() { _ = store.Close() }
		return store.SessionStore(), store.DocumentStore(), store.ThreadStore(), cleanup, nil
	default:
		return storagemem.NewSessionStore(), storagemem.NewDocumentStore(), storagemem.NewThreadStore(), func() {}, nil
	}
}

func buildEmbedder(cfg *file.Config) (driven.EmbeddingService, error) {
	var embedder driven.EmbeddingService

	switch cfg.Embedding.Provider {
	case "ollama":
		embedder = embollama.NewEmbeddingService(embollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
	default:
		svc, err := embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		embedder = svc
	}

	if cfg.Embedding.RequestsPerSecond > 0 {
		embedder = embedding.NewRateLimited(embedder, embedding.RateLimitConfig{
			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
			BurstSize:         cfg.Embedding.Burst,
		})
	}
	return embedder, nil
}

func buildLLM(cfg *file.Config) (driven.LLMService, error) {
	switch cfg.LLM.Provider {
	case "anthropic":
		return llmanthropic.NewLLMService(llmanthropic.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
	case "ollama":
		return llmollama.NewLLMService(llmollama.Config{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		}), nil
	default:
		return llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
	}
}

func buildVectorStore(cfg *file.Config) driven.VectorStore {
	switch cfg.Vector.Backend {
	case "memory":
		return vectormem.NewStore()
	default:
		return qdrant.NewStore(qdrant.Config{
			BaseURL: cfg.Vector.URL,
			APIKey:  cfg.Vector.APIKey,
		})
	}
}

func buildExtractors(cfg *file.Config) (*extractors.Registry, error) {
	registry := extractors.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(markdown.New())
	registry.Register(csvfile.New())
	registry.Register(pdf.New())
	registry.Register(docx.New())
	registry.Register(xlsx.New())

	if cfg.Vision.Enabled {
		apiKey := cfg.Vision.APIKey
		if apiKey == "" {
			apiKey = cfg.LLM.APIKey
		}
		v, err := vision.New(vision.Config{
			APIKey:  apiKey,
			BaseURL: cfg.Vision.BaseURL,
			Model:   cfg.Vision.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring vision extractor: %w", err)
		}
		registry.Register(v)
	}
	return registry, nil
}

func buildGuard(cfg *file.Config, llm driven.LLMService) driven.SensitiveGuard {
	keywords := cfg.Guard.Keywords
	if len(keywords) == 0 {
		keywords = guard.KeywordsFor(guard.Level(cfg.Guard.Level))
	}
	keywordGuard := guard.NewKeywordGuard(keywords...)

	switch cfg.Guard.Mode {
	case "llm":
		return guard.NewLLMGuard(llm, keywordGuard)
	case "chain":
		return guard.NewChain(keywordGuard, guard.NewLLMGuard(llm, nil))
	default:
		return keywordGuard
	}
}
