package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docly-labs/texgen/internal/config"
	"github.com/docly-labs/texgen/internal/dataset"
	"github.com/docly-labs/texgen/internal/embeddings"
	"github.com/docly-labs/texgen/internal/llm"
	"github.com/docly-labs/texgen/internal/retrieval"
	"github.com/docly-labs/texgen/internal/template"
	"github.com/docly-labs/texgen/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly
// error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `texgen init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on
// config. Shared by the index, query, generate, and serve commands.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = config.GetPreset(provider, cfg.Quality).EmbeddingModel
	}

	switch provider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, 768, os.Getenv("OLLAMA_HOST")), nil
	default:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model)), nil
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config
// settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model)
}

// openDataStores opens the entry store and loads the persisted vector
// index from the configured data dir.
func openDataStores(ctx context.Context, cfg *config.Config) (*dataset.Store, *vectordb.Index, error) {
	store, err := dataset.Open(filepath.Join(cfg.DataDir, "entries.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening entry store: %w", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	index, err := vectordb.New(embedder)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("creating vector index: %w", err)
	}
	if err := index.Load(ctx, cfg.DataDir); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("loading vector index from %s: %w\nRun `texgen index` first to build it", cfg.DataDir, err)
	}

	return store, index, nil
}

// createRetriever builds a Retriever from config over the given
// stores.
func createRetriever(cfg *config.Config, index *vectordb.Index, store *dataset.Store) *retrieval.Retriever {
	return retrieval.New(index, store, retrieval.Config{
		WSim:           cfg.Retrieval.WSim,
		WMeta:          cfg.Retrieval.WMeta,
		FuzzyThreshold: cfg.Retrieval.FuzzyThreshold,
	})
}

// createRegistry builds the template registry, layering user templates
// from the configured directory over the builtins.
func createRegistry(cfg *config.Config) (*template.Registry, error) {
	registry := template.NewRegistry()
	if cfg.TemplatesDir != "" {
		if _, err := os.Stat(cfg.TemplatesDir); err == nil {
			if err := registry.LoadDir(cfg.TemplatesDir); err != nil {
				return nil, err
			}
		}
	}
	return registry, nil
}
