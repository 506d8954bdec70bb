package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/minjae-lab/medical-rag/internal/config"
	"github.com/minjae-lab/medical-rag/internal/logger"
	"github.com/minjae-lab/medical-rag/internal/rag"
)

// NewLLMClient builds the chat backend selected by LLM_TYPE. For Ollama
// the server is health-checked and the model pulled if missing.
func NewLLMClient(ctx context.Context, cfg *config.Config) (rag.LLMClient, error) {
	switch strings.ToLower(cfg.LLMType) {
	case "openai":
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.LLMModel)

	case "ollama":
		model := cfg.LLMModel
		if model == "" {
			model = defaultOllamaModel
		}
		client, err := NewOllamaClient(cfg.OllamaBaseURL, model, cfg.OllamaNumThreads)
		if err != nil {
			return nil, err
		}
		if err := client.CheckServer(ctx); err != nil {
			return nil, err
		}
		if err := client.EnsureModel(ctx, model); err != nil {
			return nil, err
		}
		return client, nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)

	default:
		return nil, fmt.Errorf("unsupported llm type: %s", cfg.LLMType)
	}
}

// NewEmbeddingsClient builds the embedding backend selected by
// EMBEDDING_TYPE, wrapped in a Redis cache when REDIS_ADDR is set.
func NewEmbeddingsClient(ctx context.Context, cfg *config.Config) (rag.EmbeddingsClient, error) {
	var (
		emb rag.EmbeddingsClient
		err error
	)

	switch strings.ToLower(cfg.EmbeddingType) {
	case "openai":
		emb, err = NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)

	case "ollama":
		model := cfg.EmbeddingModel
		if model == "" {
			model = defaultOllamaEmbedModel
		}
		admin, aerr := NewOllamaClient(cfg.OllamaBaseURL, model, 0)
		if aerr != nil {
			return nil, aerr
		}
		if cerr := admin.CheckServer(ctx); cerr != nil {
			return nil, cerr
		}
		if merr := admin.EnsureModel(ctx, model); merr != nil {
			return nil, merr
		}
		emb, err = NewOllamaEmbedder(cfg.OllamaBaseURL, model)

	case "gemini":
		emb, err = NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)

	default:
		return nil, fmt.Errorf("unsupported embedding type: %s", cfg.EmbeddingType)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RedisAddr != "" {
		cached, err := NewCachedEmbedder(ctx, emb, cfg.RedisAddr)
		if err != nil {
			logger.Warn("embedding cache disabled", "error", err)
			return emb, nil
		}
		logger.Info("embedding cache enabled", "addr", cfg.RedisAddr)
		return cached, nil
	}
	return emb, nil
}
