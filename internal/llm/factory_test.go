package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minjae-lab/medical-rag/internal/config"
)

// fakeOllamaServer answers the version and tag endpoints for the given
// installed models. No pull endpoint is registered, so any pull attempt
// fails the calling test.
func fakeOllamaServer(t *testing.T, installed ...string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/version", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"version": "0.3.12"})
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		type tag struct {
			Name string `json:"name"`
		}
		resp := struct {
			Models []tag `json:"models"`
		}{}
		for _, name := range installed {
			resp.Models = append(resp.Models, tag{Name: name})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewLLMClient(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject unknown llm types", func(t *testing.T) {
		_, err := NewLLMClient(ctx, &config.Config{LLMType: "mystery"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported llm type")
	})

	t.Run("Should require an api key for openai", func(t *testing.T) {
		_, err := NewLLMClient(ctx, &config.Config{LLMType: "openai"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("Should require an api key for gemini", func(t *testing.T) {
		_, err := NewLLMClient(ctx, &config.Config{LLMType: "gemini"})
		assert.Error(t, err)
	})

	t.Run("Should accept mixed-case type names", func(t *testing.T) {
		client, err := NewLLMClient(ctx, &config.Config{
			LLMType:      "OpenAI",
			LLMModel:     "gpt-4",
			OpenAIAPIKey: "sk-test",
		})
		require.NoError(t, err)
		assert.Equal(t, "openai/gpt-4", client.Info())
	})

	t.Run("Should resolve the ollama chat default when no model is configured", func(t *testing.T) {
		srv := fakeOllamaServer(t, "llama3.2:latest")

		client, err := NewLLMClient(ctx, &config.Config{
			LLMType:       "ollama",
			OllamaBaseURL: srv.URL,
		})
		require.NoError(t, err)
		assert.Equal(t, "ollama/llama3.2", client.Info())
	})

	t.Run("Should honor an explicitly configured ollama model", func(t *testing.T) {
		srv := fakeOllamaServer(t, "qwen2.5:latest")

		client, err := NewLLMClient(ctx, &config.Config{
			LLMType:       "ollama",
			LLMModel:      "qwen2.5",
			OllamaBaseURL: srv.URL,
		})
		require.NoError(t, err)
		assert.Equal(t, "ollama/qwen2.5", client.Info())
	})
}

func TestNewEmbeddingsClient(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject unknown embedding types", func(t *testing.T) {
		_, err := NewEmbeddingsClient(ctx, &config.Config{EmbeddingType: "mystery"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported embedding type")
	})

	t.Run("Should build an openai embedder", func(t *testing.T) {
		emb, err := NewEmbeddingsClient(ctx, &config.Config{
			EmbeddingType:  "openai",
			EmbeddingModel: "text-embedding-3-small",
			OpenAIAPIKey:   "sk-test",
		})
		require.NoError(t, err)
		assert.Equal(t, "openai/text-embedding-3-small", emb.Info())
	})

	t.Run("Should resolve the ollama embedding default when no model is configured", func(t *testing.T) {
		srv := fakeOllamaServer(t, "mxbai-embed-large:latest")

		emb, err := NewEmbeddingsClient(ctx, &config.Config{
			EmbeddingType: "ollama",
			OllamaBaseURL: srv.URL,
		})
		require.NoError(t, err)
		assert.Equal(t, "ollama/mxbai-embed-large", emb.Info())
	})

	t.Run("Should fail when the ollama server is unreachable", func(t *testing.T) {
		_, err := NewEmbeddingsClient(ctx, &config.Config{
			EmbeddingType: "ollama",
			OllamaBaseURL: "http://127.0.0.1:1",
		})
		assert.Error(t, err)
	})

	t.Run("Should keep the plain embedder when redis is unreachable", func(t *testing.T) {
		emb, err := NewEmbeddingsClient(ctx, &config.Config{
			EmbeddingType: "openai",
			OpenAIAPIKey:  "sk-test",
			RedisAddr:     "127.0.0.1:1",
		})
		require.NoError(t, err)
		assert.IsType(t, (*OpenAIEmbedder)(nil), emb)
	})
}

func TestRecommendedModels(t *testing.T) {
	t.Run("Should list chat models for known backends", func(t *testing.T) {
		assert.NotEmpty(t, RecommendedLLMs("openai"))
		assert.NotEmpty(t, RecommendedLLMs("ollama"))
		assert.Empty(t, RecommendedLLMs("mystery"))
	})

	t.Run("Should list embedding models for known backends", func(t *testing.T) {
		assert.NotEmpty(t, RecommendedEmbeddings("openai"))
		assert.NotEmpty(t, RecommendedEmbeddings("ollama"))
		assert.Empty(t, RecommendedEmbeddings("mystery"))
	})
}

func TestOpenAIClientDefaults(t *testing.T) {
	client, err := NewOpenAIClient("sk-test", "")
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-3.5-turbo", client.Info())

	emb, err := NewOpenAIEmbedder("sk-test", "")
	require.NoError(t, err)
	assert.Equal(t, "openai/text-embedding-3-small", emb.Info())
}

func TestOllamaClientHelpers(t *testing.T) {
	t.Run("Should fall back to the default model name", func(t *testing.T) {
		client, err := NewOllamaClient("", "", 0)
		require.NoError(t, err)
		assert.Equal(t, "ollama/llama3.2", client.Info())
	})

	t.Run("Should reject malformed base urls", func(t *testing.T) {
		_, err := NewOllamaClient("://bad", "llama3.2", 0)
		assert.Error(t, err)
	})
}
