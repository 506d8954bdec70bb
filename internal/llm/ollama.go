package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/minjae-lab/medical-rag/internal/logger"
	"github.com/minjae-lab/medical-rag/internal/rag"
)

const (
	embedMaxRetries = 3
	embedBaseDelay  = time.Second

	defaultOllamaModel      = "llama3.2"
	defaultOllamaEmbedModel = "mxbai-embed-large"
)

// OllamaClient generates answers through a locally hosted Ollama server.
type OllamaClient struct {
	client     *ollama.Client
	model      string
	numThreads int
}

var _ rag.LLMClient = (*OllamaClient)(nil)

func NewOllamaClient(baseURL, model string, numThreads int) (*OllamaClient, error) {
	client, err := newAPIClient(baseURL)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaClient{client: client, model: model, numThreads: numThreads}, nil
}

func newAPIClient(baseURL string) (*ollama.Client, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama base url: %w", err)
	}
	return ollama.NewClient(u, &http.Client{Timeout: 5 * time.Minute}), nil
}

// CheckServer verifies that the Ollama server answers at all.
func (c *OllamaClient) CheckServer(ctx context.Context) error {
	v, err := c.client.Version(ctx)
	if err != nil {
		return fmt.Errorf("ollama server not reachable: %w", err)
	}
	logger.Debug("ollama server ok", "version", v)
	return nil
}

// ListModels returns the names of the models installed on the server.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ollama models: %w", err)
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// HasModel reports whether the named model (tag ignored) is installed.
func (c *OllamaClient) HasModel(ctx context.Context, model string) (bool, error) {
	names, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	want := strings.SplitN(model, ":", 2)[0]
	for _, name := range names {
		if strings.SplitN(name, ":", 2)[0] == want {
			return true, nil
		}
	}
	return false, nil
}

// PullModel downloads a model onto the server, logging progress.
func (c *OllamaClient) PullModel(ctx context.Context, model string) error {
	logger.Info("pulling ollama model", "model", model)
	var lastStatus string
	err := c.client.Pull(ctx, &ollama.PullRequest{Model: model}, func(pr ollama.ProgressResponse) error {
		if pr.Status != lastStatus {
			lastStatus = pr.Status
			logger.Debug("pull progress", "model", model, "status", pr.Status)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("pull model %s: %w", model, err)
	}
	return nil
}

// EnsureModel pulls the model if it is not installed yet.
func (c *OllamaClient) EnsureModel(ctx context.Context, model string) error {
	ok, err := c.HasModel(ctx, model)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	logger.Warn("model not installed, pulling", "model", model)
	return c.PullModel(ctx, model)
}

func (c *OllamaClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	stream := false
	req := &ollama.ChatRequest{
		Model: c.model,
		Messages: []ollama.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": defaultTemperature,
		},
	}
	if c.numThreads > 0 {
		req.Options["num_thread"] = c.numThreads
	}

	var b strings.Builder
	err := c.client.Chat(ctx, req, func(resp ollama.ChatResponse) error {
		b.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}

	answer := strings.TrimSpace(b.String())
	if answer == "" {
		return "", fmt.Errorf("ollama returned empty answer")
	}
	return answer, nil
}

func (c *OllamaClient) Info() string {
	return "ollama/" + c.model
}

// OllamaEmbedder generates embeddings through the Ollama embeddings API.
// Requests are retried with exponential backoff; the first call after a
// model load routinely times out.
type OllamaEmbedder struct {
	client *ollama.Client
	model  string
}

var _ rag.EmbeddingsClient = (*OllamaEmbedder)(nil)

func NewOllamaEmbedder(baseURL, model string) (*OllamaEmbedder, error) {
	client, err := newAPIClient(baseURL)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = defaultOllamaEmbedModel
	}
	return &OllamaEmbedder{client: client, model: model}, nil
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < embedMaxRetries; attempt++ {
		resp, err := e.client.Embeddings(ctx, &ollama.EmbeddingRequest{
			Model:  e.model,
			Prompt: text,
		})
		if err == nil {
			out := make([]float32, len(resp.Embedding))
			for i, v := range resp.Embedding {
				out[i] = float32(v)
			}
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		delay := time.Duration(math.Pow(2, float64(attempt))) * embedBaseDelay
		logger.Warn("embedding attempt failed", "attempt", attempt+1, "error", err, "retry_in", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", embedMaxRetries, lastErr)
}

func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (e *OllamaEmbedder) Info() string {
	return "ollama/" + e.model
}
