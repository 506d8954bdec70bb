package rag

import "context"

// EmbeddingsClient turns text into vectors. Info identifies the backend
// and model, e.g. "openai/text-embedding-3-small".
type EmbeddingsClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Info() string
}

// LLMClient generates an answer from a system prompt and a user prompt.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Info() string
}
