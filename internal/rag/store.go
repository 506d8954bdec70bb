package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/minjae-lab/medical-rag/internal/config"
)

// Store indexes chunk embeddings for nearest-neighbor retrieval.
//
// Search receives both the query text and its embedding: the Chroma
// backend queries by text through its collection embedding function,
// the others use the vector directly.
type Store interface {
	Add(ctx context.Context, chunks []Chunk, embeddings [][]float32) error
	Search(ctx context.Context, query string, embedding []float32, topK int) ([]SearchResult, error)
	Count(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
	Close() error
}

// OpenStore builds the vector store backend selected by VECTOR_STORE.
func OpenStore(ctx context.Context, cfg *config.Config, emb EmbeddingsClient) (Store, error) {
	switch strings.ToLower(cfg.VectorStore) {
	case "", "chroma":
		return NewChromaStore(ctx, cfg.ChromaURL, cfg.CollectionName, emb)
	case "pgvector":
		return NewPgStore(ctx, cfg.DatabaseURL, cfg.CollectionName)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store: %s", cfg.VectorStore)
	}
}
