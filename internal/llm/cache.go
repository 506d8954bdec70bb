package llm

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minjae-lab/medical-rag/internal/logger"
	"github.com/minjae-lab/medical-rag/internal/rag"
)

const cacheTTL = 24 * time.Hour

// CachedEmbedder memoizes embedding vectors in Redis, keyed by model and
// content hash. Cache failures degrade to the inner client; they never
// fail the request.
type CachedEmbedder struct {
	inner rag.EmbeddingsClient
	rdb   *redis.Client
}

var _ rag.EmbeddingsClient = (*CachedEmbedder)(nil)

func NewCachedEmbedder(ctx context.Context, inner rag.EmbeddingsClient, addr string) (*CachedEmbedder, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &CachedEmbedder{inner: inner, rdb: rdb}, nil
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil {
			return vec, nil
		}
		logger.Warn("dropping corrupt embedding cache entry", "key", key)
	} else if err != redis.Nil {
		logger.Warn("embedding cache read failed", "error", err)
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vec); err == nil {
		if err := c.rdb.Set(ctx, key, data, cacheTTL).Err(); err != nil {
			logger.Warn("embedding cache write failed", "error", err)
		}
	}
	return vec, nil
}

func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := c.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (c *CachedEmbedder) Info() string {
	return c.inner.Info()
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embed:%s:%x", c.inner.Info(), sum)
}
