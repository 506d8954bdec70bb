package rag

import (
	"context"
	"fmt"

	chroma "github.com/amikos-tech/chroma-go"
	"github.com/amikos-tech/chroma-go/types"
)

// ChromaStore persists chunks in a ChromaDB collection configured for
// cosine similarity. The collection carries an embedding function backed
// by our EmbeddingsClient, so text queries are embedded consistently with
// the indexed documents.
type ChromaStore struct {
	client *chroma.Client
	coll   *chroma.Collection
	name   string
	emb    EmbeddingsClient
}

var _ Store = (*ChromaStore)(nil)

func NewChromaStore(ctx context.Context, url, collection string, emb EmbeddingsClient) (*ChromaStore, error) {
	client, err := chroma.NewClient(url)
	if err != nil {
		return nil, fmt.Errorf("create chroma client: %w", err)
	}

	coll, err := client.CreateCollection(
		ctx,
		collection,
		map[string]any{"hnsw:space": "cosine"},
		/*createOrGet=*/ true,
		newChromaEmbedder(emb),
		types.COSINE,
	)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %s: %w", collection, err)
	}

	return &ChromaStore{client: client, coll: coll, name: collection, emb: emb}, nil
}

func (s *ChromaStore) Add(ctx context.Context, chunks []Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}

	embs := make([]*types.Embedding, 0, len(chunks))
	metas := make([]map[string]any, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	ids := make([]string, 0, len(chunks))

	for i, c := range chunks {
		vec := embeddings[i]
		embs = append(embs, &types.Embedding{ArrayOfFloat32: &vec})
		metas = append(metas, map[string]any{
			"source":       c.Source,
			"file_name":    c.FileName,
			"chunk_index":  c.ChunkIndex,
			"total_chunks": c.TotalChunks,
		})
		texts = append(texts, c.Content)
		ids = append(ids, c.ID)
	}

	if _, err := s.coll.Add(ctx, embs, metas, texts, ids); err != nil {
		return fmt.Errorf("add documents to chroma: %w", err)
	}
	return nil
}

func (s *ChromaStore) Search(ctx context.Context, query string, _ []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	res, err := s.coll.Query(
		ctx,
		[]string{query},
		int32(topK),
		nil,
		nil,
		[]types.QueryEnum{types.IDocuments, types.IMetadatas, types.IDistances},
	)
	if err != nil {
		return nil, fmt.Errorf("chroma query: %w", err)
	}

	var results []SearchResult
	if len(res.Documents) == 0 {
		return results, nil
	}

	for j := range res.Documents[0] {
		meta := map[string]any{}
		if len(res.Metadatas) > 0 && j < len(res.Metadatas[0]) {
			meta = res.Metadatas[0][j]
		}
		var distance float32
		if len(res.Distances) > 0 && j < len(res.Distances[0]) {
			distance = res.Distances[0][j]
		}

		chunk := Chunk{
			Content:     res.Documents[0][j],
			Source:      metaString(meta, "source"),
			FileName:    metaString(meta, "file_name"),
			ChunkIndex:  metaInt(meta, "chunk_index"),
			TotalChunks: metaInt(meta, "total_chunks"),
		}
		if len(res.Ids) > 0 && j < len(res.Ids[0]) {
			chunk.ID = res.Ids[0][j]
		}

		results = append(results, SearchResult{
			Chunk: chunk,
			Score: 1 - distance,
			Rank:  j + 1,
		})
	}

	return results, nil
}

func (s *ChromaStore) Count(ctx context.Context) (int, error) {
	n, err := s.coll.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("chroma count: %w", err)
	}
	return int(n), nil
}

func (s *ChromaStore) Reset(ctx context.Context) error {
	if _, err := s.client.DeleteCollection(ctx, s.name); err != nil {
		return fmt.Errorf("delete collection %s: %w", s.name, err)
	}
	coll, err := s.client.CreateCollection(
		ctx,
		s.name,
		map[string]any{"hnsw:space": "cosine"},
		true,
		newChromaEmbedder(s.emb),
		types.COSINE,
	)
	if err != nil {
		return fmt.Errorf("recreate collection %s: %w", s.name, err)
	}
	s.coll = coll
	return nil
}

func (s *ChromaStore) Close() error { return nil }

func metaString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	}
	return 0
}

// chromaEmbedder adapts an EmbeddingsClient to chroma's embedding
// function interface.
type chromaEmbedder struct {
	emb EmbeddingsClient
}

var _ types.EmbeddingFunction = (*chromaEmbedder)(nil)

func newChromaEmbedder(emb EmbeddingsClient) types.EmbeddingFunction {
	return &chromaEmbedder{emb: emb}
}

func (e *chromaEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([]*types.Embedding, error) {
	vecs, err := e.emb.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	embs := make([]*types.Embedding, 0, len(vecs))
	for i := range vecs {
		embs = append(embs, &types.Embedding{ArrayOfFloat32: &vecs[i]})
	}
	return embs, nil
}

func (e *chromaEmbedder) EmbedQuery(ctx context.Context, text string) (*types.Embedding, error) {
	vec, err := e.emb.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return &types.Embedding{ArrayOfFloat32: &vec}, nil
}

func (e *chromaEmbedder) EmbedRecords(ctx context.Context, records []*types.Record, force bool) error {
	return types.EmbedRecordsDefaultImpl(e, ctx, records, force)
}
