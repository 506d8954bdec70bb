package rag

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgStore keeps chunks in Postgres with pgvector. Expected schema:
//
//	CREATE TABLE rag_chunk (
//	    id BIGSERIAL PRIMARY KEY,
//	    collection TEXT NOT NULL,
//	    chunk_id TEXT NOT NULL,
//	    content TEXT NOT NULL,
//	    source TEXT, file_name TEXT,
//	    chunk_index INT, total_chunks INT
//	);
//	CREATE TABLE rag_chunk_embedding (
//	    chunk_pk BIGINT REFERENCES rag_chunk(id) ON DELETE CASCADE,
//	    embedding VECTOR
//	);
type PgStore struct {
	db         *pgxpool.Pool
	collection string
}

var _ Store = (*PgStore)(nil)

func NewPgStore(ctx context.Context, databaseURL, collection string) (*PgStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PgStore{db: pool, collection: collection}, nil
}

func (s *PgStore) Add(ctx context.Context, chunks []Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, c := range chunks {
		var pk int64
		err := tx.QueryRow(ctx, `
			INSERT INTO rag_chunk (collection, chunk_id, content, source, file_name, chunk_index, total_chunks)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, s.collection, c.ID, c.Content, c.Source, c.FileName, c.ChunkIndex, c.TotalChunks).Scan(&pk)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO rag_chunk_embedding (chunk_pk, embedding)
			VALUES ($1, $2)
		`, pk, pgvector.NewVector(embeddings[i]))
		if err != nil {
			return fmt.Errorf("insert embedding for %s: %w", c.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PgStore) Search(ctx context.Context, _ string, embedding []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	rows, err := s.db.Query(ctx, `
		SELECT c.chunk_id, c.content, c.source, c.file_name, c.chunk_index, c.total_chunks,
		       e.embedding <=> $2 AS distance
		FROM rag_chunk c
		JOIN rag_chunk_embedding e ON c.id = e.chunk_pk
		WHERE c.collection = $1
		ORDER BY distance
		LIMIT $3
	`, s.collection, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("pgvector search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var c Chunk
		var distance float64
		if err := rows.Scan(&c.ID, &c.Content, &c.Source, &c.FileName, &c.ChunkIndex, &c.TotalChunks, &distance); err != nil {
			return nil, err
		}
		results = append(results, SearchResult{
			Chunk: c,
			Score: float32(1 - distance),
			Rank:  len(results) + 1,
		})
	}
	return results, rows.Err()
}

func (s *PgStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM rag_chunk WHERE collection = $1`, s.collection).Scan(&n)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

func (s *PgStore) Reset(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM rag_chunk WHERE collection = $1`, s.collection); err != nil {
		return fmt.Errorf("reset collection %s: %w", s.collection, err)
	}
	return nil
}

func (s *PgStore) Close() error {
	s.db.Close()
	return nil
}
