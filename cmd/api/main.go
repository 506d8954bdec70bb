package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minjae-lab/medical-rag/internal/config"
	apphttp "github.com/minjae-lab/medical-rag/internal/http"
	"github.com/minjae-lab/medical-rag/internal/llm"
	"github.com/minjae-lab/medical-rag/internal/logger"
	"github.com/minjae-lab/medical-rag/internal/medical"
	"github.com/minjae-lab/medical-rag/internal/rag"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()
	logger.Setup(cfg.LogLevel, false)

	embedder, err := llm.NewEmbeddingsClient(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to init embeddings client", "error", err)
	}

	llmClient, err := llm.NewLLMClient(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to init llm client", "error", err)
	}

	store, err := rag.OpenStore(ctx, cfg, embedder)
	if err != nil {
		logger.Fatal("failed to open vector store", "error", err)
	}
	defer store.Close()

	pipeline := rag.NewPipeline(store, embedder, llmClient, rag.Options{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		TopK:         cfg.TopK,
		Collection:   cfg.CollectionName,
		StoreType:    cfg.VectorStore,
	})
	chatbot := medical.NewChatbot(pipeline)

	h := apphttp.NewHandler(pipeline, chatbot)
	router := apphttp.NewRouter(h)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: corsMiddleware(router),
	}

	go func() {
		logger.Info("api listening", "addr", srv.Addr, "llm", llmClient.Info(), "embeddings", embedder.Info())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin == "http://localhost:3000" || origin == "http://127.0.0.1:3000" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
