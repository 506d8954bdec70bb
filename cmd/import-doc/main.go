package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/minjae-lab/medical-rag/internal/config"
	"github.com/minjae-lab/medical-rag/internal/document"
	"github.com/minjae-lab/medical-rag/internal/llm"
	"github.com/minjae-lab/medical-rag/internal/logger"
	"github.com/minjae-lab/medical-rag/internal/rag"
)

func main() {
	fromFiles := flag.Bool("from-files", false, "import local files (.md/.txt/.html/.pdf)")
	pathFlag := flag.String("path", "", "base directory for local files")
	fromURL := flag.Bool("from-url", false, "import via HTTP crawl")
	baseURLFlag := flag.String("base-url", "", "base URL for the crawl")
	maxPagesFlag := flag.Int("max-pages", 50, "page limit for the HTTP crawl")
	flag.Parse()

	if !*fromFiles && !*fromURL {
		logger.Fatal("use at least one mode: --from-files or --from-url")
	}

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

	if *fromFiles {
		if *pathFlag == "" {
			logger.Fatal("--path is required with --from-files")
		}
		if err := importFromFiles(ctx, pipeline, *pathFlag); err != nil {
			logger.Fatal("file import failed", "error", err)
		}
	}

	if *fromURL {
		if *baseURLFlag == "" {
			logger.Fatal("--base-url is required with --from-url")
		}
		if err := importFromHTTP(ctx, pipeline, *baseURLFlag, *maxPagesFlag); err != nil {
			logger.Fatal("http import failed", "error", err)
		}
	}

	logger.Info("import finished")
}

func importFromFiles(ctx context.Context, pipeline *rag.Pipeline, rootPath string) error {
	logger.Info("importing local documents", "path", rootPath)

	var paths []string
	err := filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !document.IsSupported(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return err
	}

	result := pipeline.AddDocuments(ctx, paths)
	logger.Info("local import done",
		"files_ok", len(result.Success),
		"files_failed", len(result.Failed),
		"chunks", result.TotalChunks)
	return nil
}

func importFromHTTP(ctx context.Context, pipeline *rag.Pipeline, baseURL string, maxPages int) error {
	logger.Info("crawling", "base", baseURL, "max_pages", maxPages)

	base, err := url.Parse(baseURL)
	if err != nil {
		return err
	}

	crawlID := uuid.NewString()[:8]
	visited := make(map[string]bool)
	queue := []string{base.String()}
	pages := 0

	for len(queue) > 0 && pages < maxPages {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true
		pages++

		logger.Debug("fetching", "url", current)
		resp, err := http.Get(current)
		if err != nil {
			logger.Warn("fetch failed", "url", current, "error", err)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			logger.Warn("unexpected status", "url", current, "status", resp.StatusCode)
			resp.Body.Close()
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			logger.Warn("read failed", "url", current, "error", err)
			continue
		}

		htmlStr := string(body)
		text := strings.TrimSpace(document.ExtractHTMLText(htmlStr))
		if text != "" {
			source := urlToSource(current, base, crawlID)
			n, err := pipeline.AddText(ctx, text, source)
			if err != nil {
				logger.Warn("store failed", "url", current, "error", err)
			} else {
				logger.Info("page indexed", "url", current, "chunks", n)
			}
		}

		for _, link := range document.ExtractLinks(htmlStr, base) {
			if !visited[link] {
				queue = append(queue, link)
			}
		}
	}

	return nil
}

// urlToSource makes a stable document name for a crawled page so chunks
// from different crawls of the same site do not collide.
func urlToSource(raw string, base *url.URL, crawlID string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	p := strings.Trim(u.Path, "/")
	if p == "" {
		p = "index"
	}
	p = strings.ReplaceAll(p, "/", "_")
	return base.Host + "_" + crawlID + "_" + p
}
