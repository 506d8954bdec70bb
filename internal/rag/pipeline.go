package rag

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	wl "github.com/abadojack/whatlanggo"
	"github.com/minjae-lab/medical-rag/internal/document"
	"github.com/minjae-lab/medical-rag/internal/logger"
)

// DefaultSystemPrompt is the base instruction block for answer
// generation. The retrieved context is appended below it.
const DefaultSystemPrompt = `당신은 질문-답변 AI 어시스턴트입니다. 제공된 컨텍스트를 바탕으로 정확하고 도움이 되는 답변을 제공하세요.

다음 규칙을 따르세요:
1. 컨텍스트에 없는 정보는 추측하지 마세요
2. 답변할 수 없는 경우 솔직히 모른다고 하세요
3. 가능한 한 구체적이고 정확한 답변을 제공하세요
4. 출처를 언급할 때는 파일명을 포함하세요`

const (
	noResultAnswerKo = "죄송합니다. 관련된 정보를 찾을 수 없습니다."
	noResultAnswerEn = "Sorry, I could not find any relevant information in the indexed documents."

	maxContextChunks    = 10
	maxContextChunkSize = 1200
)

// Options tunes a Pipeline. Zero values fall back to sane defaults.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	SystemPrompt string
	Collection   string
	StoreType    string
}

// Pipeline wires the document processor, the embedding client, the
// vector store and the LLM into the load -> chunk -> embed -> store ->
// retrieve -> generate flow.
type Pipeline struct {
	store        Store
	embeddings   EmbeddingsClient
	llm          LLMClient
	splitter     *document.Splitter
	systemPrompt string
	topK         int
	collection   string
	storeType    string
}

func NewPipeline(store Store, embeddings EmbeddingsClient, llm LLMClient, opts Options) *Pipeline {
	prompt := opts.SystemPrompt
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}
	return &Pipeline{
		store:        store,
		embeddings:   embeddings,
		llm:          llm,
		splitter:     document.NewSplitter(opts.ChunkSize, opts.ChunkOverlap),
		systemPrompt: prompt,
		topK:         topK,
		collection:   opts.Collection,
		storeType:    opts.StoreType,
	}
}

// AddDocuments loads, chunks, embeds and stores each file. Failures are
// reported per file; one broken document does not abort the batch.
func (p *Pipeline) AddDocuments(ctx context.Context, paths []string) *AddResult {
	result := &AddResult{
		Success: []FileResult{},
		Failed:  []FileResult{},
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			result.Failed = append(result.Failed, FileResult{File: path, Error: "file not found"})
			continue
		}

		n, err := p.addFile(ctx, path)
		if err != nil {
			logger.Error("failed to ingest document", "file", path, "error", err)
			result.Failed = append(result.Failed, FileResult{File: path, Error: err.Error()})
			continue
		}

		logger.Info("document ingested", "file", path, "chunks", n)
		result.Success = append(result.Success, FileResult{File: path, Chunks: n})
		result.TotalChunks += n
	}

	return result
}

func (p *Pipeline) addFile(ctx context.Context, path string) (int, error) {
	text, err := document.Load(path)
	if err != nil {
		return 0, err
	}
	return p.AddText(ctx, text, path)
}

// AddText chunks, embeds and stores raw text under the given source
// name. It returns the number of chunks stored.
func (p *Pipeline) AddText(ctx context.Context, text, source string) (int, error) {
	text = document.SanitizeUTF8(strings.TrimSpace(text))
	if text == "" {
		return 0, errors.New("empty document")
	}

	pieces := p.splitter.Split(text)
	if len(pieces) == 0 {
		return 0, errors.New("no chunks produced")
	}

	fileName := filepath.Base(source)
	chunks := make([]Chunk, 0, len(pieces))
	for i, content := range pieces {
		chunks = append(chunks, Chunk{
			ID:          chunkID(fileName, i, content),
			Content:     content,
			Source:      source,
			FileName:    fileName,
			ChunkIndex:  i,
			TotalChunks: len(pieces),
		})
	}

	embeddings, err := p.embeddings.EmbedBatch(ctx, pieces)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	if err := p.store.Add(ctx, chunks, embeddings); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	return len(chunks), nil
}

// SearchDocuments retrieves the topK most similar chunks for a query.
func (p *Pipeline) SearchDocuments(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}
	if topK <= 0 {
		topK = p.topK
	}

	vec, err := p.embeddings.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := p.store.Search(ctx, query, vec, topK)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

// GenerateAnswer runs retrieval and answer generation with the
// pipeline's default prompt.
func (p *Pipeline) GenerateAnswer(ctx context.Context, query string, topK int) (*Answer, error) {
	return p.GenerateAnswerWithPrompt(ctx, query, topK, "")
}

// GenerateAnswerWithPrompt is GenerateAnswer with a custom instruction
// block replacing the default system prompt.
func (p *Pipeline) GenerateAnswerWithPrompt(ctx context.Context, query string, topK int, systemPrompt string) (*Answer, error) {
	results, err := p.SearchDocuments(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	return p.AnswerFromResults(ctx, query, results, systemPrompt)
}

// AnswerFromResults generates an answer for query from already-retrieved
// results. An empty result set yields a polite no-information answer
// without calling the LLM.
func (p *Pipeline) AnswerFromResults(ctx context.Context, query string, results []SearchResult, systemPrompt string) (*Answer, error) {
	lang := detectLang(query)

	if len(results) == 0 {
		answer := noResultAnswerKo
		if lang == "en" {
			answer = noResultAnswerEn
		}
		return &Answer{
			Answer:        answer,
			Sources:       []string{},
			Query:         query,
			LLMInfo:       p.llm.Info(),
			EmbeddingInfo: p.embeddings.Info(),
		}, nil
	}

	if systemPrompt == "" {
		systemPrompt = p.systemPrompt
	}

	sys := buildSystemPrompt(systemPrompt, buildContext(results), lang)

	answer, err := p.llm.Generate(ctx, sys, "질문: "+query)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &Answer{
		Answer:        answer,
		Sources:       collectSources(results),
		Query:         query,
		Results:       results,
		LLMInfo:       p.llm.Info(),
		EmbeddingInfo: p.embeddings.Info(),
	}, nil
}

// Stats reports collection name, chunk count and backend identities.
func (p *Pipeline) Stats(ctx context.Context) (*Stats, error) {
	count, err := p.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		CollectionName: p.collection,
		TotalChunks:    count,
		StoreType:      p.storeType,
		LLMInfo:        p.llm.Info(),
		EmbeddingInfo:  p.embeddings.Info(),
	}, nil
}

// Reset drops all indexed chunks.
func (p *Pipeline) Reset(ctx context.Context) error {
	return p.store.Reset(ctx)
}

func chunkID(fileName string, index int, content string) string {
	sum := md5.Sum([]byte(content))
	return fmt.Sprintf("%s_%d_%s", fileName, index, hex.EncodeToString(sum[:])[:8])
}

func buildContext(results []SearchResult) string {
	n := len(results)
	if n > maxContextChunks {
		n = maxContextChunks
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		c := results[i].Chunk
		name := c.FileName
		if name == "" {
			name = "Unknown"
		}
		b.WriteString(fmt.Sprintf("[출처: %s]\n", name))
		b.WriteString(trimBody(c.Content, maxContextChunkSize))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func buildSystemPrompt(base, contextText, lang string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(base))
	b.WriteString("\n\n컨텍스트 정보:\n")
	b.WriteString(contextText)
	if lang == "en" {
		b.WriteString("\n\nAnswer in English.")
	} else {
		b.WriteString("\n\n답변은 한국어로 작성하세요.")
	}
	return b.String()
}

func collectSources(results []SearchResult) []string {
	seen := make(map[string]bool)
	sources := make([]string, 0, len(results))
	for _, r := range results {
		name := r.Chunk.FileName
		if name == "" {
			name = "Unknown"
		}
		if !seen[name] {
			seen[name] = true
			sources = append(sources, name)
		}
	}
	return sources
}

func detectLang(s string) string {
	info := wl.Detect(s)
	switch wl.LangToString(info.Lang) {
	case "eng":
		return "en"
	default:
		return "ko"
	}
}

func trimBody(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "..."
}
