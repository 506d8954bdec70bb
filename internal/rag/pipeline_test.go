package rag

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps text onto a small keyword-count vector so similar
// texts land near each other without a real model.
type fakeEmbedder struct {
	keywords []string
	calls    int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{keywords: []string{"고혈압", "당뇨병", "감기"}}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	vec := make([]float32, len(f.keywords)+1)
	vec[len(f.keywords)] = 0.1
	for i, kw := range f.keywords {
		vec[i] = float32(strings.Count(text, kw))
	}
	return vec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeEmbedder) Info() string { return "fake/keyword-embedder" }

type fakeLLM struct {
	lastSystem string
	lastUser   string
	answer     string
}

func (f *fakeLLM) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.answer == "" {
		return "테스트 답변", nil
	}
	return f.answer, nil
}

func (f *fakeLLM) Info() string { return "fake/test-llm" }

func newTestPipeline() (*Pipeline, *fakeEmbedder, *fakeLLM) {
	emb := newFakeEmbedder()
	gen := &fakeLLM{}
	p := NewPipeline(NewMemoryStore(), emb, gen, Options{
		ChunkSize:  200,
		TopK:       5,
		Collection: "test",
		StoreType:  "memory",
	})
	return p, emb, gen
}

func TestPipeline_AddText(t *testing.T) {
	ctx := context.Background()

	t.Run("Should chunk, embed and store text", func(t *testing.T) {
		p, emb, _ := newTestPipeline()

		n, err := p.AddText(ctx, strings.Repeat("고혈압에 대한 문장입니다. ", 30), "docs/bp.txt")
		require.NoError(t, err)
		assert.Greater(t, n, 1)
		assert.Equal(t, n, emb.calls)

		count, err := p.store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, n, count)
	})

	t.Run("Should reject empty documents", func(t *testing.T) {
		p, _, _ := newTestPipeline()
		_, err := p.AddText(ctx, "   ", "empty.txt")
		assert.Error(t, err)
	})
}

func TestPipeline_AddDocuments(t *testing.T) {
	t.Run("Should report missing files without aborting the batch", func(t *testing.T) {
		p, _, _ := newTestPipeline()

		result := p.AddDocuments(context.Background(), []string{"does/not/exist.txt"})
		assert.Empty(t, result.Success)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "file not found", result.Failed[0].Error)
	})
}

func TestPipeline_SearchDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return the most similar chunks first", func(t *testing.T) {
		p, _, _ := newTestPipeline()
		_, err := p.AddText(ctx, "고혈압은 혈압이 높은 상태입니다.", "bp.txt")
		require.NoError(t, err)
		_, err = p.AddText(ctx, "감기는 바이러스 감염입니다.", "cold.txt")
		require.NoError(t, err)

		results, err := p.SearchDocuments(ctx, "고혈압이 무엇인가요?", 2)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "bp.txt", results[0].Chunk.FileName)
		assert.Equal(t, 1, results[0].Rank)
	})

	t.Run("Should reject empty queries", func(t *testing.T) {
		p, _, _ := newTestPipeline()
		_, err := p.SearchDocuments(ctx, "  ", 3)
		assert.Error(t, err)
	})
}

func TestPipeline_GenerateAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("Should answer politely without the LLM when nothing is indexed", func(t *testing.T) {
		p, _, gen := newTestPipeline()

		answer, err := p.GenerateAnswer(ctx, "고혈압이 무엇인가요?", 3)
		require.NoError(t, err)
		assert.Equal(t, noResultAnswerKo, answer.Answer)
		assert.Empty(t, answer.Sources)
		assert.Empty(t, gen.lastSystem, "LLM must not be called")
	})

	t.Run("Should use the English fallback for English queries", func(t *testing.T) {
		p, _, _ := newTestPipeline()

		answer, err := p.GenerateAnswer(ctx, "What is hypertension and how is it treated?", 3)
		require.NoError(t, err)
		assert.Equal(t, noResultAnswerEn, answer.Answer)
	})

	t.Run("Should pass retrieved context to the LLM", func(t *testing.T) {
		p, _, gen := newTestPipeline()
		_, err := p.AddText(ctx, "고혈압은 혈압이 높은 상태입니다.", "bp.txt")
		require.NoError(t, err)

		answer, err := p.GenerateAnswer(ctx, "고혈압이 무엇인가요?", 3)
		require.NoError(t, err)
		assert.Equal(t, "테스트 답변", answer.Answer)
		assert.Contains(t, gen.lastSystem, "컨텍스트 정보:")
		assert.Contains(t, gen.lastSystem, "[출처: bp.txt]")
		assert.Contains(t, gen.lastUser, "질문: 고혈압이 무엇인가요?")
		assert.Equal(t, []string{"bp.txt"}, answer.Sources)
		assert.Equal(t, "fake/test-llm", answer.LLMInfo)
	})

	t.Run("Should deduplicate sources", func(t *testing.T) {
		p, _, _ := newTestPipeline()
		_, err := p.AddText(ctx, strings.Repeat("고혈압 관련 문장입니다. ", 40), "bp.txt")
		require.NoError(t, err)

		answer, err := p.GenerateAnswer(ctx, "고혈압이 무엇인가요?", 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"bp.txt"}, answer.Sources)
	})

	t.Run("Should honor a custom system prompt", func(t *testing.T) {
		p, _, gen := newTestPipeline()
		_, err := p.AddText(ctx, "고혈압은 혈압이 높은 상태입니다.", "bp.txt")
		require.NoError(t, err)

		_, err = p.GenerateAnswerWithPrompt(ctx, "고혈압이 무엇인가요?", 3, "전문 의료 어시스턴트입니다.")
		require.NoError(t, err)
		assert.Contains(t, gen.lastSystem, "전문 의료 어시스턴트입니다.")
		assert.NotContains(t, gen.lastSystem, "질문-답변 AI 어시스턴트")
	})
}

func TestPipeline_Stats(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPipeline()
	_, err := p.AddText(ctx, "고혈압은 혈압이 높은 상태입니다.", "bp.txt")
	require.NoError(t, err)

	stats, err := p.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test", stats.CollectionName)
	assert.Equal(t, "memory", stats.StoreType)
	assert.Equal(t, 1, stats.TotalChunks)
	assert.Equal(t, "fake/keyword-embedder", stats.EmbeddingInfo)
}

func TestChunkID(t *testing.T) {
	t.Run("Should follow the name_index_hash format", func(t *testing.T) {
		id := chunkID("doc.txt", 3, "some content")
		assert.Regexp(t, regexp.MustCompile(`^doc\.txt_3_[0-9a-f]{8}$`), id)
	})

	t.Run("Should be stable for identical content", func(t *testing.T) {
		assert.Equal(t, chunkID("a.txt", 0, "x"), chunkID("a.txt", 0, "x"))
		assert.NotEqual(t, chunkID("a.txt", 0, "x"), chunkID("a.txt", 0, "y"))
	})
}

func TestDetectLang(t *testing.T) {
	assert.Equal(t, "ko", detectLang("고혈압이 무엇인가요?"))
	assert.Equal(t, "en", detectLang("What are the common symptoms of diabetes in adults?"))
}

func TestTrimBody(t *testing.T) {
	t.Run("Should leave short text alone", func(t *testing.T) {
		assert.Equal(t, "short", trimBody("short", 100))
	})

	t.Run("Should cut on rune boundaries", func(t *testing.T) {
		out := trimBody(strings.Repeat("한", 100), 10)
		assert.True(t, strings.HasSuffix(out, "..."))
		trimmed := strings.TrimSuffix(out, "...")
		assert.Zero(t, len(trimmed)%3)
	})
}
