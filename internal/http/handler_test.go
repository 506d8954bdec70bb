package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minjae-lab/medical-rag/internal/medical"
	"github.com/minjae-lab/medical-rag/internal/rag"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(strings.Count(text, "고혈압")), 0.1}, nil
}

func (s stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (stubEmbedder) Info() string { return "stub/embedder" }

type stubLLM struct{}

func (stubLLM) Generate(context.Context, string, string) (string, error) {
	return "테스트 답변", nil
}

func (stubLLM) Info() string { return "stub/llm" }

func newTestServer(t *testing.T, seed bool) *httptest.Server {
	t.Helper()

	pipeline := rag.NewPipeline(rag.NewMemoryStore(), stubEmbedder{}, stubLLM{}, rag.Options{
		ChunkSize:  500,
		Collection: "test",
		StoreType:  "memory",
	})
	if seed {
		_, err := pipeline.AddText(context.Background(), "고혈압은 혈압이 높은 상태입니다.", "bp.txt")
		require.NoError(t, err)
	}

	h := NewHandler(pipeline, medical.NewChatbot(pipeline))
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func TestHandler_Health(t *testing.T) {
	srv := newTestServer(t, false)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_Ask(t *testing.T) {
	t.Run("Should answer a question over the indexed corpus", func(t *testing.T) {
		srv := newTestServer(t, true)

		resp, err := http.Post(srv.URL+"/ask", "application/json",
			strings.NewReader(`{"question":"고혈압이 무엇인가요?"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var answer rag.Answer
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&answer))
		assert.Equal(t, "테스트 답변", answer.Answer)
		assert.Equal(t, []string{"bp.txt"}, answer.Sources)
	})

	t.Run("Should reject malformed json", func(t *testing.T) {
		srv := newTestServer(t, false)

		resp, err := http.Post(srv.URL+"/ask", "application/json", strings.NewReader("{broken"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should require a question", func(t *testing.T) {
		srv := newTestServer(t, false)

		resp, err := http.Post(srv.URL+"/ask", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should reject GET", func(t *testing.T) {
		srv := newTestServer(t, false)

		resp, err := http.Get(srv.URL + "/ask")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestHandler_MedicalAsk(t *testing.T) {
	t.Run("Should short-circuit emergency questions", func(t *testing.T) {
		srv := newTestServer(t, true)

		resp, err := http.Post(srv.URL+"/medical/ask", "application/json",
			strings.NewReader(`{"question":"심장마비 증상이 있어요"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var answer medical.Answer
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&answer))
		assert.Equal(t, medical.AnswerEmergency, answer.Type)
		assert.Contains(t, answer.Answer, "119")
	})

	t.Run("Should return a safety-suffixed medical answer", func(t *testing.T) {
		srv := newTestServer(t, true)

		resp, err := http.Post(srv.URL+"/medical/ask", "application/json",
			strings.NewReader(`{"question":"고혈압이 무엇인가요?"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var answer medical.Answer
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&answer))
		assert.Equal(t, medical.AnswerMedical, answer.Type)
		assert.Contains(t, answer.Answer, "의료진과 상담하시기 바랍니다")
	})
}

func TestHandler_AddDocuments(t *testing.T) {
	t.Run("Should report per-file failures", func(t *testing.T) {
		srv := newTestServer(t, false)

		resp, err := http.Post(srv.URL+"/documents", "application/json",
			strings.NewReader(`{"paths":["missing.txt"]}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result rag.AddResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Empty(t, result.Success)
		assert.Len(t, result.Failed, 1)
	})

	t.Run("Should require paths", func(t *testing.T) {
		srv := newTestServer(t, false)

		resp, err := http.Post(srv.URL+"/documents", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandler_Stats(t *testing.T) {
	srv := newTestServer(t, true)

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats medical.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, "test", stats.CollectionName)
	assert.Equal(t, 1, stats.TotalChunks)
	assert.NotEmpty(t, stats.AvailableTopics)
}
