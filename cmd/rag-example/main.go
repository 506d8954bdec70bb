package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/minjae-lab/medical-rag/internal/config"
	"github.com/minjae-lab/medical-rag/internal/llm"
	"github.com/minjae-lab/medical-rag/internal/logger"
	"github.com/minjae-lab/medical-rag/internal/rag"
)

const sampleDocument = `인공지능과 머신러닝

인공지능(AI)은 인간의 지능을 모방하는 컴퓨터 시스템을 의미합니다.
머신러닝은 AI의 하위 분야로, 데이터로부터 패턴을 학습하는 기법입니다.

주요 머신러닝 알고리즘:
1. 선형 회귀: 연속적인 값을 예측하는 알고리즘
2. 로지스틱 회귀: 분류 문제를 해결하는 알고리즘
3. 의사결정 트리: 규칙 기반의 분류/회귀 알고리즘
4. 랜덤 포레스트: 여러 의사결정 트리를 조합한 앙상블 방법
5. 신경망: 인간의 뇌 구조를 모방한 알고리즘

딥러닝은 여러 층의 신경망을 사용하는 머신러닝의 한 분야입니다.
주요 딥러닝 모델로는 CNN(합성곱 신경망), RNN(순환 신경망),
Transformer 등이 있습니다.

RAG(Retrieval-Augmented Generation)는 정보 검색과 텍스트 생성을
결합한 AI 기법으로, 외부 지식을 활용하여 더 정확한 답변을 생성합니다.`

var testQueries = []string{
	"머신러닝이 무엇인가요?",
	"딥러닝의 주요 모델들을 알려주세요",
	"RAG가 무엇인지 설명해주세요",
	"선형 회귀와 로지스틱 회귀의 차이점은?",
	"파이썬 프로그래밍에 대해 알려주세요", // not covered by the sample document
}

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, false)

	fmt.Println("🚀 RAG 파이프라인 테스트를 시작합니다...")

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

	samplePath, err := writeSampleDocument()
	if err != nil {
		logger.Fatal("failed to write sample document", "error", err)
	}
	fmt.Printf("📄 샘플 문서 생성: %s\n", samplePath)

	fmt.Println("\n📚 문서를 벡터 데이터베이스에 추가 중...")
	result := pipeline.AddDocuments(ctx, []string{samplePath})
	for _, f := range result.Failed {
		fmt.Printf("❌ 실패: %s (%s)\n", f.File, f.Error)
	}
	fmt.Printf("✅ 총 %d개의 청크가 추가되었습니다.\n", result.TotalChunks)

	stats, err := pipeline.Stats(ctx)
	if err != nil {
		logger.Fatal("failed to read stats", "error", err)
	}
	fmt.Printf("📈 데이터베이스 상태: collection=%s chunks=%d store=%s llm=%s\n",
		stats.CollectionName, stats.TotalChunks, stats.StoreType, stats.LLMInfo)

	fmt.Println("\n🤖 질문-답변 테스트:")
	fmt.Println(strings.Repeat("=", 60))

	for i, query := range testQueries {
		fmt.Printf("\n[질문 %d] %s\n", i+1, query)
		fmt.Println(strings.Repeat("-", 40))

		answer, err := pipeline.GenerateAnswer(ctx, query, 3)
		if err != nil {
			fmt.Printf("❌ 오류: %v\n", err)
			continue
		}

		fmt.Printf("답변: %s\n", answer.Answer)
		if len(answer.Sources) > 0 {
			fmt.Printf("출처: %s\n", strings.Join(answer.Sources, ", "))
		}
		fmt.Printf("검색된 문서 수: %d\n", len(answer.Results))
	}
}

func writeSampleDocument() (string, error) {
	if err := os.MkdirAll("data", 0o755); err != nil {
		return "", err
	}
	path := "data/ai_guide.txt"
	if err := os.WriteFile(path, []byte(sampleDocument), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
