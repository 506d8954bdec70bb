package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/minjae-lab/medical-rag/internal/config"
	"github.com/minjae-lab/medical-rag/internal/llm"
	"github.com/minjae-lab/medical-rag/internal/logger"
	"github.com/minjae-lab/medical-rag/internal/medical"
	"github.com/minjae-lab/medical-rag/internal/rag"
)

var demoQuestions = []string{
	"고혈압이 무엇인가요?",
	"당뇨병의 증상은 어떤 것들이 있나요?",
	"감기와 독감의 차이점을 알려주세요",
	"골다공증 예방방법이 있나요?",
	"혈압이 150/95인데 괜찮나요?",
	"응급상황에서는 어떻게 해야 하나요?",
	"심장마비 증상이 있어요", // exercises the emergency short-circuit
}

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, false)

	fmt.Println("🏥 의료 정보 RAG 챗봇 데모를 시작합니다!")
	fmt.Println(strings.Repeat("=", 60))

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

	medicalFile := "data/medical_info.txt"
	if _, err := os.Stat(medicalFile); err != nil {
		fmt.Printf("❌ 의료 문서를 찾을 수 없습니다: %s\n", medicalFile)
		os.Exit(1)
	}

	fmt.Println("📄 의료 문서를 벡터 데이터베이스에 로드 중...")
	result := chatbot.LoadDocuments(ctx, []string{medicalFile})
	if len(result.Failed) > 0 {
		fmt.Printf("❌ 문서 로드 실패: %s\n", result.Failed[0].Error)
		os.Exit(1)
	}
	fmt.Printf("✅ 문서 로드 성공: %d개 청크\n", result.TotalChunks)

	stats, err := chatbot.Stats(ctx)
	if err != nil {
		logger.Fatal("failed to read stats", "error", err)
	}
	fmt.Println("📊 데이터베이스 정보:")
	fmt.Printf("   - 컬렉션: %s\n", stats.CollectionName)
	fmt.Printf("   - 총 청크 수: %d\n", stats.TotalChunks)
	fmt.Printf("   - 사용 가능한 주제: %d개\n", len(stats.AvailableTopics))

	fmt.Printf("\n🤖 %d개의 데모 질문을 테스트합니다:\n", len(demoQuestions))
	fmt.Println(strings.Repeat("=", 60))

	for i, question := range demoQuestions {
		fmt.Printf("\n[질문 %d] %s\n", i+1, question)
		fmt.Println(strings.Repeat("-", 40))

		answer, err := chatbot.Ask(ctx, question)
		if err != nil {
			fmt.Printf("❌ 오류 발생: %v\n", err)
			continue
		}

		fmt.Printf("답변 유형: %s\n", answer.Type)
		fmt.Printf("답변: %s\n", answer.Answer)
		if len(answer.Sources) > 0 {
			fmt.Printf("출처: %s\n", strings.Join(answer.Sources, ", "))
		}
		if len(answer.Results) > 0 {
			fmt.Printf("검색된 문서 수: %d\n", len(answer.Results))
		}
	}

	fmt.Println("\n👋 의료 챗봇 데모를 종료합니다. 건강하세요!")
}
