package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/minjae-lab/medical-rag/internal/config"
	"github.com/minjae-lab/medical-rag/internal/llm"
	"github.com/minjae-lab/medical-rag/internal/logger"
	"github.com/minjae-lab/medical-rag/internal/rag"
)

var testQuestions = []string{
	"고혈압이 무엇인가요?",
	"당뇨병의 주요 증상은?",
	"감기 예방법을 알려주세요",
	"응급상황 시 어떻게 해야 하나요?",
}

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, false)

	// This demo is Ollama only, regardless of LLM_TYPE. A model name
	// configured for another backend would not exist on the Ollama
	// server, so drop it and let the backend defaults apply.
	if !strings.EqualFold(cfg.LLMType, "ollama") {
		cfg.LLMType = "ollama"
		cfg.LLMModel = ""
	}
	if !strings.EqualFold(cfg.EmbeddingType, "ollama") {
		cfg.EmbeddingType = "ollama"
		cfg.EmbeddingModel = ""
	}

	fmt.Println("🦙 로컬 LLM (Ollama) RAG 데모")
	fmt.Println(strings.Repeat("=", 50))

	if cfg.OllamaGPUMemoryFraction > 0 {
		logger.Info("gpu memory fraction requested, configure it on the ollama server",
			"fraction", cfg.OllamaGPUMemoryFraction)
	}

	admin, err := llm.NewOllamaClient(cfg.OllamaBaseURL, cfg.LLMModel, cfg.OllamaNumThreads)
	if err != nil {
		logger.Fatal("failed to init ollama client", "error", err)
	}

	fmt.Println("🔍 Ollama 서버 상태 확인 중...")
	if err := admin.CheckServer(ctx); err != nil {
		fmt.Println("❌ Ollama 서버에 연결할 수 없습니다.")
		fmt.Println("   다음 명령어로 Ollama를 시작하세요:")
		fmt.Println("   ollama serve")
		os.Exit(1)
	}
	fmt.Println("✅ Ollama 서버가 실행 중입니다.")

	models, err := admin.ListModels(ctx)
	if err != nil {
		logger.Fatal("failed to list models", "error", err)
	}
	if len(models) == 0 {
		fmt.Println("⚠️  설치된 모델이 없습니다.")
		printRecommendedModels()
	} else {
		fmt.Printf("📋 설치된 모델 (%d개):\n", len(models))
		for _, m := range models {
			fmt.Printf("   - %s\n", m)
		}
	}

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

	fmt.Printf("📊 설정: LLM=%s 임베딩=%s\n", llmClient.Info(), embedder.Info())

	medicalFile := "data/medical_info.txt"
	if _, err := os.Stat(medicalFile); err != nil {
		fmt.Printf("❌ 의료 문서를 찾을 수 없습니다: %s\n", medicalFile)
		os.Exit(1)
	}

	fmt.Println("\n📄 의료 문서 로드 중...")
	result := pipeline.AddDocuments(ctx, []string{medicalFile})
	if len(result.Failed) > 0 {
		fmt.Printf("❌ 문서 로드 실패: %s\n", result.Failed[0].Error)
		os.Exit(1)
	}
	fmt.Printf("✅ 문서 로드 완료: %d개 청크\n", result.TotalChunks)

	fmt.Printf("\n🤖 테스트 질문 (%d개):\n", len(testQuestions))
	fmt.Println(strings.Repeat("=", 50))

	for i, question := range testQuestions {
		fmt.Printf("\n[질문 %d] %s\n", i+1, question)
		fmt.Println(strings.Repeat("-", 30))

		answer, err := pipeline.GenerateAnswer(ctx, question, 3)
		if err != nil {
			fmt.Printf("❌ 오류: %v\n", err)
			continue
		}

		fmt.Printf("🩺 답변: %s\n", preview(answer.Answer, 200))
		fmt.Printf("📚 출처: %s\n", strings.Join(answer.Sources, ", "))
		fmt.Printf("🔧 사용 모델: %s\n", answer.LLMInfo)
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("💬 대화형 모드를 시작하시겠습니까? ('y' 입력 시 시작)")

	reader := bufio.NewReader(os.Stdin)
	choice, _ := reader.ReadString('\n')
	if c := strings.ToLower(strings.TrimSpace(choice)); c != "y" && c != "yes" {
		return
	}

	fmt.Println("\n🎯 로컬 LLM 대화형 모드 시작! (종료: 'quit' 또는 'exit')")
	for {
		fmt.Print("\n👤 질문: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		question := strings.TrimSpace(line)
		if question == "" {
			continue
		}
		if q := strings.ToLower(question); q == "quit" || q == "exit" || question == "종료" {
			fmt.Println("👋 대화를 종료합니다!")
			break
		}

		fmt.Println("🤖 답변 생성 중...")
		answer, err := pipeline.GenerateAnswer(ctx, question, 0)
		if err != nil {
			fmt.Printf("❌ 오류: %v\n", err)
			continue
		}
		fmt.Printf("\n🦙 답변: %s\n", answer.Answer)
		if len(answer.Sources) > 0 {
			fmt.Printf("📚 출처: %s\n", strings.Join(answer.Sources, ", "))
		}
	}
}

func printRecommendedModels() {
	fmt.Println("\n🎯 추천 Ollama 모델:")
	fmt.Println(strings.Repeat("=", 50))
	for _, spec := range llm.RecommendedLLMs("ollama") {
		fmt.Printf("📦 %s (%s, 컨텍스트 %d)\n", spec.Name, spec.Note, spec.Context)
		fmt.Printf("   설치: ollama pull %s\n", spec.Name)
	}
	fmt.Println("\n🔢 추천 임베딩 모델:")
	for _, spec := range llm.RecommendedEmbeddings("ollama") {
		fmt.Printf("📦 %s (%s)\n", spec.Name, spec.Note)
		fmt.Printf("   설치: ollama pull %s\n", spec.Name)
	}
}

func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
