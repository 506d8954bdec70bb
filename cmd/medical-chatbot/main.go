package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/minjae-lab/medical-rag/internal/config"
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

	medicalFile := "data/medical_info.txt"
	if _, err := os.Stat(medicalFile); err == nil {
		fmt.Println("📄 의료 문서를 로드하는 중...")
		result := chatbot.LoadDocuments(ctx, []string{medicalFile})
		fmt.Printf("✅ 로드 완료: %d개 문서 청크\n", result.TotalChunks)
	} else {
		logger.Warn("medical corpus not found, answering from existing index", "file", medicalFile)
	}

	runChat(ctx, chatbot)
}

func runChat(ctx context.Context, chatbot *medical.Chatbot) {
	title := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)
	bot := color.New(color.FgGreen)
	errc := color.New(color.FgRed)

	title.Println("🏥 의료 정보 AI 어시스턴트입니다.")
	fmt.Println(strings.Repeat("=", 50))
	warn.Println("⚠️  주의사항:")
	warn.Println("- 이는 일반적인 의료 정보 제공 서비스입니다")
	warn.Println("- 개인별 진단이나 처방은 제공하지 않습니다")
	warn.Println("- 심각한 증상이 있으시면 즉시 의료진과 상담하세요")
	warn.Println("- 응급상황 시 119에 신고하세요")
	fmt.Println(strings.Repeat("=", 50))

	fmt.Println("\n📋 이용 가능한 의료 정보 주제:")
	for i, topic := range chatbot.Topics() {
		fmt.Printf("  %d. %s\n", i+1, topic)
	}

	fmt.Println("\n💬 질문을 입력하세요 (종료: 'quit' 또는 'exit'):")
	fmt.Println(strings.Repeat("-", 50))

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("\n👤 질문: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\n👋 의료 상담을 종료합니다. 건강하세요!")
			return
		}

		question := strings.TrimSpace(line)
		if question == "" {
			continue
		}
		switch strings.ToLower(question) {
		case "quit", "exit", "종료", "나가기":
			fmt.Println("👋 의료 상담을 종료합니다. 건강하세요!")
			return
		}

		fmt.Println("🤖 답변 생성 중...")
		answer, err := chatbot.Ask(ctx, question)
		if err != nil {
			errc.Printf("❌ 오류가 발생했습니다: %v\n", err)
			fmt.Println("다시 시도해주세요.")
			continue
		}

		fmt.Println("\n🩺 답변:")
		fmt.Println(strings.Repeat("-", 30))
		bot.Println(answer.Answer)

		if len(answer.Sources) > 0 {
			fmt.Printf("\n📚 참고 자료: %s\n", strings.Join(answer.Sources, ", "))
		}
		fmt.Printf("\n📊 답변 유형: %s\n", answer.Type)
	}
}
