package medical

import (
	"context"
	"strings"

	"github.com/minjae-lab/medical-rag/internal/logger"
	"github.com/minjae-lab/medical-rag/internal/rag"
)

// Answer types returned by Chatbot.Ask.
const (
	AnswerEmergency = "emergency"
	AnswerNoResult  = "no_result"
	AnswerMedical   = "medical_info"
)

const (
	defaultMedicalTopK = 3

	emergencyAnswer = "🚨 응급상황으로 보입니다. 즉시 119에 신고하거나 가장 가까운 응급실로 가시기 바랍니다. 이는 의료 응급상황일 수 있어 즉각적인 전문의료진의 도움이 필요합니다."
	noResultAnswer  = "죄송합니다. 해당 의료 정보를 찾을 수 없습니다. 구체적인 의료 상담이 필요하시면 의료진과 상담하시기 바랍니다."
	safetySuffix    = "\n\n⚠️ 정확한 진단과 치료를 위해서는 의료진과 상담하시기 바랍니다."
)

// Questions containing these trigger the emergency short-circuit before
// any retrieval happens.
var emergencyQuestionKeywords = []string{
	"응급", "위급", "심각", "의식잃음", "호흡곤란", "가슴통증", "심장마비",
}

// Answer is a medical chat answer with validation context attached.
type Answer struct {
	Answer      string             `json:"answer"`
	Type        string             `json:"type"`
	Sources     []string           `json:"sources"`
	Query       string             `json:"query"`
	Results     []rag.SearchResult `json:"results,omitempty"`
	Validation  *ValidationResult  `json:"validation,omitempty"`
	Conflicts   *ConflictReport    `json:"conflicts,omitempty"`
	SafetyAdded bool               `json:"safetyAdded"`
}

// Chatbot answers medical questions over the retrieval pipeline with a
// validation and safety layer on top.
type Chatbot struct {
	pipeline  *rag.Pipeline
	validator *Validator
	conflicts *ConflictDetector
	topK      int
}

func NewChatbot(pipeline *rag.Pipeline) *Chatbot {
	return &Chatbot{
		pipeline:  pipeline,
		validator: NewValidator(),
		conflicts: NewConflictDetector(),
		topK:      defaultMedicalTopK,
	}
}

// LoadDocuments ingests medical documents into the pipeline.
func (c *Chatbot) LoadDocuments(ctx context.Context, paths []string) *rag.AddResult {
	return c.pipeline.AddDocuments(ctx, paths)
}

// Ask answers a medical question. Emergency questions are answered
// immediately without retrieval; everything else goes through retrieval,
// content validation and safety-hardened generation.
func (c *Chatbot) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)

	for _, kw := range emergencyQuestionKeywords {
		if strings.Contains(question, kw) {
			logger.Warn("emergency keyword in question", "keyword", kw)
			return &Answer{
				Answer:  emergencyAnswer,
				Type:    AnswerEmergency,
				Sources: []string{},
				Query:   question,
			}, nil
		}
	}

	results, err := c.pipeline.SearchDocuments(ctx, question, c.topK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &Answer{
			Answer:  noResultAnswer,
			Type:    AnswerNoResult,
			Sources: []string{},
			Query:   question,
		}, nil
	}

	validation, conflicts := c.screen(results)

	answer, err := c.pipeline.AnswerFromResults(ctx, question, results, SafetyPrompt(validation, conflicts))
	if err != nil {
		return nil, err
	}

	return &Answer{
		Answer:      answer.Answer + safetySuffix,
		Type:        AnswerMedical,
		Sources:     answer.Sources,
		Query:       question,
		Results:     results,
		Validation:  &validation,
		Conflicts:   &conflicts,
		SafetyAdded: true,
	}, nil
}

// screen validates the retrieved chunks as one body of content and
// keeps the worst validation outcome.
func (c *Chatbot) screen(results []rag.SearchResult) (ValidationResult, ConflictReport) {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(r.Chunk.Content)
		b.WriteString("\n")
	}
	combined := b.String()

	worst := ValidationResult{RiskLevel: RiskSafe, Reliability: ReliabilityUnknown, IsSafe: true, Confidence: 0.8}
	for _, r := range results {
		v := c.validator.Validate(r.Chunk.Content, r.Chunk.Source, r.Chunk.FileName)
		if riskRank(v.RiskLevel) > riskRank(worst.RiskLevel) {
			worst = v
		} else if riskRank(v.RiskLevel) == riskRank(worst.RiskLevel) && v.Confidence < worst.Confidence {
			worst = v
		}
	}

	return worst, c.conflicts.Detect(combined)
}

func riskRank(r RiskLevel) int {
	switch r {
	case RiskDangerous:
		return 2
	case RiskCaution:
		return 1
	default:
		return 0
	}
}

// Topics lists the medical subjects covered by the bundled corpus.
func (c *Chatbot) Topics() []string {
	return []string{
		"고혈압 (Hypertension)",
		"당뇨병 (Diabetes Mellitus)",
		"감기 (Common Cold)",
		"독감 (Influenza)",
		"고지혈증 (Hyperlipidemia)",
		"골다공증 (Osteoporosis)",
		"응급상황 대처법",
	}
}

// Stats reports pipeline statistics plus the available topics.
func (c *Chatbot) Stats(ctx context.Context) (*Stats, error) {
	s, err := c.pipeline.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Stats: *s, AvailableTopics: c.Topics()}, nil
}

// Stats extends the pipeline statistics with the topic list.
type Stats struct {
	rag.Stats
	AvailableTopics []string `json:"availableTopics"`
}
