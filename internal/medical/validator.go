package medical

import (
	"regexp"
	"strings"

	"github.com/minjae-lab/medical-rag/internal/logger"
)

// RiskLevel classifies how dangerous a piece of retrieved content is.
type RiskLevel string

const (
	RiskSafe      RiskLevel = "safe"
	RiskCaution   RiskLevel = "caution"
	RiskDangerous RiskLevel = "dangerous"
)

// Reliability grades the trustworthiness of a document source.
type Reliability string

const (
	ReliabilityHigh    Reliability = "high"
	ReliabilityMedium  Reliability = "medium"
	ReliabilityLow     Reliability = "low"
	ReliabilityUnknown Reliability = "unknown"
)

// ValidationResult is the outcome of validating retrieved medical
// content before it reaches the LLM.
type ValidationResult struct {
	IsSafe          bool        `json:"isSafe"`
	RiskLevel       RiskLevel   `json:"riskLevel"`
	Reliability     Reliability `json:"reliability"`
	Warnings        []string    `json:"warnings"`
	Recommendations []string    `json:"recommendations"`
	Confidence      float64     `json:"confidence"`
}

type dangerousPattern struct {
	re      *regexp.Regexp
	message string
}

type misinfoPattern struct {
	re         *regexp.Regexp
	category   string
	correction string
}

// Validator screens medical text for dangerous claims, known
// misinformation, emergency keywords and unreliable sources.
type Validator struct {
	dangerous []dangerousPattern
	misinfo   []misinfoPattern
	emergency []string
	trusted   []string
	personal  []string
	media     []string
}

func NewValidator() *Validator {
	return &Validator{
		dangerous: []dangerousPattern{
			{regexp.MustCompile(`(?:암|cancer).*(?:완치|치료).*(?:마늘|생강|민간요법)`), "검증되지 않은 암 치료법 정보"},
			{regexp.MustCompile(`(?:혈압|blood pressure).*200.*정상`), "잘못된 혈압 정상 수치 정보"},
			{regexp.MustCompile(`(?:당뇨병|diabetes).*완치.*(?:운동|식이)만으로`), "당뇨병 완치 관련 잘못된 정보"},
			{regexp.MustCompile(`(?:항생제|antibiotic).*바이러스.*효과`), "항생제와 바이러스에 대한 잘못된 정보"},
			{regexp.MustCompile(`(?:백신|vaccine).*(?:자폐|autism|위험)`), "백신에 대한 잘못된 정보"},
			{regexp.MustCompile(`(?:병원|의사).*(?:필요없|불필요).*자가치료`), "의료진 상담을 배제하는 위험한 조언"},
			{regexp.MustCompile(`(?:응급실|119).*(?:가지마|피해)`), "응급상황에서 위험한 조언"},
		},
		misinfo: []misinfoPattern{
			{regexp.MustCompile(`(?:고혈압|hypertension).*(?:낮은|저혈압)`), "정의 오류", "고혈압은 혈압이 높은 상태입니다"},
			{regexp.MustCompile(`(?:감기|cold).*항생제.*필요`), "치료법 오류", "감기는 바이러스 감염으로 항생제가 효과없습니다"},
			{regexp.MustCompile(`(?:인슐린|insulin).*중독.*위험`), "약물 오해", "인슐린은 당뇨병 치료에 필수적인 약물입니다"},
			{regexp.MustCompile(`(?:비타민|vitamin).*과다섭취.*안전`), "영양소 오해", "일부 비타민은 과다섭취 시 부작용이 있습니다"},
		},
		emergency: []string{
			"심장마비", "심정지", "의식잃음", "호흡곤란", "심한가슴통증",
			"대량출혈", "골절", "화상", "중독", "알레르기쇼크",
			"뇌졸중", "경련", "발작", "응급", "위급", "심각",
		},
		trusted: []string{
			"질병관리청", "대한의학회", "대한의사협회", "보건복지부",
			"who", "cdc", "mayo clinic", "webmd", "의학논문",
			"병원공식자료", "의과대학", "간호대학",
		},
		personal: []string{"blog", "cafe", "개인", "후기", "경험담"},
		media:    []string{"news", "뉴스", "잡지", "magazine"},
	}
}

// Validate runs every check against the content. Source and fileName
// may be empty when no metadata is available.
func (v *Validator) Validate(content, source, fileName string) ValidationResult {
	res := ValidationResult{
		RiskLevel:   RiskSafe,
		Reliability: ReliabilityUnknown,
		Confidence:  0.8,
	}

	lower := strings.ToLower(content)

	for _, p := range v.dangerous {
		if p.re.MatchString(lower) {
			logger.Warn("dangerous medical pattern detected", "message", p.message)
			res.RiskLevel = RiskDangerous
			res.Warnings = append(res.Warnings, p.message)
		}
	}
	if res.RiskLevel == RiskDangerous {
		res.Recommendations = append(res.Recommendations, "전문의와 반드시 상담하세요")
		res.Confidence -= 0.4
	}

	var misinfoHit bool
	for _, m := range v.misinfo {
		if m.re.MatchString(lower) {
			logger.Warn("medical misinformation pattern detected", "category", m.category)
			misinfoHit = true
			res.Warnings = append(res.Warnings, "잠재적 오류: "+m.category)
			res.Recommendations = append(res.Recommendations, m.correction)
		}
	}
	if misinfoHit {
		if res.RiskLevel != RiskDangerous {
			res.RiskLevel = RiskCaution
		}
		res.Confidence -= 0.2
	}

	if source != "" || fileName != "" {
		res.Reliability = v.assessSource(source, fileName)
		if res.Reliability == ReliabilityLow {
			if res.RiskLevel == RiskSafe {
				res.RiskLevel = RiskCaution
			}
			res.Warnings = append(res.Warnings, "신뢰도가 낮은 출처입니다")
			res.Confidence -= 0.3
		}
	}

	if len(v.EmergencyKeywords(content)) > 0 {
		res.Warnings = append(res.Warnings, "응급상황 관련 내용이 감지되었습니다")
		res.Recommendations = append(res.Recommendations, "즉시 119에 신고하거나 응급실을 방문하세요")
	}

	res.IsSafe = res.RiskLevel != RiskDangerous
	if res.Confidence < 0.1 {
		res.Confidence = 0.1
	}
	return res
}

// EmergencyKeywords returns the emergency keywords found in the text.
func (v *Validator) EmergencyKeywords(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range v.emergency {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

func (v *Validator) assessSource(source, fileName string) Reliability {
	source = strings.ToLower(source)
	fileName = strings.ToLower(fileName)

	for _, t := range v.trusted {
		if strings.Contains(source, t) || strings.Contains(fileName, t) {
			return ReliabilityHigh
		}
	}
	for _, p := range v.personal {
		if strings.Contains(source, p) || strings.Contains(fileName, p) {
			return ReliabilityLow
		}
	}
	for _, m := range v.media {
		if strings.Contains(source, m) || strings.Contains(fileName, m) {
			return ReliabilityMedium
		}
	}
	return ReliabilityUnknown
}
