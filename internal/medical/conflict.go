package medical

import "strings"

// Conflict describes a contradiction between retrieved content and an
// established medical fact.
type Conflict struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Standard    string `json:"standard"`
}

// ConflictReport aggregates the conflicts found in one piece of
// content.
type ConflictReport struct {
	HasConflicts bool       `json:"hasConflicts"`
	Conflicts    []Conflict `json:"conflicts"`
	Suggestions  []string   `json:"suggestions"`
	Confidence   float64    `json:"confidence"`
}

// ConflictDetector compares retrieved content against well-established
// medical facts and flags contradictions.
type ConflictDetector struct {
	facts map[string]string
}

func NewConflictDetector() *ConflictDetector {
	return &ConflictDetector{
		facts: map[string]string{
			"고혈압_정의": "혈압이 정상보다 높은 상태 (140/90mmHg 이상)",
			"당뇨병_완치": "당뇨병은 완치되지 않고 관리하는 질병",
			"감기_항생제": "감기는 바이러스 감염으로 항생제 효과 없음",
			"정상체온":   "36.5-37.5도 사이가 정상 체온",
			"응급실_방문": "의식잃음, 호흡곤란, 심한 흉통 시 즉시 응급실",
		},
	}
}

// Detect reports contradictions between content and the known facts.
func (d *ConflictDetector) Detect(content string) ConflictReport {
	lower := strings.ToLower(content)

	report := ConflictReport{Confidence: 0.1}
	for key, fact := range d.facts {
		c := checkFact(lower, key, fact)
		if c != nil {
			report.Conflicts = append(report.Conflicts, *c)
			report.Suggestions = append(report.Suggestions, "일반적으로 알려진 정보: "+fact)
		}
	}
	if len(report.Conflicts) > 0 {
		report.HasConflicts = true
		report.Confidence = 0.9
	}
	return report
}

func checkFact(content, key, fact string) *Conflict {
	switch key {
	case "고혈압_정의":
		if strings.Contains(content, "고혈압") && (strings.Contains(content, "낮은") || strings.Contains(content, "저혈압")) {
			return &Conflict{Type: "정의 충돌", Description: "고혈압을 낮은 혈압으로 설명", Standard: fact}
		}
	case "당뇨병_완치":
		if strings.Contains(content, "당뇨병") && strings.Contains(content, "완치") &&
			(strings.Contains(content, "가능") || strings.Contains(content, "된다")) {
			return &Conflict{Type: "치료 정보 충돌", Description: "당뇨병 완치 가능하다고 주장", Standard: fact}
		}
	case "감기_항생제":
		if strings.Contains(content, "감기") && strings.Contains(content, "항생제") &&
			(strings.Contains(content, "효과") || strings.Contains(content, "치료")) {
			return &Conflict{Type: "치료법 충돌", Description: "감기에 항생제가 효과적이라고 주장", Standard: fact}
		}
	}
	return nil
}
