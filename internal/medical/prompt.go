package medical

import "strings"

const basePrompt = `당신은 의료 정보 AI 어시스턴트입니다. 다음 중요 사항을 반드시 준수하세요:

⚠️ 안전 지침:
1. 개인별 진단이나 처방은 절대 하지 마세요
2. 심각한 증상의 경우 즉시 의료진 상담을 권하세요
3. 응급상황 시 119 신고를 최우선으로 안내하세요`

const promptFooter = `답변 시 반드시 포함할 내용:
- 명확하고 이해하기 쉬운 설명
- 관련 주의사항
- "정확한 진단과 치료를 위해서는 의료진과 상담하시기 바랍니다" 문구`

// SafetyPrompt builds the system instruction block for medical answer
// generation, hardened according to what validation found in the
// retrieved content.
func SafetyPrompt(validation ValidationResult, conflicts ConflictReport) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	switch validation.RiskLevel {
	case RiskDangerous:
		b.WriteString(`

🚨 위험 경고:
- 제공된 문서에 위험한 정보가 포함되어 있습니다
- 해당 정보는 신뢰하지 마세요
- 반드시 전문의와 상담하도록 안내하세요`)
	case RiskCaution:
		b.WriteString(`

⚠️ 주의 사항:
- 제공된 정보의 신뢰도가 확실하지 않습니다
- 일반적인 의학 상식과 함께 제공하세요
- 전문의 확인을 권하세요`)
	}

	if conflicts.HasConflicts {
		b.WriteString(`

🔍 정보 충돌 감지:
- 문서 정보와 일반 의학 지식이 상충됩니다
- 양쪽 정보를 모두 언급하고 차이점을 설명하세요
- 정확한 정보는 의료진에게 확인받도록 안내하세요`)
	}

	if len(validation.Warnings) > 0 {
		b.WriteString("\n\n⚠️ 감지된 경고사항:\n")
		for i, w := range validation.Warnings {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("- " + w)
		}
	}

	b.WriteString("\n\n")
	b.WriteString(promptFooter)
	return b.String()
}
