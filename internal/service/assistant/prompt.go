package assistant

import (
	"fmt"
	"strings"

	"github.com/cureverse/cureverse/internal/model/symptom"
)

const basePrompt = `You are CureVerse, an AI-powered Ayurvedic health guide.

Guidelines:
- Answer in GitHub-flavoured markdown: short paragraphs, bullet lists and **bold** key terms.
- Prefer natural remedies, dosha balance and seasonal advice grounded in Ayurvedic principles.
- Never diagnose. When symptoms sound serious, advise the user to consult a qualified doctor.
- Keep answers under 250 words unless the user asks for detail.`

// BuildSystemPrompt returns the system prompt, listing the symptom topics the
// assistant has curated data for.
func BuildSystemPrompt(items []symptom.Symptom) string {
	if len(items) == 0 {
		return basePrompt
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return fmt.Sprintf("%s\n\nCurated topics (the user can mention them for structured advice): %s.",
		basePrompt, strings.Join(names, ", "))
}
