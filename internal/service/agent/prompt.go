package agent

import (
	"strings"

	"github.com/solarsmart/salesbot/internal/core"
	"github.com/solarsmart/salesbot/internal/providers/rag"
)

// buildPrompt assembles the labeled Memory / Documents / User sections the
// completion provider sees for one turn.
func buildPrompt(memoryContext, docsContext, userMessage string) string {
	var sb strings.Builder
	sb.WriteString("Memory:\n")
	sb.WriteString(memoryContext)
	sb.WriteString("\nDocuments:\n")
	sb.WriteString(docsContext)
	sb.WriteString("\nUser: ")
	sb.WriteString(userMessage)
	sb.WriteString("\nAssistant:")
	return sb.String()
}

// memoryContext joins the log into a transcript, trimming the oldest
// entries first once the token budget is exceeded. Budget <= 0 disables
// trimming.
func memoryContext(entries []core.Entry, tokenBudget int) string {
	if len(entries) == 0 {
		return ""
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Text)
	}

	if tokenBudget > 0 {
		total := 0
		// Walk backwards keeping the newest entries inside the budget.
		keep := len(lines)
		for i := len(lines) - 1; i >= 0; i-- {
			total += rag.CountTokens(lines[i])
			if total > tokenBudget {
				break
			}
			keep = i
		}
		lines = lines[keep:]
	}

	return strings.Join(lines, "\n")
}

func docsContext(passages []core.Passage) string {
	if len(passages) == 0 {
		return ""
	}
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		parts = append(parts, p.Content)
	}
	return strings.Join(parts, "\n---\n")
}
