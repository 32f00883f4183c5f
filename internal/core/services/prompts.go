package services

import (
	"strings"

	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/logger"
)

// Fallback templates for services running without a prompt store.
const (
	fallbackAnswerSystem = "Answer using only the numbered excerpts. Cite excerpts by number."
	fallbackAnswer       = "Excerpts:\n\n%s\n\nQuestion: %s\n\nAnswer:"
	fallbackIntake       = "Summarise this intake form under the headings Occupation, Experience in Rehab, " +
		"Psychological Insights, Family Support and Relapse Probability.\n\n%s"
)

// loadPrompt reads a template and checks it takes exactly verbs %s arguments.
// Missing or malformed templates fall back so a bad user edit cannot break a call.
func loadPrompt(store driven.PromptStore, name, fallback string, verbs int) string {
	if store == nil {
		return fallback
	}

	tmpl, err := store.Load(name)
	if err != nil {
		logger.Warn("Prompt %s unavailable, using built-in: %v", name, err)
		return fallback
	}
	if verbs > 0 && strings.Count(tmpl, "%s") != verbs {
		logger.Warn("Prompt %s must contain %d %%s placeholders, using built-in", name, verbs)
		return fallback
	}
	return tmpl
}
