package driven

import "github.com/custodia-labs/litrag/internal/core/domain"

// AIConfigValidator checks provider settings before the settings service
// persists them.
type AIConfigValidator interface {
	// ValidateEmbedding creates the embedding service and pings it.
	// Unconfigured settings are not an error.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM creates the language model service and pings it.
	// Unconfigured settings are not an error.
	ValidateLLM(config *domain.LLMSettings) error
}
