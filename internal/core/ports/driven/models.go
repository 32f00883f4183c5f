package driven

import "context"

// ModelRegistry owns the embedding and LLM services for the life of the process.
// Services are created on first use and released by Close.
type ModelRegistry interface {
	// Embedding returns the embedding service.
	// Returns domain.ErrEmbeddingUnavailable when none is configured.
	Embedding(ctx context.Context) (EmbeddingService, error)

	// LLM returns the language model service.
	// Returns domain.ErrLLMUnavailable when none is configured.
	LLM(ctx context.Context) (LLMService, error)

	// Close releases every service the registry created. Safe to call twice.
	Close() error
}
