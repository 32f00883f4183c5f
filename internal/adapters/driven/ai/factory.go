// Package ai creates embedding and LLM service adapters from settings and
// owns them for the life of the process.
package ai

import (
	"fmt"
	"time"

	hashembed "github.com/custodia-labs/litrag/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/custodia-labs/litrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/litrag/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/litrag/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/litrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/litrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/retry"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service named by settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings, policy retry.Policy) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, domain.ErrEmbeddingUnavailable
	}

	switch settings.Provider {
	case domain.AIProviderHash:
		return hashembed.NewEmbeddingService(settings.Dimensions)

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensionsFor(settings),
			Retry:      policy,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensionsFor(settings),
			Retry:      policy,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the LLM service named by settings.
func CreateLLMService(settings *domain.LLMSettings, policy retry.Policy) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, domain.ErrLLMUnavailable
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Retry:   policy,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Retry:   policy,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Retry:   policy,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// dimensionsFor prefers an explicit override, then the known model size.
// Zero lets the adapter pick its default.
func dimensionsFor(settings *domain.EmbeddingSettings) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	return domain.EmbeddingDimensions()[settings.Model]
}
