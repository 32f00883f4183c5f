package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/retry"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantErr  error
		wantDims int
	}{
		{name: "nil settings", settings: nil, wantErr: domain.ErrEmbeddingUnavailable},
		{name: "unconfigured", settings: &domain.EmbeddingSettings{}, wantErr: domain.ErrEmbeddingUnavailable},
		{
			name:     "hash default",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderHash},
			wantDims: 384,
		},
		{
			name:     "hash custom dims",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderHash, Dimensions: 64},
			wantDims: 64,
		},
		{
			name:     "ollama known model",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"},
			wantDims: 768,
		},
		{
			name:     "openai with key",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "text-embedding-3-large"},
			wantDims: 3072,
		},
		{
			name:     "openai without key",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantErr:  domain.ErrEmbeddingUnavailable,
		},
		{
			name:     "anthropic has no embeddings",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantErr:  domain.ErrEmbeddingUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings, retry.Policy{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDims, svc.Dimensions())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantErr  bool
		model    string
	}{
		{name: "unconfigured", settings: &domain.LLMSettings{}, wantErr: true},
		{name: "hash is not an llm", settings: &domain.LLMSettings{Provider: domain.AIProviderHash}, wantErr: true},
		{name: "ollama", settings: &domain.LLMSettings{Provider: domain.AIProviderOllama}, model: "llama3.2"},
		{name: "openai", settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o"}, model: "gpt-4o"},
		{name: "anthropic", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}, model: "claude-3-5-sonnet-latest"},
		{name: "anthropic without key", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings, retry.Policy{})
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.model, svc.ModelName())
		})
	}
}
