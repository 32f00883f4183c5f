package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/postprocessors"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding, settings.Embedding)
	assert.Equal(t, defaults.Acquisition, settings.Acquisition)
	assert.Equal(t, defaults.Retry, settings.Retry)
	assert.Equal(t, defaults.Index, settings.Index)
	assert.Equal(t, defaults.Retrieval, settings.Retrieval)
	assert.Equal(t, defaults.Pipeline, settings.Pipeline)
	assert.False(t, settings.LLM.IsConfigured())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.api_key", "sk-test")
	_ = store.Set("llm.provider", "ollama")
	_ = store.Set("acquisition.connector", "pubmed")
	_ = store.Set("acquisition.requests_per_second", int64(3))
	_ = store.Set("acquisition.source_timeout_seconds", int64(5))
	_ = store.Set("acquisition.search_terms", []any{"opioid", "alcohol"})
	_ = store.Set("retry.max_retries", int64(0))
	_ = store.Set("retry.base_delay_ms", int64(250))
	_ = store.Set("index.backend", "memory")
	_ = store.Set("retrieval.top_k", int64(8))
	_ = store.Set("corpus.chunk_file", "/tmp/chunks.jsonl")

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Zero(t, settings.Embedding.Dimensions)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, domain.ConnectorPubMed, settings.Acquisition.Connector)
	assert.InDelta(t, 3.0, settings.Acquisition.RequestsPerSecond, 1e-9)
	assert.Equal(t, 5*time.Second, settings.Acquisition.SourceTimeout)
	assert.Equal(t, []string{"opioid", "alcohol"}, settings.Acquisition.SearchTerms)
	assert.Equal(t, 0, settings.Retry.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, settings.Retry.BaseDelay)
	assert.Equal(t, domain.IndexBackendMemory, settings.Index.Backend)
	assert.Equal(t, 8, settings.Retrieval.TopK)
	assert.Equal(t, "/tmp/chunks.jsonl", settings.Corpus.ChunkFile)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "invalid_provider")
	_ = store.Set("acquisition.connector", "arxiv")
	_ = store.Set("index.backend", "qdrant")
	_ = store.Set("retrieval.top_k", int64(-1))

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Acquisition.Connector, settings.Acquisition.Connector)
	assert.Equal(t, defaults.Index.Backend, settings.Index.Backend)
	assert.Equal(t, defaults.Retrieval.TopK, settings.Retrieval.TopK)
}

func TestSettingsService_ChunkerThresholdsReachChunker(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	require.NoError(t, service.Set("pipeline.chunker.max_chars", "200"))
	require.NoError(t, service.Set("pipeline.chunker.min_paragraph_chars", "5"))

	settings, err := service.Get()
	require.NoError(t, err)

	cfg := settings.Pipeline.GetProcessorConfig("chunker")
	assert.Equal(t, 200, cfg["max_chars"])
	assert.Equal(t, 5, cfg["min_paragraph_chars"])
	assert.Equal(t, []string{"FIG.", "TABLE"}, cfg["skip_prefixes"])

	pipeline, err := postprocessors.BuildPipeline(postprocessors.DefaultRegistry(), settings.Pipeline)
	require.NoError(t, err)

	chunks, err := pipeline.Process(t.Context(), "short one\nshort two")
	require.NoError(t, err)
	assert.Equal(t, []string{"short one\nshort two"}, chunks)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		want    any
		wantErr bool
	}{
		{name: "string", key: "llm.model", value: "gpt-4o", want: "gpt-4o"},
		{name: "int from string", key: "acquisition.limit", value: "25", want: 25},
		{name: "float from string", key: "retry.multiplier", value: "1.5", want: 1.5},
		{name: "list from string", key: "acquisition.search_terms", value: "a, b,,c", want: []string{"a", "b", "c"}},
		{name: "typed value", key: "index.batch_size", value: 16, want: 16},
		{name: "unknown key", key: "search.mode", value: "hybrid", wantErr: true},
		{name: "bad int", key: "acquisition.workers", value: "four", wantErr: true},
		{name: "non-positive k", key: "retrieval.top_k", value: "0", wantErr: true},
		{name: "bad provider", key: "llm.provider", value: "gemini", wantErr: true},
		{name: "bad connector", key: "acquisition.connector", value: "arxiv", wantErr: true},
		{name: "bad backend", key: "index.backend", value: "qdrant", wantErr: true},
		{name: "other processor key", key: "pipeline.summariser.style", value: "brief", want: "brief"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			err := NewSettingsService(store, nil).Set(tt.key, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			got, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "all-minilm", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
	assert.Equal(t, 384, settings.Embedding.Dimensions)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "text-embedding-3-large", "sk-1"))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Empty(t, settings.Embedding.BaseURL)
	assert.Equal(t, "sk-1", settings.Embedding.APIKey)
	assert.Equal(t, 3072, settings.Embedding.Dimensions)

	assert.Error(t, service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "k"))
	assert.Error(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""))
	assert.Error(t, service.SetEmbeddingProvider("nope", "", ""))
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", "sk-ant"))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
	assert.True(t, settings.LLM.IsConfigured())

	assert.Error(t, service.SetLLMProvider(domain.AIProviderHash, "", ""))
	assert.Error(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", ""))
}

func TestSettingsService_SetAPIKey(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	require.NoError(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", "old"))

	require.NoError(t, service.SetAPIKey(domain.AIProviderOpenAI, "new"))
	assert.Equal(t, "new", store.GetString("llm.api_key"))
	assert.Empty(t, store.GetString("embedding.api_key"))

	require.NoError(t, service.SetAPIKey("semanticscholar", "s2-key"))
	assert.Equal(t, "s2-key", store.GetString("acquisition.api_key"))

	assert.Error(t, service.SetAPIKey(domain.AIProviderAnthropic, "k"))
	assert.Error(t, service.SetAPIKey(domain.AIProviderOllama, "k"))
	assert.ErrorIs(t, service.SetAPIKey(domain.AIProviderOpenAI, ""), domain.ErrInvalidArgument)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr error
	}{
		{name: "defaults", values: nil},
		{name: "cloud embedding without key", values: map[string]any{"embedding.provider": "openai"}, wantErr: domain.ErrEmbeddingUnavailable},
		{name: "llm without key", values: map[string]any{"llm.provider": "anthropic"}, wantErr: domain.ErrLLMUnavailable},
		{name: "filesystem without directory", values: map[string]any{"acquisition.connector": "filesystem"}, wantErr: domain.ErrInvalidArgument},
		{
			name:    "inverted pubmed years",
			values:  map[string]any{"acquisition.pubmed_start_year": 2020, "acquisition.pubmed_end_year": 2010},
			wantErr: domain.ErrInvalidArgument,
		},
		{
			name:    "max delay below base",
			values:  map[string]any{"retry.base_delay_ms": 5000, "retry.max_delay_ms": 100},
			wantErr: domain.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			for k, v := range tt.values {
				_ = store.Set(k, v)
			}
			err := NewSettingsService(store, nil).Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

type stubValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
}

func (v *stubValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	v.embedding = cfg
	return v.embeddingErr
}

func (v *stubValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return v.llmErr
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	validator := &stubValidator{llmErr: errors.New("connection refused")}
	service := NewSettingsService(memory.NewConfigStore(), validator)

	require.NoError(t, service.ValidateEmbeddingConfig())
	require.NotNil(t, validator.embedding)
	assert.Equal(t, domain.AIProviderHash, validator.embedding.Provider)
	assert.EqualError(t, service.ValidateLLMConfig(), "connection refused")

	noValidator := NewSettingsService(memory.NewConfigStore(), nil)
	assert.NoError(t, noValidator.ValidateLLMConfig())
}

func TestSettingKeys_Sorted(t *testing.T) {
	keys := SettingKeys()
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "pipeline.chunker.max_chars")
}
