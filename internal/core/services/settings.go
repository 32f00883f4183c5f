package services

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedDims     = "embedding.dimensions"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keyAcqConnector   = "acquisition.connector"
	keyAcqBaseURL     = "acquisition.base_url"
	keyAcqAPIKey      = "acquisition.api_key"
	keyAcqUserAgent   = "acquisition.user_agent"
	keyAcqLimit       = "acquisition.limit"
	keyAcqRPS         = "acquisition.requests_per_second"
	keyAcqWorkers     = "acquisition.workers"
	keyAcqTimeout     = "acquisition.source_timeout_seconds"
	keyAcqDirectory   = "acquisition.directory"
	keyAcqTerms       = "acquisition.search_terms"
	keyAcqPubMedStart = "acquisition.pubmed_start_year"
	keyAcqPubMedEnd   = "acquisition.pubmed_end_year"

	keyRetryMax        = "retry.max_retries"
	keyRetryBase       = "retry.base_delay_ms"
	keyRetryMaxDelay   = "retry.max_delay_ms"
	keyRetryMultiplier = "retry.multiplier"

	keyIndexBackend   = "index.backend"
	keyIndexBatchSize = "index.batch_size"
	keyIndexTimeout   = "index.batch_timeout_seconds"

	keyRetrievalTopK = "retrieval.top_k"
	keyChunkFile     = "corpus.chunk_file"

	keyPipelineProcessors = "pipeline.processors"
	pipelinePrefix        = "pipeline"
)

// valueKind is how a config value is typed when set from a string.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindStrings
)

// settingKinds lists every key Set accepts.
// Per-processor pipeline keys are accepted as strings unless listed here.
var settingKinds = map[string]valueKind{
	keyEmbedProvider: kindString,
	keyEmbedModel:    kindString,
	keyEmbedBaseURL:  kindString,
	keyEmbedAPIKey:   kindString,
	keyEmbedDims:     kindInt,

	keyLLMProvider: kindString,
	keyLLMModel:    kindString,
	keyLLMBaseURL:  kindString,
	keyLLMAPIKey:   kindString,

	keyAcqConnector:   kindString,
	keyAcqBaseURL:     kindString,
	keyAcqAPIKey:      kindString,
	keyAcqUserAgent:   kindString,
	keyAcqLimit:       kindInt,
	keyAcqRPS:         kindFloat,
	keyAcqWorkers:     kindInt,
	keyAcqTimeout:     kindInt,
	keyAcqDirectory:   kindString,
	keyAcqTerms:       kindStrings,
	keyAcqPubMedStart: kindInt,
	keyAcqPubMedEnd:   kindInt,

	keyRetryMax:        kindInt,
	keyRetryBase:       kindInt,
	keyRetryMaxDelay:   kindInt,
	keyRetryMultiplier: kindFloat,

	keyIndexBackend:   kindString,
	keyIndexBatchSize: kindInt,
	keyIndexTimeout:   kindInt,

	keyRetrievalTopK: kindInt,
	keyChunkFile:     kindString,

	keyPipelineProcessors:                  kindStrings,
	"pipeline.chunker.max_chars":           kindInt,
	"pipeline.chunker.min_paragraph_chars": kindInt,
	"pipeline.chunker.skip_prefixes":       kindStrings,
}

// SettingKeys returns every recognised configuration key, sorted.
func SettingKeys() []string {
	return slices.Sorted(maps.Keys(settingKinds))
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Keys returns every key Set accepts.
func (s *SettingsService) Keys() []string {
	return SettingKeys()
}

// Get retrieves current application settings with defaults applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDims),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Acquisition: domain.AcquisitionSettings{
			Connector:         s.getConnector(d.Acquisition.Connector),
			BaseURL:           s.configStore.GetString(keyAcqBaseURL),
			APIKey:            s.configStore.GetString(keyAcqAPIKey),
			UserAgent:         s.getString(keyAcqUserAgent, d.Acquisition.UserAgent),
			Limit:             s.getInt(keyAcqLimit, d.Acquisition.Limit),
			RequestsPerSecond: s.getFloat(keyAcqRPS, d.Acquisition.RequestsPerSecond),
			Workers:           s.getInt(keyAcqWorkers, d.Acquisition.Workers),
			SourceTimeout:     s.getSeconds(keyAcqTimeout, d.Acquisition.SourceTimeout),
			Directory:         s.configStore.GetString(keyAcqDirectory),
			SearchTerms:       s.getStrings(keyAcqTerms, d.Acquisition.SearchTerms),
			PubMedStartYear:   s.getInt(keyAcqPubMedStart, d.Acquisition.PubMedStartYear),
			PubMedEndYear:     s.getInt(keyAcqPubMedEnd, d.Acquisition.PubMedEndYear),
		},
		Retry: domain.RetrySettings{
			MaxRetries: s.getNonNegativeInt(keyRetryMax, d.Retry.MaxRetries),
			BaseDelay:  s.getMillis(keyRetryBase, d.Retry.BaseDelay),
			MaxDelay:   s.getMillis(keyRetryMaxDelay, d.Retry.MaxDelay),
			Multiplier: s.getFloat(keyRetryMultiplier, d.Retry.Multiplier),
		},
		Index: domain.IndexSettings{
			Backend:      s.getBackend(d.Index.Backend),
			BatchSize:    s.getInt(keyIndexBatchSize, d.Index.BatchSize),
			BatchTimeout: s.getSeconds(keyIndexTimeout, d.Index.BatchTimeout),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyRetrievalTopK, d.Retrieval.TopK),
		},
		Corpus: domain.CorpusSettings{
			ChunkFile: s.configStore.GetString(keyChunkFile),
		},
		Pipeline: s.getPipeline(d.Pipeline),
	}

	// A model only applies to the provider it was chosen for, so a changed
	// provider without a model falls back to that provider's default.
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])
	if settings.Embedding.Dimensions == 0 && settings.Embedding.Provider == domain.AIProviderHash {
		settings.Embedding.Dimensions = d.Embedding.Dimensions
	}

	return settings, nil
}

// Set persists a single configuration key.
// String values are converted to the key's type, so CLI input can be passed through.
func (s *SettingsService) Set(key string, value any) error {
	kind, ok := settingKinds[key]
	if !ok {
		if !strings.HasPrefix(key, pipelinePrefix+".") {
			return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidArgument, key)
		}
		kind = kindString
	}

	if str, isString := value.(string); isString {
		converted, err := convertSetting(kind, str)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidArgument, key, err)
		}
		value = converted
	}

	if err := validateSetting(key, value); err != nil {
		return err
	}

	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	baseURL := s.configStore.GetString(keyEmbedBaseURL)
	switch {
	case provider == domain.AIProviderOllama && baseURL == "":
		baseURL = "http://localhost:11434"
	case !provider.IsLocal():
		// Cloud providers don't need a custom base URL
		baseURL = ""
	}

	// The previous override belongs to the previous model.
	dims := domain.EmbeddingDimensions()[model]

	return s.save(map[string]any{
		keyEmbedProvider: provider.String(),
		keyEmbedModel:    model,
		keyEmbedBaseURL:  baseURL,
		keyEmbedAPIKey:   apiKey,
		keyEmbedDims:     dims,
	})
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("provider %s does not support text generation", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	baseURL := s.configStore.GetString(keyLLMBaseURL)
	switch {
	case provider.IsLocal() && baseURL == "":
		baseURL = "http://localhost:11434"
	case !provider.IsLocal():
		baseURL = ""
	}

	return s.save(map[string]any{
		keyLLMProvider: provider.String(),
		keyLLMModel:    model,
		keyLLMBaseURL:  baseURL,
		keyLLMAPIKey:   apiKey,
	})
}

// SetAPIKey stores the API key for whichever roles use the provider.
// Semantic Scholar keys are stored under the "semanticscholar" pseudo-provider.
func (s *SettingsService) SetAPIKey(provider domain.AIProvider, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: empty API key", domain.ErrInvalidArgument)
	}

	if string(provider) == string(domain.ConnectorSemanticScholar) || string(provider) == string(domain.ConnectorPubMed) {
		return s.Set(keyAcqAPIKey, apiKey)
	}
	if !provider.RequiresAPIKey() {
		return fmt.Errorf("provider %s does not use an API key", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	updates := make(map[string]any)
	if settings.Embedding.Provider == provider {
		updates[keyEmbedAPIKey] = apiKey
	}
	if settings.LLM.Provider == provider {
		updates[keyLLMAPIKey] = apiKey
	}
	if len(updates) == 0 {
		return fmt.Errorf("provider %s is not configured for embeddings or LLM", provider)
	}
	return s.save(updates)
}

// Validate checks the configured settings for consistency.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not usable", domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q is missing configuration", domain.ErrLLMUnavailable, settings.LLM.Provider)
	}
	if settings.Acquisition.Connector == domain.ConnectorFilesystem && settings.Acquisition.Directory == "" {
		return fmt.Errorf("%w: filesystem connector requires %s", domain.ErrInvalidArgument, keyAcqDirectory)
	}
	if settings.Acquisition.PubMedStartYear > settings.Acquisition.PubMedEndYear {
		return fmt.Errorf("%w: pubmed start year %d is after end year %d",
			domain.ErrInvalidArgument, settings.Acquisition.PubMedStartYear, settings.Acquisition.PubMedEndYear)
	}
	if settings.Retry.MaxDelay < settings.Retry.BaseDelay {
		return fmt.Errorf("%w: retry max delay is below base delay", domain.ErrInvalidArgument)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// save writes values in key order. Empty strings delete the key.
func (s *SettingsService) save(values map[string]any) error {
	for _, key := range slices.Sorted(maps.Keys(values)) {
		val := values[key]
		if str, ok := val.(string); ok && str == "" {
			if err := s.configStore.Delete(key); err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
			continue
		}
		if n, ok := val.(int); ok && n == 0 {
			if err := s.configStore.Delete(key); err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
			continue
		}
		if err := s.configStore.Set(key, val); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

func convertSetting(kind valueKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case kindInt:
		return strconv.Atoi(raw)
	case kindFloat:
		return strconv.ParseFloat(raw, 64)
	case kindBool:
		return strconv.ParseBool(raw)
	case kindStrings:
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	default:
		return raw, nil
	}
}

func validateSetting(key string, value any) error {
	str, _ := value.(string)
	switch key {
	case keyEmbedProvider, keyLLMProvider:
		if !domain.AIProvider(str).IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidArgument, str)
		}
	case keyAcqConnector:
		if !domain.ConnectorType(str).IsValid() {
			return fmt.Errorf("%w: unknown connector %q", domain.ErrInvalidArgument, str)
		}
	case keyIndexBackend:
		if !domain.IndexBackend(str).IsValid() {
			return fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidArgument, str)
		}
	case keyRetrievalTopK, keyIndexBatchSize, keyAcqWorkers, keyAcqLimit:
		if n, ok := value.(int); ok && n <= 0 {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidArgument, key)
		}
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

// getNonNegativeInt treats an explicit zero as a real value.
func (s *SettingsService) getNonNegativeInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Second
}

func (s *SettingsService) getMillis(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Millisecond
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getConnector(defaultVal domain.ConnectorType) domain.ConnectorType {
	connector := domain.ConnectorType(s.configStore.GetString(keyAcqConnector))
	if !connector.IsValid() {
		return defaultVal
	}
	return connector
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	backend := domain.IndexBackend(s.configStore.GetString(keyIndexBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// getPipeline overlays each processor's [pipeline.<name>] table on the defaults.
func (s *SettingsService) getPipeline(defaults domain.PipelineConfig) domain.PipelineConfig {
	cfg := domain.PipelineConfig{
		Processors:       s.getStrings(keyPipelineProcessors, defaults.Processors),
		ProcessorConfigs: make(map[string]map[string]any),
	}

	for _, name := range cfg.Processors {
		merged := make(map[string]any)
		maps.Copy(merged, defaults.GetProcessorConfig(name))
		maps.Copy(merged, s.configStore.GetMap(pipelinePrefix+"."+name))
		cfg.ProcessorConfigs[name] = merged
	}
	return cfg
}
