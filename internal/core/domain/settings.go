package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHash is the local feature-hashing embedder.
	AIProviderHash AIProvider = "hash"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderHash:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHash
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderHash:
		return "Feature hashing (local, deterministic)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's vector size. Zero uses the model default.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHash {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ConnectorType identifies a literature source.
type ConnectorType string

// Available connectors.
const (
	// ConnectorSemanticScholar searches the Semantic Scholar Graph API.
	ConnectorSemanticScholar ConnectorType = "semanticscholar"

	// ConnectorPubMed searches PubMed through NCBI E-utilities.
	ConnectorPubMed ConnectorType = "pubmed"

	// ConnectorFilesystem reads documents from a local directory.
	ConnectorFilesystem ConnectorType = "filesystem"
)

// IsValid returns true if the connector type is recognised.
func (c ConnectorType) IsValid() bool {
	switch c {
	case ConnectorSemanticScholar, ConnectorPubMed, ConnectorFilesystem:
		return true
	default:
		return false
	}
}

// Description returns a human-readable label for the connector.
func (c ConnectorType) Description() string {
	switch c {
	case ConnectorSemanticScholar:
		return "Semantic Scholar (open-access PDFs)"
	case ConnectorPubMed:
		return "PubMed (abstracts)"
	case ConnectorFilesystem:
		return "Local directory"
	default:
		return string(c)
	}
}

// AllConnectorTypes returns the selectable literature sources.
func AllConnectorTypes() []ConnectorType {
	return []ConnectorType{ConnectorSemanticScholar, ConnectorPubMed, ConnectorFilesystem}
}

// AcquisitionSettings configures literature acquisition.
type AcquisitionSettings struct {
	// Connector selects the literature source.
	Connector ConnectorType

	// BaseURL overrides the connector's API endpoint.
	BaseURL string

	// APIKey is sent to APIs that accept one.
	APIKey string

	// UserAgent identifies the client to remote APIs.
	UserAgent string

	// Limit is the number of candidates requested per search term.
	Limit int

	// RequestsPerSecond throttles API calls.
	RequestsPerSecond float64

	// Workers bounds parallel downloads.
	Workers int

	// SourceTimeout bounds each fetch and extraction.
	SourceTimeout time.Duration

	// Directory is the root for the filesystem connector.
	Directory string

	// SearchTerms are the queries run by a default ingest.
	SearchTerms []string

	// PubMedStartYear and PubMedEndYear bound PubMed publication dates.
	PubMedStartYear int
	PubMedEndYear   int
}

// RetrySettings configures exponential backoff for remote calls.
type RetrySettings struct {
	// MaxRetries is the retry budget after the first attempt.
	MaxRetries int

	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps any single wait.
	MaxDelay time.Duration

	// Multiplier grows the delay per attempt.
	Multiplier float64
}

// IndexBackend selects the vector index storage.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite persists vectors in SQLite.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendMemory keeps vectors in process memory.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	return b == IndexBackendSQLite || b == IndexBackendMemory
}

// IndexSettings configures the embedding indexer.
type IndexSettings struct {
	// Backend selects index storage.
	Backend IndexBackend

	// BatchSize is the number of chunks per embedding call.
	BatchSize int

	// BatchTimeout bounds each embedding call.
	BatchTimeout time.Duration
}

// RetrievalSettings configures the retriever.
type RetrievalSettings struct {
	// TopK is the default number of results.
	TopK int
}

// CorpusSettings configures the chunk store.
type CorpusSettings struct {
	// ChunkFile is the JSONL chunk store path. Empty uses the data directory.
	ChunkFile string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	Acquisition AcquisitionSettings
	Retry       RetrySettings
	Index       IndexSettings
	Retrieval   RetrievalSettings
	Corpus      CorpusSettings
	Pipeline    PipelineConfig
}

// DefaultSearchTerms are the addiction-treatment queries run by default.
func DefaultSearchTerms() []string {
	return []string{
		"substance use disorder DSM-5",
		"addiction typologies rehab",
		"co-occurring disorders substance use",
		"alcohol withdrawal management",
		"opioid use disorder MAT",
		"evidence-based addiction treatment inpatient",
		"CBT addiction",
		"motivational interviewing substance use",
		"contingency management treatment outcomes",
		"12-step program alcohol use disorder",
		"trauma-informed care substance use",
		"ACE score addiction",
		"addiction borderline personality disorder",
		"dual diagnosis treatment",
		"relapse prevention strategies",
		"rehab patient personas",
		"long-term residential treatment outcomes",
		"young adults substance use treatment engagement",
		"court-mandated treatment effectiveness",
		"neurobiology of addiction",
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings use the local hash provider so the pipeline runs offline.
// The LLM is left unconfigured until the user sets one up.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderHash,
			Model:      "hash-384",
			Dimensions: 384,
		},
		LLM: LLMSettings{},
		Acquisition: AcquisitionSettings{
			Connector:         ConnectorSemanticScholar,
			UserAgent:         "AddictionResearchBot/1.0",
			Limit:             10,
			RequestsPerSecond: 1,
			Workers:           4,
			SourceTimeout:     30 * time.Second,
			SearchTerms:       DefaultSearchTerms(),
			PubMedStartYear:   2005,
			PubMedEndYear:     2025,
		},
		Retry: RetrySettings{
			MaxRetries: 3,
			BaseDelay:  500 * time.Millisecond,
			MaxDelay:   10 * time.Second,
			Multiplier: 2,
		},
		Index: IndexSettings{
			Backend:      IndexBackendSQLite,
			BatchSize:    32,
			BatchTimeout: 60 * time.Second,
		},
		Retrieval: RetrievalSettings{
			TopK: 5,
		},
		Pipeline: DefaultPipelineConfig(),
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHash,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHash:   "hash-384",
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Local
		"hash-384": 384,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration.
// The chunker thresholds match the scientific-PDF heuristics.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"max_chars":           DefaultMaxChunkChars,
				"min_paragraph_chars": 80,
				"skip_prefixes":       []string{"FIG.", "TABLE"},
			},
		},
	}
}
