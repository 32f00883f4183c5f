package pubmed

import (
	"net/http"
	"time"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/retry"
)

// DefaultBaseURL is the E-utilities root.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// ToolName is sent as the tool parameter NCBI asks clients to set.
const ToolName = "litrag"

// Config holds the connector configuration.
type Config struct {
	// BaseURL is the E-utilities root. Default: DefaultBaseURL.
	BaseURL string

	// APIKey raises the NCBI rate limit when set.
	APIKey string

	// UserAgent identifies the client.
	UserAgent string

	// StartYear and EndYear bound the publication date filter.
	StartYear int
	EndYear   int

	// RequestsPerSecond throttles API calls. Zero disables throttling.
	RequestsPerSecond float64

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Retry is the backoff policy for 429 and 5xx responses.
	Retry retry.Policy

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// ConfigFromSettings builds a Config from acquisition settings.
func ConfigFromSettings(s domain.AcquisitionSettings, policy retry.Policy) *Config {
	return &Config{
		BaseURL:           s.BaseURL,
		APIKey:            s.APIKey,
		UserAgent:         s.UserAgent,
		StartYear:         s.PubMedStartYear,
		EndYear:           s.PubMedEndYear,
		RequestsPerSecond: s.RequestsPerSecond,
		Timeout:           s.SourceTimeout,
		Retry:             policy,
	}
}

func (c *Config) withDefaults() *Config {
	cfg := *c
	defaults := domain.DefaultAppSettings().Acquisition
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.StartYear == 0 {
		cfg.StartYear = defaults.PubMedStartYear
	}
	if cfg.EndYear == 0 {
		cfg.EndYear = defaults.PubMedEndYear
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &cfg
}
