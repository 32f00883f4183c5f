package semanticscholar

import (
	"net/http"
	"time"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/retry"
)

// DefaultBaseURL is the Graph API root.
const DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

// searchFields are the paper fields requested from the search endpoint.
const searchFields = "title,abstract,authors,year,url,openAccessPdf"

// maxLimit is the largest page the search endpoint accepts.
const maxLimit = 100

// Config holds the connector configuration.
type Config struct {
	// BaseURL is the Graph API root. Default: DefaultBaseURL.
	BaseURL string

	// APIKey is sent as x-api-key when set.
	APIKey string

	// UserAgent identifies the client.
	UserAgent string

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
		RequestsPerSecond: s.RequestsPerSecond,
		Timeout:           s.SourceTimeout,
		Retry:             policy,
	}
}

func (c *Config) withDefaults() *Config {
	cfg := *c
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = domain.DefaultAppSettings().Acquisition.UserAgent
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &cfg
}
