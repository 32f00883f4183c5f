package semanticscholar

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/custodia-labs/litrag/internal/connectors/fetch"
	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector searches Semantic Scholar and downloads open-access PDFs.
type Connector struct {
	config *Config
	client *Client
	mu     sync.Mutex
	closed bool
}

// New creates a new Semantic Scholar connector.
func New(cfg *Config) *Connector {
	cfg = cfg.withDefaults()
	return &Connector{
		config: cfg,
		client: NewClient(cfg),
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() domain.ConnectorType {
	return domain.ConnectorSemanticScholar
}

// Capabilities returns the connector's capabilities.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsWatch:        false,
		SupportsBinary:       true,
		RequiresAPIKey:       false, // Anonymous access is rate limited harder
		SupportsRateLimiting: true,
		SupportsAbstracts:    true,
	}
}

// Validate runs a one-result search to check the API is reachable.
func (c *Connector) Validate(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if _, err := c.client.SearchPapers(ctx, "addiction", 1); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAcquisitionFailure, err)
	}
	return nil
}

// Search returns up to limit papers matching query.
func (c *Connector) Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidArgument)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidArgument)
	}
	return c.client.SearchPapers(ctx, query, min(limit, maxLimit))
}

// Fetch downloads a document, typically an open-access PDF.
func (c *Connector) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if err := c.checkOpen(); err != nil {
		return nil, "", err
	}
	header := http.Header{}
	header.Set("User-Agent", c.config.UserAgent)
	return fetch.Document(ctx, c.config.HTTPClient, c.config.Retry, url, header)
}

// Close marks the connector closed.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Connector) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrConnectorClosed
	}
	return nil
}
