package pubmed

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

// maxLimit caps PMIDs per search so one efetch call covers them.
const maxLimit = 200

// Connector searches PubMed and returns abstract-only candidates.
type Connector struct {
	config *Config
	client *Client
	mu     sync.Mutex
	closed bool
}

// New creates a new PubMed connector.
func New(cfg *Config) *Connector {
	cfg = cfg.withDefaults()
	return &Connector{
		config: cfg,
		client: NewClient(cfg),
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() domain.ConnectorType {
	return domain.ConnectorPubMed
}

// Capabilities returns the connector's capabilities.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsWatch:        false,
		SupportsBinary:       false, // Abstracts only
		RequiresAPIKey:       false,
		SupportsRateLimiting: true,
		SupportsAbstracts:    true,
	}
}

// Validate checks the configured year range and that esearch answers.
func (c *Connector) Validate(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if c.config.StartYear > c.config.EndYear {
		return fmt.Errorf("%w: start year %d after end year %d",
			domain.ErrInvalidArgument, c.config.StartYear, c.config.EndYear)
	}
	if _, err := c.client.SearchIDs(ctx, "addiction", 1); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAcquisitionFailure, err)
	}
	return nil
}

// Search returns up to limit articles matching query within the year range.
// Articles come back in esearch relevance order.
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

	ids, err := c.client.SearchIDs(ctx, query, min(limit, maxLimit))
	if err != nil {
		return nil, err
	}
	articles, err := c.client.FetchArticles(ctx, ids)
	if err != nil {
		return nil, err
	}
	return orderByIDs(articles, ids), nil
}

// Fetch downloads a document by URL. PubMed candidates carry no PDF link,
// so this only serves links supplied from elsewhere.
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

// orderByIDs restores esearch order, which efetch does not guarantee.
func orderByIDs(articles []domain.Candidate, ids []string) []domain.Candidate {
	byID := make(map[string]domain.Candidate, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}
	ordered := make([]domain.Candidate, 0, len(articles))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
			delete(byID, id)
		}
	}
	return ordered
}
