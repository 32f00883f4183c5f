package semanticscholar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/logger"
	"github.com/custodia-labs/litrag/internal/retry"
)

// Client wraps the Graph API with throttling and retries.
type Client struct {
	config  *Config
	limiter *retry.RateLimiter
}

// NewClient creates an API client.
func NewClient(cfg *Config) *Client {
	return &Client{
		config:  cfg,
		limiter: retry.NewRateLimiter(cfg.RequestsPerSecond, 1),
	}
}

type searchResponse struct {
	Total int     `json:"total"`
	Data  []paper `json:"data"`
}

type paper struct {
	PaperID  string `json:"paperId"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Year     *int   `json:"year"`
	URL      string `json:"url"`
	Authors  []struct {
		Name string `json:"name"`
	} `json:"authors"`
	OpenAccessPDF *struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
}

func (p paper) candidate() domain.Candidate {
	c := domain.Candidate{
		ID:       p.PaperID,
		Title:    strings.TrimSpace(p.Title),
		URL:      p.URL,
		Year:     p.Year,
		Abstract: strings.TrimSpace(p.Abstract),
	}
	if p.OpenAccessPDF != nil {
		c.PDFURL = p.OpenAccessPDF.URL
	}
	for _, a := range p.Authors {
		if a.Name != "" {
			c.Authors = append(c.Authors, a.Name)
		}
	}
	return c
}

// SearchPapers runs a paper search and returns at most limit results.
func (c *Client) SearchPapers(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", searchFields)

	var resp searchResponse
	if err := c.get(ctx, "/paper/search", params, &resp); err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(resp.Data))
	for _, p := range resp.Data {
		candidates = append(candidates, p.candidate())
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	logger.Debug("semanticscholar: %q returned %d of %d papers", query, len(candidates), resp.Total)
	return candidates, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path + "?" + params.Encode()

	return retry.Do(ctx, c.config.Retry, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("x-api-key", c.config.APIKey)
		}

		resp, err := c.config.HTTPClient.Do(req)
		if err != nil {
			return retry.Retryable(fmt.Errorf("semanticscholar: %w", err))
		}
		defer resp.Body.Close()

		if err := retry.CheckResponse(resp); err != nil {
			var re *retry.Error
			if errors.As(err, &re) {
				c.limiter.Backoff(re.After)
			}
			return fmt.Errorf("semanticscholar: %w", err)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("semanticscholar: decode response: %w", err)
		}
		return nil
	})
}
