package pubmed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/logger"
	"github.com/custodia-labs/litrag/internal/retry"
)

// Client wraps esearch and efetch with throttling and retries.
type Client struct {
	config  *Config
	limiter *retry.RateLimiter
}

// NewClient creates an E-utilities client.
func NewClient(cfg *Config) *Client {
	return &Client{
		config:  cfg,
		limiter: retry.NewRateLimiter(cfg.RequestsPerSecond, 1),
	}
}

type searchResult struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// Term restricts query to the configured publication years.
func (c *Client) Term(query string) string {
	return fmt.Sprintf("%s AND (%d:%d[dp])", query, c.config.StartYear, c.config.EndYear)
}

// SearchIDs returns up to limit PMIDs for query.
func (c *Client) SearchIDs(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", c.Term(query))
	params.Set("retmax", strconv.Itoa(limit))
	params.Set("retmode", "json")

	body, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var res searchResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("pubmed: decode search: %w", err)
	}
	logger.Debug("pubmed: %q matched %s articles", query, res.Result.Count)
	return res.Result.IDList, nil
}

// FetchArticles returns candidates for the given PMIDs.
func (c *Client) FetchArticles(ctx context.Context, ids []string) ([]domain.Candidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("rettype", "abstract")
	params.Set("retmode", "xml")

	body, err := c.get(ctx, "efetch.fcgi", params)
	if err != nil {
		return nil, err
	}
	return ParseArticles(body)
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	params.Set("tool", ToolName)
	if c.config.APIKey != "" {
		params.Set("api_key", c.config.APIKey)
	}
	target := strings.TrimRight(c.config.BaseURL, "/") + "/" + endpoint + "?" + params.Encode()

	var body []byte
	err := retry.Do(ctx, c.config.Retry, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)

		resp, err := c.config.HTTPClient.Do(req)
		if err != nil {
			return retry.Retryable(fmt.Errorf("pubmed: %w", err))
		}
		defer resp.Body.Close()

		if err := retry.CheckResponse(resp); err != nil {
			var re *retry.Error
			if errors.As(err, &re) {
				c.limiter.Backoff(re.After)
			}
			return fmt.Errorf("pubmed: %s: %w", endpoint, err)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.Retryable(fmt.Errorf("pubmed: read %s: %w", endpoint, err))
		}
		return nil
	})
	return body, err
}
