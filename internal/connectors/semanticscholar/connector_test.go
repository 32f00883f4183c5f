package semanticscholar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/retry"
)

const searchBody = `{
  "total": 2,
  "offset": 0,
  "data": [
    {
      "paperId": "abc123",
      "title": " Contingency Management for Stimulant Use ",
      "abstract": "Vouchers reduce use.",
      "year": 2019,
      "url": "https://www.semanticscholar.org/paper/abc123",
      "authors": [{"authorId": "1", "name": "A. Author"}, {"authorId": "2", "name": "B. Author"}],
      "openAccessPdf": {"url": "https://example.org/cm.pdf", "status": "GREEN"}
    },
    {
      "paperId": "def456",
      "title": "Relapse Prevention",
      "abstract": null,
      "year": null,
      "url": "https://www.semanticscholar.org/paper/def456",
      "authors": [],
      "openAccessPdf": null
    }
  ]
}`

func testPolicy() retry.Policy {
	return retry.Policy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(&Config{
		BaseURL:   server.URL,
		UserAgent: "TestBot/1.0",
		Retry:     testPolicy(),
	})
}

func TestConnector_Type(t *testing.T) {
	c := New(&Config{})
	assert.Equal(t, domain.ConnectorSemanticScholar, c.Type())
	assert.Equal(t, DefaultBaseURL, c.config.BaseURL)
	assert.Equal(t, "AddictionResearchBot/1.0", c.config.UserAgent)
}

func TestConnector_Capabilities(t *testing.T) {
	caps := New(&Config{}).Capabilities()

	assert.False(t, caps.SupportsWatch)
	assert.True(t, caps.SupportsBinary)
	assert.True(t, caps.SupportsRateLimiting)
	assert.True(t, caps.SupportsAbstracts)
}

func TestConnector_Search(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/paper/search", r.URL.Path)
		assert.Equal(t, "opioid use disorder", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, searchFields, r.URL.Query().Get("fields"))
		assert.Equal(t, "TestBot/1.0", r.Header.Get("User-Agent"))
		assert.Empty(t, r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(searchBody))
	})

	got, err := c.Search(context.Background(), "opioid use disorder", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "abc123", got[0].ID)
	assert.Equal(t, "Contingency Management for Stimulant Use", got[0].Title)
	assert.Equal(t, "https://example.org/cm.pdf", got[0].PDFURL)
	require.NotNil(t, got[0].Year)
	assert.Equal(t, 2019, *got[0].Year)
	assert.Equal(t, []string{"A. Author", "B. Author"}, got[0].Authors)
	assert.True(t, got[0].HasPDF())

	assert.Nil(t, got[1].Year)
	assert.Empty(t, got[1].Abstract)
	assert.False(t, got[1].HasPDF())
}

func TestConnector_Search_SendsAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(`{"total":0,"data":[]}`))
	}))
	defer server.Close()

	c := New(&Config{BaseURL: server.URL, APIKey: "secret"})
	got, err := c.Search(context.Background(), "naloxone", 3)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConnector_Search_ClampsLimit(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"total":0,"data":[]}`))
	})

	_, err := c.Search(context.Background(), "alcohol", 500)
	require.NoError(t, err)
}

func TestConnector_Search_InvalidArguments(t *testing.T) {
	c := New(&Config{})

	_, err := c.Search(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = c.Search(context.Background(), "alcohol", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestConnector_Search_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(searchBody))
	})

	got, err := c.Search(context.Background(), "tobacco", 2)
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestConnector_Search_RateLimitExhausted(t *testing.T) {
	var calls atomic.Int32
	c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Search(context.Background(), "tobacco", 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, int32(3), calls.Load())
}

func TestConnector_Search_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad query", http.StatusBadRequest)
	})

	_, err := c.Search(context.Background(), "tobacco", 2)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad query")
	assert.Equal(t, int32(1), calls.Load())
}

func TestConnector_Search_MalformedJSON(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": [`))
	})

	_, err := c.Search(context.Background(), "tobacco", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestConnector_Fetch(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/cm.pdf", r.URL.Path)
		assert.Equal(t, "TestBot/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.5"))
	})

	body, mimeType, err := c.Fetch(context.Background(), c.config.BaseURL+"/files/cm.pdf")
	require.NoError(t, err)

	assert.Equal(t, "%PDF-1.5", string(body))
	assert.Equal(t, "application/pdf", mimeType)
}

func TestConnector_Validate(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"total":0,"data":[]}`))
	})
	assert.NoError(t, c.Validate(context.Background()))

	failing := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	assert.ErrorIs(t, failing.Validate(context.Background()), domain.ErrAcquisitionFailure)
}

func TestConnector_Close(t *testing.T) {
	c := New(&Config{})

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.Search(context.Background(), "alcohol", 1)
	assert.ErrorIs(t, err, domain.ErrConnectorClosed)

	_, _, err = c.Fetch(context.Background(), "https://example.org/x.pdf")
	assert.ErrorIs(t, err, domain.ErrConnectorClosed)

	assert.ErrorIs(t, c.Validate(context.Background()), domain.ErrConnectorClosed)
}

func TestConfigFromSettings(t *testing.T) {
	s := domain.DefaultAppSettings().Acquisition
	s.APIKey = "k"

	cfg := ConfigFromSettings(s, retry.DefaultPolicy())

	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, s.UserAgent, cfg.UserAgent)
	assert.InDelta(t, s.RequestsPerSecond, cfg.RequestsPerSecond, 0)
	assert.Equal(t, s.SourceTimeout, cfg.Timeout)
}
