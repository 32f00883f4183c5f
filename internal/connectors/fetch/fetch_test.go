package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litrag/internal/retry"
)

func TestDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TestBot/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/pdf; qs=0.9")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	body, mimeType, err := Document(context.Background(), server.Client(), retry.Policy{}, server.URL,
		http.Header{"User-Agent": {"TestBot/1.0"}})
	require.NoError(t, err)

	assert.Equal(t, "%PDF-1.4", string(body))
	assert.Equal(t, "application/pdf", mimeType)
}

func TestDocument_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("plain words"))
	}))
	defer server.Close()

	policy := retry.Policy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2}
	body, mimeType, err := Document(context.Background(), server.Client(), policy, server.URL, nil)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "plain words", string(body))
	assert.Equal(t, "text/plain", mimeType)
}

func TestDocument_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, _, err := Document(context.Background(), server.Client(), retry.DefaultPolicy(), server.URL, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.False(t, retry.IsRetryable(err))
}

func TestMediaType(t *testing.T) {
	tests := []struct {
		header string
		body   string
		want   string
	}{
		{"text/html; charset=utf-8", "", "text/html"},
		{"", "%PDF-1.7 binary", "application/pdf"},
		{"application/octet-stream", "<html><body>x</body></html>", "text/html"},
		{"not a type", "hello", "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.header+"|"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, MediaType(tt.header, []byte(tt.body)))
		})
	}
}
