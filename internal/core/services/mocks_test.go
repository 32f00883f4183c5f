package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
)

// mockEmbedder embeds through embedFn and counts batch calls.
type mockEmbedder struct {
	mu      sync.Mutex
	dims    int
	calls   int
	model   string
	embedFn func(call int, texts []string) ([][]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	call := m.calls
	m.calls++
	m.mu.Unlock()

	if m.embedFn != nil {
		return m.embedFn(call, texts)
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, m.dims)
		vec[len(text)%m.dims] = float32(len(text))
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) ModelName() string {
	if m.model != "" {
		return m.model
	}
	return "mock-embed"
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockLLM records prompts and returns a canned response.
type mockLLM struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	opts     []driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	return m.response, m.err
}

func (m *mockLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return m.response, m.err
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockRegistry hands out fixed services.
type mockRegistry struct {
	embedder driven.EmbeddingService
	llm      driven.LLMService
}

func (m *mockRegistry) Embedding(_ context.Context) (driven.EmbeddingService, error) {
	if m.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	return m.embedder, nil
}

func (m *mockRegistry) LLM(_ context.Context) (driven.LLMService, error) {
	if m.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	return m.llm, nil
}

func (m *mockRegistry) Close() error { return nil }

// mockConnector serves canned search results and documents.
type mockConnector struct {
	mu        sync.Mutex
	results   map[string][]domain.Candidate
	searchErr map[string]error
	bodies    map[string][]byte
	fetched   []string
	searched  []string
	watch     chan domain.Candidate
	onSearch  func(term string)
}

func (m *mockConnector) Type() domain.ConnectorType { return domain.ConnectorFilesystem }

func (m *mockConnector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{SupportsWatch: m.watch != nil, SupportsBinary: true}
}

func (m *mockConnector) Validate(_ context.Context) error { return nil }

func (m *mockConnector) Search(_ context.Context, query string, limit int) ([]domain.Candidate, error) {
	m.mu.Lock()
	m.searched = append(m.searched, query)
	m.mu.Unlock()
	if m.onSearch != nil {
		m.onSearch(query)
	}
	if err := m.searchErr[query]; err != nil {
		return nil, err
	}
	results := m.results[query]
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *mockConnector) Fetch(_ context.Context, url string) ([]byte, string, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, url)
	m.mu.Unlock()
	body, ok := m.bodies[url]
	if !ok {
		return nil, "", errors.New("404 not found")
	}
	return body, "text/plain", nil
}

func (m *mockConnector) Watch(_ context.Context) (<-chan domain.Candidate, error) {
	return m.watch, nil
}

func (m *mockConnector) Close() error { return nil }

// failingChunkStore rejects every append.
type failingChunkStore struct {
	driven.ChunkStore
}

func (failingChunkStore) Append(_ context.Context, _ []domain.Chunk) ([]domain.Chunk, error) {
	return nil, errors.New("disk full")
}

// mockPromptStore serves templates from a map.
type mockPromptStore map[string]string

func (m mockPromptStore) Load(name string) (string, error) {
	tmpl, ok := m[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return tmpl, nil
}

func (m mockPromptStore) Reload() {}
