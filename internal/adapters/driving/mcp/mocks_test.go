package mcp

import (
	"context"
	"testing"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	result domain.RetrievalResult
	query  string
	k      int
	err    error
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ []float32, k int) (domain.RetrievalResult, error) {
	m.k = k
	return m.result, m.err
}

func (m *mockRetrievalService) Search(_ context.Context, query string, k int) (domain.RetrievalResult, error) {
	m.query, m.k = query, k
	return m.result, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	k      int
	err    error
}

func (m *mockAnswerService) Ask(_ context.Context, _ string, k int) (*domain.Answer, error) {
	m.k = k
	return m.answer, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	chunks map[string]domain.Chunk
	stats  *driving.CorpusStats
	err    error
}

func (m *mockIndexService) Rebuild(_ context.Context) (domain.IndexReport, error) {
	return domain.IndexReport{}, m.err
}

func (m *mockIndexService) Index(_ context.Context, _ []domain.Chunk) (domain.IndexReport, error) {
	return domain.IndexReport{}, m.err
}

func (m *mockIndexService) Lookup(_ context.Context, id string) (*domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *mockIndexService) All(_ context.Context) ([]domain.EmbeddingRecord, error) {
	return nil, m.err
}

func (m *mockIndexService) Stats(_ context.Context) (*driving.CorpusStats, error) {
	return m.stats, m.err
}

func sampleChunk() domain.Chunk {
	return domain.Chunk{
		ID:      "c-1",
		Ordinal: 3,
		Text:    "Buprenorphine reduced illicit opioid use.",
		Metadata: domain.ChunkMetadata{
			SearchTerm: "opioid use disorder MAT",
			Source:     "Buprenorphine Outcomes",
			URL:        "https://example.org/bup",
			Year:       domain.IntPtr(2018),
		},
	}
}

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	s, err := NewServer(ports)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}
