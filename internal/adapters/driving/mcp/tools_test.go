package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ranked chunks", func(t *testing.T) {
		retrieval := &mockRetrievalService{
			result: domain.RetrievalResult{{Chunk: sampleChunk(), Score: 0.91}},
		}
		server := newTestServer(t, &Ports{Retrieval: retrieval, Index: &mockIndexService{}})

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "buprenorphine", TopK: 3})

		require.NoError(t, err)
		assert.Equal(t, "buprenorphine", retrieval.query)
		assert.Equal(t, 3, retrieval.k)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		got := output.Results[0]
		assert.Equal(t, 1, got.Rank)
		assert.Equal(t, "c-1", got.ChunkID)
		assert.Equal(t, 0.91, got.Score)
		assert.Equal(t, "Buprenorphine Outcomes", got.Source)
		assert.Equal(t, "https://example.org/bup", got.URL)
		assert.Equal(t, 2018, *got.Year)
		assert.Equal(t, "opioid use disorder MAT", got.SearchTerm)
	})

	t.Run("default top k", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server := newTestServer(t, &Ports{Retrieval: retrieval, Index: &mockIndexService{}})

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "q"})

		require.NoError(t, err)
		assert.Equal(t, defaultTopK, retrieval.k)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Results)
	})

	t.Run("blank query is invalid", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Index: &mockIndexService{}})

		_, _, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "   "})

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		retrieval := &mockRetrievalService{err: errors.New("index unavailable")}
		server := newTestServer(t, &Ports{Retrieval: retrieval, Index: &mockIndexService{}})

		_, _, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "q"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "index unavailable")
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with sources", func(t *testing.T) {
		answer := &mockAnswerService{answer: &domain.Answer{
			Question: "Does buprenorphine help?",
			Text:     "Yes, it reduced illicit use.",
			Model:    "llama3.2",
			Sources:  domain.RetrievalResult{{Chunk: sampleChunk(), Score: 0.8}},
		}}
		server := newTestServer(t, &Ports{
			Retrieval: &mockRetrievalService{}, Answer: answer, Index: &mockIndexService{},
		})

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "Does buprenorphine help?"})

		require.NoError(t, err)
		assert.Equal(t, defaultTopK, answer.k)
		assert.Equal(t, "Yes, it reduced illicit use.", output.Answer)
		assert.Equal(t, "llama3.2", output.Model)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "c-1", output.Sources[0].ChunkID)
	})

	t.Run("without answer service", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Index: &mockIndexService{}})

		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		assert.Error(t, err)
	})

	t.Run("blank question is invalid", func(t *testing.T) {
		server := newTestServer(t, &Ports{
			Retrieval: &mockRetrievalService{}, Answer: &mockAnswerService{}, Index: &mockIndexService{},
		})

		_, _, err := server.handleAsk(ctx, nil, AskInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("propagates LLM failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{
			Retrieval: &mockRetrievalService{},
			Answer:    &mockAnswerService{err: domain.ErrLLMUnavailable},
			Index:     &mockIndexService{},
		})

		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "q", TopK: 2})

		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}
