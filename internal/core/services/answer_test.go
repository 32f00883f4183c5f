package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
)

// stubRetriever returns a fixed result for any query.
type stubRetriever struct {
	result domain.RetrievalResult
	err    error
	k      int
}

func (s *stubRetriever) Retrieve(_ context.Context, _ []float32, k int) (domain.RetrievalResult, error) {
	s.k = k
	return s.result, s.err
}

func (s *stubRetriever) Search(_ context.Context, _ string, k int) (domain.RetrievalResult, error) {
	s.k = k
	return s.result, s.err
}

func sampleResult() domain.RetrievalResult {
	return domain.RetrievalResult{
		{Chunk: domain.Chunk{Text: "Family involvement lowers relapse.", Metadata: domain.ChunkMetadata{Source: "Family Study", Year: domain.IntPtr(2018)}}, Score: 0.9},
		{Chunk: domain.Chunk{Text: "Aftercare matters."}, Score: 0.5},
	}
}

func TestAnswerService_Ask(t *testing.T) {
	llm := &mockLLM{response: "Family involvement helps [1]."}
	retriever := &stubRetriever{result: sampleResult()}
	svc := NewAnswerService(retriever, &mockRegistry{llm: llm})
	svc.SetPromptStore(mockPromptStore{
		driven.PromptAnswer:       "CONTEXT\n%s\nQ: %s",
		driven.PromptAnswerSystem: "be a therapist",
	})

	answer, err := svc.Ask(context.Background(), "  Does family help?  ", 4)
	require.NoError(t, err)

	assert.Equal(t, 4, retriever.k)
	assert.Equal(t, "Does family help?", answer.Question)
	assert.Equal(t, "Family involvement helps [1].", answer.Text)
	assert.Equal(t, "mock-llm", answer.Model)
	assert.Len(t, answer.Sources, 2)

	require.Len(t, llm.prompts, 1)
	assert.Equal(t,
		"CONTEXT\n[1] Family Study (2018)\nFamily involvement lowers relapse.\n\n[2] Untitled\nAftercare matters.\nQ: Does family help?",
		llm.prompts[0])
	assert.Equal(t, "be a therapist", llm.opts[0].System)
}

func TestAnswerService_Ask_MalformedTemplateFallsBack(t *testing.T) {
	llm := &mockLLM{response: "ok"}
	svc := NewAnswerService(&stubRetriever{result: sampleResult()}, &mockRegistry{llm: llm})
	svc.SetPromptStore(mockPromptStore{driven.PromptAnswer: "no placeholders"})

	_, err := svc.Ask(context.Background(), "q", 2)
	require.NoError(t, err)

	assert.Contains(t, llm.prompts[0], "Question: q")
	assert.Equal(t, fallbackAnswerSystem, llm.opts[0].System)
}

func TestAnswerService_Ask_Errors(t *testing.T) {
	tests := []struct {
		name      string
		question  string
		registry  *mockRegistry
		retriever *stubRetriever
		wantErr   error
	}{
		{name: "empty question", question: " ", registry: &mockRegistry{llm: &mockLLM{}}, retriever: &stubRetriever{}, wantErr: domain.ErrInvalidArgument},
		{name: "no llm", question: "q", registry: &mockRegistry{}, retriever: &stubRetriever{}, wantErr: domain.ErrLLMUnavailable},
		{name: "empty index", question: "q", registry: &mockRegistry{llm: &mockLLM{}}, retriever: &stubRetriever{}, wantErr: domain.ErrEmptyCorpus},
		{
			name:      "retrieval error",
			question:  "q",
			registry:  &mockRegistry{llm: &mockLLM{}},
			retriever: &stubRetriever{err: domain.ErrEmbeddingUnavailable},
			wantErr:   domain.ErrEmbeddingUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAnswerService(tt.retriever, tt.registry).Ask(context.Background(), tt.question, 3)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAnswerService_Ask_GenerateError(t *testing.T) {
	llm := &mockLLM{err: errors.New("rate limited")}
	svc := NewAnswerService(&stubRetriever{result: sampleResult()}, &mockRegistry{llm: llm})

	_, err := svc.Ask(context.Background(), "q", 1)

	assert.ErrorContains(t, err, "generate answer: rate limited")
}
