package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
	"github.com/custodia-labs/litrag/internal/logger"
)

// Ensure AnswerService implements the interfaces.
var (
	_ driving.AnswerService   = (*AnswerService)(nil)
	_ driven.PromptStoreAware = (*AnswerService)(nil)
)

// AnswerService answers questions from retrieved excerpts.
type AnswerService struct {
	retriever driving.RetrievalService
	models    driven.ModelRegistry
	prompts   driven.PromptStore
}

// NewAnswerService creates an answer service.
func NewAnswerService(retriever driving.RetrievalService, models driven.ModelRegistry) *AnswerService {
	return &AnswerService{retriever: retriever, models: models}
}

// SetPromptStore sets the store that supplies the answer templates.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Ask retrieves k excerpts and has the LLM answer from them.
func (s *AnswerService) Ask(ctx context.Context, question string, k int) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidArgument)
	}

	llm, err := s.models.LLM(ctx)
	if err != nil {
		return nil, err
	}

	sources, err := s.retriever.Search(ctx, question, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: the index has no chunks to answer from", domain.ErrEmptyCorpus)
	}

	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptAnswer, fallbackAnswer, 2), FormatExcerpts(sources), question)
	system := loadPrompt(s.prompts, driven.PromptAnswerSystem, fallbackAnswerSystem, 0)

	logger.Debug("Asking %s with %d excerpts", llm.ModelName(), len(sources))
	text, err := llm.Generate(ctx, prompt, driven.GenerateOptions{System: system})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Question: question,
		Text:     text,
		Sources:  sources,
		Model:    llm.ModelName(),
	}, nil
}

// FormatExcerpts renders results as numbered context blocks, starting at [1].
func FormatExcerpts(results domain.RetrievalResult) string {
	var b strings.Builder
	for i, hit := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("[" + strconv.Itoa(i+1) + "] " + citation(hit.Chunk.Metadata) + "\n")
		b.WriteString(hit.Chunk.Text)
	}
	return b.String()
}

// citation renders "Title (Year)", omitting what is unknown.
func citation(m domain.ChunkMetadata) string {
	title := m.Source
	if title == "" {
		title = "Untitled"
	}
	if m.Year != nil {
		return fmt.Sprintf("%s (%d)", title, *m.Year)
	}
	return title
}
