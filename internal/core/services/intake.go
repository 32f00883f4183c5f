package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

// Ensure IntakeService implements the interfaces.
var (
	_ driving.IntakeService   = (*IntakeService)(nil)
	_ driven.PromptStoreAware = (*IntakeService)(nil)
)

// IntakeExcerptChars is how much of an intake document the model sees.
const IntakeExcerptChars = 1500

// IntakeService turns an intake document into a structured assessment.
type IntakeService struct {
	extractors driven.ExtractorRegistry
	models     driven.ModelRegistry
	prompts    driven.PromptStore
	timeout    time.Duration
}

// NewIntakeService creates an intake analyser.
func NewIntakeService(extractors driven.ExtractorRegistry, models driven.ModelRegistry, extractionTimeout time.Duration) *IntakeService {
	if extractionTimeout <= 0 {
		extractionTimeout = DefaultExtractionTimeout
	}
	return &IntakeService{extractors: extractors, models: models, timeout: extractionTimeout}
}

// SetPromptStore sets the store that supplies the intake template.
func (s *IntakeService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Analyze extracts the document's text and asks the LLM for the five sections.
func (s *IntakeService) Analyze(ctx context.Context, src *domain.DocumentSource) (*domain.IntakeAssessment, error) {
	llm, err := s.models.LLM(ctx)
	if err != nil {
		return nil, err
	}

	text := src.Text
	if src.NeedsExtraction() {
		extractCtx, cancel := context.WithTimeout(ctx, s.timeout)
		text, err = s.extractors.Extract(extractCtx, src.MIMEType, src.Content)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtractionFailure, src.Label(), err)
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: %s has no text", domain.ErrInvalidArgument, src.Label())
	}
	if runes := []rune(text); len(runes) > IntakeExcerptChars {
		text = string(runes[:IntakeExcerptChars])
	}

	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptIntakeAnalysis, fallbackIntake, 1), text)
	out, err := llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return nil, fmt.Errorf("generate assessment: %w", err)
	}

	assessment := ParseSections(out)
	return &assessment, nil
}
