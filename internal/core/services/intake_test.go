package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/extractors"
)

const sampleAssessment = `**1. Occupation:** Construction foreman.
**2. Experience in Rehab:** Two prior outpatient programmes.
**3. Psychological Insights:** Anxious, motivated.
**4. Family Support:** Sister attends sessions.
**5. Relapse Probability:** Moderate.`

func TestIntakeService_Analyze(t *testing.T) {
	llm := &mockLLM{response: sampleAssessment}
	svc := NewIntakeService(extractors.DefaultRegistry(), &mockRegistry{llm: llm}, 0)
	svc.SetPromptStore(mockPromptStore{driven.PromptIntakeAnalysis: "FORM:\n%s"})

	long := strings.Repeat("é", IntakeExcerptChars+200)
	src := &domain.DocumentSource{Title: "intake.txt", Content: []byte(long), MIMEType: "text/plain"}

	got, err := svc.Analyze(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, "Construction foreman.", got.Occupation)
	assert.Equal(t, "Two prior outpatient programmes.", got.RehabExperience)
	assert.Equal(t, "Moderate.", got.RelapseProbability)
	assert.Equal(t, sampleAssessment, got.Raw)

	require.Len(t, llm.prompts, 1)
	assert.Equal(t, "FORM:\n"+strings.Repeat("é", IntakeExcerptChars), llm.prompts[0])
}

func TestIntakeService_Analyze_Errors(t *testing.T) {
	ctx := context.Background()

	noLLM := NewIntakeService(extractors.DefaultRegistry(), &mockRegistry{}, 0)
	_, err := noLLM.Analyze(ctx, &domain.DocumentSource{Text: "x"})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	svc := NewIntakeService(extractors.DefaultRegistry(), &mockRegistry{llm: &mockLLM{}}, 0)

	_, err = svc.Analyze(ctx, &domain.DocumentSource{Content: []byte{1}, MIMEType: "image/png"})
	assert.ErrorIs(t, err, domain.ErrExtractionFailure)

	_, err = svc.Analyze(ctx, &domain.DocumentSource{Text: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
