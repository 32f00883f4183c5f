package driving

import (
	"context"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

// AnswerService answers questions grounded in retrieved literature.
type AnswerService interface {
	// Ask retrieves k chunks and asks the LLM to answer from them.
	Ask(ctx context.Context, question string, k int) (*domain.Answer, error)
}

// IntakeService analyses rehab intake documents.
type IntakeService interface {
	// Analyze extracts a structured assessment from a document.
	Analyze(ctx context.Context, src *domain.DocumentSource) (*domain.IntakeAssessment, error)
}
