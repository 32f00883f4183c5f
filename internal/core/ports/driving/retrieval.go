package driving

import (
	"context"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

// RetrievalService returns the chunks most similar to a query.
type RetrievalService interface {
	// Retrieve ranks indexed chunks against a query vector.
	// k <= 0 or a vector of the wrong dimension fails with domain.ErrInvalidArgument.
	Retrieve(ctx context.Context, vector []float32, k int) (domain.RetrievalResult, error)

	// Search embeds the query text and retrieves against it.
	Search(ctx context.Context, query string, k int) (domain.RetrievalResult, error)
}
