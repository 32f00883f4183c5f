package driven

import (
	"context"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

// ChunkStore is the append-only chunk persistence.
// Each chunk is one line; its line number is its Ordinal.
type ChunkStore interface {
	// Append writes chunks at the end of the store, in order.
	// Returns the chunks with Ordinal and ID assigned.
	Append(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error)

	// All reads every chunk in store order, with Ordinal and ID assigned.
	// A malformed record fails with domain.ErrInvalidArgument.
	All(ctx context.Context) ([]domain.Chunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Path returns where the store lives, or "" for in-memory stores.
	Path() string
}
