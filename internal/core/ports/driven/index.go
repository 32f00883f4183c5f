package driven

import (
	"context"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

// EmbeddingIndex stores unit-normalised chunk vectors.
// Records keep their insertion order, which the retriever uses to break ties.
type EmbeddingIndex interface {
	// Reset removes all records.
	Reset(ctx context.Context) error

	// Add appends records after any existing ones.
	Add(ctx context.Context, records []domain.EmbeddingRecord) error

	// Replace swaps every record for records atomically and remembers the
	// embedding model that produced them. On error the previous contents stay.
	Replace(ctx context.Context, model string, records []domain.EmbeddingRecord) error

	// Model returns the embedding model recorded by the last Replace,
	// or "" when it is unknown.
	Model(ctx context.Context) (string, error)

	// Lookup returns the record for a chunk ID.
	// Returns domain.ErrNotFound if the chunk is not indexed.
	Lookup(ctx context.Context, chunkID string) (*domain.EmbeddingRecord, error)

	// All returns every record in insertion order.
	All(ctx context.Context) ([]domain.EmbeddingRecord, error)

	// Len returns the number of records.
	Len(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
