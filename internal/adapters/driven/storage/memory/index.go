package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
)

// Ensure EmbeddingIndex implements the interface.
var _ driven.EmbeddingIndex = (*EmbeddingIndex)(nil)

// EmbeddingIndex is an in-memory implementation of driven.EmbeddingIndex.
type EmbeddingIndex struct {
	mu      sync.RWMutex
	records []domain.EmbeddingRecord
	byID    map[string]int
	model   string
}

// NewEmbeddingIndex creates a new in-memory index.
func NewEmbeddingIndex() *EmbeddingIndex {
	return &EmbeddingIndex{byID: make(map[string]int)}
}

// Reset removes all records.
func (x *EmbeddingIndex) Reset(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.records = nil
	x.byID = make(map[string]int)
	x.model = ""
	return nil
}

// Replace swaps every record for records. A duplicate chunk ID leaves the
// index unchanged.
func (x *EmbeddingIndex) Replace(ctx context.Context, model string, records []domain.EmbeddingRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	next := make([]domain.EmbeddingRecord, 0, len(records))
	byID := make(map[string]int, len(records))
	for _, r := range records {
		if _, ok := byID[r.Chunk.ID]; ok {
			return fmt.Errorf("%w: duplicate chunk %s", domain.ErrInvalidArgument, r.Chunk.ID)
		}
		r.Vector = append([]float32(nil), r.Vector...)
		byID[r.Chunk.ID] = len(next)
		next = append(next, r)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.records, x.byID, x.model = next, byID, model
	return nil
}

// Model returns the embedding model recorded by Replace.
func (x *EmbeddingIndex) Model(_ context.Context) (string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.model, nil
}

// Add appends records. A duplicate chunk ID rejects the whole batch.
func (x *EmbeddingIndex) Add(ctx context.Context, records []domain.EmbeddingRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if _, ok := x.byID[r.Chunk.ID]; ok || seen[r.Chunk.ID] {
			return fmt.Errorf("%w: duplicate chunk %s", domain.ErrInvalidArgument, r.Chunk.ID)
		}
		seen[r.Chunk.ID] = true
	}
	for _, r := range records {
		r.Vector = append([]float32(nil), r.Vector...)
		x.byID[r.Chunk.ID] = len(x.records)
		x.records = append(x.records, r)
	}
	return nil
}

// Lookup returns the record for a chunk ID.
func (x *EmbeddingIndex) Lookup(_ context.Context, chunkID string) (*domain.EmbeddingRecord, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	i, ok := x.byID[chunkID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r := x.records[i]
	return &r, nil
}

// All returns every record in insertion order.
func (x *EmbeddingIndex) All(_ context.Context) ([]domain.EmbeddingRecord, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]domain.EmbeddingRecord, len(x.records))
	copy(out, x.records)
	return out, nil
}

// Len returns the number of records.
func (x *EmbeddingIndex) Len(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records), nil
}

// Close is a no-op.
func (x *EmbeddingIndex) Close() error {
	return nil
}
