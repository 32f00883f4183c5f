package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{}
}

// Append adds chunks at the end and assigns their ordinals.
func (s *ChunkStore) Append(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.Identify(len(s.chunks))
		s.chunks = append(s.chunks, c)
		out[i] = c
	}
	return out, nil
}

// All returns a copy of every chunk in order.
func (s *ChunkStore) All(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

// Count returns the number of chunks.
func (s *ChunkStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Path returns "" since nothing is persisted.
func (s *ChunkStore) Path() string {
	return ""
}
