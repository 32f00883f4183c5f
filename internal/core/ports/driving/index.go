package driving

import (
	"context"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

// IndexService maintains the embedding index over the chunk store.
type IndexService interface {
	// Rebuild re-embeds every stored chunk and replaces the index contents.
	Rebuild(ctx context.Context) (domain.IndexReport, error)

	// Index embeds the given chunks and appends them to the index.
	Index(ctx context.Context, chunks []domain.Chunk) (domain.IndexReport, error)

	// Lookup returns an indexed chunk by ID.
	Lookup(ctx context.Context, chunkID string) (*domain.Chunk, error)

	// All returns every record in index order.
	All(ctx context.Context) ([]domain.EmbeddingRecord, error)

	// Stats reports corpus and index sizes.
	Stats(ctx context.Context) (*CorpusStats, error)
}

// CorpusStats summarises the stored corpus.
type CorpusStats struct {
	// Chunks is the number of chunks in the chunk store.
	Chunks int `json:"chunks"`

	// Indexed is the number of records in the embedding index.
	Indexed int `json:"indexed"`

	// ChunkFile is the chunk store location.
	ChunkFile string `json:"chunk_file"`

	// EmbeddingModel names the configured embedding model.
	EmbeddingModel string `json:"embedding_model"`

	// IndexModel names the model that built the index, if recorded.
	IndexModel string `json:"index_model,omitempty"`
}

// IsStale reports whether the index lags behind the chunk store.
func (s *CorpusStats) IsStale() bool {
	return s.Indexed != s.Chunks || s.ModelMismatch()
}

// ModelMismatch reports whether the index was built by a model other than
// the configured one.
func (s *CorpusStats) ModelMismatch() bool {
	return s.IndexModel != "" && s.EmbeddingModel != "" && s.IndexModel != s.EmbeddingModel
}
