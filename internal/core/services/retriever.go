package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// IndexLoader fills an index before it is first queried.
type IndexLoader interface {
	EnsureLoaded(ctx context.Context) error
}

// Retriever ranks indexed chunks by cosine similarity.
type Retriever struct {
	index  driven.EmbeddingIndex
	models driven.ModelRegistry
	loader IndexLoader
}

// NewRetriever creates a retriever over an embedding index.
func NewRetriever(index driven.EmbeddingIndex, models driven.ModelRegistry) *Retriever {
	return &Retriever{index: index, models: models}
}

// SetLoader makes every query call loader first. Use it for indexes that
// start empty in each process.
func (r *Retriever) SetLoader(loader IndexLoader) {
	r.loader = loader
}

func (r *Retriever) load(ctx context.Context) error {
	if r.loader == nil {
		return nil
	}
	return r.loader.EnsureLoaded(ctx)
}

// Retrieve returns the k records with the highest dot product against vector.
// Equal scores keep index order.
func (r *Retriever) Retrieve(ctx context.Context, vector []float32, k int) (domain.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}

	if err := r.load(ctx); err != nil {
		return nil, err
	}
	records, err := r.index.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	if len(records) == 0 {
		return domain.RetrievalResult{}, nil
	}

	dims := records[0].Dimensions()
	if len(vector) != dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", domain.ErrInvalidArgument, len(vector), dims)
	}

	scored := make(domain.RetrievalResult, len(records))
	for i := range records {
		scored[i] = domain.ScoredChunk{
			Chunk: records[i].Chunk,
			Score: dot(vector, records[i].Vector),
		}
	}
	slices.SortStableFunc(scored, func(a, b domain.ScoredChunk) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return scored[:min(k, len(scored))], nil
}

// Search embeds the query and retrieves against its normalised vector.
// It fails with domain.ErrIndexModelMismatch when the index was built by a
// different embedding model.
func (r *Retriever) Search(ctx context.Context, query string, k int) (domain.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidArgument)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}

	embedder, err := r.models.Embedding(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	if err := checkIndexModel(ctx, r.index, embedder.ModelName()); err != nil {
		return nil, err
	}
	vector, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return r.Retrieve(ctx, normalise(vector), k)
}
