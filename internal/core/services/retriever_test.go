package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/litrag/internal/core/domain"
)

func indexVectors(t *testing.T, vectors ...[]float32) *memory.EmbeddingIndex {
	t.Helper()
	index := memory.NewEmbeddingIndex()
	records := make([]domain.EmbeddingRecord, len(vectors))
	for i, v := range vectors {
		chunk := domain.Chunk{Text: string(rune('a' + i))}
		chunk.Identify(i)
		records[i] = domain.EmbeddingRecord{Chunk: chunk, Vector: v}
	}
	require.NoError(t, index.Add(context.Background(), records))
	return index
}

func texts(result domain.RetrievalResult) []string {
	out := make([]string, len(result))
	for i, hit := range result {
		out[i] = hit.Chunk.Text
	}
	return out
}

func TestRetriever_Retrieve_RanksByDotProduct(t *testing.T) {
	index := indexVectors(t,
		[]float32{1, 0},
		[]float32{0, 1},
		[]float32{0.6, 0.8},
	)
	r := NewRetriever(index, &mockRegistry{})

	result, err := r.Retrieve(context.Background(), []float32{0, 1}, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "c"}, texts(result))
	assert.InDelta(t, 1.0, result[0].Score, 1e-9)
	assert.InDelta(t, 0.8, result[1].Score, 1e-6)
}

func TestRetriever_Retrieve_TiesKeepInsertionOrder(t *testing.T) {
	index := indexVectors(t,
		[]float32{0, 1},
		[]float32{1, 0},
		[]float32{1, 0},
		[]float32{1, 0},
	)
	r := NewRetriever(index, &mockRegistry{})

	result, err := r.Retrieve(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "c", "d"}, texts(result))
}

func TestRetriever_Retrieve_Contracts(t *testing.T) {
	index := indexVectors(t, []float32{1, 0}, []float32{0, 1})
	r := NewRetriever(index, &mockRegistry{})
	ctx := context.Background()

	_, err := r.Retrieve(ctx, []float32{1, 0}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = r.Retrieve(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	result, err := r.Retrieve(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.GreaterOrEqual(t, result[0].Score, result[1].Score)
}

func TestRetriever_Retrieve_EmptyIndex(t *testing.T) {
	r := NewRetriever(memory.NewEmbeddingIndex(), &mockRegistry{})

	result, err := r.Retrieve(context.Background(), []float32{1, 0}, 3)

	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestRetriever_Search_NormalisesQuery(t *testing.T) {
	index := indexVectors(t, []float32{1, 0}, []float32{0, 1})
	embedder := &mockEmbedder{embedFn: func(_ int, _ []string) ([][]float32, error) {
		return [][]float32{{0, 5}}, nil
	}}
	r := NewRetriever(index, &mockRegistry{embedder: embedder})

	result, err := r.Search(context.Background(), "family support", 1)
	require.NoError(t, err)

	require.Len(t, result, 1)
	assert.Equal(t, "b", result[0].Chunk.Text)
	assert.InDelta(t, 1.0, result[0].Score, 1e-9)
}

func TestRetriever_Search_Contracts(t *testing.T) {
	r := NewRetriever(memory.NewEmbeddingIndex(), &mockRegistry{})
	ctx := context.Background()

	_, err := r.Search(ctx, "  ", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = r.Search(ctx, "relapse", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = r.Search(ctx, "relapse", 3)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestRetriever_Search_LoadsIndexFirst(t *testing.T) {
	store := memory.NewChunkStore()
	_, err := store.Append(context.Background(), []domain.Chunk{{Text: "Family support predicts retention."}})
	require.NoError(t, err)
	registry := hashRegistry(t)
	index := memory.NewEmbeddingIndex()
	r := NewRetriever(index, registry)
	r.SetLoader(NewIndexer(store, index, registry, IndexerConfig{}))

	result, err := r.Search(context.Background(), "family support", 3)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Family support predicts retention.", result[0].Chunk.Text)
}

func TestRetriever_Search_RejectsIndexFromOtherModel(t *testing.T) {
	chunk := domain.Chunk{Text: "a"}
	chunk.Identify(0)
	index := memory.NewEmbeddingIndex()
	require.NoError(t, index.Replace(context.Background(), "embed-a",
		[]domain.EmbeddingRecord{{Chunk: chunk, Vector: []float32{1, 0}}}))
	r := NewRetriever(index, &mockRegistry{embedder: &mockEmbedder{dims: 2, model: "embed-b"}})

	_, err := r.Search(context.Background(), "relapse", 1)

	assert.ErrorIs(t, err, domain.ErrIndexModelMismatch)

	result, err := r.Retrieve(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, result, 1)
}
