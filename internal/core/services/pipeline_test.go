package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/litrag/internal/adapters/driven/storage/jsonl"
	"github.com/custodia-labs/litrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/extractors"
	"github.com/custodia-labs/litrag/internal/normalisers/scholarly"
)

func TestPipeline_BuildIndexRetrieve(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := jsonl.NewChunkStore(filepath.Join(dir, "chunks.jsonl"))
	require.NoError(t, err)
	index, err := sqlite.NewIndex(dir)
	require.NoError(t, err)
	defer index.Close()

	models := ai.NewRegistry(domain.DefaultAppSettings())
	defer models.Close()

	builder := NewCorpusBuilder(store, extractors.DefaultRegistry(), scholarly.New(), newTestPipeline(t), 0)
	sources := []domain.DocumentSource{
		{Title: "Methadone Clinics", SearchTerm: "opioid", Text: paragraph("methadone dosing clinic retention")},
		{Title: "Family Therapy", SearchTerm: "family", Year: domain.IntPtr(2016), Text: paragraph("family support sessions reduce relapse")},
		{Title: "CBT Trial", SearchTerm: "cbt", Text: paragraph("cognitive behavioural therapy craving")},
	}
	chunks, report, err := builder.Build(ctx, sources)
	require.NoError(t, err)
	require.Equal(t, 3, report.ChunksProduced)

	indexer := NewIndexer(store, index, models, IndexerConfig{BatchSize: 2, EmbeddingModel: "hash-384"})
	indexReport, err := indexer.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexReport{Indexed: 3, Dimensions: 384}, indexReport)

	retriever := NewRetriever(index, models)
	result, err := retriever.Search(ctx, "does family support reduce relapse", 2)
	require.NoError(t, err)

	require.Len(t, result, 2)
	assert.Equal(t, "Family Therapy", result[0].Chunk.Metadata.Source)
	assert.Equal(t, chunks[1].ID, result[0].Chunk.ID)
	assert.Equal(t, 2016, *result[0].Chunk.Metadata.Year)
	assert.Greater(t, result[0].Score, result[1].Score)

	// A fresh store over the same file derives the same IDs.
	reopened, err := jsonl.NewChunkStore(filepath.Join(dir, "chunks.jsonl"))
	require.NoError(t, err)
	again, err := reopened.All(ctx)
	require.NoError(t, err)
	for i := range chunks {
		assert.Equal(t, chunks[i].ID, again[i].ID)
	}

	stats, err := indexer.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, stats.IsStale())
	assert.Equal(t, filepath.Join(dir, "chunks.jsonl"), stats.ChunkFile)
}
