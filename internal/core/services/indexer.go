package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
	"github.com/custodia-labs/litrag/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexService = (*Indexer)(nil)

// Indexer defaults.
const (
	DefaultBatchSize    = 32
	DefaultBatchTimeout = 60 * time.Second
)

// IndexerConfig tunes embedding batches.
type IndexerConfig struct {
	// BatchSize is the number of chunks per EmbedBatch call.
	BatchSize int
	// BatchTimeout bounds each EmbedBatch call.
	BatchTimeout time.Duration
	// EmbeddingModel is reported by Stats.
	EmbeddingModel string
}

// Indexer embeds stored chunks and maintains the embedding index.
type Indexer struct {
	store  driven.ChunkStore
	index  driven.EmbeddingIndex
	models driven.ModelRegistry
	cfg    IndexerConfig

	loadMu sync.Mutex
	loaded bool
}

// NewIndexer creates an indexer. Zero config values use the defaults.
func NewIndexer(store driven.ChunkStore, index driven.EmbeddingIndex, models driven.ModelRegistry, cfg IndexerConfig) *Indexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}
	return &Indexer{store: store, index: index, models: models, cfg: cfg}
}

// Rebuild re-embeds every stored chunk and replaces the index contents in
// one step. A failed or cancelled rebuild leaves the previous index in place.
func (ix *Indexer) Rebuild(ctx context.Context) (domain.IndexReport, error) {
	chunks, err := ix.store.All(ctx)
	if err != nil {
		return domain.IndexReport{}, fmt.Errorf("read chunks: %w", err)
	}

	records, model, report, err := ix.embed(ctx, chunks, 0)
	if err != nil {
		return report, err
	}

	if err := ix.index.Replace(ctx, model, records); err != nil {
		return report, fmt.Errorf("%w: replace index: %w", domain.ErrPersistenceFailure, err)
	}

	logger.Info("Indexed %d chunks (%d skipped, %d dims)", report.Indexed, report.Skipped, report.Dimensions)
	return report, nil
}

// Index embeds the given chunks and appends them after the existing records.
// Their vectors must match the dimension already in the index, and the
// configured model must be the one that built it.
func (ix *Indexer) Index(ctx context.Context, chunks []domain.Chunk) (domain.IndexReport, error) {
	existing, err := ix.index.All(ctx)
	if err != nil {
		return domain.IndexReport{}, fmt.Errorf("read index: %w", err)
	}
	dims := 0
	if len(existing) > 0 {
		dims = existing[0].Dimensions()
	}

	records, model, report, err := ix.embed(ctx, chunks, dims)
	if err != nil {
		return report, err
	}
	if len(records) == 0 {
		return report, nil
	}

	if len(existing) == 0 {
		if err := ix.index.Replace(ctx, model, records); err != nil {
			return report, fmt.Errorf("%w: add records: %w", domain.ErrPersistenceFailure, err)
		}
		return report, nil
	}

	if err := checkIndexModel(ctx, ix.index, model); err != nil {
		return domain.IndexReport{}, err
	}
	if err := ix.index.Add(ctx, records); err != nil {
		return report, fmt.Errorf("%w: add records: %w", domain.ErrPersistenceFailure, err)
	}
	return report, nil
}

// EnsureLoaded rebuilds an empty index from a non-empty chunk store.
// After one success it is a no-op for the life of the Indexer.
func (ix *Indexer) EnsureLoaded(ctx context.Context) error {
	ix.loadMu.Lock()
	defer ix.loadMu.Unlock()
	if ix.loaded {
		return nil
	}

	indexed, err := ix.index.Len(ctx)
	if err != nil {
		return fmt.Errorf("count index: %w", err)
	}
	if indexed == 0 {
		chunks, err := ix.store.Count(ctx)
		if err != nil {
			return fmt.Errorf("count chunks: %w", err)
		}
		if chunks > 0 {
			logger.Info("Loading %d chunks into the in-memory index", chunks)
			if _, err := ix.Rebuild(ctx); err != nil {
				return fmt.Errorf("load index: %w", err)
			}
		}
	}

	ix.loaded = true
	return nil
}

// Lookup returns an indexed chunk by ID.
func (ix *Indexer) Lookup(ctx context.Context, chunkID string) (*domain.Chunk, error) {
	record, err := ix.index.Lookup(ctx, chunkID)
	if err != nil {
		return nil, err
	}
	return &record.Chunk, nil
}

// All returns every record in index order.
func (ix *Indexer) All(ctx context.Context) ([]domain.EmbeddingRecord, error) {
	return ix.index.All(ctx)
}

// Stats reports corpus and index sizes.
func (ix *Indexer) Stats(ctx context.Context) (*driving.CorpusStats, error) {
	chunks, err := ix.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	indexed, err := ix.index.Len(ctx)
	if err != nil {
		return nil, fmt.Errorf("count index: %w", err)
	}
	indexModel, err := ix.index.Model(ctx)
	if err != nil {
		return nil, fmt.Errorf("read index model: %w", err)
	}
	return &driving.CorpusStats{
		Chunks:         chunks,
		Indexed:        indexed,
		ChunkFile:      ix.store.Path(),
		EmbeddingModel: ix.cfg.EmbeddingModel,
		IndexModel:     indexModel,
	}, nil
}

// embed converts chunks to normalised records in chunk order.
// dims fixes the expected vector size; zero adopts the first batch's size.
// A failed batch is skipped. A batch of the wrong size fails the call.
// The embedding model name is returned alongside the records.
func (ix *Indexer) embed(ctx context.Context, chunks []domain.Chunk, dims int) ([]domain.EmbeddingRecord, string, domain.IndexReport, error) {
	report := domain.IndexReport{Dimensions: dims}
	if len(chunks) == 0 {
		return nil, "", report, nil
	}

	embedder, err := ix.models.Embedding(ctx)
	if err != nil {
		return nil, "", report, err
	}

	records := make([]domain.EmbeddingRecord, 0, len(chunks))
	for start := 0; start < len(chunks); start += ix.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, "", report, err
		}

		batch := chunks[start:min(start+ix.cfg.BatchSize, len(chunks))]
		vectors, err := ix.embedBatch(ctx, embedder, batch)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", report, ctx.Err()
			}
			logger.Warn("Skipping chunks %d-%d: %v", start, start+len(batch)-1, err)
			report.Skipped += len(batch)
			continue
		}

		for i, vec := range vectors {
			if report.Dimensions == 0 {
				report.Dimensions = len(vec)
			}
			if len(vec) == 0 || len(vec) != report.Dimensions {
				return nil, "", report, fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
					domain.ErrInvalidArgument, batch[i].Ordinal, len(vec), report.Dimensions)
			}
			records = append(records, domain.EmbeddingRecord{
				Chunk:  batch[i],
				Vector: normalise(vec),
			})
		}
		report.Indexed += len(batch)
		logger.Debug("Embedded %d/%d chunks", start+len(batch), len(chunks))
	}

	return records, embedder.ModelName(), report, nil
}

func (ix *Indexer) embedBatch(ctx context.Context, embedder driven.EmbeddingService, batch []domain.Chunk) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, ix.cfg.BatchTimeout)
	defer cancel()

	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].Text
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(texts))
	}
	return vectors, nil
}

// checkIndexModel fails when the index records a model other than model.
// An index without a recorded model is accepted.
func checkIndexModel(ctx context.Context, index driven.EmbeddingIndex, model string) error {
	built, err := index.Model(ctx)
	if err != nil {
		return fmt.Errorf("read index model: %w", err)
	}
	if built != "" && model != "" && built != model {
		return fmt.Errorf("%w: index uses %q, configured model is %q", domain.ErrIndexModelMismatch, built, model)
	}
	return nil
}
