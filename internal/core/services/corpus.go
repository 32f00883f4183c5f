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

// Ensure CorpusBuilder implements the interface.
var _ driving.CorpusBuilder = (*CorpusBuilder)(nil)

// DefaultExtractionTimeout bounds text extraction for a single source.
const DefaultExtractionTimeout = 30 * time.Second

// CorpusBuilder runs extraction, normalisation and chunking for each source
// and appends the resulting chunks to the chunk store.
type CorpusBuilder struct {
	store      driven.ChunkStore
	extractors driven.ExtractorRegistry
	normaliser driven.Normaliser
	pipeline   driven.PostProcessorPipeline
	timeout    time.Duration

	// mu serialises appends so concurrent builds never interleave sources.
	mu sync.Mutex
}

// NewCorpusBuilder creates a corpus builder.
// A zero extraction timeout uses DefaultExtractionTimeout.
func NewCorpusBuilder(
	store driven.ChunkStore,
	extractors driven.ExtractorRegistry,
	normaliser driven.Normaliser,
	pipeline driven.PostProcessorPipeline,
	extractionTimeout time.Duration,
) *CorpusBuilder {
	if extractionTimeout <= 0 {
		extractionTimeout = DefaultExtractionTimeout
	}
	return &CorpusBuilder{
		store:      store,
		extractors: extractors,
		normaliser: normaliser,
		pipeline:   pipeline,
		timeout:    extractionTimeout,
	}
}

// Build processes sources in order and persists their chunks in one append.
// If ctx is cancelled between sources, the chunks built so far are still
// persisted and returned alongside ctx.Err().
func (b *CorpusBuilder) Build(ctx context.Context, sources []domain.DocumentSource) ([]domain.Chunk, domain.BuildReport, error) {
	var (
		report  domain.BuildReport
		pending []domain.Chunk
		ctxErr  error
	)

	for i := range sources {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}

		src := &sources[i]
		chunks, err := b.process(ctx, src)
		if err != nil && ctx.Err() != nil {
			ctxErr = ctx.Err()
			break
		}
		if err != nil {
			logger.Warn("Skipping %s: %v", src.Label(), err)
			report.SourcesSkipped++
			report.Failures = append(report.Failures, err)
			continue
		}
		if len(chunks) == 0 {
			logger.Warn("No usable text in %s", src.Label())
			report.SourcesEmpty++
			report.Failures = append(report.Failures, fmt.Errorf("%w: %s", domain.ErrEmptyContent, src.Label()))
			continue
		}

		logger.Debug("Chunked %s into %d chunks", src.Label(), len(chunks))
		report.SourcesProcessed++
		pending = append(pending, chunks...)
	}

	stored, err := b.persist(ctx, pending, ctxErr != nil)
	if err != nil {
		return nil, report, err
	}
	report.ChunksProduced = len(stored)

	logger.Info("Built %d chunks from %d sources (%d skipped, %d empty)",
		report.ChunksProduced, report.SourcesProcessed, report.SourcesSkipped, report.SourcesEmpty)

	return stored, report, ctxErr
}

// process turns one source into unpersisted chunks.
func (b *CorpusBuilder) process(ctx context.Context, src *domain.DocumentSource) ([]domain.Chunk, error) {
	text := src.Text
	if src.NeedsExtraction() {
		extracted, err := b.extract(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtractionFailure, src.Label(), err)
		}
		text = extracted
	}

	pieces, err := b.pipeline.Process(ctx, b.normaliser.Normalise(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: chunking: %w", domain.ErrExtractionFailure, src.Label(), err)
	}

	metadata := domain.MetadataFor(src)
	chunks := make([]domain.Chunk, 0, len(pieces))
	for pos, piece := range pieces {
		chunks = append(chunks, domain.Chunk{
			Position: pos,
			Text:     piece,
			Metadata: metadata,
		})
	}
	return chunks, nil
}

func (b *CorpusBuilder) extract(ctx context.Context, src *domain.DocumentSource) (string, error) {
	if b.extractors == nil {
		return "", fmt.Errorf("%w: no extractors configured", domain.ErrUnsupportedType)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := b.extractors.Extract(ctx, src.MIMEType, src.Content)
		done <- result{text, err}
	}()

	// Extractors that ignore ctx must not hold the build past its deadline.
	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("timed out after %s: %w", b.timeout, ctx.Err())
	}
}

// persist appends chunks under the builder lock.
// A cancelled build still persists what it produced.
func (b *CorpusBuilder) persist(ctx context.Context, chunks []domain.Chunk, cancelled bool) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if cancelled {
		ctx = context.WithoutCancel(ctx)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	stored, err := b.store.Append(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: append chunks: %w", domain.ErrPersistenceFailure, err)
	}
	return stored, nil
}
