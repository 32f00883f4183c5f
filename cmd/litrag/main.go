// Command litrag builds and queries a retrieval corpus of addiction
// treatment literature.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/litrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/litrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/litrag/internal/adapters/driven/storage/jsonl"
	"github.com/custodia-labs/litrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/litrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/litrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/litrag/internal/connectors"
	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
	"github.com/custodia-labs/litrag/internal/core/services"
	"github.com/custodia-labs/litrag/internal/extractors"
	"github.com/custodia-labs/litrag/internal/normalisers/scholarly"
	"github.com/custodia-labs/litrag/internal/postprocessors"
	"github.com/custodia-labs/litrag/internal/retry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// bootstrap wires adapters into services for one run.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config directory: %w", err)
		}
		configDir = dir
	}
	dataDir := filepath.Join(configDir, "data")

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if opts.BatchSize > 0 {
		settings.Index.BatchSize = opts.BatchSize
	}

	chunkFile := settings.Corpus.ChunkFile
	if chunkFile == "" {
		chunkFile = filepath.Join(dataDir, jsonl.DefaultFileName)
	}
	chunkStore, err := jsonl.NewChunkStore(chunkFile)
	if err != nil {
		return nil, fmt.Errorf("open chunk store: %w", err)
	}

	index, err := openIndex(settings.Index.Backend, dataDir)
	if err != nil {
		return nil, err
	}

	pipeline, err := postprocessors.BuildPipeline(postprocessors.DefaultRegistry(), settings.Pipeline)
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	registry := ai.NewRegistry(*settings)
	extractorRegistry := extractors.DefaultRegistry()
	builder := services.NewCorpusBuilder(
		chunkStore, extractorRegistry, scholarly.New(), pipeline, settings.Acquisition.SourceTimeout,
	)
	indexer := services.NewIndexer(chunkStore, index, registry, services.IndexerConfig{
		BatchSize:      settings.Index.BatchSize,
		BatchTimeout:   settings.Index.BatchTimeout,
		EmbeddingModel: settings.Embedding.Model,
	})
	retriever := services.NewRetriever(index, registry)
	if settings.Index.Backend == domain.IndexBackendMemory {
		// The memory index starts empty in every process.
		retriever.SetLoader(indexer)
	}

	svc := &cli.Services{
		Settings:  settingsService,
		Builder:   builder,
		Index:     indexer,
		Retrieval: retriever,
		NewIngest: ingestFactory(builder, settings.Retry),
		Close: func() error {
			return errors.Join(registry.Close(), index.Close())
		},
	}

	if settings.LLM.IsConfigured() {
		answers := services.NewAnswerService(retriever, registry)
		answers.SetPromptStore(prompts)
		svc.Answer = answers

		intake := services.NewIntakeService(extractorRegistry, registry, settings.Acquisition.SourceTimeout)
		intake.SetPromptStore(prompts)
		svc.Intake = intake
	}

	return svc, nil
}

func openIndex(backend domain.IndexBackend, dataDir string) (driven.EmbeddingIndex, error) {
	if backend == domain.IndexBackendMemory {
		return memory.NewEmbeddingIndex(), nil
	}
	index, err := sqlite.NewIndex(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return index, nil
}

func ingestFactory(builder driving.CorpusBuilder, retrySettings domain.RetrySettings) cli.IngestFactory {
	return func(acq domain.AcquisitionSettings) (driving.IngestService, func() error, error) {
		conn, err := connectors.New(acq, retry.FromSettings(retrySettings))
		if err != nil {
			return nil, nil, err
		}
		ingest := services.NewIngestService(conn, builder, services.IngestConfig{
			Terms:         acq.SearchTerms,
			Limit:         acq.Limit,
			Workers:       acq.Workers,
			SourceTimeout: acq.SourceTimeout,
		})
		return ingest, conn.Close, nil
	}
}
