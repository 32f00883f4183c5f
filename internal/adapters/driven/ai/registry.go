package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/logger"
	"github.com/custodia-labs/litrag/internal/retry"
)

// Ensure Registry implements the interface.
var _ driven.ModelRegistry = (*Registry)(nil)

// Registry lazily creates, pings and caches the embedding and LLM services.
// A failed creation is not cached, so a later call can succeed once the
// provider comes up.
type Registry struct {
	mu        sync.Mutex
	embedding domain.EmbeddingSettings
	llm       domain.LLMSettings
	policy    retry.Policy

	embedder driven.EmbeddingService
	model    driven.LLMService
	closed   bool
}

// NewRegistry creates a registry from settings. Nothing is created until first use.
func NewRegistry(settings domain.AppSettings) *Registry {
	return &Registry{
		embedding: settings.Embedding,
		llm:       settings.LLM,
		policy:    retry.FromSettings(settings.Retry),
	}
}

// NewRegistryWithServices creates a registry around existing services.
// Either may be nil, in which case the matching accessor reports it unavailable.
func NewRegistryWithServices(embedder driven.EmbeddingService, model driven.LLMService) *Registry {
	return &Registry{embedder: embedder, model: model}
}

// Embedding returns the embedding service, creating it on first use.
func (r *Registry) Embedding(ctx context.Context) (driven.EmbeddingService, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("%w: registry closed", domain.ErrEmbeddingUnavailable)
	}
	if r.embedder != nil {
		return r.embedder, nil
	}

	svc, err := CreateEmbeddingService(&r.embedding, r.policy)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable: %w", domain.ErrEmbeddingUnavailable, r.embedding.Provider, err)
	}

	logger.Debug("Embedding service ready: %s (%d dims)", svc.ModelName(), svc.Dimensions())
	r.embedder = svc
	return svc, nil
}

// LLM returns the language model service, creating it on first use.
func (r *Registry) LLM(ctx context.Context) (driven.LLMService, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("%w: registry closed", domain.ErrLLMUnavailable)
	}
	if r.model != nil {
		return r.model, nil
	}

	svc, err := CreateLLMService(&r.llm, r.policy)
	if err != nil {
		if errors.Is(err, domain.ErrLLMUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable: %w", domain.ErrLLMUnavailable, r.llm.Provider, err)
	}

	logger.Debug("LLM service ready: %s", svc.ModelName())
	r.model = svc
	return svc, nil
}

// Close releases every service the registry holds. Calling it again is a no-op.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	if r.embedder != nil {
		errs = append(errs, r.embedder.Close())
		r.embedder = nil
	}
	if r.model != nil {
		errs = append(errs, r.model.Close())
		r.model = nil
	}
	return errors.Join(errs...)
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}
