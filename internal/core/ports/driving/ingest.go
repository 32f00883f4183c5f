package driving

import (
	"context"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

// IngestRequest selects what to acquire.
type IngestRequest struct {
	// Terms are the search queries. Empty uses the configured terms.
	Terms []string

	// Limit is the number of candidates per term. Zero uses the configured limit.
	Limit int
}

// IngestService acquires literature and feeds it to the corpus builder.
type IngestService interface {
	// Ingest searches each term, downloads candidates and builds the corpus.
	// Cancellation is honoured between terms.
	Ingest(ctx context.Context, req IngestRequest) (domain.BuildReport, error)

	// Watch ingests documents as the connector reports them, until ctx ends.
	// Each processed batch is reported through onBuild.
	// Returns domain.ErrUnsupportedType if the connector cannot watch.
	Watch(ctx context.Context, onBuild func(domain.BuildReport)) error
}
