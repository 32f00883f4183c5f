package driving

import (
	"context"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

// CorpusBuilder turns acquired sources into persisted chunks.
type CorpusBuilder interface {
	// Build extracts, normalises and chunks each source, then appends the
	// chunks to the chunk store in source order.
	// Per-source failures are recorded in the report and never abort the build.
	// A cancelled ctx returns the chunks built so far together with ctx.Err().
	Build(ctx context.Context, sources []domain.DocumentSource) ([]domain.Chunk, domain.BuildReport, error)
}
