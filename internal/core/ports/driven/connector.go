package driven

import (
	"context"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

// Connector searches a literature source and downloads documents.
// Each connector type (semanticscholar, pubmed, filesystem) implements this interface.
type Connector interface {
	// Type returns the connector type identifier.
	Type() domain.ConnectorType

	// Capabilities returns what this connector supports.
	Capabilities() ConnectorCapabilities

	// Validate checks if the connector is properly configured.
	// For API connectors, this makes a lightweight test request.
	// For filesystem, this checks the directory exists and is readable.
	Validate(ctx context.Context) error

	// Search returns up to limit candidates for a query.
	Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error)

	// Fetch downloads a document and reports its MIME type.
	Fetch(ctx context.Context, url string) (body []byte, mimeType string, err error)

	// Close releases resources.
	Close() error
}

// Watcher is implemented by connectors that can push new documents.
type Watcher interface {
	// Watch emits a candidate for each document that appears.
	// The channel is closed when ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.Candidate, error)
}

// ConnectorCapabilities describes what a connector supports.
type ConnectorCapabilities struct {
	// SupportsWatch indicates the connector implements Watcher.
	SupportsWatch bool

	// SupportsBinary indicates Fetch can return binary content such as PDFs.
	SupportsBinary bool

	// RequiresAPIKey indicates the source rejects anonymous requests.
	RequiresAPIKey bool

	// SupportsRateLimiting indicates the connector throttles requests internally.
	SupportsRateLimiting bool

	// SupportsAbstracts indicates candidates carry abstracts usable as text.
	SupportsAbstracts bool
}
