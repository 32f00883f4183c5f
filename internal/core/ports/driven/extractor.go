package driven

import "context"

// Extractor converts fetched document bytes into plain text.
// Each extractor handles specific MIME types (e.g., PDF, HTML).
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Extract returns the text content of a document.
	Extract(ctx context.Context, content []byte) (string, error)
}

// ExtractorRegistry selects the appropriate extractor for a document.
type ExtractorRegistry interface {
	// Extract converts content using the best matching extractor.
	// Returns domain.ErrUnsupportedType when nothing handles mimeType.
	Extract(ctx context.Context, mimeType string, content []byte) (string, error)

	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// SupportedMIMETypes returns all MIME types that can be extracted.
	SupportedMIMETypes() []string
}
