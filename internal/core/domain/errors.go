package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates a violated input contract, such as a
	// non-positive k, a malformed stored record or a dimension mismatch.
	// It is fatal to the call and never silently coerced.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedType indicates no extractor or connector handles the type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Pipeline Errors.

	// ErrAcquisitionFailure indicates a network or API error fetching a source.
	// Recoverable: the source is logged and skipped.
	ErrAcquisitionFailure = errors.New("acquisition failed")

	// ErrExtractionFailure indicates an unreadable or unparseable document.
	// Recoverable: the source is logged and skipped.
	ErrExtractionFailure = errors.New("extraction failed")

	// ErrEmptyContent marks a source that produced zero usable chunks.
	// It is a valid terminal state, only used to classify skips in reports.
	ErrEmptyContent = errors.New("empty content")

	// ErrPersistenceFailure indicates the chunk store or index is unwritable.
	// Fatal to the run.
	ErrPersistenceFailure = errors.New("persistence failed")

	// ErrIndexModelMismatch indicates the index was built by a different
	// embedding model than the one configured. Rebuild the index.
	ErrIndexModelMismatch = errors.New("index built with a different embedding model")

	// ErrEmptyCorpus indicates a completed run produced no chunks at all.
	ErrEmptyCorpus = errors.New("no chunks produced")

	// AI Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answering and intake analysis are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Indexing and text queries are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Connector Errors.

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrConnectorClosed indicates the connector has been closed.
	ErrConnectorClosed = errors.New("connector closed")
)
