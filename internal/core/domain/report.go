package domain

import "errors"

// BuildReport summarises a corpus build.
type BuildReport struct {
	// SourcesProcessed counts sources that produced at least one chunk.
	SourcesProcessed int

	// SourcesSkipped counts sources that failed acquisition or extraction.
	SourcesSkipped int

	// SourcesEmpty counts sources that yielded zero chunks.
	SourcesEmpty int

	// ChunksProduced counts chunks appended to the store.
	ChunksProduced int

	// Failures holds per-source failure reasons.
	Failures []error
}

// Merge adds another report's counts to this one.
func (r *BuildReport) Merge(other BuildReport) {
	r.SourcesProcessed += other.SourcesProcessed
	r.SourcesSkipped += other.SourcesSkipped
	r.SourcesEmpty += other.SourcesEmpty
	r.ChunksProduced += other.ChunksProduced
	r.Failures = append(r.Failures, other.Failures...)
}

// Err joins all recorded failures, or returns nil.
func (r *BuildReport) Err() error {
	return errors.Join(r.Failures...)
}

// IndexReport summarises an index rebuild.
type IndexReport struct {
	// Indexed counts records written to the index.
	Indexed int

	// Skipped counts chunks whose embedding batch failed.
	Skipped int

	// Dimensions is the vector size of the index.
	Dimensions int
}
