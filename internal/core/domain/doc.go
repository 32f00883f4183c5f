// Package domain defines the entities litrag passes between acquisition,
// the corpus, the index and retrieval:
//
//   - Candidate: a search hit returned by a literature connector
//   - DocumentSource: one acquired artefact awaiting normalisation
//   - Chunk: a bounded fragment of normalised text plus provenance
//   - EmbeddingRecord: a chunk paired with its unit-length vector
//   - RetrievalResult: scored chunks returned for a query
//   - Answer and IntakeAssessment: model output grounded in chunks
//
// Settings types and the sentinel errors shared by every layer live here too.
//
// # Import Rules
//
// Domain sits at the centre of the hexagon. It imports the standard library
// and github.com/google/uuid (for deterministic chunk identifiers) and no
// internal package.
package domain
