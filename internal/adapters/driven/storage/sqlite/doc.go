// Package sqlite provides a persistent driven.EmbeddingIndex on SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
// Vectors are stored as little-endian float32 blobs next to the chunk text
// and metadata, so retrieval never has to reopen the chunk file.
//
// # Data Location
//
// By default, the database is stored at ~/.litrag/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
